package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dhanu0746/Zerodha-clone/internal/domain"
	"github.com/Dhanu0746/Zerodha-clone/internal/ledger"
	"github.com/Dhanu0746/Zerodha-clone/internal/publish"
)

func newWebhookService(t *testing.T) *WebhookService {
	t.Helper()
	store := ledger.NewStore()
	accounts := NewAccountService(store, fixedOracle{price: 10000}, 0)
	_, err := accounts.Open("alice")
	require.NoError(t, err)
	return NewWebhookService(publish.NewWebhookStore(), store)
}

func TestUpsertWebhookCreatesPerEvent(t *testing.T) {
	svc := newWebhookService(t)

	hooks, created, err := svc.Upsert(UpsertWebhookRequest{
		AccountID: "alice",
		URL:       "https://example.com/hook",
		Events:    []string{"order.filled", "order.cancelled", "order.filled"},
	})
	require.NoError(t, err)
	assert.True(t, created)
	// Duplicate events collapse into one subscription each.
	require.Len(t, hooks, 2)
	assert.NotEqual(t, hooks[0].WebhookID, hooks[1].WebhookID)

	listed, err := svc.List("alice")
	require.NoError(t, err)
	assert.Len(t, listed, 2)
}

func TestUpsertWebhookUpdatesURLKeepsID(t *testing.T) {
	svc := newWebhookService(t)

	first, created, err := svc.Upsert(UpsertWebhookRequest{
		AccountID: "alice",
		URL:       "https://example.com/v1",
		Events:    []string{"order.filled"},
	})
	require.NoError(t, err)
	require.True(t, created)

	second, created, err := svc.Upsert(UpsertWebhookRequest{
		AccountID: "alice",
		URL:       "https://example.com/v2",
		Events:    []string{"order.filled"},
	})
	require.NoError(t, err)
	assert.False(t, created)
	require.Len(t, second, 1)
	assert.Equal(t, first[0].WebhookID, second[0].WebhookID)
	assert.Equal(t, "https://example.com/v2", second[0].URL)
}

func TestUpsertWebhookValidation(t *testing.T) {
	svc := newWebhookService(t)

	tests := []struct {
		name string
		req  UpsertWebhookRequest
	}{
		{"missing url", UpsertWebhookRequest{AccountID: "alice", Events: []string{"order.filled"}}},
		{"relative url", UpsertWebhookRequest{AccountID: "alice", URL: "/hook", Events: []string{"order.filled"}}},
		{"http scheme", UpsertWebhookRequest{AccountID: "alice", URL: "http://example.com/hook", Events: []string{"order.filled"}}},
		{"no events", UpsertWebhookRequest{AccountID: "alice", URL: "https://example.com/hook"}},
		{"unknown event", UpsertWebhookRequest{AccountID: "alice", URL: "https://example.com/hook", Events: []string{"order.exploded"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := svc.Upsert(tt.req)
			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
		})
	}

	_, _, err := svc.Upsert(UpsertWebhookRequest{
		AccountID: "ghost",
		URL:       "https://example.com/hook",
		Events:    []string{"order.filled"},
	})
	require.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestDeleteWebhook(t *testing.T) {
	svc := newWebhookService(t)

	hooks, _, err := svc.Upsert(UpsertWebhookRequest{
		AccountID: "alice",
		URL:       "https://example.com/hook",
		Events:    []string{"order.filled"},
	})
	require.NoError(t, err)
	require.Len(t, hooks, 1)

	require.NoError(t, svc.Delete(hooks[0].WebhookID))
	require.ErrorIs(t, svc.Delete(hooks[0].WebhookID), domain.ErrWebhookNotFound)

	listed, err := svc.List("alice")
	require.NoError(t, err)
	assert.Empty(t, listed)
}

package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/google/uuid"

	"github.com/Dhanu0746/Zerodha-clone/internal/domain"
)

// Webhook event names accounts may subscribe to.
var ValidWebhookEvents = map[string]bool{
	"order.placed":    true,
	"order.filled":    true,
	"order.partial":   true,
	"order.cancelled": true,
}

// WebhookStore is a thread-safe in-memory store for webhook
// subscriptions. Primary index: webhook_id. Secondary index:
// account_id → event.
type WebhookStore struct {
	mu        sync.RWMutex
	webhooks  map[string]*domain.Webhook
	byAccount map[string]map[string]*domain.Webhook
}

func NewWebhookStore() *WebhookStore {
	return &WebhookStore{
		webhooks:  make(map[string]*domain.Webhook),
		byAccount: make(map[string]map[string]*domain.Webhook),
	}
}

// Upsert inserts or updates a subscription keyed by (account_id, event).
// An existing subscription keeps its webhook_id; only the URL and
// UpdatedAt change. Returns true when a new subscription was created.
func (s *WebhookStore) Upsert(w *domain.Webhook) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if events, ok := s.byAccount[w.AccountID]; ok {
		if existing, ok := events[w.Event]; ok {
			if existing.URL != w.URL {
				existing.URL = w.URL
				existing.UpdatedAt = w.UpdatedAt
			}
			return false
		}
	}

	s.webhooks[w.WebhookID] = w
	if s.byAccount[w.AccountID] == nil {
		s.byAccount[w.AccountID] = make(map[string]*domain.Webhook)
	}
	s.byAccount[w.AccountID][w.Event] = w
	return true
}

// Get returns a webhook by ID or domain.ErrWebhookNotFound.
func (s *WebhookStore) Get(id string) (*domain.Webhook, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	w, ok := s.webhooks[id]
	if !ok {
		return nil, domain.ErrWebhookNotFound
	}
	return w, nil
}

// ListByAccount returns all subscriptions for an account, possibly empty.
func (s *WebhookStore) ListByAccount(accountID string) []*domain.Webhook {
	s.mu.RLock()
	defer s.mu.RUnlock()

	events := s.byAccount[accountID]
	result := make([]*domain.Webhook, 0, len(events))
	for _, w := range events {
		result = append(result, w)
	}
	return result
}

// Delete removes a webhook by ID from both indexes.
func (s *WebhookStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.webhooks[id]
	if !ok {
		return domain.ErrWebhookNotFound
	}

	delete(s.webhooks, id)
	if events, ok := s.byAccount[w.AccountID]; ok {
		delete(events, w.Event)
		if len(events) == 0 {
			delete(s.byAccount, w.AccountID)
		}
	}
	return nil
}

// GetByAccountEvent returns the subscription for an account+event pair,
// or nil when none exists.
func (s *WebhookStore) GetByAccountEvent(accountID, event string) *domain.Webhook {
	s.mu.RLock()
	defer s.mu.RUnlock()

	events := s.byAccount[accountID]
	if events == nil {
		return nil
	}
	return events[event]
}

// WebhookPublisher delivers order events to per-account webhook URLs.
// Fire and forget: each delivery runs in its own goroutine with the
// client timeout as the only bound.
type WebhookPublisher struct {
	store  *WebhookStore
	client *http.Client
}

func NewWebhookPublisher(store *WebhookStore, client *http.Client) *WebhookPublisher {
	return &WebhookPublisher{store: store, client: client}
}

func (p *WebhookPublisher) PublishOrderEvent(_ context.Context, evt domain.OrderEvent) {
	event := "order." + string(evt.Type)
	wh := p.store.GetByAccountEvent(evt.AccountID, event)
	if wh == nil {
		return
	}
	go p.deliver(wh, event, buildOrderMessage(evt))
}

// Portfolio and price updates go over Redis only; webhooks carry order
// lifecycle events.
func (p *WebhookPublisher) PublishPortfolio(context.Context, domain.PortfolioSnapshot) {}

func (p *WebhookPublisher) PublishPriceTick(context.Context, domain.PriceTick) {}

func (p *WebhookPublisher) deliver(wh *domain.Webhook, eventType string, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		return
	}

	req, err := http.NewRequest(http.MethodPost, wh.URL, bytes.NewReader(body))
	if err != nil {
		return
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Delivery-Id", uuid.New().String())
	req.Header.Set("X-Webhook-Id", wh.WebhookID)
	req.Header.Set("X-Event-Type", eventType)

	resp, err := p.client.Do(req)
	if err != nil {
		return
	}
	resp.Body.Close()
}

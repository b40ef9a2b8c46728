package domain

import "github.com/shopspring/decimal"

// Default fee schedule in basis points. Takers (market fills) pay 15 bps,
// makers (resting limit fills) pay 10 bps.
const (
	DefaultTakerFeeBps = 15
	DefaultMakerFeeBps = 10
)

// FeeSchedule holds per-role fee rates in basis points.
type FeeSchedule struct {
	MakerBps int64
	TakerBps int64
}

// DefaultFeeSchedule returns the standard 10/15 bps maker/taker schedule.
func DefaultFeeSchedule() FeeSchedule {
	return FeeSchedule{MakerBps: DefaultMakerFeeBps, TakerBps: DefaultTakerFeeBps}
}

// Fee computes the fee in cents for a fill of the given notional (cents),
// rounded half-up to the nearest cent.
func (s FeeSchedule) Fee(notionalCents int64, role LiquidityRole) int64 {
	bps := s.MakerBps
	if role == RoleTaker {
		bps = s.TakerBps
	}
	fee := decimal.NewFromInt(notionalCents).
		Mul(decimal.NewFromInt(bps)).
		Div(decimal.NewFromInt(10000))
	return fee.Round(0).IntPart()
}

// WeightedAvgCost recomputes a holding's average cost basis after a buy
// fill as the quantity-weighted mean of the old basis and the fill price.
func WeightedAvgCost(oldQty int64, oldAvg decimal.Decimal, fillQty, fillPrice int64) decimal.Decimal {
	oldNotional := oldAvg.Mul(decimal.NewFromInt(oldQty))
	fillNotional := decimal.NewFromInt(fillPrice).Mul(decimal.NewFromInt(fillQty))
	return oldNotional.Add(fillNotional).Div(decimal.NewFromInt(oldQty + fillQty))
}

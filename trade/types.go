package trade

import (
	"maps"
	"time"

	"github.com/google/uuid"
	"github.com/krazyTry/keycurve-go/key_curve"
	"github.com/shopspring/decimal"
)

// Status is the lifecycle state of a curve.
type Status string

const (
	StatusPending  Status = "pending"
	StatusActive   Status = "active"
	StatusFrozen   Status = "frozen"
	StatusLaunched Status = "launched"
	StatusUtility  Status = "utility"
)

func (s Status) Tradable() bool {
	return s == StatusActive
}

// Curve is the persisted record of one bonding curve.
type Curve struct {
	ID      string
	OwnerID string
	Status  Status
	Config  key_curve.Config

	Supply  decimal.Decimal
	Reserve decimal.Decimal
	// Price is the curve price at Supply, kept in step by every trade.
	Price decimal.Decimal

	VolumeTotal decimal.Decimal
	TotalBuys   uint64
	TotalSells  uint64

	Holders   map[string]*Holder
	UpdatedAt time.Time
}

// NewCurve returns an empty active curve priced at its base price.
func NewCurve(id, ownerID string, cfg key_curve.Config) (*Curve, error) {
	engine, err := key_curve.NewEngine(cfg)
	if err != nil {
		return nil, err
	}
	return &Curve{
		ID:          id,
		OwnerID:     ownerID,
		Status:      StatusActive,
		Config:      cfg,
		Supply:      decimal.Zero,
		Reserve:     decimal.Zero,
		Price:       engine.Price(decimal.Zero),
		VolumeTotal: decimal.Zero,
		Holders:     map[string]*Holder{},
	}, nil
}

func (c *Curve) State() key_curve.CurveState {
	return key_curve.CurveState{Supply: c.Supply, CurrentPrice: c.Price, Reserve: c.Reserve}
}

// HolderCount counts holders with a positive balance.
func (c *Curve) HolderCount() int {
	n := 0
	for _, h := range c.Holders {
		if h.Balance.IsPositive() {
			n++
		}
	}
	return n
}

// Holder returns the record for userID, creating an empty one if needed.
func (c *Curve) Holder(userID string) *Holder {
	if c.Holders == nil {
		c.Holders = map[string]*Holder{}
	}
	h, ok := c.Holders[userID]
	if !ok {
		h = &Holder{
			UserID:        userID,
			Balance:       decimal.Zero,
			TotalInvested: decimal.Zero,
			AvgPrice:      decimal.Zero,
			RealizedPnl:   decimal.Zero,
		}
		c.Holders[userID] = h
	}
	return h
}

// Clone deep-copies the curve so a failed apply can be discarded.
func (c *Curve) Clone() *Curve {
	out := *c
	out.Holders = maps.Clone(c.Holders)
	for id, h := range out.Holders {
		hc := *h
		out.Holders[id] = &hc
	}
	if out.Holders == nil {
		out.Holders = map[string]*Holder{}
	}
	return &out
}

// Holder is one user's position in a curve.
type Holder struct {
	UserID        string          `json:"userId"`
	Balance       decimal.Decimal `json:"balance"`
	TotalInvested decimal.Decimal `json:"totalInvested"`
	AvgPrice      decimal.Decimal `json:"avgPrice"`
	RealizedPnl   decimal.Decimal `json:"realizedPnl"`
	FirstBuyAt    time.Time       `json:"firstBuyAt"`
	LastTradeAt   time.Time       `json:"lastTradeAt"`
}

// UnrealizedPnl values the balance at price, net of its cost basis.
func (h *Holder) UnrealizedPnl(price decimal.Decimal) decimal.Decimal {
	return h.Balance.Mul(price).Sub(h.TotalInvested)
}

// Event records one executed trade.
type Event struct {
	ID         uuid.UUID              `json:"id"`
	CurveID    string                 `json:"curveId"`
	Kind       key_curve.Action       `json:"kind"`
	UserID     string                 `json:"userId"`
	ReferrerID string                 `json:"referrerId,omitempty"`
	Keys       decimal.Decimal        `json:"keys"`
	Amount     decimal.Decimal        `json:"amount"`
	Price      decimal.Decimal        `json:"price"`
	PriceAfter decimal.Decimal        `json:"priceAfter"`
	Fees       key_curve.FeeBreakdown `json:"fees"`
	Referral   Payout                 `json:"referral"`
	Warnings   []string               `json:"warnings"`
	At         time.Time              `json:"at"`
}

package keycurve

import (
	"github.com/krazyTry/keycurve-go/key_curve"
	"github.com/krazyTry/keycurve-go/store"
	"github.com/krazyTry/keycurve-go/trade"
)

// NewEngine creates a pricing engine for one curve configuration.
//
// Example:
//
// engine, _ := NewEngine(key_curve.DefaultConfig())
//
// quote, _ := engine.Quote(key_curve.ActionBuy, amount, key_curve.CurveState{Supply: supply}, false)
var NewEngine = key_curve.NewEngine

// NewTrader creates a trader that executes quotes against stored curves.
//
// Example:
//
// trader := NewTrader(NewMemoryStore(logger), trade.WithLogger(logger))
//
// event, _ := trader.Buy(ctx, trade.Request{CurveID: id, UserID: user, Amount: amount})
var NewTrader = trade.NewTrader

// NewMemoryStore creates an in-process curve repository.
var NewMemoryStore = store.NewMemory

// NewPostgresStore creates a curve repository on a pgx pool.
var NewPostgresStore = store.NewPostgres

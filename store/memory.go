package store

import (
	"context"
	"slices"
	"sync"

	"github.com/krazyTry/keycurve-go/trade"
	"go.uber.org/zap"
)

// Memory is an in-process CurveRepository. Applies are serialised by a
// single mutex; fn works on a copy that is committed only when it succeeds.
type Memory struct {
	mu     sync.Mutex
	curves map[string]*trade.Curve
	events map[string][]*trade.Event
	logger *zap.Logger
}

func NewMemory(logger *zap.Logger) *Memory {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Memory{
		curves: map[string]*trade.Curve{},
		events: map[string][]*trade.Event{},
		logger: logger,
	}
}

func (m *Memory) Create(_ context.Context, c *trade.Curve) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.curves[c.ID]; ok {
		return trade.ErrCurveExists
	}
	m.curves[c.ID] = c.Clone()
	m.logger.Debug("curve created", zap.String("curve", c.ID))
	return nil
}

func (m *Memory) Get(_ context.Context, id string) (*trade.Curve, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.curves[id]
	if !ok {
		return nil, trade.ErrCurveNotFound
	}
	return c.Clone(), nil
}

func (m *Memory) Apply(ctx context.Context, id string, fn func(*trade.Curve) (*trade.Event, error)) (*trade.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c, ok := m.curves[id]
	if !ok {
		return nil, trade.ErrCurveNotFound
	}
	work := c.Clone()
	ev, err := fn(work)
	if err != nil {
		return nil, err
	}
	m.curves[id] = work
	m.events[id] = append(m.events[id], ev)
	return ev, nil
}

// SetStatus moves a curve through its lifecycle.
func (m *Memory) SetStatus(_ context.Context, id string, status trade.Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.curves[id]
	if !ok {
		return trade.ErrCurveNotFound
	}
	c.Status = status
	return nil
}

// Events returns the trades applied to a curve, oldest first.
func (m *Memory) Events(_ context.Context, id string) ([]*trade.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.curves[id]; !ok {
		return nil, trade.ErrCurveNotFound
	}
	return slices.Clone(m.events[id]), nil
}

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/krazyTry/keycurve-go/key_curve"
	"github.com/krazyTry/keycurve-go/trade"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Schema creates the tables Postgres reads and writes.
const Schema = `
CREATE TABLE IF NOT EXISTS curves (
	id           TEXT PRIMARY KEY,
	owner_id     TEXT NOT NULL,
	status       TEXT NOT NULL,
	config       JSONB NOT NULL,
	supply       NUMERIC NOT NULL DEFAULT 0,
	reserve      NUMERIC NOT NULL DEFAULT 0,
	price        NUMERIC NOT NULL,
	volume_total NUMERIC NOT NULL DEFAULT 0,
	total_buys   BIGINT NOT NULL DEFAULT 0,
	total_sells  BIGINT NOT NULL DEFAULT 0,
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS curve_holders (
	curve_id       TEXT NOT NULL REFERENCES curves(id),
	user_id        TEXT NOT NULL,
	balance        NUMERIC NOT NULL,
	total_invested NUMERIC NOT NULL,
	avg_price      NUMERIC NOT NULL,
	realized_pnl   NUMERIC NOT NULL,
	first_buy_at   TIMESTAMPTZ,
	last_trade_at  TIMESTAMPTZ,
	PRIMARY KEY (curve_id, user_id)
);

CREATE TABLE IF NOT EXISTS curve_events (
	id          UUID PRIMARY KEY,
	curve_id    TEXT NOT NULL REFERENCES curves(id),
	kind        TEXT NOT NULL,
	user_id     TEXT NOT NULL,
	referrer_id TEXT,
	keys        NUMERIC NOT NULL,
	amount      NUMERIC NOT NULL,
	price       NUMERIC NOT NULL,
	price_after NUMERIC NOT NULL,
	fees        JSONB NOT NULL,
	referral    JSONB NOT NULL,
	warnings    TEXT[] NOT NULL,
	at          TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS curve_events_curve_at ON curve_events (curve_id, at);
`

// Postgres is a CurveRepository backed by PostgreSQL. Apply locks the curve
// row for the length of one transaction.
type Postgres struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *zap.Logger) *Postgres {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Postgres{pool: pool, logger: logger}
}

// Connect opens a pool and checks it answers.
func Connect(ctx context.Context, dsn string, maxConns int32) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}
	if maxConns > 0 {
		poolCfg.MaxConns = maxConns
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

func (p *Postgres) Migrate(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

func (p *Postgres) Create(ctx context.Context, c *trade.Curve) error {
	cfg, err := json.Marshal(c.Config)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	tag, err := p.pool.Exec(ctx, `
		INSERT INTO curves (id, owner_id, status, config, supply, reserve, price, volume_total, total_buys, total_sells, updated_at)
		VALUES ($1, $2, $3, $4, $5::numeric, $6::numeric, $7::numeric, $8::numeric, $9, $10, $11)
		ON CONFLICT (id) DO NOTHING
	`, c.ID, c.OwnerID, string(c.Status), cfg, c.Supply.String(), c.Reserve.String(), c.Price.String(),
		c.VolumeTotal.String(), int64(c.TotalBuys), int64(c.TotalSells), c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert curve: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return trade.ErrCurveExists
	}
	return nil
}

func (p *Postgres) Get(ctx context.Context, id string) (*trade.Curve, error) {
	return loadCurve(ctx, p.pool, id, false)
}

func (p *Postgres) Apply(ctx context.Context, id string, fn func(*trade.Curve) (*trade.Event, error)) (*trade.Event, error) {
	tx, err := p.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback(ctx)
		}
	}()

	c, err := loadCurve(ctx, tx, id, true)
	if err != nil {
		return nil, err
	}
	ev, err := fn(c)
	if err != nil {
		return nil, err
	}

	if err := saveCurve(ctx, tx, c); err != nil {
		return nil, err
	}
	if h, ok := c.Holders[ev.UserID]; ok {
		if err := saveHolder(ctx, tx, c.ID, h); err != nil {
			return nil, err
		}
	}
	if err := insertEvent(ctx, tx, ev); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	committed = true
	p.logger.Debug("curve updated",
		zap.String("curve", id),
		zap.Stringer("event", ev.ID),
		zap.Stringer("supply", c.Supply),
	)
	return ev, nil
}

func (p *Postgres) SetStatus(ctx context.Context, id string, status trade.Status) error {
	tag, err := p.pool.Exec(ctx, `UPDATE curves SET status = $2, updated_at = now() WHERE id = $1`, id, string(status))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return trade.ErrCurveNotFound
	}
	return nil
}

// querier is the part of pgxpool.Pool and pgx.Tx the loaders need.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func loadCurve(ctx context.Context, q querier, id string, forUpdate bool) (*trade.Curve, error) {
	sql := `
		SELECT id, owner_id, status, config::text, supply::text, reserve::text, price::text,
		       volume_total::text, total_buys, total_sells, updated_at
		FROM curves
		WHERE id = $1`
	if forUpdate {
		sql += ` FOR UPDATE`
	}

	var (
		c                                   trade.Curve
		status, cfg                         string
		supply, reserve, price, volumeTotal string
		buys, sells                         int64
	)
	err := q.QueryRow(ctx, sql, id).Scan(&c.ID, &c.OwnerID, &status, &cfg, &supply, &reserve, &price,
		&volumeTotal, &buys, &sells, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, trade.ErrCurveNotFound
		}
		return nil, err
	}
	c.Status = trade.Status(status)
	c.TotalBuys = uint64(buys)
	c.TotalSells = uint64(sells)
	if c.Config, err = key_curve.ConfigFromJSON([]byte(cfg)); err != nil {
		return nil, fmt.Errorf("curve %s config: %w", id, err)
	}
	if err := parseDecimals(
		numeric{supply, &c.Supply},
		numeric{reserve, &c.Reserve},
		numeric{price, &c.Price},
		numeric{volumeTotal, &c.VolumeTotal},
	); err != nil {
		return nil, fmt.Errorf("curve %s: %w", id, err)
	}

	c.Holders, err = loadHolders(ctx, q, id)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func loadHolders(ctx context.Context, q querier, curveID string) (map[string]*trade.Holder, error) {
	rows, err := q.Query(ctx, `
		SELECT user_id, balance::text, total_invested::text, avg_price::text, realized_pnl::text,
		       first_buy_at, last_trade_at
		FROM curve_holders
		WHERE curve_id = $1
	`, curveID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	holders := map[string]*trade.Holder{}
	for rows.Next() {
		var (
			h                                trade.Holder
			balance, invested, avg, realized string
			firstBuy, lastTrade              *time.Time
		)
		if err := rows.Scan(&h.UserID, &balance, &invested, &avg, &realized, &firstBuy, &lastTrade); err != nil {
			return nil, err
		}
		if err := parseDecimals(
			numeric{balance, &h.Balance},
			numeric{invested, &h.TotalInvested},
			numeric{avg, &h.AvgPrice},
			numeric{realized, &h.RealizedPnl},
		); err != nil {
			return nil, fmt.Errorf("holder %s: %w", h.UserID, err)
		}
		if firstBuy != nil {
			h.FirstBuyAt = *firstBuy
		}
		if lastTrade != nil {
			h.LastTradeAt = *lastTrade
		}
		holders[h.UserID] = &h
	}
	return holders, rows.Err()
}

func saveCurve(ctx context.Context, tx pgx.Tx, c *trade.Curve) error {
	_, err := tx.Exec(ctx, `
		UPDATE curves
		SET status = $2, supply = $3::numeric, reserve = $4::numeric, price = $5::numeric,
		    volume_total = $6::numeric, total_buys = $7, total_sells = $8, updated_at = $9
		WHERE id = $1
	`, c.ID, string(c.Status), c.Supply.String(), c.Reserve.String(), c.Price.String(),
		c.VolumeTotal.String(), int64(c.TotalBuys), int64(c.TotalSells), c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update curve: %w", err)
	}
	return nil
}

func saveHolder(ctx context.Context, tx pgx.Tx, curveID string, h *trade.Holder) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO curve_holders (curve_id, user_id, balance, total_invested, avg_price, realized_pnl, first_buy_at, last_trade_at)
		VALUES ($1, $2, $3::numeric, $4::numeric, $5::numeric, $6::numeric, $7, $8)
		ON CONFLICT (curve_id, user_id) DO UPDATE
		SET balance = EXCLUDED.balance,
		    total_invested = EXCLUDED.total_invested,
		    avg_price = EXCLUDED.avg_price,
		    realized_pnl = EXCLUDED.realized_pnl,
		    first_buy_at = COALESCE(curve_holders.first_buy_at, EXCLUDED.first_buy_at),
		    last_trade_at = EXCLUDED.last_trade_at
	`, curveID, h.UserID, h.Balance.String(), h.TotalInvested.String(), h.AvgPrice.String(), h.RealizedPnl.String(),
		nullTime(h.FirstBuyAt), nullTime(h.LastTradeAt))
	if err != nil {
		return fmt.Errorf("upsert holder: %w", err)
	}
	return nil
}

func insertEvent(ctx context.Context, tx pgx.Tx, ev *trade.Event) error {
	fees, err := json.Marshal(ev.Fees)
	if err != nil {
		return fmt.Errorf("encode fees: %w", err)
	}
	referral, err := json.Marshal(ev.Referral)
	if err != nil {
		return fmt.Errorf("encode referral: %w", err)
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO curve_events (id, curve_id, kind, user_id, referrer_id, keys, amount, price, price_after, fees, referral, warnings, at)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6::numeric, $7::numeric, $8::numeric, $9::numeric, $10, $11, $12, $13)
	`, ev.ID, ev.CurveID, ev.Kind.String(), ev.UserID, ev.ReferrerID, ev.Keys.String(), ev.Amount.String(),
		ev.Price.String(), ev.PriceAfter.String(), fees, referral, ev.Warnings, ev.At)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// numeric is a NUMERIC column scanned as text and the field it parses into.
type numeric struct {
	raw string
	dst *decimal.Decimal
}

func parseDecimals(cols ...numeric) error {
	for _, col := range cols {
		d, err := decimal.NewFromString(col.raw)
		if err != nil {
			return fmt.Errorf("parse numeric %q: %w", col.raw, err)
		}
		*col.dst = d
	}
	return nil
}

func nullTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
	"github.com/shopspring/decimal"

	"github.com/sells-group/dealdesk/internal/model"
)

// Pool is the minimal pgx pool surface the store uses; pgxmock satisfies it
// in tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	cfg.MaxConnLifetime = 30 * time.Minute
	cfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: connect")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS properties (
	id         TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL DEFAULT '',
	payload    JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS deals (
	id         TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL DEFAULT '',
	strategy   TEXT NOT NULL,
	payload    JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS transactions (
	id          TEXT PRIMARY KEY,
	property_id TEXT NOT NULL REFERENCES properties(id),
	date        TIMESTAMPTZ NOT NULL,
	type        TEXT NOT NULL,
	category    TEXT NOT NULL,
	amount      NUMERIC NOT NULL,
	note        TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_properties_user ON properties(user_id);
CREATE INDEX IF NOT EXISTS idx_deals_user ON deals(user_id);
CREATE INDEX IF NOT EXISTS idx_transactions_property_date ON transactions(property_id, date);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) SaveProperty(ctx context.Context, p *model.Property) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	p.Touch(time.Now())

	payload, err := json.Marshal(p)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal property")
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO properties (id, user_id, payload, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			user_id = EXCLUDED.user_id,
			payload = EXCLUDED.payload,
			updated_at = EXCLUDED.updated_at`,
		p.ID, p.UserID, payload, p.CreatedAt, p.UpdatedAt)
	return eris.Wrap(err, "postgres: save property")
}

func (s *PostgresStore) GetProperty(ctx context.Context, id string) (*model.Property, error) {
	var payload []byte
	err := s.pool.QueryRow(ctx,
		`SELECT payload FROM properties WHERE id = $1`, id).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: get property")
	}
	var p model.Property
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal property")
	}
	return &p, nil
}

func (s *PostgresStore) ListProperties(ctx context.Context, userID string) ([]model.Property, error) {
	query := `SELECT payload FROM properties ORDER BY created_at`
	args := []any{}
	if userID != "" {
		query = `SELECT payload FROM properties WHERE user_id = $1 ORDER BY created_at`
		args = append(args, userID)
	}
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list properties")
	}
	defer rows.Close()

	var out []model.Property
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, eris.Wrap(err, "postgres: scan property")
		}
		var p model.Property
		if err := json.Unmarshal(payload, &p); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal property")
		}
		out = append(out, p)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list properties")
}

func (s *PostgresStore) SaveDeal(ctx context.Context, d model.Deal) error {
	c := d.Common()
	if c.ID == "" {
		c.ID = uuid.New().String()
	}

	payload, err := model.MarshalDeal(d)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal deal")
	}
	now := time.Now().UTC()
	_, err = s.pool.Exec(ctx, `
		INSERT INTO deals (id, user_id, strategy, payload, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			user_id = EXCLUDED.user_id,
			strategy = EXCLUDED.strategy,
			payload = EXCLUDED.payload,
			updated_at = EXCLUDED.updated_at`,
		c.ID, c.UserID, string(d.Strategy()), payload, now, now)
	return eris.Wrap(err, "postgres: save deal")
}

func (s *PostgresStore) GetDeal(ctx context.Context, id string) (model.Deal, error) {
	var payload []byte
	err := s.pool.QueryRow(ctx,
		`SELECT payload FROM deals WHERE id = $1`, id).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: get deal")
	}
	return model.UnmarshalDeal(payload)
}

func (s *PostgresStore) ListDeals(ctx context.Context, userID string) ([]model.Deal, error) {
	query := `SELECT payload FROM deals ORDER BY created_at`
	args := []any{}
	if userID != "" {
		query = `SELECT payload FROM deals WHERE user_id = $1 ORDER BY created_at`
		args = append(args, userID)
	}
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list deals")
	}
	defer rows.Close()

	var out []model.Deal
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, eris.Wrap(err, "postgres: scan deal")
		}
		d, err := model.UnmarshalDeal(payload)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list deals")
}

func (s *PostgresStore) AddTransaction(ctx context.Context, tx *model.Transaction) error {
	if err := tx.Validate(); err != nil {
		return err
	}
	if tx.ID == "" {
		tx.ID = uuid.New().String()
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO transactions (id, property_id, date, type, category, amount, note)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		tx.ID, tx.PropertyID, tx.Date.UTC(), string(tx.Type), tx.Category, tx.Amount, tx.Note)
	return eris.Wrap(err, "postgres: add transaction")
}

func (s *PostgresStore) ListTransactions(ctx context.Context, propertyID string) ([]model.Transaction, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, property_id, date, type, category, amount, note
		FROM transactions WHERE property_id = $1 ORDER BY date`, propertyID)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list transactions")
	}
	defer rows.Close()

	var out []model.Transaction
	for rows.Next() {
		var tx model.Transaction
		var txType string
		var amount decimal.Decimal
		if err := rows.Scan(&tx.ID, &tx.PropertyID, &tx.Date, &txType, &tx.Category, &amount, &tx.Note); err != nil {
			return nil, eris.Wrap(err, "postgres: scan transaction")
		}
		tx.Type = model.TransactionType(txType)
		tx.Amount = amount
		out = append(out, tx)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list transactions")
}

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"github.com/sells-group/dealdesk/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	if dsn == "" {
		dsn = "dealdesk.db"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS properties (
	id         TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL DEFAULT '',
	payload    TEXT NOT NULL,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS deals (
	id         TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL DEFAULT '',
	strategy   TEXT NOT NULL,
	payload    TEXT NOT NULL,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS transactions (
	id          TEXT PRIMARY KEY,
	property_id TEXT NOT NULL REFERENCES properties(id),
	date        DATETIME NOT NULL,
	type        TEXT NOT NULL,
	category    TEXT NOT NULL,
	amount      TEXT NOT NULL,
	note        TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_properties_user ON properties(user_id);
CREATE INDEX IF NOT EXISTS idx_deals_user ON deals(user_id);
CREATE INDEX IF NOT EXISTS idx_transactions_property_date ON transactions(property_id, date);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveProperty(ctx context.Context, p *model.Property) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	p.Touch(time.Now())

	payload, err := json.Marshal(p)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal property")
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO properties (id, user_id, payload, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			user_id = excluded.user_id,
			payload = excluded.payload,
			updated_at = excluded.updated_at`,
		p.ID, p.UserID, string(payload), p.CreatedAt, p.UpdatedAt)
	return eris.Wrap(err, "sqlite: save property")
}

func (s *SQLiteStore) GetProperty(ctx context.Context, id string) (*model.Property, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM properties WHERE id = ?`, id).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get property")
	}
	var p model.Property
	if err := json.Unmarshal([]byte(payload), &p); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal property")
	}
	return &p, nil
}

func (s *SQLiteStore) ListProperties(ctx context.Context, userID string) ([]model.Property, error) {
	query := `SELECT payload FROM properties ORDER BY created_at`
	args := []any{}
	if userID != "" {
		query = `SELECT payload FROM properties WHERE user_id = ? ORDER BY created_at`
		args = append(args, userID)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list properties")
	}
	defer rows.Close()

	var out []model.Property
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan property")
		}
		var p model.Property
		if err := json.Unmarshal([]byte(payload), &p); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal property")
		}
		out = append(out, p)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list properties")
}

func (s *SQLiteStore) SaveDeal(ctx context.Context, d model.Deal) error {
	c := d.Common()
	if c.ID == "" {
		c.ID = uuid.New().String()
	}

	payload, err := model.MarshalDeal(d)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal deal")
	}
	now := time.Now().UTC()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO deals (id, user_id, strategy, payload, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			user_id = excluded.user_id,
			strategy = excluded.strategy,
			payload = excluded.payload,
			updated_at = excluded.updated_at`,
		c.ID, c.UserID, string(d.Strategy()), string(payload), now, now)
	return eris.Wrap(err, "sqlite: save deal")
}

func (s *SQLiteStore) GetDeal(ctx context.Context, id string) (model.Deal, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM deals WHERE id = ?`, id).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get deal")
	}
	return model.UnmarshalDeal([]byte(payload))
}

func (s *SQLiteStore) ListDeals(ctx context.Context, userID string) ([]model.Deal, error) {
	query := `SELECT payload FROM deals ORDER BY created_at`
	args := []any{}
	if userID != "" {
		query = `SELECT payload FROM deals WHERE user_id = ? ORDER BY created_at`
		args = append(args, userID)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list deals")
	}
	defer rows.Close()

	var out []model.Deal
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan deal")
		}
		d, err := model.UnmarshalDeal([]byte(payload))
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list deals")
}

func (s *SQLiteStore) AddTransaction(ctx context.Context, tx *model.Transaction) error {
	if err := tx.Validate(); err != nil {
		return err
	}
	if tx.ID == "" {
		tx.ID = uuid.New().String()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO transactions (id, property_id, date, type, category, amount, note)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		tx.ID, tx.PropertyID, tx.Date.UTC(), string(tx.Type), tx.Category, tx.Amount.String(), tx.Note)
	return eris.Wrap(err, "sqlite: add transaction")
}

func (s *SQLiteStore) ListTransactions(ctx context.Context, propertyID string) ([]model.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, property_id, date, type, category, amount, note
		FROM transactions WHERE property_id = ? ORDER BY date`, propertyID)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list transactions")
	}
	defer rows.Close()

	var out []model.Transaction
	for rows.Next() {
		var tx model.Transaction
		var txType, amount string
		if err := rows.Scan(&tx.ID, &tx.PropertyID, &tx.Date, &txType, &tx.Category, &amount, &tx.Note); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan transaction")
		}
		tx.Type = model.TransactionType(txType)
		tx.Amount, err = decimal.NewFromString(amount)
		if err != nil {
			return nil, eris.Wrapf(err, "sqlite: parse amount %q", amount)
		}
		out = append(out, tx)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list transactions")
}

package recorder

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"PriceFeed/internal/model"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

func init() {
	// modernc registers itself as "sqlite", which sqlx does not know by default.
	sqlx.BindDriver(DriverSQLite, sqlx.QUESTION)
}

var schema = map[string][]string{
	DriverSQLite: {
		`CREATE TABLE IF NOT EXISTS price_readings (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			value          NUMERIC NOT NULL,
			base_asset     VARCHAR(10) NOT NULL,
			quote_currency VARCHAR(10) NOT NULL,
			observed_at    TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_price_readings_observed_at ON price_readings(observed_at)`,
	},
	DriverPostgres: {
		`CREATE TABLE IF NOT EXISTS price_readings (
			id             BIGSERIAL PRIMARY KEY,
			value          NUMERIC NOT NULL,
			base_asset     VARCHAR(10) NOT NULL,
			quote_currency VARCHAR(10) NOT NULL,
			observed_at    TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_price_readings_observed_at ON price_readings(observed_at)`,
	},
}

// SQLRecorder persists readings to SQLite or PostgreSQL through one SQL code path.
type SQLRecorder struct {
	db     *sqlx.DB
	driver string
	log    zerolog.Logger
}

// DriverFromDSN infers the driver from a connection string when none is configured.
func DriverFromDSN(dsn string) string {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return DriverPostgres
	}
	return DriverSQLite
}

// NewSQLRecorder opens (or creates) the database and runs migrations.
func NewSQLRecorder(ctx context.Context, driver, dsn string, log zerolog.Logger) (*SQLRecorder, error) {
	if driver == "" {
		driver = DriverFromDSN(dsn)
	}
	if _, ok := schema[driver]; !ok {
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}

	if driver == DriverSQLite && dsn != ":memory:" && !strings.HasPrefix(dsn, "file:") {
		if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
			return nil, fmt.Errorf("%w: create data dir: %w", ErrPersistence, err)
		}
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", ErrPersistence, driver, err)
	}

	if driver == DriverSQLite {
		// WAL lets dashboard readers scan while the collector appends.
		if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("%w: set WAL mode: %w", ErrPersistence, err)
		}
	}

	r := newSQLRecorder(db, driver, log)
	if err := r.Ping(ctx); err != nil {
		db.Close()
		return nil, err
	}
	if err := r.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}

	log.Info().Str("driver", driver).Msg("sql recorder opened")
	return r, nil
}

func newSQLRecorder(db *sqlx.DB, driver string, log zerolog.Logger) *SQLRecorder {
	return &SQLRecorder{db: db, driver: driver, log: log}
}

// Migrate creates the price_readings table and its index if absent.
func (r *SQLRecorder) Migrate(ctx context.Context) error {
	for _, s := range schema[r.driver] {
		if _, err := r.db.ExecContext(ctx, s); err != nil {
			return fmt.Errorf("%w: migrate: %w", ErrPersistence, err)
		}
	}
	return nil
}

func (r *SQLRecorder) Append(ctx context.Context, rd model.Reading) (model.Reading, error) {
	if err := validate(rd); err != nil {
		return model.Reading{}, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	rd.ObservedAt = rd.ObservedAt.UTC()

	q := r.db.Rebind(`INSERT INTO price_readings
		(value, base_asset, quote_currency, observed_at)
		VALUES (?, ?, ?, ?) RETURNING id`)
	if err := r.db.QueryRowxContext(ctx, q,
		rd.Value, rd.BaseAsset, rd.QuoteCurrency, rd.ObservedAt,
	).Scan(&rd.ID); err != nil {
		return model.Reading{}, fmt.Errorf("%w: insert reading: %w", ErrPersistence, err)
	}
	return rd, nil
}

func (r *SQLRecorder) ReadAll(ctx context.Context, order model.Order, rng model.TimeRange) ([]model.Reading, error) {
	var (
		where []string
		args  []interface{}
	)
	if !rng.From.IsZero() {
		where = append(where, "observed_at >= ?")
		args = append(args, rng.From.UTC())
	}
	if !rng.To.IsZero() {
		where = append(where, "observed_at <= ?")
		args = append(args, rng.To.UTC())
	}

	var b strings.Builder
	b.WriteString("SELECT id, value, base_asset, quote_currency, observed_at FROM price_readings")
	if len(where) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(where, " AND "))
	}
	fmt.Fprintf(&b, " ORDER BY observed_at %s, id %s", order, order)

	readings := []model.Reading{}
	if err := r.db.SelectContext(ctx, &readings, r.db.Rebind(b.String()), args...); err != nil {
		return nil, fmt.Errorf("%w: read readings: %w", ErrPersistence, err)
	}
	for i := range readings {
		readings[i].ObservedAt = readings[i].ObservedAt.UTC()
	}
	return readings, nil
}

func (r *SQLRecorder) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: ping: %w", ErrPersistence, err)
	}
	return nil
}

func (r *SQLRecorder) Close() error {
	r.log.Info().Msg("closing sql recorder")
	return r.db.Close()
}

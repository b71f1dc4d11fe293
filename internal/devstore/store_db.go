package devstore

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"

	"CatalogDesk/internal/catalog"
)

const (
	pingTimeout  = 1 * time.Second
	queryTimeout = 3 * time.Second

	pgCheckViolation = "23514"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const productColumns = `id, title, price::float8, description, category, image, rating_rate::float8, rating_count`

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// OpenPostgres connects through the pgx stdlib driver and waits for a ping.
func OpenPostgres(ctx context.Context, url string) (*sql.DB, error) {
	db, err := sql.Open("pgx", url)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := withTimeout(ctx, 5*time.Second, db.PingContext); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connect database: %w", err)
	}
	return db, nil
}

type migrationLogger struct {
	log *zap.Logger
}

func (l migrationLogger) Printf(format string, v ...any) {
	l.log.Info(fmt.Sprintf(format, v...))
}

func (l migrationLogger) Verbose() bool { return false }

// Migrate applies the embedded schema migrations. The migrate instance is
// not closed because that would close db too.
func Migrate(db *sql.DB, log *zap.Logger) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("migrations source: %w", err)
	}
	drv, err := migratepgx.WithInstance(db, &migratepgx.Config{})
	if err != nil {
		return fmt.Errorf("migrations driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "pgx5", drv)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	m.Log = migrationLogger{log: log}

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			m.Log.Printf("no migrations to apply")
			return nil
		}
		return fmt.Errorf("migrate up: %w", err)
	}
	m.Log.Printf("migrations applied")
	return nil
}

// SeedIfEmpty inserts seed only into an empty table.
func (s *PostgresStore) SeedIfEmpty(ctx context.Context, seed []catalog.Product) error {
	return withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		var n int
		if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM products`).Scan(&n); err != nil {
			return err
		}
		if n > 0 {
			return nil
		}
		for _, p := range seed {
			var rate sql.NullFloat64
			var count sql.NullInt64
			if p.Rating != nil {
				rate = sql.NullFloat64{Float64: p.Rating.Rate, Valid: true}
				count = sql.NullInt64{Int64: int64(p.Rating.Count), Valid: true}
			}
			if _, err := s.db.ExecContext(ctx, `
				INSERT INTO products (title, price, description, category, image, rating_rate, rating_count)
				VALUES ($1, $2, $3, $4, $5, $6, $7)
			`, p.Title, p.Price, p.Description, p.Category, p.Image, rate, count); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return withTimeout(ctx, pingTimeout, s.db.PingContext)
}

func (s *PostgresStore) List(ctx context.Context) ([]catalog.Product, error) {
	var out []catalog.Product

	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		rows, err := s.db.QueryContext(ctx, `SELECT `+productColumns+` FROM products ORDER BY id ASC`)
		if err != nil {
			return err
		}
		defer rows.Close()

		out = make([]catalog.Product, 0, 16)
		for rows.Next() {
			p, err := scanProduct(rows)
			if err != nil {
				return err
			}
			out = append(out, p)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *PostgresStore) Get(ctx context.Context, id int) (catalog.Product, bool, error) {
	var p catalog.Product
	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		var err error
		p, err = scanProduct(s.db.QueryRowContext(ctx,
			`SELECT `+productColumns+` FROM products WHERE id = $1`, id))
		return err
	})
	return found(p, err)
}

func (s *PostgresStore) Create(ctx context.Context, in catalog.Payload) (catalog.Product, error) {
	var p catalog.Product
	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		var err error
		p, err = scanProduct(s.db.QueryRowContext(ctx, `
			INSERT INTO products (title, price, description, category, image)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING `+productColumns,
			in.Title, in.Price, in.Description, in.Category, in.Image))
		return err
	})
	if err != nil {
		return catalog.Product{}, mapPgError(err)
	}
	return p, nil
}

func (s *PostgresStore) Replace(ctx context.Context, id int, in catalog.Payload) (catalog.Product, bool, error) {
	var p catalog.Product
	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		var err error
		p, err = scanProduct(s.db.QueryRowContext(ctx, `
			UPDATE products
			SET title = $2, price = $3, description = $4, category = $5, image = $6
			WHERE id = $1
			RETURNING `+productColumns,
			id, in.Title, in.Price, in.Description, in.Category, in.Image))
		return err
	})
	return found(p, mapPgError(err))
}

func (s *PostgresStore) Delete(ctx context.Context, id int) (catalog.Product, bool, error) {
	var p catalog.Product
	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		var err error
		p, err = scanProduct(s.db.QueryRowContext(ctx,
			`DELETE FROM products WHERE id = $1 RETURNING `+productColumns, id))
		return err
	})
	return found(p, err)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProduct(row scanner) (catalog.Product, error) {
	var (
		p     catalog.Product
		rate  sql.NullFloat64
		count sql.NullInt64
	)
	if err := row.Scan(&p.ID, &p.Title, &p.Price, &p.Description, &p.Category, &p.Image, &rate, &count); err != nil {
		return catalog.Product{}, err
	}
	if rate.Valid {
		p.Rating = &catalog.Rating{Rate: rate.Float64, Count: int(count.Int64)}
	}
	return p, nil
}

func found(p catalog.Product, err error) (catalog.Product, bool, error) {
	if errors.Is(err, sql.ErrNoRows) {
		return catalog.Product{}, false, nil
	}
	if err != nil {
		return catalog.Product{}, false, err
	}
	return p, true, nil
}

func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgCheckViolation {
		return fmt.Errorf("%w: %s", ErrInvalidProduct, pgErr.ConstraintName)
	}
	return err
}

func withTimeout(parent context.Context, d time.Duration, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(parent, d)
	defer cancel()
	return fn(ctx)
}

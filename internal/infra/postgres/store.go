package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"

	"webnova-quiz-service/internal/app"
	"webnova-quiz-service/internal/infra/postgres/migrations"
)

// Store is the live BackingStore. Quizzes go through pgx, relational data through bun.
type Store struct {
	pool *pgxpool.Pool
	db   *bun.DB

	quizzes     *QuizRepository
	users       *UserLedger
	boards      *Leaderboard
	credentials *CredentialStore
}

// Open connects both drivers to dsn.
func Open(ctx context.Context, dsn string, quizLifetime time.Duration) (*Store, error) {
	pool, err := pgxpool.Connect(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect pgx: %w", err)
	}
	db := OpenDB(dsn)
	if err := db.PingContext(ctx); err != nil {
		pool.Close()
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return NewStore(pool, db, quizLifetime), nil
}

// OpenDB returns a bun handle over pgdriver.
func OpenDB(dsn string) *bun.DB {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	return bun.NewDB(sqldb, pgdialect.New())
}

func NewStore(pool *pgxpool.Pool, db *bun.DB, quizLifetime time.Duration) *Store {
	return &Store{
		pool:        pool,
		db:          db,
		quizzes:     NewQuizRepository(pool, quizLifetime),
		users:       NewUserLedger(db),
		boards:      NewLeaderboard(db),
		credentials: NewCredentialStore(db),
	}
}

// Migrate applies every pending schema migration.
func Migrate(ctx context.Context, db *bun.DB) (*migrate.MigrationGroup, error) {
	migrator := migrate.NewMigrator(db, migrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		return nil, fmt.Errorf("init migrator: %w", err)
	}
	group, err := migrator.Migrate(ctx)
	if err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return group, nil
}

func (s *Store) DB() *bun.DB { return s.db }

func (s *Store) Quizzes() app.QuizRepository { return s.quizzes }

func (s *Store) Users() app.UserLedger { return s.users }

func (s *Store) Leaderboards() app.Leaderboard { return s.boards }

func (s *Store) Credentials() app.CredentialStore { return s.credentials }

func (s *Store) Close() error {
	s.pool.Close()
	return s.db.Close()
}

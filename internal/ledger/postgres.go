package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists user ledgers in PostgreSQL.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore constructs a Postgres-backed ledger store.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// Load fetches the ledger for an identity, returning a zeroed record when
// none exists yet.
func (s *PostgresStore) Load(ctx context.Context, identity string) (UserLedger, error) {
	row := s.db.QueryRow(ctx, `SELECT identity, missions, tokens, email, updated_at
        FROM ledgers WHERE identity = $1`, identity)
	var l UserLedger
	var updatedAt time.Time
	if err := row.Scan(&l.Identity, &l.Missions, &l.Tokens, &l.Email, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return UserLedger{Identity: identity}, nil
		}
		return UserLedger{}, err
	}
	l.UpdatedAt = updatedAt.UTC()
	return l, nil
}

// Save upserts the full ledger record.
func (s *PostgresStore) Save(ctx context.Context, l UserLedger) error {
	_, err := s.db.Exec(ctx, `INSERT INTO ledgers (identity, missions, tokens, email, updated_at)
        VALUES ($1, $2, $3, $4, now())
        ON CONFLICT (identity) DO UPDATE
        SET missions = EXCLUDED.missions, tokens = EXCLUDED.tokens,
            email = EXCLUDED.email, updated_at = now()`,
		l.Identity, l.Missions, l.Tokens, l.Email)
	return err
}

// ApplyReward credits a verification reward to the identity's balance,
// creating the ledger row if absent.
func (s *PostgresStore) ApplyReward(ctx context.Context, identity string, amount int) (UserLedger, error) {
	if amount < 0 {
		return UserLedger{}, fmt.Errorf("reward must be non-negative")
	}
	return s.apply(ctx, identity, 0, amount)
}

// ApplyMission records one completed mission and its submission reward.
func (s *PostgresStore) ApplyMission(ctx context.Context, identity string, reward int) (UserLedger, error) {
	if reward < 0 {
		return UserLedger{}, fmt.Errorf("reward must be non-negative")
	}
	return s.apply(ctx, identity, 1, reward)
}

// Redeem debits tokens from the balance, failing when funds are short.
func (s *PostgresStore) Redeem(ctx context.Context, identity string, amount int) (UserLedger, error) {
	if amount <= 0 {
		return UserLedger{}, fmt.Errorf("amount must be positive")
	}

	row := s.db.QueryRow(ctx, `UPDATE ledgers
        SET tokens = tokens - $2, updated_at = now()
        WHERE identity = $1 AND tokens >= $2
        RETURNING identity, missions, tokens, email, updated_at`, identity, amount)

	var l UserLedger
	var updatedAt time.Time
	if err := row.Scan(&l.Identity, &l.Missions, &l.Tokens, &l.Email, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return UserLedger{}, ErrInsufficientTokens
		}
		return UserLedger{}, err
	}
	l.UpdatedAt = updatedAt.UTC()
	return l, nil
}

func (s *PostgresStore) apply(ctx context.Context, identity string, missions, tokens int) (UserLedger, error) {
	row := s.db.QueryRow(ctx, `INSERT INTO ledgers (identity, missions, tokens, email, updated_at)
        VALUES ($1, $2, $3, '', now())
        ON CONFLICT (identity) DO UPDATE
        SET missions = ledgers.missions + $2, tokens = ledgers.tokens + $3, updated_at = now()
        RETURNING identity, missions, tokens, email, updated_at`, identity, missions, tokens)

	var l UserLedger
	var updatedAt time.Time
	if err := row.Scan(&l.Identity, &l.Missions, &l.Tokens, &l.Email, &updatedAt); err != nil {
		return UserLedger{}, err
	}
	l.UpdatedAt = updatedAt.UTC()
	return l, nil
}

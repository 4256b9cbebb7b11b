package ledger

import (
	"context"
	"errors"
	"time"
)

// ErrInsufficientTokens occurs when a redemption asks for more tokens than
// the ledger holds. Balances never go negative.
var ErrInsufficientTokens = errors.New("insufficient tokens")

// UserLedger is the per-identity record of cumulative missions and token
// balance. It is owned by a single device: mutations are last-write-wins
// with no cross-device merge.
type UserLedger struct {
	Identity  string
	Missions  int
	Tokens    int
	Email     string
	UpdatedAt time.Time
}

// Store defines the contract implemented by ledger backends.
//
// Load returns a zeroed ledger when none exists yet; Save is an
// idempotent full overwrite. ApplyMission increments the mission count by
// one and the balance by the submission reward; ApplyReward credits a
// verification reward; Redeem is the only decrease path.
type Store interface {
	Load(ctx context.Context, identity string) (UserLedger, error)
	Save(ctx context.Context, l UserLedger) error
	ApplyReward(ctx context.Context, identity string, amount int) (UserLedger, error)
	ApplyMission(ctx context.Context, identity string, reward int) (UserLedger, error)
	Redeem(ctx context.Context, identity string, amount int) (UserLedger, error)
}

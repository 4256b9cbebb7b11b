package session

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/airbounty/airbounty/internal/identity"
	"github.com/airbounty/airbounty/internal/ledger"
	"github.com/airbounty/airbounty/internal/notification"
)

const codeLength = 6

var (
	// ErrNoChallenge indicates there is no live challenge to verify.
	ErrNoChallenge = errors.New("no live challenge")
	// ErrCodeLength indicates the entered code is not exactly six digits.
	ErrCodeLength = errors.New("code must be 6 digits")
	// ErrCodeExpired indicates the live code's 60 second window has passed.
	ErrCodeExpired = errors.New("code expired")
	// ErrCodeMismatch indicates the entered code does not match the live one.
	ErrCodeMismatch = errors.New("code mismatch")
	// ErrCountdownActive indicates a resend was attempted while the
	// countdown is still running.
	ErrCountdownActive = errors.New("resend countdown active")
	// ErrNoSession indicates no current-identity pointer exists to restore.
	ErrNoSession = errors.New("no saved session")
)

// Session is an established authentication: a bound identity, its ledger
// and a bearer token for subsequent requests.
type Session struct {
	Identity    identity.Identity
	Ledger      ledger.UserLedger
	Token       string
	TokenExpiry time.Time
}

// Service owns the challenge lifecycle and the current-identity pointer.
// It replaces the ambient globals of the original client with one
// explicit session context object.
type Service struct {
	ledgers  ledger.Store
	pointers PointerStore
	notifier notification.Notifier
	tokens   *TokenCodec
	logger   *slog.Logger
	codeTTL  time.Duration

	mu      sync.Mutex
	current *challenge

	// Injectable for tests.
	now     func() time.Time
	genCode func() (string, error)
}

// NewService wires the session manager.
func NewService(ledgers ledger.Store, pointers PointerStore, notifier notification.Notifier, tokens *TokenCodec, logger *slog.Logger, codeTTL time.Duration) *Service {
	return &Service{
		ledgers:  ledgers,
		pointers: pointers,
		notifier: notifier,
		tokens:   tokens,
		logger:   logger,
		codeTTL:  codeTTL,
		now:      time.Now,
		genCode:  generateCode,
	}
}

// RequestChallenge validates the contact input, issues a fresh six digit
// code with a 60 second expiry and hands it to the delivery channel.
// Any previously live code is superseded unconditionally. The code is
// delivered fire-and-forget: a delivery failure is logged, never fatal.
func (s *Service) RequestChallenge(ctx context.Context, rawIdentity string) (ChallengeInfo, error) {
	id, err := identity.Normalize(rawIdentity)
	if err != nil {
		return ChallengeInfo{}, err
	}
	return s.issue(ctx, id)
}

// ResendChallenge issues a new code for the same flow. It is gated by the
// countdown: the previous code must have run out before a resend is
// accepted. The new code invalidates the old one and restarts the window.
func (s *Service) ResendChallenge(ctx context.Context, rawIdentity string) (ChallengeInfo, error) {
	id, err := identity.Normalize(rawIdentity)
	if err != nil {
		return ChallengeInfo{}, err
	}

	s.mu.Lock()
	if s.current != nil && s.current.state == StateIssued && s.now().Before(s.current.expiresAt) {
		s.mu.Unlock()
		return ChallengeInfo{}, ErrCountdownActive
	}
	s.mu.Unlock()

	return s.issue(ctx, id)
}

func (s *Service) issue(ctx context.Context, id identity.Identity) (ChallengeInfo, error) {
	code, err := s.genCode()
	if err != nil {
		return ChallengeInfo{}, fmt.Errorf("generate code: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return ChallengeInfo{}, fmt.Errorf("hash code: %w", err)
	}

	now := s.now()
	s.mu.Lock()
	if s.current != nil && s.current.state == StateIssued {
		s.current.state = StateSuperseded
	}
	s.current = &challenge{
		identity:  id,
		codeHash:  hash,
		issuedAt:  now,
		expiresAt: now.Add(s.codeTTL),
		state:     StateIssued,
	}
	expiresAt := s.current.expiresAt
	s.mu.Unlock()

	msg := notification.Message{Code: code}
	switch id.Kind {
	case identity.KindEmail:
		msg.Email = id.Key
	case identity.KindPhone:
		msg.Phone = id.Key
	}
	if err := s.notifier.Send(ctx, msg); err != nil {
		s.logger.Warn("otp delivery failed", "identity", id.Mask(), "error", err)
	}

	return ChallengeInfo{MaskedIdentity: id.Mask(), ExpiresAt: expiresAt}, nil
}

// VerifyChallenge checks the entered code against the live challenge.
// Checks run in order: length, expiry, match. Failures never mutate the
// ledger. On success the challenge is consumed, the identity's ledger is
// loaded or lazily created, and the current-identity pointer is persisted.
func (s *Service) VerifyChallenge(ctx context.Context, enteredCode string) (Session, error) {
	s.mu.Lock()
	ch := s.current
	if ch == nil || ch.state != StateIssued {
		s.mu.Unlock()
		return Session{}, ErrNoChallenge
	}
	if !isDigits(enteredCode) || len(enteredCode) != codeLength {
		s.mu.Unlock()
		return Session{}, ErrCodeLength
	}
	if s.now().After(ch.expiresAt) {
		ch.state = StateExpired
		s.mu.Unlock()
		return Session{}, ErrCodeExpired
	}
	if bcrypt.CompareHashAndPassword(ch.codeHash, []byte(enteredCode)) != nil {
		s.mu.Unlock()
		return Session{}, ErrCodeMismatch
	}
	ch.state = StateConsumed
	id := ch.identity
	s.mu.Unlock()

	return s.establish(ctx, id)
}

// RestoreSession adopts the persisted current-identity pointer without a
// new challenge. Quick-login is a deliberate trust gap: possession of the
// device stands in for possession of the contact channel.
func (s *Service) RestoreSession(ctx context.Context) (Session, error) {
	saved, err := s.pointers.Current(ctx)
	if err != nil {
		return Session{}, fmt.Errorf("load session pointer: %w", err)
	}
	if saved == "" {
		return Session{}, ErrNoSession
	}
	id, err := identity.Normalize(saved)
	if err != nil {
		return Session{}, ErrNoSession
	}
	return s.establish(ctx, id)
}

// Logout clears only the current-identity pointer. Ledger data persists.
func (s *Service) Logout(ctx context.Context) error {
	return s.pointers.Clear(ctx)
}

// ResendCountdown reports the explicit countdown state for the resend
// action.
func (s *Service) ResendCountdown() Countdown {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil || s.current.state != StateIssued {
		return Countdown{State: CountdownIdle}
	}
	remaining := s.current.expiresAt.Sub(s.now())
	if remaining <= 0 {
		return Countdown{State: CountdownIdle}
	}
	return Countdown{State: CountdownCounting, Remaining: int(remaining.Round(time.Second) / time.Second)}
}

// Identify resolves a bearer token back to the identity it was issued for.
func (s *Service) Identify(token string) (identity.Identity, error) {
	key, err := s.tokens.Verify(token)
	if err != nil {
		return identity.Identity{}, err
	}
	id, err := identity.Normalize(key)
	if err != nil {
		return identity.Identity{}, ErrInvalidToken
	}
	return id, nil
}

func (s *Service) establish(ctx context.Context, id identity.Identity) (Session, error) {
	led, err := s.ledgers.Load(ctx, id.LedgerKey())
	if err != nil {
		return Session{}, fmt.Errorf("load ledger: %w", err)
	}
	if id.Kind == identity.KindEmail && led.Email == "" {
		led.Email = id.Key
	}
	if err := s.ledgers.Save(ctx, led); err != nil {
		return Session{}, fmt.Errorf("save ledger: %w", err)
	}

	if err := s.pointers.Set(ctx, id.Key); err != nil {
		return Session{}, fmt.Errorf("persist session pointer: %w", err)
	}

	token, exp, err := s.tokens.Sign(id.Key, string(id.Kind))
	if err != nil {
		return Session{}, fmt.Errorf("sign session token: %w", err)
	}

	return Session{Identity: id, Ledger: led, Token: token, TokenExpiry: exp}, nil
}

// generateCode draws a uniformly random six digit code, 100000-999999.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

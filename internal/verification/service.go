package verification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/airbounty/airbounty/internal/identity"
	"github.com/airbounty/airbounty/internal/ledger"
	"github.com/airbounty/airbounty/internal/reportstore"
)

// ErrAlreadyVerified indicates this viewer already verified this report.
var ErrAlreadyVerified = errors.New("report already verified by this user")

// Config carries the engine's product knobs.
type Config struct {
	VerifierReward int
	Quorum         int
}

// VerifyResult describes the outcome of a verification action.
type VerifyResult struct {
	Rewarded bool
	Reward   int
	Ledger   ledger.UserLedger
}

// Service is the community verification engine: it filters the remote
// store's reports into a per-viewer pending queue, records verification
// events and issues verifier rewards.
type Service struct {
	ledgers ledger.Store
	store   reportstore.Store
	guard   Guard
	logger  *slog.Logger
	cfg     Config

	// Reports optimistically removed from a viewer's rendered queue this
	// session, keyed viewer -> report IDs. The store remains the source
	// of truth on the next refresh.
	mu      sync.Mutex
	removed map[string]map[string]struct{}
}

// NewService wires the verification engine.
func NewService(ledgers ledger.Store, store reportstore.Store, guard Guard, logger *slog.Logger, cfg Config) *Service {
	if guard == nil {
		guard = NoopGuard{}
	}
	return &Service{
		ledgers: ledgers,
		store:   store,
		guard:   guard,
		logger:  logger,
		cfg:     cfg,
		removed: make(map[string]map[string]struct{}),
	}
}

// ListPending fetches all reports and filters to the ones this viewer may
// verify: AI-approved, short of quorum, not their own, not already acted
// on this session. Ordering is the store's return order.
func (s *Service) ListPending(ctx context.Context, viewer identity.Identity) ([]reportstore.Report, error) {
	reports, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch reports: %w", err)
	}

	s.mu.Lock()
	dropped := s.removed[viewer.Key]
	s.mu.Unlock()

	pending := make([]reportstore.Report, 0, len(reports))
	for _, r := range reports {
		if !r.AIApproved {
			continue
		}
		if r.VerifiedCount >= s.cfg.Quorum {
			continue
		}
		if r.Username == viewer.Key {
			continue
		}
		if _, gone := dropped[r.ID]; gone {
			continue
		}
		pending = append(pending, r)
	}
	return pending, nil
}

// Verify records the viewer's judgement on a report. A positive judgement
// grants the verifier reward before the event reaches the store; like
// submission rewards, it is never rolled back on a store failure. The
// report leaves this viewer's pending queue immediately either way.
func (s *Service) Verify(ctx context.Context, reportID string, viewer identity.Identity, isValid bool) (VerifyResult, error) {
	fresh, err := s.guard.Reserve(ctx, reportID, viewer.LedgerKey())
	if err != nil {
		// Fail open: without the guard we fall back to same-session
		// removal, which is all the original offered.
		s.logger.Warn("verifier uniqueness guard unavailable", "report_id", reportID, "error", err)
		fresh = true
	}
	if !fresh {
		s.drop(viewer.Key, reportID)
		return VerifyResult{}, ErrAlreadyVerified
	}

	var result VerifyResult
	if isValid {
		led, err := s.ledgers.ApplyReward(ctx, viewer.LedgerKey(), s.cfg.VerifierReward)
		if err != nil {
			return VerifyResult{}, fmt.Errorf("apply verifier reward: %w", err)
		}
		result = VerifyResult{Rewarded: true, Reward: s.cfg.VerifierReward, Ledger: led}
	}

	// The wire uses the canonical key, matching the Username field of
	// published reports.
	if err := s.store.VerifyReport(ctx, reportID, viewer.Key, isValid); err != nil {
		s.logger.Warn("verification event publish failed", "report_id", reportID, "error", err)
	}

	s.drop(viewer.Key, reportID)
	return result, nil
}

// RefreshStats recomputes display-only aggregates over the store.
func (s *Service) RefreshStats(ctx context.Context) (reportstore.Stats, error) {
	reports, err := s.store.List(ctx)
	if err != nil {
		return reportstore.Stats{}, fmt.Errorf("fetch reports: %w", err)
	}

	stats := reportstore.Stats{TotalReports: len(reports)}
	for _, r := range reports {
		if r.VerifiedCount >= s.cfg.Quorum {
			stats.VerifiedCount++
		}
	}
	if stats.TotalReports > 0 {
		stats.Accuracy = float64(stats.VerifiedCount) / float64(stats.TotalReports) * 100
	}
	return stats, nil
}

func (s *Service) drop(viewerKey, reportID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.removed[viewerKey] == nil {
		s.removed[viewerKey] = make(map[string]struct{})
	}
	s.removed[viewerKey][reportID] = struct{}{}
}

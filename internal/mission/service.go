package mission

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/airbounty/airbounty/internal/geo"
	"github.com/airbounty/airbounty/internal/identity"
	"github.com/airbounty/airbounty/internal/ledger"
	"github.com/airbounty/airbounty/internal/reportstore"
	"github.com/airbounty/airbounty/internal/screening"
)

var (
	// ErrNotScreened indicates a submission without a matching live
	// screening verdict. Stale tokens land here too: a cancelled dialog's
	// verdict can never arm a later submission.
	ErrNotScreened = errors.New("no accepted screening for this submission")
	// ErrScreeningRejected indicates the screening gate blocked the image.
	ErrScreeningRejected = errors.New("screening rejected the image")
)

// Config carries the pipeline's product knobs.
type Config struct {
	RewardMin         int
	RewardMax         int
	DefaultHazardType string
}

// ScreeningOutcome is the result of running an image through the gate,
// bound to an invalidation token the subsequent submit must present.
type ScreeningOutcome struct {
	Token          string
	Verdict        screening.Verdict
	Classification screening.Classification
}

// SubmitInput captures a submission attempt.
type SubmitInput struct {
	ScreeningToken string
	HazardType     string
	Coordinate     geo.Coordinate
}

// SubmitResult is what the caller renders after a submission.
type SubmitResult struct {
	Reward int
	Ledger ledger.UserLedger
	Report reportstore.Report
}

type screeningState struct {
	token          string
	imageBase64    string
	classification screening.Classification
	verdict        screening.Verdict
}

// Service orchestrates the submission pipeline: screening gate, reward
// roll, ledger update, remote publication.
type Service struct {
	ledgers    ledger.Store
	store      reportstore.Store
	classifier screening.Classifier
	resolver   *geo.Resolver
	logger     *slog.Logger
	cfg        Config

	mu      sync.Mutex
	pending map[string]*screeningState

	// Injectable for tests.
	now  func() time.Time
	roll func(min, max int) int
}

// NewService wires the submission pipeline.
func NewService(ledgers ledger.Store, store reportstore.Store, classifier screening.Classifier, resolver *geo.Resolver, logger *slog.Logger, cfg Config) *Service {
	return &Service{
		ledgers:    ledgers,
		store:      store,
		classifier: classifier,
		resolver:   resolver,
		logger:     logger,
		cfg:        cfg,
		pending:    make(map[string]*screeningState),
		now:        time.Now,
		roll:       rollBetween,
	}
}

// Screen runs the captured image through the classifier and records the
// outcome under a fresh invalidation token. Any failure of the gate
// (transport, upstream status, unparsable answer) clears the pending
// state and blocks submission; the distinct sentinel lets the caller
// choose an actionable message.
func (s *Service) Screen(ctx context.Context, who identity.Identity, imageBase64 string) (ScreeningOutcome, error) {
	token := uuid.NewString()

	s.mu.Lock()
	s.pending[who.Key] = &screeningState{token: token}
	s.mu.Unlock()

	classification, err := s.classifier.Classify(ctx, imageBase64)

	s.mu.Lock()
	defer s.mu.Unlock()

	state, live := s.pending[who.Key]
	if !live || state.token != token {
		// The dialog was closed (or re-opened) while the call was in
		// flight; discard this verdict.
		return ScreeningOutcome{}, ErrNotScreened
	}

	if err != nil {
		delete(s.pending, who.Key)
		return ScreeningOutcome{}, err
	}

	verdict := screening.Reduce(classification)
	classification.Description = screening.FlagDescription(classification, verdict)

	state.imageBase64 = imageBase64
	state.classification = classification
	state.verdict = verdict

	outcome := ScreeningOutcome{Token: token, Verdict: verdict, Classification: classification}
	if !verdict.Allows() {
		delete(s.pending, who.Key)
		return outcome, ErrScreeningRejected
	}
	return outcome, nil
}

// CancelScreening discards the pending screening for the identity. An
// in-flight classifier call for the same token resolves to nothing.
func (s *Service) CancelScreening(who identity.Identity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pending, who.Key)
}

// Submit completes a mission. The ledger is credited before remote
// publication and is never rolled back if publication fails: the local
// reward is not revoked by a network failure, at the accepted cost of
// ledger/store divergence. The screening state resets regardless of the
// publish outcome.
func (s *Service) Submit(ctx context.Context, who identity.Identity, input SubmitInput) (SubmitResult, error) {
	s.mu.Lock()
	state, live := s.pending[who.Key]
	if !live || state.token != input.ScreeningToken || state.verdict == "" {
		s.mu.Unlock()
		return SubmitResult{}, ErrNotScreened
	}
	if !state.verdict.Allows() {
		delete(s.pending, who.Key)
		s.mu.Unlock()
		return SubmitResult{}, ErrScreeningRejected
	}
	delete(s.pending, who.Key)
	s.mu.Unlock()

	coord := s.resolver.Resolve(input.Coordinate)

	hazardType := input.HazardType
	if hazardType == "" {
		hazardType = s.cfg.DefaultHazardType
	}

	reward := s.roll(s.cfg.RewardMin, s.cfg.RewardMax)

	led, err := s.ledgers.ApplyMission(ctx, who.LedgerKey(), reward)
	if err != nil {
		return SubmitResult{}, fmt.Errorf("apply mission reward: %w", err)
	}

	report := reportstore.Report{
		ID:            uuid.NewString(),
		Username:      who.Key,
		MissionType:   hazardType,
		Token:         reward,
		Lat:           coord.Lat,
		Lng:           coord.Lng,
		Image:         state.imageBase64,
		AIApproved:    true,
		AIConfidence:  state.classification.Confidence,
		AIDescription: state.classification.Description,
		VerifiedCount: 0,
		Timestamp:     s.now().UTC().Format(time.RFC3339),
	}

	if err := s.store.Publish(ctx, report); err != nil {
		// Accepted-risk design: the reward stands even when the report
		// never reaches the store.
		s.logger.Warn("report publish failed", "report_id", report.ID, "identity", who.Mask(), "error", err)
	}

	return SubmitResult{Reward: reward, Ledger: led, Report: report}, nil
}

func rollBetween(min, max int) int {
	if max <= min {
		return min
	}
	return min + rand.Intn(max-min+1)
}

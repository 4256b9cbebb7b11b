package reportstore

import (
	"context"
	"sync"
)

// MemoryStore mimics the remote store's observed behavior for tests and
// dev mode, including the server-side verified_count increment.
type MemoryStore struct {
	mu      sync.RWMutex
	reports []Report
	otps    []SentOTP
	events  []VerifyEvent
}

// SentOTP records a delivery request the store received.
type SentOTP struct {
	Email string
	Phone string
	OTP   string
}

// VerifyEvent records a verification action envelope.
type VerifyEvent struct {
	ReportID string
	Verifier string
	IsValid  bool
}

// NewMemoryStore constructs an empty in-memory report store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) List(_ context.Context) ([]Report, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Report, len(m.reports))
	copy(out, m.reports)
	return out, nil
}

func (m *MemoryStore) Publish(_ context.Context, r Report) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reports = append(m.reports, r)
	return nil
}

func (m *MemoryStore) SendOTP(_ context.Context, email, phone, otp string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.otps = append(m.otps, SentOTP{Email: email, Phone: phone, OTP: otp})
	return nil
}

func (m *MemoryStore) VerifyReport(_ context.Context, reportID, verifier string, isValid bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, VerifyEvent{ReportID: reportID, Verifier: verifier, IsValid: isValid})
	if isValid {
		for i := range m.reports {
			if m.reports[i].ID == reportID {
				m.reports[i].VerifiedCount++
				break
			}
		}
	}
	return nil
}

// SentOTPs returns the delivery requests received so far.
func (m *MemoryStore) SentOTPs() []SentOTP {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]SentOTP, len(m.otps))
	copy(out, m.otps)
	return out
}

// VerifyEvents returns the verification envelopes received so far.
func (m *MemoryStore) VerifyEvents() []VerifyEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]VerifyEvent, len(m.events))
	copy(out, m.events)
	return out
}

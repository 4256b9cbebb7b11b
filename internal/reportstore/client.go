package reportstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrUnavailable indicates the remote store did not answer 200 with a
// JSON body, the only success contract it offers.
var ErrUnavailable = errors.New("report store unavailable")

// Store defines the contract for the remote report store.
type Store interface {
	List(ctx context.Context) ([]Report, error)
	Publish(ctx context.Context, r Report) error
	SendOTP(ctx context.Context, email, phone, otp string) error
	VerifyReport(ctx context.Context, reportID, verifier string, isValid bool) error
}

// HTTPStore talks to the append-style HTTP/JSON report endpoint.
type HTTPStore struct {
	url    string
	client *http.Client
}

// NewHTTPStore builds a client for the given endpoint URL.
func NewHTTPStore(url string) *HTTPStore {
	return &HTTPStore{url: url, client: &http.Client{Timeout: 15 * time.Second}}
}

// List fetches every report the store holds, in the store's return order.
func (s *HTTPStore) List(ctx context.Context) ([]Report, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var reports []Report
	if err := json.NewDecoder(io.LimitReader(resp.Body, 16<<20)).Decode(&reports); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrUnavailable, err)
	}
	return reports, nil
}

// Publish appends a new report document.
func (s *HTTPStore) Publish(ctx context.Context, r Report) error {
	return s.post(ctx, r)
}

type otpEnvelope struct {
	Action string `json:"action"`
	Email  string `json:"email,omitempty"`
	Phone  string `json:"phone,omitempty"`
	OTP    string `json:"otp"`
}

// verifyEnvelope always carries is_valid: a negative judgement is a
// recorded event, not an absent field.
type verifyEnvelope struct {
	Action   string `json:"action"`
	ReportID string `json:"report_id"`
	Verifier string `json:"verifier"`
	IsValid  bool   `json:"is_valid"`
}

// SendOTP asks the store's delivery hook to forward a one-time code.
func (s *HTTPStore) SendOTP(ctx context.Context, email, phone, otp string) error {
	return s.post(ctx, otpEnvelope{Action: "send_otp", Email: email, Phone: phone, OTP: otp})
}

// VerifyReport submits a verification event. Incrementing verified_count
// is the store's responsibility, not the client's.
func (s *HTTPStore) VerifyReport(ctx context.Context, reportID, verifier string, isValid bool) error {
	return s.post(ctx, verifyEnvelope{Action: "verify_report", ReportID: reportID, Verifier: verifier, IsValid: isValid})
}

func (s *HTTPStore) post(ctx context.Context, body any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("%w: encode: %v", ErrUnavailable, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20)) // nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}
	return nil
}

package reportstore

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHTTPStoreList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		json.NewEncoder(w).Encode([]Report{
			{ID: "r1", Username: "0812345678", MissionType: "burning", Token: 12, Lat: 13.7, Lng: 100.5, AIApproved: true, AIConfidence: 85},
		})
	}))
	defer srv.Close()

	reports, err := NewHTTPStore(srv.URL).List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(reports) != 1 || reports[0].ID != "r1" || reports[0].AIConfidence != 85 {
		t.Fatalf("unexpected reports %+v", reports)
	}
}

func TestHTTPStorePublishAndActions(t *testing.T) {
	var bodies []map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request: %v", err)
		}
		bodies = append(bodies, body)
		w.Write([]byte("{}"))
	}))
	defer srv.Close()

	store := NewHTTPStore(srv.URL)
	ctx := context.Background()

	if err := store.Publish(ctx, Report{Username: "0812345678", MissionType: "smoke-vehicle", Token: 15, AIApproved: true}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if err := store.SendOTP(ctx, "c@x.y", "", "482913"); err != nil {
		t.Fatalf("send otp: %v", err)
	}
	if err := store.VerifyReport(ctx, "r1", "c@x.y", true); err != nil {
		t.Fatalf("verify report: %v", err)
	}

	if len(bodies) != 3 {
		t.Fatalf("expected 3 posts, got %d", len(bodies))
	}
	if bodies[0]["username"] != "0812345678" {
		t.Fatalf("unexpected publish body %+v", bodies[0])
	}
	// A fresh report serializes its counters explicitly, zero included.
	if vc, ok := bodies[0]["verified_count"]; !ok || vc != float64(0) {
		t.Fatalf("publish body must carry verified_count, got %+v", bodies[0])
	}
	if conf, ok := bodies[0]["ai_confidence"]; !ok || conf != float64(0) {
		t.Fatalf("publish body must carry ai_confidence, got %+v", bodies[0])
	}
	if bodies[1]["action"] != "send_otp" || bodies[1]["otp"] != "482913" {
		t.Fatalf("unexpected otp envelope %+v", bodies[1])
	}
	if bodies[2]["action"] != "verify_report" || bodies[2]["is_valid"] != true {
		t.Fatalf("unexpected verify envelope %+v", bodies[2])
	}
}

func TestHTTPStoreVerifyReportCarriesNegativeJudgement(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Write([]byte("{}"))
	}))
	defer srv.Close()

	if err := NewHTTPStore(srv.URL).VerifyReport(context.Background(), "r1", "c@x.y", false); err != nil {
		t.Fatalf("verify report: %v", err)
	}

	v, ok := body["is_valid"]
	if !ok {
		t.Fatalf("is_valid missing from envelope %+v", body)
	}
	if v != false {
		t.Fatalf("expected is_valid=false, got %v", v)
	}
}

func TestHTTPStoreNonSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	store := NewHTTPStore(srv.URL)
	if _, err := store.List(context.Background()); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected unavailable on list, got %v", err)
	}
	if err := store.Publish(context.Background(), Report{}); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected unavailable on publish, got %v", err)
	}
}

func TestMemoryStoreVerifiedCountIncrement(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	store.Publish(ctx, Report{ID: "r1", Username: "0812345678", AIApproved: true})

	store.VerifyReport(ctx, "r1", "v1", true)
	store.VerifyReport(ctx, "r1", "v2", false)

	reports, _ := store.List(ctx)
	if reports[0].VerifiedCount != 1 {
		t.Fatalf("expected verified_count 1 after one valid event, got %d", reports[0].VerifiedCount)
	}
}

package screening

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestReduce(t *testing.T) {
	cases := []struct {
		name string
		c    Classification
		want Verdict
	}{
		{"high confidence hazard", Classification{IsHazard: true, Confidence: 85}, VerdictAccept},
		{"threshold accept", Classification{IsHazard: true, Confidence: 70}, VerdictAccept},
		{"mid confidence hazard", Classification{IsHazard: true, Confidence: 55}, VerdictAmbiguous},
		{"threshold ambiguous", Classification{IsHazard: true, Confidence: 40}, VerdictAmbiguous},
		{"low confidence hazard", Classification{IsHazard: true, Confidence: 39}, VerdictReject},
		{"confident non hazard", Classification{IsHazard: false, Confidence: 95}, VerdictReject},
	}

	for _, tc := range cases {
		if got := Reduce(tc.c); got != tc.want {
			t.Fatalf("%s: expected %s, got %s", tc.name, tc.want, got)
		}
	}

	if !VerdictAccept.Allows() || !VerdictAmbiguous.Allows() {
		t.Fatal("accept and ambiguous must allow submission")
	}
	if VerdictReject.Allows() {
		t.Fatal("reject must block submission")
	}
}

func TestFlagDescription(t *testing.T) {
	c := Classification{IsHazard: true, Confidence: 50, Description: "smoke near road"}
	flagged := FlagDescription(c, Reduce(c))
	if flagged == c.Description {
		t.Fatal("ambiguous classification should be flagged")
	}

	c.Confidence = 90
	if got := FlagDescription(c, Reduce(c)); got != c.Description {
		t.Fatalf("accept verdict must not alter description, got %q", got)
	}
}

func TestParseAnswer(t *testing.T) {
	answer := "Here is the analysis:\n```json\n{\"is_environmental_hazard\": true, \"hazard_type\": \"burning\", \"confidence\": 85, \"description\": \"open waste burning\"}\n```\nLet me know if you need more."

	c, err := ParseAnswer(answer)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !c.IsHazard || c.HazardType != "burning" || c.Confidence != 85 {
		t.Fatalf("unexpected classification %+v", c)
	}
}

func TestParseAnswerFractionalConfidence(t *testing.T) {
	c, err := ParseAnswer(`{"is_environmental_hazard": true, "hazard_type": "smoke-vehicle", "confidence": 72.5, "description": "exhaust"}`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if c.Confidence != 72 {
		t.Fatalf("expected truncated confidence 72, got %d", c.Confidence)
	}
}

func TestParseAnswerClampsConfidence(t *testing.T) {
	c, err := ParseAnswer(`{"is_environmental_hazard": true, "confidence": 140}`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if c.Confidence != 100 {
		t.Fatalf("expected clamp to 100, got %d", c.Confidence)
	}
}

func TestParseAnswerNoJSON(t *testing.T) {
	if _, err := ParseAnswer("I cannot determine this."); !errors.Is(err, ErrUnparsable) {
		t.Fatalf("expected unparsable error, got %v", err)
	}
}

func TestHTTPClassifier(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		w.Write([]byte("```json\n{\"is_environmental_hazard\": true, \"hazard_type\": \"factory\", \"confidence\": 91, \"description\": \"stack emissions\"}\n```"))
	}))
	defer srv.Close()

	c, err := NewHTTPClassifier(srv.URL, "test-key").Classify(context.Background(), "aGVsbG8=")
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if c.HazardType != "factory" || c.Confidence != 91 {
		t.Fatalf("unexpected classification %+v", c)
	}
}

func TestHTTPClassifierUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	if _, err := NewHTTPClassifier(srv.URL, "").Classify(context.Background(), "aGVsbG8="); !errors.Is(err, ErrUpstreamStatus) {
		t.Fatalf("expected upstream status error, got %v", err)
	}
}

func TestHTTPClassifierTransportError(t *testing.T) {
	if _, err := NewHTTPClassifier("http://127.0.0.1:1", "").Classify(context.Background(), "aGVsbG8="); !errors.Is(err, ErrTransport) {
		t.Fatalf("expected transport error, got %v", err)
	}
}

package screening

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// The instruction is fixed: the pipeline depends on the shape of the
// answer, not on caller-supplied prompting.
const instruction = `Analyze this photo for environmental hazards such as open burning, wildfire, vehicle smoke or factory emissions. Answer with a JSON object: {"is_environmental_hazard": bool, "hazard_type": string, "confidence": number 0-100, "description": string}.`

// HTTPClassifier submits images to a vision-classification endpoint and
// extracts the structured verdict from its free-form answer.
type HTTPClassifier struct {
	url    string
	apiKey string
	client *http.Client
}

// NewHTTPClassifier builds a classifier against the given endpoint.
func NewHTTPClassifier(url, apiKey string) *HTTPClassifier {
	return &HTTPClassifier{
		url:    url,
		apiKey: apiKey,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

type classifyRequest struct {
	Image       string `json:"image"`
	Instruction string `json:"instruction"`
}

type classifyWire struct {
	IsHazard    bool        `json:"is_environmental_hazard"`
	HazardType  string      `json:"hazard_type"`
	Confidence  json.Number `json:"confidence"`
	Description string      `json:"description"`
}

// Classify posts the image and reduces the model's answer to a
// Classification. Every failure mode maps to a distinct sentinel so the
// pipeline can surface an actionable message while still blocking
// submission.
func (h *HTTPClassifier) Classify(ctx context.Context, imageBase64 string) (Classification, error) {
	payload, err := json.Marshal(classifyRequest{Image: imageBase64, Instruction: instruction})
	if err != nil {
		return Classification{}, fmt.Errorf("%w: %v", ErrUnparsable, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.url, bytes.NewReader(payload))
	if err != nil {
		return Classification{}, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if h.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+h.apiKey)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return Classification{}, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Classification{}, fmt.Errorf("%w: %d", ErrUpstreamStatus, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Classification{}, fmt.Errorf("%w: %v", ErrTransport, err)
	}

	return ParseAnswer(string(body))
}

// ParseAnswer extracts the classification JSON from the model's free-form
// answer, tolerating code fences and surrounding prose.
func ParseAnswer(answer string) (Classification, error) {
	raw := extractJSON(answer)
	if raw == "" {
		return Classification{}, fmt.Errorf("%w: no json object found", ErrUnparsable)
	}

	var wire classifyWire
	if err := json.Unmarshal([]byte(raw), &wire); err != nil {
		return Classification{}, fmt.Errorf("%w: %v", ErrUnparsable, err)
	}

	confidence := 0
	if wire.Confidence != "" {
		f, err := wire.Confidence.Float64()
		if err != nil {
			return Classification{}, fmt.Errorf("%w: bad confidence %q", ErrUnparsable, wire.Confidence)
		}
		confidence = clampConfidence(int(f))
	}

	return Classification{
		IsHazard:    wire.IsHazard,
		HazardType:  wire.HazardType,
		Confidence:  confidence,
		Description: wire.Description,
	}, nil
}

// extractJSON returns the first balanced {...} object in the text, after
// stripping markdown code fences.
func extractJSON(s string) string {
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")

	start := strings.IndexByte(s, '{')
	if start < 0 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if escaped {
			escaped = false
			continue
		}
		switch c {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return s[start : i+1]
				}
			}
		}
	}
	return ""
}

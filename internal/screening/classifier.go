package screening

import (
	"context"
	"errors"
)

// Classification is the structured answer extracted from the vision model.
type Classification struct {
	IsHazard    bool
	HazardType  string
	Confidence  int
	Description string
}

var (
	// ErrTransport indicates the vision endpoint could not be reached.
	ErrTransport = errors.New("screening transport failure")
	// ErrUpstreamStatus indicates the vision endpoint answered with a
	// non-success HTTP status.
	ErrUpstreamStatus = errors.New("screening upstream status")
	// ErrUnparsable indicates the model response contained no usable JSON.
	ErrUnparsable = errors.New("screening response unparsable")
)

// Classifier represents a connector to an external vision-classification
// endpoint.
type Classifier interface {
	Classify(ctx context.Context, imageBase64 string) (Classification, error)
}

// StaticClassifier simulates a classifier with a fixed answer. Used in
// dev mode and tests.
type StaticClassifier struct {
	Answer Classification
	Err    error
}

// Classify returns the configured answer.
func (s StaticClassifier) Classify(_ context.Context, _ string) (Classification, error) {
	if s.Err != nil {
		return Classification{}, s.Err
	}
	return s.Answer, nil
}

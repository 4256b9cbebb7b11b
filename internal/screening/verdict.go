package screening

// Verdict is the tri-state reduction of a classification.
type Verdict string

const (
	// VerdictAccept allows submission with the high reward band.
	VerdictAccept Verdict = "accept"
	// VerdictAmbiguous allows submission but flags the report for extra
	// scrutiny.
	VerdictAmbiguous Verdict = "ambiguous"
	// VerdictReject blocks the submission pipeline.
	VerdictReject Verdict = "reject"
)

const (
	acceptThreshold    = 70
	ambiguousThreshold = 40
)

// Reduce maps a classification onto a verdict. The gate never allows a
// submission it cannot interpret as a hazard: anything outside the two
// positive bands rejects.
func Reduce(c Classification) Verdict {
	if !c.IsHazard {
		return VerdictReject
	}
	switch {
	case c.Confidence >= acceptThreshold:
		return VerdictAccept
	case c.Confidence >= ambiguousThreshold:
		return VerdictAmbiguous
	default:
		return VerdictReject
	}
}

// Allows reports whether the verdict permits advancing to publish.
func (v Verdict) Allows() bool {
	return v == VerdictAccept || v == VerdictAmbiguous
}

// FlagDescription annotates an ambiguous classification's description so
// downstream viewers see it needs extra scrutiny.
func FlagDescription(c Classification, v Verdict) string {
	if v == VerdictAmbiguous {
		return c.Description + " [low confidence - needs review]"
	}
	return c.Description
}

func clampConfidence(n int) int {
	if n < 0 {
		return 0
	}
	if n > 100 {
		return 100
	}
	return n
}

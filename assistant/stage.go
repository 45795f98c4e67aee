package assistant

// Outcome tells whether a stage produced its real value or a fallback.
type Outcome int

const (
	OutcomeOK Outcome = iota
	OutcomeFallback
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeFallback:
		return "fallback"
	default:
		return "unknown"
	}
}

// Stage names recorded in core.PipelineState.Degraded.
const (
	StageIdentifyLanguage = "identify-language"
	StageTranslateInput   = "translate-input"
	StageRetrieval        = "retrieval"
	StageGeneration       = "generation"
	StageTranslateAnswer  = "translate-answer"
	StageSynthesis        = "synthesis"
)

// StageResult is the value a stage hands to the next one. Err holds the cause
// of a fallback and is nil when Outcome is OutcomeOK.
type StageResult[T any] struct {
	Value   T
	Outcome Outcome
	Err     error
}

func ok[T any](v T) StageResult[T] {
	return StageResult[T]{Value: v, Outcome: OutcomeOK}
}

func fallback[T any](v T, err error) StageResult[T] {
	return StageResult[T]{Value: v, Outcome: OutcomeFallback, Err: err}
}

// Degraded reports whether the stage fell back.
func (r StageResult[T]) Degraded() bool {
	return r.Outcome == OutcomeFallback
}

package models

// QueryCandidate carries a natural-language request together with the SQL
// the generation collaborator proposed for it. SQL is empty and IsVague is
// true when the generator declined because the request was too vague.
type QueryCandidate struct {
	Request string
	SQL     string
	IsVague bool
}

// ClarityReport is the output of the intent clarity scorer.
type ClarityReport struct {
	Score           float64
	VagueAspects    []string
	SuggestedTables []string
	Questions       []string
}

// NeedsClarification reports whether the score falls below the threshold.
func (r ClarityReport) NeedsClarification(threshold float64) bool {
	return r.Score < threshold
}

// RegenerationAttempt records one pass through the regeneration loop.
type RegenerationAttempt struct {
	AttemptNumber   int
	PriorSQL        string
	FailureFeedback string
}

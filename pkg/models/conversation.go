package models

// ConversationPhase names the pending-item state of a session.
type ConversationPhase string

const (
	// PhaseNone means no item is pending; the next turn is a fresh request.
	PhaseNone ConversationPhase = "none"
	// PhaseClarificationPending means the next turn is read as a fresh
	// natural-language request answering a clarification, never as yes/no.
	PhaseClarificationPending ConversationPhase = "clarification_pending"
	// PhaseConfirmationPending means the next turn is read as consent to
	// execute already-validated SQL.
	PhaseConfirmationPending ConversationPhase = "confirmation_pending"
)

// ConversationState tracks the single pending item of a session.
// Mutated only by the conversation state machine, one writer per turn.
type ConversationState struct {
	Phase ConversationPhase

	// Set while Phase == PhaseClarificationPending.
	OriginalRequest string
	Questions       []string

	// Set while Phase == PhaseConfirmationPending.
	PendingSQL string
	Feedback   string
}

// Reset returns the state to PhaseNone, discarding the pending item.
func (s *ConversationState) Reset() {
	*s = ConversationState{Phase: PhaseNone}
}

package models

// Privilege is the caller's privilege level. Only the binary
// admin/non-admin distinction is modeled.
type Privilege string

const (
	PrivilegeUser  Privilege = "user"
	PrivilegeAdmin Privilege = "admin"
)

// DecisionAction is the decision gate's verdict for a turn.
type DecisionAction string

const (
	ActionAccept            DecisionAction = "accept"
	ActionReject            DecisionAction = "reject"
	ActionHumanVerification DecisionAction = "human_verification"
)

// Decision maps an aggregated verdict plus privilege and statement kind
// to the turn's disposition. Terminal unless the conversation state
// machine is entered via ActionHumanVerification.
type Decision struct {
	Action                DecisionAction
	SQL                   string
	Feedback              string
	RequiresClarification bool
}

// Terminal decision strings surfaced in turn payloads.
const (
	DecisionAccept                = "accept"
	DecisionReject                = "reject"
	DecisionCancelledByUser       = "cancelled_by_user"
	DecisionExecutionFailed       = "execution_failed"
	DecisionExecutedAfterApproval = "executed_after_verification"
	DecisionRegenerationExhausted = "regeneration_exhausted"
)

// Payload type markers for non-terminal turn responses.
const (
	PayloadHumanVerification   = "human_verification"
	PayloadRegenerationRequest = "regeneration_request"
)

// TurnResponse is the JSON-shaped payload the surrounding application
// consumes. Field presence follows the payload kind: terminal decisions
// carry Decision/Feedback, human-verification payloads carry Type plus
// the clarification or confirmation fields.
type TurnResponse struct {
	Type                   string           `json:"type,omitempty"`
	SQL                    string           `json:"sql"`
	Decision               string           `json:"decision,omitempty"`
	Feedback               string           `json:"feedback,omitempty"`
	Message                string           `json:"message,omitempty"`
	Rows                   []map[string]any `json:"rows,omitempty"`
	RowCount               *int             `json:"row_count,omitempty"`
	RequiresClarification  *bool            `json:"requires_clarification,omitempty"`
	ClarificationQuestions []string         `json:"clarification_questions,omitempty"`
	SuggestedTables        []string         `json:"suggested_tables,omitempty"`
	ClarityScore           *float64         `json:"clarity_score,omitempty"`
	VagueAspects           []string         `json:"vague_aspects,omitempty"`
	OriginalQuery          string           `json:"original_query,omitempty"`
	UserFriendlyMessage    string           `json:"user_friendly_message,omitempty"`
	TechnicalDetails       string           `json:"technical_details,omitempty"`
}

// BoolPtr returns a pointer to b, for optional payload fields.
func BoolPtr(b bool) *bool { return &b }

// IntPtr returns a pointer to n, for optional payload fields.
func IntPtr(n int) *int { return &n }

// Float64Ptr returns a pointer to f, for optional payload fields.
func Float64Ptr(f float64) *float64 { return &f }

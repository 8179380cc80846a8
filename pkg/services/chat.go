package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/querygate/engine/pkg/adapters/datasource"
	"github.com/querygate/engine/pkg/apperrors"
	"github.com/querygate/engine/pkg/logging"
	"github.com/querygate/engine/pkg/models"
	enginesql "github.com/querygate/engine/pkg/sql"
	"github.com/querygate/engine/pkg/validation"
)

// ChatService drives one conversation turn: interpret the input
// according to the session's pending state, run the validation
// pipeline, gate the decision, execute, and recover from failures.
type ChatService interface {
	HandleTurn(ctx context.Context, sessionID uuid.UUID, input string) (*models.TurnResponse, error)
}

// ChatConfig carries the turn-level tunables.
type ChatConfig struct {
	ClarityThreshold float64
	SelectRowLimit   int
}

type chatService struct {
	catalog   CatalogService
	generator GeneratorService
	validator *validation.Orchestrator
	clarity   *validation.ClarityScorer
	gate      DecisionGate
	analyzer  ExecutionAnalyzer
	regen     RegenerationController
	executor  datasource.QueryExecutor
	sessions  SessionStore
	cfg       ChatConfig
	logger    *zap.Logger
}

// NewChatService wires the turn pipeline together.
func NewChatService(
	catalog CatalogService,
	generator GeneratorService,
	validator *validation.Orchestrator,
	clarity *validation.ClarityScorer,
	gate DecisionGate,
	analyzer ExecutionAnalyzer,
	regen RegenerationController,
	executor datasource.QueryExecutor,
	sessions SessionStore,
	cfg ChatConfig,
	logger *zap.Logger,
) ChatService {
	return &chatService{
		catalog:   catalog,
		generator: generator,
		validator: validator,
		clarity:   clarity,
		gate:      gate,
		analyzer:  analyzer,
		regen:     regen,
		executor:  executor,
		sessions:  sessions,
		cfg:       cfg,
		logger:    logger.Named("chat"),
	}
}

// HandleTurn resolves one user turn. The session's state is held for
// the whole turn so the pending item cannot be observed half-resolved.
func (s *chatService) HandleTurn(ctx context.Context, sessionID uuid.UUID, input string) (*models.TurnResponse, error) {
	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}

	var response *models.TurnResponse
	var turnErr error
	session.WithState(func(state *models.ConversationState) {
		switch state.Phase {
		case models.PhaseConfirmationPending:
			response, turnErr = s.resolveConfirmation(ctx, state, input)
		case models.PhaseClarificationPending:
			response, turnErr = s.resolveClarification(ctx, session, state, input)
		default:
			response, turnErr = s.freshRequest(ctx, session, state, input)
		}
	})
	return response, turnErr
}

// freshRequest handles a turn with no pending item. The clarity
// pre-check runs before generation so an unanswerable request never
// costs a completion call.
func (s *chatService) freshRequest(ctx context.Context, session *Session, state *models.ConversationState, request string) (*models.TurnResponse, error) {
	schema := s.catalog.Snapshot()

	report := s.clarity.Score(request, schema)
	if report.NeedsClarification(s.cfg.ClarityThreshold) {
		s.logger.Info("request too vague, asking for clarification",
			zap.Float64("clarity_score", report.Score))
		return s.enterClarification(state, request, report), nil
	}

	candidate, err := s.generator.Generate(ctx, request, schema)
	if err != nil {
		return nil, fmt.Errorf("generate candidate: %w", err)
	}
	if candidate.IsVague {
		return s.enterClarification(state, request, report), nil
	}

	return s.processCandidate(ctx, session, state, candidate, 0)
}

// processCandidate validates, gates, and (when accepted) executes one
// candidate. attemptNumber counts prior regenerations of this request.
func (s *chatService) processCandidate(ctx context.Context, session *Session, state *models.ConversationState, candidate *models.QueryCandidate, attemptNumber int) (*models.TurnResponse, error) {
	schema := s.catalog.Snapshot()
	verdict := s.validator.Validate(ctx, candidate, schema)
	decision := s.gate.Decide(verdict, candidate, session.Privilege)

	switch decision.Action {
	case models.ActionReject:
		state.Reset()
		return &models.TurnResponse{
			SQL:      decision.SQL,
			Decision: models.DecisionReject,
			Feedback: decision.Feedback,
		}, nil

	case models.ActionHumanVerification:
		if decision.RequiresClarification {
			report := verdict.Clarity
			if report == nil {
				report = s.clarity.Score(candidate.Request, schema)
			}
			response := s.enterClarification(state, candidate.Request, report)
			response.Message = decision.Feedback
			return response, nil
		}

		state.Phase = models.PhaseConfirmationPending
		state.PendingSQL = decision.SQL
		state.Feedback = decision.Feedback
		return &models.TurnResponse{
			Type:                  models.PayloadHumanVerification,
			SQL:                   decision.SQL,
			Feedback:              decision.Feedback,
			Message:               "Reply \"yes\" to run this statement or \"no\" to cancel.",
			RequiresClarification: models.BoolPtr(false),
		}, nil
	}

	return s.execute(ctx, session, state, candidate, attemptNumber)
}

// execute runs an accepted candidate and handles failure recovery.
func (s *chatService) execute(ctx context.Context, session *Session, state *models.ConversationState, candidate *models.QueryCandidate, attemptNumber int) (*models.TurnResponse, error) {
	kind := enginesql.DetectStatementKind(candidate.SQL)

	var result *datasource.QueryExecutionResult
	var execErr error
	if kind == enginesql.KindRead {
		result, execErr = s.executor.ExecuteQuery(ctx, candidate.SQL, s.cfg.SelectRowLimit)
	} else {
		result, execErr = s.executor.ExecuteStatement(ctx, candidate.SQL)
	}

	if execErr == nil {
		state.Reset()
		if kind == enginesql.KindRead {
			return &models.TurnResponse{
				SQL:      candidate.SQL,
				Decision: models.DecisionAccept,
				Feedback: fmt.Sprintf("Query returned %d row(s).", result.RowCount),
				Rows:     result.Rows,
				RowCount: models.IntPtr(result.RowCount),
			}, nil
		}
		return &models.TurnResponse{
			SQL:      candidate.SQL,
			Decision: models.DecisionAccept,
			Feedback: fmt.Sprintf("Statement affected %d row(s).", result.RowsAffected),
		}, nil
	}

	analysis := s.analyzer.Analyze(execErr)
	s.logger.Warn("execution failed",
		zap.String("class", string(analysis.Class)),
		zap.String("sql", logging.SanitizeQuery(candidate.SQL)),
		zap.Int("attempt", attemptNumber),
		zap.Error(execErr))

	if !analysis.EligibleForRegen {
		state.Reset()
		return &models.TurnResponse{
			SQL:              candidate.SQL,
			Decision:         models.DecisionExecutionFailed,
			Feedback:         analysis.UserFriendlyMessage,
			TechnicalDetails: analysis.TechnicalDetails,
		}, nil
	}

	attempt := &models.RegenerationAttempt{
		AttemptNumber:   attemptNumber + 1,
		PriorSQL:        candidate.SQL,
		FailureFeedback: analysis.TechnicalDetails,
	}

	regenerated, err := s.regen.Next(ctx, candidate.Request, s.catalog.Snapshot(), attempt)
	if err != nil {
		state.Reset()
		if errors.Is(err, apperrors.ErrRegenerationExhausted) {
			return &models.TurnResponse{
				SQL:                 candidate.SQL,
				Decision:            models.DecisionRegenerationExhausted,
				Feedback:            fmt.Sprintf("The query kept failing after %d regeneration attempt(s).", s.regen.Ceiling()),
				UserFriendlyMessage: analysis.UserFriendlyMessage,
				TechnicalDetails:    analysis.TechnicalDetails,
			}, nil
		}
		// Regeneration was warranted but the collaborator could not
		// produce a candidate. Surface what happened instead of failing
		// the turn silently.
		return &models.TurnResponse{
			Type:                models.PayloadRegenerationRequest,
			SQL:                 candidate.SQL,
			OriginalQuery:       candidate.Request,
			Feedback:            analysis.TechnicalDetails,
			UserFriendlyMessage: analysis.UserFriendlyMessage,
			TechnicalDetails:    err.Error(),
		}, nil
	}
	if regenerated.IsVague {
		state.Reset()
		return &models.TurnResponse{
			Type:                models.PayloadRegenerationRequest,
			SQL:                 candidate.SQL,
			OriginalQuery:       candidate.Request,
			Feedback:            analysis.TechnicalDetails,
			UserFriendlyMessage: analysis.UserFriendlyMessage,
			TechnicalDetails:    "regeneration could not produce a concrete statement",
		}, nil
	}

	return s.processCandidate(ctx, session, state, regenerated, attempt.AttemptNumber)
}

// resolveConfirmation consumes the turn while an execution confirmation
// is pending. Anything that is not an affirmative cancels.
func (s *chatService) resolveConfirmation(ctx context.Context, state *models.ConversationState, input string) (*models.TurnResponse, error) {
	pendingSQL := state.PendingSQL
	state.Reset()

	if !isAffirmative(input) {
		s.logger.Info("pending execution cancelled by user")
		return &models.TurnResponse{
			SQL:      pendingSQL,
			Decision: models.DecisionCancelledByUser,
			Feedback: "Execution cancelled. The statement was not run.",
		}, nil
	}

	result, execErr := s.executor.ExecuteStatement(ctx, pendingSQL)
	if execErr != nil {
		// A confirmed statement is never regenerated: a rewritten
		// statement would run without fresh consent.
		analysis := s.analyzer.Analyze(execErr)
		return &models.TurnResponse{
			SQL:              pendingSQL,
			Decision:         models.DecisionExecutionFailed,
			Feedback:         analysis.UserFriendlyMessage,
			TechnicalDetails: analysis.TechnicalDetails,
		}, nil
	}

	return &models.TurnResponse{
		SQL:      pendingSQL,
		Decision: models.DecisionExecutedAfterApproval,
		Feedback: fmt.Sprintf("Statement executed after your approval; %d row(s) affected.", result.RowsAffected),
	}, nil
}

// resolveClarification consumes the turn while a clarification is
// pending. The answer is folded into the original request and re-enters
// the pipeline as a fresh request; a bare yes/no is not an answer.
func (s *chatService) resolveClarification(ctx context.Context, session *Session, state *models.ConversationState, input string) (*models.TurnResponse, error) {
	if isAffirmative(input) || isNegative(input) {
		return &models.TurnResponse{
			Type:                   models.PayloadHumanVerification,
			SQL:                    "",
			RequiresClarification:  models.BoolPtr(true),
			Message:                "I need more detail rather than a yes/no answer. " + strings.Join(state.Questions, " "),
			ClarificationQuestions: state.Questions,
			OriginalQuery:          state.OriginalRequest,
		}, nil
	}

	combined := fmt.Sprintf("%s. Additional clarification: %s", state.OriginalRequest, input)
	state.Reset()
	return s.freshRequest(ctx, session, state, combined)
}

// enterClarification moves the session into clarificationPending and
// builds the clarification payload.
func (s *chatService) enterClarification(state *models.ConversationState, request string, report *models.ClarityReport) *models.TurnResponse {
	state.Phase = models.PhaseClarificationPending
	state.OriginalRequest = request
	state.Questions = report.Questions

	return &models.TurnResponse{
		Type:                   models.PayloadHumanVerification,
		SQL:                    "",
		RequiresClarification:  models.BoolPtr(true),
		Message:                "Your request needs more detail before a query can be generated.",
		ClarificationQuestions: report.Questions,
		SuggestedTables:        report.SuggestedTables,
		ClarityScore:           models.Float64Ptr(report.Score),
		VagueAspects:           report.VagueAspects,
		OriginalQuery:          request,
	}
}

var affirmativeTokens = map[string]struct{}{
	"yes": {}, "y": {}, "yeah": {}, "yep": {}, "yup": {}, "sure": {},
	"ok": {}, "okay": {}, "confirm": {}, "confirmed": {}, "proceed": {},
	"go ahead": {}, "approve": {}, "approved": {}, "do it": {}, "run it": {},
}

var negativeTokens = map[string]struct{}{
	"no": {}, "n": {}, "nope": {}, "nah": {}, "cancel": {}, "stop": {},
	"abort": {}, "reject": {}, "don't": {}, "dont": {}, "never": {},
}

func normalizeAnswer(input string) string {
	normalized := strings.ToLower(strings.TrimSpace(input))
	return strings.Trim(normalized, ".!?,")
}

func isAffirmative(input string) bool {
	_, ok := affirmativeTokens[normalizeAnswer(input)]
	return ok
}

func isNegative(input string) bool {
	_, ok := negativeTokens[normalizeAnswer(input)]
	return ok
}

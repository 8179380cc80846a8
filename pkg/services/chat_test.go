package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/querygate/engine/pkg/adapters/datasource"
	"github.com/querygate/engine/pkg/apperrors"
	"github.com/querygate/engine/pkg/llm"
	"github.com/querygate/engine/pkg/models"
	"github.com/querygate/engine/pkg/retrieval"
	"github.com/querygate/engine/pkg/validation"
)

type chatFixture struct {
	chat     ChatService
	sessions SessionStore
	llm      *llm.MockClient
	executor *datasource.MockExecutor
}

func newChatFixture(t *testing.T) *chatFixture {
	t.Helper()

	extractor := &datasource.MockExtractor{
		ExtractTablesFunc: func(_ context.Context) ([]datasource.TableSchema, error) {
			return []datasource.TableSchema{
				{
					Name: "customers",
					Columns: []datasource.ColumnInfo{
						{Name: "id", Type: "INTEGER"},
						{Name: "name", Type: "VARCHAR"},
						{Name: "region", Type: "VARCHAR"},
					},
				},
				{
					Name: "invoices",
					Columns: []datasource.ColumnInfo{
						{Name: "id", Type: "INTEGER"},
						{Name: "customer_id", Type: "INTEGER"},
						{Name: "amount", Type: "DECIMAL"},
					},
				},
			}, nil
		},
	}
	catalog := NewCatalogService(extractor, zap.NewNop())
	require.NoError(t, catalog.Refresh(context.Background()))

	mockLLM := llm.NewMockClient()
	executor := &datasource.MockExecutor{}
	generator := NewGeneratorService(mockLLM, retrieval.NopRetriever{}, 0.1, zap.NewNop())
	validator := validation.NewOrchestrator(validation.OrchestratorConfig{
		ClarityThreshold: 0.6,
		MediumBoundary:   3,
		ComplexBoundary:  6,
	}, zap.NewNop())
	sessions := NewSessionStore()

	chat := NewChatService(
		catalog,
		generator,
		validator,
		validation.NewClarityScorer(0.6),
		NewDecisionGate(),
		NewExecutionAnalyzer(),
		NewRegenerationController(generator, 2, zap.NewNop()),
		executor,
		sessions,
		ChatConfig{ClarityThreshold: 0.6, SelectRowLimit: 100},
		zap.NewNop(),
	)

	return &chatFixture{chat: chat, sessions: sessions, llm: mockLLM, executor: executor}
}

func (f *chatFixture) respondWithSQL(sqlText string) {
	f.llm.GenerateResponseFunc = func(_ context.Context, _, _ string, _ float64) (string, error) {
		return "```sql\n" + sqlText + "\n```", nil
	}
}

func phaseOf(session *Session) models.ConversationPhase {
	var phase models.ConversationPhase
	session.WithState(func(state *models.ConversationState) {
		phase = state.Phase
	})
	return phase
}

func TestChatService_UnknownSession(t *testing.T) {
	f := newChatFixture(t)
	_, err := f.chat.HandleTurn(context.Background(), uuid.New(), "hello")
	assert.ErrorIs(t, err, apperrors.ErrSessionNotFound)
}

func TestChatService_VagueRequestShortCircuitsGeneration(t *testing.T) {
	f := newChatFixture(t)
	session := f.sessions.Create(models.PrivilegeUser)

	response, err := f.chat.HandleTurn(context.Background(), session.ID, "Get the data")
	require.NoError(t, err)

	assert.Equal(t, models.PayloadHumanVerification, response.Type)
	require.NotNil(t, response.RequiresClarification)
	assert.True(t, *response.RequiresClarification)
	assert.NotEmpty(t, response.ClarificationQuestions)
	assert.Equal(t, "Get the data", response.OriginalQuery)
	assert.Zero(t, f.llm.GenerateResponseCalls, "no completion call for an unanswerable request")
	assert.Equal(t, models.PhaseClarificationPending, phaseOf(session))
}

func TestChatService_CleanReadExecutes(t *testing.T) {
	f := newChatFixture(t)
	session := f.sessions.Create(models.PrivilegeUser)
	f.respondWithSQL("SELECT name FROM customers WHERE region = 'west'")
	f.executor.ExecuteQueryFunc = func(_ context.Context, _ string, limit int) (*datasource.QueryExecutionResult, error) {
		assert.Equal(t, 100, limit)
		return &datasource.QueryExecutionResult{
			Columns:  []datasource.ColumnInfo{{Name: "name"}},
			Rows:     []map[string]any{{"name": "ada"}},
			RowCount: 1,
		}, nil
	}

	response, err := f.chat.HandleTurn(context.Background(), session.ID, "list the customers in the west region")
	require.NoError(t, err)

	assert.Equal(t, models.DecisionAccept, response.Decision)
	require.NotNil(t, response.RowCount)
	assert.Equal(t, 1, *response.RowCount)
	assert.Len(t, response.Rows, 1)
	assert.Equal(t, models.PhaseNone, phaseOf(session))
}

func TestChatService_InjectionRejected(t *testing.T) {
	f := newChatFixture(t)
	session := f.sessions.Create(models.PrivilegeAdmin)
	f.respondWithSQL("SELECT * FROM customers WHERE region = 'west' OR 1=1")

	response, err := f.chat.HandleTurn(context.Background(), session.ID, "list the customers in the west region")
	require.NoError(t, err)

	assert.Equal(t, models.DecisionReject, response.Decision)
	assert.NotEmpty(t, response.Feedback)
	assert.Zero(t, f.executor.ExecuteQueryCalls, "rejected SQL must never execute")
	assert.Equal(t, models.PhaseNone, phaseOf(session))
}

func TestChatService_UnknownTableAsksClarification(t *testing.T) {
	f := newChatFixture(t)
	session := f.sessions.Create(models.PrivilegeUser)
	f.respondWithSQL("SELECT total FROM orders WHERE status = 'pending'")

	response, err := f.chat.HandleTurn(context.Background(), session.ID, "list the total amount for the pending orders")
	require.NoError(t, err)

	assert.Equal(t, models.PayloadHumanVerification, response.Type)
	require.NotNil(t, response.RequiresClarification)
	assert.True(t, *response.RequiresClarification)
	assert.Empty(t, response.SQL)
	assert.Zero(t, f.executor.ExecuteQueryCalls)
	assert.Equal(t, models.PhaseClarificationPending, phaseOf(session))
}

func TestChatService_WriteNeedsConfirmationThenExecutes(t *testing.T) {
	f := newChatFixture(t)
	session := f.sessions.Create(models.PrivilegeUser)
	f.respondWithSQL("DELETE FROM customers WHERE region = 'west'")

	response, err := f.chat.HandleTurn(context.Background(), session.ID, "remove the customers in the west region")
	require.NoError(t, err)

	assert.Equal(t, models.PayloadHumanVerification, response.Type)
	require.NotNil(t, response.RequiresClarification)
	assert.False(t, *response.RequiresClarification)
	assert.Equal(t, "DELETE FROM customers WHERE region = 'west'", response.SQL)
	assert.Equal(t, models.PhaseConfirmationPending, phaseOf(session))
	assert.Zero(t, f.executor.ExecuteStatementCalls)

	f.executor.ExecuteStatementFunc = func(_ context.Context, sqlText string) (*datasource.QueryExecutionResult, error) {
		assert.Equal(t, "DELETE FROM customers WHERE region = 'west'", sqlText)
		return &datasource.QueryExecutionResult{RowsAffected: 3}, nil
	}

	confirmed, err := f.chat.HandleTurn(context.Background(), session.ID, "yes")
	require.NoError(t, err)

	assert.Equal(t, models.DecisionExecutedAfterApproval, confirmed.Decision)
	assert.Contains(t, confirmed.Feedback, "3 row(s)")
	assert.Equal(t, models.PhaseNone, phaseOf(session))
}

func TestChatService_AdminWriteExecutesDirectly(t *testing.T) {
	f := newChatFixture(t)
	session := f.sessions.Create(models.PrivilegeAdmin)
	f.respondWithSQL("DELETE FROM customers WHERE region = 'west'")
	f.executor.ExecuteStatementFunc = func(_ context.Context, _ string) (*datasource.QueryExecutionResult, error) {
		return &datasource.QueryExecutionResult{RowsAffected: 3}, nil
	}

	response, err := f.chat.HandleTurn(context.Background(), session.ID, "remove the customers in the west region")
	require.NoError(t, err)

	assert.Equal(t, models.DecisionAccept, response.Decision)
	assert.Equal(t, 1, f.executor.ExecuteStatementCalls)
	assert.Equal(t, models.PhaseNone, phaseOf(session))
}

func TestChatService_ConfirmationDeclined(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"explicit no", "no"},
		{"anything else counts as no", "maybe later, not sure"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newChatFixture(t)
			session := f.sessions.Create(models.PrivilegeUser)
			f.respondWithSQL("DELETE FROM customers WHERE region = 'west'")

			_, err := f.chat.HandleTurn(context.Background(), session.ID, "remove the customers in the west region")
			require.NoError(t, err)
			require.Equal(t, models.PhaseConfirmationPending, phaseOf(session))

			response, err := f.chat.HandleTurn(context.Background(), session.ID, tt.input)
			require.NoError(t, err)

			assert.Equal(t, models.DecisionCancelledByUser, response.Decision)
			assert.Zero(t, f.executor.ExecuteStatementCalls, "a cancelled statement must not run")
			assert.Equal(t, models.PhaseNone, phaseOf(session))
		})
	}
}

func TestChatService_ClarificationRejectsYesNo(t *testing.T) {
	f := newChatFixture(t)
	session := f.sessions.Create(models.PrivilegeUser)

	_, err := f.chat.HandleTurn(context.Background(), session.ID, "Get the data")
	require.NoError(t, err)
	require.Equal(t, models.PhaseClarificationPending, phaseOf(session))

	response, err := f.chat.HandleTurn(context.Background(), session.ID, "yes")
	require.NoError(t, err)

	assert.Equal(t, models.PayloadHumanVerification, response.Type)
	require.NotNil(t, response.RequiresClarification)
	assert.True(t, *response.RequiresClarification)
	assert.Zero(t, f.llm.GenerateResponseCalls, "yes/no is not a clarification answer")
	assert.Zero(t, f.executor.ExecuteQueryCalls)
	assert.Equal(t, models.PhaseClarificationPending, phaseOf(session), "the pending clarification survives")
}

func TestChatService_ClarificationAnswerReentersPipeline(t *testing.T) {
	f := newChatFixture(t)
	session := f.sessions.Create(models.PrivilegeUser)

	_, err := f.chat.HandleTurn(context.Background(), session.ID, "Get the data")
	require.NoError(t, err)
	require.Equal(t, models.PhaseClarificationPending, phaseOf(session))

	f.respondWithSQL("SELECT name FROM customers WHERE region = 'west'")
	f.executor.ExecuteQueryFunc = func(_ context.Context, _ string, _ int) (*datasource.QueryExecutionResult, error) {
		return &datasource.QueryExecutionResult{RowCount: 0, Rows: []map[string]any{}}, nil
	}

	response, err := f.chat.HandleTurn(context.Background(), session.ID, "the customer names in the west region")
	require.NoError(t, err)

	assert.Equal(t, models.DecisionAccept, response.Decision)
	require.Len(t, f.llm.Prompts, 1)
	assert.Contains(t, f.llm.Prompts[0], "Get the data. Additional clarification: the customer names in the west region")
	assert.Equal(t, models.PhaseNone, phaseOf(session))
}

func TestChatService_StructuralFailureRegeneratesUpToCeiling(t *testing.T) {
	f := newChatFixture(t)
	session := f.sessions.Create(models.PrivilegeUser)
	f.respondWithSQL("SELECT name FROM customers WHERE region = 'west'")
	f.executor.ExecuteQueryFunc = func(_ context.Context, _ string, _ int) (*datasource.QueryExecutionResult, error) {
		return nil, errors.New(`relation "customers" does not exist`)
	}

	response, err := f.chat.HandleTurn(context.Background(), session.ID, "list the customers in the west region")
	require.NoError(t, err)

	assert.Equal(t, models.DecisionRegenerationExhausted, response.Decision)
	assert.Equal(t, 3, f.llm.GenerateResponseCalls, "one generation plus two regenerations")
	assert.Equal(t, 3, f.executor.ExecuteQueryCalls)
	assert.NotEmpty(t, response.Feedback)
	assert.Equal(t, models.PhaseNone, phaseOf(session))
}

func TestChatService_DataFailureIsTerminal(t *testing.T) {
	f := newChatFixture(t)
	session := f.sessions.Create(models.PrivilegeUser)
	f.respondWithSQL("SELECT name FROM customers WHERE region = 'west'")
	f.executor.ExecuteQueryFunc = func(_ context.Context, _ string, _ int) (*datasource.QueryExecutionResult, error) {
		return nil, errors.New(`invalid input syntax for type integer: "west"`)
	}

	response, err := f.chat.HandleTurn(context.Background(), session.ID, "list the customers in the west region")
	require.NoError(t, err)

	assert.Equal(t, models.DecisionExecutionFailed, response.Decision)
	assert.Equal(t, 1, f.llm.GenerateResponseCalls, "data failures are never regenerated")
	assert.NotEmpty(t, response.Feedback)
	assert.Equal(t, models.PhaseNone, phaseOf(session))
}

func TestChatService_ConfirmedExecutionFailureIsTerminal(t *testing.T) {
	f := newChatFixture(t)
	session := f.sessions.Create(models.PrivilegeUser)
	f.respondWithSQL("DELETE FROM customers WHERE region = 'west'")

	_, err := f.chat.HandleTurn(context.Background(), session.ID, "remove the customers in the west region")
	require.NoError(t, err)

	f.executor.ExecuteStatementFunc = func(_ context.Context, _ string) (*datasource.QueryExecutionResult, error) {
		return nil, errors.New(`syntax error at or near "DELEET"`)
	}

	response, err := f.chat.HandleTurn(context.Background(), session.ID, "yes")
	require.NoError(t, err)

	assert.Equal(t, models.DecisionExecutionFailed, response.Decision)
	assert.Equal(t, 1, f.llm.GenerateResponseCalls, "a confirmed statement is never regenerated")
	assert.Equal(t, models.PhaseNone, phaseOf(session))
}

package server

import (
	"context"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"complexity-engine/internal/engine"
	"complexity-engine/internal/storage"
	"complexity-engine/internal/types"
)

func newTestServer() *EngineServer {
	eng := engine.New(storage.NewMemoryStorage(), 0.7)
	return NewEngineServer(eng)
}

func TestValidateProcessSmartInputRequest_RejectsEmptyText(t *testing.T) {
	req := &ProcessSmartInputRequest{}
	err := ValidateProcessSmartInputRequest(req)
	assert.Error(t, err)
}

func TestValidateProcessSmartInputRequest_AppliesDefaults(t *testing.T) {
	req := &ProcessSmartInputRequest{InputText: "I have a headache"}
	require.NoError(t, ValidateProcessSmartInputRequest(req))
	assert.Equal(t, string(types.SaveModeTransient), req.SaveMode)
	assert.Equal(t, string(types.IntentAsk), req.Intent)
}

func TestValidateProcessSmartInputRequest_KeepsExplicitValues(t *testing.T) {
	req := &ProcessSmartInputRequest{
		InputText: "I have a headache",
		SaveMode:  string(types.SaveModeSaveJournal),
		Intent:    string(types.IntentJournal),
	}
	require.NoError(t, ValidateProcessSmartInputRequest(req))
	assert.Equal(t, string(types.SaveModeSaveJournal), req.SaveMode)
	assert.Equal(t, string(types.IntentJournal), req.Intent)
}

func TestValidateFactorCode_RejectsEmpty(t *testing.T) {
	assert.Error(t, validateFactorCode(""))
}

func TestValidateFactorCode_RejectsUnknownCode(t *testing.T) {
	assert.Error(t, validateFactorCode("NOT_A_REAL_CODE"))
}

func TestValidateFactorCode_AcceptsKnownCode(t *testing.T) {
	assert.NoError(t, validateFactorCode("SYMPTOM_HEADACHE"))
}

func TestHandleProcessSmartInput_Success(t *testing.T) {
	s := newTestServer()
	result, resp, err := s.handleProcessSmartInput(context.Background(), &mcp.CallToolRequest{}, ProcessSmartInputRequest{
		InputText: "I have a headache",
		Intent:    string(types.IntentAsk),
		SaveMode:  string(types.SaveModeTransient),
	})
	require.NoError(t, err)
	require.NotNil(t, resp)
	require.NotNil(t, result)
	assert.NotEmpty(t, result.Content)
	assert.NotNil(t, resp.Event)
	assert.Nil(t, resp.Debug)
}

func TestHandleProcessSmartInput_RejectsEmptyInput(t *testing.T) {
	s := newTestServer()
	_, _, err := s.handleProcessSmartInput(context.Background(), &mcp.CallToolRequest{}, ProcessSmartInputRequest{})
	assert.Error(t, err)
}

func TestHandleSuppressAndListFactorCodes(t *testing.T) {
	s := newTestServer()
	ctx := context.Background()

	_, status, err := s.handleSuppressFactorCode(ctx, &mcp.CallToolRequest{}, FactorCodeRequest{Code: "SYMPTOM_HEADACHE"})
	require.NoError(t, err)
	assert.Equal(t, "success", status.Status)

	_, list, err := s.handleListSuppressedFactorCodes(ctx, &mcp.CallToolRequest{}, EmptyRequest{})
	require.NoError(t, err)
	require.Len(t, list.Codes, 1)
	assert.Equal(t, types.FactorCode("SYMPTOM_HEADACHE"), list.Codes[0])

	_, status, err = s.handleUnsuppressFactorCode(ctx, &mcp.CallToolRequest{}, FactorCodeRequest{Code: "SYMPTOM_HEADACHE"})
	require.NoError(t, err)
	assert.Equal(t, "success", status.Status)

	_, list, err = s.handleListSuppressedFactorCodes(ctx, &mcp.CallToolRequest{}, EmptyRequest{})
	require.NoError(t, err)
	assert.Empty(t, list.Codes)
}

func TestHandleSuppressFactorCode_RejectsUnknownCode(t *testing.T) {
	s := newTestServer()
	_, _, err := s.handleSuppressFactorCode(context.Background(), &mcp.CallToolRequest{}, FactorCodeRequest{Code: "BOGUS"})
	assert.Error(t, err)
}

func TestHandleUseSavedContext_RoundTrips(t *testing.T) {
	s := newTestServer()
	ctx := context.Background()

	_, flag, err := s.handleGetUseSavedContext(ctx, &mcp.CallToolRequest{}, EmptyRequest{})
	require.NoError(t, err)
	assert.True(t, flag.Value)

	_, status, err := s.handleSetUseSavedContext(ctx, &mcp.CallToolRequest{}, BoolFlagRequest{Value: false})
	require.NoError(t, err)
	assert.Equal(t, "success", status.Status)

	_, flag, err = s.handleGetUseSavedContext(ctx, &mcp.CallToolRequest{}, EmptyRequest{})
	require.NoError(t, err)
	assert.False(t, flag.Value)
}

func TestHandleSessionUseProfile_RoundTrips(t *testing.T) {
	s := newTestServer()
	ctx := context.Background()

	_, flag, err := s.handleGetSessionUseProfile(ctx, &mcp.CallToolRequest{}, EmptyRequest{})
	require.NoError(t, err)
	assert.True(t, flag.Value)

	_, status, err := s.handleSetSessionUseProfile(ctx, &mcp.CallToolRequest{}, BoolFlagRequest{Value: false})
	require.NoError(t, err)
	assert.Equal(t, "success", status.Status)

	_, flag, err = s.handleGetSessionUseProfile(ctx, &mcp.CallToolRequest{}, EmptyRequest{})
	require.NoError(t, err)
	assert.False(t, flag.Value)
}

func TestHandleClearSessionContext(t *testing.T) {
	s := newTestServer()
	ctx := context.Background()

	_, _, err := s.handleSetSessionUseProfile(ctx, &mcp.CallToolRequest{}, BoolFlagRequest{Value: false})
	require.NoError(t, err)

	_, status, err := s.handleClearSessionContext(ctx, &mcp.CallToolRequest{}, EmptyRequest{})
	require.NoError(t, err)
	assert.Equal(t, "success", status.Status)

	_, flag, err := s.handleGetSessionUseProfile(ctx, &mcp.CallToolRequest{}, EmptyRequest{})
	require.NoError(t, err)
	assert.True(t, flag.Value)
}

func TestHandleGetPendingFollowUp_NoneSet(t *testing.T) {
	s := newTestServer()
	_, resp, err := s.handleGetPendingFollowUp(context.Background(), &mcp.CallToolRequest{}, EmptyRequest{})
	require.NoError(t, err)
	assert.Nil(t, resp.Pending)
}

func TestRegisterTools_DoesNotPanic(t *testing.T) {
	s := newTestServer()
	mcpServer := mcp.NewServer(&mcp.Implementation{Name: "test", Version: "0.0.1"}, nil)
	assert.NotPanics(t, func() {
		s.RegisterTools(mcpServer)
	})
}

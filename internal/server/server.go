// Package server implements the MCP (Model Context Protocol) server for the
// complexity reasoning engine.
//
// This package exposes 10 tools mirroring the external interface one-to-one:
// the primary turn-processing tool plus the suppression, user-control, and
// pending-follow-up introspection operations. All responses are JSON
// formatted for consumption by an MCP client via stdio transport.
//
// Available tools:
//   - process-smart-input: run the full turn pipeline
//   - suppress-factor-code / unsuppress-factor-code / list-suppressed-factor-codes
//   - set-use-saved-context / get-use-saved-context
//   - set-session-use-profile / get-session-use-profile
//   - clear-session-context
//   - get-pending-followup
package server

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"complexity-engine/internal/engine"
	"complexity-engine/internal/taxonomy"
	"complexity-engine/internal/types"
)

// EngineServer adapts an Engine to MCP tool handlers.
type EngineServer struct {
	engine *engine.Engine
}

// NewEngineServer wraps eng as an MCP tool provider.
func NewEngineServer(eng *engine.Engine) *EngineServer {
	return &EngineServer{engine: eng}
}

func (s *EngineServer) RegisterTools(mcpServer *mcp.Server) {
	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "process-smart-input",
		Description: "Classify, extract, and route one turn of free text into a response model",
	}, s.handleProcessSmartInput)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "suppress-factor-code",
		Description: "Add a factor code to the suppression list",
	}, s.handleSuppressFactorCode)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "unsuppress-factor-code",
		Description: "Remove a factor code from the suppression list",
	}, s.handleUnsuppressFactorCode)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "list-suppressed-factor-codes",
		Description: "List every currently suppressed factor code",
	}, s.handleListSuppressedFactorCodes)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "set-use-saved-context",
		Description: "Persist whether saved profile context feeds future turns",
	}, s.handleSetUseSavedContext)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "get-use-saved-context",
		Description: "Read the persisted use_saved_context flag",
	}, s.handleGetUseSavedContext)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "set-session-use-profile",
		Description: "Set the process-local session_use_profile flag",
	}, s.handleSetSessionUseProfile)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "get-session-use-profile",
		Description: "Read the process-local session_use_profile flag",
	}, s.handleGetSessionUseProfile)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "clear-session-context",
		Description: "Clear any pending follow-up and reset session_use_profile to its default",
	}, s.handleClearSessionContext)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "get-pending-followup",
		Description: "Return the outstanding pending follow-up question, if any",
	}, s.handleGetPendingFollowUp)
}

// ProcessSmartInputRequest is the primary tool's input.
type ProcessSmartInputRequest struct {
	InputText    string `json:"input_text"`
	Intent       string `json:"intent"`
	SaveMode     string `json:"save_mode"`
	IncludeDebug bool   `json:"include_debug,omitempty"`
}

// ProcessSmartInputResponse is the primary tool's output.
type ProcessSmartInputResponse struct {
	Event        *types.Event             `json:"event"`
	DomainResult *types.DomainResult      `json:"domain_result"`
	Factors      []*types.Factor          `json:"factors"`
	MissingInfo  []*types.MissingInfo     `json:"missing_info,omitempty"`
	Profile      *types.ComplexityProfile `json:"profile"`
	Snapshot     *types.StateSnapshot     `json:"snapshot"`
	Response     *types.ResponseModel     `json:"response"`
	Debug        *engine.DebugModel       `json:"debug,omitempty"`
}

// ValidateProcessSmartInputRequest rejects an empty input_text and applies
// the documented defaults for intent and save_mode.
func ValidateProcessSmartInputRequest(req *ProcessSmartInputRequest) error {
	if req.InputText == "" {
		return fmt.Errorf("input_text must not be empty")
	}
	if req.SaveMode == "" {
		req.SaveMode = string(types.SaveModeTransient)
	}
	if req.Intent == "" {
		req.Intent = string(types.IntentAsk)
	}
	return nil
}

func (s *EngineServer) handleProcessSmartInput(ctx context.Context, req *mcp.CallToolRequest, input ProcessSmartInputRequest) (*mcp.CallToolResult, *ProcessSmartInputResponse, error) {
	if err := ValidateProcessSmartInputRequest(&input); err != nil {
		return nil, nil, err
	}

	out, err := s.engine.ProcessSmartInput(engine.Input{
		InputText:    input.InputText,
		Intent:       types.EventIntent(input.Intent),
		SaveMode:     types.EventSaveMode(input.SaveMode),
		IncludeDebug: input.IncludeDebug,
	})
	if err != nil {
		return nil, nil, err
	}

	response := &ProcessSmartInputResponse{
		Event:        out.Event,
		DomainResult: out.DomainResult,
		Factors:      out.Extracted.Factors,
		MissingInfo:  out.Extracted.MissingInfo,
		Profile:      out.Profile,
		Snapshot:     out.Snapshot,
		Response:     out.Response,
		Debug:        out.Debug,
	}

	return &mcp.CallToolResult{
		Content: toJSONContent(response),
	}, response, nil
}

// FactorCodeRequest names a single factor code, used by suppress/unsuppress.
type FactorCodeRequest struct {
	Code string `json:"code"`
}

func validateFactorCode(code string) error {
	if code == "" {
		return fmt.Errorf("code must not be empty")
	}
	if _, ok := taxonomy.Factor(types.FactorCode(code)); !ok {
		return fmt.Errorf("code %q is not a recognized factor code", code)
	}
	return nil
}

// StatusResponse is a minimal acknowledgement for write-only tools.
type StatusResponse struct {
	Status string `json:"status"`
}

func (s *EngineServer) handleSuppressFactorCode(ctx context.Context, req *mcp.CallToolRequest, input FactorCodeRequest) (*mcp.CallToolResult, *StatusResponse, error) {
	if err := validateFactorCode(input.Code); err != nil {
		return nil, nil, err
	}
	if err := s.engine.SuppressFactorCode(types.FactorCode(input.Code)); err != nil {
		return nil, nil, err
	}
	response := &StatusResponse{Status: "success"}
	return &mcp.CallToolResult{Content: toJSONContent(response)}, response, nil
}

func (s *EngineServer) handleUnsuppressFactorCode(ctx context.Context, req *mcp.CallToolRequest, input FactorCodeRequest) (*mcp.CallToolResult, *StatusResponse, error) {
	if err := validateFactorCode(input.Code); err != nil {
		return nil, nil, err
	}
	if err := s.engine.UnsuppressFactorCode(types.FactorCode(input.Code)); err != nil {
		return nil, nil, err
	}
	response := &StatusResponse{Status: "success"}
	return &mcp.CallToolResult{Content: toJSONContent(response)}, response, nil
}

// EmptyRequest is used by tools that take no parameters.
type EmptyRequest struct{}

// SuppressedCodesResponse lists every currently suppressed code.
type SuppressedCodesResponse struct {
	Codes []types.FactorCode `json:"codes"`
}

func (s *EngineServer) handleListSuppressedFactorCodes(ctx context.Context, req *mcp.CallToolRequest, input EmptyRequest) (*mcp.CallToolResult, *SuppressedCodesResponse, error) {
	set, err := s.engine.GetSuppressedFactorCodes()
	if err != nil {
		return nil, nil, err
	}
	codes := make([]types.FactorCode, 0, len(set))
	for code := range set {
		codes = append(codes, code)
	}
	response := &SuppressedCodesResponse{Codes: codes}
	return &mcp.CallToolResult{Content: toJSONContent(response)}, response, nil
}

// BoolFlagRequest sets a single boolean control flag.
type BoolFlagRequest struct {
	Value bool `json:"value"`
}

// BoolFlagResponse reports the current value of a boolean control flag.
type BoolFlagResponse struct {
	Value bool `json:"value"`
}

func (s *EngineServer) handleSetUseSavedContext(ctx context.Context, req *mcp.CallToolRequest, input BoolFlagRequest) (*mcp.CallToolResult, *StatusResponse, error) {
	if err := s.engine.SetUseSavedContext(input.Value); err != nil {
		return nil, nil, err
	}
	response := &StatusResponse{Status: "success"}
	return &mcp.CallToolResult{Content: toJSONContent(response)}, response, nil
}

func (s *EngineServer) handleGetUseSavedContext(ctx context.Context, req *mcp.CallToolRequest, input EmptyRequest) (*mcp.CallToolResult, *BoolFlagResponse, error) {
	v, err := s.engine.GetUseSavedContext()
	if err != nil {
		return nil, nil, err
	}
	response := &BoolFlagResponse{Value: v}
	return &mcp.CallToolResult{Content: toJSONContent(response)}, response, nil
}

func (s *EngineServer) handleSetSessionUseProfile(ctx context.Context, req *mcp.CallToolRequest, input BoolFlagRequest) (*mcp.CallToolResult, *StatusResponse, error) {
	s.engine.SetSessionUseProfile(input.Value)
	response := &StatusResponse{Status: "success"}
	return &mcp.CallToolResult{Content: toJSONContent(response)}, response, nil
}

func (s *EngineServer) handleGetSessionUseProfile(ctx context.Context, req *mcp.CallToolRequest, input EmptyRequest) (*mcp.CallToolResult, *BoolFlagResponse, error) {
	response := &BoolFlagResponse{Value: s.engine.GetSessionUseProfile()}
	return &mcp.CallToolResult{Content: toJSONContent(response)}, response, nil
}

func (s *EngineServer) handleClearSessionContext(ctx context.Context, req *mcp.CallToolRequest, input EmptyRequest) (*mcp.CallToolResult, *StatusResponse, error) {
	if err := s.engine.ClearSessionContext(); err != nil {
		return nil, nil, err
	}
	response := &StatusResponse{Status: "success"}
	return &mcp.CallToolResult{Content: toJSONContent(response)}, response, nil
}

// PendingFollowUpResponse wraps the pending row, which may be absent.
type PendingFollowUpResponse struct {
	Pending *types.PendingFollowUp `json:"pending,omitempty"`
}

func (s *EngineServer) handleGetPendingFollowUp(ctx context.Context, req *mcp.CallToolRequest, input EmptyRequest) (*mcp.CallToolResult, *PendingFollowUpResponse, error) {
	pending, err := s.engine.GetPendingFollowUp()
	if err != nil {
		return nil, nil, err
	}
	response := &PendingFollowUpResponse{Pending: pending}
	return &mcp.CallToolResult{Content: toJSONContent(response)}, response, nil
}

// toJSONContent converts any data structure to MCP TextContent with JSON.
// Consumed by an MCP client directly; no human-readable formatting needed.
func toJSONContent(data interface{}) []mcp.Content {
	jsonData, err := json.Marshal(data)
	if err != nil {
		errData := map[string]string{"error": err.Error()}
		jsonData, _ = json.Marshal(errData)
	}
	return []mcp.Content{
		&mcp.TextContent{Text: string(jsonData)},
	}
}

package server

import (
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/ironsheep/omr-eval/internal/answerkey"
	"github.com/ironsheep/omr-eval/internal/detection"
	"github.com/ironsheep/omr-eval/internal/grid"
	"github.com/ironsheep/omr-eval/internal/imaging"
	"github.com/ironsheep/omr-eval/internal/omr"
	"github.com/ironsheep/omr-eval/internal/report"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "omr_evaluate").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		s.logger.Warn("tool failed", zap.String("tool", params.Name), zap.Error(err))
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	case "omr_evaluate":
		return s.handleEvaluate(args)
	case "omr_detect_bubbles":
		return s.handleDetectBubbles(args)
	case "omr_answer_key_sets":
		return s.handleAnswerKeySets(args)
	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// === Evaluation ===

type evaluateArgs struct {
	Path           string `json:"path"`
	AnswerKeyPath  string `json:"answer_key_path"`
	Set            string `json:"set"`
	OverlayPath    string `json:"overlay_path"`
	IncludeOverlay bool   `json:"include_overlay"`
}

// EvaluateResult is the omr_evaluate result.
type EvaluateResult struct {
	Set        string                `json:"set"`
	Total      int                   `json:"total_score"`
	PerSubject []int                 `json:"per_subject"`
	Subjects   []report.SubjectScore `json:"subjects"`
	Predicted  map[int]string        `json:"predicted_answers"`
	Stats      grid.Stats            `json:"grid"`
	Overlay    *imaging.EncodedImage `json:"overlay,omitempty"`
	OverlayOut string                `json:"overlay_path,omitempty"`
}

func (s *Server) handleEvaluate(args json.RawMessage) (interface{}, error) {
	var a evaluateArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" || a.AnswerKeyPath == "" {
		return nil, fmt.Errorf("path and answer_key_path are required")
	}
	if a.Set == "" {
		a.Set = omr.DefaultSet
	}

	doc, err := answerkey.LoadFile(a.AnswerKeyPath)
	if err != nil {
		return nil, err
	}
	img, err := imaging.LoadFile(a.Path)
	if err != nil {
		return nil, err
	}

	set := s.evaluator.ResolveSet(img, a.Set, s.setReader)
	out, err := s.evaluator.EvaluateImage(img, doc.Resolve(set))
	if err != nil {
		return nil, err
	}

	res := &EvaluateResult{
		Set:        set,
		Total:      out.Result.Total,
		PerSubject: out.Result.PerSubject,
		Subjects:   report.Subjects(out.Result, s.evaluator.Config().Subjects),
		Predicted:  out.Result.Predicted,
		Stats:      out.Stats,
	}

	if out.Overlay != nil {
		if a.OverlayPath != "" {
			if err := imaging.Save(out.Overlay, a.OverlayPath); err != nil {
				return nil, err
			}
			res.OverlayOut = a.OverlayPath
		}
		if a.IncludeOverlay {
			enc, err := imaging.EncodePNG(out.Overlay)
			if err != nil {
				return nil, err
			}
			res.Overlay = enc
		}
	}
	return res, nil
}

// === Detection ===

type detectArgs struct {
	Path          string `json:"path"`
	IncludeRatios bool   `json:"include_ratios"`
}

// DetectResult is the omr_detect_bubbles result.
type DetectResult struct {
	Width        int                   `json:"width"`
	Height       int                   `json:"height"`
	Threshold    uint8                 `json:"threshold"`
	Regions      int                   `json:"regions"`
	Rows         int                   `json:"rows"`
	Stats        grid.Stats            `json:"grid"`
	Candidates   []detection.Candidate `json:"candidates"`
	Measurements []grid.Measurement    `json:"measurements,omitempty"`
}

func (s *Server) handleDetectBubbles(args json.RawMessage) (interface{}, error) {
	var a detectArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, fmt.Errorf("path is required")
	}

	img, err := imaging.LoadFile(a.Path)
	if err != nil {
		return nil, err
	}
	analysis, err := s.evaluator.Analyze(img)
	if err != nil {
		return nil, err
	}
	return newDetectResult(analysis, a.IncludeRatios), nil
}

func newDetectResult(a *omr.Analysis, ratios bool) *DetectResult {
	b := a.Normalized.Bounds()
	res := &DetectResult{
		Width:      b.Dx(),
		Height:     b.Dy(),
		Threshold:  a.Threshold,
		Regions:    a.Regions,
		Rows:       a.Grid.Rows(),
		Stats:      a.Stats,
		Candidates: a.Candidates,
	}
	if ratios {
		res.Measurements = a.Measurements
	}
	return res
}

// === Answer keys ===

type answerKeySetsArgs struct {
	AnswerKeyPath string `json:"answer_key_path"`
}

func (s *Server) handleAnswerKeySets(args json.RawMessage) (interface{}, error) {
	var a answerKeySetsArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	doc, err := answerkey.LoadFile(a.AnswerKeyPath)
	if err != nil {
		return nil, err
	}
	sets := doc.Sets()
	return map[string]interface{}{
		"sets":  sets,
		"count": len(sets),
	}, nil
}

package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		{
			Name:        "omr_evaluate",
			Description: "Score a scanned OMR answer sheet against an answer key file. Returns the total score, per-subject scores and the predicted answer of every question. Optionally returns or saves the audit overlay (filled bubbles outlined green, empty ones red).",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the sheet image",
					},
					"answer_key_path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the answer key (JSON or YAML)",
					},
					"set": map[string]interface{}{
						"type":        "string",
						"description": "Answer set to use (e.g. \"A\", \"B\"), or \"auto\" to read it from the sheet header. Default \"A\"",
						"default":     "A",
					},
					"overlay_path": map[string]interface{}{
						"type":        "string",
						"description": "Optional path to save the overlay image to",
					},
					"include_overlay": map[string]interface{}{
						"type":        "boolean",
						"description": "Return the overlay as base64-encoded PNG. Default false",
						"default":     false,
					},
				},
				"required": []string{"path", "answer_key_path"},
			},
		},
		{
			Name:        "omr_detect_bubbles",
			Description: "Detect bubble candidates on a sheet without scoring. Returns every candidate's bounding box and area in normalized coordinates, the binarization threshold and grid assembly diagnostics. Use this to check why a sheet scores unexpectedly.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the sheet image",
					},
					"include_ratios": map[string]interface{}{
						"type":        "boolean",
						"description": "Also return the fill ratio of every grid cell. Default false",
						"default":     false,
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "omr_answer_key_sets",
			Description: "List the named answer sets (e.g. \"Set A\", \"Set B\") in an answer key file.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"answer_key_path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the answer key (JSON or YAML)",
					},
				},
				"required": []string{"answer_key_path"},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}

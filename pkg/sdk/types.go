package craftmcp

// Health is the GET /health response.
type Health struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// ToolDefinition describes one tool exposed by the server.
type ToolDefinition struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ToolList is the GET /tools response.
type ToolList struct {
	Tools []ToolDefinition `json:"tools"`
	Count int              `json:"count"`
}

// DocumentInfo is one configured document.
type DocumentInfo struct {
	Name        string `json:"name"`
	APIEndpoint string `json:"apiEndpoint"`
}

// DocumentList is the GET /documents response.
type DocumentList struct {
	Documents []DocumentInfo `json:"documents"`
	Count     int            `json:"count"`
}

// searchRequest is the body of the search routes.
type searchRequest struct {
	Query         string `json:"query"`
	CaseSensitive bool   `json:"caseSensitive,omitempty"`
}

// SearchMatch is one matched block with its source document.
type SearchMatch struct {
	Block        map[string]any `json:"block"`
	DocumentName string         `json:"documentName,omitempty"`
	Path         []string       `json:"path,omitempty"`
}

// DocumentResults is the per-document entry of an aggregated search.
// Exactly one of Results or Error is set.
type DocumentResults struct {
	DocumentName string        `json:"documentName"`
	Results      []SearchMatch `json:"results,omitempty"`
	Error        string        `json:"error,omitempty"`
}

// SearchAllResult is the POST /search response.
type SearchAllResult struct {
	Query             string            `json:"query"`
	CaseSensitive     bool              `json:"caseSensitive"`
	TotalResults      int               `json:"totalResults"`
	DocumentsSearched int               `json:"documentsSearched"`
	Results           []DocumentResults `json:"results"`
	Errors            []DocumentResults `json:"errors,omitempty"`
}

// Payload is a raw JSON object response. Read and search payloads use it
// because a size-bounded response may carry markers alongside the data.
type Payload map[string]any

// Truncated reports whether the server rewrote this payload to fit its
// response size budget.
func (p Payload) Truncated() bool {
	meta, ok := p["_metadata"].(map[string]any)
	if !ok {
		return false
	}
	truncated, _ := meta["truncated"].(bool)
	return truncated
}

// ErrorMessage returns the soft error carried on the payload, if any. Unknown
// documents, unreachable upstreams, and missing blocks report this way.
func (p Payload) ErrorMessage() string {
	msg, _ := p["error"].(string)
	return msg
}

// AvailableDocuments returns the valid document names from an unknown
// document payload, or nil.
func (p Payload) AvailableDocuments() []string {
	raw, ok := p["availableDocuments"].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

package domain

import "encoding/json"

// SearchResult is one matched block, annotated with the document it came from.
type SearchResult struct {
	Block        Block    `json:"block"`
	DocumentName string   `json:"documentName,omitempty"`
	Path         []string `json:"path,omitempty"`
}

// DocumentSearchResult is the per-document outcome of a fan-out search.
// Exactly one of Results or Error is populated: a document that answered
// (even with zero matches) carries Results, a document that failed carries
// the failure as a string.
type DocumentSearchResult struct {
	DocumentName string         `json:"documentName"`
	Results      []SearchResult `json:"results,omitempty"`
	Error        string         `json:"error,omitempty"`
}

// Failed reports whether this document's search failed.
func (r DocumentSearchResult) Failed() bool {
	return r.Error != ""
}

// MarshalJSON enforces the Results/Error exclusivity on the wire: a failed
// document serializes only its error, a successful one always carries a
// results array, even when empty.
func (r DocumentSearchResult) MarshalJSON() ([]byte, error) {
	if r.Failed() {
		return json.Marshal(struct {
			DocumentName string `json:"documentName"`
			Error        string `json:"error"`
		}{r.DocumentName, r.Error})
	}
	results := r.Results
	if results == nil {
		results = []SearchResult{}
	}
	return json.Marshal(struct {
		DocumentName string         `json:"documentName"`
		Results      []SearchResult `json:"results"`
	}{r.DocumentName, results})
}

// SearchAllResult is the combined outcome of searching every configured
// document. Results always has one entry per configured document, in
// configuration order, regardless of which succeeded.
type SearchAllResult struct {
	Query             string                 `json:"query"`
	CaseSensitive     bool                   `json:"caseSensitive"`
	TotalResults      int                    `json:"totalResults"`
	DocumentsSearched int                    `json:"documentsSearched"`
	Results           []DocumentSearchResult `json:"results"`
	Errors            []DocumentSearchResult `json:"errors,omitempty"`
}

// DocumentContent is the outcome of reading a document root. Error is a
// soft per-document failure, not a call failure.
type DocumentContent struct {
	DocumentName string  `json:"documentName"`
	MaxDepth     int     `json:"maxDepth,omitempty"`
	Content      []Block `json:"content,omitempty"`
	Error        string  `json:"error,omitempty"`
}

// BlockContent is the outcome of reading a single block subtree.
type BlockContent struct {
	DocumentName string `json:"documentName"`
	BlockID      string `json:"blockId"`
	Block        Block  `json:"block,omitempty"`
	Error        string `json:"error,omitempty"`
}

// DocumentList is the list_documents payload.
type DocumentList struct {
	Documents []DocumentInfo `json:"documents"`
	Count     int            `json:"count"`
}

// DocumentInfo is one configured document as shown to callers.
type DocumentInfo struct {
	Name        string `json:"name"`
	APIEndpoint string `json:"apiEndpoint"`
}

// UnknownDocument is the soft-error payload for a lookup miss. It lists the
// valid names so callers can discover the configuration.
type UnknownDocument struct {
	Error              string   `json:"error"`
	AvailableDocuments []string `json:"availableDocuments"`
}

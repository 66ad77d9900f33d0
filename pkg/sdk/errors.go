package craftmcp

import "fmt"

// APIError is a non-2xx response from the server. The server's failure
// envelope carries the message under "error".
type APIError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"error"`
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("craftmcp: %d %s: %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("craftmcp: %d: %s", e.StatusCode, e.Message)
}

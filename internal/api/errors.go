package api

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/GauthierNelkinsky/shipshipship-template-default/pkg/utils"
)

// Error is a rejection from the admin backend. Message carries the
// backend's wording verbatim; the feedback guard matches substrings on it
// to pick user-facing text, so it must not be rewritten here.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("admin API: %d: %s", e.Status, e.Message)
}

// parseError extracts the backend's message string from an error body.
// The backend answers either {"error": "..."} or {"message": "..."}.
func parseError(status int, body []byte) *Error {
	var payload struct {
		Err     string `json:"error"`
		Message string `json:"message"`
	}
	msg := ""
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Message != "" {
			msg = payload.Message
		} else {
			msg = payload.Err
		}
	}
	if msg == "" {
		msg = strings.TrimSpace(utils.TruncateString(string(body), 200))
	}
	return &Error{Status: status, Message: msg}
}

package letta

import (
	"fmt"
	"net/http"

	"votcletta/internal/domain"

	"github.com/cockroachdb/errors"
)

// ErrConflict marks a create rejected because the name is already taken.
var ErrConflict = domain.ErrToolExists

// APIError is a non-2xx response from the Letta server.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("letta %s %s: HTTP %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

func newAPIError(method, path string, status int, body []byte) error {
	apiErr := &APIError{Method: method, Path: path, StatusCode: status, Body: string(body)}
	if status == http.StatusConflict {
		return errors.Mark(apiErr, ErrConflict)
	}
	return apiErr
}

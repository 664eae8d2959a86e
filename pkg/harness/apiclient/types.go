package apiclient

import (
	"errors"
	"fmt"
	"net/http"
)

// ProjectPayload is the request body for creating a project.
type ProjectPayload struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	TeamMembers []string `json:"team_members"`
}

// Project is the server's representation of a project resource.
type Project struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Status      string   `json:"status"`
	TeamMembers []string `json:"team_members"`
	TenantID    string   `json:"tenant_id,omitempty"`
}

// ProjectPage is one page of a project listing.
type ProjectPage struct {
	Projects []Project `json:"projects"`
	Page     int       `json:"page"`
	Limit    int       `json:"limit"`
	Total    int       `json:"total"`
}

// APIError is a non-2xx response from the API. Retryable statuses only
// surface as APIError once the retry budget is exhausted.
type APIError struct {
	StatusCode int
	Method     string
	Path       string
	Body       string
}

func (e *APIError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.StatusCode)
}

// IsStatus reports whether err is an *APIError with the given status code.
func IsStatus(err error, code int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == code
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	return IsStatus(err, http.StatusNotFound)
}

// IsForbidden reports whether err is a 403 from the API.
func IsForbidden(err error) bool {
	return IsStatus(err, http.StatusForbidden)
}

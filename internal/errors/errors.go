// internal/errors/errors.go
package appErrors

import (
	"errors"
	"fmt"
)

var (
	// ErrRoleNotPermitted is returned when the caller's role has no access
	// to the campaign dashboard.
	ErrRoleNotPermitted = errors.New("role not permitted to view campaign dashboard")

	// ErrBatchUnsupported is returned by the API client when the batch
	// endpoint for an action is not available.
	ErrBatchUnsupported = errors.New("batch endpoint not supported")

	// ErrNotLoaded is returned when an operation needs a record set and
	// none has been loaded yet.
	ErrNotLoaded = errors.New("dashboard not loaded")
)

// ErrCampaignNotFound is a sentinel error
type ErrCampaignNotFound struct {
	CampaignID int64
}

func (e *ErrCampaignNotFound) Error() string {
	return fmt.Sprintf("campaign with ID %d not found", e.CampaignID)
}

// Helper constructor
func NewCampaignNotFound(id int64) error {
	return &ErrCampaignNotFound{CampaignID: id}
}

// APIError is a non-2xx response from the attestation API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("attestation api returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("attestation api returned status %d: %s", e.StatusCode, e.Message)
}

func NewAPIError(status int, msg string) error {
	return &APIError{StatusCode: status, Message: msg}
}

// IsCampaignNotFound reports whether err wraps ErrCampaignNotFound.
func IsCampaignNotFound(err error) bool {
	var nf *ErrCampaignNotFound
	return errors.As(err, &nf)
}

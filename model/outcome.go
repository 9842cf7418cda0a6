package model

import "fmt"

type ErrorKind string

const (
	// Timeout or transport failure
	ErrorKindNetwork ErrorKind = "network"
	// Provider answered with a non-2xx status
	ErrorKindHTTPStatus ErrorKind = "http_status"
	// Provider claimed JSON but the body did not parse
	ErrorKindMalformed ErrorKind = "malformed"
	// Payload parsed but does not look like a media result
	ErrorKindInvalidResponse ErrorKind = "invalid_response"
	// The provider spec could not be turned into a request
	ErrorKindRequest ErrorKind = "request"
)

type FailureReason string

const (
	FailureReasonUnsupportedPlatform FailureReason = "unsupported_platform"
	FailureReasonExhausted           FailureReason = "exhausted"
	FailureReasonDeadline            FailureReason = "deadline"
)

type AttemptError struct {
	Kind    ErrorKind `json:"kind"`
	Status  int       `json:"status,omitempty"`
	Message string    `json:"message"`
}

type Success struct {
	Provider    string
	Payload     any
	ContentType string
	// Only set when the last provider responded with data that did not validate
	// and the soft-success exhaustion policy is in effect.
	Warning string
}

type Failure struct {
	Platform           Platform
	Reason             FailureReason
	TestedProviders    []string
	LastError          *AttemptError
	Message            string
	Suggestions        []string
	SupportedPlatforms []Platform
}

/*
Outcome is the terminal result of one resolution.
Exactly one of Success and Failure is set.
*/
type Outcome struct {
	Request MediaRequest
	Success *Success
	Failure *Failure
}

func (o Outcome) Succeeded() bool {
	return o.Success != nil
}

// Err maps a failed outcome onto one of the package sentinel errors, and returns nil on success.
func (o Outcome) Err() error {
	if o.Failure == nil {
		return nil
	}
	var sentinel error
	switch o.Failure.Reason {
	case FailureReasonUnsupportedPlatform:
		sentinel = ErrUnsupportedPlatform
	case FailureReasonDeadline:
		sentinel = ErrResolutionDeadline
	default:
		sentinel = ErrAllProvidersExhausted
	}
	return fmt.Errorf("%w: %s", sentinel, o.Failure.Message)
}

// Label is a short, bounded name for the outcome: "success", "soft_success" or the failure reason.
func (o Outcome) Label() string {
	switch {
	case o.Success != nil && o.Success.Warning != "":
		return "soft_success"
	case o.Success != nil:
		return "success"
	default:
		return string(o.Failure.Reason)
	}
}

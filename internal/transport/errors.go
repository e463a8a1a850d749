package transport

import (
	"encoding/json"
	"errors"
	"fmt"
)

// UnavailableMessage replaces the body whenever no usable response reached us.
const UnavailableMessage = "Server is currently unavailable. Please try again later."

var (
	ErrNetworkUnavailable = errors.New("transport: network unavailable")
	ErrServerBusiness     = errors.New("transport: server business error")
	ErrMalformedPayload   = errors.New("transport: malformed server payload")
	ErrInvalidBaseURL     = errors.New("transport: invalid base url")
	ErrResponseTooLarge   = errors.New("transport: response body too large")
)

type Kind int

const (
	KindNetworkUnavailable Kind = iota + 1
	KindServerBusiness
	KindMalformedPayload
)

func (k Kind) String() string {
	switch k {
	case KindNetworkUnavailable:
		return "network_unavailable"
	case KindServerBusiness:
		return "server_business_error"
	case KindMalformedPayload:
		return "malformed_server_payload"
	default:
		return "unknown"
	}
}

func (k Kind) sentinel() error {
	switch k {
	case KindNetworkUnavailable:
		return ErrNetworkUnavailable
	case KindServerBusiness:
		return ErrServerBusiness
	case KindMalformedPayload:
		return ErrMalformedPayload
	default:
		return nil
	}
}

// CallError is the failure outcome of one Call. Status is 0 when no
// response was received. A response whose body could not be read keeps its
// status and is reported as KindNetworkUnavailable.
type CallError struct {
	Kind   Kind
	Status int
	Body   string
	Err    error
}

func (e *CallError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("transport: %s (status %d): %s: %v", e.Kind, e.Status, e.Body, e.Err)
	}
	return fmt.Sprintf("transport: %s (status %d): %s", e.Kind, e.Status, e.Body)
}

func (e *CallError) Unwrap() error { return e.Err }

func (e *CallError) Is(target error) bool {
	s := e.Kind.sentinel()
	return s != nil && target == s
}

// BusinessResponse is the common shape of server-side business payloads.
type BusinessResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Raw     json.RawMessage `json:"-"`
}

// Business parses the recovered body of a server business error.
func (e *CallError) Business() (BusinessResponse, error) {
	if e.Kind != KindServerBusiness {
		return BusinessResponse{}, fmt.Errorf("transport: %s carries no business payload", e.Kind)
	}
	var out BusinessResponse
	if err := json.Unmarshal([]byte(e.Body), &out); err != nil {
		return BusinessResponse{}, fmt.Errorf("transport: decode business payload: %w", err)
	}
	out.Raw = json.RawMessage(e.Body)
	return out, nil
}

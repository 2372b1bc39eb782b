package auth

import (
	"errors"
	"fmt"
)

// Sentinel errors for the flow-level failure modes that carry no payload.
var (
	// ErrExpired indicates the device code expired before the user authorized it.
	ErrExpired = errors.New("device code expired, please try again")

	// ErrTimeout indicates device-code polling exhausted its window.
	ErrTimeout = errors.New("authentication timed out")

	// ErrNoProfiles indicates a Yggdrasil account with zero game profiles.
	ErrNoProfiles = errors.New("no profiles available for this account")

	// ErrAuthNotFound indicates a cached session or account was required but
	// is not present. Callers map this to a dedicated exit code.
	ErrAuthNotFound = errors.New("authentication required but not found, run 'mclc login' first")
)

// TransportError indicates the request never produced an HTTP response:
// connection refused, DNS failure, timeout, cancelled context.
type TransportError struct {
	// Stage identifies the flow step that issued the request.
	Stage string
	// Err is the underlying transport error.
	Err error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: request failed: %v", e.Stage, e.Err)
}

// Unwrap returns the underlying error for error chain inspection.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// ProviderError is a non-2xx response that no more specific classification
// applies to. It keeps the raw body so the provider's own message reaches
// the user.
type ProviderError struct {
	// Stage identifies the flow step that issued the request.
	Stage string
	// Status is the HTTP status code.
	Status int
	// Body is the raw response body.
	Body string
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: provider returned %d: %s", e.Stage, e.Status, e.Body)
}

// MalformedResponseError indicates a 2xx response missing an expected field,
// for example an empty DisplayClaims.xui array or a profile id that is not
// 32 hex characters.
type MalformedResponseError struct {
	Stage  string
	Reason string
}

// Error implements the error interface.
func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("%s: malformed response: %s", e.Stage, e.Reason)
}

// DenialReason enumerates the XSTS denial codes the chain understands.
type DenialReason int

const (
	// DenialUnknown is never produced by classification; it is the zero value.
	DenialUnknown DenialReason = iota
	// DenialNoXboxAccount: the Microsoft account has no Xbox account (2148916233).
	DenialNoXboxAccount
	// DenialChildAccountNeedsFamily: child account not part of a Family (2148916238).
	DenialChildAccountNeedsFamily
	// DenialRegionBanned: Xbox Live is unavailable or banned in the account's
	// country (2148916235).
	DenialRegionBanned
)

// String returns a user-facing description of the denial.
func (r DenialReason) String() string {
	switch r {
	case DenialNoXboxAccount:
		return "the account doesn't have an Xbox account"
	case DenialChildAccountNeedsFamily:
		return "the account is a child and must be added to a Family by an adult"
	case DenialRegionBanned:
		return "the account is from a country where Xbox Live is not available or is banned"
	default:
		return "access denied"
	}
}

// DeniedError is an XSTS 403 whose body matched one of the known denial codes.
type DeniedError struct {
	Reason DenialReason
	// Code is the numeric XErr value the body matched.
	Code string
}

// Error implements the error interface.
func (e *DeniedError) Error() string {
	return fmt.Sprintf("xsts: %s (%s)", e.Reason, e.Code)
}

package services

import "fmt"

// VerificationKind classifies why a Riot ID could not be verified.
type VerificationKind int

const (
	KindInvalidFormat VerificationKind = iota + 1
	KindNotFound
	KindInvalidCredential
	KindForbiddenCredential
	KindRateLimited
	KindRemote
)

// VerificationError is a classified provider failure. Error() is safe to show
// to end users.
type VerificationError struct {
	Kind       VerificationKind
	StatusCode int // HTTP status from the provider, 0 if none
	Err        error
}

var (
	ErrInvalidRiotID       = &VerificationError{Kind: KindInvalidFormat}
	ErrAccountNotFound     = &VerificationError{Kind: KindNotFound}
	ErrInvalidAPIKey       = &VerificationError{Kind: KindInvalidCredential}
	ErrAPIKeyForbidden     = &VerificationError{Kind: KindForbiddenCredential}
	ErrRateLimited         = &VerificationError{Kind: KindRateLimited}
	ErrProviderUnavailable = &VerificationError{Kind: KindRemote}
)

func (e *VerificationError) Error() string {
	switch e.Kind {
	case KindInvalidFormat:
		return "Invalid Riot ID format. Use name#tag (e.g. Player#BR1)"
	case KindNotFound:
		return "Riot ID not found. Check the name and tag"
	case KindInvalidCredential:
		return "Invalid Riot API key"
	case KindForbiddenCredential:
		return "Riot API key is forbidden or expired"
	case KindRateLimited:
		return "Too many requests to the Riot API. Please wait a moment and try again"
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("Riot API error (status %d)", e.StatusCode)
	}
	return "Could not reach the Riot API. Please try again"
}

func (e *VerificationError) Unwrap() error { return e.Err }

// Is matches on Kind so the package sentinels work with errors.Is.
func (e *VerificationError) Is(target error) bool {
	t, ok := target.(*VerificationError)
	return ok && t.Kind == e.Kind
}

func classifyStatus(status int) *VerificationError {
	switch status {
	case 404:
		return &VerificationError{Kind: KindNotFound, StatusCode: status}
	case 401:
		return &VerificationError{Kind: KindInvalidCredential, StatusCode: status}
	case 403:
		return &VerificationError{Kind: KindForbiddenCredential, StatusCode: status}
	case 429:
		return &VerificationError{Kind: KindRateLimited, StatusCode: status}
	}
	return &VerificationError{Kind: KindRemote, StatusCode: status}
}

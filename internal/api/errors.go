package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// Kind classifies a remote failure for user messaging.
type Kind int

const (
	KindUnknown Kind = iota
	KindInvalidPayload
	KindStaleToken
	KindForbidden
	KindNotFound
	KindConflict
	KindUnreachable
)

func (k Kind) String() string {
	switch k {
	case KindInvalidPayload:
		return "invalid_payload"
	case KindStaleToken:
		return "stale_token"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindUnreachable:
		return "unreachable"
	default:
		return "unknown"
	}
}

// RemoteError carries a backend failure verbatim: the backend-supplied
// message when one was present, a generic fallback otherwise.
type RemoteError struct {
	Kind    Kind
	Status  int
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote error (%s, status %d): %s", e.Kind, e.Status, e.Message)
}

// KindOf extracts the failure kind from an error chain.
func KindOf(err error) Kind {
	var re *RemoteError
	if errors.As(err, &re) {
		return re.Kind
	}
	return KindUnknown
}

// errorBody is the Spring-style error payload the backends return.
type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// remoteErrorFromResponse maps an HTTP failure response to a RemoteError.
// Any 401 seen here already survived the transport's single refresh
// attempt, so it is a hard stale-token failure, not a retry trigger.
func remoteErrorFromResponse(resp *http.Response, fallback string) *RemoteError {
	kind := KindUnknown
	switch resp.StatusCode {
	case http.StatusBadRequest:
		kind = KindInvalidPayload
	case http.StatusUnauthorized:
		kind = KindStaleToken
	case http.StatusForbidden:
		kind = KindForbidden
	case http.StatusNotFound:
		kind = KindNotFound
	case http.StatusConflict:
		kind = KindConflict
	}

	message := fallback
	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err == nil && len(body) > 0 {
		var parsed errorBody
		if json.Unmarshal(body, &parsed) == nil {
			if parsed.Message != "" {
				message = parsed.Message
			} else if parsed.Error != "" {
				message = parsed.Error
			}
		}
	}

	return &RemoteError{Kind: kind, Status: resp.StatusCode, Message: message}
}

// unreachable wraps a transport-level failure.
func unreachable(err error) *RemoteError {
	return &RemoteError{Kind: KindUnreachable, Message: err.Error()}
}

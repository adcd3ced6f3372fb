package wiki

import (
	"errors"
	"fmt"
	"strings"
)

// EndpointNotFoundError means no known API path convention answered for the
// given host.
type EndpointNotFoundError struct {
	Host  string
	Tried []string
}

func (e *EndpointNotFoundError) Error() string {
	return fmt.Sprintf("no MediaWiki API endpoint found for %q (tried %s) - try passing the full path to the wiki's api.php",
		e.Host, strings.Join(e.Tried, ", "))
}

// PageNotFoundError means a search returned zero results.
type PageNotFoundError struct {
	Query string
}

func (e *PageNotFoundError) Error() string {
	return fmt.Sprintf("no search results for %q", e.Query)
}

// ContentUnavailableError means the API could not supply wikitext for a page:
// missing page, empty content, or a redirect chain longer than one hop.
type ContentUnavailableError struct {
	Title  string
	Reason string
}

func (e *ContentUnavailableError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("no content available for %q", e.Title)
	}
	return fmt.Sprintf("no content available for %q: %s", e.Title, e.Reason)
}

// MalformedResponseError means an API response decoded but lacked a required
// field or had the wrong shape.
type MalformedResponseError struct {
	What string
	Err  error
}

func (e *MalformedResponseError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("malformed API response: %s", e.What)
	}
	return fmt.Sprintf("malformed API response: %s: %v", e.What, e.Err)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

// APIError is an error reported in-band by the MediaWiki API envelope.
type APIError struct {
	Code       string
	Message    string
	HTTPStatus int
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return e.Message
	}
	if e.Message == "" {
		return e.Code
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func IsEndpointNotFound(err error) (*EndpointNotFoundError, bool) {
	var e *EndpointNotFoundError
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

func IsPageNotFound(err error) (*PageNotFoundError, bool) {
	var e *PageNotFoundError
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

func IsContentUnavailable(err error) (*ContentUnavailableError, bool) {
	var e *ContentUnavailableError
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

func IsAPIError(err error) (*APIError, bool) {
	var e *APIError
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

func isMissingPageCode(code string) bool {
	switch strings.ToLower(code) {
	case "missingtitle", "nosuchpage", "nosuchpageid", "invalidtitle":
		return true
	default:
		return false
	}
}

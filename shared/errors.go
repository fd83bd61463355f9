// Copyright (C) 2026 l3montree GmbH
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package shared

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/go-github/v62/github"
	"github.com/pkg/errors"
)

// error kinds - use errors.Is to check for them
var (
	ErrAuthentication = errors.New("authentication failed")
	ErrAuthorization  = errors.New("not authorized")
	ErrNotFound       = errors.New("not found")
	ErrValidation     = errors.New("validation failed")
)

// APIError is returned for every non successful response of the remote api.
// The kind specific errors below embed it.
type APIError struct {
	StatusCode int
	Method     string
	URL        string
	Message    string
	// field level errors reported by the server
	Details []string
	// set if the request was rejected because the primary or secondary rate limit was hit
	RateLimited bool
}

func (e *APIError) Error() string {
	var sb strings.Builder
	if e.Method != "" {
		fmt.Fprintf(&sb, "%s %s: ", e.Method, e.URL)
	}
	if e.StatusCode != 0 {
		fmt.Fprintf(&sb, "%d ", e.StatusCode)
	}
	sb.WriteString(e.Message)
	if len(e.Details) > 0 {
		sb.WriteString(" [")
		sb.WriteString(strings.Join(e.Details, "; "))
		sb.WriteString("]")
	}
	return sb.String()
}

type AuthenticationError struct{ APIError }

func (e *AuthenticationError) Unwrap() []error { return []error{&e.APIError, ErrAuthentication} }

type AuthorizationError struct{ APIError }

func (e *AuthorizationError) Unwrap() []error { return []error{&e.APIError, ErrAuthorization} }

type NotFoundError struct{ APIError }

func (e *NotFoundError) Unwrap() []error { return []error{&e.APIError, ErrNotFound} }

type ValidationError struct{ APIError }

func (e *ValidationError) Unwrap() []error { return []error{&e.APIError, ErrValidation} }

// NewValidationError creates a validation error for input which got rejected before
// a request was sent.
func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{APIError{Message: fmt.Sprintf(format, args...)}}
}

// ValidateStruct runs the struct validator and converts the result into a ValidationError.
func ValidateStruct(s any) error {
	err := V.Struct(s)
	if err == nil {
		return nil
	}

	verr := NewValidationError("invalid input")
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		verr.Details = append(verr.Details, err.Error())
		return verr
	}
	for _, fe := range fieldErrs {
		verr.Details = append(verr.Details, fmt.Sprintf("%s failed on the '%s' rule", fe.Field(), fe.Tag()))
	}
	return verr
}

func newAPIError(resp *http.Response, message string) APIError {
	apiErr := APIError{Message: message}
	if resp == nil {
		return apiErr
	}
	apiErr.StatusCode = resp.StatusCode
	if resp.Request != nil {
		apiErr.Method = resp.Request.Method
		if resp.Request.URL != nil {
			apiErr.URL = resp.Request.URL.String()
		}
	}
	return apiErr
}

// FromStatus builds the typed error matching the status code of a failed response.
func FromStatus(resp *http.Response, message string, details ...string) error {
	apiErr := newAPIError(resp, message)
	apiErr.Details = details

	switch apiErr.StatusCode {
	case http.StatusUnauthorized:
		return &AuthenticationError{apiErr}
	case http.StatusForbidden:
		return &AuthorizationError{apiErr}
	case http.StatusNotFound:
		return &NotFoundError{apiErr}
	case http.StatusUnprocessableEntity, http.StatusBadRequest:
		return &ValidationError{apiErr}
	}
	return &apiErr
}

// FromGithubError translates the errors of the go-github package into the typed errors
// of this module. Transport errors (like a cancelled context) are returned unchanged.
func FromGithubError(err error) error {
	if err == nil {
		return nil
	}

	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) {
		apiErr := newAPIError(rateErr.Response, rateErr.Message)
		apiErr.RateLimited = true
		return &AuthorizationError{apiErr}
	}

	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		apiErr := newAPIError(abuseErr.Response, abuseErr.Message)
		apiErr.RateLimited = true
		return &AuthorizationError{apiErr}
	}

	var tfaErr *github.TwoFactorAuthError
	if errors.As(err, &tfaErr) {
		return &AuthenticationError{newAPIError(tfaErr.Response, tfaErr.Message)}
	}

	var respErr *github.ErrorResponse
	if errors.As(err, &respErr) {
		details := make([]string, 0, len(respErr.Errors))
		for _, e := range respErr.Errors {
			details = append(details, fieldErrorString(e))
		}
		return FromStatus(respErr.Response, respErr.Message, details...)
	}

	return err
}

func fieldErrorString(e github.Error) string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s.%s: %s", e.Resource, e.Field, e.Code)
}

package shared

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/google/go-github/v62/github"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func response(status int) *http.Response {
	u, _ := url.Parse("https://api.github.com/user/repository_invitations/1")
	return &http.Response{StatusCode: status, Request: &http.Request{Method: http.MethodPatch, URL: u}}
}

func TestFromStatus(t *testing.T) {
	cases := []struct {
		status   int
		sentinel error
	}{
		{http.StatusUnauthorized, ErrAuthentication},
		{http.StatusForbidden, ErrAuthorization},
		{http.StatusNotFound, ErrNotFound},
		{http.StatusUnprocessableEntity, ErrValidation},
		{http.StatusBadRequest, ErrValidation},
	}
	for _, c := range cases {
		t.Run(http.StatusText(c.status), func(t *testing.T) {
			err := FromStatus(response(c.status), "nope")
			assert.ErrorIs(t, err, c.sentinel)

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, c.status, apiErr.StatusCode)
			assert.Equal(t, http.MethodPatch, apiErr.Method)
		})
	}

	t.Run("should return a plain api error for other status codes", func(t *testing.T) {
		err := FromStatus(response(http.StatusInternalServerError), "boom")
		for _, sentinel := range []error{ErrAuthentication, ErrAuthorization, ErrNotFound, ErrValidation} {
			assert.NotErrorIs(t, err, sentinel)
		}
		assert.Equal(t, "PATCH https://api.github.com/user/repository_invitations/1: 500 boom", err.Error())
	})
}

func TestFromGithubError(t *testing.T) {
	t.Run("should keep the field errors of the response", func(t *testing.T) {
		err := FromGithubError(&github.ErrorResponse{
			Response: response(http.StatusUnprocessableEntity),
			Message:  "Validation Failed",
			Errors: []github.Error{
				{Resource: "Invitation", Field: "permissions", Code: "invalid"},
				{Message: "custom message"},
			},
		})

		var validationErr *ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Equal(t, []string{"Invitation.permissions: invalid", "custom message"}, validationErr.Details)
		assert.Contains(t, err.Error(), "[Invitation.permissions: invalid; custom message]")
	})

	t.Run("should flag abuse rate limits", func(t *testing.T) {
		err := FromGithubError(&github.AbuseRateLimitError{Response: response(http.StatusForbidden), Message: "secondary rate limit"})

		var authzErr *AuthorizationError
		require.ErrorAs(t, err, &authzErr)
		assert.True(t, authzErr.RateLimited)
	})

	t.Run("should map a missing two factor code to an authentication error", func(t *testing.T) {
		err := FromGithubError(&github.TwoFactorAuthError{Response: response(http.StatusUnauthorized), Message: "Must specify two-factor authentication OTP code."})
		assert.ErrorIs(t, err, ErrAuthentication)
	})

	t.Run("should find the error behind a wrap", func(t *testing.T) {
		err := FromGithubError(errors.Wrap(&github.ErrorResponse{Response: response(http.StatusNotFound), Message: "Not Found"}, "request failed"))
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("should pass other errors through", func(t *testing.T) {
		assert.Nil(t, FromGithubError(nil))
		assert.Equal(t, context.Canceled, FromGithubError(context.Canceled))
	})
}

func TestValidateStruct(t *testing.T) {
	type input struct {
		Name string `validate:"required"`
	}

	assert.NoError(t, ValidateStruct(input{Name: "bob"}))

	err := ValidateStruct(input{})
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, []string{"Name failed on the 'required' rule"}, validationErr.Details)
	assert.Zero(t, validationErr.StatusCode)
}

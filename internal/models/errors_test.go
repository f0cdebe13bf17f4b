package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorsCollection(t *testing.T) {
	var errs Errors
	assert.NoError(t, errs.Err())

	errs.Add(NewValidationError("You must provide a title."))
	errs.Add(nil)
	errs.Add(NewValidationError("You must provide post content."))

	err := errs.Err()
	require.Error(t, err)
	assert.Equal(t, []string{"You must provide a title.", "You must provide post content."}, errs.Messages())
	assert.Equal(t, CodeValidation, errs.Code())
	assert.True(t, HasCode(err, CodeValidation))
	assert.False(t, HasCode(err, CodeDuplicate))
}

func TestHasCodeWrapped(t *testing.T) {
	err := fmt.Errorf("follow: %w", NewDuplicateError("You are already following this user!"))
	assert.True(t, HasCode(err, CodeDuplicate))
	assert.False(t, HasCode(errors.New("plain"), CodeDuplicate))
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", NewValidationError("x"), fiber.StatusBadRequest},
		{"self follow", NewSelfFollowError("x"), fiber.StatusBadRequest},
		{"forbidden", NewForbiddenError("x"), fiber.StatusForbidden},
		{"unauthorized", NewUnauthorizedError("x"), fiber.StatusUnauthorized},
		{"not found", NewNotFoundError("Post", 1), fiber.StatusNotFound},
		{"duplicate", NewDuplicateError("x"), fiber.StatusConflict},
		{"collection uses first code", Errors{NewSelfFollowError("a"), NewDuplicateError("b")}, fiber.StatusBadRequest},
		{"raw", errors.New("boom"), fiber.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusFor(tt.err))
		})
	}
}

func TestRespondWithErrorHidesRawErrors(t *testing.T) {
	app := fiber.New()
	app.Get("/raw", func(c *fiber.Ctx) error {
		return RespondWithError(c, fiber.StatusInternalServerError, errors.New("pq: connection refused"))
	})
	app.Get("/many", func(c *fiber.Ctx) error {
		return RespondWithAppError(c, Errors{NewValidationError("a"), NewValidationError("b")})
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/raw", nil))
	require.NoError(t, err)
	var body ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, RetryLaterMessage, body.Error)
	assert.NotContains(t, body.Error, "pq")

	resp, err = app.Test(httptest.NewRequest("GET", "/many", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	body = ErrorResponse{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, []string{"a", "b"}, body.Errors)
}

func TestParseID(t *testing.T) {
	id, err := ParseID("Post", "42")
	require.NoError(t, err)
	assert.Equal(t, uint(42), id)

	for _, raw := range []string{"", "abc", "0", "-3", "5f1e0c"} {
		_, err := ParseID("Post", raw)
		assert.True(t, HasCode(err, CodeNotFound), raw)
	}
}

func TestAvatarURLNormalizesEmail(t *testing.T) {
	a := AvatarURL("  Someone@Example.COM ")
	b := AvatarURL("someone@example.com")
	assert.Equal(t, a, b)
	assert.Contains(t, a, "https://gravatar.com/avatar/")
}

func TestMarkOwner(t *testing.T) {
	p := &Post{AuthorID: 7}
	p.MarkOwner(7)
	assert.True(t, p.IsOwner)
	p.MarkOwner(8)
	assert.False(t, p.IsOwner)
	p.AuthorID = 0
	p.MarkOwner(0)
	assert.False(t, p.IsOwner)
}

package validation

import (
	"strings"

	"writescape/internal/models"
)

// PostInput is a post title and body after cleanup.
type PostInput struct {
	Title string `validate:"required,max=255"`
	Body  string `validate:"required"`
}

// RawPost is the untyped post payload as decoded from JSON.
type RawPost struct {
	Title any `json:"title"`
	Body  any `json:"body"`
}

// ParsePost cleans and validates a post payload. Both fields are always
// checked so callers can show every violation at once.
func ParsePost(raw RawPost) (PostInput, models.Errors) {
	in := PostInput{
		Title: PlainText(String(raw.Title)),
		Body:  PlainText(String(raw.Body)),
	}
	return in, Struct(in)
}

// RegisterInput is a registration request after cleanup.
type RegisterInput struct {
	Username string `validate:"required,min=3,max=30,alphanum"`
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=12,max=50"`
}

// RawRegister is the untyped registration payload.
type RawRegister struct {
	Username any `json:"username"`
	Email    any `json:"email"`
	Password any `json:"password"`
}

// ParseRegister trims username and email; the password is taken verbatim.
func ParseRegister(raw RawRegister) (RegisterInput, models.Errors) {
	in := RegisterInput{
		Username: strings.TrimSpace(String(raw.Username)),
		Email:    strings.ToLower(strings.TrimSpace(String(raw.Email))),
		Password: String(raw.Password),
	}
	return in, Struct(in)
}

// ParseSearchTerm accepts only a JSON string with visible content.
func ParseSearchTerm(v any) (string, *models.AppError) {
	s, ok := v.(string)
	if !ok {
		return "", models.NewValidationError("Search term must be text.")
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return "", models.NewValidationError("You must provide a search term.")
	}
	return s, nil
}

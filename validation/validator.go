// Package validation implements structural and semantic validation of
// inbound values. It is purely structural: policy (host-only, phase
// constraints) lives in the session/game packages.
package validation

import (
	"html"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	apperr "flagrooms/errors"
	"flagrooms/models"
)

var structValidate = validator.New()

var (
	usernamePattern = regexp.MustCompile(`^[\p{L}\p{N} \-_.]+$`)
	inviteCodePattern = regexp.MustCompile(`^[A-Z0-9]{6}$`)
	whitespaceRun    = regexp.MustCompile(`\s+`)
	answerStrip      = regexp.MustCompile(`[<>'"&]`)
)

var reservedUsernames = map[string]bool{
	"admin":     true,
	"moderator": true,
	"bot":       true,
	"system":    true,
	"null":      true,
	"undefined": true,
}

// Username sanitizes and validates a candidate username, returning the
// sanitized form on success.
func Username(raw string) (string, *apperr.AppError) {
	s := sanitize(raw)
	if n := utf8.RuneCountInString(s); n < 2 || n > 30 {
		return "", apperr.New(apperr.ValidationError, "username must be 2-30 characters")
	}
	if !usernamePattern.MatchString(s) {
		return "", apperr.New(apperr.ValidationError, "username contains invalid characters")
	}
	if reservedUsernames[strings.ToLower(s)] {
		return "", apperr.New(apperr.ValidationError, "username is reserved")
	}
	return s, nil
}

// InviteCode validates a 6-char uppercase alphanumeric invite code.
func InviteCode(raw string) (string, *apperr.AppError) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if !inviteCodePattern.MatchString(s) {
		return "", apperr.New(apperr.ValidationError, "invite code must be 6 uppercase alphanumerics")
	}
	return s, nil
}

// Answer sanitizes and validates a submitted answer string.
func Answer(raw string) (string, *apperr.AppError) {
	s := answerStrip.ReplaceAllString(raw, "")
	s = whitespaceRun.ReplaceAllString(strings.TrimSpace(s), " ")
	if len(s) > 100 {
		s = s[:100]
	}
	if len(s) < 1 {
		return "", apperr.New(apperr.ValidationError, "answer must not be empty")
	}
	return s, nil
}

// RoomSettings validates a complete settings value via struct tags
// (enums/ranges declared on models.RoomSettings). Every field is
// required, so a value with a zero-valued field fails.
func RoomSettings(s *models.RoomSettings) *apperr.AppError {
	if err := structValidate.Struct(s); err != nil {
		return apperr.New(apperr.ValidationError, "invalid room settings: "+err.Error())
	}
	return nil
}

// sanitize trims, collapses whitespace, and strips HTML from raw text.
func sanitize(raw string) string {
	s := html.UnescapeString(raw)
	s = stripHTML(s)
	s = whitespaceRun.ReplaceAllString(strings.TrimSpace(s), " ")
	return s
}

var tagPattern = regexp.MustCompile(`<[^>]*>`)

func stripHTML(s string) string {
	return tagPattern.ReplaceAllString(s, "")
}

// Package errors defines the typed application error carried through
// HTTP and WebSocket handlers alike.
package errors

import (
	"fmt"
	"net/http"
	"time"
)

// Code is one of the error kinds an AppError can carry.
type Code string

const (
	ValidationError        Code = "VALIDATION_ERROR"
	AuthenticationError    Code = "AUTHENTICATION_ERROR"
	AuthorizationError     Code = "AUTHORIZATION_ERROR"
	NotFound               Code = "NOT_FOUND"
	RateLimitExceeded      Code = "RATE_LIMIT_EXCEEDED"
	InvalidInput           Code = "INVALID_INPUT"
	InternalError          Code = "INTERNAL_ERROR"
	WebsocketMessageError  Code = "WEBSOCKET_MESSAGE_ERROR"
	RoomNotFound           Code = "ROOM_NOT_FOUND"
	RoomFull               Code = "ROOM_FULL"
	GameNotActive          Code = "GAME_NOT_ACTIVE"
	InvalidGameState       Code = "INVALID_GAME_STATE"
	UserNotFound           Code = "USER_NOT_FOUND"
	PermissionDenied       Code = "PERMISSION_DENIED"
	UserAlreadyInRoom      Code = "USER_ALREADY_IN_ROOM"
	UsernameTaken          Code = "USERNAME_TAKEN"
	KickedFromRoom         Code = "KICKED_FROM_ROOM"
)

// AppError is the typed error propagated from stores/services up to the
// HTTP and session-router boundaries, where it is translated into the
// outbound error envelope shape.
type AppError struct {
	Code    Code
	Message string
	Details map[string]interface{}
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// New builds an AppError with no extra details.
func New(code Code, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// WithDetails attaches structured details (e.g. retryAfter) to an error.
func WithDetails(code Code, message string, details map[string]interface{}) *AppError {
	return &AppError{Code: code, Message: message, Details: details}
}

// HTTPStatus maps an error kind to the HTTP status code a REST handler
// should answer with.
func (e *AppError) HTTPStatus() int {
	switch e.Code {
	case ValidationError, InvalidInput:
		return http.StatusBadRequest
	case AuthenticationError:
		return http.StatusUnauthorized
	case AuthorizationError, PermissionDenied, KickedFromRoom:
		return http.StatusForbidden
	case NotFound, RoomNotFound, UserNotFound:
		return http.StatusNotFound
	case RateLimitExceeded:
		return http.StatusTooManyRequests
	case RoomFull, UserAlreadyInRoom, UsernameTaken, GameNotActive, InvalidGameState:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// As extracts an *AppError from err, falling back to a wrapped
// INTERNAL_ERROR for anything the caller didn't construct as one.
func As(err error) *AppError {
	if err == nil {
		return nil
	}
	if ae, ok := err.(*AppError); ok {
		return ae
	}
	return New(InternalError, err.Error())
}

// Envelope builds the outbound HTTP error body: {error:{code, message,
// timestamp, requestId?, details?}}. requestId is omitted when empty,
// since there's no request-tracing middleware to populate it yet.
func Envelope(ae *AppError, requestID string) map[string]interface{} {
	body := map[string]interface{}{
		"code":      ae.Code,
		"message":   ae.Message,
		"timestamp": time.Now().UnixMilli(),
	}
	if requestID != "" {
		body["requestId"] = requestID
	}
	if len(ae.Details) > 0 {
		body["details"] = ae.Details
	}
	return map[string]interface{}{"error": body}
}

package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Error represents an application error carrying the HTTP status it maps to.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel of the same kind, so
// errors.Is(NotFound("order not found"), ErrNotFound) holds.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || !isSentinel(t) {
		return false
	}
	return t.Code == e.Code
}

// JSON returns the error as a JSON string
func (e *Error) JSON() string {
	b, _ := json.Marshal(e)
	return string(b)
}

// New creates a new Error
func New(code int, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Kind sentinels. Compare with errors.Is, never mutate.
var (
	ErrValidation   = New(http.StatusBadRequest, "Validation error", nil)
	ErrUnauthorized = New(http.StatusUnauthorized, "Unauthorized", nil)
	ErrForbidden    = New(http.StatusForbidden, "Forbidden", nil)
	ErrNotFound     = New(http.StatusNotFound, "Not found", nil)
	ErrConflict     = New(http.StatusConflict, "Conflict", nil)
	ErrStorage      = New(http.StatusBadGateway, "Storage error", nil)
	ErrTransport    = New(http.StatusBadGateway, "Transport error", nil)
	ErrInternal     = New(http.StatusInternalServerError, "Internal server error", nil)
)

// isSentinel reports whether e is one of the kind sentinels. Storage and
// transport share 502, so either sentinel matches both kinds.
func isSentinel(e *Error) bool {
	switch e {
	case ErrValidation, ErrUnauthorized, ErrForbidden, ErrNotFound,
		ErrConflict, ErrStorage, ErrTransport, ErrInternal:
		return true
	}
	return false
}

// Validation wraps bad input detected before persistence.
func Validation(message string) *Error {
	return New(http.StatusBadRequest, message, nil)
}

// Unauthorized reports a missing, invalid or expired credential.
func Unauthorized(message string) *Error {
	return New(http.StatusUnauthorized, message, nil)
}

// Forbidden reports a valid credential with an insufficient role.
func Forbidden(message string) *Error {
	return New(http.StatusForbidden, message, nil)
}

func NotFound(message string) *Error {
	return New(http.StatusNotFound, message, nil)
}

func Conflict(message string) *Error {
	return New(http.StatusConflict, message, nil)
}

// Storage wraps a failure of the relational store or blob storage.
func Storage(message string, err error) *Error {
	return New(http.StatusBadGateway, message, err)
}

// Transport wraps a failure of the message queue or another network peer.
func Transport(message string, err error) *Error {
	return New(http.StatusBadGateway, message, err)
}

// FromStore translates a GORM error into the taxonomy. entity names the
// resource in the message ("order", "product").
func FromStore(err error, entity string) error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if stderrors.As(err, &appErr) {
		return appErr
	}
	switch {
	case stderrors.Is(err, gorm.ErrRecordNotFound):
		return NotFound(entity + " not found")
	case stderrors.Is(err, gorm.ErrDuplicatedKey):
		return New(http.StatusConflict, entity+" already exists", err)
	case stderrors.Is(err, gorm.ErrForeignKeyViolated):
		return New(http.StatusNotFound, "referenced record for "+entity+" not found", err)
	}
	return Storage("failed to access "+entity, err)
}

// StatusOf returns the HTTP status for err, 500 for unknown errors.
func StatusOf(err error) int {
	var appErr *Error
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return http.StatusInternalServerError
}

// Respond writes err as {"error": message} with its mapped status. Wrapped
// causes are never exposed to the client.
func Respond(c *gin.Context, err error) {
	var appErr *Error
	if !stderrors.As(err, &appErr) {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": ErrInternal.Message})
		return
	}
	c.AbortWithStatusJSON(appErr.Code, gin.H{"error": appErr.Message})
}

// ErrorMiddleware renders the last error attached with c.Error.
func ErrorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 && !c.Writer.Written() {
			Respond(c, c.Errors.Last().Err)
		}
	}
}

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Arshmittal/Ai-social-media/api"
	"github.com/Arshmittal/Ai-social-media/internal/cache"
	"github.com/Arshmittal/Ai-social-media/store"
	"github.com/Arshmittal/Ai-social-media/types"
)

// Response is the canonical envelope every JSON endpoint writes.
type Response = api.Response

// ErrorInfo is the wire form of an API error.
type ErrorInfo = api.ErrorInfo

// Cache is the response cache the handlers share. A nil Cache disables
// caching entirely; a failing cache degrades to direct reads.
type Cache interface {
	GetJSON(ctx context.Context, key string, dest any) error
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

var _ Cache = (*cache.Manager)(nil)

// WriteJSON writes data as JSON with the given status code.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)

	// Headers are already out; an encode failure has nowhere to go.
	_ = json.NewEncoder(w).Encode(data)
}

// WriteSuccess wraps data in a success envelope and writes it with
// status 200.
func WriteSuccess(w http.ResponseWriter, r *http.Request, data any) {
	WriteJSON(w, http.StatusOK, Response{
		Success:   true,
		Data:      data,
		Timestamp: time.Now().UTC(),
		RequestID: requestIDFrom(r),
	})
}

// WriteError writes a typed error with its mapped HTTP status.
func WriteError(w http.ResponseWriter, r *http.Request, err *types.Error, logger *zap.Logger) {
	status := err.HTTPStatus
	if status == 0 {
		status = statusForCode(err.Code)
	}

	if logger != nil {
		logger.Error("api error",
			zap.String("code", string(err.Code)),
			zap.String("message", err.Message),
			zap.Int("status", status),
			zap.Bool("retryable", err.Retryable),
			zap.Error(err.Cause),
		)
	}

	WriteJSON(w, status, Response{
		Success: false,
		Error: &ErrorInfo{
			Code:      string(err.Code),
			Message:   err.Message,
			Details:   err.Details,
			Retryable: err.Retryable,
		},
		Timestamp: time.Now().UTC(),
		RequestID: requestIDFrom(r),
	})
}

// WriteErrorMessage builds a typed error from code and message and
// writes it with an explicit status. Used by middleware that has no
// richer error to hand.
func WriteErrorMessage(w http.ResponseWriter, r *http.Request, status int, code types.ErrorCode, message string, logger *zap.Logger) {
	WriteError(w, r, types.NewError(code, message).WithHTTPStatus(status), logger)
}

func statusForCode(code types.ErrorCode) int {
	switch code {
	case types.ErrInvalidRequest:
		return http.StatusBadRequest
	case types.ErrNotFound:
		return http.StatusNotFound
	case types.ErrAlreadyExists:
		return http.StatusConflict
	case types.ErrUnauthorized:
		return http.StatusUnauthorized
	case types.ErrForbidden:
		return http.StatusForbidden
	case types.ErrRateLimited:
		return http.StatusTooManyRequests
	case types.ErrTimeout:
		return http.StatusGatewayTimeout
	case types.ErrUpstreamError:
		return http.StatusBadGateway
	case types.ErrUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// storeError converts store sentinel errors into typed API errors so
// every endpoint reports them the same way: malformed IDs are 400,
// missing documents 404, name collisions 409, anything else 500.
func storeError(err error) *types.Error {
	switch {
	case errors.Is(err, store.ErrInvalidID):
		return types.NewError(types.ErrInvalidRequest, err.Error()).WithCause(err)
	case errors.Is(err, store.ErrNotFound):
		return types.NewError(types.ErrNotFound, err.Error()).WithCause(err)
	case errors.Is(err, store.ErrDuplicateName):
		return types.NewError(types.ErrAlreadyExists, err.Error()).WithCause(err)
	default:
		return types.NewError(types.ErrInternal, "storage operation failed").WithCause(err)
	}
}

// DecodeJSONBody decodes a JSON request body into dst, rejecting
// unknown fields. On failure the error response has already been
// written; callers only need to return.
func DecodeJSONBody(w http.ResponseWriter, r *http.Request, dst any, logger *zap.Logger) error {
	if r.Body == nil || r.Body == http.NoBody {
		err := types.NewError(types.ErrInvalidRequest, "request body is empty")
		WriteError(w, r, err, logger)
		return err
	}

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			apiErr := types.NewError(types.ErrInvalidRequest, "request body too large").
				WithCause(err).
				WithHTTPStatus(http.StatusRequestEntityTooLarge)
			WriteError(w, r, apiErr, logger)
			return apiErr
		}
		apiErr := types.NewError(types.ErrInvalidRequest, "invalid JSON body").WithCause(err)
		WriteError(w, r, apiErr, logger)
		return apiErr
	}
	return nil
}

// ValidateContentType requires an application/json body. Charset
// parameters are tolerated.
func ValidateContentType(w http.ResponseWriter, r *http.Request, logger *zap.Logger) bool {
	mediaType, _, _ := strings.Cut(r.Header.Get("Content-Type"), ";")
	if strings.TrimSpace(mediaType) != "application/json" {
		err := types.NewError(types.ErrInvalidRequest, "Content-Type must be application/json")
		WriteError(w, r, err, logger)
		return false
	}
	return true
}

func requestIDFrom(r *http.Request) string {
	id, _ := types.RequestID(r.Context())
	return id
}

// ResponseWriter wraps http.ResponseWriter so middleware can observe
// the status code after the handler ran.
type ResponseWriter struct {
	http.ResponseWriter
	StatusCode int
	Written    bool
}

// NewResponseWriter wraps w with a 200 default status.
func NewResponseWriter(w http.ResponseWriter) *ResponseWriter {
	return &ResponseWriter{
		ResponseWriter: w,
		StatusCode:     http.StatusOK,
	}
}

// WriteHeader records the first status code written.
func (rw *ResponseWriter) WriteHeader(code int) {
	if !rw.Written {
		rw.StatusCode = code
		rw.Written = true
		rw.ResponseWriter.WriteHeader(code)
	}
}

func (rw *ResponseWriter) Write(b []byte) (int, error) {
	if !rw.Written {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}

// internal/handlers/response.go
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/ammerola/logistics-be/internal/core/domain"
)

const (
	// HeaderUserID and HeaderUserRole are set by the upstream auth gateway.
	HeaderUserID   = "X-User-ID"
	HeaderUserRole = "X-User-Role"

	maxBodyBytes = 1 << 20
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error  string            `json:"error"`
	Code   string            `json:"code"`
	Fields map[string]string `json:"fields,omitempty"`
	Line   *ErrorLine        `json:"line,omitempty"`
}

// ErrorLine identifies the rejected line of a batch return.
type ErrorLine struct {
	Index    int    `json:"index"`
	Item     string `json:"item"`
	Quantity int    `json:"quantity"`
}

func respondJSON(w http.ResponseWriter, logger *slog.Logger, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode JSON response",
			slog.String("error", err.Error()))
	}
}

func respondError(w http.ResponseWriter, logger *slog.Logger, status int, code, message string) {
	respondJSON(w, logger, status, ErrorResponse{Error: message, Code: code})
}

// respondDomainError maps a service error onto its HTTP status and wire code.
func respondDomainError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	kind := domain.KindOf(err)
	body := ErrorResponse{Error: err.Error(), Code: domain.Code(err)}

	var lineErr *domain.ReturnLineError
	if errors.As(err, &lineErr) {
		body.Line = &ErrorLine{Index: lineErr.Index, Item: lineErr.Item, Quantity: lineErr.Quantity}
	}

	status := statusForKind(kind)
	if status >= http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), "request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("code", body.Code),
			slog.String("error", err.Error()))
		if kind == domain.KindInternal {
			body.Error = "internal server error"
		}
	}

	respondJSON(w, logger, status, body)
}

func statusForKind(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindValidation:
		return http.StatusBadRequest
	case domain.KindForbidden:
		return http.StatusForbidden
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// actorFromRequest reads the caller identity forwarded by the auth gateway.
func actorFromRequest(r *http.Request) (domain.Actor, error) {
	actor := domain.Actor{
		ID:   strings.TrimSpace(r.Header.Get(HeaderUserID)),
		Role: domain.Role(strings.ToLower(strings.TrimSpace(r.Header.Get(HeaderUserRole)))),
	}
	if actor.Role == "" {
		actor.Role = domain.RoleRequester
	}
	if err := actor.Validate(); err != nil {
		return domain.Actor{}, err
	}
	return actor, nil
}

// decodeBody decodes a JSON body into dst and runs its validate tags.
// The returned error always wraps domain.ErrValidation.
func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) (map[string]string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, domain.Validationf("request body is required")
		}
		return nil, domain.Validationf("invalid request body: %v", err)
	}

	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return nil, fmt.Errorf("failed to validate request body: %w", err)
		}
		fields := make(map[string]string, len(verrs))
		names := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields[fe.Namespace()] = fe.Tag()
			names = append(names, fe.Namespace())
		}
		return fields, domain.Validationf("invalid fields: %s", strings.Join(names, ", "))
	}
	return nil, nil
}

// respondDecodeError writes the 400 produced by decodeBody.
func respondDecodeError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, fields map[string]string, err error) {
	if domain.KindOf(err) != domain.KindValidation {
		respondDomainError(w, r, logger, err)
		return
	}
	respondJSON(w, logger, http.StatusBadRequest, ErrorResponse{
		Error:  err.Error(),
		Code:   domain.Code(err),
		Fields: fields,
	})
}

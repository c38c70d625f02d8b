// Package handler exposes the marketplace core over a JSON HTTP API.
package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/sahanr/harvestlink/internal/domain"
	"github.com/sahanr/harvestlink/internal/middleware"
	"github.com/sahanr/harvestlink/internal/service"
)

// maxBodyBytes caps request bodies; cart payloads are small.
const maxBodyBytes = 1 << 20

// Handler carries the services and helpers every route needs.
type Handler struct {
	checkout      service.CheckoutService
	orders        service.OrderService
	settlement    service.SettlementService
	reviews       service.ReviewService
	catalog       service.CatalogService
	notifications service.NotificationService
	validate      *validator.Validate
	logger        *slog.Logger
}

// New creates the API handler.
func New(
	checkout service.CheckoutService,
	orders service.OrderService,
	settlement service.SettlementService,
	reviews service.ReviewService,
	catalog service.CatalogService,
	notifications service.NotificationService,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		checkout:      checkout,
		orders:        orders,
		settlement:    settlement,
		reviews:       reviews,
		catalog:       catalog,
		notifications: notifications,
		validate:      validator.New(validator.WithRequiredStructEnabled()),
		logger:        logger,
	}
}

// decodeJSON decodes and validates a JSON request body into dst.
func (h *Handler) decodeJSON(r *http.Request, dst any) error {
	const op = "handler.decode"

	body := http.MaxBytesReader(nil, r.Body, maxBodyBytes)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return domain.Invalid(op, "request body is empty")
		}
		return domain.WrapError(err, domain.EINVALID, op, "malformed JSON request body")
	}

	if err := h.validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make(map[string]string, len(verrs))
			for _, fe := range verrs {
				fields[fe.Field()] = "failed " + fe.Tag() + " validation"
			}
			return &domain.ValidationError{Op: op, Fields: fields}
		}
		return domain.WrapError(err, domain.EINVALID, op, "invalid request body")
	}
	return nil
}

// respondJSON writes a JSON response with the given status.
func (h *Handler) respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to encode response", slog.String("error", err.Error()))
	}
}

// ErrorResponse writes a structured JSON error and logs it with the request
// id when one is present.
func (h *Handler) ErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	if fields := domain.GetValidationFields(err); fields != nil {
		h.respondJSON(w, http.StatusBadRequest, map[string]any{
			"error": map[string]any{
				"code":    domain.EINVALID,
				"message": "Validation failed",
				"fields":  fields,
			},
		})
		return
	}

	code := domain.ErrorCode(err)
	message := domain.ErrorMessage(err)
	status := ErrorCodeToHTTPStatus(code)

	attrs := []any{
		"error", err.Error(),
		"code", code,
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
	}
	if op := domain.ErrorOp(err); op != "" {
		attrs = append(attrs, "op", op)
	}
	if reqID := middleware.GetRequestID(r.Context()); reqID != "" {
		attrs = append(attrs, "request_id", reqID)
	}

	if status >= 500 {
		h.logger.Error("request failed", attrs...)
	} else {
		h.logger.Info("request failed", attrs...)
	}

	h.respondJSON(w, status, map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}

// ErrorCodeToHTTPStatus maps domain error codes to HTTP status codes.
func ErrorCodeToHTTPStatus(code string) int {
	switch code {
	case domain.EINVALID:
		return http.StatusBadRequest // 400
	case domain.EUNAUTHORIZED:
		return http.StatusUnauthorized // 401
	case domain.EPAYMENT:
		return http.StatusPaymentRequired // 402
	case domain.EFORBIDDEN:
		return http.StatusForbidden // 403
	case domain.ENOTFOUND:
		return http.StatusNotFound // 404
	case domain.ECONFLICT:
		return http.StatusConflict // 409
	case domain.EUNAVAILABLE:
		return http.StatusBadGateway // 502
	case domain.EINTERNAL:
		return http.StatusInternalServerError // 500
	default:
		return http.StatusInternalServerError // 500
	}
}

package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/mrops-br/marketplace-ops-api/internal/domain"
	"github.com/mrops-br/marketplace-ops-api/internal/infrastructure/http/response"
)

const maxBodyBytes = 1 << 20

// NewValidator builds the request validator. Field errors are reported
// under their JSON names.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// binder decodes and validates request bodies
type binder struct {
	validate *validator.Validate
	logger   *slog.Logger
}

// bind decodes the JSON body of r into dst and validates it
func (b binder) bind(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		b.logger.WarnContext(r.Context(), "Failed to decode request body",
			slog.String("error", err.Error()),
		)
		return domain.NewValidationError("body", "must be valid JSON: "+err.Error())
	}

	if err := b.validate.Struct(dst); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return fieldError(fieldErrs[0])
		}
		return domain.NewValidationError("body", err.Error())
	}
	return nil
}

func fieldError(fe validator.FieldError) error {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return domain.NewValidationError(field, "is required")
	case "oneof":
		return domain.NewValidationError(field, "must be one of: "+strings.ReplaceAll(fe.Param(), " ", ", "))
	case "url":
		return domain.NewValidationError(field, "must be a valid URL")
	default:
		return domain.NewValidationError(field, fmt.Sprintf("failed %s validation", fe.Tag()))
	}
}

// fail writes err to the client, logging unexpected failures
func (b binder) fail(w http.ResponseWriter, r *http.Request, err error) {
	if response.StatusOf(err) == http.StatusInternalServerError {
		b.logger.ErrorContext(r.Context(), "Request failed",
			slog.String("error", err.Error()),
		)
	}
	response.FromError(w, err)
}

// optionalQuery returns the query parameter or nil when absent or empty
func optionalQuery(r *http.Request, key string) *string {
	if v := strings.TrimSpace(r.URL.Query().Get(key)); v != "" {
		return &v
	}
	return nil
}

// pagination reads page and page_size from the query string
func pagination(r *http.Request) (domain.Pagination, error) {
	var page domain.Pagination
	for key, dst := range map[string]*int{"page": &page.Page, "page_size": &page.PageSize} {
		raw := r.URL.Query().Get(key)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return page, domain.NewValidationError(key, "must be a positive integer")
		}
		*dst = n
	}
	return page.Normalize(), nil
}

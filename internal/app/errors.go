package app

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"curriculum/api/internal/artifacts"
	"curriculum/api/internal/curriculum"
	"curriculum/api/internal/export"
	"curriculum/api/internal/generator"
	"curriculum/api/internal/gitrepo"
	"curriculum/api/internal/store"
)

type DomainError struct {
	Status  int
	Code    string
	Message string
	Details any
}

func (e *DomainError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func domainError(status int, code, message string, details any) *DomainError {
	return &DomainError{
		Status:  status,
		Code:    code,
		Message: message,
		Details: details,
	}
}

func validationError(message string, details any) *DomainError {
	return domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", message, details)
}

// structureError reports an invalid client-supplied tree as a 422 naming the
// offending node.
func structureError(err error) error {
	var invalid *curriculum.TreeError
	if !errors.As(err, &invalid) {
		return err
	}
	details := map[string]string{
		"node":   invalid.Location,
		"field":  invalid.Field,
		"reason": invalid.Reason,
	}
	if invalid.ID != "" {
		details["id"] = invalid.ID
	}
	return validationError("Invalid structure: "+invalid.Error(), details)
}

func mapError(err error) (status int, code, message string, details any) {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Status, domainErr.Code, domainErr.Message, domainErr.Details
	}
	var invalid validator.ValidationErrors
	if errors.As(err, &invalid) {
		return http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Validation failed", fieldErrors(invalid)
	}
	switch {
	case errors.Is(err, sql.ErrNoRows), errors.Is(err, gitrepo.ErrNoHistory), errors.Is(err, gitrepo.ErrUnknownCommit):
		return http.StatusNotFound, "NOT_FOUND", "Not found", nil
	case errors.Is(err, store.ErrVersionConflict):
		return http.StatusConflict, "VERSION_CONFLICT", "Project was saved elsewhere; reload before saving", nil
	case errors.Is(err, store.ErrProjectExists):
		return http.StatusConflict, "PROJECT_EXISTS", "Project already exists", nil
	case errors.Is(err, generator.ErrDisabled):
		return http.StatusServiceUnavailable, "GENERATOR_UNAVAILABLE", "Generator not configured", nil
	case errors.Is(err, artifacts.ErrDisabled):
		return http.StatusServiceUnavailable, "ARTIFACTS_UNAVAILABLE", "Artifact storage not configured", nil
	case errors.Is(err, export.ErrPDFDependencyMissing), errors.Is(err, export.ErrDOCXDependencyMissing):
		return http.StatusServiceUnavailable, "EXPORT_UNAVAILABLE", "Export renderer not installed", nil
	case errors.Is(err, export.ErrUnsupportedFormat):
		return http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Unsupported export format", nil
	}
	return http.StatusInternalServerError, "SERVER_ERROR", "Server error", nil
}

// fieldErrors maps each failing field (by JSON name) to its failed tag.
func fieldErrors(errs validator.ValidationErrors) map[string]string {
	out := make(map[string]string, len(errs))
	for _, fe := range errs {
		out[jsonPath(fe.Namespace())] = fe.Tag()
	}
	return out
}

// jsonPath drops the root struct name from a validator namespace.
func jsonPath(namespace string) string {
	if i := strings.IndexByte(namespace, '.'); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

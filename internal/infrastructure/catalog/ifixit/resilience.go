package ifixit

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/kmorita/repair-guide-engine/internal/core/domain"
	"github.com/kmorita/repair-guide-engine/internal/infrastructure/resilience"
)

type HTTPStatusError struct {
	Operation  string
	StatusCode int
	Status     string
	Body       string
}

func (e *HTTPStatusError) Error() string {
	if e == nil {
		return "catalog status error"
	}
	if strings.TrimSpace(e.Body) == "" {
		return fmt.Sprintf("catalog %s status: %s", e.Operation, e.Status)
	}
	return fmt.Sprintf("catalog %s status: %s: %s", e.Operation, e.Status, strings.TrimSpace(e.Body))
}

func classifyCatalogError(err error) resilience.ErrorClassification {
	if err == nil {
		return resilience.ErrorClassification{}
	}
	if errors.Is(err, context.Canceled) {
		return resilience.ErrorClassification{Retryable: false, RecordFailure: false}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return resilience.ErrorClassification{Retryable: false, RecordFailure: true}
	}
	if resilience.IsCircuitOpen(err) {
		return resilience.ErrorClassification{Retryable: false, RecordFailure: true}
	}

	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		if isServerSideStatus(statusErr.StatusCode) {
			return resilience.ErrorClassification{Retryable: false, RecordFailure: true}
		}
		return resilience.ErrorClassification{Retryable: false, RecordFailure: false}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return resilience.ErrorClassification{Retryable: false, RecordFailure: true}
	}

	return resilience.ErrorClassification{Retryable: false, RecordFailure: true}
}

// mapFetchError folds transport failures into the closed set callers
// branch on. Anything already carrying a domain kind passes through.
func mapFetchError(operation string, err error) error {
	if err == nil {
		return nil
	}
	for _, kind := range []error{domain.ErrSourceTimeout, domain.ErrSourceUnreachable, domain.ErrMalformedData, domain.ErrGuideNotFound} {
		if domain.IsKind(err, kind) {
			return err
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return domain.WrapError(domain.ErrSourceTimeout, operation, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return domain.WrapError(domain.ErrSourceTimeout, operation, err)
		}
		return domain.WrapError(domain.ErrSourceUnreachable, operation, err)
	}
	if resilience.IsCircuitOpen(err) {
		return domain.WrapError(domain.ErrSourceUnreachable, operation, err)
	}

	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		switch {
		case statusErr.StatusCode == http.StatusRequestTimeout || statusErr.StatusCode == http.StatusGatewayTimeout:
			return domain.WrapError(domain.ErrSourceTimeout, operation, err)
		case statusErr.StatusCode >= 500 || statusErr.StatusCode == http.StatusTooManyRequests:
			return domain.WrapError(domain.ErrSourceUnreachable, operation, err)
		default:
			return domain.WrapError(domain.ErrMalformedData, operation, err)
		}
	}

	if strings.Contains(err.Error(), "decode") || strings.Contains(err.Error(), "unmarshal") {
		return domain.WrapError(domain.ErrMalformedData, operation, err)
	}
	return domain.WrapError(domain.ErrSourceUnreachable, operation, err)
}

func isServerSideStatus(statusCode int) bool {
	return statusCode >= 500 || statusCode == http.StatusTooManyRequests
}

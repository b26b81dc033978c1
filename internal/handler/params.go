package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/oapi-codegen/runtime"

	"github.com/hotelmate/backend/internal/domain"
	"github.com/hotelmate/backend/internal/middleware"
)

// queryParam pairs a query string name with the pointer it binds into.
type queryParam struct {
	name string
	dest any
}

// bindQuery binds optional form-style query parameters. Repeated keys
// (?amenities=wifi&amenities=pool) bind into slices.
func bindQuery(r *http.Request, params ...queryParam) error {
	q := r.URL.Query()
	for _, p := range params {
		if err := runtime.BindQueryParameter("form", true, false, p.name, q, p.dest); err != nil {
			return fmt.Errorf("%w: invalid format for parameter %s", domain.ErrValidation, p.name)
		}
	}
	return nil
}

// pathUUID binds the {id} path parameter.
func pathUUID(r *http.Request) (uuid.UUID, error) {
	var id uuid.UUID
	err := runtime.BindStyledParameterWithOptions("simple", "id", chi.URLParam(r, "id"), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid format for parameter id", domain.ErrValidation)
	}
	return id, nil
}

// decodeBody decodes a required JSON request body into dst.
func decodeBody(r *http.Request, dst any) error {
	err := json.NewDecoder(r.Body).Decode(dst)
	var tooLarge *http.MaxBytesError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &tooLarge):
		return err
	case errors.Is(err, io.EOF):
		return fmt.Errorf("%w: request body is required", domain.ErrValidation)
	default:
		return fmt.Errorf("%w: invalid request body: %w", domain.ErrValidation, err)
	}
}

// callerOf returns the authenticated caller, writing 401 when there is none.
func callerOf(w http.ResponseWriter, r *http.Request) (domain.Caller, bool) {
	c, ok := middleware.CallerFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
	}
	return c, ok
}

func deref[T any](p *T) T {
	if p == nil {
		var zero T
		return zero
	}
	return *p
}

package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/itinerary-planner/backend/internal/domain"
)

// pathUUID binds the chi path parameter name as a UUID. On failure it writes
// a 400 and returns false.
func pathUUID(w http.ResponseWriter, r *http.Request, name string) (openapi_types.UUID, bool) {
	var id openapi_types.UUID
	err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		badRequest(w, fmt.Sprintf("invalid format for parameter %s", name))
		return id, false
	}
	return id, true
}

// pathSegment parses the {segment} path parameter. On failure it writes a
// 422 and returns false.
func pathSegment(w http.ResponseWriter, r *http.Request) (domain.Segment, bool) {
	seg, err := domain.ParseSegment(chi.URLParam(r, "segment"))
	if err != nil {
		validationFailed(w, err)
		return "", false
	}
	return seg, true
}

// queryInt binds an optional integer query parameter. A missing parameter
// leaves the result nil. On failure it writes a 400 and returns false.
func queryInt(w http.ResponseWriter, r *http.Request, name string) (*int, bool) {
	var v *int
	if err := runtime.BindQueryParameter("form", true, false, name, r.URL.Query(), &v); err != nil {
		badRequest(w, fmt.Sprintf("invalid format for parameter %s", name))
		return nil, false
	}
	return v, true
}

// decodeBody decodes the JSON request body into dst. On failure it writes
// 413 for oversized bodies or 400 otherwise, and returns false.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if r.Body == nil || r.Body == http.NoBody {
		badRequest(w, "request body is required")
		return false
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request_too_large", "request body too large")
			return false
		}
		badRequest(w, "malformed JSON body")
		return false
	}
	return true
}

package endpoints

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/jackzampolin/folio/internal/api"
	"github.com/jackzampolin/folio/internal/books"
	"github.com/jackzampolin/folio/internal/engine"
	"github.com/jackzampolin/folio/internal/regions"
	"github.com/jackzampolin/folio/internal/segmentation"
	"github.com/jackzampolin/folio/internal/settings"
	"github.com/jackzampolin/folio/internal/store"
	"github.com/jackzampolin/folio/internal/translate"
)

// All returns all endpoint instances.
func All() []api.Endpoint {
	return []api.Endpoint{
		// Health endpoints
		&HealthEndpoint{},
		&ReadyEndpoint{},
		&StatusEndpoint{},

		// Segmentation endpoints
		&SegmentEndpoint{},
		&EmptySegmentEndpoint{},
		&SegmentedPagesEndpoint{},
		&BookSettingsEndpoint{},
		&TranslateEndpoint{},

		// Book endpoints
		&ListBooksEndpoint{},
		&GetBookEndpoint{},
		&SaveSettingsEndpoint{},
		&DeleteAnnotationEndpoint{},

		&MetricsEndpoint{},

		// Swagger/OpenAPI endpoints
		&SwaggerEndpoint{},
		&SwaggerUIEndpoint{},
	}
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// ErrorResponse is a standard error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

// writeErr writes err with the status its sentinel maps to.
func writeErr(w http.ResponseWriter, err error) {
	writeError(w, statusFor(err), err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, books.ErrBookNotFound),
		errors.Is(err, books.ErrPageNotFound),
		errors.Is(err, settings.ErrUnknownPage),
		errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, settings.ErrInvalidSettings),
		errors.Is(err, regions.ErrUnknownRegionType),
		errors.Is(err, regions.ErrUnknownPriority),
		errors.Is(err, segmentation.ErrUnknownImageSegType),
		errors.Is(err, translate.ErrCoordinateOutOfRange),
		errors.Is(err, translate.ErrMalformedPosition),
		errors.Is(err, translate.ErrInvalidPageSize):
		return http.StatusBadRequest
	case errors.Is(err, engine.ErrEngineUnavailable),
		errors.Is(err, engine.ErrEngineRejected):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// intQuery reads a required integer query parameter.
func intQuery(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, fmt.Errorf("%s is required", name)
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", name)
	}
	return v, nil
}

// intPath reads an integer path value.
func intPath(r *http.Request, name string) (int, error) {
	v, err := strconv.Atoi(r.PathValue(name))
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", name)
	}
	return v, nil
}

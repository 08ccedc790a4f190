package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"ventas/internal/core"
)

// Messages shown to the user for warning conditions.
const (
	msgNoData          = "No hay datos para el mes o rango seleccionado"
	msgIncompleteRange = "Selecciona un rango de dos fechas"
	msgInvalidFilter   = "Filtro no válido"
	msgNotFound        = "Página no encontrada"
	msgRenderFailed    = "No se pudo generar el dashboard"
)

// sanitizeInput removes potentially dangerous characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	result := strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
	return result
}

// isInvalidInput reports whether err comes from a malformed filter.
func isInvalidInput(err error) bool {
	return errors.Is(err, core.ErrInvalidMonth) ||
		errors.Is(err, core.ErrInvalidDate) ||
		errors.Is(err, core.ErrInvalidMode)
}

// statusFor maps a dashboard error to an HTTP status code.
func statusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case isInvalidInput(err):
		return http.StatusBadRequest
	case core.IsWarning(err):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// warningMessage returns the user-facing text for a warning, or "" when
// err is not one.
func warningMessage(err error) string {
	switch {
	case errors.Is(err, core.ErrIncompleteRange):
		return msgIncompleteRange
	case errors.Is(err, core.ErrNoData):
		return msgNoData
	default:
		return ""
	}
}

// writeJSON encodes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

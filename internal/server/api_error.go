package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/Zachdehooge/energy-dashboard/internal/mapsync"
	"github.com/Zachdehooge/energy-dashboard/internal/panel"
	"github.com/Zachdehooge/energy-dashboard/internal/scenario"
)

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func WriteAPIError(w http.ResponseWriter, status int, err APIError) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(err)
}

// writeError maps domain errors onto status codes
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, panel.ErrUnknownPanel), errors.Is(err, mapsync.ErrUnknownMap):
		WriteAPIError(w, http.StatusNotFound, APIError{Code: "not_found", Message: err.Error()})
	case errors.Is(err, scenario.ErrInvalidScenario):
		WriteAPIError(w, http.StatusBadRequest, APIError{Code: "invalid_scenario", Message: err.Error()})
	default:
		log.Printf("[server] %v", err)
		WriteAPIError(w, http.StatusBadGateway, APIError{Code: "upstream", Message: err.Error()})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[server] encode response: %v", err)
	}
}

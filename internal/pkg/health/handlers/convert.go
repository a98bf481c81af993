package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/Vodeneev/betcode/internal/converter"
	"github.com/Vodeneev/betcode/internal/pkg/models"
)

const (
	maxConvertBody = 16 << 10

	msgInvalidBody = "Invalid request body."
	msgRateLimited = "Too many conversion requests, try again shortly."
)

// Converter is the conversion service behind /api/convert.
type Converter interface {
	Convert(ctx context.Context, req models.ConvertRequest) (models.ConvertResult, converter.Outcome)
}

// ConvertHandler serves POST /api/convert.
type ConvertHandler struct {
	svc Converter
}

func NewConvertHandler(svc Converter) *ConvertHandler {
	return &ConvertHandler{svc: svc}
}

// ServeHTTP decodes the request and maps outcomes to status codes: malformed
// bodies and unknown platforms are 422, every other outcome is 200.
func (h *ConvertHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req models.ConvertRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxConvertBody))
	if err := dec.Decode(&req); err != nil {
		slog.Debug("Malformed convert request", "error", err)
		respondJSON(w, http.StatusUnprocessableEntity, models.Failed(msgInvalidBody))
		return
	}

	result, outcome := h.svc.Convert(r.Context(), req)
	status := http.StatusOK
	if outcome == converter.OutcomeUnsupportedPlatform {
		status = http.StatusUnprocessableEntity
	}
	respondJSON(w, status, result)
}

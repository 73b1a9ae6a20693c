package rest

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/davidleathers/dependable-verification-backend/internal/domain/errors"
	"github.com/davidleathers/dependable-verification-backend/internal/domain/verification"
	"github.com/davidleathers/dependable-verification-backend/internal/metrics"
	"github.com/davidleathers/dependable-verification-backend/internal/service/dispatch"
)

const maxBodySize = 1 << 20 // 1MB

// LedgerSizer reports how many attempts the ledger currently holds.
type LedgerSizer interface {
	Size() int
}

// Handler serves the verification API endpoints.
type Handler struct {
	dispatcher dispatch.Service
	ledger     LedgerSizer
	registry   *metrics.Registry
	validator  *validator.Validate
	logger     *slog.Logger
	version    string
}

// NewHandler creates the API handler. ledger and registry may be nil; the
// health payload and gauge updates degrade gracefully without them.
func NewHandler(dispatcher dispatch.Service, ledger LedgerSizer, registry *metrics.Registry, logger *slog.Logger, version string) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		dispatcher: dispatcher,
		ledger:     ledger,
		registry:   registry,
		validator:  validator.New(),
		logger:     logger.With("component", "api"),
		version:    version,
	}
}

// handleVerify runs one verification attempt against the carrier pool.
func (h *Handler) handleVerify(w http.ResponseWriter, r *http.Request) {
	var req VerifyRequest
	if err := h.decodeAndValidate(w, r, &req); err != nil {
		// Unparseable payloads answer in plain text, not the JSON envelope.
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	attempt := verification.NewAttemptRequest(*req.Number, req.Time.Time)
	result, err := h.dispatcher.HandleAttempt(r.Context(), attempt)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	switch result.Status {
	case dispatch.StatusVerified:
		h.writeJSON(w, r, http.StatusOK, VerifyResponse{Token: result.Token})
	case dispatch.StatusNoCarriers:
		h.writeJSON(w, r, http.StatusServiceUnavailable, ErrorBody{Error: "no carriers found"})
	default:
		h.writeJSON(w, r, http.StatusOK, ErrorBody{Error: "verification unsuccessful"})
	}
	RecordVerificationOutcome(result.Status.String())

	if h.registry != nil && h.ledger != nil {
		h.registry.SetLedgerSize(int64(h.ledger.Size()))
	}
}

// handleRank returns every carrier ordered best-first by mean step weight.
func (h *Handler) handleRank(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	ranks, err := h.dispatcher.CarrierRanking(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if h.registry != nil {
		h.registry.RecordRanking(r.Context(), time.Since(start), len(ranks))
	}
	h.writeJSON(w, r, http.StatusOK, rankedList(ranks))
}

// handleHealth reports liveness.
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:  "healthy",
		Version: h.version,
	}
	if h.ledger != nil {
		resp.Attempts = h.ledger.Size()
	}
	h.writeJSON(w, r, http.StatusOK, resp)
}

// decodeAndValidate parses the JSON body into dst and checks the declared
// validation rules.
func (h *Handler) decodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	if err := h.validator.Struct(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.GetStatusCode(err)
	h.logger.ErrorContext(r.Context(), "request failed",
		"error", err,
		"status", status,
		"path", r.URL.Path,
	)
	h.writeJSON(w, r, status, ErrorBody{Error: errors.GetMessage(err)})
}

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pkuhner/bartab/internal/repos/accounts"
	"github.com/pkuhner/bartab/internal/repos/ledger"
	"github.com/pkuhner/bartab/internal/services/history"
	"github.com/pkuhner/bartab/internal/services/transfer"
)

// HandlerProvider wraps the transfer and history services and exposes HTTP
// handlers.
type HandlerProvider struct {
	transfers *transfer.Service
	views     *history.Service
	accounts  accounts.Accounts
}

func NewHandler(transfers *transfer.Service, views *history.Service, acc accounts.Accounts) *HandlerProvider {
	return &HandlerProvider{transfers: transfers, views: views, accounts: acc}
}

// --- Helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func parseAccountIDFromPath(r *http.Request) (uint64, error) {
	idStr := chi.URLParam(r, "accountId")
	if idStr == "" {
		return 0, fmt.Errorf("missing accountId")
	}

	id, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid accountId: %w", err)
	}

	if id == 0 {
		return 0, fmt.Errorf("invalid accountId: must be positive")
	}

	return id, nil
}

// parseAmountMinor converts a decimal string with up to 2 fractional digits
// into minor units.
func parseAmountMinor(s string) (int64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid amount")
	}

	shifted := d.Shift(2)
	if !shifted.IsInteger() {
		return 0, fmt.Errorf("amount supports up to 2 decimals")
	}

	if !d.IsPositive() {
		return 0, fmt.Errorf("amount must be > 0")
	}

	return shifted.IntPart(), nil
}

func formatMinor(minor int64) string {
	return decimal.NewFromInt(minor).Shift(-2).StringFixed(2)
}

func parseDirection(s string) (history.Mode, error) {
	switch s {
	case "out":
		return history.ModeOutgoing, nil
	case "in":
		return history.ModeIncoming, nil
	case "both", "":
		return history.ModeBoth, nil
	default:
		return 0, fmt.Errorf("invalid direction")
	}
}

// --- Handlers ---

// GetBalanceHandler handles GET /account/{accountId}/balance
func (h *HandlerProvider) GetBalanceHandler(w http.ResponseWriter, r *http.Request) {
	accountID, err := parseAccountIDFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid accountId in path")
		return
	}

	bal, err := h.accounts.GetBalance(r.Context(), accountID)
	if err != nil {
		if errors.Is(err, accounts.ErrAccountNotFound) {
			writeError(w, http.StatusNotFound, "account not found")
			return
		}

		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"accountId": accountID,
		"balance":   formatMinor(bal),
	})
}

type transferRequest struct {
	From      uint64 `json:"from"`
	To        uint64 `json:"to"`
	Amount    string `json:"amount"`
	Reason    string `json:"reason"`
	RequestID string `json:"requestId"`
}

// TransferHandler handles POST /transfer
func (h *HandlerProvider) TransferHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB cap
	defer r.Body.Close()

	var req transferRequest

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(&req)
	if err != nil {
		if errors.Is(err, io.EOF) {
			writeError(w, http.StatusBadRequest, "empty body")
			return
		}

		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	amountMinor, err := parseAmountMinor(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if req.From == 0 || req.To == 0 {
		writeError(w, http.StatusBadRequest, "from and to account ids required")
		return
	}

	src, err := h.accounts.Load(r.Context(), req.From)
	if err != nil {
		respondLoadError(w, err)
		return
	}

	dst, err := h.accounts.Load(r.Context(), req.To)
	if err != nil {
		respondLoadError(w, err)
		return
	}

	t, err := transfer.New(src, dst, amountMinor, req.Reason)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if req.RequestID != "" {
		id, err := uuid.Parse(req.RequestID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "requestId must be a UUID")
			return
		}

		t.SetRequestID(id.String())
	}

	err = h.transfers.Commit(r.Context(), t)
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrDuplicateRequest):
			writeError(w, http.StatusConflict, "duplicate request")
		case errors.Is(err, accounts.ErrAccountNotFound):
			writeError(w, http.StatusNotFound, "account not found")
		default:
			slog.Error("commit transfer", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
		}

		return
	}

	id, _ := t.ID()

	writeJSON(w, http.StatusCreated, map[string]any{
		"id":              id,
		"senderBalance":   formatMinor(src.CurrentBalance()),
		"receiverBalance": formatMinor(dst.CurrentBalance()),
	})
}

func respondLoadError(w http.ResponseWriter, err error) {
	if errors.Is(err, accounts.ErrAccountNotFound) {
		writeError(w, http.StatusNotFound, "account not found")
		return
	}

	writeError(w, http.StatusInternalServerError, "internal error")
}

// HistoryHandler handles GET /account/{accountId}/history
func (h *HandlerProvider) HistoryHandler(w http.ResponseWriter, r *http.Request) {
	accountID, err := parseAccountIDFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid accountId in path")
		return
	}

	mode, err := parseDirection(r.URL.Query().Get("direction"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid direction (want in, out or both)")
		return
	}

	log, err := h.views.Build(r.Context(), accountID, mode)
	if err != nil {
		slog.Error("build history", "account", accountID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	resp := map[string]any{
		"accountId": accountID,
		"entries":   log.Portable(),
	}

	// Directional views carry no reconciliation verdict.
	if log.HasVerdict() {
		resp["valid"] = log.Valid()
	}

	writeJSON(w, http.StatusOK, resp)
}

// HistoryTextHandler handles GET /account/{accountId}/history/text
func (h *HandlerProvider) HistoryTextHandler(w http.ResponseWriter, r *http.Request) {
	accountID, err := parseAccountIDFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid accountId in path")
		return
	}

	tz, err := history.ParseTimezone(r.URL.Query().Get("tz"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid tz (want utc or local)")
		return
	}

	log, err := h.views.Build(r.Context(), accountID, history.ModeBoth)
	if err != nil {
		slog.Error("build history", "account", accountID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	text, err := log.Format(tz)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(text))
}

package api

import (
	"encoding/json"
	"errors"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/dinofightergenesis/dinofighterg/internal/economy"
	"github.com/dinofightergenesis/dinofighterg/internal/session"
	"github.com/dinofightergenesis/dinofighterg/internal/store"
)

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type errorKind struct {
	err    error
	code   string
	status int
}

var errorKinds = []errorKind{
	{session.ErrNotAuthenticated, "not_authenticated", http.StatusUnauthorized},
	{economy.ErrInvalidAmount, "invalid_amount", http.StatusBadRequest},
	{economy.ErrUnknownAsset, "unknown_asset", http.StatusNotFound},
	{economy.ErrUnassignedAsset, "unassigned_asset", http.StatusUnprocessableEntity},
	{economy.ErrInsufficientBalance, "insufficient_balance", http.StatusUnprocessableEntity},
	{economy.ErrNothingToBurn, "nothing_to_burn", http.StatusUnprocessableEntity},
	{economy.ErrNoTicketsAvailable, "no_tickets_available", http.StatusUnprocessableEntity},
	{economy.ErrWalletCapExceeded, "wallet_cap_exceeded", http.StatusUnprocessableEntity},
	{economy.ErrEpochCapExceeded, "epoch_cap_exceeded", http.StatusUnprocessableEntity},
	{economy.ErrSaleNotLive, "sale_not_live", http.StatusConflict},
	{session.ErrAlreadySpinning, "already_spinning", http.StatusConflict},
	{session.ErrAlreadyReferred, "already_referred", http.StatusConflict},
	{session.ErrInvalidReferral, "invalid_referral", http.StatusBadRequest},
	{store.ErrPersistence, "persistence_failure", http.StatusServiceUnavailable},
}

func writeError(w http.ResponseWriter, err error) {
	for _, k := range errorKinds {
		if errors.Is(err, k.err) {
			writeJSON(w, k.status, errorBody{Error: k.code, Message: err.Error()})
			return
		}
	}
	log.WithError(err).Error("unhandled api error")
	writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal", Message: "internal error"})
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorBody{Error: "bad_request", Message: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Debug("write response")
	}
}

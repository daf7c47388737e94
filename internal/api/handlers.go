package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/dinofightergenesis/dinofighterg/internal/economy"
	"github.com/dinofightergenesis/dinofighterg/internal/model"
)

type accountView struct {
	HolderID      string          `json:"holder_id"`
	Multiplier    decimal.Decimal `json:"multiplier"`
	DailyRate     decimal.Decimal `json:"daily_rate"`
	NextSlotPrice decimal.Decimal `json:"next_slot_price"`
	model.UserRecord
}

func (s *Server) view(holderID string, rec model.UserRecord) accountView {
	assets := rec.Holder.Assets
	return accountView{
		HolderID:      holderID,
		Multiplier:    economy.Multiplier(economy.StakedTiers(assets)),
		DailyRate:     economy.DailyRate(assets),
		NextSlotPrice: s.sessions.Params().SlotCost(len(assets)),
		UserRecord:    rec,
	}
}

func (s *Server) account(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.open(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.view(sess.ID(), sess.Snapshot()))
}

type claimResponse struct {
	Claimed decimal.Decimal `json:"claimed"`
	OK      bool            `json:"ok"`
}

func (s *Server) claim(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.open(w, r)
	if !ok {
		return
	}
	claimed, ok, err := sess.Claim(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, claimResponse{Claimed: claimed, OK: ok})
}

func (s *Server) stake(w http.ResponseWriter, r *http.Request)   { s.setStaked(w, r, true) }
func (s *Server) unstake(w http.ResponseWriter, r *http.Request) { s.setStaked(w, r, false) }

func (s *Server) setStaked(w http.ResponseWriter, r *http.Request, staked bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, "asset id must be an integer")
		return
	}
	sess, ok := s.open(w, r)
	if !ok {
		return
	}
	if staked {
		err = sess.Stake(r.Context(), id)
	} else {
		err = sess.Unstake(r.Context(), id)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.view(sess.ID(), sess.Snapshot()))
}

type priceResponse struct {
	Price decimal.Decimal `json:"price"`
}

func (s *Server) slotPrice(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.open(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, priceResponse{Price: sess.SlotPrice()})
}

type slotResponse struct {
	Cost     decimal.Decimal   `json:"cost"`
	Burn     decimal.Decimal   `json:"burn"`
	Treasury decimal.Decimal   `json:"treasury"`
	Asset    model.StakedAsset `json:"asset"`
}

func (s *Server) purchaseSlot(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.open(w, r)
	if !ok {
		return
	}
	p, err := sess.PurchaseSlot(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, slotResponse{Cost: p.Cost, Burn: p.Burn, Treasury: p.Treasury, Asset: p.Asset})
}

type ticketsRequest struct {
	Quantity int `json:"quantity"`
}

type ticketsResponse struct {
	Quantity  int             `json:"quantity"`
	TotalCost decimal.Decimal `json:"total_cost"`
	Burn      decimal.Decimal `json:"burn"`
}

func (s *Server) buyTickets(w http.ResponseWriter, r *http.Request) {
	var req ticketsRequest
	if !decode(w, r, &req) {
		return
	}
	sess, ok := s.open(w, r)
	if !ok {
		return
	}
	p, err := sess.BuyTickets(r.Context(), req.Quantity)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ticketsResponse{Quantity: p.Quantity, TotalCost: p.TotalCost, Burn: p.Burn})
}

func (s *Server) spin(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.open(w, r)
	if !ok {
		return
	}
	d, err := sess.Spin(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) saleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.sessions.Sale().Status(s.sessions.Now()))
}

type saleBuyRequest struct {
	Tokens decimal.Decimal `json:"tokens"`
}

type saleBuyResponse struct {
	Tokens decimal.Decimal `json:"tokens"`
	Epoch  int64           `json:"epoch"`
	Price  decimal.Decimal `json:"price"`
	Cost   decimal.Decimal `json:"cost"`
}

func (s *Server) buySale(w http.ResponseWriter, r *http.Request) {
	var req saleBuyRequest
	if !decode(w, r, &req) {
		return
	}
	sess, ok := s.open(w, r)
	if !ok {
		return
	}
	p, err := sess.BuySale(r.Context(), req.Tokens)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, saleBuyResponse{Tokens: p.Tokens, Epoch: p.Epoch, Price: p.Price, Cost: p.Cost})
}

type burnRequest struct {
	Target economy.BurnTarget `json:"target"`
}

type burnResponse struct {
	Target economy.BurnTarget `json:"target"`
	Burnt  decimal.Decimal    `json:"burnt"`
}

func (s *Server) burn(w http.ResponseWriter, r *http.Request) {
	var req burnRequest
	if !decode(w, r, &req) {
		return
	}
	sess, ok := s.open(w, r)
	if !ok {
		return
	}
	var burnt decimal.Decimal
	var err error
	switch req.Target {
	case economy.TargetHolder:
		burnt, err = sess.Burn(r.Context())
	case economy.TargetGlobal:
		burnt, err = s.sessions.BurnGlobal(r.Context(), sess.ID())
	default:
		badRequest(w, `target must be "holder" or "global"`)
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, burnResponse{Target: req.Target, Burnt: burnt})
}

func (s *Server) globalBurn(w http.ResponseWriter, r *http.Request) {
	g, err := s.sessions.GlobalBurn(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

type referrerRequest struct {
	Referrer string `json:"referrer"`
}

func (s *Server) setReferrer(w http.ResponseWriter, r *http.Request) {
	var req referrerRequest
	if !decode(w, r, &req) {
		return
	}
	sess, ok := s.open(w, r)
	if !ok {
		return
	}
	if err := sess.SetReferrer(r.Context(), req.Referrer); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess.Snapshot().Referral)
}

func (s *Server) claimReferral(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.open(w, r)
	if !ok {
		return
	}
	claimed, ok, err := sess.ClaimReferral(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, claimResponse{Claimed: claimed, OK: ok})
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		badRequest(w, "invalid request body: "+err.Error())
		return false
	}
	return true
}

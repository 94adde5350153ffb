package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"game-vip-service/internal/domain"
	"game-vip-service/internal/domain/model"
	"game-vip-service/internal/infra/metrics"
	"game-vip-service/internal/infra/redis"
	"game-vip-service/internal/usecase"
)

type loginRequest struct {
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if !s.auth.CheckPassword(req.Password) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}
	token, err := s.auth.Mint(w)
	if err != nil {
		s.log.Error().Err(err).Msg("minting session failed")
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

type issueVoucherRequest struct {
	VipID    string `json:"vip_id"`
	IssuedTo string `json:"issued_to"`
	// Duration is optional, e.g. "30d" or "1d 12h"; empty means the
	// definition's base duration.
	Duration string `json:"duration"`
}

type issueVoucherResponse struct {
	Payload   model.VoucherPayload `json:"payload"`
	Signature string               `json:"signature"`
	Item      model.VoucherSpec    `json:"item"`
}

func (s *Server) handleIssueVoucher(w http.ResponseWriter, r *http.Request) {
	var req issueVoucherRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.VipID == "" || req.IssuedTo == "" {
		http.Error(w, "vip_id and issued_to are required", http.StatusBadRequest)
		return
	}

	var customSeconds int64
	if strings.TrimSpace(req.Duration) != "" {
		customSeconds = domain.ParseDuration(req.Duration)
		if customSeconds <= 0 {
			http.Error(w, "invalid duration", http.StatusBadRequest)
			return
		}
	}

	issued, err := s.vouchers.Issue(req.VipID, req.IssuedTo, customSeconds)
	if err != nil {
		s.writeError(w, err)
		return
	}
	metrics.IncVouchersIssued()
	writeJSON(w, http.StatusCreated, issueVoucherResponse{
		Payload:   issued.Payload,
		Signature: issued.Signature,
		Item:      issued.Vip.Voucher,
	})
}

func (s *Server) handleGetVoucher(w http.ResponseWriter, r *http.Request) {
	record, err := s.vouchers.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

type redeemRequest struct {
	Payload    model.VoucherPayload `json:"payload"`
	Signature  string               `json:"signature"`
	PlayerID   string               `json:"player_id"`
	PlayerName string               `json:"player_name"`
}

type activationResponse struct {
	Outcome  string                `json:"outcome"`
	State    *model.PlayerVipState `json:"state,omitempty"`
	MaxStack int                   `json:"max_stack,omitempty"`
	AddedSec int64                 `json:"added_duration_seconds,omitempty"`
}

type redeemResponse struct {
	Status     string              `json:"status"`
	Activation *activationResponse `json:"activation,omitempty"`
}

func (s *Server) handleRedeem(w http.ResponseWriter, r *http.Request) {
	var req redeemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.PlayerID == "" {
		http.Error(w, "player_id is required", http.StatusBadRequest)
		return
	}

	if s.limiter != nil {
		ok, err := s.limiter.Allow(r.Context(), redis.RedeemKey(req.PlayerID), redeemLimit, redeemWindow)
		if err != nil {
			s.log.Error().Err(err).Msg("rate limiter unavailable")
		} else if !ok {
			http.Error(w, "Too many redemption attempts", http.StatusTooManyRequests)
			return
		}
	}

	res, err := s.vouchers.Redeem(req.Payload, req.Signature, req.PlayerID, req.PlayerName)
	if err != nil {
		s.writeError(w, err)
		return
	}

	resp := redeemResponse{Status: res.Status.ErrorKey()}
	if res.Status != usecase.VoucherValid {
		metrics.IncVoucherRejections(res.Status.ErrorKey())
		writeJSON(w, http.StatusConflict, resp)
		return
	}

	act := res.Activation
	resp.Activation = toActivationResponse(*act)
	if !act.Applied() {
		writeJSON(w, http.StatusConflict, resp)
		return
	}

	metrics.IncVouchersRedeemed()
	metrics.IncVipsActivated("voucher")
	if err := s.commands.RunActivateCommands(r.Context(), act.Vip, req.PlayerName); err != nil {
		// The entitlement is already durable; command failures are reported,
		// not rolled back.
		s.log.Error().Err(err).Str("player", req.PlayerID).Msg("activation command chain failed")
	}
	writeJSON(w, http.StatusOK, resp)
}

type adminAddRequest struct {
	VipID      string `json:"vip_id"`
	PlayerName string `json:"player_name"`
	Duration   string `json:"duration"`
}

func (s *Server) handleAdminAdd(w http.ResponseWriter, r *http.Request) {
	playerID := chi.URLParam(r, "id")

	var req adminAddRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.VipID == "" {
		http.Error(w, "vip_id is required", http.StatusBadRequest)
		return
	}

	var customSeconds int64
	if strings.TrimSpace(req.Duration) != "" {
		customSeconds = domain.ParseDuration(req.Duration)
		if customSeconds <= 0 {
			http.Error(w, "invalid duration", http.StatusBadRequest)
			return
		}
	}

	res, err := s.entitlements.AdminAdd(req.VipID, playerID, req.PlayerName, customSeconds)
	if err != nil {
		s.writeError(w, err)
		return
	}

	if !res.Applied() {
		writeJSON(w, http.StatusConflict, toActivationResponse(res))
		return
	}
	metrics.IncVipsActivated("admin")
	if err := s.commands.RunActivateCommands(r.Context(), res.Vip, req.PlayerName); err != nil {
		s.log.Error().Err(err).Str("player", playerID).Msg("activation command chain failed")
	}
	writeJSON(w, http.StatusOK, toActivationResponse(res))
}

func (s *Server) handleAdminRemove(w http.ResponseWriter, r *http.Request) {
	playerID := chi.URLParam(r, "id")
	vipFilter := r.URL.Query().Get("vip")

	// Resolve the definition before removal; removal itself does not return
	// it, and the expiry commands need it.
	def, err := s.entitlements.PeekActiveDefinition(playerID, vipFilter)
	if err != nil {
		s.writeError(w, err)
		return
	}

	removed, err := s.entitlements.AdminRemove(vipFilter, playerID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if !removed {
		http.Error(w, "No matching active vip", http.StatusNotFound)
		return
	}

	metrics.IncVipsRemoved()
	if def != nil {
		state, _ := s.entitlements.PlayerState(playerID)
		playerName := playerID
		if state != nil && state.LastKnownName != "" {
			playerName = state.LastKnownName
		}
		if err := s.commands.RunExpireCommands(r.Context(), def, playerName); err != nil {
			s.log.Error().Err(err).Str("player", playerID).Msg("expiry command chain failed")
		}
	}
	writeJSON(w, http.StatusOK, map[string]bool{"removed": true})
}

func (s *Server) handleGetPlayer(w http.ResponseWriter, r *http.Request) {
	state, err := s.entitlements.PlayerState(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	if state == nil {
		http.Error(w, "Unknown player", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := s.entitlements.History(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleListPlayers(w http.ResponseWriter, r *http.Request) {
	players, err := s.entitlements.AllPlayers()
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, players)
}

func (s *Server) handleListVips(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.catalog.All())
}

func toActivationResponse(res usecase.ActivationResult) *activationResponse {
	out := &activationResponse{Outcome: res.Outcome.String()}
	switch {
	case res.Applied():
		out.State = res.NewState
		out.AddedSec = res.AddedDurationSeconds
	default:
		out.State = res.Previous
		out.MaxStack = res.MaxStack
	}
	return out
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrVipNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, domain.ErrVoucherNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, domain.ErrInvalidArgument):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		s.log.Error().Err(err).Msg("request failed")
		http.Error(w, "Internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

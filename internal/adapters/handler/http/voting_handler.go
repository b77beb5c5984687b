package http

import (
	"encoding/json"
	"errors"
	"math/big"
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"
	"github.com/vncsmyrnk/devchain/internal/core/domain"
	"github.com/vncsmyrnk/devchain/internal/core/ports"
)

type VotingHandler struct {
	service ports.VotingService
}

func NewVotingHandler(service ports.VotingService) *VotingHandler {
	return &VotingHandler{
		service: service,
	}
}

type deployVotingRequest struct {
	From       common.Address `json:"from"`
	Candidates []string       `json:"candidates"`
	TimeLimit  uint64         `json:"time_limit"`
}

type deployVotingResponse struct {
	Address common.Address `json:"address"`
}

type voteRequest struct {
	Voter     common.Address `json:"voter"`
	Candidate *big.Int       `json:"candidate"`
}

type candidateResponse struct {
	Index     int    `json:"index"`
	Name      string `json:"name"`
	VoteCount uint64 `json:"vote_count"`
}

type votingResponse struct {
	Address    common.Address      `json:"address"`
	Candidates []candidateResponse `json:"candidates"`
	TimeLimit  uint64              `json:"time_limit"`
	Ended      bool                `json:"ended"`
}

type winnerResponse struct {
	Name string `json:"name"`
}

func (h *VotingHandler) DeployVoting(w http.ResponseWriter, r *http.Request) {
	var req deployVotingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	names, err := domain.EncodeBytes32Strings(req.Candidates...)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	addr, err := h.service.Deploy(r.Context(), ports.DeployVotingInput{
		From:       req.From,
		Candidates: names,
		TimeLimit:  req.TimeLimit,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, deployVotingResponse{Address: addr})
}

func (h *VotingHandler) GetVoting(w http.ResponseWriter, r *http.Request) {
	addr, ok := addressParam(w, r)
	if !ok {
		return
	}

	status, err := h.service.Status(r.Context(), addr)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp := votingResponse{
		Address:    status.Address,
		Candidates: make([]candidateResponse, 0, len(status.Candidates)),
		TimeLimit:  status.TimeLimit,
		Ended:      status.Ended,
	}
	for i, c := range status.Candidates {
		name, err := domain.DecodeBytes32String(c.Name)
		if err != nil {
			name = common.Bytes2Hex(c.Name[:])
		}
		resp.Candidates = append(resp.Candidates, candidateResponse{
			Index:     i,
			Name:      name,
			VoteCount: c.VoteCount,
		})
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *VotingHandler) Vote(w http.ResponseWriter, r *http.Request) {
	addr, ok := addressParam(w, r)
	if !ok {
		return
	}

	var req voteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	input := ports.VoteInput{
		Contract: addr,
		Voter:    req.Voter,
		Index:    req.Candidate,
	}
	if err := h.service.Vote(r.Context(), input); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (h *VotingHandler) GetWinner(w http.ResponseWriter, r *http.Request) {
	addr, ok := addressParam(w, r)
	if !ok {
		return
	}

	raw, err := h.service.Winner(r.Context(), addr)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	name, err := domain.DecodeBytes32String(raw)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, winnerResponse{Name: name})
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrTooFewCandidates),
		errors.Is(err, domain.ErrTimeLimitInPast),
		errors.Is(err, domain.ErrInvalidCandidate),
		errors.Is(err, domain.ErrUnknownAccount):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, domain.ErrVotingEnded):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, domain.ErrAlreadyVoted),
		errors.Is(err, domain.ErrVotingNotEnded):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, domain.ErrContractNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func addressParam(w http.ResponseWriter, r *http.Request) (common.Address, bool) {
	param := chi.URLParam(r, "address")
	if !common.IsHexAddress(param) {
		http.Error(w, "invalid contract address", http.StatusBadRequest)
		return common.Address{}, false
	}
	return common.HexToAddress(param), true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
	}
}

package http

import (
	"errors"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"
	"github.com/vncsmyrnk/devchain/internal/core/domain"
	"github.com/vncsmyrnk/devchain/internal/core/ports"
)

type DeploymentHandler struct {
	service ports.DeployService
	lookup  func(id string) (*domain.Module, error)
}

// NewDeploymentHandler serves the journal of the modules lookup resolves.
func NewDeploymentHandler(service ports.DeployService, lookup func(id string) (*domain.Module, error)) *DeploymentHandler {
	return &DeploymentHandler{
		service: service,
		lookup:  lookup,
	}
}

type deploymentResponse struct {
	ChainID   uint64                     `json:"chain_id"`
	ModuleID  string                     `json:"module_id"`
	Contracts []*domain.DeployedContract `json:"contracts"`
}

func (h *DeploymentHandler) GetDeployments(w http.ResponseWriter, r *http.Request) {
	moduleID := chi.URLParam(r, "module")

	deployments, err := h.service.Deployments(r.Context(), moduleID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if len(deployments) == 0 {
		http.Error(w, "no deployments for module "+moduleID, http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, deployments)
}

func (h *DeploymentHandler) DeployModule(w http.ResponseWriter, r *http.Request) {
	module, err := h.lookup(chi.URLParam(r, "module"))
	if err != nil {
		if errors.Is(err, domain.ErrModuleNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	result, err := h.service.Deploy(r.Context(), ports.DeployInput{Module: module})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp := deploymentResponse{
		ChainID:   result.ChainID,
		ModuleID:  result.ModuleID,
		Contracts: make([]*domain.DeployedContract, 0, len(result.Contracts)),
	}
	for _, d := range result.Contracts {
		resp.Contracts = append(resp.Contracts, d)
	}
	sort.Slice(resp.Contracts, func(i, j int) bool {
		return resp.Contracts[i].FutureID < resp.Contracts[j].FutureID
	})

	writeJSON(w, http.StatusCreated, resp)
}

package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewHandler serves JSON-RPC on the root path next to the REST API.
func NewHandler(rpcHandler http.Handler, votingHandler *VotingHandler, deploymentHandler *DeploymentHandler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Post("/", rpcHandler.ServeHTTP)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Logger)

		r.Route("/votings", func(r chi.Router) {
			r.Post("/", votingHandler.DeployVoting)
			r.Get("/{address}", votingHandler.GetVoting)
			r.Post("/{address}/votes", votingHandler.Vote)
			r.Get("/{address}/winner", votingHandler.GetWinner)
		})

		r.Route("/deployments", func(r chi.Router) {
			r.Get("/{module}", deploymentHandler.GetDeployments)
			r.Post("/{module}", deploymentHandler.DeployModule)
		})
	})

	return r
}

package api

import (
	"net/http"
)

// RegisterRoutes регистрирует все маршруты API.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	chain := Chain(
		Recovery(h.logger),
		Metrics(),
		Logging(h.logger),
	)

	// Steps
	mux.Handle("GET /api/v1/steps", chain(http.HandlerFunc(h.ListSteps)))
	mux.Handle("POST /api/v1/steps/{type}/invocations", chain(http.HandlerFunc(h.CreateInvocation)))

	// Invocations
	mux.Handle("GET /api/v1/invocations", chain(http.HandlerFunc(h.ListInvocations)))
	mux.Handle("GET /api/v1/invocations/{id}", chain(http.HandlerFunc(h.GetInvocation)))
}

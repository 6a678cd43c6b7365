package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	mux.HandleFunc("GET /v1/health", handler.Health)
}

func registerFixtureRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/fixtures", handler.ListFixtures)
	mux.HandleFunc("GET /v1/fixtures/calendar.ics", handler.Calendar)
	mux.HandleFunc("GET /v1/fixtures/{fixtureID}", handler.GetFixture)
	mux.HandleFunc("POST /v1/fixtures/refresh", handler.Refresh)
	mux.HandleFunc("GET /v1/venues", handler.ListVenues)
	mux.HandleFunc("GET /v1/competitions", handler.ListCompetitions)
}

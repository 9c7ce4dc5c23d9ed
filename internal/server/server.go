package server

import (
	"log"
	"net"
	"net/http"

	"github.com/campolibro/campolibro/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type Server struct {
	store  *store.Store
	router chi.Router
	addr   string
}

func New(st *store.Store, addr string) *Server {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	s := &Server{store: st, router: r, addr: addr}

	r.Route("/api/v1", func(r chi.Router) {
		// Chart of accounts
		r.Post("/accounts", s.createAccount)
		r.Get("/accounts", s.listAccounts)
		r.Get("/accounts/{code}", s.getAccount)
		r.Get("/accounts/{code}/balance", s.getAccountBalance)

		// Journal
		r.Post("/entries", s.postEntry)
		r.Get("/entries", s.listEntries)
		r.Get("/entries/{id}", s.getEntry)
		r.Post("/entries/{id}/void", s.voidEntry)
		r.Post("/events/{kind}", s.postEvent)

		// Third parties
		r.Post("/parties", s.createParty)
		r.Get("/parties", s.listParties)
		r.Get("/parties/totals", s.partyTotals)
		r.Get("/parties/{id}", s.getParty)
		r.Get("/parties/{id}/replay", s.replayParty)

		// Plots and geometry versions
		r.Post("/plots", s.createPlot)
		r.Get("/plots", s.listPlots)
		r.Get("/plots/{id}", s.getPlot)
		r.Get("/plots/{id}/versions", s.listVersions)
		r.Post("/plots/{id}/versions", s.appendVersion)
		r.Get("/plots/{id}/compare", s.compareVersions)

		// Reference and export
		r.Get("/chart", s.getChart)
		r.Get("/export/journal.csv", s.exportJournal)
	})

	return s
}

func (s *Server) ListenAndServe() error {
	log.Printf("campolibro server listening on %s", s.addr)
	return http.ListenAndServe(s.addr, s.router)
}

func (s *Server) Serve(ln net.Listener) error {
	log.Printf("campolibro server listening on %s", ln.Addr())
	return http.Serve(ln, s.router)
}

func (s *Server) Handler() http.Handler {
	return s.router
}

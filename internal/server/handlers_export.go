package server

import (
	"log"
	"net/http"

	"github.com/campolibro/campolibro/internal/export"
	"github.com/campolibro/campolibro/internal/store"
)

func (s *Server) exportJournal(w http.ResponseWriter, r *http.Request) {
	filter := store.EntryFilter{
		AccountCode: r.URL.Query().Get("account"),
		PartyID:     r.URL.Query().Get("party"),
	}

	entries, err := s.store.ListEntries(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="journal.csv"`)
	if err := export.WriteJournal(w, entries); err != nil {
		// Headers are already out; all we can do is log.
		log.Printf("export: %v", err)
	}
}

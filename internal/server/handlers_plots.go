package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/campolibro/campolibro/internal/geo"
	"github.com/go-chi/chi/v5"
	"github.com/paulmach/orb/geojson"
)

type createPlotRequest struct {
	FieldID  string          `json:"field_id"`
	Name     string          `json:"name"`
	Code     string          `json:"code"`
	Geometry json.RawMessage `json:"geometry"`
}

type plotResponse struct {
	*geo.Plot
	Version *versionResponse `json:"version,omitempty"`
}

type versionResponse struct {
	PlotID       string            `json:"plot_id"`
	Version      int               `json:"version"`
	Geometry     *geojson.Geometry `json:"geometry"`
	AreaHectares float64           `json:"area_hectares"`
	ChangedAt    time.Time         `json:"changed_at"`
	ChangedBy    string            `json:"changed_by"`
	Reason       string            `json:"reason,omitempty"`
}

func toVersionResponse(v *geo.GeometryVersion) *versionResponse {
	return &versionResponse{
		PlotID:       v.PlotID,
		Version:      v.Version,
		Geometry:     v.GeoJSON(),
		AreaHectares: v.AreaHectares,
		ChangedAt:    v.ChangedAt,
		ChangedBy:    v.ChangedBy,
		Reason:       v.Reason,
	}
}

func (s *Server) createPlot(w http.ResponseWriter, r *http.Request) {
	var req createPlotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	poly, err := geo.DecodePolygon(req.Geometry)
	if err != nil {
		writeError(w, mapError(err), err.Error())
		return
	}

	plot := &geo.Plot{
		FieldID: req.FieldID,
		Name:    req.Name,
		Code:    req.Code,
	}

	version, err := s.store.CreatePlot(r.Context(), plot, poly, postContext(r).Actor)
	if err != nil {
		writeError(w, mapError(err), err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, plotResponse{Plot: plot, Version: toVersionResponse(version)})
}

func (s *Server) listPlots(w http.ResponseWriter, r *http.Request) {
	plots, err := s.store.ListPlots(r.Context(), r.URL.Query().Get("field"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if plots == nil {
		plots = []geo.Plot{}
	}
	writeJSON(w, http.StatusOK, plots)
}

func (s *Server) getPlot(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	plot, err := s.store.GetPlot(r.Context(), id)
	if err != nil {
		writeError(w, mapError(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, plot)
}

func (s *Server) listVersions(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	versions, err := s.store.ListGeometryVersions(r.Context(), id)
	if err != nil {
		writeError(w, mapError(err), err.Error())
		return
	}

	resp := make([]*versionResponse, 0, len(versions))
	for i := range versions {
		resp = append(resp, toVersionResponse(&versions[i]))
	}
	writeJSON(w, http.StatusOK, resp)
}

type appendVersionRequest struct {
	Geometry json.RawMessage `json:"geometry"`
	Reason   string          `json:"reason"`
}

func (s *Server) appendVersion(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req appendVersionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	poly, err := geo.DecodePolygon(req.Geometry)
	if err != nil {
		writeError(w, mapError(err), err.Error())
		return
	}

	version, err := s.store.AppendGeometryVersion(r.Context(), id, poly, postContext(r).Actor, req.Reason)
	if err != nil {
		writeError(w, mapError(err), err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, toVersionResponse(version))
}

func (s *Server) compareVersions(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	from, err := strconv.Atoi(r.URL.Query().Get("from"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid from version")
		return
	}
	to, err := strconv.Atoi(r.URL.Query().Get("to"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid to version")
		return
	}

	comparison, err := s.store.CompareGeometryVersions(r.Context(), id, from, to)
	if err != nil {
		writeError(w, mapError(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, comparison)
}

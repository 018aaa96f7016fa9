package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/paulmach/orb/maptile"

	"github.com/couchcryptid/worksite-map/internal/adapter/headless"
	"github.com/couchcryptid/worksite-map/internal/adapter/mapbox"
	"github.com/couchcryptid/worksite-map/internal/domain"
	"github.com/couchcryptid/worksite-map/internal/geo"
)

const (
	maxBodyBytes = 1 << 20
	maxTileZoom  = 22
)

type viewRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Zoom      *int     `json:"zoom"`
}

type pointRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

func (p pointRequest) latLng() (geo.LatLng, error) {
	if p.Latitude == nil || p.Longitude == nil {
		return geo.LatLng{}, errors.New("latitude and longitude are required")
	}
	return geo.LatLng{Lat: *p.Latitude, Lon: *p.Longitude}, nil
}

type locateRequest struct {
	URL string `json:"url"`
}

type clickResponse struct {
	Selected *domain.Worksite `json:"selected"`
}

type hoverResponse struct {
	Cursor string `json:"cursor"`
}

type workTypesResponse struct {
	WorkTypes []string `json:"work_types"`
}

func (s *Server) handleGetView(w http.ResponseWriter, _ *http.Request) {
	sharedobs.WriteJSON(w, http.StatusOK, s.svc.View())
}

func (s *Server) handleSetView(w http.ResponseWriter, r *http.Request) {
	var req viewRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	current := s.svc.View()
	center, zoom := current.Center, current.Zoom
	if req.Latitude != nil {
		center.Lat = *req.Latitude
	}
	if req.Longitude != nil {
		center.Lon = *req.Longitude
	}
	if req.Zoom != nil {
		zoom = *req.Zoom
	}

	view, err := s.svc.SetView(center, zoom)
	if err != nil {
		s.writeViewError(w, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, view)
}

func (s *Server) handleLocate(w http.ResponseWriter, r *http.Request) {
	var req locateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	view, err := s.svc.Locate(req.URL)
	if err != nil {
		s.writeViewError(w, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, view)
}

func (s *Server) handleClick(w http.ResponseWriter, r *http.Request) {
	ll, ok := decodePoint(w, r)
	if !ok {
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, clickResponse{Selected: s.svc.Click(ll)})
}

func (s *Server) handleHover(w http.ResponseWriter, r *http.Request) {
	ll, ok := decodePoint(w, r)
	if !ok {
		return
	}
	cursor := "default"
	if s.svc.Hover(ll) {
		cursor = "pointer"
	}
	sharedobs.WriteJSON(w, http.StatusOK, hoverResponse{Cursor: cursor})
}

func (s *Server) handleFrame(w http.ResponseWriter, _ *http.Request) {
	frame := s.svc.Frame()
	if len(frame) == 0 {
		writeError(w, http.StatusServiceUnavailable, "no frame rendered yet")
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(frame)
}

func (s *Server) handleWorkTypes(w http.ResponseWriter, _ *http.Request) {
	sharedobs.WriteJSON(w, http.StatusOK, workTypesResponse{WorkTypes: s.svc.DisplayedWorkTypes()})
}

func (s *Server) handleSetContext(w http.ResponseWriter, r *http.Request) {
	var rc domain.RenderContext
	if !decodeJSON(w, r, &rc) {
		return
	}
	s.svc.SetRenderContext(rc)
	sharedobs.WriteJSON(w, http.StatusOK, workTypesResponse{WorkTypes: s.svc.DisplayedWorkTypes()})
}

func (s *Server) handleTile(w http.ResponseWriter, r *http.Request) {
	t, err := parseTile(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	tile, err := s.tiles.Tile(r.Context(), t)
	switch {
	case errors.Is(err, mapbox.ErrDisabled):
		writeError(w, http.StatusNotFound, "basemap tiles are disabled")
		return
	case errors.Is(err, mapbox.ErrInvalidTile):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		s.logger.Warn("tile fetch failed", "z", t.Z, "x", t.X, "y", t.Y, "error", err)
		writeError(w, http.StatusBadGateway, "tile fetch failed")
		return
	}

	contentType := tile.ContentType
	if contentType == "" {
		contentType = "image/png"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(tile.Data)
}

func (s *Server) writeViewError(w http.ResponseWriter, err error) {
	var perr *geo.ParseError
	if errors.As(err, &perr) || errors.Is(err, headless.ErrInvalidView) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.logger.Error("view update failed", "error", err)
	writeError(w, http.StatusInternalServerError, "view update failed")
}

func parseTile(r *http.Request) (maptile.Tile, error) {
	var coords [3]uint64
	for i, name := range []string{"z", "x", "y"} {
		v, err := strconv.ParseUint(r.PathValue(name), 10, 32)
		if err != nil {
			return maptile.Tile{}, fmt.Errorf("invalid tile %s: %q", name, r.PathValue(name))
		}
		coords[i] = v
	}
	if coords[0] > maxTileZoom {
		return maptile.Tile{}, fmt.Errorf("invalid tile z: %d", coords[0])
	}
	return maptile.New(uint32(coords[1]), uint32(coords[2]), maptile.Zoom(coords[0])), nil
}

func decodePoint(w http.ResponseWriter, r *http.Request) (geo.LatLng, bool) {
	var req pointRequest
	if !decodeJSON(w, r, &req) {
		return geo.LatLng{}, false
	}
	ll, err := req.latLng()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return geo.LatLng{}, false
	}
	return ll, true
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

func writeError(w http.ResponseWriter, status int, msg string) {
	sharedobs.WriteJSON(w, status, map[string]string{"error": msg})
}

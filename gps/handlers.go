package gps

import (
	"embed"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
)

//go:generate go tool templ generate

//go:embed static/player.js
var staticFiles embed.FS

// SetupHandlers registers the player, viewer and track endpoints on mux
func (s *Server) SetupHandlers(mux *http.ServeMux) {
	mux.HandleFunc("/", s.handlePlayerPage)
	mux.Handle("/static/", http.FileServer(http.FS(staticFiles)))
	mux.HandleFunc("/gps/ws", s.handlePlayerSocket)
	mux.HandleFunc("/gps/watch", s.handleWatch)
	mux.HandleFunc("/gps/track.geojson", s.handleTrackGeoJSON)
	mux.HandleFunc("/gps/readout", s.handleReadout)
	mux.HandleFunc("/gps/sessions", s.handleSessions)
}

func (s *Server) handlePlayerPage(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "text/html")
	err := PlayerPage(s.track.TotalKm(), s.track.Duration()).Render(r.Context(), w)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (s *Server) handlePlayerSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Error("websocket_upgrade_failed", "err", err)
		return
	}
	s.serveSession(conn)
}

func (s *Server) handleWatch(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Error("websocket_upgrade_failed", "err", err)
		return
	}
	conn.SetReadLimit(maxMessage)
	s.hub.Add(conn)

	// Viewers only listen; reading detects the disconnect
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			s.hub.Remove(conn)
			return
		}
	}
}

func (s *Server) handleTrackGeoJSON(w http.ResponseWriter, r *http.Request) {
	data, err := json.Marshal(s.track.GeoJSON())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	w.Write(data)
}

func (s *Server) handleReadout(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("session")
	if id == "" {
		http.Error(w, "Session ID required", http.StatusBadRequest)
		return
	}

	info, ok := s.Session(id)
	if !ok {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "text/html")
	err := ReadoutPanel(info).Render(r.Context(), w)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.Sessions())
}

// Helper functions for templates

func degreesToDMS(decimalDegrees float64, isLatitude bool) string {
	absolute := math.Abs(decimalDegrees)

	degrees := int(absolute)
	minutesNotTruncated := (absolute - float64(degrees)) * 60
	minutes := int(minutesNotTruncated)
	seconds := (minutesNotTruncated - float64(minutes)) * 60

	var direction string
	if isLatitude {
		if decimalDegrees >= 0 {
			direction = "N"
		} else {
			direction = "S"
		}
	} else {
		if decimalDegrees >= 0 {
			direction = "E"
		} else {
			direction = "W"
		}
	}

	return fmt.Sprintf("%d°%d'%.2f\"%s", degrees, minutes, seconds, direction)
}

// formatClock renders seconds as m:ss.s
func formatClock(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}
	m := int(seconds) / 60
	return fmt.Sprintf("%d:%04.1f", m, seconds-float64(m*60))
}

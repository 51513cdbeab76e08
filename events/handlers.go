package events

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
)

//go:generate go tool templ generate

// SetupHandlers registers the journal endpoints on mux
func SetupHandlers(mux *http.ServeMux, j *Journal) {
	mux.HandleFunc("/events", j.handleEvents)
	mux.HandleFunc("/events/list", j.handleEventsList)
	mux.HandleFunc("/events/history", j.handleHistory)
}

func (j *Journal) handleEventsList(w http.ResponseWriter, r *http.Request) {
	eventsList := j.Recent()

	// Reverse the events to show newest first
	reversed := make([]Event, len(eventsList))
	for i, k := 0, len(eventsList)-1; i < len(eventsList); i, k = i+1, k-1 {
		reversed[i] = eventsList[k]
	}

	w.Header().Set("Content-Type", "text/html")
	err := EventsList(reversed).Render(r.Context(), w)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (j *Journal) handleEvents(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(j.Recent())
}

// handleHistory reads persisted events: ?session=<id>&limit=<n>
func (j *Journal) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			http.Error(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	list, err := j.History(r.URL.Query().Get("session"), limit)
	if errors.Is(err, ErrNoStore) {
		http.Error(w, "Event database not configured", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if list == nil {
		list = []Event{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(list)
}

// Helper functions for templates

func formatEventType(eventType string) string {
	parts := strings.Split(eventType, "_")
	for i, part := range parts {
		if len(part) > 0 {
			parts[i] = strings.ToUpper(part[:1]) + part[1:]
		}
	}
	return strings.Join(parts, " ")
}

func getEventTypeClass(eventType string) string {
	switch eventType {
	case TypePlay, TypeSessionOpen:
		return "bg-green-100 text-green-800"
	case TypePause:
		return "bg-yellow-100 text-yellow-800"
	case TypeEnded, TypeSessionClose:
		return "bg-red-100 text-red-800"
	case TypeSeekEnd:
		return "bg-purple-100 text-purple-800"
	case TypeSourceLoaded:
		return "bg-indigo-100 text-indigo-800"
	default:
		return "bg-blue-100 text-blue-800"
	}
}

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/tahcohcat/calmkid/internal/tts"
)

// GET /api/v1/activities/{id}/narration - MP3 of the activity instructions,
// voiced for today's mood.
func (h *Handler) Narrate(w http.ResponseWriter, r *http.Request) {
	activity, err := h.svc.Catalog.Activity(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	mood, _, err := h.svc.Moods.TodayMood(r.Context(), userID(r), time.Time{})
	if err != nil {
		writeError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	audio, err := h.narrator.Narrate(ctx, tts.Script(*activity), mood)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "audio/mpeg")
	w.Header().Set("Cache-Control", "no-cache")
	w.Write(audio)
}

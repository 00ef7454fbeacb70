package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/tahcohcat/calmkid/internal/auth"
	"github.com/tahcohcat/calmkid/internal/models"
	"github.com/tahcohcat/calmkid/internal/services"
	"github.com/tahcohcat/calmkid/internal/tips"
	"github.com/tahcohcat/calmkid/internal/tts"
)

type Options struct {
	// Sessions issues login cookies. Identity defaults to it.
	Sessions *auth.Sessions
	Identity auth.Identity
	Advisor  *tips.Advisor
	Narrator tts.Narrator
	Notifier services.Notifier
	// Tick is the activity countdown interval, one second by default.
	Tick time.Duration
}

type Handler struct {
	svc      *services.Services
	sessions *auth.Sessions
	identity auth.Identity
	advisor  *tips.Advisor
	narrator tts.Narrator
	timers   *timers
}

func New(svc *services.Services, opts Options) *Handler {
	h := &Handler{
		svc:      svc,
		sessions: opts.Sessions,
		identity: opts.Identity,
		advisor:  opts.Advisor,
		narrator: opts.Narrator,
		timers:   newTimers(opts.Tick, opts.Notifier),
	}
	if h.identity == nil && h.sessions != nil {
		h.identity = h.sessions
	}
	if h.advisor == nil {
		h.advisor = tips.NewAdvisor(nil)
	}
	if h.narrator == nil {
		h.narrator = tts.NewDummyTts()
	}
	return h
}

// Close stops the activity countdowns.
func (h *Handler) Close() {
	h.timers.Close()
}

// RegisterRoutes mounts the public auth routes and the authenticated API
// on r, which is expected to be the /api/v1 subrouter.
func (h *Handler) RegisterRoutes(r *mux.Router) {
	if h.sessions != nil {
		r.HandleFunc("/register", h.Register).Methods("POST")
		r.HandleFunc("/login", h.Login).Methods("POST")
		r.HandleFunc("/logout", h.Logout).Methods("POST")
	}

	a := r.NewRoute().Subrouter()
	a.Use(auth.Middleware(h.identity))

	a.HandleFunc("/me", h.Me).Methods("GET")
	a.HandleFunc("/profile", h.GetProfile).Methods("GET")
	a.HandleFunc("/profile", h.SetupProfile).Methods("PUT")
	a.HandleFunc("/home", h.Home).Methods("GET")

	a.HandleFunc("/mood", h.RecordMood).Methods("POST")
	a.HandleFunc("/mood/today", h.TodayMood).Methods("GET")
	a.HandleFunc("/mood/history", h.MoodHistory).Methods("GET")

	a.HandleFunc("/activities", h.Catalog(models.KindActivity)).Methods("GET")
	a.HandleFunc("/challenges", h.Catalog(models.KindChallenge)).Methods("GET")
	a.HandleFunc("/challenges/{id}/complete", h.CompleteChallenge).Methods("POST")
	a.HandleFunc("/progress/recent", h.RecentProgress).Methods("GET")

	a.HandleFunc("/activities/{id}/sessions", h.StartSession).Methods("POST")
	a.HandleFunc("/activities/{id}/narration", h.Narrate).Methods("GET")
	a.HandleFunc("/sessions/{id}", h.GetSession).Methods("GET")
	a.HandleFunc("/sessions/{id}/pause", h.PauseSession).Methods("POST")
	a.HandleFunc("/sessions/{id}/resume", h.ResumeSession).Methods("POST")
	a.HandleFunc("/sessions/{id}/cancel", h.CancelSession).Methods("POST")
	a.HandleFunc("/sessions/{id}/claim", h.ClaimSession).Methods("POST")

	a.HandleFunc("/rewards", h.ListRewards).Methods("GET")
	a.HandleFunc("/rewards/{id}/purchase", h.PurchaseReward).Methods("POST")
	a.HandleFunc("/balance", h.Balance).Methods("GET")
	a.HandleFunc("/ledger", h.Ledger).Methods("GET")

	a.HandleFunc("/journal/notes", h.AddNote).Methods("POST")
	a.HandleFunc("/journal/notes", h.ListNotes).Methods("GET")
	a.HandleFunc("/journal/triggers", h.LogTriggers).Methods("POST")
	a.HandleFunc("/journal/triggers", h.ListTriggers).Methods("GET")
	a.HandleFunc("/journal/triggers/common", h.CommonTriggers).Methods("GET")

	a.HandleFunc("/report", h.Report).Methods("GET")
	a.HandleFunc("/tips", h.Tips).Methods("GET")
}

func userID(r *http.Request) string {
	id, _ := auth.UserID(r.Context())
	return id
}

func intParam(r *http.Request, name string, def int) int {
	if v := r.URL.Query().Get(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}

// GET /api/v1/me
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	account, err := h.svc.Accounts.Get(r.Context(), userID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, account)
}

// GET /api/v1/profile
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.Profiles.Get(r.Context(), userID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// PUT /api/v1/profile
func (h *Handler) SetupProfile(w http.ResponseWriter, r *http.Request) {
	var req models.ProfileSetup
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	p, err := h.svc.Profiles.Setup(r.Context(), userID(r), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// GET /api/v1/home
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	home, err := h.svc.Dashboard.Home(r.Context(), userID(r), time.Time{})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, home)
}

// POST /api/v1/mood
func (h *Handler) RecordMood(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Mood string `json:"mood"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	entry, err := h.svc.Moods.RecordMood(r.Context(), userID(r), req.Mood, time.Time{})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

// GET /api/v1/mood/today
func (h *Handler) TodayMood(w http.ResponseWriter, r *http.Request) {
	mood, ok, err := h.svc.Moods.TodayMood(r.Context(), userID(r), time.Time{})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"mood": mood, "logged": ok})
}

// GET /api/v1/mood/history?days=7
func (h *Handler) MoodHistory(w http.ResponseWriter, r *http.Request) {
	days := intParam(r, "days", services.ReportDays)
	to := time.Now().UTC()
	entries, err := h.svc.Moods.History(r.Context(), userID(r), to.AddDate(0, 0, -days), to.Add(time.Second))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
}

// GET /api/v1/activities and /api/v1/challenges
func (h *Handler) Catalog(kind models.ItemKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, err := h.svc.Dashboard.Catalog(r.Context(), userID(r), kind, time.Time{})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, view)
	}
}

// POST /api/v1/challenges/{id}/complete
func (h *Handler) CompleteChallenge(w http.ResponseWriter, r *http.Request) {
	ch, err := h.svc.Catalog.Challenge(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	res, err := h.svc.Progress.RecordCompletion(r.Context(), userID(r), ch.ID, models.KindChallenge, ch.StarReward)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// GET /api/v1/progress/recent?limit=10
func (h *Handler) RecentProgress(w http.ResponseWriter, r *http.Request) {
	recs, err := h.svc.Progress.Recent(r.Context(), userID(r), intParam(r, "limit", 10))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"completions": recs})
}

// GET /api/v1/rewards
func (h *Handler) ListRewards(w http.ResponseWriter, r *http.Request) {
	rewards, err := h.svc.Catalog.Rewards(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	owned, err := h.svc.Rewards.Owned(r.Context(), userID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	stars, err := h.svc.Ledger.Balance(r.Context(), userID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"rewards": rewards, "owned": owned, "stars": stars})
}

// POST /api/v1/rewards/{id}/purchase
func (h *Handler) PurchaseReward(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.Rewards.Purchase(r.Context(), userID(r), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// GET /api/v1/balance
func (h *Handler) Balance(w http.ResponseWriter, r *http.Request) {
	stars, err := h.svc.Ledger.Balance(r.Context(), userID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"stars": stars})
}

// GET /api/v1/ledger?limit=20
func (h *Handler) Ledger(w http.ResponseWriter, r *http.Request) {
	entries, err := h.svc.Ledger.Entries(r.Context(), userID(r), intParam(r, "limit", 20))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
}

// POST /api/v1/journal/notes
func (h *Handler) AddNote(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Note     string `json:"note"`
		Severity string `json:"severity"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	note, err := h.svc.Journal.AddNote(r.Context(), userID(r), req.Note, req.Severity)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, note)
}

// GET /api/v1/journal/notes?limit=50
func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	notes, err := h.svc.Journal.Notes(r.Context(), userID(r), intParam(r, "limit", 50))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"notes": notes})
}

// POST /api/v1/journal/triggers
func (h *Handler) LogTriggers(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Triggers []string `json:"triggers"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	logs, err := h.svc.Journal.LogTriggers(r.Context(), userID(r), req.Triggers)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"triggers": logs})
}

// GET /api/v1/journal/triggers?limit=5
func (h *Handler) ListTriggers(w http.ResponseWriter, r *http.Request) {
	logs, err := h.svc.Journal.Triggers(r.Context(), userID(r), intParam(r, "limit", 5))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"triggers": logs})
}

// GET /api/v1/journal/triggers/common
func (h *Handler) CommonTriggers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"triggers": models.CommonTriggers})
}

// GET /api/v1/report
func (h *Handler) Report(w http.ResponseWriter, r *http.Request) {
	rep, err := h.svc.Reports.Weekly(r.Context(), userID(r), time.Time{})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

// GET /api/v1/tips?personalised=true
func (h *Handler) Tips(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("personalised") != "true" {
		writeJSON(w, http.StatusOK, tips.Set{Tips: tips.Static()})
		return
	}
	rep, err := h.svc.Reports.Weekly(r.Context(), userID(r), time.Time{})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.advisor.Personalised(r.Context(), rep))
}

package adapthttp

import (
	"net/http"

	"bodylog/internal/domain"
)

type entryRequest struct {
	Date       string   `json:"date"`
	Weight     float64  `json:"weight"`
	Unit       string   `json:"unit"`
	WaistCm    *float64 `json:"waist_cm"`
	BodyFatPct *float64 `json:"bodyfat_pct"`
	Workout    *string  `json:"workout"`
	WorkoutMin *float64 `json:"workout_min"`
	Note       string   `json:"note"`
}

func (s *Server) handleEntries(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	profileID := profileQuery(r)

	switch r.Method {
	case http.MethodGet:
		items, err := s.entries.List(ctx, profileID, intQuery(r, "limit", 0))
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"profileId": profileID, "items": items})

	case http.MethodPut:
		var body entryRequest
		if err := parseJSON(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		unit, err := domain.ParseUnit(body.Unit)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		entry, err := s.entries.Record(ctx, domain.Entry{
			ProfileID:  profileID,
			Date:       body.Date,
			Weight:     body.Weight,
			WaistCm:    body.WaistCm,
			BodyFatPct: body.BodyFatPct,
			Workout:    body.Workout,
			WorkoutMin: body.WorkoutMin,
			Note:       body.Note,
		}, unit)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"entry": entry})

	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleEntry(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		methodNotAllowed(w)
		return
	}
	if err := s.entries.Delete(r.Context(), r.PathValue("profile"), r.PathValue("date")); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	summary, err := s.stats.Summary(r.Context(), profileQuery(r))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

package adapthttp

import (
	"net/http"

	"bodylog/internal/domain"
)

func (s *Server) handleProfiles(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	switch r.Method {
	case http.MethodGet:
		items, err := s.profiles.List(ctx)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": items})

	case http.MethodPost:
		var p domain.Profile
		if err := parseJSON(r, &p); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		created, err := s.profiles.Create(ctx, p)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)

	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")

	switch r.Method {
	case http.MethodGet:
		p, err := s.profiles.Get(ctx, id)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, p)

	case http.MethodPut:
		var p domain.Profile
		if err := parseJSON(r, &p); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		p.ID = id
		updated, err := s.profiles.Update(ctx, p)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, updated)

	case http.MethodDelete:
		if err := s.profiles.Delete(ctx, id); err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})

	default:
		methodNotAllowed(w)
	}
}

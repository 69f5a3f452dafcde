package adapthttp

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"bodylog/internal/domain"
)

const maxImportBytes = 32 << 20

func (s *Server) handleExportJSON(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	var buf bytes.Buffer
	if err := s.backup.ExportJSON(r.Context(), &buf); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition", attachment("bodylog_backup", "json"))
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	var buf bytes.Buffer
	if err := s.backup.ExportCSV(r.Context(), &buf, profileQuery(r)); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", attachment("bodylog", "csv"))
	_, _ = w.Write(buf.Bytes())
}

func attachment(prefix, ext string) string {
	return fmt.Sprintf("attachment; filename=%q", fmt.Sprintf("%s_%s.%s", prefix, domain.Today(time.Now()), ext))
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	report, err := s.backup.ImportJSON(r.Context(), http.MaxBytesReader(w, r.Body, maxImportBytes))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleWipe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if err := s.backup.Wipe(r.Context()); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

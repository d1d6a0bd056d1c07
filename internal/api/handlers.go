package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"deskbook/internal/metrics"
	"deskbook/internal/models"

	"github.com/xuri/excelize/v2"
)

// ReportBuilder is the slice of the exporter the API needs.
type ReportBuilder interface {
	BuildReport(ctx context.Context) (*excelize.File, error)
}

const desksPrefix = "/api/v1/desks/"

// handleDesks serves the collection routes: paged listing and create.
func (s *HTTPServer) handleDesks(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("desks")

	switch r.Method {
	case http.MethodGet:
		s.handleList(w, r)
	case http.MethodPost:
		s.handleCreate(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", "method_not_allowed")
	}
}

// handleDeskSubroutes dispatches everything under /api/v1/desks/.
func (s *HTTPServer) handleDeskSubroutes(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, desksPrefix), "/")
	if rest == "" {
		writeError(w, http.StatusNotFound, "not found", "not_found")
		return
	}
	parts := strings.Split(rest, "/")

	switch {
	case parts[0] == "export" && len(parts) == 1:
		metrics.IncHTTP("desks_export")
		s.handleExport(w, r)
	case parts[0] == "unbook" && len(parts) == 1:
		metrics.IncHTTP("desks_unbook_bulk")
		s.handleUnbookByNames(w, r)
	case parts[0] == "hotdesks" && len(parts) == 2 && parts[1] == "unbook":
		metrics.IncHTTP("desks_unbook_hotdesks")
		s.handleReleaseHotDesks(w, r)
	case len(parts) == 1:
		metrics.IncHTTP("desk")
		s.handleDesk(w, r, parts[0])
	case len(parts) == 2 && parts[1] == "book":
		metrics.IncHTTP("desk_book")
		s.handleBook(w, r, parts[0])
	case len(parts) == 2 && parts[1] == "unbook":
		metrics.IncHTTP("desk_unbook")
		s.handleUnbook(w, r, parts[0])
	default:
		writeError(w, http.StatusNotFound, "not found", "not_found")
	}
}

func (s *HTTPServer) handleList(w http.ResponseWriter, r *http.Request) {
	pageSize := s.cfg.PageSize
	if raw := strings.TrimSpace(r.URL.Query().Get("page_size")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "invalid page_size", "validation_error")
			return
		}
		pageSize = parsed
	}

	desks, next, err := s.desks.List(r.Context(), pageSize, r.URL.Query().Get("page_token"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	if desks == nil {
		desks = []models.Desk{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items":           desks,
		"next_page_token": next,
	})
}

func (s *HTTPServer) handleCreate(w http.ResponseWriter, r *http.Request) {
	var desk models.Desk
	if err := decodeBody(r, &desk); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body", "bad_request")
		return
	}

	if err := s.desks.Create(r.Context(), &desk); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, desk)
}

func (s *HTTPServer) handleDesk(w http.ResponseWriter, r *http.Request, id string) {
	switch r.Method {
	case http.MethodGet:
		desk, err := s.desks.Read(r.Context(), id)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, desk)

	case http.MethodPut:
		var desk models.Desk
		if err := decodeBody(r, &desk); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body", "bad_request")
			return
		}
		updated, err := s.desks.Update(r.Context(), id, desk)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, updated)

	case http.MethodDelete:
		// NotFound on a repeated delete means already satisfied; the
		// status is still 404 so callers can tell the record is gone.
		if err := s.desks.Delete(r.Context(), id); err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", "method_not_allowed")
	}
}

func (s *HTTPServer) handleBook(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", "method_not_allowed")
		return
	}

	var body struct {
		UserEmail string `json:"user_email"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body", "bad_request")
		return
	}

	desk, err := s.bookings.Book(r.Context(), id, body.UserEmail)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, desk)
}

func (s *HTTPServer) handleUnbook(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", "method_not_allowed")
		return
	}

	desk, err := s.bookings.UnbookOne(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, desk)
}

func (s *HTTPServer) handleUnbookByNames(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", "method_not_allowed")
		return
	}

	var body struct {
		Names []string `json:"names"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body", "bad_request")
		return
	}
	if len(body.Names) == 0 {
		writeError(w, http.StatusBadRequest, "names is required", "validation_error")
		return
	}

	released, err := s.bookings.UnbookByNames(r.Context(), body.Names...)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeReleased(w, released)
}

func (s *HTTPServer) handleReleaseHotDesks(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", "method_not_allowed")
		return
	}

	released, err := s.bookings.ReleaseHotDesks(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeReleased(w, released)
}

func (s *HTTPServer) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", "method_not_allowed")
		return
	}
	if s.exporter == nil {
		writeError(w, http.StatusNotFound, "export is not configured", "not_found")
		return
	}

	f, err := s.exporter.BuildReport(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	defer f.Close()

	fileName := fmt.Sprintf("desks_%s.xlsx", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	if err := f.Write(w); err != nil {
		s.logger.Error().Err(err).Msg("write export response")
	}
}

func writeReleased(w http.ResponseWriter, released []models.Desk) {
	if released == nil {
		released = []models.Desk{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"released": released,
		"count":    len(released),
	})
}

func decodeBody(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dst)
}

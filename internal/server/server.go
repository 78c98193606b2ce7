// Package server exposes an Editor over HTTP.
package server

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	planner "github.com/porticus-lab/go-planner"
	"github.com/porticus-lab/go-planner/canvas"
)

// Server serves one editor session.
type Server struct {
	editor *planner.Editor
	logger *slog.Logger
}

// New returns a server over e. A nil logger uses slog.Default().
func New(e *planner.Editor, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{editor: e, logger: logger}
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/pages", func(r chi.Router) {
		r.Get("/", s.handleListPages)
		r.Post("/", s.handleAddPage)
		r.Post("/{index}/activate", s.handleActivate)
	})

	r.Route("/objects", func(r chi.Router) {
		r.Post("/text", s.handleAddText)
		r.Post("/sticker", s.handleAddSticker)
		r.Patch("/selected", s.handleEditSelected)
		r.Delete("/selected", s.handleDeleteSelected)
	})

	r.Get("/export", s.handleExport)
	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"request_id", middleware.GetReqID(r.Context()),
			"elapsed", time.Since(start))
	})
}

type pageJSON struct {
	Index     int    `json:"index"`
	ID        string `json:"id"`
	Active    bool   `json:"active"`
	Blank     bool   `json:"blank"`
	Thumbnail string `json:"thumbnail,omitempty"`
}

type pagesResponse struct {
	Active int        `json:"active"`
	Pages  []pageJSON `json:"pages"`
}

func (s *Server) handleListPages(w http.ResponseWriter, _ *http.Request) {
	pages, active := s.editor.Pages()
	resp := pagesResponse{Active: active, Pages: make([]pageJSON, len(pages))}
	for i, p := range pages {
		pj := pageJSON{Index: i, ID: p.ID, Active: i == active, Blank: !p.HasSnapshot()}
		if p.Thumbnail != nil {
			pj.Thumbnail = "data:image/png;base64," + base64.StdEncoding.EncodeToString(p.Thumbnail)
		}
		resp.Pages[i] = pj
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAddPage(w http.ResponseWriter, r *http.Request) {
	idx, err := s.editor.AddPage(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int{"index": idx})
}

func (s *Server) handleActivate(w http.ResponseWriter, r *http.Request) {
	idx, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		http.Error(w, "invalid page index", http.StatusBadRequest)
		return
	}
	if err := s.editor.Select(r.Context(), idx); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"active": idx})
}

type objectResponse struct {
	ID   string `json:"id,omitempty"`
	Kind string `json:"kind,omitempty"`
}

func (s *Server) handleAddText(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	t, err := s.editor.AddText(req.Text)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if t == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusCreated, describe(t))
}

func (s *Server) handleAddSticker(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Src string `json:"src"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Src == "" {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	img, err := s.editor.AddSticker(r.Context(), req.Src)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if img == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusCreated, describe(img))
}

type editRequest struct {
	DX   float64 `json:"dx"`
	DY   float64 `json:"dy"`
	Text *string `json:"text"`
}

func (s *Server) handleEditSelected(w http.ResponseWriter, r *http.Request) {
	var req editRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	changed := false
	if req.Text != nil {
		ok, err := s.editor.EditSelectedText(*req.Text)
		if err != nil {
			s.writeError(w, err)
			return
		}
		changed = changed || ok
	}
	if req.DX != 0 || req.DY != 0 {
		ok, err := s.editor.MoveSelected(req.DX, req.DY)
		if err != nil {
			s.writeError(w, err)
			return
		}
		changed = changed || ok
	}
	if !changed {
		http.Error(w, "nothing selected", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteSelected(w http.ResponseWriter, _ *http.Request) {
	ok, err := s.editor.DeleteSelected()
	if err != nil {
		s.writeError(w, err)
		return
	}
	if !ok {
		http.Error(w, "nothing selected", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	res, err := s.editor.Export(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	if res == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+planner.FileName+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(res.Len()))
	w.Header().Set("X-Page-Count", strconv.Itoa(res.Pages()))
	if _, err := res.WriteTo(w); err != nil {
		s.logger.Warn("export response not sent", "error", err)
	}
}

func describe(obj canvas.Object) objectResponse {
	return objectResponse{ID: obj.ID(), Kind: obj.Kind()}
}

// writeError maps editor errors to status codes.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, planner.ErrPageOutOfRange):
		status = http.StatusNotFound
	case errors.Is(err, canvas.ErrNotTextbox):
		status = http.StatusConflict
	case errors.Is(err, planner.ErrClosed):
		status = http.StatusServiceUnavailable
	case errors.Is(err, planner.ErrExport):
		s.logger.Error("export failed", "error", err)
	default:
		// What is left comes from sticker loads.
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

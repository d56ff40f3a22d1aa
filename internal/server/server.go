// Package server exposes the screening session over HTTP for a browser
// front-end: JSON state, mutations, multipart resume upload and a
// Server-Sent Events stream of state changes.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/amishk599/screener/internal/model"
	"github.com/amishk599/screener/internal/session"
)

const (
	maxUploadBytes = 32 << 20
	maxBodyBytes   = 64 << 10
)

// Session is the part of session.Controller the API drives.
type Session interface {
	Jobs() []model.JobDescription
	Snapshot() (session.State, error)
	Subscribe() (<-chan session.Event, func(), error)
	SelectJob(id string) error
	UploadFiles(files []model.UploadedFile) error
	SelectFile(fileID string) error
	RetryAnalysis() error
	SendChatMessage(text string) (string, error)
}

// Server serves one session.
type Server struct {
	session  Session
	notifier model.AnalysisNotifier // nil disables sharing
	logger   *slog.Logger
	newID    func() string
	router   chi.Router
}

// New builds the router. notifier may be nil.
func New(sess Session, notifier model.AnalysisNotifier, logger *slog.Logger) *Server {
	s := &Server{
		session:  sess,
		notifier: notifier,
		logger:   logger,
		newID:    uuid.NewString,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Route("/api", func(r chi.Router) {
		r.Get("/jobs", s.handleJobs)
		r.Get("/state", s.handleState)
		r.Put("/job", s.handleSelectJob)
		r.Post("/files", s.handleUpload)
		r.Post("/files/{id}/select", s.handleSelectFile)
		r.Post("/analysis/retry", s.handleRetry)
		r.Post("/analysis/share", s.handleShare)
		r.Post("/chat", s.handleChat)
		r.Get("/events", s.handleEvents)
	})
	s.router = r
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.logger.Info("http server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func (s *Server) handleJobs(w http.ResponseWriter, _ *http.Request) {
	jobs := s.session.Jobs()
	if jobs == nil {
		jobs = []model.JobDescription{}
	}
	writeJSON(w, http.StatusOK, jobs)
}

func (s *Server) handleState(w http.ResponseWriter, _ *http.Request) {
	st, err := s.session.Snapshot()
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toStateDTO(st))
}

func (s *Server) handleSelectJob(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ID string `json:"id"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err))
		return
	}
	if err := s.session.SelectJob(body.ID); err != nil {
		s.writeError(w, err)
		return
	}
	s.handleState(w, r)
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(fmt.Errorf("parse upload: %w", err)))
		return
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File["files"]
	files := make([]model.UploadedFile, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody(fmt.Errorf("open %s: %w", fh.Filename, err)))
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody(fmt.Errorf("read %s: %w", fh.Filename, err)))
			return
		}
		uf := model.NewMemoryFile(s.newID(), fh.Filename, data)
		uf.ContentType = fh.Header.Get("Content-Type")
		files = append(files, uf)
	}

	if err := s.session.UploadFiles(files); err != nil {
		s.writeError(w, err)
		return
	}
	s.logger.Info("resumes uploaded", "count", len(files))
	s.handleState(w, r)
}

func (s *Server) handleSelectFile(w http.ResponseWriter, r *http.Request) {
	if err := s.session.SelectFile(chi.URLParam(r, "id")); err != nil {
		s.writeError(w, err)
		return
	}
	s.handleState(w, r)
}

func (s *Server) handleRetry(w http.ResponseWriter, r *http.Request) {
	if err := s.session.RetryAnalysis(); err != nil {
		s.writeError(w, err)
		return
	}
	s.handleState(w, r)
}

func (s *Server) handleShare(w http.ResponseWriter, r *http.Request) {
	if s.notifier == nil {
		writeJSON(w, http.StatusNotImplemented, errorBody(errors.New("sharing is not configured")))
		return
	}
	st, err := s.session.Snapshot()
	if err != nil {
		s.writeError(w, err)
		return
	}
	if !st.ProfileVisible() || st.SelectedFile == nil {
		writeJSON(w, http.StatusConflict, errorBody(errors.New("no finished analysis to share")))
		return
	}
	job, ok := model.FindJob(s.session.Jobs(), st.SelectedJobID)
	if !ok {
		job = model.JobDescription{ID: st.SelectedJobID}
	}
	if err := s.notifier.Notify(r.Context(), job, *st.SelectedFile, *st.Analysis.Analysis); err != nil {
		s.logger.Warn("share failed", "error", err)
		writeJSON(w, http.StatusBadGateway, errorBody(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "shared"})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Text string `json:"text"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err))
		return
	}
	id, err := s.session.SendChatMessage(body.Text)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"request_id": id})
}

// handleEvents streams one JSON state per event until the client goes away
// or the session closes.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, errorBody(errors.New("streaming unsupported")))
		return
	}
	events, cancel, err := s.session.Subscribe()
	if err != nil {
		s.writeError(w, err)
		return
	}
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			data, err := json.Marshal(toStateDTO(ev.State))
			if err != nil {
				s.logger.Error("encode event", "error", err)
				return
			}
			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Kind, data); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, model.ErrUnknownFile):
		status = http.StatusNotFound
	case errors.Is(err, model.ErrEmptyMessage):
		status = http.StatusBadRequest
	case errors.Is(err, model.ErrNothingToRetry):
		status = http.StatusConflict
	case errors.Is(err, model.ErrClosed):
		status = http.StatusServiceUnavailable
	default:
		s.logger.Error("request failed", "error", err)
	}
	writeJSON(w, status, errorBody(err))
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode body: %w", err)
	}
	return nil
}

func errorBody(err error) map[string]string {
	return map[string]string{"error": err.Error()}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"invoice-qa-review/internal/domain"
	"invoice-qa-review/internal/domain/model"
	"invoice-qa-review/internal/infra/logging"
	"invoice-qa-review/internal/infra/metrics"
)

// Reviewer is the slice of the review facade the web frontend needs.
type Reviewer interface {
	HandleReview(ctx context.Context, input string, mode model.ResolveMode) model.ReviewView
}

// Server is the browser form plus a JSON endpoint over the same facade.
type Server struct {
	reviewer    Reviewer
	defaultMode model.ResolveMode
	timeout     time.Duration
	log         *zerolog.Logger
}

func NewServer(reviewer Reviewer, defaultMode model.ResolveMode, requestTimeout time.Duration, logger *zerolog.Logger) *Server {
	if logger == nil {
		logger = logging.Nop()
	}
	if defaultMode == "" {
		defaultMode = model.ModeJob
	}
	return &Server{reviewer: reviewer, defaultMode: defaultMode, timeout: requestTimeout, log: logger}
}

// Router builds the chi router with the middleware chain applied.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(TraceID(), RequestLog(s.log), Recover(s.log))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Handle("/metrics", metrics.Handler())

	r.Group(func(r chi.Router) {
		r.Use(Timeout(s.timeout))
		r.Get("/", s.handleIndex)
		r.Post("/review", s.handleReviewForm)
		r.Post("/api/v1/reviews", s.handleReviewJSON)
	})
	return r
}

// Run serves on addr until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", addr).Msg("web server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("web server: %w", err)
	case <-ctx.Done():
		shCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shCtx); err != nil {
			return fmt.Errorf("web shutdown: %w", err)
		}
		return nil
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.renderHTML(w, http.StatusOK, pageData{Mode: s.defaultMode})
}

func (s *Server) handleReviewForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	mode, err := s.mode(r.PostFormValue("mode"))
	if err != nil {
		s.renderHTML(w, http.StatusBadRequest, pageData{
			Mode: s.defaultMode,
			View: &model.ReviewView{Status: model.ViewWarning, ErrorKind: domain.KindValidation, Error: err.Error()},
		})
		return
	}
	input := r.PostFormValue("identifier")
	view := s.reviewer.HandleReview(r.Context(), input, mode)
	s.renderHTML(w, statusFor(view), pageData{Mode: mode, Input: input, View: &view})
}

type reviewRequest struct {
	Identifier string `json:"identifier"`
	Mode       string `json:"mode"`
}

func (s *Server) handleReviewJSON(w http.ResponseWriter, r *http.Request) {
	var req reviewRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, model.ReviewView{
			Status: model.ViewWarning, ErrorKind: domain.KindValidation, Error: "invalid request body",
		})
		return
	}
	mode, err := s.mode(req.Mode)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, model.ReviewView{
			Status: model.ViewWarning, Identifier: req.Identifier, ErrorKind: domain.KindValidation, Error: err.Error(),
		})
		return
	}
	view := s.reviewer.HandleReview(r.Context(), req.Identifier, mode)
	writeJSON(w, statusFor(view), view)
}

func (s *Server) mode(v string) (model.ResolveMode, error) {
	if v == "" {
		return s.defaultMode, nil
	}
	return model.ParseResolveMode(v)
}

// statusFor maps a view to the HTTP status of the response carrying it.
func statusFor(v model.ReviewView) int {
	switch v.Status {
	case model.ViewOK, model.ViewDecodeError:
		return http.StatusOK
	case model.ViewWarning:
		return http.StatusBadRequest
	}
	switch v.ErrorKind {
	case domain.KindReference:
		return http.StatusUnprocessableEntity
	case domain.KindFetch, domain.KindTransport, domain.KindCompletion:
		return http.StatusBadGateway
	case domain.KindCanceled:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

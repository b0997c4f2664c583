package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Zuo-Peng/chatmap/internal/chatmap"
	"github.com/Zuo-Peng/chatmap/internal/parse"
)

// Options configures how uploaded exports are converted.
type Options struct {
	Pairing  chatmap.Options
	Ignore   []string
	MaxBytes int64
}

type Server struct {
	router *chi.Mux
	addr   string
	opts   Options
}

func NewServer(addr string, opts Options) *Server {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	s := &Server{
		router: router,
		addr:   addr,
		opts:   opts,
	}

	router.Get("/health", s.health)
	router.Route("/api/v1", func(r chi.Router) {
		r.Post("/maps", s.convert)
	})

	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("API server starting", "addr", s.addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		slog.Info("API server stopping")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, "application/json", map[string]string{"status": "ok"})
}

// convert handles POST /api/v1/maps. The body is a raw export; the include
// query parameters (photos, videos, audios, text) override the defaults.
func (s *Server) convert(w http.ResponseWriter, r *http.Request) {
	opts, err := pairingOptions(r, s.opts.Pairing)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	body := io.Reader(r.Body)
	if s.opts.MaxBytes > 0 {
		body = http.MaxBytesReader(w, r.Body, s.opts.MaxBytes)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("export larger than %d bytes", tooLarge.Limit))
			return
		}
		writeError(w, http.StatusBadRequest, fmt.Sprintf("read body: %v", err))
		return
	}

	res, err := chatmap.Build(string(data), opts, parse.WithIgnore(s.opts.Ignore...))
	if err != nil {
		if errors.Is(err, parse.ErrUnsupportedExport) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		slog.Error("convert failed", "error", err, "request_id", middleware.GetReqID(r.Context()))
		writeError(w, http.StatusInternalServerError, "convert failed")
		return
	}

	fc := chatmap.Merge([]*chatmap.Result{res})
	slog.Debug("converted export",
		"format", res.Meta.Format.String(),
		"messages", len(res.Messages),
		"features", len(fc.Features),
	)
	writeJSON(w, http.StatusOK, "application/geo+json", fc)
}

var includeParams = []struct {
	name string
	set  func(*chatmap.Options, bool)
}{
	{"photos", func(o *chatmap.Options, v bool) { o.IncludePhotos = v }},
	{"videos", func(o *chatmap.Options, v bool) { o.IncludeVideos = v }},
	{"audios", func(o *chatmap.Options, v bool) { o.IncludeAudios = v }},
	{"text", func(o *chatmap.Options, v bool) { o.IncludeText = v }},
}

func pairingOptions(r *http.Request, defaults chatmap.Options) (chatmap.Options, error) {
	opts := defaults
	q := r.URL.Query()
	for _, p := range includeParams {
		raw := q.Get(p.name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return opts, fmt.Errorf("invalid %s=%q", p.name, raw)
		}
		p.set(&opts, v)
	}
	return opts, nil
}

func writeJSON(w http.ResponseWriter, code int, contentType string, v any) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("write response", "error", err)
	}
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, "application/json", map[string]string{"error": msg})
}

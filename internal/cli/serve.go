package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"github.com/spf13/cobra"

	"github.com/jscodecleaner/htmlutils"
	"github.com/jscodecleaner/htmlutils/internal/config"
	"github.com/jscodecleaner/htmlutils/internal/resource"
)

// maxBodySize limits the size of request bodies.
const maxBodySize = 10 << 20

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTML operations over HTTP",
	Long: `Starts an HTTP server with the following endpoints:

  POST /sanitize   sanitize the request body (query: noMdConv, linkify)
  POST /strip      return the text content of the request body
  POST /resolve    resolve resource images and links in the request body
  GET  /healthz    liveness check`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides the config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	addr := cfg.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           newRouter(cfg, log),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Warn().Str("addr", addr).Msg("Listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	return nil
}

type server struct {
	cfg      *config.Config
	resolver *resource.Resolver
}

func newRouter(c *config.Config, logger zerolog.Logger) http.Handler {
	s := &server{
		cfg:      c,
		resolver: resource.NewResolver(c.ResourceList(), c.Resources.BaseURL, logger),
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(hlog.NewHandler(logger))
	r.Use(hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Debug().
			Str("method", r.Method).
			Stringer("url", r.URL).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Msg("Request")
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = io.WriteString(w, "ok\n")
	})
	r.Post("/sanitize", s.handleSanitize)
	r.Post("/strip", s.handleStrip)
	r.Post("/resolve", s.handleResolve)

	return r
}

func (s *server) handleSanitize(w http.ResponseWriter, r *http.Request) {
	opts := s.cfg.SanitizeOptions()
	for name, dst := range map[string]*bool{
		"noMdConv": &opts.AddNoMdConvClass,
		"linkify":  &opts.Linkify,
	} {
		v := r.URL.Query().Get(name)
		if v == "" {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			http.Error(w, fmt.Sprintf("invalid %s parameter: %q", name, v), http.StatusBadRequest)
			return
		}
		*dst = b
	}

	body, ok := readBody(w, r)
	if !ok {
		return
	}

	out, err := htmlutils.SanitizeHTMLReader(body, opts)
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("Failed to sanitize request body")
		http.Error(w, "failed to read request body", http.StatusBadRequest)
		return
	}
	writeHTML(w, out)
}

func (s *server) handleStrip(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}

	out, err := htmlutils.StripHTMLReader(body)
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("Failed to strip request body")
		http.Error(w, "failed to read request body", http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, out)
}

func (s *server) handleResolve(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}

	data, err := io.ReadAll(body)
	if err != nil {
		http.Error(w, "failed to read request body", http.StatusBadRequest)
		return
	}

	out, err := s.resolver.Rewrite(string(data))
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("Failed to resolve resources")
		http.Error(w, "failed to resolve resources", http.StatusInternalServerError)
		return
	}
	writeHTML(w, out)
}

func readBody(w http.ResponseWriter, r *http.Request) (io.Reader, bool) {
	if r.Body == nil {
		http.Error(w, "missing request body", http.StatusBadRequest)
		return nil, false
	}
	return http.MaxBytesReader(w, r.Body, maxBodySize), true
}

func writeHTML(w http.ResponseWriter, s string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = io.WriteString(w, s)
}

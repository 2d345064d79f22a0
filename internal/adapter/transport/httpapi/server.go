package httpapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/dayanaadylkhanova/altcha-pow/internal/adapter/form"
)

type Server struct {
	log       *slog.Logger
	srv       *http.Server
	shutdownT time.Duration
}

func NewServer(log *slog.Logger, addr string, shutdown time.Duration, settings form.Settings, captcha Captcha) *Server {
	return &Server{
		log: log,
		srv: &http.Server{
			Addr:              addr,
			Handler:           NewRouter(log, settings, captcha),
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      15 * time.Second,
		},
		shutdownT: shutdown,
	}
}

// Run serves until ctx is cancelled, then drains in-flight requests for at
// most the shutdown wait.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	s.log.Info("http server started", "addr", ln.Addr().String())

	errCh := make(chan error, 1)
	go func() { errCh <- s.srv.Serve(ln) }()

	select {
	case <-ctx.Done():
		s.log.Info("shutdown: stopping http server")
		sctx, cancel := context.WithTimeout(context.Background(), s.shutdownT)
		defer cancel()
		if err := s.srv.Shutdown(sctx); err != nil {
			s.log.Warn("shutdown: force-close http connections", "err", err)
			_ = s.srv.Close()
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	}
}

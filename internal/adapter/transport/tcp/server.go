package tcp

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dayanaadylkhanova/altcha-pow/internal/adapter/form"
	"github.com/dayanaadylkhanova/altcha-pow/internal/service"
)

const (
	ReplyOK = "ok"

	defaultSessionTimeout = time.Minute
	// one solution line plus slack for the newline and stray whitespace
	maxLineSize = service.MaxPayloadSize + 64
)

// Server speaks a line protocol: it writes the encoded challenge, reads one
// encoded solution and answers "ok" or the generic failure message.
type Server struct {
	log       *slog.Logger
	addr      string
	settings  form.Settings
	captcha   Captcha
	ln        net.Listener
	wg        sync.WaitGroup
	connsMu   sync.Mutex
	active    map[net.Conn]struct{}
	shutdownT time.Duration
}

func NewServer(log *slog.Logger, addr string, shutdown time.Duration, settings form.Settings, captcha Captcha) *Server {
	return &Server{
		log:       log,
		addr:      addr,
		settings:  settings,
		shutdownT: shutdown,
		captcha:   captcha,
		active:    make(map[net.Conn]struct{}),
	}
}

func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	s.ln = ln
	s.log.Info("tcp server started", "addr", s.addr, "complexity", s.settings.Complexity, "expires", s.settings.Expires.String())

	errCh := make(chan error, 1)
	go func() { errCh <- s.acceptLoop(ctx) }()

	select {
	case <-ctx.Done():
		s.log.Info("shutdown: closing listener")
		_ = s.ln.Close()

		s.connsMu.Lock()
		for c := range s.active {
			_ = c.SetDeadline(time.Now().Add(200 * time.Millisecond))
			if tc, ok := c.(*net.TCPConn); ok {
				_ = tc.CloseWrite()
			}
		}
		s.connsMu.Unlock()

		done := make(chan struct{})
		go func() { s.wg.Wait(); close(done) }()
		select {
		case <-done:
			s.log.Info("shutdown: all connections drained")
		case <-time.After(s.shutdownT):
			s.log.Warn("shutdown: force-close remaining connections")
			s.connsMu.Lock()
			for c := range s.active {
				_ = c.Close()
			}
			s.connsMu.Unlock()
		}
		return nil

	case err := <-errCh:
		return err
	}
}

func (s *Server) acceptLoop(ctx context.Context) error {
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				s.log.Warn("temporary accept error", "err", err)
				time.Sleep(50 * time.Millisecond)
				continue
			}
			return fmt.Errorf("accept: %w", err)
		}
		s.track(conn, true)
		s.wg.Add(1)
		go func(c net.Conn) {
			defer s.wg.Done()
			defer s.track(c, false)
			s.handle(ctx, c)
		}(conn)
	}
}

func (s *Server) track(c net.Conn, add bool) {
	s.connsMu.Lock()
	if add {
		s.active[c] = struct{}{}
	} else {
		delete(s.active, c)
	}
	s.connsMu.Unlock()
}

func (s *Server) sessionTimeout() time.Duration {
	if s.settings.Expires > 0 {
		return 2 * s.settings.Expires
	}
	return defaultSessionTimeout
}

func (s *Server) handle(ctx context.Context, conn net.Conn) {
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(s.sessionTimeout()))

	log := s.log.With("conn_id", uuid.NewString())
	if ra := conn.RemoteAddr(); ra != nil {
		log = log.With("remote", ra.String())
	}

	bw := bufio.NewWriter(conn)
	br := bufio.NewReader(io.LimitReader(conn, maxLineSize))

	challenge, err := s.captcha.PrepareChallenge(s.settings)
	if err != nil {
		_, _ = bw.WriteString(form.NotConfiguredMessage + "\n")
		_ = bw.Flush()
		log.Error("challenge create failed", "err", err)
		return
	}
	_, _ = bw.WriteString(challenge + "\n")
	if err := bw.Flush(); err != nil {
		log.Debug("write challenge failed", "err", err)
		return
	}
	log.Debug("challenge issued")

	line, err := br.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		log.Debug("read solution failed", "err", err)
		return
	}

	outcome := s.captcha.ValidateSubmission(ctx, strings.TrimSpace(line), s.settings)
	if !outcome.OK() {
		_, _ = bw.WriteString(form.UserMessage(outcome) + "\n")
		_ = bw.Flush()
		log.Debug("captcha failed", "outcome", outcome.String())
		return
	}

	_, _ = bw.WriteString(ReplyOK + "\n")
	_ = bw.Flush()
	log.Info("success")
}

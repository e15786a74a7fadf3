// Package chassis serves the wordsort API over TLS on one port:
//
//   - TCP: HTTP/1.1 and HTTP/2
//   - UDP: QUIC, demuxed by ALPN into HTTP/3 ("h3") and MCP (mcpquic.ALPN)
//
// TCP responses advertise HTTP/3 through Alt-Svc.
package chassis

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"github.com/hazyhaar/wordsort/pkg/mcpquic"
	"github.com/mark3labs/mcp-go/server"
	"github.com/quic-go/quic-go"
	"github.com/quic-go/quic-go/http3"
)

// Config configures a Server. TLS is required; see LoadTLSConfig.
type Config struct {
	Addr      string
	TLS       *tls.Config
	Handler   http.Handler
	MCPServer *server.MCPServer // nil disables MCP over QUIC
	Logger    *slog.Logger
}

type Server struct {
	cfg    Config
	logger *slog.Logger
	mcp    *mcpquic.Handler

	mu      sync.Mutex
	tcp     *http.Server
	h3      *http3.Server
	quicLn  *quic.Listener
	stopped bool
}

func New(cfg Config) (*Server, error) {
	if cfg.TLS == nil {
		return nil, errors.New("chassis: TLS config required")
	}
	if cfg.Handler == nil {
		return nil, errors.New("chassis: handler required")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	s := &Server{cfg: cfg, logger: cfg.Logger}
	if cfg.MCPServer != nil {
		s.mcp = mcpquic.NewHandler(cfg.MCPServer, cfg.Logger)
	}
	return s, nil
}

// Start listens on TCP and UDP and blocks until ctx is done or a listener
// fails. Call Shutdown afterwards.
func (s *Server) Start(ctx context.Context) error {
	handler := securityHeaders(altSvc(s.cfg.Addr, s.cfg.Handler))

	tcpTLS := s.cfg.TLS.Clone()
	tcpTLS.NextProtos = []string{"h2", "http/1.1"}
	tcpLn, err := tls.Listen("tcp", s.cfg.Addr, tcpTLS)
	if err != nil {
		return fmt.Errorf("TCP listen: %w", err)
	}
	quicLn, err := quic.ListenAddr(s.cfg.Addr, s.cfg.TLS, mcpquic.QUICConfig())
	if err != nil {
		tcpLn.Close()
		return fmt.Errorf("QUIC listen: %w", err)
	}

	s.mu.Lock()
	s.tcp = &http.Server{Handler: handler, TLSConfig: tcpTLS}
	s.h3 = &http3.Server{Handler: handler}
	s.quicLn = quicLn
	s.mu.Unlock()

	s.logger.Info("chassis listening", "addr", s.cfg.Addr, "mcp", s.mcp != nil)

	errCh := make(chan error, 2)
	go func() {
		if err := s.tcp.Serve(tcpLn); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("TCP: %w", err)
		}
	}()
	go func() {
		if err := s.acceptQUIC(ctx, quicLn); err != nil {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		return err
	}
}

func (s *Server) acceptQUIC(ctx context.Context, ln *quic.Listener) error {
	for {
		conn, err := ln.Accept(ctx)
		if err != nil {
			if ctx.Err() != nil || s.isStopped() {
				return nil
			}
			return fmt.Errorf("QUIC accept: %w", err)
		}
		go s.dispatch(ctx, conn)
	}
}

// dispatch routes a QUIC connection by its negotiated ALPN.
func (s *Server) dispatch(ctx context.Context, conn *quic.Conn) {
	switch alpn := conn.ConnectionState().TLS.NegotiatedProtocol; alpn {
	case "h3":
		if err := s.h3.ServeQUICConn(conn); err != nil {
			s.logger.Debug("http3 conn closed", "remote", conn.RemoteAddr(), "error", err)
		}
	case mcpquic.ALPN:
		if s.mcp == nil {
			conn.CloseWithError(mcpquic.ConnErrorDisabled, "MCP disabled")
			return
		}
		s.mcp.ServeConn(ctx, conn)
	default:
		s.logger.Warn("unsupported ALPN", "alpn", alpn, "remote", conn.RemoteAddr())
		conn.CloseWithError(mcpquic.ConnErrorUnsupportedALPN, "unsupported ALPN: "+alpn)
	}
}

func (s *Server) isStopped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopped
}

// Shutdown drains TCP connections and closes the QUIC listener.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true

	var errs []error
	if s.tcp != nil {
		errs = append(errs, s.tcp.Shutdown(ctx))
	}
	if s.h3 != nil {
		errs = append(errs, s.h3.Close())
	}
	if s.quicLn != nil {
		errs = append(errs, s.quicLn.Close())
	}
	s.logger.Info("chassis stopped")
	return errors.Join(errs...)
}

func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "no-referrer")
		next.ServeHTTP(w, r)
	})
}

// altSvc advertises HTTP/3 on the listening port.
func altSvc(addr string, next http.Handler) http.Handler {
	_, port, _ := net.SplitHostPort(addr)
	if port == "" {
		port = "443"
	}
	value := fmt.Sprintf(`h3=":%s"; ma=86400`, port)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Alt-Svc", value)
		next.ServeHTTP(w, r)
	})
}

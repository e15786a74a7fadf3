package mcpquic

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/hazyhaar/wordsort/pkg/kit"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/quic-go/quic-go"
)

// Handler serves MCP sessions on QUIC connections handed over by the
// chassis after ALPN demux.
type Handler struct {
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

func NewHandler(mcpSrv *server.MCPServer, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{mcpServer: mcpSrv, logger: logger}
}

// ServeConn runs one MCP session on the first stream the peer opens.
func (h *Handler) ServeConn(ctx context.Context, conn *quic.Conn) {
	remote := conn.RemoteAddr().String()

	stream, err := conn.AcceptStream(ctx)
	if err != nil {
		h.logger.Warn("mcp accept stream", "remote", remote, "error", err)
		conn.CloseWithError(ConnErrorProtocolViolation, "no stream")
		return
	}
	if err := ReadMagic(stream); err != nil {
		h.logger.Warn("mcp preamble rejected", "remote", remote, "error", err)
		stream.CancelRead(StreamErrorProtocolConfusion)
		stream.CancelWrite(StreamErrorProtocolConfusion)
		conn.CloseWithError(ConnErrorProtocolViolation, "invalid preamble")
		return
	}

	err = h.serveStream(ctx, remote, stream)
	if errors.Is(err, bufio.ErrTooLong) {
		stream.CancelRead(StreamErrorMessageTooLarge)
		conn.CloseWithError(ConnErrorProtocolViolation, "message too large")
		return
	}
	stream.Close()
}

// serveStream reads newline-delimited JSON-RPC messages from rw until EOF
// and writes each response back as one line.
func (h *Handler) serveStream(ctx context.Context, remote string, rw io.ReadWriter) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sess := &session{
		id:            "quic_" + uuid.NewString()[:8],
		notifications: make(chan mcp.JSONRPCNotification, 64),
		w:             rw,
	}
	if err := h.mcpServer.RegisterSession(ctx, sess); err != nil {
		h.logger.Error("mcp register session", "remote", remote, "error", err)
		return err
	}
	defer h.mcpServer.UnregisterSession(ctx, sess.id)

	h.logger.Info("mcp session started", "session", sess.id, "remote", remote)
	ctx = kit.WithTransport(ctx, kit.TransportMCPQUIC)
	ctx = h.mcpServer.WithContext(ctx, sess)
	go sess.forwardNotifications(ctx)

	sc := bufio.NewScanner(rw)
	sc.Buffer(make([]byte, 0, 64<<10), MaxMessageSize)
	for sc.Scan() {
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		resp := h.mcpServer.HandleMessage(ctx, bytes.Clone(line))
		if resp == nil {
			continue
		}
		if err := sess.writeJSON(resp); err != nil {
			h.logger.Warn("mcp write", "session", sess.id, "error", err)
			return err
		}
	}
	err := sc.Err()
	if err != nil && ctx.Err() == nil {
		h.logger.Warn("mcp read", "session", sess.id, "error", err)
	}
	h.logger.Info("mcp session ended", "session", sess.id, "remote", remote)
	return err
}

// session implements server.ClientSession. Responses and notifications
// share the stream, so writes are serialized.
type session struct {
	id            string
	notifications chan mcp.JSONRPCNotification
	initialized   atomic.Bool

	mu sync.Mutex
	w  io.Writer
}

func (s *session) SessionID() string                                   { return s.id }
func (s *session) NotificationChannel() chan<- mcp.JSONRPCNotification { return s.notifications }
func (s *session) Initialize()                                         { s.initialized.Store(true) }
func (s *session) Initialized() bool                                   { return s.initialized.Load() }

func (s *session) writeJSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	data = append(data, '\n')
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err = s.w.Write(data)
	return err
}

func (s *session) forwardNotifications(ctx context.Context) {
	for {
		select {
		case n := <-s.notifications:
			_ = s.writeJSON(n)
		case <-ctx.Done():
			return
		}
	}
}

// Package mcpquic carries MCP JSON-RPC over a single bidirectional QUIC
// stream. The client opens the stream, writes the magic preamble, then
// both sides exchange newline-delimited JSON messages.
package mcpquic

import (
	"bytes"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/quic-go/quic-go"
)

const (
	// ALPN is negotiated by clients that want the MCP endpoint.
	ALPN = "wordsort-mcp-v1"
	// Magic opens every MCP stream.
	Magic = "WSM1"
	// MaxMessageSize bounds one JSON-RPC line.
	MaxMessageSize = 4 << 20

	DefaultIdleTimeout = 5 * time.Minute
	DefaultKeepAlive   = 30 * time.Second
	initializeTimeout  = 10 * time.Second
)

// Stream-level error codes.
const (
	StreamErrorProtocolConfusion quic.StreamErrorCode = 0x02
	StreamErrorMessageTooLarge   quic.StreamErrorCode = 0x03
)

// Connection-level error codes.
const (
	ConnErrorNoError           quic.ApplicationErrorCode = 0x00
	ConnErrorUnsupportedALPN   quic.ApplicationErrorCode = 0x01
	ConnErrorProtocolViolation quic.ApplicationErrorCode = 0x03
	ConnErrorDisabled          quic.ApplicationErrorCode = 0x10
)

var (
	ErrInvalidMagic    = errors.New("invalid stream preamble")
	ErrUnsupportedALPN = errors.New("ALPN negotiation failed: " + ALPN + " not selected")
	ErrNotConnected    = errors.New("client not connected")
)

// QUICConfig is shared by the server chassis and the client.
func QUICConfig() *quic.Config {
	return &quic.Config{
		MaxStreamReceiveWindow:     8 << 20,
		MaxConnectionReceiveWindow: 32 << 20,
		MaxIdleTimeout:             DefaultIdleTimeout,
		KeepAlivePeriod:            DefaultKeepAlive,
	}
}

// ClientTLSConfig offers only the MCP ALPN. insecure skips certificate
// verification for self-signed development servers.
func ClientTLSConfig(insecure bool) *tls.Config {
	return &tls.Config{
		NextProtos:         []string{ALPN},
		MinVersion:         tls.VersionTLS13,
		InsecureSkipVerify: insecure,
	}
}

// ReadMagic consumes the preamble and fails unless it matches Magic.
func ReadMagic(r io.Reader) error {
	buf := make([]byte, len(Magic))
	if _, err := io.ReadFull(r, buf); err != nil {
		return fmt.Errorf("read preamble: %w", err)
	}
	if !bytes.Equal(buf, []byte(Magic)) {
		return fmt.Errorf("%w: got %q", ErrInvalidMagic, buf)
	}
	return nil
}

// WriteMagic sends the preamble. Clients call it right after opening the stream.
func WriteMagic(w io.Writer) error {
	if _, err := io.WriteString(w, Magic); err != nil {
		return fmt.Errorf("write preamble: %w", err)
	}
	return nil
}

package auth

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-authgate/authbridge/internal/client"
	"github.com/go-authgate/authbridge/internal/core"
	"github.com/go-authgate/authbridge/internal/logger"

	"github.com/Azure/go-ntlmssp"
)

var _ core.DirectoryVerifier = (*NTLMHTTPDirectory)(nil)

// maxDrainBytes bounds how much of a response body is read before closing.
const maxDrainBytes = 64 << 10

// errNoHandshake marks a 2xx that arrived before any credentials were sent.
var errNoHandshake = errors.New("endpoint accepted the request without an NTLM handshake")

var ntlmSignature = []byte("NTLMSSP\x00")

// ntlmAuthenticateMessage is the NTLM message type that carries credentials.
const ntlmAuthenticateMessage = 3

// NTLMHTTPDirectory verifies passwords by completing an NTLM handshake
// against an HTTP endpoint that is protected by Windows authentication.
//
// NTLM authenticates the TCP connection, so every Verify runs on its own
// connection pool and no authenticated connection outlives the call.
type NTLMHTTPDirectory struct {
	endpoint           string
	domain             string
	timeout            time.Duration
	insecureSkipVerify bool
}

// NewNTLMHTTPDirectory creates a verifier for endpoint. timeout bounds the
// whole handshake.
func NewNTLMHTTPDirectory(
	endpoint, domain string,
	timeout time.Duration,
	insecureSkipVerify bool,
) *NTLMHTTPDirectory {
	return &NTLMHTTPDirectory{
		endpoint:           endpoint,
		domain:             domain,
		timeout:            timeout,
		insecureSkipVerify: insecureSkipVerify,
	}
}

// Verify returns true when the endpoint accepts DOMAIN\username after an
// NTLM authenticate message. 401 and 403 are rejections; anything else
// non-2xx, and a 2xx without a handshake, is a fault.
func (d *NTLMHTTPDirectory) Verify(ctx context.Context, username, password string) (bool, error) {
	if password == "" {
		return false, nil
	}

	principal, err := NewPrincipal(d.domain, username)
	if err != nil {
		logger.Debugw("rejecting directory principal", "error", err)
		return false, nil
	}

	tracker := &handshakeTracker{}
	httpClient, release, err := client.NewExchangeClient(d.timeout, d.insecureSkipVerify,
		func(rt http.RoundTripper) http.RoundTripper {
			tracker.next = rt
			return ntlmssp.Negotiator{RoundTripper: tracker}
		})
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrDirectoryUnavailable, err)
	}
	defer release()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.endpoint, nil)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrDirectoryUnavailable, err)
	}
	// The negotiator takes credentials from basic auth and never sends
	// them as basic auth once the server asks for NTLM.
	req.SetBasicAuth(principal.String(), password)

	resp, err := httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrDirectoryUnavailable, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrainBytes))

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		if !tracker.authenticated() {
			return false, fmt.Errorf("%w: %w", ErrDirectoryUnavailable, errNoHandshake)
		}
		return true, nil
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return false, nil
	default:
		return false, fmt.Errorf("%w: HTTP %d", ErrDirectoryUnavailable, resp.StatusCode)
	}
}

// Name returns provider name for logging
func (d *NTLMHTTPDirectory) Name() string {
	return "http_ntlm"
}

// handshakeTracker sits below the negotiator and records whether an NTLM
// authenticate message went out.
type handshakeTracker struct {
	next http.RoundTripper
	sent atomic.Bool
}

func (h *handshakeTracker) RoundTrip(req *http.Request) (*http.Response, error) {
	if isNTLMAuthenticate(req.Header.Get("Authorization")) {
		h.sent.Store(true)
	}
	return h.next.RoundTrip(req)
}

func (h *handshakeTracker) authenticated() bool {
	return h.sent.Load()
}

func isNTLMAuthenticate(header string) bool {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || (!strings.EqualFold(scheme, "NTLM") && !strings.EqualFold(scheme, "Negotiate")) {
		return false
	}
	msg, err := base64.StdEncoding.DecodeString(strings.TrimSpace(token))
	if err != nil || len(msg) < 12 {
		return false
	}
	return bytes.Equal(msg[:8], ntlmSignature) &&
		binary.LittleEndian.Uint32(msg[8:12]) == ntlmAuthenticateMessage
}

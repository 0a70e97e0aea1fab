package auth

import (
	"context"
	"crypto/hmac"
	"crypto/md5" // #nosec G501 -- NTLMv2 is defined over HMAC-MD5
	"crypto/rand"
	"encoding/base64"
	"encoding/binary"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf16"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/md4"
)

// fakeNTLMServer behaves like IIS with Windows authentication: it runs the
// negotiate, challenge, authenticate exchange, checks the NTLMv2 response
// against its password table, and then trusts the whole TCP connection.
type fakeNTLMServer struct {
	*httptest.Server
	passwords map[string]string // upper-case user -> password

	mu            sync.Mutex
	challenges    map[string][]byte
	authenticated map[string]bool
	authMessages  int
}

func newFakeNTLMServer(t *testing.T, passwords map[string]string) *fakeNTLMServer {
	t.Helper()
	s := &fakeNTLMServer{
		passwords:     passwords,
		challenges:    make(map[string][]byte),
		authenticated: make(map[string]bool),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)
	return s
}

func (s *fakeNTLMServer) handle(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conn := r.RemoteAddr
	header := r.Header.Get("Authorization")
	if header == "" {
		if s.authenticated[conn] {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.Header().Set("WWW-Authenticate", "NTLM")
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	_, token, _ := strings.Cut(header, " ")
	msg, err := base64.StdEncoding.DecodeString(token)
	if err != nil || len(msg) < 12 || string(msg[:8]) != "NTLMSSP\x00" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	switch binary.LittleEndian.Uint32(msg[8:12]) {
	case 1:
		challenge := make([]byte, 8)
		_, _ = rand.Read(challenge)
		s.challenges[conn] = challenge
		w.Header().Set("WWW-Authenticate", "NTLM "+base64.StdEncoding.EncodeToString(challengeMessage(challenge)))
		w.WriteHeader(http.StatusUnauthorized)
	case 3:
		s.authMessages++
		challenge := s.challenges[conn]
		delete(s.challenges, conn)
		if challenge != nil && s.checkResponse(challenge, msg) {
			s.authenticated[conn] = true
			w.WriteHeader(http.StatusOK)
			return
		}
		w.Header().Set("WWW-Authenticate", "NTLM")
		w.WriteHeader(http.StatusUnauthorized)
	default:
		w.WriteHeader(http.StatusBadRequest)
	}
}

func (s *fakeNTLMServer) authCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.authMessages
}

// challengeMessage builds a minimal unicode CHALLENGE with an empty target
// info list.
func challengeMessage(challenge []byte) []byte {
	const headerLen = 48
	msg := make([]byte, headerLen, headerLen+4)
	copy(msg, "NTLMSSP\x00")
	binary.LittleEndian.PutUint32(msg[8:], 2)
	binary.LittleEndian.PutUint32(msg[16:], headerLen) // target name offset
	binary.LittleEndian.PutUint32(msg[20:], 1)         // NEGOTIATE_UNICODE
	copy(msg[24:32], challenge)
	binary.LittleEndian.PutUint16(msg[40:], 4) // target info len
	binary.LittleEndian.PutUint16(msg[42:], 4)
	binary.LittleEndian.PutUint32(msg[44:], headerLen)
	return append(msg, 0, 0, 0, 0) // MsvAvEOL
}

func messageField(msg []byte, at int) []byte {
	n := int(binary.LittleEndian.Uint16(msg[at:]))
	off := int(binary.LittleEndian.Uint32(msg[at+4:]))
	if off+n > len(msg) {
		return nil
	}
	return msg[off : off+n]
}

func (s *fakeNTLMServer) checkResponse(challenge, msg []byte) bool {
	if len(msg) < 44 {
		return false
	}
	nt := messageField(msg, 20)
	domain := decodeUTF16(messageField(msg, 28))
	user := decodeUTF16(messageField(msg, 36))
	if len(nt) <= 16 || !strings.EqualFold(domain, "CORP") {
		return false
	}
	password, ok := s.passwords[strings.ToUpper(user)]
	if !ok {
		return false
	}

	h := md4.New()
	h.Write(encodeUTF16(password))
	v2 := hmacMD5(h.Sum(nil), encodeUTF16(strings.ToUpper(user)+domain))
	proof := hmacMD5(v2, challenge, nt[16:])
	return hmac.Equal(proof, nt[:16])
}

func hmacMD5(key []byte, data ...[]byte) []byte {
	mac := hmac.New(md5.New, key)
	for _, d := range data {
		mac.Write(d)
	}
	return mac.Sum(nil)
}

func encodeUTF16(s string) []byte {
	units := utf16.Encode([]rune(s))
	b := make([]byte, 2*len(units))
	for i, u := range units {
		binary.LittleEndian.PutUint16(b[2*i:], u)
	}
	return b
}

func decodeUTF16(b []byte) string {
	units := make([]uint16, len(b)/2)
	for i := range units {
		units[i] = binary.LittleEndian.Uint16(b[2*i:])
	}
	return string(utf16.Decode(units))
}

func newNTLMTestDirectory(endpoint string) *NTLMHTTPDirectory {
	return NewNTLMHTTPDirectory(endpoint, "CORP", 2*time.Second, false)
}

func TestNTLMHTTPDirectory_Verify(t *testing.T) {
	server := newFakeNTLMServer(t, map[string]string{"ALICE": "correct"})
	d := newNTLMTestDirectory(server.URL)

	ok, err := d.Verify(context.Background(), "alice", "correct")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = d.Verify(context.Background(), "alice", "wrong")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = d.Verify(context.Background(), "mallory", "correct")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.Equal(t, 3, server.authCount())

	ok, err = d.Verify(context.Background(), "alice", "")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 3, server.authCount(), "empty password never reaches the server")
}

func TestNTLMHTTPDirectory_NoConnectionReuseAcrossLogins(t *testing.T) {
	server := newFakeNTLMServer(t, map[string]string{"ALICE": "correct", "BOB": "bobs-password"})
	d := newNTLMTestDirectory(server.URL)

	ok, err := d.Verify(context.Background(), "alice", "correct")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = d.Verify(context.Background(), "bob", "wrong")
	require.NoError(t, err)
	assert.False(t, ok, "an earlier login's authenticated connection must not be reused")
	assert.Equal(t, 2, server.authCount())
}

func TestNTLMHTTPDirectory_SuccessWithoutHandshake(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	ok, err := newNTLMTestDirectory(server.URL).Verify(context.Background(), "alice", "anything")

	require.ErrorIs(t, err, ErrDirectoryUnavailable)
	require.ErrorIs(t, err, errNoHandshake)
	assert.False(t, ok)
}

func TestNTLMHTTPDirectory_ServerFault(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	ok, err := newNTLMTestDirectory(server.URL).Verify(context.Background(), "alice", "correct")
	require.ErrorIs(t, err, ErrDirectoryUnavailable)
	assert.False(t, ok)
}

func TestNTLMHTTPDirectory_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	ok, err := newNTLMTestDirectory(url).Verify(context.Background(), "alice", "correct")
	require.ErrorIs(t, err, ErrDirectoryUnavailable)
	assert.False(t, ok)
}

func TestIsNTLMAuthenticate(t *testing.T) {
	encode := func(msgType uint32) string {
		msg := make([]byte, 12)
		copy(msg, "NTLMSSP\x00")
		binary.LittleEndian.PutUint32(msg[8:], msgType)
		return base64.StdEncoding.EncodeToString(msg)
	}

	tests := []struct {
		name   string
		header string
		want   bool
	}{
		{"authenticate", "NTLM " + encode(3), true},
		{"negotiate scheme", "Negotiate " + encode(3), true},
		{"negotiate message", "NTLM " + encode(1), false},
		{"basic", "Basic YWxpY2U6Y29ycmVjdA==", false},
		{"garbage token", "NTLM !!!", false},
		{"empty", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isNTLMAuthenticate(tt.header))
		})
	}
}

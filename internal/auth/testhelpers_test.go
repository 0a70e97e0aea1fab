package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha1" // #nosec G505
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/hex"
	"encoding/pem"
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type testKeyPair struct {
	key  *rsa.PrivateKey
	cert []byte // DER
}

var sharedKeyPair = sync.OnceValues(func() (*testKeyPair, error) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, err
	}
	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "authbridge-test"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	if err != nil {
		return nil, err
	}
	return &testKeyPair{key: key, cert: der}, nil
})

func testKeys(t *testing.T) *testKeyPair {
	t.Helper()
	kp, err := sharedKeyPair()
	require.NoError(t, err)
	return kp
}

func (kp *testKeyPair) thumbprint() string {
	sum := sha1.Sum(kp.cert) // #nosec G401
	return strings.ToUpper(hex.EncodeToString(sum[:]))
}

func (kp *testKeyPair) keyBlock(t *testing.T) *pem.Block {
	t.Helper()
	der, err := x509.MarshalPKCS8PrivateKey(kp.key)
	require.NoError(t, err)
	return &pem.Block{Type: "PRIVATE KEY", Bytes: der}
}

func (kp *testKeyPair) certBlock() *pem.Block {
	return &pem.Block{Type: "CERTIFICATE", Bytes: kp.cert}
}

func writePEMFile(t *testing.T, path string, blocks ...*pem.Block) {
	t.Helper()
	var data []byte
	for _, b := range blocks {
		data = append(data, pem.EncodeToMemory(b)...)
	}
	require.NoError(t, os.WriteFile(path, data, 0o600))
}

// writeKeyFile writes key and certificate to a temp file and returns its path.
func writeKeyFile(t *testing.T, kp *testKeyPair) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "client.pem")
	writePEMFile(t, path, kp.keyBlock(t), kp.certBlock())
	return path
}

package http

import (
	"crypto/tls"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildTLSConfig_DefaultVerifies(t *testing.T) {
	cfg, err := BuildTLSConfig(TLSOptions{})
	require.NoError(t, err)
	assert.False(t, cfg.InsecureSkipVerify)
	assert.Equal(t, uint16(tls.VersionTLS12), cfg.MinVersion)
	assert.Nil(t, cfg.RootCAs)
}

func TestBuildTLSConfig_SkipVerifyIsExplicit(t *testing.T) {
	cfg, err := BuildTLSConfig(TLSOptions{SkipVerify: true})
	require.NoError(t, err)
	assert.True(t, cfg.InsecureSkipVerify)
}

func TestBuildTLSConfig_CACertFile(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "ca.pem")
	block := &pem.Block{Type: "CERTIFICATE", Bytes: srv.Certificate().Raw}
	require.NoError(t, os.WriteFile(path, pem.EncodeToMemory(block), 0o600))

	transport, err := NewTransport(time.Second, TLSOptions{CACertFile: path})
	require.NoError(t, err)

	client := &http.Client{Timeout: 5 * time.Second, Transport: transport}
	res, err := client.Get(srv.URL)
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusNoContent, res.StatusCode)
}

func TestBuildTLSConfig_UntrustedServerFails(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	transport, err := NewTransport(time.Second, TLSOptions{})
	require.NoError(t, err)

	client := &http.Client{Timeout: 5 * time.Second, Transport: transport}
	_, err = client.Get(srv.URL)
	assert.Error(t, err)
}

func TestBuildTLSConfig_BadCAFile(t *testing.T) {
	_, err := BuildTLSConfig(TLSOptions{CACertFile: filepath.Join(t.TempDir(), "missing.pem")})
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "garbage.pem")
	require.NoError(t, os.WriteFile(path, []byte("not a cert"), 0o600))
	_, err = BuildTLSConfig(TLSOptions{CACertFile: path})
	assert.ErrorContains(t, err, "no certificates")
}

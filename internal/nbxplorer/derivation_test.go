package nbxplorer

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientRegisterDerivation(t *testing.T) {
	const descriptor = "xpub-cold-[p2wpkh]"

	t.Run("fresh registration", func(t *testing.T) {
		var (
			method, path string
			user, pass   string
			authOK       bool
		)
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			method, path = r.Method, r.URL.EscapedPath()
			user, pass, authOK = r.BasicAuth()
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := NewClient(server.URL, "nbxuser", "nbxpass")

		already, err := client.RegisterDerivation(context.Background(), descriptor)
		require.NoError(t, err)
		assert.False(t, already)

		assert.Equal(t, http.MethodPost, method)
		assert.Equal(t, "/v1/cryptos/BTC/derivations/"+url.PathEscape(descriptor), path)
		require.True(t, authOK)
		assert.Equal(t, "nbxuser", user)
		assert.Equal(t, "nbxpass", pass)
	})

	t.Run("created counts as fresh too", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusCreated)
		}))
		defer server.Close()

		client := NewClient(server.URL, "user", "pass")

		already, err := client.RegisterDerivation(context.Background(), descriptor)
		require.NoError(t, err)
		assert.False(t, already)
	})

	t.Run("conflict means already registered", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusConflict)
		}))
		defer server.Close()

		client := NewClient(server.URL, "user", "pass")

		already, err := client.RegisterDerivation(context.Background(), descriptor)
		require.NoError(t, err)
		assert.True(t, already)
	})

	t.Run("other statuses fail with the body excerpt", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"code": "invalid-derivation"}`))
		}))
		defer server.Close()

		client := NewClient(server.URL, "user", "pass")

		_, err := client.RegisterDerivation(context.Background(), descriptor)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "status 400")
		assert.Contains(t, err.Error(), "invalid-derivation")
	})
}

package remoteconfig

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/niksmo/finsearch/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testShopKey = "ABCDABCDABCDABCDABCDABCDABCDABCD"

func TestClient_FetchConfig(t *testing.T) {
	t.Run("Regular", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/config/"+testShopKey+"/config.json", r.URL.Path)
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"directIntegration":{"enabled":true},"isStagingShop":true,"blocks":["cat"]}`))
		}))
		defer srv.Close()

		c := NewClient(srv.URL+"/", "", 0)
		payload, err := c.FetchConfig(t.Context(), testShopKey)
		require.NoError(t, err)

		assert.True(t, payload.DirectIntegration.Enabled)
		assert.True(t, payload.IsStagingShop)
		assert.Equal(t, []string{"cat"}, payload.Blocks)
	})

	t.Run("CustomPath", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v2/"+testShopKey, r.URL.Path)
			w.Write([]byte(`{}`))
		}))
		defer srv.Close()

		c := NewClient(srv.URL, "/v2/{shopkey}", 0)
		_, err := c.FetchConfig(t.Context(), testShopKey)
		require.NoError(t, err)
	})

	t.Run("NotFound", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		defer srv.Close()

		c := NewClient(srv.URL, "", 0)
		_, err := c.FetchConfig(t.Context(), testShopKey)

		var fetchErr *domain.RemoteFetchError
		require.True(t, errors.As(err, &fetchErr))
		assert.Equal(t, http.StatusNotFound, fetchErr.StatusCode)
	})

	t.Run("MalformedBody", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"blocks":`))
		}))
		defer srv.Close()

		c := NewClient(srv.URL, "", 0)
		_, err := c.FetchConfig(t.Context(), testShopKey)

		var fetchErr *domain.RemoteFetchError
		assert.True(t, errors.As(err, &fetchErr))
	})

	t.Run("Unreachable", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		srv.Close()

		c := NewClient(srv.URL, "", 0)
		_, err := c.FetchConfig(t.Context(), testShopKey)

		var fetchErr *domain.RemoteFetchError
		require.True(t, errors.As(err, &fetchErr))
		assert.Zero(t, fetchErr.StatusCode)
	})
}

package geocoder

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKakaoResolve(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "KakaoAK test-key" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"errorType":"AccessDeniedError","message":"bad key"}`))
			return
		}
		switch r.URL.Query().Get("query") {
		case "Seoul Gangnam-gu Teheran-ro 152":
			_, _ = w.Write([]byte(`{"documents":[{"address_name":"Seoul Gangnam-gu","x":"127.0364","y":"37.5001"}],"meta":{"total_count":1}}`))
		case "broken":
			_, _ = w.Write([]byte(`{"documents":[{"x":"east","y":"37.5"}]}`))
		default:
			_, _ = w.Write([]byte(`{"documents":[],"meta":{"total_count":0}}`))
		}
	}))
	defer server.Close()

	ctx := context.Background()

	t.Run("resolves coordinates", func(t *testing.T) {
		g := NewKakao(server.URL, "test-key", time.Second)
		coords, err := g.Resolve(ctx, "Seoul Gangnam-gu Teheran-ro 152")
		require.NoError(t, err)
		assert.InDelta(t, 37.5001, coords.Latitude, 1e-9)
		assert.InDelta(t, 127.0364, coords.Longitude, 1e-9)
	})

	t.Run("unknown address", func(t *testing.T) {
		g := NewKakao(server.URL, "test-key", time.Second)
		_, err := g.Resolve(ctx, "nowhere")
		assert.ErrorIs(t, err, ErrNoResult)
	})

	t.Run("malformed coordinates", func(t *testing.T) {
		g := NewKakao(server.URL, "test-key", time.Second)
		_, err := g.Resolve(ctx, "broken")
		assert.ErrorContains(t, err, "invalid longitude")
	})

	t.Run("provider error", func(t *testing.T) {
		g := NewKakao(server.URL, "wrong", time.Second)
		_, err := g.Resolve(ctx, "Seoul")
		assert.ErrorContains(t, err, "unexpected status 401: bad key")
	})

	t.Run("disabled without key", func(t *testing.T) {
		g := NewKakao(server.URL, "", time.Second)
		_, err := g.Resolve(ctx, "Seoul")
		assert.ErrorIs(t, err, ErrDisabled)
	})
}

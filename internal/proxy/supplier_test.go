package proxy

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoProxiesConfigured(t *testing.T) {
	s, err := NewProxySupplier(context.Background(), nil, "http://unused.invalid")
	require.NoError(t, err)
	assert.Equal(t, "", s.Get())
}

func TestRoundRobin(t *testing.T) {
	s := &proxySupplier{proxies: []string{"http://a", "http://b", "http://c"}}

	got := []string{s.Get(), s.Get(), s.Get(), s.Get()}
	assert.Equal(t, []string{"http://a", "http://b", "http://c", "http://a"}, got)
}

func TestDeadProxiesAreDropped(t *testing.T) {
	storefront := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	defer storefront.Close()

	relay := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp, err := http.Get(r.URL.String())
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}
		defer resp.Body.Close()
		w.WriteHeader(resp.StatusCode)
		io.Copy(w, resp.Body)
	}))
	defer relay.Close()

	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "denied", http.StatusForbidden)
	}))
	defer broken.Close()

	s, err := NewProxySupplier(context.Background(), []string{broken.URL, relay.URL}, storefront.URL)
	require.NoError(t, err)

	assert.Equal(t, relay.URL, s.Get())
	assert.Equal(t, relay.URL, s.Get())
}

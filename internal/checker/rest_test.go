package checker

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wardstone/wardstone/internal/models"
)

func TestRESTCheckOnline(t *testing.T) {
	var requestedPath string
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestedPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"online": true,
			"players": {"online": 12, "max": 100, "list": [{"name": "steve"}, {"name": "alex"}]},
			"version": "1.21.4",
			"software": "Paper",
			"map": {"clean": "world"},
			"gamemode": "Survival",
			"debug": {"ping": 42}
		}`))
	}))
	defer api.Close()

	c := NewREST(api.URL, 5*time.Second)

	result, err := c.Check(context.Background(), "play.example.com", 25565)
	require.NoError(t, err)

	assert.Equal(t, "/play.example.com:25565", requestedPath)
	assert.True(t, result.Online)
	assert.Equal(t, 12, result.Players.Online)
	assert.Equal(t, 100, result.Players.Max)
	assert.Equal(t, []string{"steve", "alex"}, result.Players.Sample)
	assert.Equal(t, 42, result.LatencyMs)
	assert.Equal(t, "1.21.4", result.Version)
	assert.Equal(t, "Paper", result.Software)
	assert.Equal(t, "world", result.Map)
	assert.Equal(t, "Survival", result.Gamemode)
	assert.False(t, result.CheckedAt.IsZero())
}

func TestRESTCheckOfflineIsNotAnError(t *testing.T) {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"online": false}`))
	}))
	defer api.Close()

	c := NewREST(api.URL, 5*time.Second)

	result, err := c.Check(context.Background(), "play.example.com", 25565)
	require.NoError(t, err)
	assert.False(t, result.Online)
	assert.Zero(t, result.LatencyMs)
	assert.Empty(t, result.Error)
}

func TestRESTCheckMeasuredLatencyFallback(t *testing.T) {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(20 * time.Millisecond)
		_, _ = w.Write([]byte(`{"online": true, "players": {"online": 1, "max": 10}}`))
	}))
	defer api.Close()

	c := NewREST(api.URL, 5*time.Second)

	result, err := c.Check(context.Background(), "play.example.com", 25565)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, result.LatencyMs, 20)
}

func TestRESTCheckAPIFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "non-200 status",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
			},
		},
		{
			name: "invalid JSON",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte("not json"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := httptest.NewServer(tt.handler)
			defer api.Close()

			c := NewREST(api.URL, 5*time.Second)

			_, err := c.Check(context.Background(), "play.example.com", 25565)
			assert.Error(t, err)
		})
	}
}

func TestRESTCheckUnreachableAPI(t *testing.T) {
	c := NewREST("http://127.0.0.1:1", 500*time.Millisecond)

	_, err := c.Check(context.Background(), "play.example.com", 25565)
	assert.Error(t, err)
}

func TestSetSelection(t *testing.T) {
	rest := NewREST("http://example.com", time.Second)
	a2s := NewA2S(time.Second, 1400)
	set := NewSet(rest, a2s)

	assert.Same(t, rest, set.For(models.QueryREST))
	assert.Same(t, a2s, set.For(models.QueryA2S))
	assert.Same(t, rest, set.For(""))
}

package generator

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fragrancepalette/backend/internal/conf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientGenerate(t *testing.T) {
	var gotReq generateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/generate", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(generateResponse{GeneratedText: "Top note: Yuzu"})
	}))
	defer srv.Close()

	client := NewClient(conf.LLM{URL: srv.URL, Timeout: 5 * time.Second})
	params := DefaultParams()
	params.Temperature = 0.6

	text, err := client.Generate(context.Background(), "a prompt", params)
	require.NoError(t, err)
	assert.Equal(t, "Top note: Yuzu", text)
	assert.Equal(t, "a prompt", gotReq.Inputs)
	assert.Equal(t, 0.6, gotReq.Parameters.Temperature)
	assert.Equal(t, 150, gotReq.Parameters.MaxNewTokens)
	assert.Equal(t, []string{"\n\n"}, gotReq.Parameters.Stop)
}

func TestClientGenerateNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewClient(conf.LLM{URL: srv.URL, Timeout: 5 * time.Second})
	_, err := client.Generate(context.Background(), "a prompt", DefaultParams())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AI service unavailable")
}

func TestClientGenerateTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}))
	defer srv.Close()

	client := NewClient(conf.LLM{URL: srv.URL, Timeout: 50 * time.Millisecond})
	_, err := client.Generate(context.Background(), "a prompt", DefaultParams())
	require.Error(t, err)
}

package ner_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Atlas-Final-Project/data-crawling/internal/ner"
)

func TestClient_Extract(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/extract", r.URL.Path)

		var req struct {
			Text string `json:"text"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "Earthquake hits Tokyo", req.Text)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"entities":[
			{"word":"Tokyo","entity_group":"LOC","score":0.98},
			{"word":"Honshu","entity_group":"LOC","score":0.91}
		]}`))
	}))
	defer srv.Close()

	client := ner.NewClient(srv.URL)
	entities, err := client.Extract(context.Background(), "Earthquake hits Tokyo")

	require.NoError(t, err)
	require.Len(t, entities, 2)
	assert.Equal(t, "Tokyo", entities[0].Text)
	assert.Equal(t, ner.LabelLocation, entities[0].Label)
	assert.InDelta(t, 0.98, entities[0].Score, 1e-9)
}

func TestClient_Extract_ServerError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := ner.NewClient(srv.URL)
	_, err := client.Extract(context.Background(), "text")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

func TestClient_Extract_Unreachable(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {}))
	srv.Close()

	client := ner.NewClient(srv.URL)
	_, err := client.Extract(context.Background(), "text")

	require.ErrorIs(t, err, ner.ErrUnavailable)
}

func TestClient_Health(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/health", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := ner.NewClient(srv.URL)
	assert.NoError(t, client.Health(context.Background()))
}

package broker

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "tradejournal/internal/errors"
)

func TestInitiateAuth(t *testing.T) {
	var gotPath string
	var gotBody map[string]string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(AuthResponse{
			AuthURL: "https://openapi.ctrader.com/apps/auth?state=abc",
			State:   "abc",
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	auth, err := client.InitiateAuth(context.Background(), "u1", "a1")
	require.NoError(t, err)

	assert.Equal(t, "/ctrader/initiate-auth", gotPath)
	assert.Equal(t, "u1", gotBody["user_id"])
	assert.Equal(t, "a1", gotBody["account_id"])
	assert.Contains(t, auth.AuthURL, "openapi.ctrader.com")
}

func TestInitiateAuthEmptyURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(AuthResponse{})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.InitiateAuth(context.Background(), "u1", "a1")
	require.Error(t, err)

	var brokerErr *apperrors.BrokerError
	assert.ErrorAs(t, err, &brokerErr)
}

func TestImportTrades(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/ctrader/import-trades", r.URL.Path)

		var body map[string]interface{}
		json.NewDecoder(r.Body).Decode(&body)
		// Dates travel as RFC 3339.
		_, err := time.Parse(time.RFC3339, body["from"].(string))
		assert.NoError(t, err)

		json.NewEncoder(w).Encode(ImportResult{Imported: 12, Skipped: 3})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	result, err := client.ImportTrades(context.Background(), "u1", "a1", from, to)
	require.NoError(t, err)
	assert.Equal(t, 12, result.Imported)
	assert.Equal(t, 3, result.Skipped)
}

func TestSyncErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		json.NewEncoder(w).Encode(map[string]string{"error": "ctrader upstream unavailable"})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.Sync(context.Background(), "u1", "a1", false)
	require.Error(t, err)

	var brokerErr *apperrors.BrokerError
	require.ErrorAs(t, err, &brokerErr)
	assert.Equal(t, http.StatusBadGateway, brokerErr.Status)
	assert.Equal(t, "ctrader upstream unavailable", brokerErr.Message)
	assert.Equal(t, "/ctrader/sync", brokerErr.Endpoint)
}

func TestUnauthorizedMapsToNotConnected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"error": "no tokens for account"})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.Sync(context.Background(), "u1", "a1", true)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrBrokerNotConnected)
}

func TestContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := client.Sync(ctx, "u1", "a1", false)
	require.Error(t, err)

	var brokerErr *apperrors.BrokerError
	assert.ErrorAs(t, err, &brokerErr)
	assert.ErrorIs(t, err, apperrors.ErrTimeout)
}

func TestInitiateAuthForwardsCredentials(t *testing.T) {
	var gotBody map[string]string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(AuthResponse{AuthURL: "https://openapi.ctrader.com/apps/auth"})
	}))
	defer server.Close()

	client := NewClient(server.URL).WithCredentials("app-id", "app-secret")
	_, err := client.InitiateAuth(context.Background(), "u1", "a1")
	require.NoError(t, err)

	assert.Equal(t, "app-id", gotBody["client_id"])
	assert.Equal(t, "app-secret", gotBody["client_secret"])
}

func TestInitiateAuthOmitsEmptyCredentials(t *testing.T) {
	var gotBody map[string]string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(AuthResponse{AuthURL: "https://openapi.ctrader.com/apps/auth"})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.InitiateAuth(context.Background(), "u1", "a1")
	require.NoError(t, err)

	_, hasID := gotBody["client_id"]
	_, hasSecret := gotBody["client_secret"]
	assert.False(t, hasID)
	assert.False(t, hasSecret)
}

package esportal

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oamaok/esportal-bets/models"
)

func TestClient_WatchedStatuses(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.RawQuery, "friends=1")
		assert.Contains(t, r.URL.RawQuery, "username=watcher")
		w.Write([]byte(`{"friends":[
			{"id":1,"username":"alpha","online_status":1},
			{"id":2,"username":"bravo","online_status":5}
		]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "watcher")

	statuses, err := client.WatchedStatuses(context.Background())
	require.NoError(t, err)
	require.Len(t, statuses, 2)
	assert.Equal(t, int64(1), statuses[0].ID)
	assert.Equal(t, models.StatusInGame, statuses[0].OnlineStatus)
	assert.Equal(t, models.StatusOnline, statuses[1].OnlineStatus)
}

func TestClient_WatchedStatuses_MissingFriendsList(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":123,"username":"watcher"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "watcher")

	_, err := client.WatchedStatuses(context.Background())
	require.Error(t, err)

	var parseErr *ParseError
	assert.True(t, errors.As(err, &parseErr))
}

func TestClient_Match(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"id": 4242,
			"active": true,
			"map_id": 3,
			"team1_score": 7,
			"team2_score": 5,
			"team1_win_chance": 0.62,
			"team2_win_chance": 0.38,
			"players": [
				{"id": 10, "username": "alpha", "elo": 1500, "team": 1},
				{"id": 11, "username": "bravo", "elo": 1450, "team": 2}
			]
		}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "watcher")

	match, err := client.Match(context.Background(), 4242)
	require.NoError(t, err)
	assert.Equal(t, int64(4242), match.ID)
	assert.True(t, match.Active)
	assert.Equal(t, int64(3), match.MapID)
	assert.InDelta(t, 0.62, match.Team1WinChance, 0.0001)
	require.Len(t, match.Players, 2)
	assert.Equal(t, 1, match.Players[0].Team)
}

func TestClient_Match_IDMismatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id": 9999, "active": true}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "watcher")

	_, err := client.Match(context.Background(), 4242)
	require.Error(t, err)

	var parseErr *ParseError
	assert.True(t, errors.As(err, &parseErr))
}

func TestClient_Match_MalformedJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>maintenance</html>`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "watcher")

	_, err := client.Match(context.Background(), 1)
	require.Error(t, err)

	var parseErr *ParseError
	require.True(t, errors.As(err, &parseErr))
	assert.True(t, strings.Contains(parseErr.URL, "/match/get"))
}

func TestClient_Match_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(server.URL, "watcher")

	_, err := client.Match(context.Background(), 1)
	require.Error(t, err)

	var fetchErr *FetchError
	assert.True(t, errors.As(err, &fetchErr))
}

func TestClient_CurrentMatchID_NoMatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id": 55, "username": "alpha"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "watcher")

	_, err := client.CurrentMatchID(context.Background(), 55)
	require.Error(t, err)

	var parseErr *ParseError
	assert.True(t, errors.As(err, &parseErr))
}

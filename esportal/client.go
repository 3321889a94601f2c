package esportal

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/oamaok/esportal-bets/models"
)

const (
	defaultBaseURL = "https://esportal.com/api"

	// Esportal has no documented limits; stay well below anything that
	// could look like scraping.
	requestsPerSec = 2
	requestBurst   = 5

	defaultTimeout = 10 * time.Second
)

// FetchError covers network failures, timeouts and non-2xx responses.
// Transient: the poll cycle logs it and retries on the next interval.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("esportal fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// ParseError covers malformed or unexpected payloads. The half-parsed
// response is discarded entirely; nothing is applied to tracker state.
type ParseError struct {
	URL string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("esportal parse %s: %v", e.URL, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Client is the Esportal HTTP API client with a bounded timeout and
// rate limiting
type Client struct {
	http     *http.Client
	baseURL  string
	username string
	limiter  *rate.Limiter
}

// NewClient creates a Client watching the friend list of the given account.
// An empty baseURL uses the production API.
func NewClient(baseURL, username string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		http:     &http.Client{Timeout: defaultTimeout},
		baseURL:  baseURL,
		username: username,
		limiter:  rate.NewLimiter(requestsPerSec, requestBurst),
	}
}

type friendsResponse struct {
	Friends []models.FriendStatus `json:"friends"`
}

type currentMatchResponse struct {
	CurrentMatch *struct {
		ID int64 `json:"id"`
	} `json:"current_match"`
}

// WatchedStatuses fetches the online status of every friend of the watch account
func (c *Client) WatchedStatuses(ctx context.Context) ([]models.FriendStatus, error) {
	u := fmt.Sprintf("%s/user_profile/get?_=%d&username=%s&friends=1",
		c.baseURL, time.Now().UnixMilli(), url.QueryEscape(c.username))

	var resp friendsResponse
	if err := c.get(ctx, u, &resp); err != nil {
		return nil, err
	}
	if resp.Friends == nil {
		return nil, &ParseError{URL: u, Err: fmt.Errorf("response has no friends list")}
	}
	return resp.Friends, nil
}

// CurrentMatchID fetches the id of the match a player is currently in
func (c *Client) CurrentMatchID(ctx context.Context, playerID int64) (int64, error) {
	u := fmt.Sprintf("%s/user_profile/get?_=%d&id=%d&current_match=1",
		c.baseURL, time.Now().UnixMilli(), playerID)

	var resp currentMatchResponse
	if err := c.get(ctx, u, &resp); err != nil {
		return 0, err
	}
	if resp.CurrentMatch == nil || resp.CurrentMatch.ID == 0 {
		return 0, &ParseError{URL: u, Err: fmt.Errorf("player %d has no current match", playerID)}
	}
	return resp.CurrentMatch.ID, nil
}

// Match fetches the full snapshot of a match by id
func (c *Client) Match(ctx context.Context, id int64) (*models.Match, error) {
	u := fmt.Sprintf("%s/match/get?_=%d&id=%d", c.baseURL, time.Now().UnixMilli(), id)

	var match models.Match
	if err := c.get(ctx, u, &match); err != nil {
		return nil, err
	}
	if match.ID == 0 {
		return nil, &ParseError{URL: u, Err: fmt.Errorf("response has no match id")}
	}
	if match.ID != id {
		return nil, &ParseError{URL: u, Err: fmt.Errorf("response match id %d does not match requested %d", match.ID, id)}
	}
	return &match, nil
}

func (c *Client) get(ctx context.Context, u string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return &FetchError{URL: u, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return &FetchError{URL: u, Err: err}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &FetchError{URL: u, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return &FetchError{URL: u, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &FetchError{URL: u, Err: err}
	}

	if err := json.Unmarshal(body, out); err != nil {
		log.WithFields(log.Fields{
			"url":   u,
			"bytes": len(body),
		}).Warn("Discarding unparsable upstream response")
		return &ParseError{URL: u, Err: err}
	}

	return nil
}

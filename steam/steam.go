// Package steam is a client for the Steam Web API.
package steam

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/go-json-experiment/json"

	"github.com/ChomusukeBot/Chomusuke/metrics"
)

// ErrNotFound is returned when no player matches a Steam ID.
var ErrNotFound = errors.New("profile not found")

// Client holds the context for requests to the Steam Web API.
type Client struct {
	// HTTP is the HTTP client for performing requests.
	// If nil, http.DefaultClient is used.
	HTTP *http.Client
	// Key is the Web API key.
	Key string
	// Latency observes request durations. If nil, durations are not recorded.
	Latency metrics.Observer
}

// Player is a player summary.
type Player struct {
	SteamID      string `json:"steamid"`
	PersonaName  string `json:"personaname"`
	RealName     string `json:"realname"`
	ProfileURL   string `json:"profileurl"`
	Avatar       string `json:"avatar"`
	AvatarMedium string `json:"avatarmedium"`
	AvatarFull   string `json:"avatarfull"`
	CountryCode  string `json:"loccountrycode"`
}

// PlayerSummary returns the summary of the player with the given 64-bit
// Steam ID.
func (c *Client) PlayerSummary(ctx context.Context, id string) (*Player, error) {
	v := url.Values{"key": {c.Key}, "steamids": {id}}
	u := "https://api.steampowered.com/ISteamUser/GetPlayerSummaries/v0002/?" + v.Encode()
	req, err := http.NewRequestWithContext(ctx, "GET", u, nil)
	if err != nil {
		return nil, fmt.Errorf("couldn't make request: %w", err)
	}
	hc := c.HTTP
	if hc == nil {
		hc = http.DefaultClient
	}
	st := time.Now()
	resp, err := hc.Do(req)
	if c.Latency != nil {
		c.Latency.Observe(time.Since(st).Seconds(), "steam", "summary")
	}
	if err != nil {
		// The URL carries the key, so don't wrap the url.Error.
		return nil, errors.New("couldn't get player summary")
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
	if err != nil {
		return nil, fmt.Errorf("couldn't read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("player summary request failed: %s", resp.Status)
	}
	var r struct {
		Response struct {
			Players []Player `json:"players"`
		} `json:"response"`
	}
	if err := json.Unmarshal(b, &r); err != nil {
		return nil, fmt.Errorf("couldn't decode player summary: %w", err)
	}
	if len(r.Response.Players) == 0 {
		return nil, ErrNotFound
	}
	return &r.Response.Players[0], nil
}

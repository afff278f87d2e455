// Package riot is a client for the League of Legends web APIs.
package riot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-json-experiment/json"

	"github.com/ChomusukeBot/Chomusuke/metrics"
)

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// Client holds the context for requests to the Riot Games API.
type Client struct {
	// HTTP is the HTTP client for performing requests.
	// If nil, http.DefaultClient is used.
	HTTP *http.Client
	// Key is the API key.
	Key string
	// Latency observes request durations. If nil, durations are not recorded.
	Latency metrics.Observer
}

// regions maps region names to platform routing values in display order.
var regions = []struct{ name, platform string }{
	{"br", "br1"},
	{"eune", "eun1"},
	{"euw", "euw1"},
	{"jp", "jp1"},
	{"kr", "kr"},
	{"lan", "la1"},
	{"las", "la2"},
	{"na", "na1"},
	{"oce", "oc1"},
	{"tr", "tr1"},
	{"ru", "ru"},
	{"pbe", "pbe1"},
}

// Platform returns the platform routing value for a region name like euw.
func Platform(region string) (string, bool) {
	region = strings.ToLower(region)
	for _, r := range regions {
		if r.name == region {
			return r.platform, true
		}
	}
	return "", false
}

// Regions returns the names of all regions.
func Regions() []string {
	r := make([]string, len(regions))
	for i, v := range regions {
		r[i] = v.name
	}
	return r
}

func apiurl(platform, path string, values url.Values) string {
	u := "https://" + platform + ".api.riotgames.com" + path
	if len(values) == 0 {
		return u
	}
	return u + "?" + values.Encode()
}

// reqjson performs a GET request and decodes the response as JSON.
// The response body is truncated to 2 MB.
func reqjson[Resp any](ctx context.Context, client *Client, op, url string, u *Resp) error {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return fmt.Errorf("couldn't make request: %w", err)
	}
	req.Header.Set("X-Riot-Token", client.Key)
	req.Header.Set("Accept", "application/json")
	hc := client.HTTP
	if hc == nil {
		hc = http.DefaultClient
	}
	st := time.Now()
	resp, err := hc.Do(req)
	if client.Latency != nil {
		client.Latency.Observe(time.Since(st).Seconds(), "riot", op)
	}
	if err != nil {
		return fmt.Errorf("couldn't get %s: %w", op, err)
	}
	b, err := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
	if err != nil {
		return fmt.Errorf("couldn't read response: %w", err)
	}
	resp.Body.Close()
	switch resp.StatusCode {
	case http.StatusOK: // do nothing
	case http.StatusNotFound:
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	default:
		return fmt.Errorf("%s request failed: %s (%s)", op, b, resp.Status)
	}
	if u == nil {
		return nil
	}
	if err := json.Unmarshal(b, u); err != nil {
		return fmt.Errorf("couldn't decode %s response: %w", op, err)
	}
	return nil
}

// Summoner is a player account.
type Summoner struct {
	ID            string `json:"id"`
	AccountID     string `json:"accountId"`
	Name          string `json:"name"`
	ProfileIconID int    `json:"profileIconId"`
	SummonerLevel int64  `json:"summonerLevel"`
}

// Summoner looks up a summoner by name on a platform.
// If there is no such summoner, the error wraps [ErrNotFound].
func (c *Client) Summoner(ctx context.Context, platform, name string) (*Summoner, error) {
	var s Summoner
	u := apiurl(platform, "/lol/summoner/v4/summoners/by-name/"+url.PathEscape(name), nil)
	if err := reqjson(ctx, c, "summoner", u, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// LeagueEntry is a summoner's standing in a ranked queue.
type LeagueEntry struct {
	QueueType    string `json:"queueType"`
	Tier         string `json:"tier"`
	Rank         string `json:"rank"`
	LeaguePoints int    `json:"leaguePoints"`
	Wins         int    `json:"wins"`
	Losses       int    `json:"losses"`
}

// Ranked returns a summoner's ranked entries. An unranked summoner has none.
func (c *Client) Ranked(ctx context.Context, platform, summonerID string) ([]LeagueEntry, error) {
	var r []LeagueEntry
	u := apiurl(platform, "/lol/league/v4/entries/by-summoner/"+url.PathEscape(summonerID), nil)
	if err := reqjson(ctx, c, "ranked", u, &r); err != nil {
		return nil, err
	}
	return r, nil
}

// MatchRef identifies a match in a summoner's history.
type MatchRef struct {
	GameID    int64 `json:"gameId"`
	Queue     int   `json:"queue"`
	Timestamp int64 `json:"timestamp"`
}

// Matches returns the matches of an account between begin inclusive and
// end exclusive, most recent first.
func (c *Client) Matches(ctx context.Context, platform, accountID string, begin, end int) ([]MatchRef, error) {
	var r struct {
		Matches []MatchRef `json:"matches"`
	}
	v := url.Values{
		"beginIndex": {strconv.Itoa(begin)},
		"endIndex":   {strconv.Itoa(end)},
	}
	u := apiurl(platform, "/lol/match/v4/matchlists/by-account/"+url.PathEscape(accountID), v)
	if err := reqjson(ctx, c, "matches", u, &r); err != nil {
		return nil, err
	}
	return r.Matches, nil
}

// Match is the record of a completed game.
type Match struct {
	GameID       int64 `json:"gameId"`
	QueueID      int   `json:"queueId"`
	GameCreation int64 `json:"gameCreation"`
	// GameDuration is in seconds.
	GameDuration int64 `json:"gameDuration"`
	Teams        []struct {
		TeamID int    `json:"teamId"`
		Win    string `json:"win"`
	} `json:"teams"`
	Participants []struct {
		ParticipantID int `json:"participantId"`
		ChampionID    int `json:"championId"`
		Stats         struct {
			Kills   int `json:"kills"`
			Deaths  int `json:"deaths"`
			Assists int `json:"assists"`
		} `json:"stats"`
	} `json:"participants"`
	ParticipantIdentities []struct {
		ParticipantID int `json:"participantId"`
		Player        struct {
			SummonerName string `json:"summonerName"`
		} `json:"player"`
	} `json:"participantIdentities"`
}

// Created returns the time the game was created.
func (m *Match) Created() time.Time {
	return time.UnixMilli(m.GameCreation)
}

// Duration returns the length of the game.
func (m *Match) Duration() time.Duration {
	return time.Duration(m.GameDuration) * time.Second
}

// Match returns a match by ID.
func (c *Client) Match(ctx context.Context, platform string, id int64) (*Match, error) {
	var m Match
	u := apiurl(platform, "/lol/match/v4/matches/"+strconv.FormatInt(id, 10), nil)
	if err := reqjson(ctx, c, "match", u, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// ShardStatus checks that a platform's API is available.
func (c *Client) ShardStatus(ctx context.Context, platform string) error {
	return reqjson[struct{}](ctx, c, "status", apiurl(platform, "/lol/status/v3/shard-data", nil), nil)
}

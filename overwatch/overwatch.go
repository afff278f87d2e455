// Package overwatch is a client for the community Overwatch statistics API.
package overwatch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/go-json-experiment/json"

	"github.com/ChomusukeBot/Chomusuke/metrics"
)

// BaseURL is the root of the API.
const BaseURL = "https://overwatchy.com"

// ErrNotFound is returned when a profile does not exist or is private.
var ErrNotFound = errors.New("profile not found or private")

var (
	// Platforms are the valid player platforms.
	Platforms = []string{"pc", "psn", "xbl"}
	// Regions are the valid player regions.
	Regions = []string{"us", "eu", "kr", "cn", "global"}
)

// Client holds the context for requests to the Overwatch API.
type Client struct {
	// HTTP is the HTTP client for performing requests.
	// If nil, http.DefaultClient is used.
	HTTP *http.Client
	// Latency observes request durations. If nil, durations are not recorded.
	Latency metrics.Observer
}

// Player is a player identity on a platform and region.
type Player struct {
	Name     string
	Platform string
	Region   string
}

// ParsePlayer validates a player. PC names must carry a discriminator,
// e.g. Lemon#13526.
func ParsePlayer(name, platform, region string) (Player, error) {
	if platform == "" {
		platform = "pc"
	}
	if region == "" {
		region = "global"
	}
	if platform == "pc" && !strings.Contains(name, "#") {
		return Player{}, errDiscriminator
	}
	if !slices.Contains(Platforms, platform) {
		return Player{}, fmt.Errorf("%q is not a valid platform", platform)
	}
	if !slices.Contains(Regions, region) {
		return Player{}, fmt.Errorf("%q is not a valid region", region)
	}
	return Player{Name: name, Platform: platform, Region: region}, nil
}

var errDiscriminator = errors.New("pc player names need a discriminator")

// IsDiscriminatorError reports whether err is from a PC name without
// a discriminator.
func IsDiscriminatorError(err error) bool {
	return errors.Is(err, errDiscriminator)
}

// path returns the URL path segments for a player. The API spells the
// discriminator separator as a hyphen.
func (p Player) path() string {
	return url.PathEscape(p.Platform) + "/" + url.PathEscape(p.Region) + "/" + url.PathEscape(strings.ReplaceAll(p.Name, "#", "-"))
}

// get performs a GET request and returns the body and status.
// The body is truncated to 2 MB.
func (c *Client) get(ctx context.Context, op, u string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", u, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("couldn't make request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	hc := c.HTTP
	if hc == nil {
		hc = http.DefaultClient
	}
	st := time.Now()
	resp, err := hc.Do(req)
	if c.Latency != nil {
		c.Latency.Observe(time.Since(st).Seconds(), "overwatch", op)
	}
	if err != nil {
		return nil, 0, fmt.Errorf("couldn't get %s: %w", op, err)
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("couldn't read response: %w", err)
	}
	return b, resp.StatusCode, nil
}

// Status returns the HTTP status of the API root.
func (c *Client) Status(ctx context.Context) (int, error) {
	_, status, err := c.get(ctx, "status", BaseURL+"/")
	return status, err
}

// Profile is a player's public profile.
type Profile struct {
	Username    string `json:"username"`
	Level       int    `json:"level"`
	Portrait    string `json:"portrait"`
	Competitive struct {
		Rank    *int   `json:"rank"`
		RankImg string `json:"rank_img"`
	} `json:"competitive"`
	// Message is set instead of the profile when the player is not found.
	Message string `json:"message"`
}

func decode[T any](op string, b []byte, status int) (*T, error) {
	if status != http.StatusOK {
		return nil, fmt.Errorf("%s request failed: %d", op, status)
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return nil, fmt.Errorf("couldn't decode %s: %w", op, err)
	}
	return &v, nil
}

// Profile returns a player's profile. If the player does not exist or is
// private, the error is [ErrNotFound].
func (c *Client) Profile(ctx context.Context, p Player) (*Profile, error) {
	b, status, err := c.get(ctx, "profile", BaseURL+"/profile/"+p.path())
	if err != nil {
		return nil, err
	}
	r, err := decode[Profile]("profile", b, status)
	if err != nil {
		return nil, err
	}
	if r.Message != "" {
		return nil, ErrNotFound
	}
	return r, nil
}

// Stat is a titled statistic.
type Stat struct {
	Title string `json:"title"`
	Value string `json:"value"`
}

// HeroTime is the play time on a hero.
type HeroTime struct {
	Hero   string `json:"hero"`
	Played string `json:"played"`
}

// Modes holds a statistic per game mode.
type Modes[T any] struct {
	QuickPlay   T `json:"quickplay"`
	Competitive T `json:"competitive"`
}

// Stats are a player's detailed statistics.
type Stats struct {
	Username string `json:"username"`
	Level    int    `json:"level"`
	Portrait string `json:"portrait"`
	Stats    struct {
		TopHeroes Modes[struct {
			Played []HeroTime `json:"played"`
		}] `json:"top_heroes"`
		Combat  Modes[[]Stat] `json:"combat"`
		Average Modes[[]Stat] `json:"average"`
		Game    Modes[[]Stat] `json:"game"`
	} `json:"stats"`
}

// Stats returns a player's statistics.
func (c *Client) Stats(ctx context.Context, p Player) (*Stats, error) {
	b, status, err := c.get(ctx, "stats", BaseURL+"/stats/"+p.path())
	if err != nil {
		return nil, err
	}
	return decode[Stats]("stats", b, status)
}

// Find returns the value of the stat with the given title.
func Find(stats []Stat, title string) (string, bool) {
	for _, s := range stats {
		if s.Title == title {
			return s.Value, true
		}
	}
	return "", false
}

// KDR is an elimination to death ratio.
type KDR struct {
	Eliminations int
	Deaths       int
}

// Ratio returns eliminations per death rounded to two places. A player with
// no deaths has a ratio equal to their eliminations.
func (k KDR) Ratio() float64 {
	d := max(k.Deaths, 1)
	r := float64(k.Eliminations) / float64(d)
	return math.Round(r*100) / 100
}

// CombatKDR extracts eliminations and deaths from combat stats.
func CombatKDR(combat []Stat) KDR {
	var k KDR
	if v, ok := Find(combat, "Eliminations"); ok {
		k.Eliminations, _ = strconv.Atoi(strings.ReplaceAll(v, ",", ""))
	}
	if v, ok := Find(combat, "Deaths"); ok {
		k.Deaths, _ = strconv.Atoi(strings.ReplaceAll(v, ",", ""))
	}
	return k
}

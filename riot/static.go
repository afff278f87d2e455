package riot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/go-json-experiment/json"
)

const (
	versionsURL  = "https://ddragon.leagueoflegends.com/api/versions.json"
	championsURL = "https://ddragon.leagueoflegends.com/cdn/%s/data/en_US/champion.json"
	iconURL      = "https://ddragon.leagueoflegends.com/cdn/%s/img/profileicon/%d.png"
)

// Static holds game data that changes with patches: the current version
// and champion names. It is safe for concurrent use.
type Static struct {
	// HTTP is the HTTP client for performing requests.
	// If nil, http.DefaultClient is used.
	HTTP *http.Client

	data atomic.Pointer[staticData]
}

type staticData struct {
	version   string
	champions map[int]string
}

// Version returns the current game version, or the empty string if data has
// not been loaded.
func (s *Static) Version() string {
	d := s.data.Load()
	if d == nil {
		return ""
	}
	return d.version
}

// Champion returns the name of a champion by numeric key.
func (s *Static) Champion(id int) string {
	d := s.data.Load()
	if d == nil {
		return "Unknown"
	}
	if n, ok := d.champions[id]; ok {
		return n
	}
	return "Unknown"
}

// ProfileIcon returns the image URL of a profile icon.
func (s *Static) ProfileIcon(id int) string {
	return fmt.Sprintf(iconURL, s.Version(), id)
}

func (s *Static) get(ctx context.Context, url string, v any) error {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return fmt.Errorf("couldn't make request: %w", err)
	}
	hc := s.HTTP
	if hc == nil {
		hc = http.DefaultClient
	}
	resp, err := hc.Do(req)
	if err != nil {
		return fmt.Errorf("couldn't get static data: %w", err)
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
	if err != nil {
		return fmt.Errorf("couldn't read static data: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("static data request failed: %s", resp.Status)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("couldn't decode static data: %w", err)
	}
	return nil
}

// Refresh loads the latest version and its champion list.
func (s *Static) Refresh(ctx context.Context) error {
	var versions []string
	if err := s.get(ctx, versionsURL, &versions); err != nil {
		return err
	}
	if len(versions) == 0 {
		return errors.New("no versions")
	}
	var champs struct {
		Data map[string]struct {
			Key  string `json:"key"`
			Name string `json:"name"`
		} `json:"data"`
	}
	if err := s.get(ctx, fmt.Sprintf(championsURL, versions[0]), &champs); err != nil {
		return err
	}
	d := &staticData{
		version:   versions[0],
		champions: make(map[int]string, len(champs.Data)),
	}
	for id, c := range champs.Data {
		k, err := strconv.Atoi(c.Key)
		if err != nil {
			return fmt.Errorf("champion %s has bad key %q: %w", id, c.Key, err)
		}
		d.champions[k] = c.Name
	}
	s.data.Store(d)
	return nil
}

// Run refreshes static data immediately and then periodically until the
// context is canceled. Failures are logged and retried at the next period.
func (s *Static) Run(ctx context.Context, every time.Duration) error {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		if err := s.Refresh(ctx); err != nil {
			slog.ErrorContext(ctx, "couldn't refresh League of Legends data", slog.Any("err", err))
		} else {
			slog.InfoContext(ctx, "refreshed League of Legends data", slog.String("version", s.Version()))
		}
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
		}
	}
}

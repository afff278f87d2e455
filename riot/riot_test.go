package riot

import (
	"context"
	"embed"
	"errors"
	"io"
	"net/http"
	"path"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

//go:embed testdata/*.json
var jsonFiles embed.FS

// routes is a round tripper answering requests by URL with testdata files.
// A URL with no route receives a 404.
type routes struct {
	files map[string]string
	got   []string
}

func (r *routes) RoundTrip(req *http.Request) (*http.Response, error) {
	u := req.URL.String()
	r.got = append(r.got, u)
	file, ok := r.files[u]
	if !ok {
		return &http.Response{StatusCode: http.StatusNotFound, Status: "404 Not Found", Body: io.NopCloser(strings.NewReader(`{}`))}, nil
	}
	f, err := jsonFiles.Open(path.Join("testdata/", file))
	if err != nil {
		return nil, err
	}
	return &http.Response{StatusCode: http.StatusOK, Status: "200 OK", Body: f}, nil
}

func testClient(files map[string]string) (*Client, *routes) {
	r := &routes{files: files}
	return &Client{HTTP: &http.Client{Transport: r}, Key: "kessoku"}, r
}

func TestPlatform(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"euw", "euw1", true},
		{"EUNE", "eun1", true},
		{"kr", "kr", true},
		{"lan", "la1", true},
		{"shimokitazawa", "", false},
	}
	for _, c := range cases {
		got, ok := Platform(c.in)
		if got != c.want || ok != c.ok {
			t.Errorf("Platform(%q): want %q %t, got %q %t", c.in, c.want, c.ok, got, ok)
		}
	}
	want := []string{"br", "eune", "euw", "jp", "kr", "lan", "las", "na", "oce", "tr", "ru", "pbe"}
	if diff := cmp.Diff(want, Regions()); diff != "" {
		t.Errorf("wrong regions (-want +got):\n%s", diff)
	}
}

func TestQueue(t *testing.T) {
	if got := Queue(420); got != "Summoner's Rift - 5v5 Ranked Solo game" {
		t.Errorf("wrong queue 420: %q", got)
	}
	if got := Queue(-1); got != "Unknown queue" {
		t.Errorf("wrong unknown queue: %q", got)
	}
}

func TestSummoner(t *testing.T) {
	ctx := context.Background()
	cl, r := testClient(map[string]string{
		"https://euw1.api.riotgames.com/lol/summoner/v4/summoners/by-name/Bocchi%20Hitori": "summoner.json",
	})
	s, err := cl.Summoner(ctx, "euw1", "Bocchi Hitori")
	if err != nil {
		t.Fatal(err)
	}
	want := &Summoner{ID: "sum-bocchi", AccountID: "acc-bocchi", Name: "Bocchi", ProfileIconID: 4567, SummonerLevel: 213}
	if diff := cmp.Diff(want, s); diff != "" {
		t.Errorf("wrong summoner (-want +got):\n%s", diff)
	}
	if _, err := cl.Summoner(ctx, "euw1", "Nobody"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing summoner gave %v", err)
	}
	if len(r.got) != 2 {
		t.Errorf("wrong requests: %q", r.got)
	}
}

func TestRankedMatches(t *testing.T) {
	ctx := context.Background()
	cl, _ := testClient(map[string]string{
		"https://euw1.api.riotgames.com/lol/league/v4/entries/by-summoner/sum-bocchi":                     "ranked.json",
		"https://euw1.api.riotgames.com/lol/match/v4/matchlists/by-account/acc-bocchi?beginIndex=1&endIndex=2": "matches.json",
		"https://euw1.api.riotgames.com/lol/match/v4/matches/5001":                                          "match.json",
	})
	ranked, err := cl.Ranked(ctx, "euw1", "sum-bocchi")
	if err != nil {
		t.Fatal(err)
	}
	want := []LeagueEntry{{QueueType: "RANKED_SOLO_5x5", Tier: "GOLD", Rank: "II", LeaguePoints: 57, Wins: 34, Losses: 30}}
	if diff := cmp.Diff(want, ranked); diff != "" {
		t.Errorf("wrong ranked (-want +got):\n%s", diff)
	}
	refs, err := cl.Matches(ctx, "euw1", "acc-bocchi", 1, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(refs) != 1 || refs[0].GameID != 5001 {
		t.Fatalf("wrong matches %+v", refs)
	}
	m, err := cl.Match(ctx, "euw1", refs[0].GameID)
	if err != nil {
		t.Fatal(err)
	}
	if m.QueueID != 420 || len(m.Participants) != 10 || len(m.ParticipantIdentities) != 10 {
		t.Errorf("wrong match %+v", m)
	}
	if d := m.Duration(); d != 31*time.Minute+5*time.Second {
		t.Errorf("wrong duration %v", d)
	}
	if m.Teams[1].Win != "Win" {
		t.Errorf("wrong winner %+v", m.Teams)
	}
}

func TestKeyHeader(t *testing.T) {
	var got *http.Request
	cl := &Client{
		HTTP: &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			got = req
			return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(strings.NewReader(`{}`))}, nil
		})},
		Key: "kessoku",
	}
	if err := cl.ShardStatus(context.Background(), "na1"); err != nil {
		t.Fatal(err)
	}
	if got.Header.Get("X-Riot-Token") != "kessoku" {
		t.Errorf("wrong key header %q", got.Header.Get("X-Riot-Token"))
	}
	if got.URL.String() != "https://na1.api.riotgames.com/lol/status/v3/shard-data" {
		t.Errorf("wrong url %q", got.URL)
	}
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) { return f(req) }

func TestStatic(t *testing.T) {
	r := &routes{files: map[string]string{
		versionsURL: "versions.json",
		"https://ddragon.leagueoflegends.com/cdn/13.22.1/data/en_US/champion.json": "champion.json",
	}}
	var s Static
	s.HTTP = &http.Client{Transport: r}
	if got := s.Champion(64); got != "Unknown" {
		t.Errorf("champion before load: %q", got)
	}
	if err := s.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}
	if v := s.Version(); v != "13.22.1" {
		t.Errorf("wrong version %q", v)
	}
	cases := map[int]string{64: "Lee Sin", 266: "Aatrox", 1: "Annie", 999: "Unknown"}
	for id, want := range cases {
		if got := s.Champion(id); got != want {
			t.Errorf("wrong champion %d: want %q, got %q", id, want, got)
		}
	}
	if got := s.ProfileIcon(4567); got != "https://ddragon.leagueoflegends.com/cdn/13.22.1/img/profileicon/4567.png" {
		t.Errorf("wrong icon url %q", got)
	}
}

func TestStaticRunStops(t *testing.T) {
	r := &routes{}
	s := Static{HTTP: &http.Client{Transport: r}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.Run(ctx, time.Hour); err != nil {
		t.Errorf("run returned %v", err)
	}
}

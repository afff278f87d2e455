package command

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/go-json-experiment/json"

	"github.com/ChomusukeBot/Chomusuke/riot"
)

const testMatch = `{
	"gameId": 4000,
	"queueId": 420,
	"gameCreation": 1710342000000,
	"gameDuration": 1965,
	"teams": [{"teamId": 100, "win": "Fail"}, {"teamId": 200, "win": "Win"}],
	"participants": [
		{"participantId": 1, "championId": 1, "stats": {"kills": 1, "deaths": 2, "assists": 3}},
		{"participantId": 2, "championId": 2, "stats": {"kills": 4, "deaths": 5, "assists": 6}},
		{"participantId": 3, "championId": 1, "stats": {"kills": 0, "deaths": 0, "assists": 0}},
		{"participantId": 4, "championId": 1, "stats": {"kills": 0, "deaths": 0, "assists": 0}},
		{"participantId": 5, "championId": 1, "stats": {"kills": 0, "deaths": 0, "assists": 0}},
		{"participantId": 6, "championId": 2, "stats": {"kills": 9, "deaths": 1, "assists": 9}}
	],
	"participantIdentities": [
		{"participantId": 1, "player": {"summonerName": "bocchi"}},
		{"participantId": 2, "player": {"summonerName": "nijika"}},
		{"participantId": 3, "player": {"summonerName": "ryo"}},
		{"participantId": 4, "player": {"summonerName": "kita"}},
		{"participantId": 5, "player": {"summonerName": "seika"}},
		{"participantId": 6, "player": {"summonerName": "kikuri"}}
	]
}`

func TestMatchEmbed(t *testing.T) {
	var m riot.Match
	if err := json.Unmarshal([]byte(testMatch), &m); err != nil {
		t.Fatal(err)
	}
	static := new(riot.Static)
	created := time.UnixMilli(m.GameCreation)

	e := matchEmbed(static, &m, created.Add(3*time.Hour))
	if got, want := e.Title, riot.Queue(420)+" (today)"; got != want {
		t.Errorf("title: want %q, got %q", want, got)
	}
	if got, want := e.Description, "Game duration: 00:32:45"; got != want {
		t.Errorf("duration: want %q, got %q", want, got)
	}
	if got, want := e.Footer, "Red team won!"; got != want {
		t.Errorf("footer: want %q, got %q", want, got)
	}
	if len(e.Fields) != 2 {
		t.Fatalf("want 2 fields, got %+v", e.Fields)
	}
	blue := "bocchi - Unknown (1/2/3)\nnijika - Unknown (4/5/6)\nryo - Unknown (0/0/0)\nkita - Unknown (0/0/0)\nseika - Unknown (0/0/0)\n"
	if e.Fields[0].Value != blue {
		t.Errorf("blue team: want %q, got %q", blue, e.Fields[0].Value)
	}
	if got, want := e.Fields[1].Value, "kikuri - Unknown (9/1/9)\n"; got != want {
		t.Errorf("red team: want %q, got %q", want, got)
	}

	e = matchEmbed(static, &m, created.Add(50*time.Hour))
	if got, want := e.Title, riot.Queue(420)+" (2 day(s) ago)"; got != want {
		t.Errorf("title: want %q, got %q", want, got)
	}
}

func TestLoLUnavailable(t *testing.T) {
	ctx := context.Background()
	robo := testRobot(t)
	chat := newChat()
	LoLProfile(ctx, robo, invocation(chat, map[string]string{"region": "euw", "summoner": "bocchi"}))
	if got, want := chat.last(t).Text, "League of Legends commands are not available."; got != want {
		t.Errorf("want %q, got %q", want, got)
	}

	robo.Riot = &riot.Client{HTTP: &http.Client{Transport: hosts{}}}
	LoLProfile(ctx, robo, invocation(chat, map[string]string{"region": "shimokita", "summoner": "bocchi"}))
	want := "That region was not found. Please use one of the following:\nbr, eune, euw, jp, kr, lan, las, na, oce, tr, ru, pbe"
	if got := chat.last(t).Text; got != want {
		t.Errorf("want %q, got %q", want, got)
	}
	LoLMatch(ctx, robo, invocation(chat, map[string]string{"region": "euw", "summoner": "bocchi", "n": "-1"}))
	if got, want := chat.last(t).Text, "Invalid arguments."; got != want {
		t.Errorf("want %q, got %q", want, got)
	}
}

func TestLoLSummonerNotFound(t *testing.T) {
	ctx := context.Background()
	robo := testRobot(t)
	robo.Riot = &riot.Client{HTTP: &http.Client{Transport: hosts{"euw1.api.riotgames.com": http.StatusNotFound}}}
	chat := newChat()
	LoLProfile(ctx, robo, invocation(chat, map[string]string{"region": "EUW", "summoner": "bocchi"}))
	want := "Summoner not found. Please double check that you are using the summoner name and not the username."
	if got := chat.last(t).Text; got != want {
		t.Errorf("want %q, got %q", want, got)
	}
}

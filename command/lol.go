package command

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/ChomusukeBot/Chomusuke/message"
	"github.com/ChomusukeBot/Chomusuke/riot"
)

// lolColor is the color of League of Legends embeds.
const lolColor = 0xEDB24C

// summoner resolves the region and summoner arguments, replying on failure.
func summoner(ctx context.Context, robo *Robot, call *Invocation) (string, *riot.Summoner) {
	if robo.Riot == nil {
		call.Reply(ctx, robo, message.Text("League of Legends commands are not available."))
		return "", nil
	}
	platform, ok := riot.Platform(call.Args["region"])
	if !ok {
		call.Reply(ctx, robo, message.Text("That region was not found. Please use one of the following:\n"+strings.Join(riot.Regions(), ", ")))
		return "", nil
	}
	s, err := robo.Riot.Summoner(ctx, platform, call.Args["summoner"])
	switch {
	case err == nil:
		return platform, s
	case errors.Is(err, riot.ErrNotFound):
		call.Reply(ctx, robo, message.Text("Summoner not found. Please double check that you are using the summoner name and not the username."))
	default:
		lolFailed(ctx, robo, call, "summoner", err)
	}
	return "", nil
}

// LoLProfile shows a summoner's profile.
//   - region: Region name, like euw.
//   - summoner: Summoner name.
func LoLProfile(ctx context.Context, robo *Robot, call *Invocation) {
	platform, s := summoner(ctx, robo, call)
	if s == nil {
		return
	}
	ranked, err := robo.Riot.Ranked(ctx, platform, s.ID)
	if err != nil {
		lolFailed(ctx, robo, call, "ranked", err)
		return
	}
	rank, wl, lp := "Unranked", "Unranked", "Unranked"
	if len(ranked) != 0 {
		r := ranked[0]
		rank = r.Tier + " " + r.Rank
		wl = fmt.Sprintf("%d/%d", r.Wins, r.Losses)
		lp = strconv.Itoa(r.LeaguePoints)
	}
	call.Reply(ctx, robo, message.Rich(&message.Embed{
		Title:     "Profile of " + s.Name,
		Thumbnail: robo.Static.ProfileIcon(s.ProfileIconID),
		Color:     lolColor,
		Fields: []message.Field{
			{Name: "Summoner Level", Value: fmt.Sprintf("Level %d", s.SummonerLevel), Inline: true},
			{Name: "Rank", Value: rank, Inline: true},
			{Name: "Wins/Loses", Value: wl, Inline: true},
			{Name: "League Points", Value: lp, Inline: true},
		},
	}))
}

// LoLMatch shows a match from a summoner's history.
//   - region: Region name, like euw.
//   - n: Number of matches back, starting from 0 for the latest. Optional.
//   - summoner: Summoner name.
func LoLMatch(ctx context.Context, robo *Robot, call *Invocation) {
	n := 0
	if s := call.Args["n"]; s != "" {
		var err error
		n, err = strconv.Atoi(s)
		if err != nil || n < 0 {
			call.Reply(ctx, robo, message.Text("Invalid arguments."))
			return
		}
	}
	platform, s := summoner(ctx, robo, call)
	if s == nil {
		return
	}
	refs, err := robo.Riot.Matches(ctx, platform, s.AccountID, n, n+1)
	if err != nil {
		lolFailed(ctx, robo, call, "matches", err)
		return
	}
	for _, ref := range refs {
		m, err := robo.Riot.Match(ctx, platform, ref.GameID)
		if err != nil {
			lolFailed(ctx, robo, call, "match", err)
			return
		}
		call.Reply(ctx, robo, message.Rich(matchEmbed(robo.Static, m, call.Message.Time())))
	}
}

// matchEmbed renders a match as seen at the given time.
func matchEmbed(static *riot.Static, m *riot.Match, now time.Time) *message.Embed {
	stamp := "today"
	if days := int(now.Sub(m.Created()).Hours() / 24); days > 0 {
		stamp = fmt.Sprintf("%d day(s) ago", days)
	}
	winner := "Red"
	if len(m.Teams) != 0 && m.Teams[0].Win == "Win" {
		winner = "Blue"
	}
	k := min(5, len(m.Participants))
	return &message.Embed{
		Title:       fmt.Sprintf("%s (%s)", riot.Queue(m.QueueID), stamp),
		Description: "Game duration: " + time.Time{}.Add(m.Duration()).Format("15:04:05"),
		Color:       lolColor,
		Fields: []message.Field{
			{Name: "🔵 BLUE TEAM 🔵", Value: team(static, m, 0, k)},
			{Name: "🔴 RED TEAM 🔴", Value: team(static, m, k, len(m.Participants))},
		},
		Footer: winner + " team won!",
	}
}

// team renders the participants of a match in [lo, hi).
func team(static *riot.Static, m *riot.Match, lo, hi int) string {
	names := make(map[int]string, len(m.ParticipantIdentities))
	for _, id := range m.ParticipantIdentities {
		names[id.ParticipantID] = id.Player.SummonerName
	}
	var b strings.Builder
	for _, p := range m.Participants[lo:hi] {
		fmt.Fprintf(&b, "%s - %s (%d/%d/%d)\n", names[p.ParticipantID], static.Champion(p.ChampionID), p.Stats.Kills, p.Stats.Deaths, p.Stats.Assists)
	}
	return b.String()
}

func lolFailed(ctx context.Context, robo *Robot, call *Invocation, op string, err error) {
	robo.Log.ErrorContext(ctx, "league of legends request failed", slog.String("op", op), slog.Any("err", err))
	call.Reply(ctx, robo, message.Text("Something went wrong while talking to League of Legends."))
}

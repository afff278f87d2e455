package command

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/ChomusukeBot/Chomusuke/message"
	"github.com/ChomusukeBot/Chomusuke/overwatch"
)

// Overwatch shows a player's statistics.
//   - player: Player name. PC names need a discriminator, like Lemon#13526.
//   - platform: One of pc, psn, or xbl. Optional.
//   - region: One of us, eu, kr, cn, or global. Optional.
func Overwatch(ctx context.Context, robo *Robot, call *Invocation) {
	name := call.Args["player"]
	if name == "" {
		call.Reply(ctx, robo, message.Text("You must provide both a player and a platform to retrieve player stats."))
		return
	}
	p, err := overwatch.ParsePlayer(name, call.Args["platform"], call.Args["region"])
	switch {
	case err == nil: // do nothing
	case overwatch.IsDiscriminatorError(err):
		call.Reply(ctx, robo, message.Text("PC player names must include a discriminator. Example: `Lemon#13526`"))
		return
	case call.Args["platform"] != "" && !slices.Contains(overwatch.Platforms, call.Args["platform"]):
		call.Reply(ctx, robo, message.Format("`%s` is not a valid platform. \nValid platform choices are: `pc`, `psn`, or `xbl`.", call.Args["platform"]))
		return
	default:
		call.Reply(ctx, robo, message.Format("`%s` is not a valid region. \nValid choices for region are `%s`", call.Args["region"], strings.Join(overwatch.Regions, "`, `")))
		return
	}
	prof, err := robo.Overwatch.Profile(ctx, p)
	switch {
	case err == nil: // do nothing
	case errors.Is(err, overwatch.ErrNotFound):
		call.Reply(ctx, robo, message.Text("The profile for the player specified either does not exist or is set private."))
		return
	default:
		overwatchFailed(ctx, robo, call, "profile", err)
		return
	}
	stats, err := robo.Overwatch.Stats(ctx, p)
	if err != nil {
		overwatchFailed(ctx, robo, call, "stats", err)
		return
	}
	call.Reply(ctx, robo, message.Rich(statsEmbed(p, prof, stats)))
}

// statsEmbed renders a player's statistics. Competitive statistics are
// included only for ranked players.
func statsEmbed(p overwatch.Player, prof *overwatch.Profile, stats *overwatch.Stats) *message.Embed {
	comp := prof.Competitive.Rank != nil
	e := &message.Embed{
		Title:     p.Name + " Overwatch Statistics",
		Thumbnail: stats.Portrait,
	}
	add := func(name, value string) {
		e.Fields = append(e.Fields, message.Field{Name: name, Value: value, Inline: true})
	}
	add("Level", strconv.Itoa(stats.Level))
	if comp {
		add("Competitive Rank", strconv.Itoa(*prof.Competitive.Rank))
	}
	s := &stats.Stats
	add("Quick Play Time", playTime(s.Game.QuickPlay))
	if comp {
		add("Competitive Play Time", playTime(s.Game.Competitive))
	}
	add("Quick Play Heroes", heroes(s.TopHeroes.QuickPlay.Played))
	if comp {
		add("Competitive Heroes", heroes(s.TopHeroes.Competitive.Played))
	}
	add("Quick Play Averages (10 mins)", averages(s.Average.QuickPlay))
	if comp {
		add("Competitive Averages (10 mins)", averages(s.Average.Competitive))
	}
	add("Quick Play KDR", kdr(s.Combat.QuickPlay))
	if comp {
		add("Competitive KDR", kdr(s.Combat.Competitive))
	}
	return e
}

// playTime is the last game stat, which the API reports as time played.
func playTime(game []overwatch.Stat) string {
	if len(game) == 0 {
		return "None"
	}
	return game[len(game)-1].Value
}

func heroes(played []overwatch.HeroTime) string {
	l := make([]string, 0, 3)
	for _, h := range played[:min(3, len(played))] {
		l = append(l, fmt.Sprintf("*%s*:  %s", h.Hero, h.Played))
	}
	return "• " + strings.Join(l, "\n• ")
}

func averages(avg []overwatch.Stat) string {
	titles := []struct{ name, title string }{
		{"Damage Done", "All Damage Done - Avg per 10 Min"},
		{"Eliminations", "Eliminations - Avg per 10 Min"},
		{"Deaths", "Deaths - Avg per 10 Min"},
	}
	l := make([]string, 0, len(titles))
	for _, t := range titles {
		v, ok := overwatch.Find(avg, t.title)
		if !ok {
			v = "None"
		}
		l = append(l, fmt.Sprintf("**%s**: %s", t.name, v))
	}
	return "• " + strings.Join(l, "\n• ")
}

func kdr(combat []overwatch.Stat) string {
	k := overwatch.CombatKDR(combat)
	return fmt.Sprintf("%s (%d/%d)", strconv.FormatFloat(k.Ratio(), 'f', -1, 64), k.Eliminations, k.Deaths)
}

// OverwatchStatus reports whether the Overwatch API is working.
func OverwatchStatus(ctx context.Context, robo *Robot, call *Invocation) {
	status, err := robo.Overwatch.Status(ctx)
	if err != nil {
		robo.Log.WarnContext(ctx, "overwatch status failed", slog.Any("err", err))
	}
	if status == http.StatusOK {
		call.Reply(ctx, robo, message.Text("Overwatch API functioning normally! 👍"))
		return
	}
	call.Reply(ctx, robo, message.Format("Something is wrong with the overwatch API! Got status `%d`", status))
}

func overwatchFailed(ctx context.Context, robo *Robot, call *Invocation, op string, err error) {
	robo.Log.ErrorContext(ctx, "overwatch request failed", slog.String("op", op), slog.Any("err", err))
	call.Reply(ctx, robo, message.Text("Something went wrong when attempting to contact the Overwatch API."))
}

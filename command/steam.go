package command

import (
	"context"
	"errors"
	"log/slog"

	"github.com/ChomusukeBot/Chomusuke/message"
	"github.com/ChomusukeBot/Chomusuke/steam"
)

const steamColor = 0x1b2838

// SteamProfile shows a Steam profile.
//   - id: 64-bit Steam ID.
func SteamProfile(ctx context.Context, robo *Robot, call *Invocation) {
	if robo.Steam == nil {
		call.Reply(ctx, robo, message.Text("Steam commands are not available."))
		return
	}
	p, err := robo.Steam.PlayerSummary(ctx, call.Args["id"])
	switch {
	case err == nil: // do nothing
	case errors.Is(err, steam.ErrNotFound):
		call.Reply(ctx, robo, message.Text("No Steam profile was found with that ID."))
		return
	default:
		robo.Log.ErrorContext(ctx, "steam request failed", slog.Any("err", err))
		call.Reply(ctx, robo, message.Text("Something went wrong while talking to Steam."))
		return
	}
	e := &message.Embed{
		Title:     p.PersonaName,
		URL:       p.ProfileURL,
		Thumbnail: p.AvatarFull,
		Color:     steamColor,
		Footer:    "Steam ID " + p.SteamID,
	}
	if p.RealName != "" {
		e.Fields = append(e.Fields, message.Field{Name: "Real Name", Value: p.RealName, Inline: true})
	}
	if p.CountryCode != "" {
		e.Fields = append(e.Fields, message.Field{Name: "Country", Value: p.CountryCode, Inline: true})
	}
	call.Reply(ctx, robo, message.Rich(e))
}

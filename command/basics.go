package command

import (
	"context"
	"log/slog"

	"github.com/ChomusukeBot/Chomusuke/message"
)

const info = "Chomusuke is a Discord Bot created with the intention of " +
	"providing productive integrations for Developers and Gamers.\n\n" +
	"[Support (GitHub)](https://github.com/ChomusukeBot/Chomusuke/issues) | " +
	"[Support (Discord)](https://discord.gg/Cf6sspj) | " +
	"[Roadmap](https://github.com/ChomusukeBot/Chomusuke/projects)"

// Info shows basic information about the bot.
func Info(ctx context.Context, robo *Robot, call *Invocation) {
	call.Reply(ctx, robo, message.Rich(&message.Embed{
		Title:       "About " + robo.Name,
		URL:         "https://github.com/ChomusukeBot",
		Description: info,
		Thumbnail:   "https://avatars2.githubusercontent.com/u/52353631",
		Color:       0xE40025,
	}))
}

// Stop shuts down the bot.
func Stop(ctx context.Context, robo *Robot, call *Invocation) {
	robo.Log.WarnContext(ctx, "shutdown requested", slog.String("user", call.Message.Sender), slog.String("name", call.Message.Name))
	call.Reply(ctx, robo, message.Format("%s Bye!", call.Message.Mention()))
	robo.Stop()
}

package command

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/ChomusukeBot/Chomusuke/docstore"
	"github.com/ChomusukeBot/Chomusuke/message"
)

// greeting is the welcome message configuration of a guild.
type greeting struct {
	Enabled bool   `json:"enabled"`
	Channel string `json:"channel,omitzero"`
	Msg     string `json:"msg,omitzero"`
}

func welcomes(robo *Robot) docstore.Collection {
	return robo.Docs.Collection("welcome")
}

// Welcome shows the welcome message configuration of the guild.
func Welcome(ctx context.Context, robo *Robot, call *Invocation) {
	guild := call.Message.Guild
	g, err := docstore.Find[greeting](ctx, welcomes(robo), guild)
	if err != nil && !errors.Is(err, docstore.ErrNotFound) {
		welcomeFailed(ctx, robo, call, "get", err)
		return
	}
	var b strings.Builder
	if g.Enabled {
		b.WriteString("Welcome messages are enabled\n")
	} else {
		b.WriteString("Welcome messages are disabled\n")
	}
	if g.Channel != "" && inGuild(ctx, call.Chat, g.Channel, guild) {
		b.WriteString("They will be sent to <#" + g.Channel + ">\n")
	} else {
		b.WriteString("No channel is set or is invalid\n")
	}
	if g.Msg != "" {
		b.WriteString("The message is\n```\n" + g.Msg + "\n```")
	} else {
		b.WriteString("There is no message set")
	}
	call.Reply(ctx, robo, message.Text(b.String()))
}

// WelcomeActivation enables or disables welcome messages.
//   - enabled: Boolean word like yes, off, true, or 0.
func WelcomeActivation(ctx context.Context, robo *Robot, call *Invocation) {
	on, ok := parseBool(call.Args["enabled"])
	if !ok {
		call.Reply(ctx, robo, message.Text("Invalid arguments."))
		return
	}
	if err := modifyGreeting(ctx, robo, call, func(g *greeting) { g.Enabled = on }); err != nil {
		welcomeFailed(ctx, robo, call, "activation", err)
		return
	}
	if on {
		call.Reply(ctx, robo, message.Text("The welcome messages have been enabled"))
	} else {
		call.Reply(ctx, robo, message.Text("The welcome messages have been disabled"))
	}
}

// WelcomeMessage sets the welcome message.
//   - msg: The message.
func WelcomeMessage(ctx context.Context, robo *Robot, call *Invocation) {
	msg := call.Args["msg"]
	if err := modifyGreeting(ctx, robo, call, func(g *greeting) { g.Msg = msg }); err != nil {
		welcomeFailed(ctx, robo, call, "message", err)
		return
	}
	call.Reply(ctx, robo, message.Text("The welcome message was set to:\n```\n"+msg+"\n```"))
}

// WelcomeChannel sets the channel for welcome messages.
//   - channel: Channel ID. The channel must be in the guild.
func WelcomeChannel(ctx context.Context, robo *Robot, call *Invocation) {
	ch := call.Args["channel"]
	if !inGuild(ctx, call.Chat, ch, call.Message.Guild) {
		call.Reply(ctx, robo, message.Text("The channel is not part of the current guild."))
		return
	}
	if err := modifyGreeting(ctx, robo, call, func(g *greeting) { g.Channel = ch }); err != nil {
		welcomeFailed(ctx, robo, call, "channel", err)
		return
	}
	call.Reply(ctx, robo, message.Text("The channel for welcome messages was set to <#"+ch+">"))
}

// Greet sends the welcome message for a user who just joined a guild.
func Greet(ctx context.Context, robo *Robot, chat Chat, guild, user string) {
	log := robo.Log.With(slog.String("guild", guild), slog.String("user", user))
	g, err := docstore.Find[greeting](ctx, welcomes(robo), guild)
	switch {
	case err == nil: // do nothing
	case errors.Is(err, docstore.ErrNotFound):
		return
	default:
		log.ErrorContext(ctx, "couldn't get welcome settings", slog.Any("err", err))
		return
	}
	if !g.Enabled {
		return
	}
	if g.Msg == "" {
		log.ErrorContext(ctx, "welcome messages enabled with no message")
		return
	}
	if g.Channel == "" {
		log.ErrorContext(ctx, "welcome messages enabled with no channel")
		return
	}
	if !inGuild(ctx, chat, g.Channel, guild) {
		log.ErrorContext(ctx, "welcome channel is missing or not in the guild", slog.String("channel", g.Channel))
		return
	}
	msg := message.Sent{To: g.Channel, Content: message.Text(message.Mention(user) + " " + g.Msg)}
	if err := chat.Send(ctx, msg); err != nil {
		log.ErrorContext(ctx, "couldn't send welcome message", slog.String("channel", g.Channel), slog.Any("err", err))
		return
	}
	log.InfoContext(ctx, "welcome message sent", slog.String("channel", g.Channel))
}

func modifyGreeting(ctx context.Context, robo *Robot, call *Invocation, f func(g *greeting)) error {
	return docstore.Modify(ctx, welcomes(robo), call.Message.Guild, func(g *greeting, exists bool) error {
		f(g)
		return nil
	})
}

// inGuild reports whether a channel exists and belongs to a guild.
func inGuild(ctx context.Context, chat Chat, channel, guild string) bool {
	g, err := chat.ChannelGuild(ctx, channel)
	return err == nil && g == guild
}

// parseBool interprets the boolean words people type in chat.
func parseBool(s string) (v, ok bool) {
	switch strings.ToLower(s) {
	case "yes", "y", "true", "t", "1", "enable", "on":
		return true, true
	case "no", "n", "false", "f", "0", "disable", "off":
		return false, true
	default:
		return false, false
	}
}

func welcomeFailed(ctx context.Context, robo *Robot, call *Invocation, op string, err error) {
	robo.Log.ErrorContext(ctx, "welcome operation failed", slog.String("op", op), slog.String("guild", call.Message.Guild), slog.Any("err", err))
	call.Reply(ctx, robo, message.Text("Something went wrong while changing the welcome messages. Try again. Sorry!"))
}

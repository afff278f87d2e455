package command

import (
	"context"
	"log/slog"

	"github.com/ChomusukeBot/Chomusuke/message"
)

// Invocation is a command invocation. An Invocation and its fields must not
// be modified or retained by any command.
type Invocation struct {
	// Chat is the connection through which the invocation arrived.
	Chat Chat
	// Message is the message which triggered the invocation. It is always
	// non-nil, but not all fields are guaranteed to be populated.
	Message *message.Received
	// Args is the parsed arguments to the command.
	Args map[string]string
	// Prefix is the command prefix in effect where the command was invoked.
	Prefix string
}

// Reply sends content to the channel where the invocation occurred.
// Failures are logged.
func (call *Invocation) Reply(ctx context.Context, robo *Robot, c message.Content) {
	if c.IsZero() {
		return
	}
	msg := message.Sent{To: call.Message.To, Content: c}
	if err := call.Chat.Send(ctx, msg); err != nil {
		robo.Log.ErrorContext(ctx, "couldn't send reply", slog.String("channel", call.Message.To), slog.Any("err", err))
	}
}

// Func executes a command.
type Func func(ctx context.Context, robo *Robot, call *Invocation)

// Chat is the chat service as seen by commands.
type Chat interface {
	// Send sends a message to a channel.
	Send(ctx context.Context, msg message.Sent) error
	// Direct sends a direct message to a user.
	Direct(ctx context.Context, user string, c message.Content) error
	// Delete deletes a message from a channel.
	Delete(ctx context.Context, channel, id string) error
	// Typing shows a typing indicator in a channel.
	Typing(ctx context.Context, channel string) error
	// ChannelGuild returns the guild which contains a channel.
	ChannelGuild(ctx context.Context, channel string) (string, error)
	// GuildName returns the display name of a guild.
	GuildName(ctx context.Context, guild string) (string, error)
	// HasMember reports whether a user is a member of a guild.
	HasMember(ctx context.Context, guild, user string) (bool, error)
}

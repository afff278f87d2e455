package command

import (
	"context"
	"log/slog"

	"github.com/ChomusukeBot/Chomusuke/message"
)

// EchoIn sends a plain text message to any channel.
//   - in: ID of the channel to send to.
//   - msg: Message to send.
func EchoIn(ctx context.Context, robo *Robot, call *Invocation) {
	t := call.Args["in"]
	if err := call.Chat.Send(ctx, message.Sent{To: t, Content: message.Text(call.Args["msg"])}); err != nil {
		robo.Log.WarnContext(ctx, "echo into unknown channel", slog.String("target", t), slog.Any("err", err))
	}
}

// Echo sends a plain text message to the channel in which it is invoked.
//   - msg: Message to send.
func Echo(ctx context.Context, robo *Robot, call *Invocation) {
	call.Reply(ctx, robo, message.Text(call.Args["msg"]))
}

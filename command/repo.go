package command

import (
	"context"
	"log/slog"
	"strings"

	"github.com/ChomusukeBot/Chomusuke/repo"
)

// integration finds the repository integration named by the provider
// argument.
func integration(ctx context.Context, robo *Robot, call *Invocation) *repo.Integration {
	name := strings.ToLower(call.Args["provider"])
	i := robo.Repos[name]
	if i == nil {
		robo.Log.WarnContext(ctx, "no such provider", slog.String("provider", name))
	}
	return i
}

// AddToken validates and stores a user's token for a provider. The caller
// is responsible for deleting the message carrying the token.
//   - provider: Name of the provider.
//   - token: The token.
func AddToken(ctx context.Context, robo *Robot, call *Invocation) {
	i := integration(ctx, robo, call)
	if i == nil {
		return
	}
	typing(ctx, robo, call)
	call.Reply(ctx, robo, i.AddToken(ctx, call.Message.Sender, call.Args["token"]))
}

// Pick chooses the repository for a user's future operations.
//   - provider: Name of the provider.
//   - slug: Repository slug, like owner/name.
func Pick(ctx context.Context, robo *Robot, call *Invocation) {
	i := integration(ctx, robo, call)
	if i == nil {
		return
	}
	call.Reply(ctx, robo, i.PickRepository(ctx, call.Message.Sender, call.Args["slug"]))
}

// Repos lists the repositories a user can access.
//   - provider: Name of the provider.
func Repos(ctx context.Context, robo *Robot, call *Invocation) {
	i := integration(ctx, robo, call)
	if i == nil {
		return
	}
	typing(ctx, robo, call)
	call.Reply(ctx, robo, i.ListRepositories(ctx, call.Message.Sender, call.Message.Name))
}

// Trigger starts a build of the user's picked repository.
//   - provider: Name of the provider.
func Trigger(ctx context.Context, robo *Robot, call *Invocation) {
	i := integration(ctx, robo, call)
	if i == nil {
		return
	}
	typing(ctx, robo, call)
	call.Reply(ctx, robo, i.TriggerBuild(ctx, call.Message.Sender, call.Message.Name))
}

// Builds lists the recent builds of the user's picked repository.
//   - provider: Name of the provider.
func Builds(ctx context.Context, robo *Robot, call *Invocation) {
	i := integration(ctx, robo, call)
	if i == nil {
		return
	}
	typing(ctx, robo, call)
	call.Reply(ctx, robo, i.ListBuilds(ctx, call.Message.Sender))
}

func typing(ctx context.Context, robo *Robot, call *Invocation) {
	if err := call.Chat.Typing(ctx, call.Message.To); err != nil {
		robo.Log.WarnContext(ctx, "couldn't show typing", slog.String("channel", call.Message.To), slog.Any("err", err))
	}
}

package command

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/ChomusukeBot/Chomusuke/message"
	"github.com/ChomusukeBot/Chomusuke/settings"
)

// Setting lists, shows, or changes guild settings. Changing a setting
// requires permission to manage the guild.
//   - name: Setting name. If empty, the available settings are listed.
//   - value: New value. If empty, the current value is shown.
func Setting(ctx context.Context, robo *Robot, call *Invocation) {
	name, value := call.Args["name"], call.Args["value"]
	if name == "" {
		call.Reply(ctx, robo, message.Text("The available settings are: "+strings.Join(robo.Settings.Names(), ", ")))
		return
	}
	name, err := robo.Settings.Canonical(name)
	if err != nil {
		call.Reply(ctx, robo, message.Text("The specified setting is not valid. Make sure that is written correctly and try again."))
		return
	}
	guild := call.Message.Guild
	if value == "" {
		v, err := robo.Settings.Get(ctx, guild, name)
		if err != nil {
			robo.Log.ErrorContext(ctx, "couldn't get setting", slog.String("setting", name), slog.Any("err", err))
			call.Reply(ctx, robo, message.Text("Something went wrong while getting that setting."))
			return
		}
		call.Reply(ctx, robo, message.Format("The existing value of %s is %s", name, v))
		return
	}
	if !call.Message.IsModerator {
		call.Reply(ctx, robo, message.Text("You do not have permission to use this command!"))
		return
	}
	if err := robo.Settings.Set(ctx, guild, name, value); err != nil {
		if !errors.Is(err, settings.ErrUnknown) {
			robo.Log.ErrorContext(ctx, "couldn't save setting", slog.String("setting", name), slog.Any("err", err))
		}
		call.Reply(ctx, robo, message.Text("Something went wrong while saving that setting."))
		return
	}
	robo.Log.InfoContext(ctx, "setting changed", slog.String("guild", guild), slog.String("setting", name), slog.String("value", value))
	call.Reply(ctx, robo, message.Format("Setting for %s was saved!", name))
}

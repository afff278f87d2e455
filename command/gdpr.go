package command

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-json-experiment/json"
	"golang.org/x/time/rate"

	"github.com/ChomusukeBot/Chomusuke/message"
)

// dumpEvery is the cooldown between data exports for one user.
const dumpEvery = 12 * time.Minute

// Dump sends a user all of the data stored about them as a JSON file by
// direct message. Each user may dump once per cooldown period.
func Dump(ctx context.Context, robo *Robot, call *Invocation) {
	user := call.Message.Sender
	now := call.Message.Time()
	lim, _ := robo.Cooldowns.LoadOrStore(user, func() *rate.Limiter {
		return rate.NewLimiter(rate.Every(dumpEvery), 1)
	})
	r := lim.ReserveN(now, 1)
	if d := r.DelayFrom(now); d > 0 {
		r.CancelAt(now)
		robo.Log.InfoContext(ctx, "dump on cooldown", slog.String("user", user), slog.Duration("delay", d))
		call.Reply(ctx, robo, message.Format("Command is on cooldown! Please retry after `%.2fs`", d.Seconds()))
		return
	}
	pruneCooldowns(robo, now)
	if err := call.Chat.Direct(ctx, user, message.Text("Please wait while we gather your data...")); err != nil {
		robo.Log.ErrorContext(ctx, "couldn't send dump notice", slog.String("user", user), slog.Any("err", err))
		return
	}
	data := make(map[string]map[string]string, len(robo.Holders))
	for name, h := range robo.Holders {
		data[name] = h.DumpData(ctx, user)
	}
	b, err := json.Marshal(data, json.Deterministic(true))
	if err != nil {
		robo.Log.ErrorContext(ctx, "couldn't encode dump", slog.String("user", user), slog.Any("err", err))
		return
	}
	f := &message.File{Name: "data.json", Type: "application/json", Data: b}
	if err := call.Chat.Direct(ctx, user, message.Content{File: f}); err != nil {
		robo.Log.ErrorContext(ctx, "couldn't send dump", slog.String("user", user), slog.Any("err", err))
	}
}

// pruneCooldowns removes limiters which have fully recovered, since they
// behave the same as new ones.
func pruneCooldowns(robo *Robot, now time.Time) {
	for user, lim := range robo.Cooldowns.All() {
		if lim.TokensAt(now) >= float64(lim.Burst()) {
			robo.Cooldowns.Delete(user)
		}
	}
}

// Forget deletes all of the data stored about a user.
func Forget(ctx context.Context, robo *Robot, call *Invocation) {
	user := call.Message.Sender
	ok := true
	for name, h := range robo.Holders {
		if !h.ForgetData(ctx, user) {
			robo.Log.WarnContext(ctx, "holder did not forget", slog.String("holder", name), slog.String("user", user))
			ok = false
		}
	}
	if !ok {
		call.Reply(ctx, robo, message.Text("Some of your data could not be removed. Please try again later."))
		return
	}
	call.Reply(ctx, robo, message.Format("%s All of your data has been removed.", call.Message.Mention()))
}

package command

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/ChomusukeBot/Chomusuke/message"
	"github.com/ChomusukeBot/Chomusuke/riot"
)

// services are the APIs checked by [Status] in display order.
var services = []struct{ name, url string }{
	{"github", "https://api.github.com/zen"},
	{"travis", "https://api.travis-ci.com/"},
	{"appveyor", "https://ci.appveyor.com"},
	{"overwatch", "https://overwatchy.com/"},
}

const (
	statusUp   = "✅"
	statusDown = "\U0001F6AB"
)

// Status checks the availability of the APIs the bot uses.
func Status(ctx context.Context, robo *Robot, call *Invocation) {
	call.Reply(ctx, robo, message.Text("Fetching status...this may take some time."))
	up := make([]bool, len(services))
	regions := riot.Regions()
	down := make([]bool, len(regions))
	var group errgroup.Group
	for i, s := range services {
		group.Go(func() error {
			up[i] = available(ctx, robo, s.url)
			return nil
		})
	}
	if robo.Riot != nil {
		for i, r := range regions {
			group.Go(func() error {
				p, _ := riot.Platform(r)
				if err := robo.Riot.ShardStatus(ctx, p); err != nil {
					robo.Log.InfoContext(ctx, "riot region unavailable", slog.String("region", r), slog.Any("err", err))
					down[i] = true
				}
				return nil
			})
		}
	}
	group.Wait()
	e := &message.Embed{Title: "API statuses", Color: blue}
	for i, s := range services {
		v := statusDown
		if up[i] {
			v = statusUp
		}
		e.Fields = append(e.Fields, message.Field{Name: s.name + " API", Value: v, Inline: true})
	}
	if robo.Riot != nil {
		var except []string
		for i, r := range regions {
			if down[i] {
				except = append(except, r)
			}
		}
		v := statusUp
		if len(except) != 0 {
			v += " - except " + strings.Join(except, ", ")
		}
		e.Fields = append(e.Fields, message.Field{Name: "League of Legends API", Value: v, Inline: true})
	}
	call.Reply(ctx, robo, message.Rich(e))
}

// available reports whether a GET of a URL succeeds with status 200.
func available(ctx context.Context, robo *Robot, u string) bool {
	req, err := http.NewRequestWithContext(ctx, "GET", u, nil)
	if err != nil {
		robo.Log.ErrorContext(ctx, "couldn't make status request", slog.String("url", u), slog.Any("err", err))
		return false
	}
	hc := robo.HTTP
	if hc == nil {
		hc = http.DefaultClient
	}
	resp, err := hc.Do(req)
	if err != nil {
		robo.Log.InfoContext(ctx, "service unavailable", slog.String("url", u), slog.Any("err", err))
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

package command

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/go-github/v80/github"
	"golang.org/x/time/rate"

	"github.com/ChomusukeBot/Chomusuke/docstore"
	"github.com/ChomusukeBot/Chomusuke/overwatch"
	"github.com/ChomusukeBot/Chomusuke/repo"
	"github.com/ChomusukeBot/Chomusuke/riot"
	"github.com/ChomusukeBot/Chomusuke/settings"
	"github.com/ChomusukeBot/Chomusuke/steam"
	"github.com/ChomusukeBot/Chomusuke/syncmap"
)

// Robot is the bot state as is visible to commands.
type Robot struct {
	Log *slog.Logger
	// Owner is the user ID of the bot owner.
	Owner string
	// Name is the bot's own display name.
	Name string
	// Docs is the document store for command data.
	Docs     docstore.Store
	Settings *settings.Store
	// Repos is the repository integrations by lowercase provider name.
	Repos map[string]*repo.Integration
	// Holders is everything that stores data about users, by name.
	Holders map[string]DataHolder
	// HTTP is the client for simple availability checks.
	HTTP *http.Client
	// GitHub, Riot, Static, Overwatch, and Steam are API clients. Riot,
	// Static, and Steam are nil when not configured.
	GitHub    *github.Client
	Riot      *riot.Client
	Static    *riot.Static
	Overwatch *overwatch.Client
	Steam     *steam.Client
	// Cooldowns holds per-user limiters for rate limited commands.
	Cooldowns *syncmap.Map[string, *rate.Limiter]
	// Stop shuts down the bot.
	Stop context.CancelFunc
}

// DataHolder is anything which stores data about users.
type DataHolder interface {
	// DumpData returns all data stored about a user.
	DumpData(ctx context.Context, user string) map[string]string
	// ForgetData deletes all data stored about a user.
	ForgetData(ctx context.Context, user string) bool
}

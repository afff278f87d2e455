package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/google/go-github/v80/github"
	"golang.org/x/oauth2"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/ChomusukeBot/Chomusuke/auth"
	"github.com/ChomusukeBot/Chomusuke/command"
	"github.com/ChomusukeBot/Chomusuke/docstore"
	"github.com/ChomusukeBot/Chomusuke/metrics"
	"github.com/ChomusukeBot/Chomusuke/overwatch"
	"github.com/ChomusukeBot/Chomusuke/provider"
	"github.com/ChomusukeBot/Chomusuke/repo"
	"github.com/ChomusukeBot/Chomusuke/riot"
	"github.com/ChomusukeBot/Chomusuke/settings"
	"github.com/ChomusukeBot/Chomusuke/steam"
	"github.com/ChomusukeBot/Chomusuke/syncmap"
)

// Robot is the overall configuration for the bot.
type Robot struct {
	// base is the state shared with commands. Each invocation receives a
	// copy with its own logger.
	base command.Robot
	// commands is the dispatch table.
	commands []botCommand
	// defaultPrefix is the command prefix for direct messages and for guilds
	// which have not set their own.
	defaultPrefix string
	// me is the bot's own Discord user ID.
	me atomic.Value
	// metrics are the bot's metrics.
	metrics *metrics.Metrics
	// works is the worker pool.
	works chan chan func(context.Context)
	// session is the Discord session. It may be nil when Discord is not
	// configured.
	session *discordgo.Session
	// closers release the bot's resources.
	closers []func() error
}

// New creates a new robot instance. Use Init to set up its data sources and
// connections.
func New(m *metrics.Metrics, poolSize int) *Robot {
	return &Robot{
		base: command.Robot{
			Log:       slog.Default(),
			Cooldowns: syncmap.New[string, *rate.Limiter](),
			Stop:      func() {},
		},
		metrics: m,
		works:   make(chan chan func(context.Context), poolSize),
	}
}

// Init opens the robot's data sources and API clients from its configuration.
// The Discord session is created but not connected.
func (robo *Robot) Init(ctx context.Context, cfg *Config) error {
	secrets, err := loadSecrets(cfg.SecretFile)
	if err != nil {
		return err
	}
	docs, closeDB, err := loadDB(ctx, cfg.DB)
	if err != nil {
		return err
	}
	robo.closers = append(robo.closers, closeDB)
	hc := &http.Client{Timeout: timeout}
	if err := robo.SetSources(ctx, cfg, docs, auth.NewSealer(secrets.tokens), hc); err != nil {
		return err
	}
	if cfg.Discord.Token == "" {
		slog.WarnContext(ctx, "no discord token; running without chat")
		return nil
	}
	return robo.initDiscord(ctx, cfg.Discord.Token)
}

// SetSources sets the robot's document store and everything built on it,
// along with its API clients.
func (robo *Robot) SetSources(ctx context.Context, cfg *Config, docs docstore.Store, seal *auth.Sealer, hc *http.Client) error {
	robo.defaultPrefix = cfg.Discord.Prefix
	robo.base.Owner = cfg.Owner.ID
	robo.base.Name = cfg.Discord.Name
	if robo.base.Name == "" {
		robo.base.Name = "Chomusuke"
	}
	robo.base.Docs = docs
	robo.base.Settings = settings.New(docs, map[string]string{settings.Prefix: cfg.Discord.Prefix})
	robo.base.HTTP = hc

	robo.base.Repos = make(map[string]*repo.Integration, len(cfg.Providers))
	robo.base.Holders = make(map[string]command.DataHolder, len(cfg.Providers))
	for _, name := range cfg.Providers {
		p, ok := provider.ByName(name)
		if !ok {
			return fmt.Errorf("unknown provider %q; use any of %v", name, provider.Names())
		}
		if _, ok := robo.base.Repos[name]; ok {
			return fmt.Errorf("provider %q is listed more than once", name)
		}
		integ := repo.New(p, docs, seal, hc, robo.metrics.UpstreamLatency, slog.Default())
		robo.base.Repos[name] = integ
		robo.base.Holders[name] = integ
	}
	robo.commands = commandTable(cfg.Providers)

	ghc := hc
	if cfg.GitHub.Key != "" {
		tok := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.GitHub.Key})
		ghc = oauth2.NewClient(context.WithValue(ctx, oauth2.HTTPClient, hc), tok)
	}
	robo.base.GitHub = github.NewClient(ghc)
	robo.base.Overwatch = &overwatch.Client{HTTP: hc, Latency: robo.metrics.UpstreamLatency}
	if cfg.Riot.Key != "" {
		robo.base.Riot = &riot.Client{HTTP: hc, Key: cfg.Riot.Key, Latency: robo.metrics.UpstreamLatency}
		robo.base.Static = &riot.Static{HTTP: hc}
	}
	if cfg.Steam.Key != "" {
		robo.base.Steam = &steam.Client{HTTP: hc, Key: cfg.Steam.Key, Latency: robo.metrics.UpstreamLatency}
	}
	slog.InfoContext(ctx, "sources ready",
		slog.Any("providers", cfg.Providers),
		slog.Bool("riot", robo.base.Riot != nil),
		slog.Bool("steam", robo.base.Steam != nil),
	)
	return nil
}

// Run runs the bot until ctx is canceled or the owner stops it.
func (robo *Robot) Run(ctx context.Context, listen string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	robo.base.Stop = cancel
	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error { return robo.api(ctx, listen, new(http.ServeMux), robo.metrics.Collectors()) })
	if robo.session != nil {
		group.Go(func() error { return robo.discord(ctx) })
	}
	if robo.base.Static != nil {
		group.Go(func() error { return robo.base.Static.Run(ctx, time.Hour) })
	}
	err := group.Wait()
	if errors.Is(err, context.Canceled) {
		// Shutting down normally.
		err = nil
	}
	return err
}

// Close releases the robot's resources.
func (robo *Robot) Close() error {
	var err error
	for _, c := range robo.closers {
		err = errors.Join(err, c())
	}
	robo.closers = nil
	return err
}

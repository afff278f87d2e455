package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"slices"
	"strings"
	"time"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v3"

	"github.com/ChomusukeBot/Chomusuke/auth"
	"github.com/ChomusukeBot/Chomusuke/metrics"
)

var app = cli.Command{
	Name:  "chomusuke",
	Usage: "Discord bot for CI and game statistics",

	Flags: []cli.Flag{
		&flagConfig,
		&flagEnvFile,
		&flagLog,
		&flagLogFormat,
	},
	Commands: []*cli.Command{
		{
			Name:   "init",
			Usage:  "Create the database schema and the secret key",
			Action: cliInit,
		},
		{
			Name:      "data",
			Usage:     "Print all data stored about a user",
			ArgsUsage: "<user-id>",
			Action:    cliData,
		},
	},
	Action: cliRun,

	Authors: []any{
		"Chomusuke contributors",
	},
	Copyright: "Copyright 2024 Chomusuke contributors",
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	go func() {
		<-ctx.Done()
		stop()
	}()
	err := app.Run(ctx, os.Args)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func cliRun(ctx context.Context, cmd *cli.Command) error {
	slog.SetDefault(loggerFromFlags(cmd))
	cfg, md, err := loadConfig(ctx, cmd.String("config"))
	if err != nil {
		return err
	}
	if u := md.Undecoded(); len(u) != 0 {
		slog.WarnContext(ctx, "unknown config keys", slog.Any("keys", u))
	}
	robo := New(newMetrics(), runtime.GOMAXPROCS(0))
	defer robo.Close()
	if err := robo.Init(ctx, cfg); err != nil {
		return err
	}
	return robo.Run(ctx, cfg.HTTP.Listen)
}

func cliInit(ctx context.Context, cmd *cli.Command) error {
	slog.SetDefault(loggerFromFlags(cmd))
	cfg, _, err := loadConfig(ctx, cmd.String("config"))
	if err != nil {
		return err
	}
	if err := initDB(ctx, cfg.DB); err != nil {
		return err
	}
	slog.InfoContext(ctx, "database ready")
	switch err := writeSecret(cfg.SecretFile); {
	case err == nil:
		slog.InfoContext(ctx, "created secret key", slog.String("file", cfg.SecretFile))
	case errors.Is(err, os.ErrExist):
		slog.InfoContext(ctx, "secret key already exists", slog.String("file", cfg.SecretFile))
	default:
		return err
	}
	return nil
}

func cliData(ctx context.Context, cmd *cli.Command) error {
	slog.SetDefault(loggerFromFlags(cmd))
	user := cmd.Args().First()
	if user == "" {
		return errors.New("no user ID given")
	}
	cfg, _, err := loadConfig(ctx, cmd.String("config"))
	if err != nil {
		return err
	}
	secrets, err := loadSecrets(cfg.SecretFile)
	if err != nil {
		return err
	}
	docs, closeDB, err := loadDB(ctx, cfg.DB)
	if err != nil {
		return err
	}
	defer closeDB()
	robo := New(discardMetrics(), 1)
	if err := robo.SetSources(ctx, cfg, docs, auth.NewSealer(secrets.tokens), http.DefaultClient); err != nil {
		return err
	}
	data := make(map[string]map[string]string, len(robo.base.Holders))
	for _, name := range slices.Sorted(maps.Keys(robo.base.Holders)) {
		data[name] = robo.base.Holders[name].DumpData(ctx, user)
	}
	b, err := json.Marshal(data, json.Deterministic(true), jsontext.WithIndent("  "))
	if err != nil {
		return fmt.Errorf("couldn't encode data: %w", err)
	}
	fmt.Println(string(b))
	return nil
}

var (
	flagConfig = cli.StringFlag{
		Name:       "config",
		Required:   true,
		Usage:      "TOML config file",
		Persistent: true,
		Action: func(ctx context.Context, cmd *cli.Command, s string) error {
			i, err := os.Stat(s)
			if err != nil {
				return err
			}
			if !i.Mode().IsRegular() {
				return errors.New("config must be a regular file")
			}
			return nil
		},
	}

	flagEnvFile = cli.StringFlag{
		Name:       "env-file",
		Usage:      "File of environment variables to load before expanding the config",
		Persistent: true,
		Action: func(ctx context.Context, cmd *cli.Command, s string) error {
			// Variables already in the environment win.
			return godotenv.Load(s)
		},
	}

	flagLog = cli.StringFlag{
		Name:       "log",
		Usage:      "Logging level, one of debug, info, warn, error",
		Value:      "info",
		Persistent: true,
		Action: func(ctx context.Context, c *cli.Command, s string) error {
			var l slog.Level
			return l.UnmarshalText([]byte(s))
		},
	}

	flagLogFormat = cli.StringFlag{
		Name:       "log-format",
		Usage:      "Logging format, either text or json",
		Value:      "text",
		Persistent: true,
		Action: func(ctx context.Context, c *cli.Command, s string) error {
			switch strings.ToLower(s) {
			case "text", "json":
				return nil
			default:
				return errors.New("unknown logging format")
			}
		},
	}
)

func loggerFromFlags(cmd *cli.Command) *slog.Logger {
	var l slog.Level
	if err := l.UnmarshalText([]byte(cmd.String("log"))); err != nil {
		panic(err)
	}
	var h slog.Handler
	switch strings.ToLower(cmd.String("log-format")) {
	case "text":
		h = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l})
	case "json":
		h = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: l})
	}
	return slog.New(h)
}

// metrics configuration
func newMetrics() *metrics.Metrics {
	return &metrics.Metrics{
		MessagesCount: metrics.NewPromCounter(
			prometheus.NewCounter(
				prometheus.CounterOpts{
					Namespace: "chomusuke",
					Subsystem: "discord",
					Name:      "messages",
					Help:      "Number of messages received from Discord.",
				},
			),
		),
		CommandCount: metrics.NewPromCounterVec(
			prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "chomusuke",
					Subsystem: "discord",
					Name:      "commands",
					Help:      "Number of command invocations received in Discord.",
				},
				[]string{"command"},
			),
		),
		UpstreamLatency: metrics.NewPromObserverVec(
			prometheus.NewHistogramVec(
				prometheus.HistogramOpts{
					Buckets:   []float64{0.05, 0.1, 0.2, 0.5, 1, 2, 5, 10, 30},
					Namespace: "chomusuke",
					Subsystem: "upstream",
					Name:      "latency",
					Help:      "How long third-party API requests take in seconds",
				},
				[]string{"api", "op"},
			),
		),
		Guilds: metrics.NewPromGauge(
			prometheus.NewGauge(
				prometheus.GaugeOpts{
					Namespace: "chomusuke",
					Subsystem: "discord",
					Name:      "guilds",
					Help:      "Number of guilds the bot is in.",
				},
			),
		),
	}
}

func discardMetrics() *metrics.Metrics {
	return &metrics.Metrics{
		MessagesCount:   metrics.Discard,
		CommandCount:    metrics.Discard,
		UpstreamLatency: metrics.Discard,
		Guilds:          metrics.Discard,
	}
}

// timeout is how long a single HTTP request to a third-party API may take.
const timeout = 30 * time.Second

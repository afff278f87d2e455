package main

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/sha3"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/ChomusukeBot/Chomusuke/auth"
	"github.com/ChomusukeBot/Chomusuke/docstore"
	"github.com/ChomusukeBot/Chomusuke/docstore/kvdoc"
	"github.com/ChomusukeBot/Chomusuke/docstore/sqldoc"
)

// Load loads Chomusuke from a TOML configuration.
func Load(ctx context.Context, r io.Reader) (*Config, *toml.MetaData, error) {
	var cfg Config
	md, err := toml.NewDecoder(r).Decode(&cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("couldn't decode config: %w", err)
	}
	expandcfg(&cfg, os.Getenv)
	return &cfg, &md, nil
}

// loadConfig opens and loads the config file named by the config flag.
func loadConfig(ctx context.Context, file string) (*Config, *toml.MetaData, error) {
	r, err := os.Open(file)
	if err != nil {
		return nil, nil, fmt.Errorf("couldn't open config file: %w", err)
	}
	defer r.Close()
	cfg, md, err := Load(ctx, r)
	if err != nil {
		return nil, nil, fmt.Errorf("couldn't load config: %w", err)
	}
	return cfg, md, nil
}

// keys are the secrets derived from the bot's secret key.
type keys struct {
	// tokens is the key for sealing provider tokens at rest.
	tokens [auth.KeySize]byte
}

// loadSecrets reads the bot's secret key and derives the keys from it.
func loadSecrets(file string) (*keys, error) {
	k, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("couldn't read secret key: %w", err)
	}
	if len(k) < auth.KeySize {
		return nil, fmt.Errorf("secret key is too short: need at least %d bytes, have %d", auth.KeySize, len(k))
	}
	var s keys
	domainkey(s.tokens[:], k, []byte("tokens"))
	return &s, nil
}

// writeSecret creates a new secret key file. It refuses to overwrite an
// existing file.
func writeSecret(file string) error {
	f, err := os.OpenFile(file, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return fmt.Errorf("couldn't create secret key file: %w", err)
	}
	b := make([]byte, 64)
	rand.Read(b)
	if _, err := f.Write(b); err != nil {
		f.Close()
		return fmt.Errorf("couldn't write secret key: %w", err)
	}
	return f.Close()
}

// domainkey fills o with a key derived from k for the given domain. Panics if
// a key cannot be expanded.
func domainkey(o, k, domain []byte) []byte {
	kr := hkdf.Expand(sha3.New224, k, domain)
	if _, err := io.ReadFull(kr, o); err != nil {
		panic(err)
	}
	return o
}

// loadDB opens the configured document store. The returned function closes
// the underlying database.
func loadDB(ctx context.Context, cfg DBCfg) (docstore.Store, func() error, error) {
	if cfg.SQL != "" && cfg.KV != "" {
		return nil, nil, fmt.Errorf("multiple database backends requested; use exactly one")
	}
	if cfg.SQL == "" && cfg.KV == "" {
		return nil, nil, fmt.Errorf("no database backends requested; use exactly one")
	}
	if cfg.KV != "" {
		slog.DebugContext(ctx, "using kv database", slog.String("path", cfg.KV), slog.String("flags", cfg.KVFlag))
		opts := badger.DefaultOptions(cfg.KV)
		opts = opts.WithLogger(nil)
		opts = opts.WithCompression(options.None)
		opts = opts.WithBloomFalsePositive(0)
		kv, err := badger.Open(opts.FromSuperFlag(cfg.KVFlag))
		if err != nil {
			return nil, nil, fmt.Errorf("couldn't open kv db: %w", err)
		}
		return kvdoc.New(kv), kv.Close, nil
	}
	slog.DebugContext(ctx, "using sql database", slog.String("path", cfg.SQL))
	pool, err := sqlitex.NewPool(cfg.SQL, sqlitex.PoolOptions{})
	if err != nil {
		return nil, nil, fmt.Errorf("couldn't open sql db: %w", err)
	}
	docs, err := sqldoc.Open(ctx, pool)
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("couldn't open documents: %w", err)
	}
	return docs, pool.Close, nil
}

// initDB creates the schema of the configured database.
func initDB(ctx context.Context, cfg DBCfg) error {
	if cfg.SQL == "" {
		// Badger needs no schema.
		return nil
	}
	pool, err := sqlitex.NewPool(cfg.SQL, sqlitex.PoolOptions{})
	if err != nil {
		return fmt.Errorf("couldn't open sql db: %w", err)
	}
	defer pool.Close()
	if err := sqldoc.Init(ctx, pool); err != nil {
		return fmt.Errorf("couldn't initialize sql db: %w", err)
	}
	return nil
}

// Config is the marshaled structure of Chomusuke's configuration.
type Config struct {
	// SecretFile is the path to a file containing a secret key used to seal
	// provider tokens at rest.
	SecretFile string `toml:"secret"`
	// Owner is the table of metadata about the owner.
	Owner Owner `toml:"owner"`
	// DB is the table of database connection strings.
	DB DBCfg `toml:"db"`
	// HTTP is the configuration for the HTTP endpoint.
	HTTP HTTP `toml:"http"`
	// Discord is the configuration for connecting to Discord.
	Discord DiscordCfg `toml:"discord"`
	// Providers is the list of repository providers to enable.
	// Each must be one of appveyor, travis, or github.
	Providers []string `toml:"providers"`
	// GitHub, Riot, and Steam hold API keys. Riot and Steam commands are
	// disabled when their keys are empty.
	GitHub APIKey `toml:"github"`
	Riot   APIKey `toml:"riot"`
	Steam  APIKey `toml:"steam"`
}

// Owner is metadata about the bot owner.
type Owner struct {
	// ID is the Discord user ID of the owner. Owner commands are disabled
	// when it is empty.
	ID string `toml:"id"`
	// Name is the name of the owner. It does not need to be a username.
	Name string `toml:"name"`
}

// DBCfg is the configuration of databases.
type DBCfg struct {
	// SQL is a SQLite connection string.
	SQL string `toml:"sql"`
	// KV is a Badger directory.
	KV string `toml:"kv"`
	// KVFlag is a Badger superflag string.
	KVFlag string `toml:"kvflag"`
}

// HTTP is the configuration for the HTTP endpoint.
type HTTP struct {
	Listen string `toml:"listen"`
}

// DiscordCfg is the configuration for the Discord connection.
type DiscordCfg struct {
	// Token is the bot token.
	Token string `toml:"token"`
	// Prefix is the default command prefix.
	Prefix string `toml:"prefix"`
	// Name is the bot's display name in self-description commands.
	Name string `toml:"name"`
}

// APIKey is an API credential.
type APIKey struct {
	Key string `toml:"key"`
}

func expandcfg(cfg *Config, expand func(s string) string) {
	fields := []*string{
		&cfg.SecretFile,
		&cfg.Owner.ID,
		&cfg.Owner.Name,
		&cfg.DB.SQL,
		&cfg.DB.KV,
		&cfg.DB.KVFlag,
		&cfg.HTTP.Listen,
		&cfg.Discord.Token,
		&cfg.Discord.Prefix,
		&cfg.Discord.Name,
		&cfg.GitHub.Key,
		&cfg.Riot.Key,
		&cfg.Steam.Key,
	}
	for _, f := range fields {
		*f = os.Expand(*f, expand)
	}
	for i, p := range cfg.Providers {
		cfg.Providers[i] = strings.ToLower(os.Expand(p, expand))
	}
}

// Package settings stores per-guild configuration values.
package settings

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/ChomusukeBot/Chomusuke/docstore"
)

// Prefix is the name of the command prefix setting.
const Prefix = "prefix"

// ErrUnknown is returned for names that are not known settings.
var ErrUnknown = errors.New("unknown setting")

// Store holds the settings of every guild. Each guild's settings are one
// document in the settings collection.
type Store struct {
	docs     docstore.Collection
	defaults map[string]string
}

// New creates a settings store. The keys of defaults are the known settings.
func New(s docstore.Store, defaults map[string]string) *Store {
	d := make(map[string]string, len(defaults))
	for k, v := range defaults {
		d[strings.ToLower(k)] = v
	}
	return &Store{docs: s.Collection("settings"), defaults: d}
}

// Names returns the names of the known settings in sorted order.
func (s *Store) Names() []string {
	return slices.Sorted(maps.Keys(s.defaults))
}

// Canonical returns the canonical name of a setting.
// If there is no such setting, the error is [ErrUnknown].
func (s *Store) Canonical(name string) (string, error) {
	name = strings.ToLower(name)
	if _, ok := s.defaults[name]; !ok {
		return "", fmt.Errorf("%w %q", ErrUnknown, name)
	}
	return name, nil
}

// Get returns the value of a setting in a guild, or its default if the guild
// has not set it.
func (s *Store) Get(ctx context.Context, guild, name string) (string, error) {
	name, err := s.Canonical(name)
	if err != nil {
		return "", err
	}
	m, err := docstore.Find[map[string]string](ctx, s.docs, guild)
	switch {
	case errors.Is(err, docstore.ErrNotFound):
		return s.defaults[name], nil
	case err != nil:
		return "", fmt.Errorf("couldn't get settings for %s: %w", guild, err)
	}
	if v, ok := m[name]; ok {
		return v, nil
	}
	return s.defaults[name], nil
}

// Set changes the value of a setting in a guild.
func (s *Store) Set(ctx context.Context, guild, name, value string) error {
	name, err := s.Canonical(name)
	if err != nil {
		return err
	}
	err = docstore.Modify(ctx, s.docs, guild, func(m *map[string]string, exists bool) error {
		if *m == nil {
			*m = make(map[string]string)
		}
		(*m)[name] = value
		return nil
	})
	if err != nil {
		return fmt.Errorf("couldn't save setting %s for %s: %w", name, guild, err)
	}
	return nil
}

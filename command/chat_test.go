package command

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/time/rate"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/ChomusukeBot/Chomusuke/docstore/sqldoc"
	"github.com/ChomusukeBot/Chomusuke/message"
	"github.com/ChomusukeBot/Chomusuke/settings"
	"github.com/ChomusukeBot/Chomusuke/syncmap"
)

// fakeChat records everything commands send.
type fakeChat struct {
	mu      sync.Mutex
	sent    []message.Sent
	direct  map[string][]message.Content
	deleted []string
	typing  int

	// channels maps channel IDs to their guilds.
	channels map[string]string
	// guilds maps guild IDs to their names.
	guilds map[string]string
	// members is the set of guild/user pairs.
	members map[string]bool
}

func newChat() *fakeChat {
	return &fakeChat{
		direct:   make(map[string][]message.Content),
		channels: map[string]string{"kessoku-general": "kessoku", "sick-general": "sick"},
		guilds:   map[string]string{"kessoku": "Kessoku Band", "sick": "SICK HACK"},
		members:  map[string]bool{"kessoku/bocchi": true, "kessoku/nijika": true},
	}
}

func (c *fakeChat) Send(ctx context.Context, msg message.Sent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, msg)
	return nil
}

func (c *fakeChat) Direct(ctx context.Context, user string, m message.Content) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.direct[user] = append(c.direct[user], m)
	return nil
}

func (c *fakeChat) Delete(ctx context.Context, channel, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deleted = append(c.deleted, channel+"/"+id)
	return nil
}

func (c *fakeChat) Typing(ctx context.Context, channel string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.typing++
	return nil
}

func (c *fakeChat) ChannelGuild(ctx context.Context, channel string) (string, error) {
	g, ok := c.channels[channel]
	if !ok {
		return "", errors.New("unknown channel")
	}
	return g, nil
}

func (c *fakeChat) GuildName(ctx context.Context, guild string) (string, error) {
	n, ok := c.guilds[guild]
	if !ok {
		return "", errors.New("unknown guild")
	}
	return n, nil
}

func (c *fakeChat) HasMember(ctx context.Context, guild, user string) (bool, error) {
	return c.members[guild+"/"+user], nil
}

// last returns the most recently sent message and clears the record.
func (c *fakeChat) last(t *testing.T) message.Sent {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.sent) == 0 {
		t.Fatal("nothing sent")
	}
	m := c.sent[len(c.sent)-1]
	c.sent = nil
	return m
}

// quiet checks that nothing was sent.
func (c *fakeChat) quiet(t *testing.T) {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.sent) != 0 {
		t.Errorf("unexpected messages sent: %+v", c.sent)
		c.sent = nil
	}
}

var dbcount atomic.Uint64

func testRobot(t *testing.T) *Robot {
	t.Helper()
	ctx := context.Background()
	k := dbcount.Add(1)
	pool, err := sqlitex.NewPool(fmt.Sprintf("file:command-%d.db?mode=memory&cache=shared", k), sqlitex.PoolOptions{Flags: sqlite.OpenReadWrite | sqlite.OpenCreate | sqlite.OpenMemory | sqlite.OpenSharedCache | sqlite.OpenURI})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { pool.Close() })
	if err := sqldoc.Init(ctx, pool); err != nil {
		t.Fatal(err)
	}
	docs, err := sqldoc.Open(ctx, pool)
	if err != nil {
		t.Fatal(err)
	}
	return &Robot{
		Log:       slog.New(slog.DiscardHandler),
		Owner:     "seika",
		Name:      "Chomusuke",
		Docs:      docs,
		Settings:  settings.New(docs, map[string]string{settings.Prefix: "c!"}),
		Cooldowns: syncmap.New[string, *rate.Limiter](),
	}
}

// epoch is the time of test messages.
var epoch = time.Date(2024, time.March, 14, 15, 9, 26, 0, time.UTC)

// invocation creates an invocation of a message from bocchi in the kessoku
// guild at the test epoch.
func invocation(chat *fakeChat, args map[string]string) *Invocation {
	return &Invocation{
		Chat: chat,
		Message: &message.Received{
			ID:        "msg",
			To:        "kessoku-general",
			Guild:     "kessoku",
			Sender:    "bocchi",
			Name:      "Bocchi",
			Timestamp: epoch.UnixMilli(),
		},
		Args:   args,
		Prefix: "c!",
	}
}

package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/ChomusukeBot/Chomusuke/auth"
	"github.com/ChomusukeBot/Chomusuke/docstore/sqldoc"
	"github.com/ChomusukeBot/Chomusuke/message"
)

func TestParseCommand(t *testing.T) {
	cases := []struct {
		name   string
		prefix string
		text   string
		want   string
		ok     bool
	}{
		{"prefix", "c!", "c!info", "info", true},
		{"prefix space", "c!", "c! info", "info", true},
		{"leading space", "c!", "  c!tag guitar", "tag guitar", true},
		{"args", "c!", "c!github repo setlist kessoku", "github repo setlist kessoku", true},
		{"case sensitive prefix", "c!", "C!info", "", false},
		{"only prefix", "c!", "c!", "", false},
		{"no prefix", "c!", "info", "", false},
		{"prefix later", "c!", "say c!info", "", false},
		{"mention", "c!", "<@1234> info", "info", true},
		{"nick mention", "c!", "<@!1234> info", "info", true},
		{"other mention", "c!", "<@5678> info", "", false},
		{"mention only", "c!", "<@1234>", "", false},
		{"no prefix set", "", "<@1234> status", "status", true},
		{"long prefix", "chomusuke ", "chomusuke gdpr dump", "gdpr dump", true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, ok := parseCommand(c.prefix, "1234", c.text)
			if got != c.want || ok != c.ok {
				t.Errorf("wrong result from %q: want (%q, %t), got (%q, %t)", c.text, c.want, c.ok, got, ok)
			}
		})
	}
}

func TestFindCommand(t *testing.T) {
	cmds := commandTable([]string{"travis", "github"})
	cases := []struct {
		text string
		want string
		rest string
	}{
		{"info", "info", ""},
		{"INFO", "info", ""},
		{"information", "", ""},
		{"tag guitar", "tag", "guitar"},
		{"tag create bass  four strings", "tag-create", "bass  four strings"},
		{"Tag   Create bass x", "tag-create", "bass x"},
		{"tag creates", "tag", "creates"},
		{"tagging", "", ""},
		{"travis addtoken abc", "travis-addtoken", "abc"},
		{"travis builds", "travis-builds", ""},
		{"travis", "", ""},
		{"github addtoken abc", "github-addtoken", "abc"},
		{"github r setlist", "github-repo", "setlist"},
		{"github repo setlist", "github-repo", "setlist"},
		{"github s bocchi", "github-search", "bocchi"},
		{"labels kessoku setlist", "github-labels", "kessoku setlist"},
		{"appveyor addtoken abc", "", ""},
		{"apistatus", "status", ""},
		{"ow Lemon#13526 pc", "overwatch", "Lemon#13526 pc"},
		{"ow_status", "overwatch-status", ""},
		{"echoin 1 hi", "echoin", "1 hi"},
		{"echo hi", "echo", "hi"},
		{"welcome", "welcome", ""},
		{"welcome channel <#42>", "welcome-channel", "<#42>"},
		{"gdpr dump", "gdpr-dump", ""},
		{"gdpr", "", ""},
		{"myp 76561197960287930", "steam-profile", "76561197960287930"},
	}
	for _, c := range cases {
		cmd, rest := findCommand(cmds, c.text)
		var got string
		if cmd != nil {
			got = cmd.name
		}
		if got != c.want || rest != c.rest {
			t.Errorf("wrong command for %q: want %q with %q, got %q with %q", c.text, c.want, c.rest, got, rest)
		}
	}
}

func TestParseArgs(t *testing.T) {
	cmds := commandTable([]string{"travis"})
	cases := []struct {
		text string
		want map[string]string
	}{
		{"travis addtoken abc", map[string]string{"provider": "travis", "token": "abc"}},
		{"travis addtoken", nil},
		{"travis builds", map[string]string{"provider": "travis", "slug": ""}},
		{"tag create bass four\nstrings", map[string]string{"name": "bass", "content": "four\nstrings"}},
		{"tag guitar <@!42>", map[string]string{"name": "guitar", "to": "42"}},
		{"lol match euw 3 bocchi the rock", map[string]string{"region": "euw", "n": "3", "summoner": "bocchi the rock"}},
		{"lol match euw bocchi", map[string]string{"region": "euw", "n": "", "summoner": "bocchi"}},
		{"lol match euw", nil},
		{"github issue kessoku setlist #7", map[string]string{"owner": "kessoku", "repo": "setlist", "number": "7"}},
		{"ow", map[string]string{"player": "", "platform": "", "region": ""}},
		{"setting prefix !", map[string]string{"name": "prefix", "value": "!"}},
		{"info now", nil},
	}
	for _, c := range cases {
		cmd, rest := findCommand(cmds, c.text)
		if cmd == nil {
			t.Errorf("no command for %q", c.text)
			continue
		}
		got, ok := parseArgs(cmd, rest)
		if ok != (c.want != nil) {
			t.Errorf("wrong match for %q: want %t, got %t", c.text, c.want != nil, ok)
			continue
		}
		if len(got) != len(c.want) {
			t.Errorf("wrong args for %q: want %v, got %v", c.text, c.want, got)
			continue
		}
		for k, v := range c.want {
			if got[k] != v {
				t.Errorf("wrong %s for %q: want %q, got %q", k, c.text, v, got[k])
			}
		}
	}
}

// recorder is a chat that records sent and deleted messages.
type recorder struct {
	mu      sync.Mutex
	sent    []message.Sent
	deleted []string
}

func (r *recorder) Send(ctx context.Context, msg message.Sent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, msg)
	return nil
}

func (r *recorder) Direct(ctx context.Context, user string, c message.Content) error {
	return r.Send(ctx, message.Sent{To: "@" + user, Content: c})
}

func (r *recorder) Delete(ctx context.Context, channel, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deleted = append(r.deleted, channel+"/"+id)
	return nil
}

func (r *recorder) Typing(ctx context.Context, channel string) error { return nil }

func (r *recorder) ChannelGuild(ctx context.Context, channel string) (string, error) {
	return "kessoku", nil
}

func (r *recorder) GuildName(ctx context.Context, guild string) (string, error) {
	return "Kessoku Band", nil
}

func (r *recorder) HasMember(ctx context.Context, guild, user string) (bool, error) {
	return true, nil
}

// take returns everything sent and clears the record.
func (r *recorder) take() []message.Sent {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.sent
	r.sent = nil
	return s
}

// takeDeleted returns everything deleted and clears the record.
func (r *recorder) takeDeleted() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.deleted
	r.deleted = nil
	return s
}

// transport answers every request with a fixed status.
type transport int

func (t transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Body != nil {
		req.Body.Close()
	}
	return &http.Response{
		StatusCode: int(t),
		Header:     make(http.Header),
		Body:       io.NopCloser(strings.NewReader("{}")),
		Request:    req,
	}, nil
}

// captureLog sends the default logger to a buffer for the rest of the test.
func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	old := slog.Default()
	t.Cleanup(func() { slog.SetDefault(old) })
	var buf bytes.Buffer
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	return &buf
}

var dbcount atomic.Uint64

func testRobot(t *testing.T) *Robot {
	t.Helper()
	ctx := context.Background()
	k := dbcount.Add(1)
	pool, err := sqlitex.NewPool(fmt.Sprintf("file:main-%d.db?mode=memory&cache=shared", k), sqlitex.PoolOptions{Flags: sqlite.OpenReadWrite | sqlite.OpenCreate | sqlite.OpenMemory | sqlite.OpenSharedCache | sqlite.OpenURI})
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
	cfg := Config{
		Owner:     Owner{ID: "seika", Name: "Seika"},
		Discord:   DiscordCfg{Prefix: "c!"},
		Providers: []string{"travis"},
	}
	robo := New(discardMetrics(), 2)
	if err := robo.SetSources(ctx, &cfg, docs, auth.NewSealer([auth.KeySize]byte{}), http.DefaultClient); err != nil {
		t.Fatal(err)
	}
	robo.me.Store("1234")
	return robo
}

func TestDispatch(t *testing.T) {
	ctx := context.Background()
	robo := testRobot(t)
	chat := new(recorder)
	guild := func(sender, text string) *message.Received {
		return &message.Received{ID: "msg", To: "kessoku-general", Guild: "kessoku", Sender: sender, Name: sender, Text: text}
	}
	direct := func(sender, text string) *message.Received {
		return &message.Received{ID: "msg", To: "dm", Sender: sender, Name: sender, Text: text}
	}
	mod := func(m *message.Received) *message.Received {
		m.IsModerator = true
		return m
	}
	const denied = "You do not have permission to use this command!"
	cases := []struct {
		name string
		msg  *message.Received
		text string
		want string
	}{
		{"info", guild("bocchi", "info"), "info", "embed:About Chomusuke"},
		{"info dm", direct("bocchi", "info"), "info", "embed:About Chomusuke"},
		{"unknown", guild("bocchi", "guitar"), "guitar", ""},
		{"owner only", guild("bocchi", "echo hi"), "echo hi", denied},
		{"owner", guild("seika", "echo hi"), "echo hi", "hi"},
		{"guild only", direct("bocchi", "setting"), "setting", denied},
		{"mod only", guild("bocchi", "tag create bass four strings"), "tag create bass four strings", denied},
		{"admin only", mod(guild("nijika", "welcome")), "welcome", denied},
		{"required", mod(guild("nijika", "tag create")), "tag create", "`name` is a required argument."},
		{"invalid", guild("bocchi", "lol match euw"), "lol match euw", "Invalid arguments."},
		{"extra args", guild("bocchi", "info please"), "info please", "Invalid arguments."},
		{"unavailable", guild("bocchi", "lol profile euw bocchi"), "lol profile euw bocchi", "League of Legends commands are not available."},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			robo.dispatch(ctx, chat, c.msg, "c!", c.text)
			sent := chat.take()
			if c.want == "" {
				if len(sent) != 0 {
					t.Errorf("unexpected messages: %+v", sent)
				}
				return
			}
			if len(sent) != 1 {
				t.Fatalf("want one message, got %+v", sent)
			}
			got := sent[0].Text
			if sent[0].Embed != nil {
				got = "embed:" + sent[0].Embed.Title
			}
			if got != c.want {
				t.Errorf("want %q, got %q", c.want, got)
			}
			if sent[0].To != c.msg.To {
				t.Errorf("reply went to %q instead of %q", sent[0].To, c.msg.To)
			}
		})
	}
}

func TestDispatchSecret(t *testing.T) {
	ctx := context.Background()
	robo := testRobot(t)
	robo.base.Repos["travis"].Client.HTTP = &http.Client{Transport: transport(http.StatusForbidden)}
	chat := new(recorder)
	cases := []struct {
		name    string
		guild   string
		text    string
		want    string
		deleted []string
	}{
		{"valid", "kessoku", "travis addtoken s3cr3t-token", "The token that has been specified is not valid.", []string{"kessoku-general/msg"}},
		{"extra args", "kessoku", "travis addtoken s3cr3t-token oops", "Invalid arguments.", []string{"kessoku-general/msg"}},
		{"extra args with newline", "kessoku", "travis addtoken s3cr3t-token\noops", "Invalid arguments.", []string{"kessoku-general/msg"}},
		{"direct", "", "travis addtoken s3cr3t-token oops", "Invalid arguments.", nil},
		{"not secret", "kessoku", "info please", "Invalid arguments.", nil},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			buf := captureLog(t)
			msg := &message.Received{ID: "msg", To: "kessoku-general", Guild: c.guild, Sender: "bocchi", Text: "c!" + c.text}
			robo.dispatch(ctx, chat, msg, "c!", c.text)
			sent := chat.take()
			if len(sent) != 1 || sent[0].Text != c.want {
				t.Errorf("want reply %q, got %+v", c.want, sent)
			}
			if diff := cmp.Diff(c.deleted, chat.takeDeleted()); diff != "" {
				t.Errorf("wrong deletions (-want +got):\n%s", diff)
			}
			if strings.Contains(buf.String(), "s3cr3t-token") {
				t.Errorf("token logged:\n%s", buf)
			}
		})
	}
}

func TestLogArgs(t *testing.T) {
	cmds := commandTable([]string{"travis"})
	cases := []struct {
		text string
		want map[string]string
	}{
		{"travis addtoken abc", map[string]string{"provider": "travis", "token": "<redacted>"}},
		{"travis pick kessoku/band", map[string]string{"provider": "travis", "slug": "kessoku/band"}},
	}
	for _, c := range cases {
		cmd, rest := findCommand(cmds, c.text)
		args, ok := parseArgs(cmd, rest)
		if !ok {
			t.Fatalf("no args for %q", c.text)
		}
		if diff := cmp.Diff(c.want, logArgs(cmd, args)); diff != "" {
			t.Errorf("wrong logged args for %q (-want +got):\n%s", c.text, diff)
		}
		if _, ok := args["token"]; ok && args["token"] != "abc" {
			t.Errorf("redaction modified the arguments: %v", args)
		}
	}
}

func TestDispatchStop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	robo := testRobot(t)
	robo.base.Stop = cancel
	chat := new(recorder)
	msg := &message.Received{ID: "msg", To: "kessoku-general", Guild: "kessoku", Sender: "bocchi", Text: "c!stop"}
	robo.dispatch(ctx, chat, msg, "c!", "stop")
	if ctx.Err() != nil {
		t.Fatal("stopped by someone other than the owner")
	}
	chat.take()
	msg.Sender = "seika"
	robo.dispatch(ctx, chat, msg, "c!", "stop")
	if ctx.Err() == nil {
		t.Error("owner couldn't stop")
	}
}

func TestPrefix(t *testing.T) {
	ctx := context.Background()
	robo := testRobot(t)
	msg := &message.Received{To: "kessoku-general", Guild: "kessoku", Sender: "bocchi"}
	if got := robo.prefix(ctx, msg); got != "c!" {
		t.Errorf("wrong default prefix %q", got)
	}
	if err := robo.base.Settings.Set(ctx, "kessoku", "prefix", "!!"); err != nil {
		t.Fatal(err)
	}
	if got := robo.prefix(ctx, msg); got != "!!" {
		t.Errorf("wrong guild prefix %q", got)
	}
	dm := &message.Received{To: "dm", Sender: "bocchi"}
	if got := robo.prefix(ctx, dm); got != "c!" {
		t.Errorf("wrong direct message prefix %q", got)
	}
}

func TestOnMessage(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	robo := testRobot(t)
	chat := new(recorder)
	robo.onMessage(ctx, chat, &message.Received{ID: "1", To: "kessoku-general", Guild: "kessoku", Sender: "bocchi", Text: "just chatting"})
	robo.onMessage(ctx, chat, &message.Received{ID: "2", To: "kessoku-general", Guild: "kessoku", Sender: "bocchi", Text: "<@1234> info"})
	// Commands run on workers, so wait for the reply.
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		chat.mu.Lock()
		n := len(chat.sent)
		chat.mu.Unlock()
		if n != 0 {
			break
		}
		time.Sleep(time.Millisecond)
	}
	sent := chat.take()
	if len(sent) != 1 || sent[0].Embed == nil {
		t.Errorf("want one info embed, got %+v", sent)
	}
}

func TestEnqueue(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	robo := New(discardMetrics(), 2)
	var wg sync.WaitGroup
	var n atomic.Int64
	for range 50 {
		wg.Add(1)
		robo.enqueue(ctx, func(context.Context) {
			n.Add(1)
			wg.Done()
		})
	}
	wg.Wait()
	if got := n.Load(); got != 50 {
		t.Errorf("ran %d works instead of 50", got)
	}
}

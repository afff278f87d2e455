package command

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/go-json-experiment/json"
	"github.com/google/go-cmp/cmp"
)

// holder is a DataHolder backed by a map.
type holder struct {
	data  map[string]map[string]string
	stuck bool
}

func (h *holder) DumpData(ctx context.Context, user string) map[string]string {
	return h.data[user]
}

func (h *holder) ForgetData(ctx context.Context, user string) bool {
	if h.stuck {
		return false
	}
	delete(h.data, user)
	return true
}

func TestDump(t *testing.T) {
	ctx := context.Background()
	robo := testRobot(t)
	robo.Holders = map[string]DataHolder{
		"github": &holder{data: map[string]map[string]string{"bocchi": {"pick": "kessoku/setlist"}}},
		"travis": &holder{data: map[string]map[string]string{"nijika": {"pick": "kessoku/drums"}}},
	}
	chat := newChat()
	dump := func(at time.Time) {
		t.Helper()
		call := invocation(chat, nil)
		call.Message.Timestamp = at.UnixMilli()
		Dump(ctx, robo, call)
	}

	dump(epoch)
	chat.quiet(t)
	dm := chat.direct["bocchi"]
	if len(dm) != 2 {
		t.Fatalf("want 2 direct messages, got %d: %+v", len(dm), dm)
	}
	if got, want := dm[0].Text, "Please wait while we gather your data..."; got != want {
		t.Errorf("notice: want %q, got %q", want, got)
	}
	f := dm[1].File
	if f == nil {
		t.Fatalf("no file in %+v", dm[1])
	}
	if f.Name != "data.json" || f.Type != "application/json" {
		t.Errorf("wrong file metadata: %q %q", f.Name, f.Type)
	}
	var got map[string]map[string]string
	if err := json.Unmarshal(f.Data, &got); err != nil {
		t.Fatalf("couldn't decode dump %q: %v", f.Data, err)
	}
	want := map[string]map[string]string{
		"github": {"pick": "kessoku/setlist"},
		"travis": {},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("wrong dump (-want +got):\n%s", diff)
	}

	dump(epoch.Add(time.Minute))
	if got := chat.last(t).Text; !strings.HasPrefix(got, "Command is on cooldown! Please retry after `660.00s`") {
		t.Errorf("wrong cooldown message: %q", got)
	}
	// Refused attempts don't extend the cooldown.
	dump(epoch.Add(2 * time.Minute))
	if got := chat.last(t).Text; got != "Command is on cooldown! Please retry after `600.00s`" {
		t.Errorf("wrong cooldown message: %q", got)
	}
	if len(chat.direct["bocchi"]) != 2 {
		t.Errorf("dump sent during cooldown: %+v", chat.direct["bocchi"])
	}

	// Other users have their own cooldowns.
	other := invocation(chat, nil)
	other.Message.Sender = "nijika"
	other.Message.Timestamp = epoch.Add(3 * time.Minute).UnixMilli()
	Dump(ctx, robo, other)
	chat.quiet(t)
	if len(chat.direct["nijika"]) != 2 {
		t.Errorf("other user didn't get a dump: %+v", chat.direct["nijika"])
	}

	dump(epoch.Add(dumpEvery + time.Second))
	chat.quiet(t)
	if len(chat.direct["bocchi"]) != 4 {
		t.Errorf("no dump after cooldown: %+v", chat.direct["bocchi"])
	}
}

func TestDumpPrunesCooldowns(t *testing.T) {
	ctx := context.Background()
	robo := testRobot(t)
	chat := newChat()
	for i, u := range []string{"bocchi", "nijika", "ryo"} {
		call := invocation(chat, nil)
		call.Message.Sender = u
		call.Message.Timestamp = epoch.Add(time.Duration(i) * dumpEvery * 2 / 3).UnixMilli()
		Dump(ctx, robo, call)
	}
	// By the last dump, only the first user's limiter has recovered.
	if got := robo.Cooldowns.Len(); got != 2 {
		t.Errorf("want 2 cooldowns, got %d", got)
	}
	if _, ok := robo.Cooldowns.Load("bocchi"); ok {
		t.Error("recovered cooldown was kept")
	}
}

func TestForget(t *testing.T) {
	ctx := context.Background()
	robo := testRobot(t)
	gh := &holder{data: map[string]map[string]string{"bocchi": {"pick": "kessoku/setlist"}}}
	stuck := &holder{data: map[string]map[string]string{"bocchi": {"pick": "kessoku/drums"}}, stuck: true}
	robo.Holders = map[string]DataHolder{"github": gh, "travis": stuck}
	chat := newChat()

	Forget(ctx, robo, invocation(chat, nil))
	if got, want := chat.last(t).Text, "Some of your data could not be removed. Please try again later."; got != want {
		t.Errorf("partial: want %q, got %q", want, got)
	}
	if _, ok := gh.data["bocchi"]; ok {
		t.Error("working holder kept data")
	}

	stuck.stuck = false
	Forget(ctx, robo, invocation(chat, nil))
	if got, want := chat.last(t).Text, "<@bocchi> All of your data has been removed."; got != want {
		t.Errorf("forget: want %q, got %q", want, got)
	}
	if len(stuck.data) != 0 {
		t.Errorf("data left: %v", stuck.data)
	}
}

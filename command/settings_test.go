package command

import (
	"context"
	"testing"
)

func TestSetting(t *testing.T) {
	ctx := context.Background()
	robo := testRobot(t)
	chat := newChat()
	cases := []struct {
		name string
		args map[string]string
		mod  bool
		want string
	}{
		{
			name: "list",
			args: nil,
			want: "The available settings are: prefix",
		},
		{
			name: "unknown",
			args: map[string]string{"name": "volume"},
			want: "The specified setting is not valid. Make sure that is written correctly and try again.",
		},
		{
			name: "default",
			args: map[string]string{"name": "PREFIX"},
			want: "The existing value of prefix is c!",
		},
		{
			name: "denied",
			args: map[string]string{"name": "prefix", "value": "!"},
			want: "You do not have permission to use this command!",
		},
		{
			name: "unchanged",
			args: map[string]string{"name": "prefix"},
			want: "The existing value of prefix is c!",
		},
		{
			name: "set",
			args: map[string]string{"name": "Prefix", "value": "b!"},
			mod:  true,
			want: "Setting for prefix was saved!",
		},
		{
			name: "show",
			args: map[string]string{"name": "prefix"},
			want: "The existing value of prefix is b!",
		},
	}
	// Cases run in order because each sees the previous changes.
	for _, c := range cases {
		call := invocation(chat, c.args)
		call.Message.IsModerator = c.mod
		Setting(ctx, robo, call)
		if got := chat.last(t).Text; got != c.want {
			t.Errorf("%s: want %q, got %q", c.name, c.want, got)
		}
	}
	v, err := robo.Settings.Get(ctx, "sick", "prefix")
	if err != nil {
		t.Fatal(err)
	}
	if v != "c!" {
		t.Errorf("setting leaked to another guild: %q", v)
	}
}

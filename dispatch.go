package main

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/ChomusukeBot/Chomusuke/command"
	"github.com/ChomusukeBot/Chomusuke/message"
	"github.com/ChomusukeBot/Chomusuke/settings"
)

// botCommand is an entry in the dispatch table.
type botCommand struct {
	// verbs are the names of the command, each possibly with a subcommand,
	// matched case-insensitively against the start of the command text.
	verbs []string
	// parse matches the arguments following the verb.
	parse *regexp.Regexp
	// fixed are arguments added to every invocation.
	fixed map[string]string
	fn    command.Func
	name  string
	// secret marks commands whose text carries a credential. Their messages
	// are deleted from guild channels before anything else happens, and
	// their arguments are not logged.
	secret bool
	// guild, mod, admin, and owner restrict where and by whom the command
	// may be used.
	guild bool
	mod   bool
	admin bool
	owner bool
}

// noArgs matches an empty argument string.
var noArgs = regexp.MustCompile(`^$`)

// onMessage handles a message received from chat.
func (robo *Robot) onMessage(ctx context.Context, chat command.Chat, msg *message.Received) {
	robo.metrics.MessagesCount.Observe(1)
	prefix := robo.prefix(ctx, msg)
	text, ok := parseCommand(prefix, robo.self(), msg.Text)
	if !ok {
		return
	}
	// Run the rest in a worker so that we don't block the gateway.
	work := func(ctx context.Context) {
		robo.dispatch(ctx, chat, msg, prefix, text)
	}
	robo.enqueue(ctx, work)
}

// self returns the bot's own user ID, or the empty string if it is not yet
// known.
func (robo *Robot) self() string {
	s, _ := robo.me.Load().(string)
	return s
}

// prefix returns the command prefix in effect for a message.
func (robo *Robot) prefix(ctx context.Context, msg *message.Received) string {
	if msg.IsDirect() {
		return robo.defaultPrefix
	}
	p, err := robo.base.Settings.Get(ctx, msg.Guild, settings.Prefix)
	if err != nil {
		slog.ErrorContext(ctx, "couldn't get prefix", slog.String("guild", msg.Guild), slog.Any("err", err))
		return robo.defaultPrefix
	}
	return p
}

// dispatch finds and runs the command for a command text.
func (robo *Robot) dispatch(ctx context.Context, chat command.Chat, msg *message.Received, prefix, text string) {
	log := slog.With(slog.String("trace", uuid.NewString()), slog.String("in", msg.To), slog.String("user", msg.Sender))
	c, rest := findCommand(robo.commands, text)
	if c == nil {
		log.InfoContext(ctx, "no such command", slog.String("text", text))
		return
	}
	if c.secret && !msg.IsDirect() {
		if err := chat.Delete(ctx, msg.To, msg.ID); err != nil {
			log.ErrorContext(ctx, "couldn't delete secret message", slog.String("name", c.name), slog.Any("err", err))
		}
	}
	call := &command.Invocation{Chat: chat, Message: msg, Prefix: prefix}
	if !robo.allowed(c, msg) {
		log.InfoContext(ctx, "command not permitted", slog.String("name", c.name))
		call.Reply(ctx, &robo.base, message.Text("You do not have permission to use this command!"))
		return
	}
	args, ok := parseArgs(c, rest)
	if !ok {
		if c.secret {
			log.InfoContext(ctx, "bad arguments", slog.String("name", c.name))
		} else {
			log.InfoContext(ctx, "bad arguments", slog.String("name", c.name), slog.String("args", rest))
		}
		if p := required(c.parse); rest == "" && p != "" {
			call.Reply(ctx, &robo.base, message.Format("`%s` is a required argument.", p))
			return
		}
		call.Reply(ctx, &robo.base, message.Text("Invalid arguments."))
		return
	}
	log.InfoContext(ctx, "command",
		slog.String("name", c.name),
		slog.Any("args", logArgs(c, args)),
	)
	robo.metrics.CommandCount.Observe(1, c.name)
	r := robo.base
	r.Log = log
	call.Args = args
	c.fn(ctx, &r, call)
}

// logArgs returns the arguments of an invocation as they may be logged.
// Everything but fixed arguments is redacted for secret commands.
func logArgs(c *botCommand, args map[string]string) map[string]string {
	if !c.secret {
		return args
	}
	r := make(map[string]string, len(args))
	for k, v := range args {
		if _, ok := c.fixed[k]; !ok {
			v = "<redacted>"
		}
		r[k] = v
	}
	return r
}

// allowed reports whether the sender of msg may use c.
func (robo *Robot) allowed(c *botCommand, msg *message.Received) bool {
	switch {
	case c.owner && (robo.base.Owner == "" || msg.Sender != robo.base.Owner):
		return false
	case (c.guild || c.mod || c.admin) && msg.IsDirect():
		return false
	case c.admin && !msg.IsAdmin:
		return false
	case c.mod && !msg.IsModerator && !msg.IsAdmin:
		return false
	}
	return true
}

// parseCommand strips the prefix or a leading mention from a message.
// The result is the text of the command.
func parseCommand(prefix, mention, text string) (string, bool) {
	text = strings.TrimLeftFunc(text, unicode.IsSpace)
	var ok bool
	if prefix != "" {
		text, ok = strings.CutPrefix(text, prefix)
	}
	if !ok && mention != "" {
		text, ok = cutMention(text, mention)
	}
	if !ok {
		return "", false
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", false
	}
	return text, true
}

// cutMention removes a leading mention of the user ID from text. Discord
// spells mentions of members with nicknames with an exclamation mark.
func cutMention(text, id string) (string, bool) {
	for _, m := range []string{"<@" + id + ">", "<@!" + id + ">"} {
		if s, ok := strings.CutPrefix(text, m); ok {
			return s, true
		}
	}
	return text, false
}

// findCommand finds the first command whose verb begins the text.
// The rest is the text following the verb.
func findCommand(cmds []botCommand, text string) (*botCommand, string) {
	for i := range cmds {
		c := &cmds[i]
		for _, v := range c.verbs {
			if rest, ok := cutVerb(text, v); ok {
				return c, rest
			}
		}
	}
	return nil, ""
}

// cutVerb removes a verb from the start of text. Words of the verb may be
// separated by any whitespace, and the verb must end at a word boundary.
func cutVerb(text, verb string) (string, bool) {
	for i, w := range strings.Fields(verb) {
		if i > 0 {
			t := strings.TrimLeftFunc(text, unicode.IsSpace)
			if len(t) == len(text) {
				return "", false
			}
			text = t
		}
		if len(text) < len(w) || !strings.EqualFold(text[:len(w)], w) {
			return "", false
		}
		text = text[len(w):]
		r, _ := utf8.DecodeRuneInString(text)
		if text != "" && !unicode.IsSpace(r) {
			// The verb is a prefix of a longer word.
			return "", false
		}
	}
	return strings.TrimSpace(text), true
}

// parseArgs matches the arguments of a command.
func parseArgs(c *botCommand, rest string) (map[string]string, bool) {
	u := c.parse.FindStringSubmatch(rest)
	if u == nil {
		return nil, false
	}
	m := make(map[string]string, len(u)-1+len(c.fixed))
	s := c.parse.SubexpNames()
	for k, v := range u[1:] {
		if s[k+1] != "" {
			m[s[k+1]] = v
		}
	}
	for k, v := range c.fixed {
		m[k] = v
	}
	return m, true
}

// required returns the name of the first argument of a command, if it has
// any named arguments.
func required(parse *regexp.Regexp) string {
	for _, s := range parse.SubexpNames() {
		if s != "" {
			return s
		}
	}
	return ""
}

// commandTable builds the dispatch table. Repository commands are added for
// each named provider.
func commandTable(providers []string) []botCommand {
	var cmds []botCommand
	for _, p := range providers {
		fixed := map[string]string{"provider": p}
		cmds = append(cmds,
			botCommand{
				verbs:  []string{p + " addtoken"},
				parse:  regexp.MustCompile(`^(?<token>\S+)$`),
				fixed:  fixed,
				fn:     command.AddToken,
				name:   p + "-addtoken",
				secret: true,
			},
			botCommand{
				verbs: []string{p + " pick"},
				parse: regexp.MustCompile(`^(?<slug>\S+)$`),
				fixed: fixed,
				fn:    command.Pick,
				name:  p + "-pick",
			},
			botCommand{
				verbs: []string{p + " repos"},
				parse: noArgs,
				fixed: fixed,
				fn:    command.Repos,
				name:  p + "-repos",
			},
			botCommand{
				verbs: []string{p + " trigger"},
				parse: noArgs,
				fixed: fixed,
				fn:    command.Trigger,
				name:  p + "-trigger",
			},
			botCommand{
				verbs: []string{p + " builds"},
				parse: regexp.MustCompile(`^(?<slug>\S*)$`),
				fixed: fixed,
				fn:    command.Builds,
				name:  p + "-builds",
			},
		)
	}
	return append(cmds, commands...)
}

var commands = []botCommand{
	{
		verbs: []string{"info"},
		parse: noArgs,
		fn:    command.Info,
		name:  "info",
	},
	{
		verbs: []string{"stop"},
		parse: noArgs,
		fn:    command.Stop,
		name:  "stop",
		owner: true,
	},
	{
		verbs: []string{"echoin"},
		parse: regexp.MustCompile(`^<?#?(?<in>\d+)>?\s+(?s:(?<msg>.+))$`),
		fn:    command.EchoIn,
		name:  "echoin",
		owner: true,
	},
	{
		verbs: []string{"echo"},
		parse: regexp.MustCompile(`^(?s:(?<msg>.+))$`),
		fn:    command.Echo,
		name:  "echo",
		owner: true,
	},
	{
		verbs: []string{"setting"},
		parse: regexp.MustCompile(`^(?:(?<name>\S+)(?:\s+(?<value>.+))?)?$`),
		fn:    command.Setting,
		name:  "setting",
		guild: true,
	},
	{
		verbs: []string{"tag create"},
		parse: regexp.MustCompile(`^(?<name>\S+)\s+(?s:(?<content>.+))$`),
		fn:    command.TagCreate,
		name:  "tag-create",
		mod:   true,
	},
	{
		verbs: []string{"tag delete"},
		parse: regexp.MustCompile(`^(?<name>\S+)$`),
		fn:    command.TagDelete,
		name:  "tag-delete",
		mod:   true,
	},
	{
		verbs: []string{"tag edit"},
		parse: regexp.MustCompile(`^(?<name>\S+)\s+(?s:(?<content>.+))$`),
		fn:    command.TagEdit,
		name:  "tag-edit",
		mod:   true,
	},
	{
		verbs: []string{"tag usage"},
		parse: regexp.MustCompile(`^(?<name>\S+)\s+(?s:(?<usage>.+))$`),
		fn:    command.TagUsage,
		name:  "tag-usage",
		mod:   true,
	},
	{
		verbs: []string{"tag all"},
		parse: noArgs,
		fn:    command.TagAll,
		name:  "tag-all",
		guild: true,
	},
	{
		verbs: []string{"tag about"},
		parse: regexp.MustCompile(`^(?<name>\S+)$`),
		fn:    command.TagAbout,
		name:  "tag-about",
		guild: true,
	},
	{
		verbs: []string{"tag"},
		parse: regexp.MustCompile(`^(?<name>\S+)(?:\s+<@!?(?<to>\d+)>)?$`),
		fn:    command.Tag,
		name:  "tag",
		guild: true,
	},
	{
		verbs: []string{"welcome activation"},
		parse: regexp.MustCompile(`^(?<enabled>\S+)$`),
		fn:    command.WelcomeActivation,
		name:  "welcome-activation",
		admin: true,
	},
	{
		verbs: []string{"welcome message"},
		parse: regexp.MustCompile(`^(?s:(?<msg>.+))$`),
		fn:    command.WelcomeMessage,
		name:  "welcome-message",
		admin: true,
	},
	{
		verbs: []string{"welcome channel"},
		parse: regexp.MustCompile(`^<?#?(?<channel>\d+)>?$`),
		fn:    command.WelcomeChannel,
		name:  "welcome-channel",
		admin: true,
	},
	{
		verbs: []string{"welcome"},
		parse: noArgs,
		fn:    command.Welcome,
		name:  "welcome",
		admin: true,
	},
	{
		verbs: []string{"gdpr dump"},
		parse: noArgs,
		fn:    command.Dump,
		name:  "gdpr-dump",
	},
	{
		verbs: []string{"gdpr forget"},
		parse: noArgs,
		fn:    command.Forget,
		name:  "gdpr-forget",
	},
	{
		verbs: []string{"status", "apistatus"},
		parse: noArgs,
		fn:    command.Status,
		name:  "status",
	},
	{
		verbs: []string{"github repo", "github r"},
		parse: regexp.MustCompile(`^(?<name>\S+)(?:\s+(?<owner>\S+))?$`),
		fn:    command.GitHubRepo,
		name:  "github-repo",
	},
	{
		verbs: []string{"github search", "github s"},
		parse: regexp.MustCompile(`^(?<name>.+)$`),
		fn:    command.GitHubSearch,
		name:  "github-search",
	},
	{
		verbs: []string{"github issue", "github i"},
		parse: regexp.MustCompile(`^(?<owner>\S+)\s+(?<repo>\S+)\s+#?(?<number>\d+)$`),
		fn:    command.GitHubIssue,
		name:  "github-issue",
	},
	{
		verbs: []string{"github labels", "github l", "labels"},
		parse: regexp.MustCompile(`^(?<owner>\S+)\s+(?<repo>\S+)$`),
		fn:    command.GitHubLabels,
		name:  "github-labels",
	},
	{
		verbs: []string{"lol profile", "lol p"},
		parse: regexp.MustCompile(`^(?<region>\S+)\s+(?<summoner>.+)$`),
		fn:    command.LoLProfile,
		name:  "lol-profile",
	},
	{
		verbs: []string{"lol match", "lol m"},
		parse: regexp.MustCompile(`^(?<region>\S+)(?:\s+(?<n>\d+))?\s+(?<summoner>.+)$`),
		fn:    command.LoLMatch,
		name:  "lol-match",
	},
	{
		verbs: []string{"ow", "ow_stats", "overwatch"},
		parse: regexp.MustCompile(`^(?:(?<player>\S+)(?:\s+(?<platform>\S+)(?:\s+(?<region>\S+))?)?)?$`),
		fn:    command.Overwatch,
		name:  "overwatch",
	},
	{
		verbs: []string{"ows", "ow_status"},
		parse: noArgs,
		fn:    command.OverwatchStatus,
		name:  "overwatch-status",
	},
	{
		verbs: []string{"profile", "myp"},
		parse: regexp.MustCompile(`^(?<id>\d+)$`),
		fn:    command.SteamProfile,
		name:  "steam-profile",
	},
}

func (robo *Robot) enqueue(ctx context.Context, work func(context.Context)) {
	var w chan func(context.Context)
	// Get a worker if one exists. Otherwise, spawn a new one.
	select {
	case w = <-robo.works:
	default:
		w = make(chan func(context.Context), 1)
		go worker(ctx, robo.works, w)
	}
	select {
	case <-ctx.Done():
		return
	case w <- work:
	}
}

// worker runs works for a while. The provided context is passed to each work.
func worker(ctx context.Context, works chan chan func(context.Context), ch chan func(context.Context)) {
	for {
		select {
		case <-ctx.Done():
			return
		case work := <-ch:
			work(ctx)
			// Return to the pool if it has room. Otherwise, we're done.
			select {
			case works <- ch:
			default:
				return
			}
		}
	}
}

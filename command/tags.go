package command

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/ChomusukeBot/Chomusuke/docstore"
	"github.com/ChomusukeBot/Chomusuke/message"
)

// tag is a snippet of text stored for a guild.
type tag struct {
	Content    string    `json:"content"`
	Author     string    `json:"author"`
	AuthorName string    `json:"author_name"`
	Created    time.Time `json:"created"`
	Edited     time.Time `json:"edited,omitzero"`
	Usage      string    `json:"usage,omitzero"`
}

// tagTime is the display format of tag times.
const tagTime = "January 02, 2006 15:04:05 UTC"

var (
	errTagExists  = errors.New("tag exists")
	errTagMissing = errors.New("no such tag")
)

func tags(robo *Robot, call *Invocation) docstore.Collection {
	return robo.Docs.Collection("tag_" + call.Message.Guild)
}

// Tag shows the content of a tag.
//   - name: Tag name.
//   - to: User ID to mention instead of the sender. Optional.
func Tag(ctx context.Context, robo *Robot, call *Invocation) {
	name := call.Args["name"]
	t, err := docstore.Find[tag](ctx, tags(robo, call), name)
	switch {
	case err == nil: // do nothing
	case errors.Is(err, docstore.ErrNotFound):
		call.Reply(ctx, robo, message.Format("The tag `%s` does not exists!", name))
		return
	default:
		tagFailed(ctx, robo, call, "get", err)
		return
	}
	to := call.Message.Sender
	if u := call.Args["to"]; u != "" {
		to = u
	}
	call.Reply(ctx, robo, message.Text(message.Mention(to)+"\n"+t.Content))
}

// TagCreate creates a tag.
//   - name: Tag name.
//   - content: Tag content.
func TagCreate(ctx context.Context, robo *Robot, call *Invocation) {
	name := call.Args["name"]
	err := docstore.Modify(ctx, tags(robo, call), name, func(t *tag, exists bool) error {
		if exists {
			return errTagExists
		}
		*t = tag{
			Content:    call.Args["content"],
			Author:     call.Message.Sender,
			AuthorName: call.Message.Name,
			Created:    call.Message.Time().UTC(),
		}
		return nil
	})
	switch {
	case err == nil:
		call.Reply(ctx, robo, message.Format("The tag `%s` was created!", name))
	case errors.Is(err, errTagExists):
		call.Reply(ctx, robo, message.Text("There is already a tag with that name!"))
	default:
		tagFailed(ctx, robo, call, "create", err)
	}
}

// TagDelete deletes a tag.
//   - name: Tag name.
func TagDelete(ctx context.Context, robo *Robot, call *Invocation) {
	name := call.Args["name"]
	ok, err := tags(robo, call).Delete(ctx, name)
	switch {
	case err != nil:
		tagFailed(ctx, robo, call, "delete", err)
	case ok:
		call.Reply(ctx, robo, message.Format("The tag `%s` was deleted!", name))
	default:
		call.Reply(ctx, robo, message.Format("No tag with a name of `%s` could be found.", name))
	}
}

// TagEdit replaces the content of a tag.
//   - name: Tag name.
//   - content: New content.
func TagEdit(ctx context.Context, robo *Robot, call *Invocation) {
	name := call.Args["name"]
	err := editTag(ctx, robo, call, func(t *tag) { t.Content = call.Args["content"] })
	switch {
	case err == nil:
		call.Reply(ctx, robo, message.Format("The text of the tag `%s` was changed!", name))
	case errors.Is(err, errTagMissing):
		call.Reply(ctx, robo, message.Format("There are no tags with a name of `%s`", name))
	default:
		tagFailed(ctx, robo, call, "edit", err)
	}
}

// TagUsage sets the usage text of a tag. The text "remove" clears it.
//   - name: Tag name.
//   - usage: Usage text.
func TagUsage(ctx context.Context, robo *Robot, call *Invocation) {
	name := call.Args["name"]
	usage := call.Args["usage"]
	if strings.EqualFold(usage, "remove") {
		usage = ""
	}
	err := editTag(ctx, robo, call, func(t *tag) { t.Usage = usage })
	switch {
	case err == nil:
		call.Reply(ctx, robo, message.Format("The usage of the tag `%s` was changed!", name))
	case errors.Is(err, errTagMissing):
		call.Reply(ctx, robo, message.Format("There are no tags with a name of `%s`", name))
	default:
		tagFailed(ctx, robo, call, "usage", err)
	}
}

// editTag applies f to an existing tag and marks it edited.
func editTag(ctx context.Context, robo *Robot, call *Invocation, f func(t *tag)) error {
	return docstore.Modify(ctx, tags(robo, call), call.Args["name"], func(t *tag, exists bool) error {
		if !exists {
			return errTagMissing
		}
		f(t)
		t.Edited = call.Message.Time().UTC()
		return nil
	})
}

// TagAll lists the tags of the guild.
func TagAll(ctx context.Context, robo *Robot, call *Invocation) {
	ids, err := tags(robo, call).IDs(ctx)
	if err != nil {
		tagFailed(ctx, robo, call, "list", err)
		return
	}
	if len(ids) == 0 {
		call.Reply(ctx, robo, message.Text("This guild doesn't have any tags."))
		return
	}
	guild, err := call.Chat.GuildName(ctx, call.Message.Guild)
	if err != nil {
		robo.Log.WarnContext(ctx, "couldn't get guild name", slog.String("guild", call.Message.Guild), slog.Any("err", err))
		guild = "this guild"
	}
	call.Reply(ctx, robo, message.Rich(&message.Embed{
		Title:       "Tags on " + guild,
		Description: strings.Join(ids, ", "),
	}))
}

// TagAbout shows the details of a tag.
//   - name: Tag name.
func TagAbout(ctx context.Context, robo *Robot, call *Invocation) {
	name := call.Args["name"]
	t, err := docstore.Find[tag](ctx, tags(robo, call), name)
	switch {
	case err == nil: // do nothing
	case errors.Is(err, docstore.ErrNotFound):
		call.Reply(ctx, robo, message.Text("There is no tag with that name!"))
		return
	default:
		tagFailed(ctx, robo, call, "about", err)
		return
	}
	author := t.AuthorName
	if ok, _ := call.Chat.HasMember(ctx, call.Message.Guild, t.Author); ok {
		author = message.Mention(t.Author)
	}
	usage := t.Usage
	if usage == "" {
		usage = "No usage specified"
	}
	var desc strings.Builder
	desc.WriteString(t.Content)
	desc.WriteString("\n\nUsage: ")
	desc.WriteString(usage)
	desc.WriteString("\nCreated by ")
	desc.WriteString(author)
	desc.WriteString(" on **")
	desc.WriteString(t.Created.UTC().Format(tagTime))
	desc.WriteString("**")
	if !t.Edited.IsZero() {
		desc.WriteString("\nEdited on **")
		desc.WriteString(t.Edited.UTC().Format(tagTime))
		desc.WriteString("**")
	}
	call.Reply(ctx, robo, message.Rich(&message.Embed{
		Title:       `About the tag "` + name + `"`,
		Description: desc.String(),
	}))
}

func tagFailed(ctx context.Context, robo *Robot, call *Invocation, op string, err error) {
	robo.Log.ErrorContext(ctx, "tag operation failed",
		slog.String("op", op),
		slog.String("guild", call.Message.Guild),
		slog.String("tag", call.Args["name"]),
		slog.Any("err", err),
	)
	call.Reply(ctx, robo, message.Text("Something went wrong while working with that tag. Try again. Sorry!"))
}

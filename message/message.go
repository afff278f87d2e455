package message

import (
	"fmt"
	"strings"
	"time"
)

// Received is a message received from the chat service.
type Received struct {
	// ID is the unique ID of the message.
	ID string
	// To is the channel the message was sent to.
	To string
	// Guild is the guild containing the channel. It is empty for direct
	// messages.
	Guild string
	// Sender is the user ID of the message sender.
	Sender string
	// Name is the display name of the message sender.
	Name string
	// Text is the text of the message.
	Text string
	// Timestamp is the timestamp of the message as milliseconds since the
	// Unix epoch.
	Timestamp int64
	// IsModerator indicates whether the sender can manage the guild to which
	// the message was sent.
	IsModerator bool
	// IsAdmin indicates whether the sender is an administrator of the guild.
	IsAdmin bool
}

func (m *Received) Time() time.Time {
	return time.UnixMilli(m.Timestamp)
}

// IsDirect reports whether the message was sent outside of any guild.
func (m *Received) IsDirect() bool {
	return m.Guild == ""
}

// Mention returns the text that mentions the sender.
func (m *Received) Mention() string {
	return Mention(m.Sender)
}

// Mention returns the text that mentions a user.
func Mention(user string) string {
	return "<@" + user + ">"
}

// Content is the body of a message to send.
type Content struct {
	// Text is the plain message text.
	Text string
	// Embed is an optional embed shown below the text.
	Embed *Embed
	// File is an optional attachment.
	File *File
}

// IsZero reports whether the content has nothing to send.
func (c Content) IsZero() bool {
	return c.Text == "" && c.Embed == nil && c.File == nil
}

// Embed is a structured rich-text message.
type Embed struct {
	Title       string
	URL         string
	Description string
	Thumbnail   string
	Author      string
	Footer      string
	Color       int
	Fields      []Field
}

// Field is a titled section of an embed.
type Field struct {
	Name   string
	Value  string
	Inline bool
}

// File is an attachment.
type File struct {
	Name string
	Type string
	Data []byte
}

// Sent is a message to be sent to the chat service.
type Sent struct {
	// Reply is a message to reply to. If empty, the message is not interpreted
	// as a reply.
	Reply string
	// To is the channel to which the message is sent.
	To string
	Content
}

// formatString is a type to prevent misuse of format strings passed to [Format].
type formatString string

// Format constructs message content from a format string literal and
// formatting arguments.
func Format(f formatString, args ...any) Content {
	return Content{Text: strings.TrimSpace(fmt.Sprintf(string(f), args...))}
}

// Text constructs message content from a fixed string.
func Text(s string) Content {
	return Content{Text: s}
}

// Rich constructs message content holding only an embed.
func Rich(e *Embed) Content {
	return Content{Embed: e}
}

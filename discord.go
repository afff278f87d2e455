package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/bwmarrin/discordgo"

	"github.com/ChomusukeBot/Chomusuke/command"
	"github.com/ChomusukeBot/Chomusuke/message"
)

// discordChat is the Discord session as seen by commands.
type discordChat struct {
	s *discordgo.Session
}

var _ command.Chat = discordChat{}

func (c discordChat) Send(ctx context.Context, msg message.Sent) error {
	m := toDiscord(msg.Content)
	if msg.Reply != "" {
		m.Reference = &discordgo.MessageReference{MessageID: msg.Reply, ChannelID: msg.To}
	}
	_, err := c.s.ChannelMessageSendComplex(msg.To, m, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("couldn't send message to %s: %w", msg.To, err)
	}
	return nil
}

func (c discordChat) Direct(ctx context.Context, user string, content message.Content) error {
	ch, err := c.s.UserChannelCreate(user, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("couldn't open direct channel with %s: %w", user, err)
	}
	return c.Send(ctx, message.Sent{To: ch.ID, Content: content})
}

func (c discordChat) Delete(ctx context.Context, channel, id string) error {
	return c.s.ChannelMessageDelete(channel, id, discordgo.WithContext(ctx))
}

func (c discordChat) Typing(ctx context.Context, channel string) error {
	return c.s.ChannelTyping(channel, discordgo.WithContext(ctx))
}

func (c discordChat) ChannelGuild(ctx context.Context, channel string) (string, error) {
	if ch, err := c.s.State.Channel(channel); err == nil {
		return ch.GuildID, nil
	}
	ch, err := c.s.Channel(channel, discordgo.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("couldn't get channel %s: %w", channel, err)
	}
	return ch.GuildID, nil
}

func (c discordChat) GuildName(ctx context.Context, guild string) (string, error) {
	if g, err := c.s.State.Guild(guild); err == nil && g.Name != "" {
		return g.Name, nil
	}
	g, err := c.s.Guild(guild, discordgo.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("couldn't get guild %s: %w", guild, err)
	}
	return g.Name, nil
}

func (c discordChat) HasMember(ctx context.Context, guild, user string) (bool, error) {
	if _, err := c.s.State.Member(guild, user); err == nil {
		return true, nil
	}
	_, err := c.s.GuildMember(guild, user, discordgo.WithContext(ctx))
	if err != nil {
		var rerr *discordgo.RESTError
		if errors.As(err, &rerr) && rerr.Response != nil && rerr.Response.StatusCode == http.StatusNotFound {
			return false, nil
		}
		return false, fmt.Errorf("couldn't get member %s of %s: %w", user, guild, err)
	}
	return true, nil
}

// toDiscord converts message content to a Discord message.
func toDiscord(c message.Content) *discordgo.MessageSend {
	m := &discordgo.MessageSend{Content: c.Text}
	if c.Embed != nil {
		m.Embeds = []*discordgo.MessageEmbed{toEmbed(c.Embed)}
	}
	if c.File != nil {
		m.Files = []*discordgo.File{{
			Name:        c.File.Name,
			ContentType: c.File.Type,
			Reader:      bytes.NewReader(c.File.Data),
		}}
	}
	return m
}

func toEmbed(e *message.Embed) *discordgo.MessageEmbed {
	r := &discordgo.MessageEmbed{
		Title:       e.Title,
		URL:         e.URL,
		Description: e.Description,
		Color:       e.Color,
	}
	if e.Thumbnail != "" {
		r.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: e.Thumbnail}
	}
	if e.Author != "" {
		r.Author = &discordgo.MessageEmbedAuthor{Name: e.Author}
	}
	if e.Footer != "" {
		r.Footer = &discordgo.MessageEmbedFooter{Text: e.Footer}
	}
	for _, f := range e.Fields {
		r.Fields = append(r.Fields, &discordgo.MessageEmbedField{Name: f.Name, Value: f.Value, Inline: f.Inline})
	}
	return r
}

// fromDiscord converts a received Discord message. perms are the sender's
// permissions in the channel.
func fromDiscord(m *discordgo.Message, perms int64) *message.Received {
	r := &message.Received{
		ID:          m.ID,
		To:          m.ChannelID,
		Guild:       m.GuildID,
		Sender:      m.Author.ID,
		Name:        m.Author.Username,
		Text:        m.Content,
		Timestamp:   m.Timestamp.UnixMilli(),
		IsModerator: perms&discordgo.PermissionManageServer != 0,
		IsAdmin:     perms&discordgo.PermissionAdministrator != 0,
	}
	if m.Author.GlobalName != "" {
		r.Name = m.Author.GlobalName
	}
	if m.Member != nil && m.Member.Nick != "" {
		r.Name = m.Member.Nick
	}
	return r
}

// initDiscord creates the Discord session and registers its handlers.
// The session is not opened.
func (robo *Robot) initDiscord(ctx context.Context, token string) error {
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return fmt.Errorf("failed to create Discord session: %w", err)
	}
	s.Identify.Intents = discordgo.IntentGuilds |
		discordgo.IntentGuildMembers |
		discordgo.IntentGuildMessages |
		discordgo.IntentDirectMessages |
		discordgo.IntentMessageContent
	chat := discordChat{s}

	s.AddHandler(func(s *discordgo.Session, event *discordgo.Ready) {
		robo.me.Store(event.User.ID)
		slog.InfoContext(ctx, "connected to discord", slog.String("user", event.User.ID), slog.Int("guilds", len(event.Guilds)))
	})
	s.AddHandler(func(s *discordgo.Session, event *discordgo.MessageCreate) {
		if event.Author == nil || event.Author.Bot {
			return
		}
		var perms int64
		if event.GuildID != "" {
			var err error
			perms, err = s.UserChannelPermissions(event.Author.ID, event.ChannelID)
			if err != nil {
				slog.WarnContext(ctx, "couldn't get permissions",
					slog.String("user", event.Author.ID),
					slog.String("in", event.ChannelID),
					slog.Any("err", err),
				)
			}
		}
		robo.onMessage(ctx, chat, fromDiscord(event.Message, perms))
	})
	s.AddHandler(func(s *discordgo.Session, event *discordgo.GuildMemberAdd) {
		if event.Member == nil || event.User == nil || event.User.Bot {
			return
		}
		guild, user := event.GuildID, event.User.ID
		robo.enqueue(ctx, func(ctx context.Context) {
			r := robo.base
			r.Log = slog.With(slog.String("guild", guild), slog.String("member", user))
			command.Greet(ctx, &r, chat, guild, user)
		})
	})
	s.AddHandler(func(s *discordgo.Session, event *discordgo.GuildCreate) {
		robo.metrics.Guilds.Observe(float64(guildCount(s.State)))
	})
	s.AddHandler(func(s *discordgo.Session, event *discordgo.GuildDelete) {
		robo.metrics.Guilds.Observe(float64(guildCount(s.State)))
	})

	robo.session = s
	return nil
}

func guildCount(st *discordgo.State) int {
	st.RLock()
	defer st.RUnlock()
	return len(st.Guilds)
}

// discord runs the Discord connection until ctx is done.
func (robo *Robot) discord(ctx context.Context) error {
	if err := robo.session.Open(); err != nil {
		return fmt.Errorf("couldn't connect to discord: %w", err)
	}
	<-ctx.Done()
	return robo.session.Close()
}

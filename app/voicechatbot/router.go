package main

import (
	"fmt"
	"strings"

	"github.com/Halocrea/voice-chat-bot/channels"
	"github.com/Halocrea/voice-chat-bot/commands"
	"github.com/Halocrea/voice-chat-bot/moderation"
	"github.com/Halocrea/voice-chat-bot/setup"
	"github.com/Halocrea/voice-chat-bot/stores"
	"github.com/bwmarrin/discordgo"
)

// router strips the guild prefix off incoming messages and hands the
// command to the right handler.
type router struct {
	guilds        stores.GuildSetupStore
	defaultPrefix string
	lifecycle     *channels.Manager
	dispatcher    *commands.Dispatcher
	setup         *setup.Handler
	moderation    *moderation.Handler
}

func (r *router) messageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot || m.GuildID == "" {
		return
	}

	prefix := r.defaultPrefix
	guildSetup, err := r.guilds.Get(m.GuildID)
	if err != nil {
		log.Errorf("Failed to load setup for guild %v: %v", m.GuildID, err)
		return
	}
	if guildSetup != nil && guildSetup.Prefix != "" {
		prefix = guildSetup.Prefix
	}

	content := strings.TrimSpace(m.Content)
	if !strings.HasPrefix(content, prefix) {
		return
	}
	cmd, args := splitCommand(strings.TrimSpace(strings.TrimPrefix(content, prefix)))
	if cmd == "" {
		return
	}

	switch {
	case setup.Handles(cmd):
		if !r.moderation.IsModerator(m) {
			r.reply(s, m, "You need to be an Administrator or have a moderation role to set me up.")
			return
		}
		r.setup.Handle(m, cmd, args, prefix)
	case moderation.Handles(cmd):
		if !r.moderation.IsModerator(m) {
			r.reply(s, m, "You need to be an Administrator or have a moderation role to run moderation commands.")
			return
		}
		r.moderation.Handle(m, cmd, prefix)
	default:
		if guildSetup == nil {
			r.reply(s, m, fmt.Sprintf("I'm not set up on this server yet; an Administrator can run `%s setup` to get started.", prefix))
			return
		}
		r.dispatcher.Handle(m, cmd, args)
	}
}

// splitCommand separates the command token from its argument string.
func splitCommand(content string) (string, string) {
	if content == "" {
		return "", ""
	}
	parts := strings.SplitN(content, " ", 2)
	cmd := strings.ToLower(parts[0])
	if len(parts) == 1 {
		return cmd, ""
	}
	return cmd, strings.TrimSpace(parts[1])
}

func (r *router) reply(s *discordgo.Session, m *discordgo.MessageCreate, content string) {
	if _, err := s.ChannelMessageSend(m.ChannelID, content); err != nil {
		log.Errorf("Failed to reply in channel %v: %v", m.ChannelID, err)
	}
}

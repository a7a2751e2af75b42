package discord

import (
	"time"

	"github.com/bwmarrin/discordgo"
)

// Client is the slice of the Discord API the bot actually uses. The
// lifecycle controller and the command dispatcher only ever talk to this
// interface, so both can run against a fake in tests.
type Client interface {
	BotUserID() string

	Guild(guildID string) (*discordgo.Guild, error)
	Channel(channelID string) (*discordgo.Channel, error)
	CreateChannel(guildID string, data discordgo.GuildChannelCreateData) (*discordgo.Channel, error)
	DeleteChannel(channelID, reason string) error
	EditChannel(channelID string, edit *discordgo.ChannelEdit, reason string) error

	// SetUserLimit changes a voice channel's user limit; 0 lifts it.
	SetUserLimit(channelID string, limit int, reason string) error

	MoveMember(guildID, userID, channelID string) error
	Disconnect(guildID, userID, reason string) error

	// SetConnect grants or denies the connect permission on a channel for
	// a single principal, leaving other overwrites untouched.
	SetConnect(channelID string, p Principal, allow bool, reason string) error
	// GrantBotAccess gives the bot itself manage/connect rights on a
	// channel so it can keep editing it after a lock.
	GrantBotAccess(channelID string) error
	// SyncPermissions drops a channel's custom overwrites by copying its
	// parent category's set back onto it.
	SyncPermissions(channelID string) error

	// ChannelMembers lists the ids of users currently connected to a
	// voice channel.
	ChannelMembers(guildID, channelID string) ([]string, error)
	// MemberVoiceChannel returns the voice channel a user currently sits
	// in, or "" when they are not in voice.
	MemberVoiceChannel(guildID, userID string) string
	Member(guildID, userID string) (*discordgo.Member, error)
	// MemberPermissions computes a user's effective permissions in a
	// channel.
	MemberPermissions(guildID, channelID, userID string) (int64, error)
	MemberByName(guildID, name string) (*discordgo.Member, error)
	RoleByName(guildID, name string) (*discordgo.Role, error)
	Role(guildID, roleID string) (*discordgo.Role, error)

	SendMessage(channelID, content string) (*discordgo.Message, error)
	SendEmbed(channelID string, embed *discordgo.MessageEmbed) (*discordgo.Message, error)
	React(channelID, messageID, emoji string) error
	DeleteMessage(channelID, messageID string) error
	// BulkDeleteRecent removes the last count messages of a text channel.
	BulkDeleteRecent(channelID string, count int) error

	// AwaitReaction blocks until userID reacts to the given message with
	// one of emojis, returning the emoji, or ErrAwaitTimeout after the
	// window elapses.
	AwaitReaction(channelID, messageID, userID string, emojis []string, timeout time.Duration) (string, error)
}

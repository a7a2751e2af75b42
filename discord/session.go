package discord

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Halocrea/voice-chat-bot/logging"
	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

var log *zap.SugaredLogger

func init() {
	log = logging.InitLogger()
}

// ErrAwaitTimeout is returned by AwaitReaction when the window elapses
// without a qualifying reaction.
var ErrAwaitTimeout = errors.New("discord: reaction await timed out")

// BotPermissions is the overwrite the bot grants itself on every channel
// it manages.
const BotPermissions = discordgo.PermissionManageChannels |
	discordgo.PermissionManageRoles |
	discordgo.PermissionViewChannel |
	discordgo.PermissionVoiceConnect

// Session implements Client on top of a live discordgo session.
type Session struct {
	dg *discordgo.Session
}

func NewSession(dg *discordgo.Session) *Session {
	return &Session{dg: dg}
}

func (s *Session) BotUserID() string {
	return s.dg.State.User.ID
}

func (s *Session) Guild(guildID string) (*discordgo.Guild, error) {
	guild, err := s.dg.State.Guild(guildID)
	if err == nil {
		return guild, nil
	}
	return s.dg.Guild(guildID)
}

func (s *Session) Channel(channelID string) (*discordgo.Channel, error) {
	channel, err := s.dg.State.Channel(channelID)
	if err == nil {
		return channel, nil
	}
	return s.dg.Channel(channelID)
}

func (s *Session) CreateChannel(guildID string, data discordgo.GuildChannelCreateData) (*discordgo.Channel, error) {
	return s.dg.GuildChannelCreateComplex(guildID, data)
}

func (s *Session) DeleteChannel(channelID, reason string) error {
	_, err := s.dg.ChannelDelete(channelID, discordgo.WithAuditLogReason(reason))
	return err
}

func (s *Session) EditChannel(channelID string, edit *discordgo.ChannelEdit, reason string) error {
	_, err := s.dg.ChannelEdit(channelID, edit, discordgo.WithAuditLogReason(reason))
	return err
}

// channelLimitPatch always serializes user_limit, unlike
// discordgo.ChannelEdit whose omitempty tag drops the zero value that
// means "unlimited".
type channelLimitPatch struct {
	UserLimit int `json:"user_limit"`
}

func (s *Session) SetUserLimit(channelID string, limit int, reason string) error {
	_, err := s.dg.RequestWithBucketID("PATCH", discordgo.EndpointChannel(channelID),
		channelLimitPatch{UserLimit: limit}, discordgo.EndpointChannel(channelID),
		discordgo.WithAuditLogReason(reason))
	return err
}

func (s *Session) MoveMember(guildID, userID, channelID string) error {
	return s.dg.GuildMemberMove(guildID, userID, &channelID)
}

func (s *Session) Disconnect(guildID, userID, reason string) error {
	return s.dg.GuildMemberMove(guildID, userID, nil, discordgo.WithAuditLogReason(reason))
}

func (s *Session) SetConnect(channelID string, p Principal, allow bool, reason string) error {
	// ChannelPermissionSet replaces the whole overwrite for this target,
	// so carry over whatever was already set for it.
	var prevAllow, prevDeny int64
	if channel, err := s.Channel(channelID); err == nil {
		for _, overwrite := range channel.PermissionOverwrites {
			if overwrite.ID == p.ID && overwrite.Type == p.OverwriteType() {
				prevAllow, prevDeny = overwrite.Allow, overwrite.Deny
			}
		}
	}
	if allow {
		prevAllow |= discordgo.PermissionVoiceConnect
		prevDeny &^= discordgo.PermissionVoiceConnect
	} else {
		prevDeny |= discordgo.PermissionVoiceConnect
		prevAllow &^= discordgo.PermissionVoiceConnect
	}
	return s.dg.ChannelPermissionSet(channelID, p.ID, p.OverwriteType(), prevAllow, prevDeny)
}

func (s *Session) GrantBotAccess(channelID string) error {
	return s.dg.ChannelPermissionSet(channelID, s.BotUserID(), discordgo.PermissionOverwriteTypeMember, BotPermissions, 0)
}

// channelOverwritesPatch always serializes permission_overwrites so a
// reset to an empty set is not dropped by ChannelEdit's omitempty tag.
type channelOverwritesPatch struct {
	PermissionOverwrites []*discordgo.PermissionOverwrite `json:"permission_overwrites"`
}

func (s *Session) SyncPermissions(channelID string) error {
	channel, err := s.Channel(channelID)
	if err != nil {
		return err
	}
	if channel.ParentID == "" {
		return nil
	}
	category, err := s.Channel(channel.ParentID)
	if err != nil {
		return err
	}
	overwrites := category.PermissionOverwrites
	if overwrites == nil {
		overwrites = []*discordgo.PermissionOverwrite{}
	}
	_, err = s.dg.RequestWithBucketID("PATCH", discordgo.EndpointChannel(channelID),
		channelOverwritesPatch{PermissionOverwrites: overwrites}, discordgo.EndpointChannel(channelID),
		discordgo.WithAuditLogReason("Voice Bot: Resetting channel permissions"))
	return err
}

func (s *Session) ChannelMembers(guildID, channelID string) ([]string, error) {
	guild, err := s.dg.State.Guild(guildID)
	if err != nil {
		return nil, err
	}
	var members []string
	for _, state := range guild.VoiceStates {
		if state.ChannelID == channelID {
			members = append(members, state.UserID)
		}
	}
	return members, nil
}

func (s *Session) MemberVoiceChannel(guildID, userID string) string {
	guild, err := s.dg.State.Guild(guildID)
	if err != nil {
		log.Error(err)
		return ""
	}
	for _, state := range guild.VoiceStates {
		if state.UserID == userID {
			return state.ChannelID
		}
	}
	return ""
}

func (s *Session) Member(guildID, userID string) (*discordgo.Member, error) {
	member, err := s.dg.State.Member(guildID, userID)
	if err == nil {
		return member, nil
	}
	return s.dg.GuildMember(guildID, userID)
}

func (s *Session) MemberPermissions(guildID, channelID, userID string) (int64, error) {
	return s.dg.UserChannelPermissions(userID, channelID)
}

func (s *Session) MemberByName(guildID, name string) (*discordgo.Member, error) {
	if guild, err := s.dg.State.Guild(guildID); err == nil {
		for _, member := range guild.Members {
			if member.Nick == name || member.User.Username == name {
				return member, nil
			}
		}
	}
	members, err := s.dg.GuildMembersSearch(guildID, name, 1)
	if err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return nil, fmt.Errorf("no member named %q on guild %v", name, guildID)
	}
	return members[0], nil
}

func (s *Session) RoleByName(guildID, name string) (*discordgo.Role, error) {
	guild, err := s.Guild(guildID)
	if err != nil {
		return nil, err
	}
	for _, role := range guild.Roles {
		if strings.EqualFold(role.Name, name) {
			return role, nil
		}
	}
	return nil, fmt.Errorf("no role named %q on guild %v", name, guildID)
}

func (s *Session) Role(guildID, roleID string) (*discordgo.Role, error) {
	return s.dg.State.Role(guildID, roleID)
}

func (s *Session) SendMessage(channelID, content string) (*discordgo.Message, error) {
	return s.dg.ChannelMessageSend(channelID, content)
}

func (s *Session) SendEmbed(channelID string, embed *discordgo.MessageEmbed) (*discordgo.Message, error) {
	return s.dg.ChannelMessageSendEmbed(channelID, embed)
}

func (s *Session) React(channelID, messageID, emoji string) error {
	return s.dg.MessageReactionAdd(channelID, messageID, emoji)
}

func (s *Session) DeleteMessage(channelID, messageID string) error {
	return s.dg.ChannelMessageDelete(channelID, messageID)
}

func (s *Session) BulkDeleteRecent(channelID string, count int) error {
	messages, err := s.dg.ChannelMessages(channelID, count, "", "", "")
	if err != nil {
		return err
	}
	ids := make([]string, 0, len(messages))
	for _, message := range messages {
		ids = append(ids, message.ID)
	}
	if len(ids) == 0 {
		return nil
	}
	return s.dg.ChannelMessagesBulkDelete(channelID, ids)
}

func (s *Session) AwaitReaction(channelID, messageID, userID string, emojis []string, timeout time.Duration) (string, error) {
	collected := make(chan string, 1)
	remove := s.dg.AddHandler(func(_ *discordgo.Session, r *discordgo.MessageReactionAdd) {
		if r.MessageID != messageID || r.UserID != userID {
			return
		}
		for _, emoji := range emojis {
			if r.Emoji.Name == emoji {
				select {
				case collected <- emoji:
				default:
				}
				return
			}
		}
	})
	defer remove()

	select {
	case emoji := <-collected:
		return emoji, nil
	case <-time.After(timeout):
		return "", ErrAwaitTimeout
	}
}

package channels

import (
	"fmt"

	"github.com/Halocrea/voice-chat-bot/discord"
	"github.com/Halocrea/voice-chat-bot/logging"
	"github.com/Halocrea/voice-chat-bot/models"
	"github.com/Halocrea/voice-chat-bot/stores"
	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

var log *zap.SugaredLogger

func init() {
	log = logging.InitLogger()
}

// Manager creates a transient voice channel when someone joins the
// guild's lobby channel and tears it down once it sits empty.
type Manager struct {
	client      discord.Client
	ownership   stores.OwnershipStore
	preferences stores.PreferenceStore
	guilds      stores.GuildSetupStore
}

func NewManager(client discord.Client, ownership stores.OwnershipStore, preferences stores.PreferenceStore, guilds stores.GuildSetupStore) *Manager {
	return &Manager{
		client:      client,
		ownership:   ownership,
		preferences: preferences,
		guilds:      guilds,
	}
}

func (m *Manager) userJoined(i *discordgo.VoiceStateUpdate) {
	setup := m.guildSetup(i.GuildID)
	if setup == nil {
		return
	}
	if i.VoiceState.ChannelID == setup.LobbyChannelID {
		m.createTransientChannel(setup, i.GuildID, i.UserID)
	}
}

func (m *Manager) userMoved(i *discordgo.VoiceStateUpdate) {
	setup := m.guildSetup(i.GuildID)
	if setup == nil {
		return
	}
	if i.VoiceState.ChannelID == setup.LobbyChannelID {
		m.createTransientChannel(setup, i.GuildID, i.UserID)
	}
	m.deleteIfEmpty(setup, i.GuildID, i.BeforeUpdate.ChannelID)
}

func (m *Manager) userLeft(i *discordgo.VoiceStateUpdate) {
	setup := m.guildSetup(i.GuildID)
	if setup == nil {
		return
	}
	m.deleteIfEmpty(setup, i.GuildID, i.BeforeUpdate.ChannelID)
}

func (m *Manager) guildSetup(guildID string) *models.GuildSetup {
	setup, err := m.guilds.Get(guildID)
	if err != nil {
		log.Errorf("Failed to load setup for guild %v: %v", guildID, err)
		return nil
	}
	if setup == nil || setup.LobbyChannelID == "" || setup.CategoryID == "" {
		log.Debugf("Guild %v is not set up, ignoring voice event", guildID)
		return nil
	}
	return setup
}

// createTransientChannel builds the user's own channel under the managed
// category, moves them into it and records ownership. The ownership row
// is only written once both platform calls succeeded; on a late failure
// the channel is removed again so no orphan is left behind.
func (m *Manager) createTransientChannel(setup *models.GuildSetup, guildID, userID string) {
	member, err := m.client.Member(guildID, userID)
	if err != nil {
		log.Errorf("Failed to fetch member %v on guild %v: %v", userID, guildID, err)
		return
	}

	channelName := fmt.Sprintf("%s's channel", member.User.Username)
	userLimit := 0
	preference, err := m.preferences.Get(userID)
	if err != nil {
		log.Errorf("Failed to load preferences of user %v: %v", userID, err)
	}
	if preference != nil {
		if preference.ChannelName != "" {
			channelName = preference.ChannelName
		}
		userLimit = preference.UserLimit
	}

	created, err := m.client.CreateChannel(guildID, discordgo.GuildChannelCreateData{
		Name:      channelName,
		Type:      discordgo.ChannelTypeGuildVoice,
		ParentID:  setup.CategoryID,
		UserLimit: userLimit,
		PermissionOverwrites: []*discordgo.PermissionOverwrite{
			{
				ID:    m.client.BotUserID(),
				Type:  discordgo.PermissionOverwriteTypeMember,
				Allow: discord.BotPermissions | discordgo.PermissionVoiceMoveMembers,
			},
		},
	})
	if err != nil {
		log.Errorf("Failed to create channel for user %v on guild %v: %v", userID, guildID, err)
		return
	}

	if err := m.client.MoveMember(guildID, userID, created.ID); err != nil {
		log.Errorf("Failed to move user %v into channel %v: %v", userID, created.ID, err)
		m.discardChannel(created.ID)
		return
	}

	if err := m.ownership.Create(created.ID, userID, guildID); err != nil {
		log.Errorf("Failed to record ownership of channel %v: %v", created.ID, err)
		m.discardChannel(created.ID)
		return
	}
	log.Debugf("Created channel %v owned by user %v on guild %v", created.ID, userID, guildID)
}

func (m *Manager) discardChannel(channelID string) {
	if err := m.client.DeleteChannel(channelID, "Voice Bot: Rolling back a failed channel creation"); err != nil && !discord.IsUnknownChannel(err) {
		log.Errorf("Failed to roll back channel %v: %v", channelID, err)
	}
}

// deleteIfEmpty removes a transient channel once its last member left.
// The lobby channel itself is never deleted, and neither is anything
// outside the managed category.
func (m *Manager) deleteIfEmpty(setup *models.GuildSetup, guildID, channelID string) {
	if channelID == "" || channelID == setup.LobbyChannelID {
		return
	}

	channel, err := m.client.Channel(channelID)
	if err != nil {
		if discord.IsUnknownChannel(err) {
			// Someone else already deleted it, just drop the record.
			m.forgetOwnership(channelID)
		} else {
			log.Errorf("Failed to fetch channel %v: %v", channelID, err)
		}
		return
	}
	if channel.ParentID != setup.CategoryID {
		return
	}

	members, err := m.client.ChannelMembers(guildID, channelID)
	if err != nil {
		log.Errorf("Failed to count members of channel %v: %v", channelID, err)
		return
	}
	if len(members) > 0 {
		log.Debugf("Channel %v is not empty, no action required", channelID)
		return
	}

	if err := m.client.SyncPermissions(channelID); err != nil {
		log.Errorf("Failed to reset permissions of channel %v: %v", channelID, err)
	}
	if err := m.client.DeleteChannel(channelID, "Voice Bot: Channel empty"); err != nil && !discord.IsUnknownChannel(err) {
		log.Errorf("Failed to delete empty channel %v: %v", channelID, err)
		return
	}
	m.forgetOwnership(channelID)
	log.Debugf("Deleted empty channel %v on guild %v", channelID, guildID)
}

func (m *Manager) forgetOwnership(channelID string) {
	if err := m.ownership.Delete(channelID); err != nil {
		log.Errorf("Failed to remove ownership record of channel %v: %v", channelID, err)
	}
}

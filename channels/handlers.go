package channels

import (
	"github.com/bwmarrin/discordgo"
)

// VCUpdate is the voice-state handler registered on the gateway session.
func (m *Manager) VCUpdate(s *discordgo.Session, i *discordgo.VoiceStateUpdate) {
	if i.BeforeUpdate == nil {
		m.userJoined(i)

	} else if i.BeforeUpdate.ChannelID != "" && i.VoiceState.ChannelID != i.BeforeUpdate.ChannelID && i.VoiceState.ChannelID != "" {
		m.userMoved(i)

	} else if i.VoiceState.ChannelID == i.BeforeUpdate.ChannelID {
		return

	} else if i.VoiceState.ChannelID == "" {
		m.userLeft(i)
	}
}

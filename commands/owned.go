package commands

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Halocrea/voice-chat-bot/discord"
	"github.com/Halocrea/voice-chat-bot/models"
	"github.com/bwmarrin/discordgo"
)

const (
	acceptEmoji  = "✅"
	declineEmoji = "❌"
)

func (d *Dispatcher) renameChannel(msg *discordgo.MessageCreate, channelID, args string) {
	name := strings.TrimSpace(args)
	if name == "" {
		d.reply(msg, "Please give the new channel name after the command.")
		return
	}

	// Remember the name so the next channel starts out with it.
	if err := d.preferences.SetName(msg.Author.ID, name); err != nil {
		log.Errorf("Failed to save channel name for user %v: %v", msg.Author.ID, err)
	}

	err := d.client.EditChannel(channelID, &discordgo.ChannelEdit{Name: name},
		fmt.Sprintf("Voice Bot: Asked by its owner (%s)", memberName(msg)))
	if err != nil {
		d.reportPlatformError(msg, err)
		return
	}
	d.reply(msg, fmt.Sprintf("ℹ️ The channel has been renamed \"**%s**\", %s!", name, memberName(msg)))
}

func (d *Dispatcher) lockChannel(msg *discordgo.MessageCreate, channelID string) {
	// Deny everyone first so there is no window where the channel is
	// locked without the owner's own grant.
	err := d.client.SetConnect(channelID, discord.RolePrincipal(msg.GuildID), false,
		fmt.Sprintf("Voice Bot: The owner (%s) wants to lock the channel", msg.Author.Username))
	if err != nil {
		d.reportPlatformError(msg, err)
		return
	}
	if err := d.client.SetConnect(channelID, discord.UserPrincipal(msg.Author.ID), true, ""); err != nil {
		d.reportPlatformError(msg, err)
		return
	}
	d.reply(msg, "🔒 The channel is now **locked**")

	grants, err := d.permits.All(msg.Author.ID)
	if err != nil {
		log.Errorf("Failed to load permit history of user %v: %v", msg.Author.ID, err)
		return
	}
	if len(grants) == 0 {
		return
	}
	setup, err := d.guilds.Get(msg.GuildID)
	if err != nil || setup == nil || setup.CommandsChannelID == "" {
		if err != nil {
			log.Errorf("Failed to load setup for guild %v: %v", msg.GuildID, err)
		}
		return
	}
	if !d.beginPrompt(msg.Author.ID) {
		log.Debugf("A permit-history prompt is already pending for user %v", msg.Author.ID)
		return
	}
	go d.offerPermitHistory(msg.GuildID, setup.CommandsChannelID, channelID, msg.Author.ID, grants)
}

// offerPermitHistory asks the owner whether the principals they permitted
// last time should be allowed again. No answer within the window counts
// as a decline, and a decline forgets the history.
func (d *Dispatcher) offerPermitHistory(guildID, commandsChannelID, voiceChannelID, ownerID string, grants []models.PermitGrant) {
	defer d.endPrompt(ownerID)

	proposal, err := d.client.SendEmbed(commandsChannelID, &discordgo.MessageEmbed{
		Title:       "Do you want me to set the permissions just like your previous voice channel?",
		Description: fmt.Sprintf("Those members/roles would be allowed to join you:\n\n%s", strings.Join(d.grantNames(guildID, grants), "\n")),
		Color:       7944435,
	})
	if err != nil {
		log.Errorf("Failed to send the permit-history prompt for user %v: %v", ownerID, err)
		return
	}
	for _, emoji := range []string{acceptEmoji, declineEmoji} {
		if err := d.client.React(commandsChannelID, proposal.ID, emoji); err != nil {
			log.Errorf("Failed to react on the permit-history prompt: %v", err)
		}
	}

	emoji, err := d.client.AwaitReaction(commandsChannelID, proposal.ID, ownerID, []string{acceptEmoji, declineEmoji}, d.promptTimeout)
	if err != nil || emoji != acceptEmoji {
		if clearErr := d.permits.Clear(ownerID); clearErr != nil {
			log.Errorf("Failed to clear permit history of user %v: %v", ownerID, clearErr)
		}
		if err == nil {
			if _, sendErr := d.client.SendMessage(commandsChannelID, "❌ Last permissions **not loaded**"); sendErr != nil {
				log.Error(sendErr)
			}
		}
		d.discardPrompt(commandsChannelID, proposal.ID)
		return
	}

	// Rebuild the overwrites wholesale: every remembered grant, the
	// owner, the everyone deny and the bot itself.
	overwrites := make([]*discordgo.PermissionOverwrite, 0, len(grants)+3)
	for _, grant := range grants {
		overwrites = append(overwrites, &discordgo.PermissionOverwrite{
			ID:    grant.PrincipalID,
			Type:  grantPrincipal(grant).OverwriteType(),
			Allow: discordgo.PermissionVoiceConnect,
		})
	}
	overwrites = append(overwrites,
		&discordgo.PermissionOverwrite{
			ID:    ownerID,
			Type:  discordgo.PermissionOverwriteTypeMember,
			Allow: discordgo.PermissionVoiceConnect,
		},
		&discordgo.PermissionOverwrite{
			ID:   guildID,
			Type: discordgo.PermissionOverwriteTypeRole,
			Deny: discordgo.PermissionVoiceConnect,
		},
		&discordgo.PermissionOverwrite{
			ID:    d.client.BotUserID(),
			Type:  discordgo.PermissionOverwriteTypeMember,
			Allow: discord.BotPermissions,
		},
	)
	err = d.client.EditChannel(voiceChannelID, &discordgo.ChannelEdit{PermissionOverwrites: overwrites},
		"Voice Bot: Loading the owner's previous permissions")
	if err != nil {
		log.Errorf("Failed to load previous permissions on channel %v: %v", voiceChannelID, err)
		if _, sendErr := d.client.SendMessage(commandsChannelID, "Hmm... something went wrong... Please try again or make sure I have been properly configured."); sendErr != nil {
			log.Error(sendErr)
		}
		d.discardPrompt(commandsChannelID, proposal.ID)
		return
	}
	if _, err := d.client.SendMessage(commandsChannelID, "✅ Last permissions **loaded**"); err != nil {
		log.Error(err)
	}
	d.discardPrompt(commandsChannelID, proposal.ID)
}

func (d *Dispatcher) discardPrompt(channelID, messageID string) {
	if err := d.client.DeleteMessage(channelID, messageID); err != nil {
		log.Errorf("Failed to delete the permit-history prompt: %v", err)
	}
}

func (d *Dispatcher) grantNames(guildID string, grants []models.PermitGrant) []string {
	names := make([]string, 0, len(grants))
	for _, grant := range grants {
		switch grant.PrincipalKind {
		case string(discord.PrincipalRole):
			if role, err := d.client.Role(guildID, grant.PrincipalID); err == nil {
				names = append(names, role.Name)
				continue
			}
		default:
			if member, err := d.client.Member(guildID, grant.PrincipalID); err == nil {
				names = append(names, member.User.Username)
				continue
			}
		}
		names = append(names, grant.PrincipalID)
	}
	return names
}

func grantPrincipal(grant models.PermitGrant) discord.Principal {
	if grant.PrincipalKind == string(discord.PrincipalRole) {
		return discord.RolePrincipal(grant.PrincipalID)
	}
	return discord.UserPrincipal(grant.PrincipalID)
}

func (d *Dispatcher) unlockChannel(msg *discordgo.MessageCreate, channelID string) {
	err := d.client.SetConnect(channelID, discord.RolePrincipal(msg.GuildID), true,
		fmt.Sprintf("Voice Bot: The owner (%s) wants to unlock the channel", msg.Author.Username))
	if err != nil {
		d.reportPlatformError(msg, err)
		return
	}
	// Unlocking forgets the remembered grants.
	if err := d.permits.Clear(msg.Author.ID); err != nil {
		log.Errorf("Failed to clear permit history of user %v: %v", msg.Author.ID, err)
	}
	d.reply(msg, "🔓 Channel **unlocked**")
}

func (d *Dispatcher) permitUser(msg *discordgo.MessageCreate, channelID, args string) {
	targets := d.resolveTargets(msg, strings.TrimSpace(args))
	if len(targets) == 0 {
		d.reply(msg, "I could not find this user or role, please make sure you typed the name correctly and try again.")
		return
	}

	permitted := make([]string, 0, len(targets))
	for _, target := range targets {
		err := d.client.SetConnect(channelID, target.principal, true,
			fmt.Sprintf("Voice Bot: The owner (%s) wants to allow %s in their channel", msg.Author.Username, target.name))
		if err != nil {
			d.reportPlatformError(msg, err)
			return
		}
		if err := d.permits.Add(msg.Author.ID, target.principal.ID, string(target.principal.Kind)); err != nil {
			log.Errorf("Failed to record permit for user %v: %v", msg.Author.ID, err)
		}
		permitted = append(permitted, target.name)
	}
	d.reply(msg, fmt.Sprintf("✅ **%s** can now join your channel!", strings.Join(permitted, ", ")))
}

func (d *Dispatcher) rejectUser(msg *discordgo.MessageCreate, channelID, args string) {
	rejected := d.resolveMember(msg, strings.TrimSpace(args))
	if rejected == nil {
		d.reply(msg, "I could not find this user, please make sure you typed the name correctly and try again.")
		d.scheduleCleanup(msg.ChannelID, 2)
		return
	}

	name := rejected.User.Username
	if rejected.Nick != "" {
		name = rejected.Nick
	}
	err := d.client.Disconnect(msg.GuildID, rejected.User.ID,
		fmt.Sprintf("Voice Bot: The owner (%s) kicked %s out of the channel", msg.Author.Username, rejected.User.Username))
	if err != nil {
		d.reportPlatformError(msg, err)
		return
	}
	if err := d.client.SetConnect(channelID, discord.UserPrincipal(rejected.User.ID), false,
		fmt.Sprintf("Voice Bot: Kicked user (%s) out of the channel", rejected.User.Username)); err != nil {
		log.Errorf("Failed to deny connect for rejected user %v: %v", rejected.User.ID, err)
	}
	d.reply(msg, fmt.Sprintf("💢 **%s** has been kicked out of the channel!", name))
	d.scheduleCleanup(msg.ChannelID, 2)
}

func (d *Dispatcher) setUserLimit(msg *discordgo.MessageCreate, channelID, args string) {
	limit, err := strconv.Atoi(strings.TrimSpace(args))
	if err != nil || limit < 0 || limit > 99 {
		d.reply(msg, "Please send a value between **0** and **99**")
		return
	}

	if err := d.preferences.SetLimit(msg.Author.ID, limit); err != nil {
		log.Errorf("Failed to save user limit for user %v: %v", msg.Author.ID, err)
	}
	err = d.client.SetUserLimit(channelID, limit,
		fmt.Sprintf("Voice Bot: Asked by its owner (%s)", msg.Author.Username))
	if err != nil {
		d.reportPlatformError(msg, err)
		return
	}
	if limit > 0 {
		d.reply(msg, fmt.Sprintf("✋ User limit set to **%d**", limit))
	} else {
		d.reply(msg, "✋ User limit set to **unlimited**")
	}
}

func (d *Dispatcher) setBitrate(msg *discordgo.MessageCreate, channelID, args string) {
	guild, err := d.client.Guild(msg.GuildID)
	if err != nil {
		log.Errorf("Failed to fetch guild %v: %v", msg.GuildID, err)
		d.reply(msg, "Hmm... something went wrong... Please try again or make sure I have been properly configured.")
		return
	}
	ceiling := bitrateCeiling(guild.PremiumTier)

	bitrate, err := strconv.Atoi(strings.TrimSpace(args))
	if err != nil || bitrate < 8000 || bitrate > ceiling {
		d.reply(msg, fmt.Sprintf("Please give a BPS value between 8000 and %d.", ceiling))
		return
	}
	err = d.client.EditChannel(channelID, &discordgo.ChannelEdit{Bitrate: bitrate},
		fmt.Sprintf("Voice Bot: Asked by its owner (%s)", msg.Author.Username))
	if err != nil {
		d.reportPlatformError(msg, err)
		return
	}
	d.reply(msg, fmt.Sprintf("👂 Channel bitrate set to **%dbps**", bitrate))
}

// bitrateCeiling is the maximum voice bitrate a guild's boost tier
// allows. 96kbps is the tier 0 maximum.
func bitrateCeiling(tier discordgo.PremiumTier) int {
	switch tier {
	case discordgo.PremiumTier1:
		return 128000
	case discordgo.PremiumTier2:
		return 256000
	case discordgo.PremiumTier3:
		return 384000
	default:
		return 96000
	}
}

func (d *Dispatcher) scheduleCleanup(channelID string, count int) {
	time.AfterFunc(d.cleanupDelay, func() {
		if err := d.client.BulkDeleteRecent(channelID, count); err != nil {
			log.Errorf("Failed to clean up channel %v: %v", channelID, err)
		}
	})
}

package setup

import (
	"fmt"
	"strings"
	"time"

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

const (
	autoEmoji   = "🤖"
	manualEmoji = "⚙️"

	defaultPromptTimeout = 2 * time.Minute
)

// Handler runs the guild onboarding and the incremental setup-* commands
// that fill the guild configuration.
type Handler struct {
	client        discord.Client
	guilds        stores.GuildSetupStore
	defaultPrefix string

	promptTimeout time.Duration
}

func NewHandler(client discord.Client, guilds stores.GuildSetupStore, defaultPrefix string) *Handler {
	return &Handler{
		client:        client,
		guilds:        guilds,
		defaultPrefix: defaultPrefix,
		promptTimeout: defaultPromptTimeout,
	}
}

// Handles reports whether cmd belongs to this handler.
func Handles(cmd string) bool {
	return cmd == "setup" || strings.HasPrefix(cmd, "setup-")
}

func (h *Handler) Handle(msg *discordgo.MessageCreate, cmd, args, prefix string) {
	setup, err := h.guilds.Get(msg.GuildID)
	if err != nil {
		log.Errorf("Failed to load setup for guild %v: %v", msg.GuildID, err)
		h.reply(msg, "Hmm... something went wrong... Please try again or make sure I have been properly configured.")
		return
	}

	// No record yet means the guild is being set up for the first time.
	if setup == nil {
		h.onboard(msg, prefix)
		return
	}

	switch cmd {
	case "setup-prefix":
		h.setupPrefix(msg, args)
	case "setup-category":
		h.setupCategory(msg, args)
	case "setup-voice":
		h.setupVoice(msg, args)
	case "setup-commands":
		h.setupCommands(msg, args)
	case "setup-clear":
		h.clearSetup(msg)
	case "setup-help":
		h.help(msg, prefix)
	default:
		if _, err := h.client.SendEmbed(msg.ChannelID, &discordgo.MessageEmbed{
			Title:       "It looks like I'm already set up on your server",
			Description: fmt.Sprintf("If you want to edit my setup, please use the command `%s setup-help` to get the setup commands.", prefix),
			Color:       6465260,
		}); err != nil {
			log.Error(err)
		}
	}
}

// onboard offers the automatic and the manual path and waits for the
// caller to pick one by reaction.
func (h *Handler) onboard(msg *discordgo.MessageCreate, prefix string) {
	proposal, err := h.client.SendEmbed(msg.ChannelID, &discordgo.MessageEmbed{
		Title: "To set me up",
		Description: fmt.Sprintf(`Hello 😀
Before I can do things on your server, I require a bit of configuration; there are two ways to do so:

**Automatically** (%s), I'll create a new category into which I'm able to manage new voice channels on the fly, a permanent voice channel members join to generate their own voice channels, and a text channel where I listen to commands.

**Manually** (%s), you'll give me an existing category, voice channel and text channel using the `+"`%s setup-help`"+` commands.`, autoEmoji, manualEmoji, prefix),
		Color: 6465260,
	})
	if err != nil {
		log.Errorf("Failed to send the setup prompt on guild %v: %v", msg.GuildID, err)
		return
	}
	for _, emoji := range []string{autoEmoji, manualEmoji} {
		if err := h.client.React(msg.ChannelID, proposal.ID, emoji); err != nil {
			log.Errorf("Failed to react on the setup prompt: %v", err)
		}
	}

	emoji, err := h.client.AwaitReaction(msg.ChannelID, proposal.ID, msg.Author.ID, []string{autoEmoji, manualEmoji}, h.promptTimeout)
	if err != nil {
		h.reply(msg, "You didn't answer in time, but please don't forget to set me up 😭 You'll have to re-use the command again.")
		return
	}
	if emoji == autoEmoji {
		h.autoSetup(msg, prefix)
	} else {
		h.manualSetup(msg, prefix)
	}
}

// autoSetup creates the category, the lobby voice channel and the
// commands text channel, then saves the whole configuration in one go.
func (h *Handler) autoSetup(msg *discordgo.MessageCreate, prefix string) {
	overwrites := []*discordgo.PermissionOverwrite{
		{
			ID:    h.client.BotUserID(),
			Type:  discordgo.PermissionOverwriteTypeMember,
			Allow: discord.BotPermissions | discordgo.PermissionVoiceMoveMembers,
		},
	}

	category, err := h.client.CreateChannel(msg.GuildID, discordgo.GuildChannelCreateData{
		Name:                 "Voice channels",
		Type:                 discordgo.ChannelTypeGuildCategory,
		PermissionOverwrites: overwrites,
	})
	if err != nil {
		h.reply(msg, "Error using the auto setup, please try again.")
		log.Errorf("Auto setup failed on guild %v: %v", msg.GuildID, err)
		return
	}
	lobby, err := h.client.CreateChannel(msg.GuildID, discordgo.GuildChannelCreateData{
		Name:                 "Create a channel",
		Type:                 discordgo.ChannelTypeGuildVoice,
		ParentID:             category.ID,
		PermissionOverwrites: overwrites,
	})
	if err != nil {
		h.reply(msg, "Error using the auto setup, please try again.")
		log.Errorf("Auto setup failed on guild %v: %v", msg.GuildID, err)
		return
	}
	commandsChannel, err := h.client.CreateChannel(msg.GuildID, discordgo.GuildChannelCreateData{
		Name:                 "Commands",
		Type:                 discordgo.ChannelTypeGuildText,
		ParentID:             category.ID,
		PermissionOverwrites: overwrites,
	})
	if err != nil {
		h.reply(msg, "Error using the auto setup, please try again.")
		log.Errorf("Auto setup failed on guild %v: %v", msg.GuildID, err)
		return
	}

	if err := h.guilds.Save(&models.GuildSetup{
		GuildID:           msg.GuildID,
		Prefix:            h.defaultPrefix,
		CategoryID:        category.ID,
		LobbyChannelID:    lobby.ID,
		CommandsChannelID: commandsChannel.ID,
	}); err != nil {
		h.reply(msg, "Error using the auto setup, please try again.")
		log.Errorf("Failed to save setup of guild %v: %v", msg.GuildID, err)
		return
	}
	h.sendCompleted(msg, prefix)
}

// manualSetup only creates the partial record; the setup-* commands fill
// the fields one by one.
func (h *Handler) manualSetup(msg *discordgo.MessageCreate, prefix string) {
	if err := h.guilds.Save(&models.GuildSetup{GuildID: msg.GuildID, Prefix: h.defaultPrefix}); err != nil {
		log.Errorf("Failed to save setup of guild %v: %v", msg.GuildID, err)
		h.reply(msg, "Hmm... something went wrong... Please try again or make sure I have been properly configured.")
		return
	}
	h.help(msg, prefix)
}

func (h *Handler) setupPrefix(msg *discordgo.MessageCreate, args string) {
	prefix := strings.TrimSpace(args)
	if prefix == "" {
		h.reply(msg, "Please give the prefix you want me to listen to.")
		return
	}
	if err := h.guilds.SetPrefix(msg.GuildID, prefix); err != nil {
		log.Errorf("Failed to save prefix of guild %v: %v", msg.GuildID, err)
		h.reply(msg, "Hmm... something went wrong... Please try again or make sure I have been properly configured.")
		return
	}
	h.reply(msg, fmt.Sprintf("✅ I now listen to commands starting with `%s`", prefix))
}

func (h *Handler) setupCategory(msg *discordgo.MessageCreate, args string) {
	channel, ok := h.lookupChannel(msg, args, discordgo.ChannelTypeGuildCategory, "category")
	if !ok {
		return
	}
	if err := h.guilds.SetCategory(msg.GuildID, channel.ID); err != nil {
		log.Errorf("Failed to save category of guild %v: %v", msg.GuildID, err)
		h.reply(msg, "Hmm... something went wrong... Please try again or make sure I have been properly configured.")
		return
	}
	h.reply(msg, fmt.Sprintf("✅ I now manage voice channels under **%s**", channel.Name))
}

func (h *Handler) setupVoice(msg *discordgo.MessageCreate, args string) {
	channel, ok := h.lookupChannel(msg, args, discordgo.ChannelTypeGuildVoice, "voice channel")
	if !ok {
		return
	}
	if err := h.guilds.SetLobbyChannel(msg.GuildID, channel.ID); err != nil {
		log.Errorf("Failed to save lobby channel of guild %v: %v", msg.GuildID, err)
		h.reply(msg, "Hmm... something went wrong... Please try again or make sure I have been properly configured.")
		return
	}
	h.reply(msg, fmt.Sprintf("✅ Members joining **%s** now get their own channel", channel.Name))
}

func (h *Handler) setupCommands(msg *discordgo.MessageCreate, args string) {
	channel, ok := h.lookupChannel(msg, args, discordgo.ChannelTypeGuildText, "text channel")
	if !ok {
		return
	}
	if err := h.guilds.SetCommandsChannel(msg.GuildID, channel.ID); err != nil {
		log.Errorf("Failed to save commands channel of guild %v: %v", msg.GuildID, err)
		h.reply(msg, "Hmm... something went wrong... Please try again or make sure I have been properly configured.")
		return
	}
	h.reply(msg, fmt.Sprintf("✅ I now listen to commands in **%s**", channel.Name))
}

func (h *Handler) lookupChannel(msg *discordgo.MessageCreate, args string, wantType discordgo.ChannelType, label string) (*discordgo.Channel, bool) {
	id := strings.TrimSpace(args)
	if id == "" {
		h.reply(msg, fmt.Sprintf("Please give the **ID** of the %s.", label))
		return nil, false
	}
	channel, err := h.client.Channel(id)
	if err != nil || channel.GuildID != msg.GuildID || channel.Type != wantType {
		h.reply(msg, fmt.Sprintf("I could not find a %s with this ID on your server, please check it and try again.", label))
		return nil, false
	}
	return channel, true
}

func (h *Handler) clearSetup(msg *discordgo.MessageCreate) {
	if err := h.guilds.Delete(msg.GuildID); err != nil {
		log.Errorf("Failed to clear setup of guild %v: %v", msg.GuildID, err)
		h.reply(msg, "Hmm... something went wrong... Please try again or make sure I have been properly configured.")
		return
	}
	h.reply(msg, "💢 Setup cleared; run the setup command whenever you want me back.")
}

func (h *Handler) help(msg *discordgo.MessageCreate, prefix string) {
	if _, err := h.client.SendEmbed(msg.ChannelID, &discordgo.MessageEmbed{
		Title: "Setup commands list",
		Description: fmt.Sprintf(`Here are all the setup commands you can run as an Administrator:

**%[1]s setup-prefix <prefix>**
Change the prefix I listen to on this server

**%[1]s setup-category <category_id>**
The category under which I manage voice channels

**%[1]s setup-voice <voice_channel_id>**
The voice channel members join to create their own channel

**%[1]s setup-commands <text_channel_id>**
The text channel where I listen to commands

**%[1]s setup-clear**
Forget everything about this server`, prefix),
		Color: 6465260,
	}); err != nil {
		log.Error(err)
	}
}

func (h *Handler) sendCompleted(msg *discordgo.MessageCreate, prefix string) {
	if _, err := h.client.SendEmbed(msg.ChannelID, &discordgo.MessageEmbed{
		Title:       "All done!",
		Description: fmt.Sprintf("Everything is ready; members can join the **Create a channel** voice channel to get their own. Run `%s help` in the commands channel to see what owners can do.", prefix),
		Color:       6465260,
	}); err != nil {
		log.Error(err)
	}
}

func (h *Handler) reply(msg *discordgo.MessageCreate, content string) {
	if _, err := h.client.SendMessage(msg.ChannelID, content); err != nil {
		log.Errorf("Failed to reply in channel %v: %v", msg.ChannelID, err)
	}
}

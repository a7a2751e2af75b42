package moderation

import (
	"fmt"
	"strings"

	"github.com/Halocrea/voice-chat-bot/discord"
	"github.com/Halocrea/voice-chat-bot/logging"
	"github.com/Halocrea/voice-chat-bot/stores"
	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

var log *zap.SugaredLogger

func init() {
	log = logging.InitLogger()
}

// Handler manages the roles allowed to administrate the bot on a guild.
type Handler struct {
	client discord.Client
	store  stores.ModerationStore
}

func NewHandler(client discord.Client, store stores.ModerationStore) *Handler {
	return &Handler{client: client, store: store}
}

// Handles reports whether cmd belongs to this handler.
func Handles(cmd string) bool {
	switch cmd {
	case "add-moderation-role", "remove-moderation-role", "list-moderation-role", "moderation-help":
		return true
	}
	return false
}

func (h *Handler) Handle(msg *discordgo.MessageCreate, cmd, prefix string) {
	switch cmd {
	case "add-moderation-role":
		h.addRole(msg)
	case "remove-moderation-role":
		h.removeRole(msg)
	case "list-moderation-role":
		h.listRoles(msg)
	case "moderation-help":
		h.help(msg, prefix)
	}
}

// IsModerator reports whether the caller may run setup and moderation
// commands: administrators always can, otherwise one of the registered
// moderation roles is required.
func (h *Handler) IsModerator(msg *discordgo.MessageCreate) bool {
	perms, err := h.client.MemberPermissions(msg.GuildID, msg.ChannelID, msg.Author.ID)
	if err != nil {
		log.Errorf("Failed to compute permissions of user %v: %v", msg.Author.ID, err)
	} else if perms&discordgo.PermissionAdministrator != 0 {
		return true
	}

	if msg.Member == nil {
		return false
	}
	moderationRoles, err := h.store.Roles(msg.GuildID)
	if err != nil {
		log.Errorf("Failed to load moderation roles of guild %v: %v", msg.GuildID, err)
		return false
	}
	for _, roleID := range msg.Member.Roles {
		for _, moderationRole := range moderationRoles {
			if roleID == moderationRole {
				return true
			}
		}
	}
	return false
}

func (h *Handler) addRole(msg *discordgo.MessageCreate) {
	if len(msg.MentionRoles) == 0 {
		h.reply(msg, "Please use a role ping to add this role to the moderation")
		return
	}
	if err := h.store.Add(msg.GuildID, msg.MentionRoles[0]); err != nil {
		log.Errorf("Failed to add moderation role on guild %v: %v", msg.GuildID, err)
		h.reply(msg, "Hmm... something went wrong... Please try again or make sure I have been properly configured.")
		return
	}
	h.reply(msg, "✅ Role has been successfully added to the moderation")
}

func (h *Handler) removeRole(msg *discordgo.MessageCreate) {
	if len(msg.MentionRoles) == 0 {
		h.reply(msg, "Please use a role ping to remove this role from the moderation")
		return
	}
	if err := h.store.Remove(msg.GuildID, msg.MentionRoles[0]); err != nil {
		log.Errorf("Failed to remove moderation role on guild %v: %v", msg.GuildID, err)
		h.reply(msg, "Hmm... something went wrong... Please try again or make sure I have been properly configured.")
		return
	}
	h.reply(msg, "💢 Role has been successfully removed from the moderation")
}

func (h *Handler) listRoles(msg *discordgo.MessageCreate) {
	roleIDs, err := h.store.Roles(msg.GuildID)
	if err != nil {
		log.Errorf("Failed to list moderation roles of guild %v: %v", msg.GuildID, err)
		h.reply(msg, "Hmm... something went wrong... Please try again or make sure I have been properly configured.")
		return
	}
	if len(roleIDs) == 0 {
		h.reply(msg, "You don't have any moderation role, please use the add-moderation-role command to add one.")
		return
	}
	names := make([]string, 0, len(roleIDs))
	for _, roleID := range roleIDs {
		if role, err := h.client.Role(msg.GuildID, roleID); err == nil {
			names = append(names, role.Name)
		} else {
			names = append(names, roleID)
		}
	}
	if _, err := h.client.SendEmbed(msg.ChannelID, &discordgo.MessageEmbed{
		Title:       "Here are all the roles allowed to moderate",
		Description: strings.Join(names, "\n"),
		Color:       13632027,
	}); err != nil {
		log.Error(err)
	}
}

func (h *Handler) help(msg *discordgo.MessageCreate, prefix string) {
	if _, err := h.client.SendEmbed(msg.ChannelID, &discordgo.MessageEmbed{
		Title: "Moderation roles commands list",
		Description: fmt.Sprintf(`Here are all the moderation commands you can run as an Administrator:

**%[1]s add-moderation-role <@role>**
Add a role allowed to moderate the bot

**%[1]s list-moderation-role**
List all the roles allowed to moderate the bot

**%[1]s remove-moderation-role <@role>**
Remove a role no longer allowed to moderate the bot`, prefix),
		Color: 6465260,
	}); err != nil {
		log.Error(err)
	}
}

func (h *Handler) reply(msg *discordgo.MessageCreate, content string) {
	if _, err := h.client.SendMessage(msg.ChannelID, content); err != nil {
		log.Errorf("Failed to reply in channel %v: %v", msg.ChannelID, err)
	}
}

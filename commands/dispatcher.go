package commands

import (
	"fmt"
	"sync"
	"time"

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

const (
	// How long the owner gets to answer the permit-history prompt before
	// it counts as a decline.
	defaultPromptTimeout = 2 * time.Minute
	// Pause before cleaning command noise out of the invoking channel.
	defaultCleanupDelay = 1500 * time.Millisecond
)

// Dispatcher routes the channel-management commands. Every command except
// help requires the caller to be in a voice channel, and every command
// except claim requires them to own it.
type Dispatcher struct {
	client        discord.Client
	ownership     stores.OwnershipStore
	preferences   stores.PreferenceStore
	permits       stores.PermitHistoryStore
	guilds        stores.GuildSetupStore
	defaultPrefix string

	promptTimeout time.Duration
	cleanupDelay  time.Duration

	mu             sync.Mutex
	pendingPrompts map[string]struct{}
}

func NewDispatcher(
	client discord.Client,
	ownership stores.OwnershipStore,
	preferences stores.PreferenceStore,
	permits stores.PermitHistoryStore,
	guilds stores.GuildSetupStore,
	defaultPrefix string,
) *Dispatcher {
	return &Dispatcher{
		client:         client,
		ownership:      ownership,
		preferences:    preferences,
		permits:        permits,
		guilds:         guilds,
		defaultPrefix:  defaultPrefix,
		promptTimeout:  defaultPromptTimeout,
		cleanupDelay:   defaultCleanupDelay,
		pendingPrompts: make(map[string]struct{}),
	}
}

// Handle runs a single command. cmd comes in lower-cased with the guild
// prefix already stripped, args is the rest of the message.
func (d *Dispatcher) Handle(msg *discordgo.MessageCreate, cmd, args string) {
	if cmd == "help" {
		d.help(msg)
		return
	}

	channelID := d.client.MemberVoiceChannel(msg.GuildID, msg.Author.ID)
	if channelID == "" {
		d.reply(msg, "You have to be in a voice channel to run this kind of commands.")
		return
	}

	owner, err := d.ownership.Owner(channelID)
	if err != nil {
		log.Errorf("Failed to look up the owner of channel %v: %v", channelID, err)
		d.reply(msg, "Hmm... something went wrong... Please try again or make sure I have been properly configured.")
		return
	}

	if owner == msg.Author.ID {
		switch cmd {
		case "name":
			d.renameChannel(msg, channelID, args)
		case "lock":
			d.lockChannel(msg, channelID)
		case "unlock":
			d.unlockChannel(msg, channelID)
		case "permit":
			d.permitUser(msg, channelID, args)
		case "reject":
			d.rejectUser(msg, channelID, args)
		case "limit":
			d.setUserLimit(msg, channelID, args)
		case "bitrate":
			d.setBitrate(msg, channelID, args)
		case "claim":
			d.reply(msg, "You already own this channel 🤔")
		default:
			d.reply(msg, "Unknown command, please try again or use the help command.")
		}
	} else if cmd == "claim" {
		d.claimChannel(msg, channelID, owner)
	} else {
		d.reply(msg, fmt.Sprintf(
			"You do not own the channel you're trying to modify; if its owner left, you can claim it with `%s claim`.",
			d.prefix(msg.GuildID),
		))
	}
}

func (d *Dispatcher) claimChannel(msg *discordgo.MessageCreate, channelID, ownerID string) {
	members, err := d.client.ChannelMembers(msg.GuildID, channelID)
	if err != nil {
		log.Errorf("Failed to list members of channel %v: %v", channelID, err)
		d.reply(msg, "Hmm... something went wrong... Please try again or make sure I have been properly configured.")
		return
	}
	for _, member := range members {
		if member == ownerID {
			d.reply(msg, "You can't own this channel right now.")
			return
		}
	}
	if ownerID == "" {
		// Not a channel the bot manages, nothing to claim.
		d.reply(msg, "You can't own this channel right now.")
		return
	}
	if err := d.ownership.SetOwner(channelID, msg.Author.ID); err != nil {
		log.Errorf("Failed to reassign channel %v to user %v: %v", channelID, msg.Author.ID, err)
		d.reply(msg, "Hmm... something went wrong... Please try again or make sure I have been properly configured.")
		return
	}
	d.reply(msg, "💪 You now **own** this channel!")
}

func (d *Dispatcher) prefix(guildID string) string {
	setup, err := d.guilds.Get(guildID)
	if err != nil {
		log.Errorf("Failed to load setup for guild %v: %v", guildID, err)
	}
	if setup != nil && setup.Prefix != "" {
		return setup.Prefix
	}
	return d.defaultPrefix
}

func (d *Dispatcher) reply(msg *discordgo.MessageCreate, content string) {
	if _, err := d.client.SendMessage(msg.ChannelID, content); err != nil {
		log.Errorf("Failed to reply in channel %v: %v", msg.ChannelID, err)
	}
}

// reportPlatformError turns an API failure into a user-facing message and
// an operator log line. Nothing here is fatal.
func (d *Dispatcher) reportPlatformError(msg *discordgo.MessageCreate, err error) {
	if discord.IsMissingPermissions(err) {
		d.reply(msg, "Oops! It seems I'm missing some permissions to perform this action. Please make sure I am allowed to do this.")
	} else {
		d.reply(msg, "Hmm... something went wrong... Please try again or make sure I have been properly configured.")
	}
	log.Error(err)
}

func (d *Dispatcher) beginPrompt(userID string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, pending := d.pendingPrompts[userID]; pending {
		return false
	}
	d.pendingPrompts[userID] = struct{}{}
	return true
}

func (d *Dispatcher) endPrompt(userID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.pendingPrompts, userID)
}

// memberName prefers the guild nickname over the account name.
func memberName(msg *discordgo.MessageCreate) string {
	if msg.Member != nil && msg.Member.Nick != "" {
		return msg.Member.Nick
	}
	return msg.Author.Username
}

package stores

import "github.com/Halocrea/voice-chat-bot/models"

// The stores are the only durable state the bot keeps. They are injected
// into the lifecycle controller and the command dispatcher so both can be
// exercised without a real database. Every write is last-write-wins; a
// missing row is a normal condition, never an error.

// OwnershipStore maps a transient channel to its current owner.
type OwnershipStore interface {
	// Owner returns the owning user id, or "" when the channel has no
	// ownership record.
	Owner(channelID string) (string, error)
	Create(channelID, userID, guildID string) error
	// SetOwner rewrites the owner of an existing record (claim).
	SetOwner(channelID, userID string) error
	Delete(channelID string) error
}

// PreferenceStore remembers per-user channel name and user limit.
type PreferenceStore interface {
	// Get returns nil when the user never customised a channel.
	Get(userID string) (*models.Preference, error)
	SetName(userID, name string) error
	SetLimit(userID string, limit int) error
}

// PermitHistoryStore is the append-only set of principals a user has
// permitted, offered for reapplication on the next lock.
type PermitHistoryStore interface {
	All(userID string) ([]models.PermitGrant, error)
	Add(userID, principalID, principalKind string) error
	Clear(userID string) error
}

// GuildSetupStore holds the per-guild configuration.
type GuildSetupStore interface {
	// Get returns nil when the guild has not been set up.
	Get(guildID string) (*models.GuildSetup, error)
	Save(setup *models.GuildSetup) error
	SetPrefix(guildID, prefix string) error
	SetCategory(guildID, categoryID string) error
	SetLobbyChannel(guildID, channelID string) error
	SetCommandsChannel(guildID, channelID string) error
	Delete(guildID string) error
}

// ModerationStore lists the roles allowed to administrate the bot.
type ModerationStore interface {
	Roles(guildID string) ([]string, error)
	Add(guildID, roleID string) error
	Remove(guildID, roleID string) error
}

package models

import "gorm.io/gorm"

// Ownership ties a transient voice channel to the user currently owning
// it. One row per live channel; the row is removed when the channel is
// deleted and rewritten when the channel is claimed.
type Ownership struct {
	gorm.Model
	ChannelID string `gorm:"uniqueIndex" json:"channel_id"`
	UserID    string `json:"user_id"`
	GuildID   string `json:"guild_id"`
}

// Preference remembers the last channel name and user limit a user asked
// for, so their next transient channel starts out the same way.
type Preference struct {
	gorm.Model
	UserID      string `gorm:"uniqueIndex" json:"user_id"`
	ChannelName string `json:"channel_name"`
	UserLimit   int    `json:"user_limit"`
}

// PermitGrant is one remembered permit: the owner allowed this principal
// (a user or a role) into their locked channel at some point.
type PermitGrant struct {
	gorm.Model
	UserID        string `gorm:"index" json:"user_id"`
	PrincipalID   string `json:"principal_id"`
	PrincipalKind string `json:"principal_kind"`
}

// GuildSetup is the per-guild configuration filled in by the setup
// commands. Fields other than GuildID may be empty while setup is in
// progress.
type GuildSetup struct {
	gorm.Model
	GuildID           string `gorm:"uniqueIndex" json:"guild_id"`
	Prefix            string `json:"prefix"`
	CategoryID        string `json:"category_id"`
	LobbyChannelID    string `json:"lobby_channel_id"`
	CommandsChannelID string `json:"commands_channel_id"`
}

// ModerationRole marks a role as allowed to run setup and moderation
// commands on a guild.
type ModerationRole struct {
	gorm.Model
	GuildID string `gorm:"index" json:"guild_id"`
	RoleID  string `json:"role_id"`
}

package stores

import (
	"errors"

	"github.com/Halocrea/voice-chat-bot/models"
	"gorm.io/gorm"
)

type gormOwnershipStore struct {
	db *gorm.DB
}

func NewOwnershipStore(db *gorm.DB) OwnershipStore {
	return &gormOwnershipStore{db: db}
}

func (s *gormOwnershipStore) Owner(channelID string) (string, error) {
	var ownership models.Ownership
	query := s.db.Select("user_id").Where("channel_id = ?", channelID).First(&ownership)
	if query.Error != nil {
		if errors.Is(query.Error, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", query.Error
	}
	return ownership.UserID, nil
}

func (s *gormOwnershipStore) Create(channelID, userID, guildID string) error {
	return s.db.Create(&models.Ownership{ChannelID: channelID, UserID: userID, GuildID: guildID}).Error
}

func (s *gormOwnershipStore) SetOwner(channelID, userID string) error {
	return s.db.Model(&models.Ownership{}).Where("channel_id = ?", channelID).Update("user_id", userID).Error
}

func (s *gormOwnershipStore) Delete(channelID string) error {
	return s.db.Unscoped().Where("channel_id = ?", channelID).Delete(&models.Ownership{}).Error
}

type gormPreferenceStore struct {
	db *gorm.DB
}

func NewPreferenceStore(db *gorm.DB) PreferenceStore {
	return &gormPreferenceStore{db: db}
}

func (s *gormPreferenceStore) Get(userID string) (*models.Preference, error) {
	var preference models.Preference
	query := s.db.Where("user_id = ?", userID).First(&preference)
	if query.Error != nil {
		if errors.Is(query.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, query.Error
	}
	return &preference, nil
}

func (s *gormPreferenceStore) SetName(userID, name string) error {
	existing, err := s.Get(userID)
	if err != nil {
		return err
	}
	if existing == nil {
		return s.db.Create(&models.Preference{UserID: userID, ChannelName: name}).Error
	}
	return s.db.Model(&models.Preference{}).Where("user_id = ?", userID).Update("channel_name", name).Error
}

func (s *gormPreferenceStore) SetLimit(userID string, limit int) error {
	existing, err := s.Get(userID)
	if err != nil {
		return err
	}
	if existing == nil {
		return s.db.Create(&models.Preference{UserID: userID, UserLimit: limit}).Error
	}
	return s.db.Model(&models.Preference{}).Where("user_id = ?", userID).Update("user_limit", limit).Error
}

type gormPermitHistoryStore struct {
	db *gorm.DB
}

func NewPermitHistoryStore(db *gorm.DB) PermitHistoryStore {
	return &gormPermitHistoryStore{db: db}
}

func (s *gormPermitHistoryStore) All(userID string) ([]models.PermitGrant, error) {
	var grants []models.PermitGrant
	query := s.db.Where("user_id = ?", userID).Find(&grants)
	if query.Error != nil {
		return nil, query.Error
	}
	return grants, nil
}

func (s *gormPermitHistoryStore) Add(userID, principalID, principalKind string) error {
	return s.db.Create(&models.PermitGrant{UserID: userID, PrincipalID: principalID, PrincipalKind: principalKind}).Error
}

func (s *gormPermitHistoryStore) Clear(userID string) error {
	return s.db.Unscoped().Where("user_id = ?", userID).Delete(&models.PermitGrant{}).Error
}

type gormGuildSetupStore struct {
	db *gorm.DB
}

func NewGuildSetupStore(db *gorm.DB) GuildSetupStore {
	return &gormGuildSetupStore{db: db}
}

func (s *gormGuildSetupStore) Get(guildID string) (*models.GuildSetup, error) {
	var setup models.GuildSetup
	query := s.db.Where("guild_id = ?", guildID).First(&setup)
	if query.Error != nil {
		if errors.Is(query.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, query.Error
	}
	return &setup, nil
}

func (s *gormGuildSetupStore) Save(setup *models.GuildSetup) error {
	existing, err := s.Get(setup.GuildID)
	if err != nil {
		return err
	}
	if existing == nil {
		return s.db.Create(setup).Error
	}
	return s.db.Model(&models.GuildSetup{}).Where("guild_id = ?", setup.GuildID).Updates(map[string]interface{}{
		"prefix":              setup.Prefix,
		"category_id":         setup.CategoryID,
		"lobby_channel_id":    setup.LobbyChannelID,
		"commands_channel_id": setup.CommandsChannelID,
	}).Error
}

func (s *gormGuildSetupStore) SetPrefix(guildID, prefix string) error {
	return s.setField(guildID, "prefix", prefix)
}

func (s *gormGuildSetupStore) SetCategory(guildID, categoryID string) error {
	return s.setField(guildID, "category_id", categoryID)
}

func (s *gormGuildSetupStore) SetLobbyChannel(guildID, channelID string) error {
	return s.setField(guildID, "lobby_channel_id", channelID)
}

func (s *gormGuildSetupStore) SetCommandsChannel(guildID, channelID string) error {
	return s.setField(guildID, "commands_channel_id", channelID)
}

func (s *gormGuildSetupStore) setField(guildID, column, value string) error {
	existing, err := s.Get(guildID)
	if err != nil {
		return err
	}
	if existing == nil {
		if err := s.db.Create(&models.GuildSetup{GuildID: guildID}).Error; err != nil {
			return err
		}
	}
	return s.db.Model(&models.GuildSetup{}).Where("guild_id = ?", guildID).Update(column, value).Error
}

func (s *gormGuildSetupStore) Delete(guildID string) error {
	return s.db.Unscoped().Where("guild_id = ?", guildID).Delete(&models.GuildSetup{}).Error
}

type gormModerationStore struct {
	db *gorm.DB
}

func NewModerationStore(db *gorm.DB) ModerationStore {
	return &gormModerationStore{db: db}
}

func (s *gormModerationStore) Roles(guildID string) ([]string, error) {
	var roles []models.ModerationRole
	query := s.db.Select("role_id").Where("guild_id = ?", guildID).Find(&roles)
	if query.Error != nil {
		return nil, query.Error
	}
	ids := make([]string, 0, len(roles))
	for _, role := range roles {
		ids = append(ids, role.RoleID)
	}
	return ids, nil
}

func (s *gormModerationStore) Add(guildID, roleID string) error {
	return s.db.Create(&models.ModerationRole{GuildID: guildID, RoleID: roleID}).Error
}

func (s *gormModerationStore) Remove(guildID, roleID string) error {
	return s.db.Unscoped().Where("guild_id = ? AND role_id = ?", guildID, roleID).Delete(&models.ModerationRole{}).Error
}

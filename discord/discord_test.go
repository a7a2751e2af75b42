package discord

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func restError(code int) error {
	return &discordgo.RESTError{Message: &discordgo.APIErrorMessage{Code: code}}
}

func TestMissingPermissionsClassification(t *testing.T) {
	assert.True(t, IsMissingPermissions(restError(discordgo.ErrCodeMissingAccess)))
	assert.True(t, IsMissingPermissions(restError(discordgo.ErrCodeMissingPermissions)))
	assert.False(t, IsMissingPermissions(restError(discordgo.ErrCodeUnknownChannel)))
	assert.False(t, IsMissingPermissions(errors.New("plain error")))
	assert.False(t, IsMissingPermissions(nil))
}

func TestUnknownChannelClassification(t *testing.T) {
	assert.True(t, IsUnknownChannel(restError(discordgo.ErrCodeUnknownChannel)))
	assert.False(t, IsUnknownChannel(restError(discordgo.ErrCodeMissingAccess)))

	// Wrapped REST errors still classify.
	wrapped := fmt.Errorf("deleting channel: %w", restError(discordgo.ErrCodeUnknownChannel))
	assert.True(t, IsUnknownChannel(wrapped))
}

func TestPrincipalOverwriteType(t *testing.T) {
	assert.Equal(t, discordgo.PermissionOverwriteTypeMember, UserPrincipal("alice").OverwriteType())
	assert.Equal(t, discordgo.PermissionOverwriteTypeRole, RolePrincipal("friends").OverwriteType())
}

// The zero user limit means "unlimited" and has to survive serialization;
// discordgo.ChannelEdit would drop it through its omitempty tag.
func TestUserLimitPatchKeepsZero(t *testing.T) {
	body, err := json.Marshal(channelLimitPatch{UserLimit: 0})
	require.NoError(t, err)
	assert.JSONEq(t, `{"user_limit":0}`, string(body))
}

func TestOverwritesPatchKeepsEmptySet(t *testing.T) {
	body, err := json.Marshal(channelOverwritesPatch{PermissionOverwrites: []*discordgo.PermissionOverwrite{}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"permission_overwrites":[]}`, string(body))
}

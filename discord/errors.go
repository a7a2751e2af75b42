package discord

import (
	"errors"

	"github.com/bwmarrin/discordgo"
)

// IsMissingPermissions reports whether the API refused an operation
// because the bot lacks rights on the target (Missing Access / Missing
// Permissions).
func IsMissingPermissions(err error) bool {
	code, ok := apiErrorCode(err)
	return ok && (code == discordgo.ErrCodeMissingAccess || code == discordgo.ErrCodeMissingPermissions)
}

// IsUnknownChannel reports whether the target channel no longer exists.
// Deletion paths treat this as success.
func IsUnknownChannel(err error) bool {
	code, ok := apiErrorCode(err)
	return ok && code == discordgo.ErrCodeUnknownChannel
}

func apiErrorCode(err error) (int, bool) {
	var rest *discordgo.RESTError
	if errors.As(err, &rest) && rest.Message != nil {
		return rest.Message.Code, true
	}
	return 0, false
}

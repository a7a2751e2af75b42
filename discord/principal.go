package discord

import "github.com/bwmarrin/discordgo"

// PrincipalKind discriminates the two things a connect overwrite can
// target.
type PrincipalKind string

const (
	PrincipalUser PrincipalKind = "user"
	PrincipalRole PrincipalKind = "role"
)

// Principal is a user or a role a permission overwrite applies to. Permit
// and lock operate on either without caring which.
type Principal struct {
	ID   string
	Kind PrincipalKind
}

func UserPrincipal(id string) Principal {
	return Principal{ID: id, Kind: PrincipalUser}
}

func RolePrincipal(id string) Principal {
	return Principal{ID: id, Kind: PrincipalRole}
}

func (p Principal) OverwriteType() discordgo.PermissionOverwriteType {
	if p.Kind == PrincipalRole {
		return discordgo.PermissionOverwriteTypeRole
	}
	return discordgo.PermissionOverwriteTypeMember
}

package commands

import (
	"github.com/Halocrea/voice-chat-bot/discord"
	"github.com/bwmarrin/discordgo"
)

type target struct {
	principal discord.Principal
	name      string
}

// resolveTargets finds who a permit applies to: explicit user mentions
// first, then role mentions, then a plain name lookup (member before
// role) when nothing was mentioned.
func (d *Dispatcher) resolveTargets(msg *discordgo.MessageCreate, args string) []target {
	var targets []target
	for _, user := range msg.Mentions {
		targets = append(targets, target{principal: discord.UserPrincipal(user.ID), name: user.Username})
	}
	for _, roleID := range msg.MentionRoles {
		name := roleID
		if role, err := d.client.Role(msg.GuildID, roleID); err == nil {
			name = role.Name
		}
		targets = append(targets, target{principal: discord.RolePrincipal(roleID), name: name})
	}
	if len(targets) > 0 || args == "" {
		return targets
	}

	if member, err := d.client.MemberByName(msg.GuildID, args); err == nil {
		name := member.User.Username
		if member.Nick != "" {
			name = member.Nick
		}
		return []target{{principal: discord.UserPrincipal(member.User.ID), name: name}}
	}
	if role, err := d.client.RoleByName(msg.GuildID, args); err == nil {
		return []target{{principal: discord.RolePrincipal(role.ID), name: role.Name}}
	}
	return nil
}

// resolveMember finds a person (never a role): first mention, else a name
// lookup.
func (d *Dispatcher) resolveMember(msg *discordgo.MessageCreate, args string) *discordgo.Member {
	if len(msg.Mentions) > 0 {
		member, err := d.client.Member(msg.GuildID, msg.Mentions[0].ID)
		if err != nil {
			log.Errorf("Failed to fetch mentioned member %v: %v", msg.Mentions[0].ID, err)
			return nil
		}
		return member
	}
	if args == "" {
		return nil
	}
	member, err := d.client.MemberByName(msg.GuildID, args)
	if err != nil {
		log.Debugf("No member named %q on guild %v: %v", args, msg.GuildID, err)
		return nil
	}
	return member
}

package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"
)

// requireMod checks the caller against the configured moderator roles.
// The guild owner, members with the Administrator bit, and members with
// Manage Server always pass, so a fresh guild can bootstrap its config
// before any mod role exists.
func (r *Router) requireMod(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate) bool {
	if m.Member == nil {
		return false
	}

	if g, _ := s.State.Guild(m.GuildID); g != nil && g.OwnerID == m.Author.ID {
		return true
	}

	roles, _ := s.GuildRoles(m.GuildID)
	var perms int64
	for _, rid := range m.Member.Roles {
		for _, ro := range roles {
			if ro.ID == rid {
				perms |= ro.Permissions
			}
		}
	}
	if perms&(discordgo.PermissionAdministrator|discordgo.PermissionManageServer) != 0 {
		return true
	}

	set := r.settings.Get(ctx, m.GuildID)
	if len(set.ModRoleIDs) > 0 {
		has := make(map[string]struct{}, len(m.Member.Roles))
		for _, rid := range m.Member.Roles {
			has[rid] = struct{}{}
		}
		for _, want := range set.ModRoleIDs {
			if _, ok := has[want]; ok {
				return true
			}
		}
	}

	r.reply(m.ChannelID, "You don't have permission to do that.")
	return false
}

package discord

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/jose-valero/activity-lb-bot/internal/domain"
)

// dispatchCommand parses "+cmd args..." and routes it. Invalid usage
// gets a visible rejection; everything else stays quiet.
func (r *Router) dispatchCommand(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate) {
	fields := strings.Fields(strings.TrimPrefix(m.Content, r.prefix))
	if len(fields) == 0 {
		return
	}
	cmd := strings.ToLower(fields[0])
	args := fields[1:]

	if !r.limiter.Allow(m.Author.ID) {
		return
	}
	r.log.Info("command", "cmd", cmd, "guild", m.GuildID, "user", m.Author.ID)

	switch cmd {
	case "postlb", "update":
		r.publisher.RequestAll(m.GuildID)

	case "messages":
		r.publisher.Request(m.GuildID, domain.ReportMessages)

	case "voice":
		r.publisher.Request(m.GuildID, domain.ReportVoice)

	case "set":
		r.handleSetChannel(ctx, s, m, args)

	case "setmodrole":
		if !r.requireMod(ctx, s, m) {
			return
		}
		roleID := firstRoleMention(m)
		if roleID == "" {
			r.reply(m.ChannelID, "Usage: "+r.prefix+"setmodrole @role")
			return
		}
		if err := r.settings.AddModRole(ctx, m.GuildID, roleID); err != nil {
			r.log.Error("setmodrole", "guild", m.GuildID, "err", err)
			return
		}
		r.reply(m.ChannelID, "Moderator role added.")

	case "setjailrole":
		if !r.requireMod(ctx, s, m) {
			return
		}
		roleID := firstRoleMention(m)
		if roleID == "" {
			r.reply(m.ChannelID, "Usage: "+r.prefix+"setjailrole @role")
			return
		}
		if err := r.settings.SetJailRole(ctx, m.GuildID, roleID); err != nil {
			r.log.Error("setjailrole", "guild", m.GuildID, "err", err)
			return
		}
		r.reply(m.ChannelID, "Jail role set.")

	case "setjailchannel":
		if !r.requireMod(ctx, s, m) {
			return
		}
		chID := firstChannelMention(m)
		if chID == "" {
			r.reply(m.ChannelID, "Usage: "+r.prefix+"setjailchannel #channel")
			return
		}
		if err := r.settings.SetJailChannel(ctx, m.GuildID, chID); err != nil {
			r.log.Error("setjailchannel", "guild", m.GuildID, "err", err)
			return
		}
		r.reply(m.ChannelID, "Jail channel set.")

	case "resetlb":
		r.handleReset(ctx, s, m, args)

	case "snipe":
		r.handleSnipe(ctx, s, m)

	case "kick":
		r.handleKick(ctx, s, m, args)

	case "ban":
		r.handleBan(ctx, s, m, args)

	case "mute":
		r.handleMute(ctx, s, m, true)

	case "unmute":
		r.handleMute(ctx, s, m, false)

	case "role":
		r.handleRole(ctx, s, m)
	}
}

func (r *Router) handleSetChannel(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate, args []string) {
	if !r.requireMod(ctx, s, m) {
		return
	}
	if len(args) == 0 {
		r.reply(m.ChannelID, "Usage: "+r.prefix+"set <messages|voice> #channel")
		return
	}
	kind := domain.ReportKind(strings.ToLower(args[0]))
	chID := firstChannelMention(m)
	if !kind.Valid() || chID == "" {
		r.reply(m.ChannelID, "Usage: "+r.prefix+"set <messages|voice> #channel")
		return
	}
	if err := r.settings.SetChannel(ctx, m.GuildID, kind, chID); err != nil {
		r.log.Error("set channel", "guild", m.GuildID, "kind", kind, "err", err)
		return
	}
	if kind == domain.ReportVoice {
		r.reply(m.ChannelID, "Voice leaderboard channel set.")
	} else {
		r.reply(m.ChannelID, "Message leaderboard channel set.")
	}
	r.publisher.Request(m.GuildID, kind)
}

func (r *Router) handleReset(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate, args []string) {
	if !r.requireMod(ctx, s, m) {
		return
	}
	if len(args) == 0 || !domain.ReportKind(args[0]).Valid() {
		r.reply(m.ChannelID, "Usage: "+r.prefix+"resetlb <messages|voice>")
		return
	}
	kind := domain.ReportKind(args[0])
	if err := r.store.ResetGuild(ctx, m.GuildID, kind); err != nil {
		r.log.Error("resetlb", "guild", m.GuildID, "kind", kind, "err", err)
		r.reply(m.ChannelID, "Reset failed.")
		return
	}
	r.reply(m.ChannelID, fmt.Sprintf("The %s leaderboard was reset.", kind))
	r.publisher.Request(m.GuildID, kind)
}

func (r *Router) handleSnipe(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate) {
	dm, ok := r.snipes.Recall(ctx, m.GuildID)
	if !ok {
		r.reply(m.ChannelID, "Nothing to snipe.")
		return
	}
	embed := &discordgo.MessageEmbed{
		Author:      &discordgo.MessageEmbedAuthor{Name: dm.AuthorTag},
		Description: dm.Content,
		Timestamp:   dm.DeletedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	if _, err := s.ChannelMessageSendEmbed(m.ChannelID, embed); err != nil {
		r.log.Error("snipe reply", "guild", m.GuildID, "err", err)
	}
}

func (r *Router) handleKick(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate, args []string) {
	if !r.requireMod(ctx, s, m) {
		return
	}
	target := firstUserMention(m)
	if target == "" {
		r.reply(m.ChannelID, "Usage: "+r.prefix+"kick @user [reason]")
		return
	}
	reason := trailingText(args)
	if err := s.GuildMemberDeleteWithReason(m.GuildID, target, reason); err != nil {
		r.log.Error("kick", "guild", m.GuildID, "target", target, "err", err)
		r.reply(m.ChannelID, "Could not kick that member.")
		return
	}
	r.reply(m.ChannelID, "Member kicked.")
}

func (r *Router) handleBan(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate, args []string) {
	if !r.requireMod(ctx, s, m) {
		return
	}
	target := firstUserMention(m)
	if target == "" {
		r.reply(m.ChannelID, "Usage: "+r.prefix+"ban @user [reason]")
		return
	}
	reason := trailingText(args)
	if err := s.GuildBanCreateWithReason(m.GuildID, target, reason, 0); err != nil {
		r.log.Error("ban", "guild", m.GuildID, "target", target, "err", err)
		r.reply(m.ChannelID, "Could not ban that member.")
		return
	}
	r.reply(m.ChannelID, "Member banned.")
}

// handleMute assigns or removes the configured jail role.
func (r *Router) handleMute(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate, mute bool) {
	if !r.requireMod(ctx, s, m) {
		return
	}
	target := firstUserMention(m)
	if target == "" {
		verb := "unmute"
		if mute {
			verb = "mute"
		}
		r.reply(m.ChannelID, "Usage: "+r.prefix+verb+" @user")
		return
	}
	set := r.settings.Get(ctx, m.GuildID)
	if set.JailRoleID == "" {
		r.reply(m.ChannelID, "No jail role configured. Use "+r.prefix+"setjailrole first.")
		return
	}
	var err error
	if mute {
		err = s.GuildMemberRoleAdd(m.GuildID, target, set.JailRoleID)
	} else {
		err = s.GuildMemberRoleRemove(m.GuildID, target, set.JailRoleID)
	}
	if err != nil {
		r.log.Error("mute toggle", "guild", m.GuildID, "target", target, "err", err)
		r.reply(m.ChannelID, "Could not update that member's roles.")
		return
	}
	if mute {
		r.reply(m.ChannelID, "Member muted.")
	} else {
		r.reply(m.ChannelID, "Member unmuted.")
	}
}

// handleRole toggles an arbitrary mentioned role on a mentioned user.
func (r *Router) handleRole(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate) {
	if !r.requireMod(ctx, s, m) {
		return
	}
	target := firstUserMention(m)
	roleID := firstRoleMention(m)
	if target == "" || roleID == "" {
		r.reply(m.ChannelID, "Usage: "+r.prefix+"role @user @role")
		return
	}
	member, err := s.GuildMember(m.GuildID, target)
	if err != nil {
		r.reply(m.ChannelID, "Could not look up that member.")
		return
	}
	has := false
	for _, rid := range member.Roles {
		if rid == roleID {
			has = true
			break
		}
	}
	if has {
		err = s.GuildMemberRoleRemove(m.GuildID, target, roleID)
	} else {
		err = s.GuildMemberRoleAdd(m.GuildID, target, roleID)
	}
	if err != nil {
		r.log.Error("role toggle", "guild", m.GuildID, "target", target, "err", err)
		r.reply(m.ChannelID, "Could not update that member's roles.")
		return
	}
	if has {
		r.reply(m.ChannelID, "Role removed.")
	} else {
		r.reply(m.ChannelID, "Role added.")
	}
}

func trailingText(args []string) string {
	out := make([]string, 0, len(args))
	for _, a := range args {
		if strings.HasPrefix(a, "<@") || strings.HasPrefix(a, "<#") {
			continue
		}
		out = append(out, a)
	}
	return strings.Join(out, " ")
}

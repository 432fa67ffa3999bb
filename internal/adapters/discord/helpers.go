package discord

import (
	"regexp"

	"github.com/bwmarrin/discordgo"
)

var (
	reUserMention    = regexp.MustCompile(`<@!?(\d+)>`)
	reRoleMention    = regexp.MustCompile(`<@&(\d+)>`)
	reChannelMention = regexp.MustCompile(`<#(\d+)>`)
)

func firstUserMention(m *discordgo.MessageCreate) string {
	for _, u := range m.Mentions {
		if u != nil && !u.Bot {
			return u.ID
		}
	}
	if match := reUserMention.FindStringSubmatch(m.Content); len(match) == 2 {
		return match[1]
	}
	return ""
}

func firstRoleMention(m *discordgo.MessageCreate) string {
	if len(m.MentionRoles) > 0 {
		return m.MentionRoles[0]
	}
	if match := reRoleMention.FindStringSubmatch(m.Content); len(match) == 2 {
		return match[1]
	}
	return ""
}

func firstChannelMention(m *discordgo.MessageCreate) string {
	if match := reChannelMention.FindStringSubmatch(m.Content); len(match) == 2 {
		return match[1]
	}
	return ""
}

// reply posts a short visible response; failures are logged only.
func (r *Router) reply(channelID, content string) {
	if _, err := r.s.ChannelMessageSend(channelID, content); err != nil {
		r.log.Warn("reply", "channel", channelID, "err", err)
	}
}

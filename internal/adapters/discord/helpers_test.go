package discord

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	. "github.com/smartystreets/goconvey/convey"
)

func msgWith(content string) *discordgo.MessageCreate {
	return &discordgo.MessageCreate{Message: &discordgo.Message{Content: content}}
}

func TestMentionParsing(t *testing.T) {
	Convey("Channel mentions are extracted from content", t, func() {
		So(firstChannelMention(msgWith("+set messages <#123456>")), ShouldEqual, "123456")
		So(firstChannelMention(msgWith("+set messages general")), ShouldBeEmpty)
	})

	Convey("Role mentions fall back to content parsing", t, func() {
		So(firstRoleMention(msgWith("+setmodrole <@&42>")), ShouldEqual, "42")
		So(firstRoleMention(msgWith("+setmodrole mods")), ShouldBeEmpty)
	})

	Convey("Role mentions prefer the parsed mention list", t, func() {
		m := msgWith("+setmodrole <@&42>")
		m.MentionRoles = []string{"99"}
		So(firstRoleMention(m), ShouldEqual, "99")
	})

	Convey("User mentions handle the nickname form", t, func() {
		So(firstUserMention(msgWith("+kick <@!77> spam")), ShouldEqual, "77")
		So(firstUserMention(msgWith("+kick <@77>")), ShouldEqual, "77")
	})

	Convey("Mention-free reason text drops mention tokens", t, func() {
		So(trailingText([]string{"<@77>", "being", "rude"}), ShouldEqual, "being rude")
	})
}

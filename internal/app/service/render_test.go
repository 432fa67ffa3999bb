package service_test

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/jose-valero/activity-lb-bot/internal/app/service"
	"github.com/jose-valero/activity-lb-bot/internal/domain"
)

func TestRenderBoard(t *testing.T) {
	Convey("Given a sorted list of message entries", t, func() {
		entries := []domain.Entry{
			{GuildID: "g1", UserID: "u1", DisplayName: "alice", Value: 42},
			{GuildID: "g1", UserID: "u2", DisplayName: "bob", Value: 7},
		}

		Convey("When rendering the message board", func() {
			b := service.RenderBoard("g1", domain.ReportMessages, entries)

			Convey("Then rows keep order, carry 1-based ranks and metric strings", func() {
				So(b.Rows, ShouldHaveLength, 2)
				So(b.Rows[0].Rank, ShouldEqual, 1)
				So(b.Rows[0].DisplayName, ShouldEqual, "alice")
				So(b.Rows[0].Metric, ShouldEqual, "42 messages")
				So(b.Rows[1].Rank, ShouldEqual, 2)
				So(b.Rows[1].Metric, ShouldEqual, "7 messages")
			})

			Convey("And the footer is attached", func() {
				So(b.Footer, ShouldEqual, service.BoardFooter)
			})
		})

		Convey("When rendering the same entries as a voice board", func() {
			b := service.RenderBoard("g1", domain.ReportVoice, entries)

			Convey("Then the metric string switches to minutes", func() {
				So(b.Rows[0].Metric, ShouldEqual, "42 mins")
			})
		})
	})

	Convey("Given no entries", t, func() {
		b := service.RenderBoard("g1", domain.ReportMessages, nil)

		Convey("Then the board has no rows but still a footer", func() {
			So(b.Rows, ShouldBeEmpty)
			So(b.Footer, ShouldEqual, service.BoardFooter)
		})
	})

	Convey("Titles differ per report kind", t, func() {
		So(service.Title(domain.ReportMessages), ShouldEqual, "Message Leaderboard")
		So(service.Title(domain.ReportVoice), ShouldEqual, "Voice Leaderboard")
	})
}

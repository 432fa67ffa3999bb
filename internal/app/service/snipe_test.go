package service_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/jose-valero/activity-lb-bot/internal/app/service"
	"github.com/jose-valero/activity-lb-bot/internal/domain"
)

func TestSnipeService(t *testing.T) {
	ctx := context.Background()
	log := slog.New(slog.DiscardHandler)

	Convey("Given a snipe service with nothing remembered", t, func() {
		svc := service.NewSnipeService(newFakeSnipes(), log)

		Convey("When recalling for a guild", func() {
			_, ok := svc.Recall(ctx, "g1")

			Convey("Then there is nothing to recall", func() {
				So(ok, ShouldBeFalse)
			})
		})

		Convey("When two deletions happen in a row", func() {
			svc.Remember(ctx, domain.DeletedMessage{
				GuildID: "g1", Content: "first", AuthorTag: "alice#1",
				DeletedAt: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
			})
			svc.Remember(ctx, domain.DeletedMessage{
				GuildID: "g1", Content: "second", AuthorTag: "bob#2",
				DeletedAt: time.Date(2025, 6, 1, 10, 1, 0, 0, time.UTC),
			})

			Convey("Then only the most recent one is recalled", func() {
				dm, ok := svc.Recall(ctx, "g1")
				So(ok, ShouldBeTrue)
				So(dm.Content, ShouldEqual, "second")
				So(dm.AuthorTag, ShouldEqual, "bob#2")
			})

			Convey("And another guild remains empty", func() {
				_, ok := svc.Recall(ctx, "g2")
				So(ok, ShouldBeFalse)
			})
		})
	})
}

package service

import (
	"context"
	"log/slog"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/jose-valero/activity-lb-bot/internal/domain"
	"github.com/jose-valero/activity-lb-bot/internal/infra/storage"
)

type nopCounters struct{}

func (nopCounters) BumpMessage(context.Context, string, string, string) error { return nil }
func (nopCounters) AddVoiceMinutes(context.Context, string, string, string, int64) error {
	return nil
}
func (nopCounters) LoadMessages(context.Context) ([]storage.CounterRow, error) { return nil, nil }
func (nopCounters) LoadVoice(context.Context) ([]storage.CounterRow, error)    { return nil, nil }
func (nopCounters) ResetMessages(context.Context, string) error                { return nil }
func (nopCounters) ResetVoice(context.Context, string) error                   { return nil }

// fakeClock lets tests move session time deterministically.
type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestTracker() (*VoiceTracker, *CounterStore, *fakeClock) {
	log := slog.New(slog.DiscardHandler)
	store := NewCounterStore(nopCounters{}, log)
	tracker := NewVoiceTracker(store, log)
	clock := &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	tracker.now = clock.now
	return tracker, store, clock
}

func minutesFor(store *CounterStore, guildID, userID string) int64 {
	for _, e := range store.TopN(guildID, domain.ReportVoice, 100) {
		if e.UserID == userID {
			return e.Value
		}
	}
	return 0
}

func TestVoiceTracker_SessionLifecycle(t *testing.T) {
	ctx := context.Background()

	Convey("Given a user who joins voice", t, func() {
		tracker, store, clock := newTestTracker()
		tracker.HandleVoiceState(ctx, domain.VoiceEvent{
			GuildID: "g1", UserID: "u1", DisplayName: "alice", NewChannelID: "vc1",
		})
		So(tracker.Open(), ShouldEqual, 1)

		Convey("When they switch channels and disconnect 125s after joining", func() {
			clock.advance(40 * time.Second)
			tracker.HandleVoiceState(ctx, domain.VoiceEvent{
				GuildID: "g1", UserID: "u1", DisplayName: "alice",
				PrevChannelID: "vc1", NewChannelID: "vc2",
			})
			clock.advance(85 * time.Second)
			tracker.HandleVoiceState(ctx, domain.VoiceEvent{
				GuildID: "g1", UserID: "u1", DisplayName: "alice", PrevChannelID: "vc2",
			})

			Convey("Then two whole minutes are credited and the session is gone", func() {
				So(minutesFor(store, "g1", "u1"), ShouldEqual, 2)
				So(tracker.Open(), ShouldEqual, 0)
			})
		})

		Convey("When a periodic flush fires at 60s and they disconnect at 125s", func() {
			clock.advance(60 * time.Second)
			tracker.FlushOpen(ctx)
			So(minutesFor(store, "g1", "u1"), ShouldEqual, 1)

			clock.advance(65 * time.Second)
			tracker.HandleVoiceState(ctx, domain.VoiceEvent{
				GuildID: "g1", UserID: "u1", DisplayName: "alice", PrevChannelID: "vc1",
			})

			Convey("Then the final flush adds only the remaining minute", func() {
				So(minutesFor(store, "g1", "u1"), ShouldEqual, 2)
			})
		})

		Convey("When a flush fires with less than a minute elapsed", func() {
			clock.advance(30 * time.Second)
			tracker.FlushOpen(ctx)

			Convey("Then nothing is credited and the session stays open", func() {
				So(minutesFor(store, "g1", "u1"), ShouldEqual, 0)
				So(tracker.Open(), ShouldEqual, 1)
			})
		})
	})
}

func TestVoiceTracker_EdgeCases(t *testing.T) {
	ctx := context.Background()

	Convey("Given a tracker with no open sessions", t, func() {
		tracker, store, _ := newTestTracker()

		Convey("When a leave arrives for an untracked user", func() {
			tracker.HandleVoiceState(ctx, domain.VoiceEvent{
				GuildID: "g1", UserID: "ghost", PrevChannelID: "vc1",
			})

			Convey("Then it is silently ignored", func() {
				So(tracker.Open(), ShouldEqual, 0)
				So(store.TopN("g1", domain.ReportVoice, 10), ShouldBeEmpty)
			})
		})
	})

	Convey("Given a user connected in one guild", t, func() {
		tracker, store, clock := newTestTracker()
		tracker.HandleVoiceState(ctx, domain.VoiceEvent{
			GuildID: "g1", UserID: "u1", DisplayName: "alice", NewChannelID: "vc1",
		})

		Convey("When a join arrives from a different guild", func() {
			clock.advance(3 * time.Minute)
			tracker.HandleVoiceState(ctx, domain.VoiceEvent{
				GuildID: "g2", UserID: "u1", DisplayName: "alice", NewChannelID: "vc9",
			})

			Convey("Then the old guild gets its minutes and one session remains", func() {
				So(minutesFor(store, "g1", "u1"), ShouldEqual, 3)
				So(tracker.Open(), ShouldEqual, 1)

				clock.advance(time.Minute)
				tracker.HandleVoiceState(ctx, domain.VoiceEvent{
					GuildID: "g2", UserID: "u1", PrevChannelID: "vc9",
				})
				So(minutesFor(store, "g2", "u1"), ShouldEqual, 1)
			})
		})

		Convey("When a duplicate join arrives for the same channel", func() {
			clock.advance(90 * time.Second)
			tracker.HandleVoiceState(ctx, domain.VoiceEvent{
				GuildID: "g1", UserID: "u1", DisplayName: "alice", NewChannelID: "vc1",
			})
			clock.advance(30 * time.Second)
			tracker.HandleVoiceState(ctx, domain.VoiceEvent{
				GuildID: "g1", UserID: "u1", PrevChannelID: "vc1",
			})

			Convey("Then the clock was not reset by the duplicate", func() {
				So(minutesFor(store, "g1", "u1"), ShouldEqual, 2)
			})
		})
	})
}

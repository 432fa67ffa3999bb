package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jose-valero/activity-lb-bot/internal/domain"
	"github.com/jose-valero/activity-lb-bot/internal/infra/metrics"
)

// voiceSession is one user's open connected interval. A user holds at
// most one session globally; Discord only allows one voice connection.
type voiceSession struct {
	guildID     string
	channelID   string
	displayName string
	since       time.Time
}

// VoiceTracker converts voice-state transitions into accumulated
// minutes on the counter store. Switching channels continues the
// session uninterrupted; only leaving voice entirely (or the periodic
// partial flush) converts elapsed time into minutes.
type VoiceTracker struct {
	mu       sync.Mutex
	sessions map[string]*voiceSession // userID -> open session
	store    *CounterStore
	log      *slog.Logger
	now      func() time.Time
}

func NewVoiceTracker(store *CounterStore, log *slog.Logger) *VoiceTracker {
	return &VoiceTracker{
		sessions: make(map[string]*voiceSession),
		store:    store,
		log:      log,
		now:      time.Now,
	}
}

// HandleVoiceState applies one normalized voice-state event. The
// platform may drop or duplicate events; a leave with no open session
// is a silent no-op, and a join over an existing session in the same
// guild is treated as a channel switch.
func (t *VoiceTracker) HandleVoiceState(ctx context.Context, ev domain.VoiceEvent) {
	t.mu.Lock()
	now := t.now()
	sess, open := t.sessions[ev.UserID]

	switch {
	case ev.NewChannelID == "":
		if !open {
			t.mu.Unlock()
			return
		}
		delete(t.sessions, ev.UserID)
		t.mu.Unlock()
		t.flush(ctx, ev.UserID, sess, now)
		metrics.SetOpenVoiceSessions(t.Open())
		return

	case !open:
		t.sessions[ev.UserID] = &voiceSession{
			guildID:     ev.GuildID,
			channelID:   ev.NewChannelID,
			displayName: ev.DisplayName,
			since:       now,
		}
		t.mu.Unlock()
		metrics.SetOpenVoiceSessions(t.Open())
		return

	case sess.guildID != ev.GuildID:
		// Cross-guild move: close the old session into its guild,
		// then start fresh in the new one.
		t.sessions[ev.UserID] = &voiceSession{
			guildID:     ev.GuildID,
			channelID:   ev.NewChannelID,
			displayName: ev.DisplayName,
			since:       now,
		}
		t.mu.Unlock()
		t.flush(ctx, ev.UserID, sess, now)
		return

	default:
		// Channel switch: the clock keeps running.
		sess.channelID = ev.NewChannelID
		if ev.DisplayName != "" {
			sess.displayName = ev.DisplayName
		}
		t.mu.Unlock()
		return
	}
}

// FlushOpen credits whole elapsed minutes for every still-open session
// and advances each session's start so the final flush never double
// counts. Called on the periodic tick and before rendering the voice
// board, so a restart mid-session loses at most the tick interval.
func (t *VoiceTracker) FlushOpen(ctx context.Context) {
	type credit struct {
		userID string
		sess   voiceSession
		mins   int64
	}

	t.mu.Lock()
	now := t.now()
	var credits []credit
	for userID, sess := range t.sessions {
		mins := int64(now.Sub(sess.since) / time.Minute)
		if mins <= 0 {
			continue
		}
		sess.since = now
		credits = append(credits, credit{userID: userID, sess: *sess, mins: mins})
	}
	t.mu.Unlock()

	for _, c := range credits {
		t.store.AddVoiceMinutes(ctx, c.sess.guildID, c.userID, c.sess.displayName, c.mins)
	}
}

// RunFlusher drives the periodic partial flush until ctx is canceled.
func (t *VoiceTracker) RunFlusher(ctx context.Context, every time.Duration) {
	tick := time.NewTicker(every)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
			t.FlushOpen(ctx)
		}
	}
}

// Open returns the number of currently open sessions.
func (t *VoiceTracker) Open() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.sessions)
}

func (t *VoiceTracker) flush(ctx context.Context, userID string, sess *voiceSession, now time.Time) {
	mins := int64(now.Sub(sess.since) / time.Minute)
	t.log.Debug("voice session closed",
		"guild", sess.guildID, "user", userID, "minutes", mins)
	t.store.AddVoiceMinutes(ctx, sess.guildID, userID, sess.displayName, mins)
}

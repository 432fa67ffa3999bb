package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jose-valero/activity-lb-bot/internal/domain"
	"github.com/jose-valero/activity-lb-bot/internal/infra/metrics"
	"github.com/jose-valero/activity-lb-bot/internal/infra/storage"
)

const (
	topSize      = 10
	publishQueue = 64
	publishMax   = 15 * time.Second
)

type publishJob struct {
	id      uuid.UUID
	guildID string
	kind    domain.ReportKind
}

// Publisher owns the edit-in-place lifecycle of the leaderboard
// messages. Jobs go through a bounded queue with per-(guild,kind)
// in-flight dedupe, so a slow send for one guild never delays or
// corrupts another's, and the counter mutation path never waits on
// Discord.
type Publisher struct {
	gw       Gateway
	store    *CounterStore
	tracker  *VoiceTracker
	settings *SettingsService
	refs     PublishedRepo
	log      *slog.Logger

	guilds []string // whitelisted guilds swept by the scheduler

	jobs     chan publishJob
	mu       sync.Mutex
	inflight map[string]struct{} // "guild/kind"
}

func NewPublisher(
	gw Gateway,
	store *CounterStore,
	tracker *VoiceTracker,
	settings *SettingsService,
	refs PublishedRepo,
	guilds []string,
	log *slog.Logger,
) *Publisher {
	return &Publisher{
		gw:       gw,
		store:    store,
		tracker:  tracker,
		settings: settings,
		refs:     refs,
		log:      log,
		guilds:   guilds,
		jobs:     make(chan publishJob, publishQueue),
		inflight: make(map[string]struct{}),
	}
}

// Request queues a publish for one (guild, kind). Returns false when
// the same pair is already queued or the queue is full; either way the
// board will be swept again by the scheduler, so dropping is safe.
func (p *Publisher) Request(guildID string, kind domain.ReportKind) bool {
	key := guildID + "/" + string(kind)
	p.mu.Lock()
	if _, busy := p.inflight[key]; busy {
		p.mu.Unlock()
		return false
	}
	p.inflight[key] = struct{}{}
	p.mu.Unlock()

	job := publishJob{id: uuid.New(), guildID: guildID, kind: kind}
	select {
	case p.jobs <- job:
		metrics.SetPublishQueueDepth(len(p.jobs))
		return true
	default:
		p.release(key)
		p.log.Warn("publish queue full, dropping job", "guild", guildID, "kind", kind)
		return false
	}
}

// RequestAll queues both report kinds for a guild.
func (p *Publisher) RequestAll(guildID string) {
	for _, k := range domain.Kinds() {
		p.Request(guildID, k)
	}
}

// Run consumes publish jobs until ctx is canceled.
func (p *Publisher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case job := <-p.jobs:
			metrics.SetPublishQueueDepth(len(p.jobs))
			jctx, cancel := context.WithTimeout(ctx, publishMax)
			if err := p.Publish(jctx, job.guildID, job.kind); err != nil {
				metrics.IncPublishError()
				p.log.Error("publish failed",
					"job", job.id, "guild", job.guildID, "kind", job.kind, "err", err)
			}
			cancel()
			p.release(job.guildID + "/" + string(job.kind))
		}
	}
}

// RunScheduler republishes every whitelisted guild's boards on a fixed
// interval until ctx is canceled.
func (p *Publisher) RunScheduler(ctx context.Context, every time.Duration) {
	tick := time.NewTicker(every)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
			for _, g := range p.guilds {
				p.RequestAll(g)
			}
		}
	}
}

// Publish renders the board and edits the previously published message
// in place, falling back to sending a new one whenever the old message
// is gone, the channel changed, or the edit is rejected. Missing
// channel configuration skips silently.
func (p *Publisher) Publish(ctx context.Context, guildID string, kind domain.ReportKind) error {
	set := p.settings.Get(ctx, guildID)
	channelID := set.MessagesChannelID
	if kind == domain.ReportVoice {
		channelID = set.VoiceChannelID
	}
	if channelID == "" {
		return nil
	}

	// Credit partial minutes for users still connected, so the voice
	// board never lags a whole session behind.
	if kind == domain.ReportVoice {
		p.tracker.FlushOpen(ctx)
	}

	entries := p.store.TopN(guildID, kind, topSize)
	b := RenderBoard(guildID, kind, entries)

	ref, err := p.refs.Get(ctx, guildID, string(kind))
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		p.log.Warn("published ref lookup failed, sending fresh",
			"guild", guildID, "kind", kind, "err", err)
	}
	if ref.MessageID != "" && ref.ChannelID == channelID {
		if p.gw.Fetch(ctx, ref.ChannelID, ref.MessageID) == nil {
			if err := p.gw.Edit(ctx, ref.ChannelID, ref.MessageID, b); err == nil {
				metrics.IncPublish(string(kind), "edit")
				return nil
			}
		}
		// Deleted, inaccessible, or edit rejected: cache miss, send new.
	}

	msgID, err := p.gw.Send(ctx, channelID, b)
	if err != nil {
		return err
	}
	metrics.IncPublish(string(kind), "send")
	if err := p.refs.Upsert(ctx, guildID, string(kind), channelID, msgID); err != nil {
		p.log.Error("persist published ref",
			"guild", guildID, "kind", kind, "err", err)
	}
	return nil
}

func (p *Publisher) release(key string) {
	p.mu.Lock()
	delete(p.inflight, key)
	p.mu.Unlock()
}

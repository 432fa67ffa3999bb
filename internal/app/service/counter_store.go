package service

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/jose-valero/activity-lb-bot/internal/domain"
)

// counter is one user's live value on one board. Pointers stay stable
// in the board's insertion-order slice while values mutate.
type counter struct {
	userID      string
	displayName string
	value       int64
}

// board holds one guild's counters for one report kind.
type board struct {
	order  []*counter
	byUser map[string]*counter
}

func newBoard() *board {
	return &board{byUser: make(map[string]*counter)}
}

func (b *board) bump(userID, displayName string, delta int64) {
	c, ok := b.byUser[userID]
	if !ok {
		c = &counter{userID: userID}
		b.byUser[userID] = c
		b.order = append(b.order, c)
	}
	if displayName != "" {
		c.displayName = displayName
	}
	c.value += delta
}

// CounterStore keeps the live per-guild message counts and voice
// minutes, with write-through persistence to the counters repo. All
// access goes through its methods; gateway handlers and the publisher
// share it across goroutines.
type CounterStore struct {
	mu       sync.Mutex
	messages map[string]*board // guildID -> board
	voice    map[string]*board
	repo     CountersRepo
	log      *slog.Logger
}

func NewCounterStore(repo CountersRepo, log *slog.Logger) *CounterStore {
	return &CounterStore{
		messages: make(map[string]*board),
		voice:    make(map[string]*board),
		repo:     repo,
		log:      log,
	}
}

// Hydrate loads persisted counters at startup. Rows arrive oldest
// first, so insertion-order tie-breaks survive restarts. A missing or
// empty store is not an error.
func (s *CounterStore) Hydrate(ctx context.Context) error {
	msgs, err := s.repo.LoadMessages(ctx)
	if err != nil {
		return err
	}
	mins, err := s.repo.LoadVoice(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, row := range msgs {
		s.boardFor(s.messages, row.GuildID).bump(row.UserID, row.DisplayName, row.Value)
	}
	for _, row := range mins {
		s.boardFor(s.voice, row.GuildID).bump(row.UserID, row.DisplayName, row.Value)
	}
	return nil
}

// RecordMessage counts one tracked message. Guild whitelisting and
// bot-account filtering are the caller's job.
func (s *CounterStore) RecordMessage(ctx context.Context, guildID, userID, displayName string) {
	s.mu.Lock()
	s.boardFor(s.messages, guildID).bump(userID, displayName, 1)
	s.mu.Unlock()

	if err := s.repo.BumpMessage(ctx, guildID, userID, displayName); err != nil {
		s.log.Error("persist message count", "guild", guildID, "user", userID, "err", err)
	}
}

// AddVoiceMinutes credits flushed session minutes to the user's
// accumulator. Zero-minute flushes are skipped.
func (s *CounterStore) AddVoiceMinutes(ctx context.Context, guildID, userID, displayName string, minutes int64) {
	if minutes <= 0 {
		return
	}
	s.mu.Lock()
	s.boardFor(s.voice, guildID).bump(userID, displayName, minutes)
	s.mu.Unlock()

	if err := s.repo.AddVoiceMinutes(ctx, guildID, userID, displayName, minutes); err != nil {
		s.log.Error("persist voice minutes", "guild", guildID, "user", userID, "err", err)
	}
}

// TopN returns up to n entries for the guild, sorted descending by
// value. The sort is stable over insertion order, so repeated reads
// with equal values keep the same ordering. No data yields an empty
// slice, not an error.
func (s *CounterStore) TopN(guildID string, kind domain.ReportKind, n int) []domain.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	boards := s.messages
	if kind == domain.ReportVoice {
		boards = s.voice
	}
	b, ok := boards[guildID]
	if !ok {
		return nil
	}

	entries := make([]domain.Entry, 0, len(b.order))
	for _, c := range b.order {
		entries = append(entries, domain.Entry{
			GuildID:     guildID,
			UserID:      c.userID,
			DisplayName: c.displayName,
			Value:       c.value,
		})
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Value > entries[j].Value })
	if len(entries) > n {
		entries = entries[:n]
	}
	return entries
}

// ResetGuild clears one guild's board of the given kind, in memory and
// in the store. Meant for explicit administrative "season" resets only.
func (s *CounterStore) ResetGuild(ctx context.Context, guildID string, kind domain.ReportKind) error {
	s.mu.Lock()
	if kind == domain.ReportVoice {
		delete(s.voice, guildID)
	} else {
		delete(s.messages, guildID)
	}
	s.mu.Unlock()

	if kind == domain.ReportVoice {
		return s.repo.ResetVoice(ctx, guildID)
	}
	return s.repo.ResetMessages(ctx, guildID)
}

func (s *CounterStore) boardFor(m map[string]*board, guildID string) *board {
	b, ok := m[guildID]
	if !ok {
		b = newBoard()
		m[guildID] = b
	}
	return b
}

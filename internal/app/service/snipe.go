package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jose-valero/activity-lb-bot/internal/domain"
	"github.com/jose-valero/activity-lb-bot/internal/infra/storage"
)

// SnipeService remembers the most recently deleted message per guild
// so `+snipe` can recall it. Only one deletion is kept; each new one
// overwrites the last.
type SnipeService struct {
	repo SnipeRepo
	log  *slog.Logger
}

func NewSnipeService(repo SnipeRepo, log *slog.Logger) *SnipeService {
	return &SnipeService{repo: repo, log: log}
}

func (s *SnipeService) Remember(ctx context.Context, dm domain.DeletedMessage) {
	err := s.repo.Upsert(ctx, storage.Snipe{
		GuildID:   dm.GuildID,
		Content:   dm.Content,
		AuthorTag: dm.AuthorTag,
		DeletedAt: dm.DeletedAt,
	})
	if err != nil {
		s.log.Error("remember deleted message", "guild", dm.GuildID, "err", err)
	}
}

// Recall returns the last remembered deletion, or ok=false when the
// guild has none.
func (s *SnipeService) Recall(ctx context.Context, guildID string) (domain.DeletedMessage, bool) {
	sn, err := s.repo.Get(ctx, guildID)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.log.Error("recall deleted message", "guild", guildID, "err", err)
		}
		return domain.DeletedMessage{}, false
	}
	return domain.DeletedMessage{
		GuildID:   sn.GuildID,
		Content:   sn.Content,
		AuthorTag: sn.AuthorTag,
		DeletedAt: sn.DeletedAt,
	}, true
}

package service

import (
	"context"
	"errors"
	"log/slog"
	"slices"

	"github.com/jose-valero/activity-lb-bot/internal/domain"
	"github.com/jose-valero/activity-lb-bot/internal/infra/storage"
)

// SettingsService reads and mutates per-guild configuration. A guild
// with no stored row behaves as fully unconfigured rather than erroring.
type SettingsService struct {
	repo SettingsRepo
	log  *slog.Logger
}

func NewSettingsService(repo SettingsRepo, log *slog.Logger) *SettingsService {
	return &SettingsService{repo: repo, log: log}
}

// Get returns the guild's settings, substituting empty defaults when
// nothing is stored or the read fails.
func (s *SettingsService) Get(ctx context.Context, guildID string) storage.GuildSettings {
	set, err := s.repo.Get(ctx, guildID)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.log.Error("load guild settings", "guild", guildID, "err", err)
		}
		return storage.GuildSettings{GuildID: guildID}
	}
	return set
}

// SetChannel binds the leaderboard channel for one report kind.
func (s *SettingsService) SetChannel(ctx context.Context, guildID string, kind domain.ReportKind, channelID string) error {
	set := s.Get(ctx, guildID)
	if kind == domain.ReportVoice {
		set.VoiceChannelID = channelID
	} else {
		set.MessagesChannelID = channelID
	}
	return s.repo.Upsert(ctx, set)
}

// AddModRole adds a role to the moderator whitelist. Adding an already
// present role is a no-op.
func (s *SettingsService) AddModRole(ctx context.Context, guildID, roleID string) error {
	set := s.Get(ctx, guildID)
	if slices.Contains(set.ModRoleIDs, roleID) {
		return nil
	}
	set.ModRoleIDs = append(set.ModRoleIDs, roleID)
	return s.repo.Upsert(ctx, set)
}

func (s *SettingsService) SetJailRole(ctx context.Context, guildID, roleID string) error {
	set := s.Get(ctx, guildID)
	set.JailRoleID = roleID
	return s.repo.Upsert(ctx, set)
}

func (s *SettingsService) SetJailChannel(ctx context.Context, guildID, channelID string) error {
	set := s.Get(ctx, guildID)
	set.JailChannelID = channelID
	return s.repo.Upsert(ctx, set)
}

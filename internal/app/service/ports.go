package service

import (
	"context"

	"github.com/jose-valero/activity-lb-bot/internal/infra/storage"
)

// Implemented by internal/infra/storage.CountersRepo.
type CountersRepo interface {
	BumpMessage(ctx context.Context, guildID, userID, displayName string) error
	AddVoiceMinutes(ctx context.Context, guildID, userID, displayName string, minutes int64) error
	LoadMessages(ctx context.Context) ([]storage.CounterRow, error)
	LoadVoice(ctx context.Context) ([]storage.CounterRow, error)
	ResetMessages(ctx context.Context, guildID string) error
	ResetVoice(ctx context.Context, guildID string) error
}

// Implemented by internal/infra/storage.PublishedRepo.
type PublishedRepo interface {
	Get(ctx context.Context, guildID, kind string) (storage.PublishedMessage, error)
	Upsert(ctx context.Context, guildID, kind, channelID, messageID string) error
}

// Implemented by internal/infra/storage.SettingsRepo.
type SettingsRepo interface {
	Get(ctx context.Context, guildID string) (storage.GuildSettings, error)
	Upsert(ctx context.Context, s storage.GuildSettings) error
}

// Implemented by internal/infra/storage.SnipeRepo.
type SnipeRepo interface {
	Get(ctx context.Context, guildID string) (storage.Snipe, error)
	Upsert(ctx context.Context, s storage.Snipe) error
}

// Gateway is the outbound channel-send capability the publisher uses.
// Implemented by internal/adapters/discord.Sender.
type Gateway interface {
	// Send posts a rendered board as a new message and returns its id.
	Send(ctx context.Context, channelID string, b Board) (string, error)
	// Edit replaces the content of a previously sent message.
	Edit(ctx context.Context, channelID, messageID string, b Board) error
	// Fetch reports whether the message still exists.
	Fetch(ctx context.Context, channelID, messageID string) error
}

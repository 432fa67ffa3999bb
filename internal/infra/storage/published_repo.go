package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// PublishedMessage tracks which previously sent message currently
// displays a guild's leaderboard of a given kind, so republishes can
// edit in place instead of spam-posting.
type PublishedMessage struct {
	GuildID   string
	Kind      string
	ChannelID string
	MessageID string
	UpdatedAt time.Time
}

type PublishedRepo struct{ db *sql.DB }

func NewPublishedRepo(db *sql.DB) *PublishedRepo { return &PublishedRepo{db: db} }

func (r *PublishedRepo) Get(ctx context.Context, guildID, kind string) (PublishedMessage, error) {
	var p PublishedMessage
	err := r.db.QueryRowContext(ctx, `
SELECT guild_id, kind, channel_id, message_id, updated_at
  FROM published_messages
 WHERE guild_id = $1 AND kind = $2
`, guildID, kind).Scan(&p.GuildID, &p.Kind, &p.ChannelID, &p.MessageID, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return PublishedMessage{}, ErrNotFound
	}
	if err != nil {
		return PublishedMessage{}, fmt.Errorf("get published ref: %w", err)
	}
	return p, nil
}

func (r *PublishedRepo) Upsert(ctx context.Context, guildID, kind, channelID, messageID string) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO published_messages (guild_id, kind, channel_id, message_id)
VALUES ($1,$2,$3,$4)
ON CONFLICT (guild_id, kind) DO UPDATE SET
  channel_id = EXCLUDED.channel_id,
  message_id = EXCLUDED.message_id,
  updated_at = now()
`, guildID, kind, channelID, messageID)
	if err != nil {
		return fmt.Errorf("upsert published ref: %w", err)
	}
	return nil
}

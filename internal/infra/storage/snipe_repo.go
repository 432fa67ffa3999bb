package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Snipe is the last deleted message remembered for a guild.
type Snipe struct {
	GuildID   string
	Content   string
	AuthorTag string
	DeletedAt time.Time
}

type SnipeRepo struct{ db *sql.DB }

func NewSnipeRepo(db *sql.DB) *SnipeRepo { return &SnipeRepo{db: db} }

func (r *SnipeRepo) Get(ctx context.Context, guildID string) (Snipe, error) {
	var s Snipe
	err := r.db.QueryRowContext(ctx, `
SELECT guild_id, content, author_tag, deleted_at
  FROM snipes
 WHERE guild_id = $1
`, guildID).Scan(&s.GuildID, &s.Content, &s.AuthorTag, &s.DeletedAt)
	if err == sql.ErrNoRows {
		return Snipe{}, ErrNotFound
	}
	if err != nil {
		return Snipe{}, fmt.Errorf("get snipe: %w", err)
	}
	return s, nil
}

// Upsert overwrites the guild's remembered deletion; only the most
// recent one is kept.
func (r *SnipeRepo) Upsert(ctx context.Context, s Snipe) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO snipes (guild_id, content, author_tag, deleted_at)
VALUES ($1,$2,$3,$4)
ON CONFLICT (guild_id) DO UPDATE SET
  content    = EXCLUDED.content,
  author_tag = EXCLUDED.author_tag,
  deleted_at = EXCLUDED.deleted_at
`, s.GuildID, s.Content, s.AuthorTag, s.DeletedAt)
	if err != nil {
		return fmt.Errorf("upsert snipe: %w", err)
	}
	return nil
}

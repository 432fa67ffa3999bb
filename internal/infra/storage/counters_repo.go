package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// CounterRow mirrors one row of message_counts or voice_minutes.
type CounterRow struct {
	GuildID     string
	UserID      string
	DisplayName string
	Value       int64
}

type CountersRepo struct{ db *sql.DB }

func NewCountersRepo(db *sql.DB) *CountersRepo { return &CountersRepo{db: db} }

// BumpMessage adds one to the user's message count, creating the row
// on first sight and refreshing the last-seen display name.
func (r *CountersRepo) BumpMessage(ctx context.Context, guildID, userID, displayName string) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO message_counts (guild_id, user_id, display_name, count)
VALUES ($1,$2,$3,1)
ON CONFLICT (guild_id, user_id) DO UPDATE SET
  count        = message_counts.count + 1,
  display_name = EXCLUDED.display_name
`, guildID, userID, displayName)
	if err != nil {
		return fmt.Errorf("bump message count: %w", err)
	}
	return nil
}

// AddVoiceMinutes adds flushed session minutes to the user's accumulator.
func (r *CountersRepo) AddVoiceMinutes(ctx context.Context, guildID, userID, displayName string, minutes int64) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO voice_minutes (guild_id, user_id, display_name, minutes)
VALUES ($1,$2,$3,$4)
ON CONFLICT (guild_id, user_id) DO UPDATE SET
  minutes      = voice_minutes.minutes + EXCLUDED.minutes,
  display_name = EXCLUDED.display_name
`, guildID, userID, displayName, minutes)
	if err != nil {
		return fmt.Errorf("add voice minutes: %w", err)
	}
	return nil
}

// LoadMessages returns every message counter, oldest row first so the
// in-memory store rebuilds the same tie-break order after a restart.
func (r *CountersRepo) LoadMessages(ctx context.Context) ([]CounterRow, error) {
	return r.loadAll(ctx, `
SELECT guild_id, user_id, display_name, count
  FROM message_counts
 ORDER BY first_seen, user_id
`)
}

// LoadVoice returns every voice accumulator, oldest row first.
func (r *CountersRepo) LoadVoice(ctx context.Context) ([]CounterRow, error) {
	return r.loadAll(ctx, `
SELECT guild_id, user_id, display_name, minutes
  FROM voice_minutes
 ORDER BY first_seen, user_id
`)
}

func (r *CountersRepo) loadAll(ctx context.Context, query string) ([]CounterRow, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("load counters: %w", err)
	}
	defer rows.Close()

	var out []CounterRow
	for rows.Next() {
		var c CounterRow
		if err := rows.Scan(&c.GuildID, &c.UserID, &c.DisplayName, &c.Value); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// ResetMessages drops every message counter for a guild.
func (r *CountersRepo) ResetMessages(ctx context.Context, guildID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM message_counts WHERE guild_id = $1`, guildID)
	return err
}

// ResetVoice drops every voice accumulator for a guild.
func (r *CountersRepo) ResetVoice(ctx context.Context, guildID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM voice_minutes WHERE guild_id = $1`, guildID)
	return err
}

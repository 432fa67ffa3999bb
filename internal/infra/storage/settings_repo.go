package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// GuildSettings holds the per-guild channel bindings and role
// configuration the bot acts on. Empty ids mean "not configured".
type GuildSettings struct {
	GuildID           string
	MessagesChannelID string
	VoiceChannelID    string
	ModRoleIDs        []string
	JailRoleID        string
	JailChannelID     string
	UpdatedAt         time.Time
}

type SettingsRepo struct{ db *sql.DB }

func NewSettingsRepo(db *sql.DB) *SettingsRepo { return &SettingsRepo{db: db} }

func (r *SettingsRepo) Get(ctx context.Context, guildID string) (GuildSettings, error) {
	var (
		s     GuildSettings
		roles []byte
	)
	err := r.db.QueryRowContext(ctx, `
SELECT guild_id, messages_channel_id, voice_channel_id, mod_role_ids,
       jail_role_id, jail_channel_id, updated_at
  FROM guild_settings
 WHERE guild_id = $1
`, guildID).Scan(&s.GuildID, &s.MessagesChannelID, &s.VoiceChannelID, &roles,
		&s.JailRoleID, &s.JailChannelID, &s.UpdatedAt)
	if err == sql.ErrNoRows {
		return GuildSettings{}, ErrNotFound
	}
	if err != nil {
		return GuildSettings{}, fmt.Errorf("get guild settings: %w", err)
	}
	if err := json.Unmarshal(roles, &s.ModRoleIDs); err != nil {
		return GuildSettings{}, fmt.Errorf("decode mod roles: %w", err)
	}
	return s, nil
}

func (r *SettingsRepo) Upsert(ctx context.Context, s GuildSettings) error {
	roles := s.ModRoleIDs
	if roles == nil {
		roles = []string{}
	}
	enc, err := json.Marshal(roles)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
INSERT INTO guild_settings
  (guild_id, messages_channel_id, voice_channel_id, mod_role_ids, jail_role_id, jail_channel_id)
VALUES
  ($1,$2,$3,$4,$5,$6)
ON CONFLICT (guild_id) DO UPDATE SET
  messages_channel_id = EXCLUDED.messages_channel_id,
  voice_channel_id    = EXCLUDED.voice_channel_id,
  mod_role_ids        = EXCLUDED.mod_role_ids,
  jail_role_id        = EXCLUDED.jail_role_id,
  jail_channel_id     = EXCLUDED.jail_channel_id,
  updated_at          = now()
`, s.GuildID, s.MessagesChannelID, s.VoiceChannelID, enc, s.JailRoleID, s.JailChannelID)
	if err != nil {
		return fmt.Errorf("upsert guild settings: %w", err)
	}
	return nil
}

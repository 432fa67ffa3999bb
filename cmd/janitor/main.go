package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Scheduled cleanup: drops snipe records nobody can meaningfully
// recall anymore and stale published-message refs for channels that
// were unbound.
func handler(ctx context.Context) (string, error) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		return "no DATABASE_URL", nil
	}

	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return fmt.Sprintf("parse: %v", err), nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return fmt.Sprintf("pool: %v", err), nil
	}
	defer pool.Close()

	cctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, _ = pool.Exec(cctx, `DELETE FROM snipes WHERE deleted_at < now() - INTERVAL '7 days';`)
	_, _ = pool.Exec(cctx, `
DELETE FROM published_messages p
WHERE NOT EXISTS (
  SELECT 1 FROM guild_settings g
  WHERE g.guild_id = p.guild_id
    AND (   (p.kind = 'messages' AND g.messages_channel_id = p.channel_id)
         OR (p.kind = 'voice'    AND g.voice_channel_id    = p.channel_id))
);`)

	return "ok", nil
}

func main() { lambda.Start(handler) }

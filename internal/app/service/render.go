package service

import (
	"fmt"

	"github.com/jose-valero/activity-lb-bot/internal/domain"
)

// NoDataLine is rendered when a board has no entries yet.
const NoDataLine = "No data yet."

// BoardFooter is appended under every rendered board.
const BoardFooter = "Updates every 5 minutes"

// Row is one rendered leaderboard line: a fixed 1-based rank, the
// user's last-seen display name, and the formatted metric. How the
// rank and separator are drawn (emoji, arrows) is the presentation
// layer's business, not the renderer's.
type Row struct {
	Rank        int
	DisplayName string
	Metric      string
}

// Board is the rendered leaderboard payload handed to the gateway.
type Board struct {
	GuildID string
	Kind    domain.ReportKind
	Rows    []Row
	Footer  string
}

// Title returns the board heading for a report kind.
func Title(kind domain.ReportKind) string {
	if kind == domain.ReportVoice {
		return "Voice Leaderboard"
	}
	return "Message Leaderboard"
}

// RenderBoard turns a sorted top-N slice into display rows. An empty
// input produces a board with no rows; the presentation layer shows
// NoDataLine for it.
func RenderBoard(guildID string, kind domain.ReportKind, entries []domain.Entry) Board {
	b := Board{GuildID: guildID, Kind: kind, Footer: BoardFooter}
	for i, e := range entries {
		b.Rows = append(b.Rows, Row{
			Rank:        i + 1,
			DisplayName: e.DisplayName,
			Metric:      metricString(kind, e.Value),
		})
	}
	return b
}

func metricString(kind domain.ReportKind, v int64) string {
	if kind == domain.ReportVoice {
		return fmt.Sprintf("%d mins", v)
	}
	return fmt.Sprintf("%d messages", v)
}

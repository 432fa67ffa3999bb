package discord

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/jose-valero/activity-lb-bot/internal/app/service"
)

const embedColor = 0xFFB6C1

// ordinalGlyphs draws the fixed rank markers; the 10th place gets its
// own distinct glyph.
var ordinalGlyphs = [...]string{
	"1️⃣", "2️⃣", "3️⃣", "4️⃣", "5️⃣",
	"6️⃣", "7️⃣", "8️⃣", "9️⃣", "\U0001F51F",
}

const separatorGlyph = "➜"

// Sender adapts a discordgo session to the publisher's outbound
// capability.
type Sender struct {
	s *discordgo.Session
}

func NewSender(s *discordgo.Session) *Sender { return &Sender{s: s} }

func (x *Sender) Send(ctx context.Context, channelID string, b service.Board) (string, error) {
	msg, err := x.s.ChannelMessageSendEmbed(channelID, x.boardEmbed(b), discordgo.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("send leaderboard: %w", err)
	}
	return msg.ID, nil
}

func (x *Sender) Edit(ctx context.Context, channelID, messageID string, b service.Board) error {
	_, err := x.s.ChannelMessageEditEmbed(channelID, messageID, x.boardEmbed(b), discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("edit leaderboard: %w", err)
	}
	return nil
}

func (x *Sender) Fetch(ctx context.Context, channelID, messageID string) error {
	_, err := x.s.ChannelMessage(channelID, messageID, discordgo.WithContext(ctx))
	return err
}

func (x *Sender) boardEmbed(b service.Board) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       service.Title(b.Kind),
		Description: boardDescription(b),
		Color:       embedColor,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
	}
	if g, _ := x.s.State.Guild(b.GuildID); g != nil {
		icon := g.IconURL("128")
		embed.Author = &discordgo.MessageEmbedAuthor{Name: g.Name, IconURL: icon}
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: icon}
	}
	return embed
}

func boardDescription(b service.Board) string {
	var sb strings.Builder
	if len(b.Rows) == 0 {
		sb.WriteString(service.NoDataLine)
	} else {
		for i, row := range b.Rows {
			if i > 0 {
				sb.WriteByte('\n')
			}
			fmt.Fprintf(&sb, "%s `%s` %s %s",
				ordinalGlyphs[ordinalIndex(row.Rank)], row.DisplayName, separatorGlyph, row.Metric)
		}
	}
	fmt.Fprintf(&sb, "\n**%s**", b.Footer)
	return sb.String()
}

func ordinalIndex(rank int) int {
	if rank < 1 || rank > len(ordinalGlyphs) {
		return len(ordinalGlyphs) - 1
	}
	return rank - 1
}

var _ service.Gateway = (*Sender)(nil)

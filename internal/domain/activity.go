package domain

import "time"

// ReportKind selects which leaderboard is being computed.
type ReportKind string

const (
	ReportMessages ReportKind = "messages"
	ReportVoice    ReportKind = "voice"
)

func (k ReportKind) Valid() bool {
	return k == ReportMessages || k == ReportVoice
}

// Kinds lists every report kind, in publish order.
func Kinds() []ReportKind {
	return []ReportKind{ReportMessages, ReportVoice}
}

// Entry is one leaderboard row: a user and their metric value
// (message count or accumulated voice minutes, depending on kind).
type Entry struct {
	GuildID     string
	UserID      string
	DisplayName string
	Value       int64
}

// MessageEvent is a normalized message-sent event from the gateway.
type MessageEvent struct {
	GuildID     string
	UserID      string
	DisplayName string
	Automated   bool
}

// VoiceEvent is a normalized voice-state change. An empty NewChannelID
// means the user left voice entirely; an empty PrevChannelID means
// they just joined.
type VoiceEvent struct {
	GuildID       string
	UserID        string
	DisplayName   string
	PrevChannelID string
	NewChannelID  string
}

// DeletedMessage is what the snipe feature remembers about the most
// recently deleted message in a guild.
type DeletedMessage struct {
	GuildID   string
	Content   string
	AuthorTag string
	DeletedAt time.Time
}

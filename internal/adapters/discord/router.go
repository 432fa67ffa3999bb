package discord

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/jose-valero/activity-lb-bot/internal/app/service"
	"github.com/jose-valero/activity-lb-bot/internal/domain"
	"github.com/jose-valero/activity-lb-bot/internal/infra/metrics"
)

const handlerMax = 5 * time.Second

// Router fans gateway events into the activity services and dispatches
// prefix commands.
type Router struct {
	s      *discordgo.Session
	log    *slog.Logger
	prefix string

	allowed map[string]struct{}

	store     *service.CounterStore
	tracker   *service.VoiceTracker
	settings  *service.SettingsService
	snipes    *service.SnipeService
	publisher *service.Publisher

	limiter *userLimiter
}

func NewRouter(
	s *discordgo.Session,
	prefix string,
	allowedGuilds []string,
	store *service.CounterStore,
	tracker *service.VoiceTracker,
	settings *service.SettingsService,
	snipes *service.SnipeService,
	publisher *service.Publisher,
	log *slog.Logger,
) *Router {
	allowed := make(map[string]struct{}, len(allowedGuilds))
	for _, g := range allowedGuilds {
		allowed[g] = struct{}{}
	}
	return &Router{
		s:         s,
		log:       log,
		prefix:    prefix,
		allowed:   allowed,
		store:     store,
		tracker:   tracker,
		settings:  settings,
		snipes:    snipes,
		publisher: publisher,
		limiter:   newUserLimiter(2 * time.Second),
	}
}

// Handlers registers the gateway event handlers.
func (r *Router) Handlers() {
	r.s.AddHandler(r.messageCreate)
	r.s.AddHandler(r.messageDelete)
	r.s.AddHandler(r.voiceStateUpdate)
}

func (r *Router) tracked(guildID string) bool {
	_, ok := r.allowed[guildID]
	return ok
}

func (r *Router) messageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.GuildID == "" || m.Author == nil || m.Author.Bot {
		return
	}
	if !r.tracked(m.GuildID) {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), handlerMax)
	defer cancel()

	r.store.RecordMessage(ctx, m.GuildID, m.Author.ID, m.Author.String())
	metrics.IncEvent("message")

	if strings.HasPrefix(m.Content, r.prefix) {
		r.dispatchCommand(ctx, s, m)
	}
}

func (r *Router) messageDelete(s *discordgo.Session, m *discordgo.MessageDelete) {
	if m.GuildID == "" || !r.tracked(m.GuildID) {
		return
	}
	// BeforeDelete comes from the session state cache; deletions of
	// messages the bot never saw are invisible to snipe.
	before := m.BeforeDelete
	if before == nil || before.Author == nil || before.Author.Bot {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), handlerMax)
	defer cancel()

	r.snipes.Remember(ctx, domain.DeletedMessage{
		GuildID:   m.GuildID,
		Content:   before.Content,
		AuthorTag: before.Author.String(),
		DeletedAt: time.Now().UTC(),
	})
	metrics.IncEvent("message_delete")
}

func (r *Router) voiceStateUpdate(s *discordgo.Session, vs *discordgo.VoiceStateUpdate) {
	if vs.GuildID == "" || !r.tracked(vs.GuildID) {
		return
	}

	ev := domain.VoiceEvent{
		GuildID:      vs.GuildID,
		UserID:       vs.UserID,
		NewChannelID: vs.ChannelID,
	}
	if vs.BeforeUpdate != nil {
		ev.PrevChannelID = vs.BeforeUpdate.ChannelID
	}
	if vs.Member != nil && vs.Member.User != nil {
		ev.DisplayName = vs.Member.User.String()
	}

	ctx, cancel := context.WithTimeout(context.Background(), handlerMax)
	defer cancel()

	r.tracker.HandleVoiceState(ctx, ev)
	metrics.IncEvent("voice_state")
}

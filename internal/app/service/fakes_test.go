package service_test

import (
	"context"
	"errors"
	"strconv"
	"sync"

	"github.com/jose-valero/activity-lb-bot/internal/app/service"
	"github.com/jose-valero/activity-lb-bot/internal/infra/storage"
)

// fakeCounters records write-through calls and can seed hydration rows.
type fakeCounters struct {
	mu       sync.Mutex
	messages []storage.CounterRow
	voice    []storage.CounterRow
	bumps    int
	adds     int
}

func (f *fakeCounters) BumpMessage(_ context.Context, guildID, userID, displayName string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bumps++
	return nil
}

func (f *fakeCounters) AddVoiceMinutes(_ context.Context, guildID, userID, displayName string, minutes int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.adds++
	return nil
}

func (f *fakeCounters) LoadMessages(context.Context) ([]storage.CounterRow, error) {
	return f.messages, nil
}

func (f *fakeCounters) LoadVoice(context.Context) ([]storage.CounterRow, error) {
	return f.voice, nil
}

func (f *fakeCounters) ResetMessages(context.Context, string) error { return nil }
func (f *fakeCounters) ResetVoice(context.Context, string) error    { return nil }

// fakePublished is an in-memory PublishedRepo.
type fakePublished struct {
	mu   sync.Mutex
	refs map[string]storage.PublishedMessage
}

func newFakePublished() *fakePublished {
	return &fakePublished{refs: make(map[string]storage.PublishedMessage)}
}

func (f *fakePublished) Get(_ context.Context, guildID, kind string) (storage.PublishedMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.refs[guildID+"/"+kind]
	if !ok {
		return storage.PublishedMessage{}, storage.ErrNotFound
	}
	return p, nil
}

func (f *fakePublished) Upsert(_ context.Context, guildID, kind, channelID, messageID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refs[guildID+"/"+kind] = storage.PublishedMessage{
		GuildID: guildID, Kind: kind, ChannelID: channelID, MessageID: messageID,
	}
	return nil
}

// fakeSettings is an in-memory SettingsRepo.
type fakeSettings struct {
	mu   sync.Mutex
	rows map[string]storage.GuildSettings
}

func newFakeSettings() *fakeSettings {
	return &fakeSettings{rows: make(map[string]storage.GuildSettings)}
}

func (f *fakeSettings) Get(_ context.Context, guildID string) (storage.GuildSettings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.rows[guildID]
	if !ok {
		return storage.GuildSettings{}, storage.ErrNotFound
	}
	return s, nil
}

func (f *fakeSettings) Upsert(_ context.Context, s storage.GuildSettings) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[s.GuildID] = s
	return nil
}

// fakeSnipes is an in-memory SnipeRepo.
type fakeSnipes struct {
	mu   sync.Mutex
	rows map[string]storage.Snipe
}

func newFakeSnipes() *fakeSnipes { return &fakeSnipes{rows: make(map[string]storage.Snipe)} }

func (f *fakeSnipes) Get(_ context.Context, guildID string) (storage.Snipe, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.rows[guildID]
	if !ok {
		return storage.Snipe{}, storage.ErrNotFound
	}
	return s, nil
}

func (f *fakeSnipes) Upsert(_ context.Context, s storage.Snipe) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[s.GuildID] = s
	return nil
}

// fakeGateway counts Send/Edit/Fetch calls and can simulate deletion
// of the published message.
type fakeGateway struct {
	mu       sync.Mutex
	nextID   int
	messages map[string]service.Board // messageID -> last content
	sends    int
	edits    int
	fetches  int
	sendErr  error
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{messages: make(map[string]service.Board)}
}

func (f *fakeGateway) Send(_ context.Context, channelID string, b service.Board) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return "", f.sendErr
	}
	f.sends++
	f.nextID++
	id := "msg-" + strconv.Itoa(f.nextID)
	f.messages[id] = b
	return id, nil
}

func (f *fakeGateway) Edit(_ context.Context, channelID, messageID string, b service.Board) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.messages[messageID]; !ok {
		return errors.New("unknown message")
	}
	f.edits++
	f.messages[messageID] = b
	return nil
}

func (f *fakeGateway) Fetch(_ context.Context, channelID, messageID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches++
	if _, ok := f.messages[messageID]; !ok {
		return errors.New("not found")
	}
	return nil
}

func (f *fakeGateway) deleteMessage(messageID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.messages, messageID)
}

func (f *fakeGateway) counts() (sends, edits int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sends, f.edits
}

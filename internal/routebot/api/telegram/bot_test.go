package telegram

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	mu      sync.Mutex
	sent    []tgbotapi.MessageConfig
	sendErr error
	updates chan tgbotapi.Update
	stopped bool
	blocked map[int64]chan struct{} // Sends to these chats wait until the channel is closed
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	msg, ok := c.(tgbotapi.MessageConfig)
	if ok {
		if release, found := f.blocked[msg.ChatID]; found {
			<-release
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if ok {
		f.sent = append(f.sent, msg)
	}
	return tgbotapi.Message{}, f.sendErr
}

func (f *fakeAPI) sentTo(chatID int64) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var texts []string
	for _, msg := range f.sent {
		if msg.ChatID == chatID {
			texts = append(texts, msg.Text)
		}
	}
	return texts
}

func textUpdate(chatID int64, text string) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{Text: text, Chat: &tgbotapi.Chat{ID: chatID}}}
}

func (f *fakeAPI) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return f.updates
}

func (f *fakeAPI) StopReceivingUpdates() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped = true
}

func TestSendMessage(t *testing.T) {
	api := &fakeAPI{}
	bot := NewBot(api)

	require.NoError(t, bot.SendMessage(context.Background(), "42", "hola"))
	require.Len(t, api.sent, 1)
	assert.Equal(t, int64(42), api.sent[0].ChatID)
	assert.Equal(t, "hola", api.sent[0].Text)

	err := bot.SendMessage(context.Background(), "573001112233@c.us", "hola")
	assert.ErrorIs(t, err, ErrInvalidRecipient)

	api.sendErr = errors.New("bad gateway")
	assert.Error(t, bot.SendMessage(context.Background(), "42", "hola"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, bot.SendMessage(ctx, "42", "hola"), context.Canceled)
}

func TestRunDispatchesTextMessages(t *testing.T) {
	api := &fakeAPI{updates: make(chan tgbotapi.Update, 4)}
	bot := NewBot(api)

	api.updates <- textUpdate(7, "hola")
	api.updates <- tgbotapi.Update{Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: 7}}}
	api.updates <- tgbotapi.Update{}
	api.updates <- textUpdate(8, "soporte")

	ctx, cancel := context.WithCancel(context.Background())
	var (
		mu  sync.Mutex
		got []string
	)
	done := make(chan error)
	go func() {
		done <- bot.Run(ctx, func(_ context.Context, senderID, body string) error {
			mu.Lock()
			defer mu.Unlock()
			got = append(got, senderID+":"+body)
			if len(got) == 2 {
				cancel()
			}
			return errors.New("ignored")
		})
	}()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
	assert.ElementsMatch(t, []string{"7:hola", "8:soporte"}, got)
	assert.True(t, api.stopped)
}

func TestRunSlowChatDoesNotBlockOthers(t *testing.T) {
	release := make(chan struct{})
	api := &fakeAPI{
		updates: make(chan tgbotapi.Update, 2),
		blocked: map[int64]chan struct{}{1: release},
	}
	bot := NewBot(api)
	echo := func(ctx context.Context, senderID, body string) error {
		return bot.SendMessage(ctx, senderID, "eco "+body)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error)
	go func() { done <- bot.Run(ctx, echo) }()

	api.updates <- textUpdate(1, "hola")
	api.updates <- textUpdate(2, "hola")

	assert.Eventually(t, func() bool { return len(api.sentTo(2)) == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Empty(t, api.sentTo(1))

	close(release)
	assert.Eventually(t, func() bool { return len(api.sentTo(1)) == 1 }, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}

func TestRunKeepsOrderWithinChat(t *testing.T) {
	api := &fakeAPI{updates: make(chan tgbotapi.Update, 3)}
	bot := NewBot(api)
	echo := func(ctx context.Context, senderID, body string) error {
		return bot.SendMessage(ctx, senderID, body)
	}

	api.updates <- textUpdate(9, "hola")
	api.updates <- textUpdate(9, "soporte")
	api.updates <- textUpdate(9, "Laura")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() { done <- bot.Run(ctx, echo) }()

	assert.Eventually(t, func() bool { return len(api.sentTo(9)) == 3 }, 2*time.Second, 10*time.Millisecond)
	cancel()
	require.NoError(t, <-done)
	assert.Equal(t, []string{"hola", "soporte", "Laura"}, api.sentTo(9))
}

func TestNewHTTPClientOutlivesLongPoll(t *testing.T) {
	client := NewHTTPClient()
	assert.Greater(t, client.Timeout, updatesTimeout*time.Second)
}

func TestRunClosedChannel(t *testing.T) {
	api := &fakeAPI{updates: make(chan tgbotapi.Update)}
	close(api.updates)
	err := NewBot(api).Run(context.Background(), func(context.Context, string, string) error { return nil })
	assert.Error(t, err)
}

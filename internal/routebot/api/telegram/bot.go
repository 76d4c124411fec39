// Package telegram connects the dialogue engine to the Telegram Bot API.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

// ErrInvalidRecipient is returned when a recipient id is not a Telegram chat id.
var ErrInvalidRecipient = errors.New("invalid telegram recipient")

const (
	updatesTimeout = 60 // seconds
	clientTimeout  = 90 * time.Second
)

// BotAPI is the part of *tgbotapi.BotAPI used by Bot.
type BotAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Bot is the Telegram transport: it sends replies and feeds inbound text messages to a handler.
type Bot struct {
	api BotAPI
}

// NewBot wraps a Telegram Bot API client.
func NewBot(api BotAPI) *Bot {
	return &Bot{api: api}
}

// SendMessage sends text to the chat identified by recipientID.
func (b *Bot) SendMessage(ctx context.Context, recipientID, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	chatID, err := strconv.ParseInt(recipientID, 10, 64)
	if err != nil {
		return fmt.Errorf("%w %q: %v", ErrInvalidRecipient, recipientID, err)
	}
	if _, err = b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		return fmt.Errorf("send telegram message to chat %d: %w", chatID, err)
	}
	return nil
}

// Run receives updates until ctx is cancelled and hands every text message to handle.
// Messages of one chat are handled in arrival order by a dedicated worker, so a slow
// send only delays its own chat. Handler errors are already reported by the handler.
func (b *Bot) Run(ctx context.Context, handle func(ctx context.Context, senderID, body string) error) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = updatesTimeout
	updates := b.api.GetUpdatesChan(updateConfig)

	chats := newChatQueues(handle)
	defer chats.wait()

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			logrus.Info("Telegram updates loop stopped")
			return nil
		case update, ok := <-updates:
			if !ok {
				return errors.New("telegram update chan closed")
			}
			if update.Message == nil || update.Message.Text == "" || update.Message.Chat == nil {
				continue
			}
			senderID := strconv.FormatInt(update.Message.Chat.ID, 10)
			logrus.WithField("conversation", senderID).Debugf("Message [%s]", update.Message.Text)
			chats.push(ctx, senderID, update.Message.Text)
		}
	}
}

// chatQueues keeps one pending-message queue per chat, drained by a worker
// goroutine that exits once its queue is empty.
type chatQueues struct {
	handle func(ctx context.Context, senderID, body string) error
	mu     sync.Mutex
	queues map[string][]string
	wg     sync.WaitGroup
}

func newChatQueues(handle func(ctx context.Context, senderID, body string) error) *chatQueues {
	return &chatQueues{handle: handle, queues: make(map[string][]string)}
}

func (c *chatQueues) push(ctx context.Context, senderID, body string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	pending, running := c.queues[senderID]
	c.queues[senderID] = append(pending, body)
	if !running {
		c.wg.Add(1)
		go c.drain(ctx, senderID)
	}
}

func (c *chatQueues) drain(ctx context.Context, senderID string) {
	defer c.wg.Done()
	for {
		c.mu.Lock()
		pending := c.queues[senderID]
		if len(pending) == 0 {
			delete(c.queues, senderID)
			c.mu.Unlock()
			return
		}
		body := pending[0]
		c.queues[senderID] = pending[1:]
		c.mu.Unlock()

		if err := c.handle(ctx, senderID, body); err != nil {
			logrus.WithError(err).WithField("conversation", senderID).Debug("Message handling failed")
		}
	}
}

func (c *chatQueues) wait() {
	c.wg.Wait()
}

// NewHTTPClient returns the client for the Bot API. Its timeout outlives the
// long poll, and a hung send fails instead of blocking its chat forever.
func NewHTTPClient() *http.Client {
	return &http.Client{Timeout: clientTimeout}
}

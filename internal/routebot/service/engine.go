// Package service provides the dialogue engine of the routing bot.
// It walks every conversation through greeting, department selection and name
// collection, and answers with a deep link to the chosen department.
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/DenisKhanov/RouteBOT/internal/routebot/constant"
	"github.com/DenisKhanov/RouteBOT/internal/routebot/directory"
	"github.com/DenisKhanov/RouteBOT/internal/routebot/metrics"
	"github.com/DenisKhanov/RouteBOT/internal/routebot/models"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Sender delivers a text message to a remote party.
type Sender interface {
	SendMessage(ctx context.Context, recipientID, text string) error
}

// The ConversationRepository defines the interface for conversation state storage.
// GetOrCreate returns a copy; changes become visible only after Save.
type ConversationRepository interface {
	GetOrCreate(ctx context.Context, id string) (models.Conversation, error)
	Save(ctx context.Context, conv models.Conversation) error
}

// StatusNotifier receives live status events for the status page.
type StatusNotifier interface {
	Publish(event models.StatusEvent)
}

// Options tunes an Engine. Zero values fall back to defaults.
type Options struct {
	GreetingToken string                   // Word that starts a dialogue, "hola" by default
	DeepLinkBase  string                   // Base URL of generated deep links, "https://wa.me/" by default
	Metrics       *metrics.DialogueMetrics // Optional
	Notifier      StatusNotifier           // Optional
}

// Engine is the dialogue state machine. It is safe for concurrent use:
// turns of one conversation are serialized, different conversations run independently.
type Engine struct {
	directory    *directory.Directory
	repo         ConversationRepository
	sender       Sender
	greeting     string // Normalized greeting token
	greetingText string // Greeting token as shown to users
	deepLinkBase string
	menu         string
	locks        *keyedMutex
	metrics      *metrics.DialogueMetrics
	notifier     StatusNotifier
	now          func() time.Time
}

// NewEngine creates a new Engine with the specified dependencies.
// Arguments:
//   - dir: department directory used for the menu and for matching.
//   - repo: conversation state storage.
//   - sender: outbound transport.
//   - opts: optional settings.
//
// Returns a pointer to an Engine.
func NewEngine(dir *directory.Directory, repo ConversationRepository, sender Sender, opts Options) *Engine {
	greeting := strings.TrimSpace(opts.GreetingToken)
	if greeting == "" {
		greeting = constant.DEFAULT_GREETING_TOKEN
	}
	base := opts.DeepLinkBase
	if base == "" {
		base = constant.DEFAULT_DEEP_LINK_BASE
	}
	return &Engine{
		directory:    dir,
		repo:         repo,
		sender:       sender,
		greeting:     directory.Normalize(greeting),
		greetingText: directory.TitleFirst(greeting),
		deepLinkBase: base,
		menu:         buildMenu(dir),
		locks:        newKeyedMutex(),
		metrics:      opts.Metrics,
		notifier:     opts.Notifier,
		now:          time.Now,
	}
}

// buildMenu lists every directory label under the welcome header.
func buildMenu(dir *directory.Directory) string {
	var sb strings.Builder
	sb.WriteString(constant.MSG_MENU_HEADER)
	for _, label := range dir.Labels() {
		sb.WriteString("\n")
		sb.WriteString(constant.EMOJI_BULLET)
		sb.WriteString(" ")
		sb.WriteString(directory.TitleFirst(label))
	}
	return sb.String()
}

// Menu returns the department menu sent after a greeting.
func (e *Engine) Menu() string {
	return e.menu
}

// HandleMessage processes one inbound message from senderID.
// The conversation is saved only after the reply was sent. On any failure the
// engine logs it, sends one apology message and returns the error; it never panics.
func (e *Engine) HandleMessage(ctx context.Context, senderID, body string) (err error) {
	started := time.Now()
	log := logrus.WithFields(logrus.Fields{
		"conversation": senderID,
		"turn":         uuid.NewString(),
	})

	unlock := e.locks.Lock(senderID)
	defer unlock()

	from := models.StateStart
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("dialogue turn panicked: %v", r)
			e.fail(ctx, senderID, from, err, log)
		}
	}()

	conv, err := e.repo.GetOrCreate(ctx, senderID)
	if err != nil {
		return e.fail(ctx, senderID, from, fmt.Errorf("load conversation: %w", err), log)
	}
	from = conv.State
	log = log.WithField("state", from.String())

	turn, err := e.Decide(conv, body)
	if err != nil {
		return e.fail(ctx, senderID, from, fmt.Errorf("decide: %w", err), log)
	}

	if err = e.sender.SendMessage(ctx, senderID, turn.Reply); err != nil {
		e.metrics.ObserveOutbound("reply", false)
		return e.fail(ctx, senderID, from, fmt.Errorf("send reply: %w", err), log)
	}
	e.metrics.ObserveOutbound("reply", true)

	turn.Next.UpdatedAt = e.now()
	if err = e.repo.Save(ctx, turn.Next); err != nil {
		return e.fail(ctx, senderID, from, fmt.Errorf("save conversation: %w", err), log)
	}

	e.metrics.ObserveTurn(from.String(), turn.Next.State.String(), turn.Outcome)
	e.metrics.ObserveTurnLatency(turn.Outcome, time.Since(started).Seconds())
	e.publish(from, turn.Next.State, turn.Outcome)
	log.WithField("next", turn.Next.State.String()).Debugf("Turn completed: %s", turn.Outcome)
	return nil
}

// fail logs err and makes a single attempt to send the apology message.
func (e *Engine) fail(ctx context.Context, recipientID string, from models.State, err error, log *logrus.Entry) error {
	log.WithError(err).Error("Failed to handle message")
	e.metrics.ObserveTurn(from.String(), from.String(), OutcomeFailed)
	e.publish(from, from, OutcomeFailed)

	defer func() {
		if r := recover(); r != nil {
			log.Errorf("Apology send panicked: %v", r)
		}
	}()
	if sendErr := e.sender.SendMessage(ctx, recipientID, constant.MSG_TRY_AGAIN_LATER); sendErr != nil {
		e.metrics.ObserveOutbound("apology", false)
		log.WithError(sendErr).Error("Failed to send apology message")
	} else {
		e.metrics.ObserveOutbound("apology", true)
	}
	return err
}

func (e *Engine) publish(from, to models.State, outcome string) {
	if e.notifier == nil {
		return
	}
	e.notifier.Publish(models.StatusEvent{
		Type:      models.StatusEventTurn,
		From:      from.String(),
		To:        to.String(),
		Outcome:   outcome,
		Timestamp: e.now().UTC(),
	})
}

package service

import (
	"fmt"
	"strings"

	"github.com/DenisKhanov/RouteBOT/internal/routebot/constant"
	"github.com/DenisKhanov/RouteBOT/internal/routebot/directory"
	"github.com/DenisKhanov/RouteBOT/internal/routebot/models"
)

// Turn outcomes, used as log messages and metric labels.
const (
	OutcomeMenu          = "menu"
	OutcomeAskGreeting   = "ask_greeting"
	OutcomeHandledHere   = "handled_here"
	OutcomeAskName       = "ask_name"
	OutcomeNotUnderstood = "not_understood"
	OutcomeRedirect      = "redirect"
	OutcomeReset         = "reset"
	OutcomeFailed        = "failed"
)

// Turn is the result of one dialogue step: the conversation to commit and the reply to send.
type Turn struct {
	Next    models.Conversation
	Reply   string
	Outcome string
}

type transition func(e *Engine, conv models.Conversation, body string) (Turn, error)

var transitions = map[models.State]transition{
	models.StateStart:              (*Engine).onStart,
	models.StateAwaitingDepartment: (*Engine).onAwaitingDepartment,
	models.StateAwaitingName:       (*Engine).onAwaitingName,
}

// Decide computes the next conversation state and the reply for body.
// It has no side effects; conv is taken by value.
func (e *Engine) Decide(conv models.Conversation, body string) (Turn, error) {
	if !conv.State.Valid() {
		conv.Reset()
		return Turn{
			Next:    conv,
			Reply:   fmt.Sprintf(constant.MSG_GENERIC_ERROR, e.greetingText),
			Outcome: OutcomeReset,
		}, nil
	}
	return transitions[conv.State](e, conv, body)
}

func (e *Engine) onStart(conv models.Conversation, body string) (Turn, error) {
	conv.Reset()
	if !strings.Contains(directory.Normalize(body), e.greeting) {
		return Turn{
			Next:    conv,
			Reply:   fmt.Sprintf(constant.MSG_ASK_GREETING, e.greetingText),
			Outcome: OutcomeAskGreeting,
		}, nil
	}
	conv.State = models.StateAwaitingDepartment
	return Turn{Next: conv, Reply: e.menu, Outcome: OutcomeMenu}, nil
}

func (e *Engine) onAwaitingDepartment(conv models.Conversation, body string) (Turn, error) {
	dep, ok := e.directory.Match(body)
	switch {
	case !ok:
		return Turn{Next: conv, Reply: constant.MSG_NOT_UNDERSTOOD, Outcome: OutcomeNotUnderstood}, nil
	case dep.HandledHere:
		conv.Reset()
		return Turn{
			Next:    conv,
			Reply:   fmt.Sprintf(constant.MSG_AGENT_SHORTLY, dep.Label),
			Outcome: OutcomeHandledHere,
		}, nil
	default:
		conv.SelectedDepartment = dep.Label
		conv.State = models.StateAwaitingName
		return Turn{Next: conv, Reply: constant.MSG_ASK_NAME, Outcome: OutcomeAskName}, nil
	}
}

func (e *Engine) onAwaitingName(conv models.Conversation, body string) (Turn, error) {
	dep, ok := e.directory.Lookup(conv.SelectedDepartment)
	if !ok {
		return Turn{}, fmt.Errorf("department %q is not in the directory", conv.SelectedDepartment)
	}
	conv.ProvidedName = body

	link, err := BuildDeepLink(e.deepLinkBase, dep.Target, conv.ProvidedName, dep.Label)
	if err != nil {
		return Turn{}, fmt.Errorf("build deep link: %w", err)
	}
	reply := fmt.Sprintf(constant.MSG_REDIRECT, conv.ProvidedName, dep.Label, link)

	conv.Reset()
	return Turn{Next: conv, Reply: reply, Outcome: OutcomeRedirect}, nil
}

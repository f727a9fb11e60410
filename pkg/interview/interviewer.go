// Package interview drives a persona interview: question generation, relaying
// questions into a session, free chat and persona feedback.
package interview

import (
	"context"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-go-golems/interviewer/pkg/conversation"
	"github.com/go-go-golems/interviewer/pkg/events"
	"github.com/go-go-golems/interviewer/pkg/persona"
	"github.com/go-go-golems/interviewer/pkg/prompts"
	"github.com/go-go-golems/interviewer/pkg/sentiment"
	"github.com/go-go-golems/interviewer/pkg/steps/ai/chat"
	"github.com/go-go-golems/interviewer/pkg/steps/ai/settings"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Mode selects how a relayed question is answered.
type Mode string

const (
	// ModeConversation sends the whole session history.
	ModeConversation Mode = "conversation"
	// ModeCoaching sends a standalone coaching prompt grounded on the DX checklist.
	ModeCoaching Mode = "coaching"
)

func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case ModeConversation, ModeCoaching:
		return m, nil
	case "":
		return ModeConversation, nil
	}
	return "", errors.Errorf("unknown relay mode %q", s)
}

type familyDefaults struct {
	maxTokens   int
	temperature *float64
	topP        *float64
}

func float64Ptr(f float64) *float64 { return &f }

// defaults per prompt family, used when the settings leave a field unset
var defaults = map[prompts.Family]familyDefaults{
	prompts.FamilyQuestions: {maxTokens: 600},
	prompts.FamilyFeedback:  {maxTokens: 800, temperature: float64Ptr(0.7)},
	prompts.FamilyCoaching:  {maxTokens: 1000, temperature: float64Ptr(0.7), topP: float64Ptr(0.9)},
	prompts.FamilyFollowUp:  {maxTokens: 600},
}

type Interviewer struct {
	completer chat.Completer
	settings  *settings.StepSettings
	publisher message.Publisher
	topic     string
	dx        *persona.DXChecklist
	analyzer  *sentiment.Analyzer
	annotate  bool
	stages    bool
}

type Option func(*Interviewer)

func WithSettings(s *settings.StepSettings) Option {
	return func(i *Interviewer) {
		i.settings = s
	}
}

// WithPublisher publishes progress events on topic.
func WithPublisher(p message.Publisher, topic string) Option {
	return func(i *Interviewer) {
		i.publisher = p
		i.topic = topic
	}
}

// WithDXChecklist sets the checklist used to ground coaching answers.
func WithDXChecklist(c *persona.DXChecklist) Option {
	return func(i *Interviewer) {
		i.dx = c
	}
}

// WithAnnotate appends a sentiment label after every chat turn of the user.
func WithAnnotate(annotate bool) Option {
	return func(i *Interviewer) {
		i.annotate = annotate
	}
}

// WithLearningStages appends the learning-stage framing after every chat turn
// of the user.
func WithLearningStages(stages bool) Option {
	return func(i *Interviewer) {
		i.stages = stages
	}
}

func NewInterviewer(completer chat.Completer, options ...Option) *Interviewer {
	ret := &Interviewer{
		completer: completer,
		settings:  settings.NewStepSettings(),
		topic:     events.DefaultTopic,
		analyzer:  sentiment.NewAnalyzer(),
	}
	for _, o := range options {
		o(ret)
	}
	return ret
}

func (i *Interviewer) request(f prompts.Family, messages conversation.Conversation) *chat.Request {
	req := chat.NewRequest(i.settings.Chat, messages)
	d := defaults[f]
	if req.MaxTokens == 0 {
		req.MaxTokens = d.maxTokens
	}
	if req.Temperature == nil {
		req.Temperature = d.temperature
	}
	if req.TopP == nil {
		req.TopP = d.topP
	}
	return req
}

// complete renders family and sends it with the family's system prompt.
func (i *Interviewer) complete(ctx context.Context, f prompts.Family, in prompts.Input) (string, error) {
	prompt, err := prompts.Build(f, in)
	if err != nil {
		return "", err
	}
	messages := conversation.NewConversation(
		conversation.NewChatMessage(conversation.RoleSystem, prompts.SystemPrompt(f)),
		conversation.NewChatMessage(conversation.RoleUser, prompt),
	)
	reply, err := i.completer.Complete(ctx, i.request(f, messages))
	if err != nil {
		return "", err
	}
	return reply.Content, nil
}

func (i *Interviewer) publish(ctx context.Context, e *events.Event) {
	if err := events.Publish(ctx, i.publisher, i.topic, e); err != nil {
		log.Warn().Err(err).Str("type", string(e.Type)).Msg("could not publish event")
	}
}

func (i *Interviewer) publishError(ctx context.Context, sess *conversation.Session, p persona.Persona, err error) {
	e := &events.Event{
		Type:      events.EventTypeError,
		PersonaID: p.ID,
		Error:     chat.UserMessage(err),
	}
	if sess != nil {
		e.SessionID = sess.ID.String()
	}
	i.publish(ctx, e)
}

// appendTurn appends and publishes the outcome. With allowDuplicate the
// session's dedup policy is bypassed.
func (i *Interviewer) appendTurn(
	ctx context.Context,
	sess *conversation.Session,
	p persona.Persona,
	role conversation.Role,
	content string,
	allowDuplicate bool,
) (bool, error) {
	if allowDuplicate {
		if err := sess.AppendAllowingDuplicate(role, content); err != nil {
			return false, err
		}
	} else {
		ok, err := sess.Append(role, content)
		if err != nil {
			return false, err
		}
		if !ok {
			i.publishSkipped(ctx, sess, p, role, content)
			return false, nil
		}
	}
	i.publish(ctx, &events.Event{
		Type:      events.EventTypeMessageAppended,
		PersonaID: p.ID,
		SessionID: sess.ID.String(),
		Role:      string(role),
		Content:   content,
	})
	return true, nil
}

func (i *Interviewer) publishSkipped(ctx context.Context, sess *conversation.Session, p persona.Persona, role conversation.Role, content string) {
	i.publish(ctx, &events.Event{
		Type:      events.EventTypeMessageSkipped,
		PersonaID: p.ID,
		SessionID: sess.ID.String(),
		Role:      string(role),
		Content:   content,
	})
}

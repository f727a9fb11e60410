package interview

import (
	"context"

	"github.com/go-go-golems/interviewer/pkg/conversation"
	"github.com/go-go-golems/interviewer/pkg/events"
	"github.com/go-go-golems/interviewer/pkg/persona"
	"github.com/go-go-golems/interviewer/pkg/prompts"
)

// Feedback has the persona answer the interview questions based on the
// session so far and records the answer in the feedback log. The log is
// left untouched if the service fails.
func (i *Interviewer) Feedback(ctx context.Context, sess *conversation.Session, p persona.Persona, questions []string) (string, error) {
	transcript := sess.HistoryForModel().Contents(conversation.RoleUser, conversation.RoleAssistant)

	text, err := i.complete(ctx, prompts.FamilyFeedback, prompts.Input{
		Persona:    p,
		Questions:  questions,
		Transcript: transcript,
	})
	if err != nil {
		i.publishError(ctx, sess, p, err)
		return "", err
	}
	if err := sess.AddFeedback(text); err != nil {
		return "", err
	}

	i.publish(ctx, &events.Event{
		Type:      events.EventTypeFeedbackAdded,
		PersonaID: p.ID,
		SessionID: sess.ID.String(),
		Content:   text,
	})
	return text, nil
}

// FollowUp asks for count deeper questions about text.
func (i *Interviewer) FollowUp(ctx context.Context, text string, count int) ([]string, error) {
	reply, err := i.complete(ctx, prompts.FamilyFollowUp, prompts.Input{Text: text, Count: count})
	if err != nil {
		return nil, err
	}
	return prompts.SplitQuestions(reply), nil
}

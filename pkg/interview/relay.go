package interview

import (
	"context"
	"strings"

	"github.com/go-go-golems/interviewer/pkg/conversation"
	"github.com/go-go-golems/interviewer/pkg/persona"
	"github.com/go-go-golems/interviewer/pkg/prompts"
	"github.com/go-go-golems/interviewer/pkg/sentiment"
	"github.com/pkg/errors"
)

type RelayResult struct {
	// Asked counts questions that were answered.
	Asked int `json:"asked"`
	// Repeated counts answered questions that were already in the session and
	// so were not stored a second time.
	Repeated int `json:"repeated"`
	// Skipped counts blank questions.
	Skipped int `json:"skipped"`
}

// RelayQuestions appends each question as a user turn and its answer as an
// assistant turn. Every non-blank question is answered, dedup only applies to
// what is stored, so relaying again after a failure picks up the questions
// that never got an answer. The first service failure stops the relay; turns
// appended before it stay in the session.
func (i *Interviewer) RelayQuestions(
	ctx context.Context,
	sess *conversation.Session,
	p persona.Persona,
	questions []string,
	mode Mode,
) (RelayResult, error) {
	ret := RelayResult{}

	for _, q := range questions {
		if err := ctx.Err(); err != nil {
			return ret, err
		}

		q = strings.TrimSpace(q)
		if q == "" {
			ret.Skipped++
			continue
		}
		ok, err := i.appendTurn(ctx, sess, p, conversation.RoleUser, q, false)
		if err != nil {
			return ret, err
		}
		if !ok {
			ret.Repeated++
		}

		answer, err := i.answer(ctx, sess, p, q, mode)
		if err != nil {
			i.publishError(ctx, sess, p, err)
			return ret, err
		}
		if _, err := i.appendTurn(ctx, sess, p, conversation.RoleAssistant, answer, false); err != nil {
			return ret, err
		}
		ret.Asked++
	}
	return ret, nil
}

func (i *Interviewer) answer(ctx context.Context, sess *conversation.Session, p persona.Persona, q string, mode Mode) (string, error) {
	switch mode {
	case ModeCoaching:
		return i.complete(ctx, prompts.FamilyCoaching, prompts.Input{
			Persona:  p,
			Question: q,
			Relevant: i.dx.Relevant(q),
		})
	case ModeConversation, "":
		history := sess.HistoryForModel()
		// a repeated question was not stored again, ask it at the end anyway
		if !endsWithUserTurn(history, q) {
			history = append(history, conversation.NewChatMessage(conversation.RoleUser, q))
		}
		reply, err := i.completer.Complete(ctx, i.request("", history))
		if err != nil {
			return "", err
		}
		return reply.Content, nil
	default:
		return "", errors.Errorf("unknown relay mode %q", mode)
	}
}

func endsWithUserTurn(history conversation.Conversation, text string) bool {
	if len(history) == 0 {
		return false
	}
	last := history[len(history)-1]
	return last.Role == conversation.RoleUser && last.Content == text
}

type ChatResult struct {
	// Appended is false when text resends the user turn still waiting for a
	// reply; the turn is answered without being stored twice.
	Appended bool            `json:"appended"`
	Reply    string          `json:"reply,omitempty"`
	Label    sentiment.Label `json:"label,omitempty"`
}

// Chat appends a free-form user turn and the model's reply to it. Repeating
// an earlier turn is a new turn; only resending the last unanswered one is
// folded into it. With annotation enabled, the sentiment of the user turn is
// recorded between the two, and with learning stages the stage framing
// follows it. Neither annotation is sent to the model.
func (i *Interviewer) Chat(ctx context.Context, sess *conversation.Session, p persona.Persona, text string) (*ChatResult, error) {
	text = strings.TrimSpace(text)
	resend := text != "" && endsWithUserTurn(sess.HistoryForModel(), text)
	ret := &ChatResult{Appended: !resend}

	if resend {
		i.publishSkipped(ctx, sess, p, conversation.RoleUser, text)
	} else {
		if _, err := i.appendTurn(ctx, sess, p, conversation.RoleUser, text, true); err != nil {
			return nil, err
		}
	}

	if i.annotate {
		ret.Label = i.analyzer.Classify(text)
		if !resend {
			if err := sess.AppendAnnotation(conversation.RoleAssistant, "感情分析結果: "+ret.Label.Japanese()); err != nil {
				return nil, err
			}
		}
	}
	if i.stages && !resend {
		msg := sentiment.StageMessage(sentiment.ClassifyStage(text), text)
		if err := sess.AppendAnnotation(conversation.RoleAssistant, msg); err != nil {
			return nil, err
		}
	}

	reply, err := i.completer.Complete(ctx, i.request("", sess.HistoryForModel()))
	if err != nil {
		i.publishError(ctx, sess, p, err)
		return ret, err
	}
	if _, err := i.appendTurn(ctx, sess, p, conversation.RoleAssistant, reply.Content, true); err != nil {
		return ret, err
	}
	ret.Reply = reply.Content
	return ret, nil
}

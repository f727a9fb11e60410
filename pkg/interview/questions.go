package interview

import (
	"context"
	"fmt"

	"github.com/go-go-golems/interviewer/pkg/events"
	"github.com/go-go-golems/interviewer/pkg/persona"
	"github.com/go-go-golems/interviewer/pkg/prompts"
	"github.com/go-go-golems/interviewer/pkg/steps/ai/chat"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// CategoryQuestions are the questions generated for one category. A failed
// category has no questions and a Notice explaining why.
type CategoryQuestions struct {
	Category  prompts.Category `json:"category"`
	Questions []string         `json:"questions"`
	Notice    string           `json:"notice,omitempty"`
}

type GenerateOptions struct {
	// Count is the number of questions per category, 1 if unset.
	Count int
	// Categories default to prompts.DefaultCategories for the persona's stage.
	Categories []prompts.Category
	Checklist  *persona.Checklist
}

// GenerateQuestions asks for questions category by category, in order. A
// service failure for one category is recorded and the next one is tried.
func (i *Interviewer) GenerateQuestions(ctx context.Context, p persona.Persona, opts GenerateOptions) ([]CategoryQuestions, error) {
	count := opts.Count
	if count == 0 {
		count = 1
	}
	categories := opts.Categories
	if len(categories) == 0 {
		categories = prompts.DefaultCategories(p.Stage)
	}

	ret := make([]CategoryQuestions, 0, len(categories))
	for _, c := range categories {
		if err := ctx.Err(); err != nil {
			return ret, err
		}

		in := prompts.Input{
			Persona:   p,
			Category:  c,
			Count:     count,
			Checklist: opts.Checklist,
		}
		cq := CategoryQuestions{Category: c, Questions: []string{}}
		text, err := i.complete(ctx, prompts.FamilyQuestions, in)
		if err != nil && !errors.Is(err, chat.ErrService) {
			return ret, err
		}
		if err != nil {
			log.Debug().Err(err).Str("category", c.Name).Msg("question generation failed")
			cq.Notice = fmt.Sprintf("質問の生成中にエラーが発生しました: %s", chat.UserMessage(err))
			i.publish(ctx, &events.Event{
				Type:      events.EventTypeNotice,
				PersonaID: p.ID,
				Category:  c.Name,
				Content:   cq.Notice,
			})
		} else {
			cq.Questions = prompts.SplitQuestions(text)
			i.publish(ctx, &events.Event{
				Type:      events.EventTypeQuestionsGenerated,
				PersonaID: p.ID,
				Category:  c.Name,
				Items:     cq.Questions,
			})
		}
		ret = append(ret, cq)
	}
	return ret, nil
}

// AllQuestions flattens generated questions in category order.
func AllQuestions(cqs []CategoryQuestions) []string {
	ret := []string{}
	for _, cq := range cqs {
		ret = append(ret, cq.Questions...)
	}
	return ret
}

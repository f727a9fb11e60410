package sentiment

import (
	"fmt"
	"strings"

	"github.com/go-go-golems/interviewer/pkg/conversation"
)

// LearningStage follows Bateson's levels of learning.
type LearningStage string

const (
	ZeroLearning   LearningStage = "zero_learning"
	FirstLearning  LearningStage = "first_learning"
	SecondLearning LearningStage = "second_learning"
	ThirdLearning  LearningStage = "third_learning"
)

// ClassifyStage picks a stage from keywords in the user's text. The first
// matching keyword wins; text without any falls through to ThirdLearning.
func ClassifyStage(text string) LearningStage {
	switch {
	case strings.Contains(text, "基礎"):
		return ZeroLearning
	case strings.Contains(text, "方法"):
		return FirstLearning
	case strings.Contains(text, "パターン"):
		return SecondLearning
	default:
		return ThirdLearning
	}
}

// StageMessage is the coach reply framing input for the given stage.
func StageMessage(stage LearningStage, input string) string {
	switch stage {
	case ZeroLearning:
		return fmt.Sprintf("あなたの基本知識を確認します: %s", input)
	case FirstLearning:
		return fmt.Sprintf("新しい方法について考えてみましょう: %s", input)
	case SecondLearning:
		return fmt.Sprintf("あなたの考え方やパターンに焦点を当てます: %s", input)
	default:
		return fmt.Sprintf("より大きな視点であなたの世界観を再構築してみましょう: %s", input)
	}
}

// NextQuestions are the fixed reflection prompts offered after a stage reply.
func NextQuestions() []string {
	return []string{
		"この視点をさらに広げるにはどんな質問が有効ですか？",
		"次にどのような行動を取るべきですか？",
		"他者の意見を取り入れるならどうしますか？",
	}
}

type Levels struct {
	Zero   int `json:"zero_learning"`
	First  int `json:"first_learning"`
	Second int `json:"second_learning"`
	Third  int `json:"third_learning"`
}

func (l Levels) Total() int {
	return l.Zero + l.First + l.Second + l.Third
}

// CountLevels counts assistant messages per learning level, using the marker
// phrases StageMessage writes. A message counts toward its first marker only.
func CountLevels(messages conversation.Conversation) Levels {
	ret := Levels{}
	for _, m := range messages {
		if m.Role != conversation.RoleAssistant {
			continue
		}
		switch {
		case strings.Contains(m.Content, "基本知識"):
			ret.Zero++
		case strings.Contains(m.Content, "新しい方法"):
			ret.First++
		case strings.Contains(m.Content, "考え方やパターン"):
			ret.Second++
		case strings.Contains(m.Content, "世界観"):
			ret.Third++
		}
	}
	return ret
}

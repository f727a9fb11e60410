package prompts

import (
	"fmt"

	"github.com/go-go-golems/interviewer/pkg/persona"
)

// Category is one question-generation topic with its stage-specific instruction.
type Category struct {
	Name        string `json:"name"`
	Instruction string `json:"instruction"`
}

var categoryInstructions = []struct {
	name   string
	format string
}{
	{"組織課題", "%sにおける組織の壁やマネジメントの課題について質問を考えてください。"},
	{"技術課題", "%sにおけるデジタル技術導入に関する質問を考えてください。"},
	{"導入後の評価", "%sにおけるDX導入後の成果測定、PDCAの最適化に関する質問を考えてください。"},
	{"KPI設定", "%sにおけるDXプロジェクトのKPI設定、データ分析の活用に関する質問を考えてください。"},
	{"現場対応", "%sにおける現場従業員の教育、業務変革に関する質問を考えてください。"},
}

// DefaultCategories returns the five interview categories in their fixed order.
func DefaultCategories(stage persona.Stage) []Category {
	ret := make([]Category, 0, len(categoryInstructions))
	for _, c := range categoryInstructions {
		ret = append(ret, Category{
			Name:        c.name,
			Instruction: fmt.Sprintf(c.format, stage),
		})
	}
	return ret
}

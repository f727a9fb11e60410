// Package prompts renders the prompt text sent to the chat completion
// service. Rendering is pure: the same input always yields the same text.
package prompts

import (
	"bytes"
	"embed"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig"
	"github.com/go-go-golems/interviewer/pkg/persona"
	"github.com/pkg/errors"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(
	template.New("prompts").
		Funcs(sprig.TxtFuncMap()).
		ParseFS(templateFS, "templates/*.tmpl"),
)

// Family selects a prompt template.
type Family string

const (
	FamilyQuestions Family = "questions"
	FamilyFeedback  Family = "feedback"
	FamilyCoaching  Family = "coaching"
	FamilyFollowUp  Family = "follow-up"
)

var Families = []Family{FamilyQuestions, FamilyFeedback, FamilyCoaching, FamilyFollowUp}

func (f Family) String() string {
	return string(f)
}

// ParseFamily accepts the names used on the command line and in the HTTP API.
func ParseFamily(s string) (Family, error) {
	for _, f := range Families {
		if string(f) == s {
			return f, nil
		}
	}
	return "", errors.Errorf("unknown prompt family %q", s)
}

var systemPrompts = map[Family]string{
	FamilyQuestions: "あなたはDX推進のリーダーです。",
	FamilyFeedback:  "あなたはDX推進リーダーとしてチャットボットを利用し評価する立場の人です。",
	FamilyCoaching:  "あなたはDX推進のプロフェッショナルコーチです。",
	FamilyFollowUp:  "あなたは優秀なAIコーチです。",
}

// SystemPrompt is the system message sent alongside a rendered prompt.
func SystemPrompt(f Family) string {
	return systemPrompts[f]
}

// Input carries every field any family may need. Build checks the ones the
// chosen family requires.
type Input struct {
	Persona persona.Persona
	// Category and Count drive question generation.
	Category Category
	Count    int
	// Checklist is dumped verbatim into question prompts when set.
	Checklist *persona.Checklist
	// Questions are the interview questions answered in feedback.
	Questions []string
	// Transcript is the conversation content, one entry per turn.
	Transcript []string
	Question   string
	Relevant   []string
	Text       string
}

type templateData struct {
	Persona    persona.Persona
	Category   Category
	Count      int
	Checklist  string
	Questions  []string
	Transcript []string
	Question   string
	Relevant   []string
	Text       string
}

// Build renders the user prompt for family.
func Build(f Family, in Input) (string, error) {
	data := templateData{
		Persona:    in.Persona,
		Category:   in.Category,
		Count:      in.Count,
		Questions:  in.Questions,
		Transcript: in.Transcript,
		Question:   strings.TrimSpace(in.Question),
		Relevant:   in.Relevant,
		Text:       in.Text,
	}

	switch f {
	case FamilyQuestions:
		if err := requirePersona(in.Persona); err != nil {
			return "", err
		}
		if in.Category.Name == "" {
			return "", missing(f, "category")
		}
		if in.Count < 1 {
			return "", errors.Errorf("%s prompt: count must be >= 1, got %d", f, in.Count)
		}
		checklist, err := in.Checklist.Render()
		if err != nil {
			return "", err
		}
		data.Checklist = checklist

	case FamilyFeedback:
		if err := requirePersona(in.Persona); err != nil {
			return "", err
		}
		if len(in.Questions) == 0 {
			return "", missing(f, "questions")
		}

	case FamilyCoaching:
		if err := requirePersona(in.Persona); err != nil {
			return "", err
		}
		if data.Question == "" {
			return "", missing(f, "question")
		}
		if len(data.Relevant) == 0 {
			data.Relevant = []string{persona.NoRelevantItem}
		}

	case FamilyFollowUp:
		if strings.TrimSpace(in.Text) == "" {
			return "", missing(f, "text")
		}
		if data.Count < 1 {
			data.Count = 3
		}

	default:
		return "", errors.Errorf("unknown prompt family %q", f)
	}

	return render(string(f)+".tmpl", data)
}

// PreambleKind selects the system preamble a session starts with.
type PreambleKind string

const (
	// PreambleCoach makes the assistant a DX coach helping the persona.
	PreambleCoach PreambleKind = "coach"
	// PreamblePersona makes the assistant speak as the persona.
	PreamblePersona PreambleKind = "persona"
	// PreambleLearning is the reflective learning coach used by free chat.
	PreambleLearning PreambleKind = "learning"
)

func ParsePreambleKind(s string) (PreambleKind, error) {
	switch k := PreambleKind(s); k {
	case PreambleCoach, PreamblePersona, PreambleLearning:
		return k, nil
	}
	return "", errors.Errorf("unknown preamble kind %q", s)
}

func Preamble(kind PreambleKind, p persona.Persona) (string, error) {
	switch kind {
	case PreambleCoach, PreamblePersona:
		if err := requirePersona(p); err != nil {
			return "", err
		}
	case PreambleLearning:
	default:
		return "", errors.Errorf("unknown preamble kind %q", kind)
	}
	return render("preamble-"+string(kind)+".tmpl", templateData{Persona: p})
}

func render(name string, data templateData) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", errors.Wrapf(err, "could not render %s", name)
	}
	return strings.TrimSpace(buf.String()), nil
}

func requirePersona(p persona.Persona) error {
	if p.Name == "" || p.Job == "" {
		return errors.New("prompt requires a persona with name and job")
	}
	return nil
}

func missing(f Family, field string) error {
	return errors.Errorf("%s prompt: missing %s", f, field)
}

// SplitQuestions splits a model answer into its non-empty trimmed lines.
func SplitQuestions(text string) []string {
	ret := []string{}
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		ret = append(ret, line)
	}
	return ret
}

package cmds

import (
	"math/rand"
	"os"

	"github.com/go-go-golems/interviewer/pkg/export"
	"github.com/go-go-golems/interviewer/pkg/interview"
	"github.com/go-go-golems/interviewer/pkg/persona"
	"github.com/go-go-golems/interviewer/pkg/steps/ai/chat"
	"github.com/go-go-golems/interviewer/pkg/steps/ai/openai"
	"github.com/go-go-golems/interviewer/pkg/steps/ai/settings"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

func loadPersonas() (*persona.PersonaSet, error) {
	var options []persona.LoadOption
	if seed := viper.GetInt64("seed"); seed != 0 {
		options = append(options, persona.WithRand(rand.New(rand.NewSource(seed))))
	}
	ps, err := persona.LoadPersonas(viper.GetString("personas"), options...)
	if err != nil {
		return nil, err
	}
	log.Debug().Int("count", ps.Len()).Str("file", viper.GetString("personas")).Msg("loaded personas")
	return ps, nil
}

func selectPersona(ps *persona.PersonaSet, id int) (persona.Persona, error) {
	if id == 0 {
		list := ps.List()
		if len(list) == 0 {
			return persona.Persona{}, persona.ErrPersonaNotFound
		}
		return list[0], nil
	}
	return ps.Lookup(id)
}

func loadQuestions() (*persona.QuestionSet, error) {
	return persona.LoadQuestions(viper.GetString("questions"))
}

// loadOptionalQuestions is loadQuestions for commands that can run without a
// question file. Only an explicitly empty --questions opts out; a configured
// file that is missing or malformed is an error.
func loadOptionalQuestions() (*persona.QuestionSet, error) {
	if viper.GetString("questions") == "" {
		log.Info().Msg("no question file configured, feedback requests must send questions")
		return &persona.QuestionSet{}, nil
	}
	return loadQuestions()
}

// loadChecklist returns nil when no checklist is configured.
func loadChecklist() (*persona.Checklist, error) {
	path := viper.GetString("checklist")
	if path == "" {
		return nil, nil
	}
	return persona.LoadChecklist(path)
}

func loadDXChecklist() (*persona.DXChecklist, error) {
	path := viper.GetString("dx-checklist")
	if path == "" {
		return nil, nil
	}
	return persona.LoadDXChecklist(path)
}

func loadStepSettings() (*settings.StepSettings, error) {
	ss := settings.NewStepSettings()
	if err := ss.UpdateFromViper(viper.GetViper()); err != nil {
		return nil, err
	}
	return ss, nil
}

func dryRunCompleter() chat.Completer {
	return chat.NewMockCompleter(
		"1. 現在の業務で一番時間がかかっている作業は何ですか？\n2. その作業を変えるうえでの障壁は何ですか？",
		"ご質問ありがとうございます。現場の声を集めながら少しずつ進めています。",
	)
}

func newCompleter(ss *settings.StepSettings) (chat.Completer, error) {
	if viper.GetBool("dry-run") {
		log.Info().Msg("dry run, no API calls will be made")
		return dryRunCompleter(), nil
	}
	return openai.NewCompleter(ss)
}

// newInterviewer wires settings, completer and optional DX checklist together.
func newInterviewer(options ...interview.Option) (*interview.Interviewer, *settings.StepSettings, error) {
	ss, err := loadStepSettings()
	if err != nil {
		return nil, nil, err
	}
	completer, err := newCompleter(ss)
	if err != nil {
		return nil, nil, err
	}
	dx, err := loadDXChecklist()
	if err != nil {
		return nil, nil, err
	}

	log.Debug().Interface("settings", ss.GetMetadata()).Msg("step settings")

	opts := []interview.Option{interview.WithSettings(ss)}
	if dx != nil {
		opts = append(opts, interview.WithDXChecklist(dx))
	}
	opts = append(opts, options...)
	return interview.NewInterviewer(completer, opts...), ss, nil
}

func newExporter() (*export.Exporter, export.Format, error) {
	format, err := export.ParseFormat(viper.GetString("export-format"))
	if err != nil {
		return nil, "", err
	}
	dir := viper.GetString("export-dir")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, "", errors.Wrapf(err, "could not create export dir %s", dir)
	}
	return export.NewExporter(dir), format, nil
}

// Package persona loads the synthetic interviewee profiles, the interview
// question list and the checklists that steer generated prompts.
package persona

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// Stage is a DX adoption stage.
type Stage string

const (
	StageBeforeAdoption Stage = "導入前"
	StageEarlyAdoption  Stage = "導入初期"
	StageRollingOut     Stage = "導入推進中"
	StageEstablished    Stage = "定着期"

	// StageRandom asks the loader to pick one of the fixed stages.
	StageRandom Stage = "RANDOM"
)

// Stages lists the fixed stages in adoption order.
var Stages = []Stage{
	StageBeforeAdoption,
	StageEarlyAdoption,
	StageRollingOut,
	StageEstablished,
}

func (s Stage) Valid() bool {
	for _, s_ := range Stages {
		if s == s_ {
			return true
		}
	}
	return false
}

func (s Stage) String() string {
	return string(s)
}

// Persona is immutable once loaded.
type Persona struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	Job        string `json:"job"`
	Goals      string `json:"goals"`
	Challenges string `json:"challenges"`
	Stage      Stage  `json:"DX Stages"`
}

// UnmarshalJSON accepts the stage either under "DX Stages" (the historical
// key) or under "stage".
func (p *Persona) UnmarshalJSON(data []byte) error {
	type Alias Persona
	aux := &struct {
		*Alias
		AltStage Stage `json:"stage"`
	}{
		Alias: (*Alias)(p),
	}
	if err := json.Unmarshal(data, aux); err != nil {
		return err
	}
	if p.Stage == "" {
		p.Stage = aux.AltStage
	}
	return nil
}

// Label is the "id. name (job)" form used in persona pickers.
func (p Persona) Label() string {
	return fmt.Sprintf("%d. %s (%s)", p.ID, p.Name, p.Job)
}

// PersonaSet keeps personas in file order with lookup by id.
type PersonaSet struct {
	personas []Persona
	byID     map[int]int
}

func NewPersonaSet(personas ...Persona) (*PersonaSet, error) {
	ret := &PersonaSet{
		byID: map[int]int{},
	}
	for i, p := range personas {
		if p.ID < 1 {
			return nil, &ValidationError{Field: fmt.Sprintf("personas[%d].id", i), Reason: "must be >= 1"}
		}
		if _, ok := ret.byID[p.ID]; ok {
			return nil, &ValidationError{Field: fmt.Sprintf("personas[%d].id", i), Reason: fmt.Sprintf("duplicate id %d", p.ID)}
		}
		if !p.Stage.Valid() {
			return nil, &ValidationError{Field: fmt.Sprintf("personas[%d].stage", i), Reason: fmt.Sprintf("unknown stage %q", p.Stage)}
		}
		ret.byID[p.ID] = len(ret.personas)
		ret.personas = append(ret.personas, p)
	}
	return ret, nil
}

func (ps *PersonaSet) Get(id int) (Persona, bool) {
	idx, ok := ps.byID[id]
	if !ok {
		return Persona{}, false
	}
	return ps.personas[idx], true
}

// Lookup is Get returning ErrPersonaNotFound for unknown ids.
func (ps *PersonaSet) Lookup(id int) (Persona, error) {
	p, ok := ps.Get(id)
	if !ok {
		return Persona{}, errors.Wrapf(ErrPersonaNotFound, "id %d", id)
	}
	return p, nil
}

func (ps *PersonaSet) List() []Persona {
	return append([]Persona{}, ps.personas...)
}

func (ps *PersonaSet) Len() int {
	return len(ps.personas)
}

type loadOptions struct {
	rand *rand.Rand
}

type LoadOption func(*loadOptions)

// WithRand sets the source used to resolve RANDOM stages.
func WithRand(r *rand.Rand) LoadOption {
	return func(o *loadOptions) {
		o.rand = r
	}
}

type personaFile struct {
	Personas []Persona `json:"personas"`
}

// LoadPersonas reads a {"personas": [...]} document from JSON or YAML,
// validates it and resolves RANDOM stages once.
func LoadPersonas(path string, options ...LoadOption) (*PersonaSet, error) {
	opts := &loadOptions{}
	for _, o := range options {
		o(opts)
	}
	if opts.rand == nil {
		opts.rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	data, err := readDocument(path)
	if err != nil {
		return nil, err
	}
	if err := validatePersonaDocument(path, data); err != nil {
		return nil, err
	}

	var f personaFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrapf(err, "could not decode %s", path)
	}

	for i := range f.Personas {
		p := &f.Personas[i]
		if p.Stage == StageRandom {
			p.Stage = Stages[opts.rand.Intn(len(Stages))]
			log.Debug().Int("persona", p.ID).Str("stage", p.Stage.String()).Msg("resolved random stage")
		}
	}

	ret, err := NewPersonaSet(f.Personas...)
	if err != nil {
		var ve *ValidationError
		if errors.As(err, &ve) {
			ve.File = path
		}
		return nil, err
	}
	return ret, nil
}

// readDocument returns the file as JSON bytes, converting YAML input.
func readDocument(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "could not read %s", path)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var v interface{}
		if err := yaml.Unmarshal(data, &v); err != nil {
			return nil, errors.Wrapf(err, "could not decode %s", path)
		}
		data, err = json.Marshal(v)
		if err != nil {
			return nil, errors.Wrapf(err, "could not convert %s to json", path)
		}
	}

	return data, nil
}

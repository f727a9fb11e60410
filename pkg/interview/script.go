package interview

import "github.com/go-go-golems/interviewer/pkg/persona"

// Script steps through a fixed question list, one question per call.
type Script struct {
	questions []string
	pos       int
}

func NewScript(qs *persona.QuestionSet) *Script {
	ret := &Script{}
	if qs != nil {
		ret.questions = append(ret.questions, qs.Questions...)
	}
	return ret
}

func (s *Script) Next() (string, bool) {
	if s.pos >= len(s.questions) {
		return "", false
	}
	q := s.questions[s.pos]
	s.pos++
	return q, true
}

func (s *Script) Remaining() int {
	return len(s.questions) - s.pos
}

func (s *Script) Reset() {
	s.pos = 0
}

package persona

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// Checklist is an auxiliary reference document of arbitrary shape, passed
// through to prompts verbatim.
type Checklist struct {
	data interface{}
}

func NewChecklist(data interface{}) *Checklist {
	return &Checklist{data: data}
}

func LoadChecklist(path string) (*Checklist, error) {
	data, err := readDocument(path)
	if err != nil {
		return nil, err
	}

	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	var v interface{}
	if err := decoder.Decode(&v); err != nil {
		return nil, errors.Wrapf(err, "could not decode %s", path)
	}
	return &Checklist{data: v}, nil
}

func (c *Checklist) IsZero() bool {
	return c == nil || c.data == nil
}

// Render pretty-prints the checklist with sorted keys, so that the same
// document always yields the same prompt text.
func (c *Checklist) Render() (string, error) {
	if c.IsZero() {
		return "", nil
	}
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(c.data); err != nil {
		return "", errors.Wrap(err, "could not render checklist")
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}

// NoRelevantItem is returned by DXChecklist.Relevant when nothing matches.
const NoRelevantItem = "関連する情報が見つかりませんでした。"

// DXChecklist is a line-oriented list of key DX points.
type DXChecklist struct {
	Items []string
}

func LoadDXChecklist(path string) (*DXChecklist, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "could not read %s", path)
	}
	defer func(f *os.File) {
		_ = f.Close()
	}(f)

	ret := &DXChecklist{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		ret.Items = append(ret.Items, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "could not read %s", path)
	}
	return ret, nil
}

// Relevant returns the items containing any whitespace-separated token of the
// question, in checklist order.
func (c *DXChecklist) Relevant(question string) []string {
	ret := []string{}
	if c != nil {
		keywords := strings.Fields(question)
		for _, item := range c.Items {
			for _, k := range keywords {
				if strings.Contains(item, k) {
					ret = append(ret, item)
					break
				}
			}
		}
	}
	if len(ret) == 0 {
		return []string{NoRelevantItem}
	}
	return ret
}

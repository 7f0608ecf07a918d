package scenario

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// scenarioFile is a named, declarative scenario as stored on disk.
type scenarioFile struct {
	Name  string     `yaml:"name"`
	Steps []fileStep `yaml:"steps"`
}

type fileStep struct {
	Name       string       `yaml:"name"`
	Goto       string       `yaml:"goto"`
	Click      *fileLocator `yaml:"click"`
	Wait       string       `yaml:"wait"`
	Expect     []fileExpect `yaml:"expect"`
	Screenshot string       `yaml:"screenshot"`
}

type fileLocator struct {
	Text  string `yaml:"text"`
	Role  string `yaml:"role"`
	Name  string `yaml:"name"`
	Exact bool   `yaml:"exact"`
}

type fileExpect struct {
	fileLocator `yaml:",inline"`
	State       string `yaml:"state"`
}

func (l fileLocator) locator() Locator {
	return Locator{Text: l.Text, Role: l.Role, Name: l.Name, Exact: l.Exact}
}

// LoadFile reads and validates a scenario file.
func LoadFile(path string) (string, []Step, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", nil, fmt.Errorf("failed to read scenario: %w", err)
	}
	return Parse(path, data)
}

// Parse decodes a YAML scenario, validates it against the scenario schema
// and returns its name and steps. source is only used in error messages.
func Parse(source string, data []byte) (string, []Step, error) {
	var doc interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return "", nil, fmt.Errorf("%s: failed to parse YAML: %w", source, err)
	}
	if doc == nil {
		return "", nil, fmt.Errorf("%s: %w", source, ErrNoSteps)
	}
	if err := validateDocument(source, doc); err != nil {
		return "", nil, err
	}

	var f scenarioFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return "", nil, fmt.Errorf("%s: failed to decode scenario: %w", source, err)
	}

	steps := f.steps()
	if err := Validate(steps); err != nil {
		return "", nil, fmt.Errorf("%s: %w", source, err)
	}
	return f.Name, steps, nil
}

func (f scenarioFile) steps() []Step {
	steps := make([]Step, 0, len(f.Steps))
	for _, fs := range f.Steps {
		step := Step{
			Name:       fs.Name,
			Wait:       WaitCondition(fs.Wait),
			Screenshot: fs.Screenshot,
		}
		if fs.Click != nil {
			step.Action = Click(fs.Click.locator())
		} else {
			step.Action = Goto(fs.Goto)
		}
		if step.Wait == "" {
			step.Wait = WaitNetworkIdle
		}
		for _, e := range fs.Expect {
			state := ExpectedState(e.State)
			if state == "" {
				state = StateVisible
			}
			step.Assertions = append(step.Assertions, Assertion{Locator: e.locator(), Expected: state})
		}
		steps = append(steps, step)
	}
	return steps
}

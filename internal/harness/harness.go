// Package harness runs scenario suites: gmlite programs paired with the
// output, error or bytecode they are expected to produce.
package harness

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"

	"gmlite/pkg/bytecode"
	"gmlite/pkg/codegen"
	"gmlite/pkg/interpreter"
	"gmlite/pkg/parser"
)

// Suite is a parsed scenario file.
type Suite struct {
	Cases []Case `yaml:"cases"`

	// Path is where the suite was read from, empty for parsed data.
	Path string `yaml:"-"`
}

// Case is a single scenario.
type Case struct {
	Name   string `yaml:"name"`
	Source string `yaml:"source"`

	// Output lists the printed lines, in order. A nil list is not checked,
	// an empty list requires silence.
	Output []string `yaml:"output"`

	// Error is a substring of the expected error. Empty means the program must succeed.
	Error string `yaml:"error,omitempty"`

	// Disasm lists the expected opcode mnemonics of the compiled program.
	Disasm []string `yaml:"disasm,omitempty"`

	MaxSteps int `yaml:"max_steps,omitempty"`
}

// Result is the outcome of one case.
type Result struct {
	Name   string
	Passed bool
	Msg    string
}

// Load reads and parses a suite file.
func Load(path string) (*Suite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading suite %s: %w", path, err)
	}

	s, err := Parse(data, path)
	if err != nil {
		return nil, err
	}
	s.Path = path
	return s, nil
}

// Parse parses suite data. path is only used in error messages.
func Parse(data []byte, path string) (*Suite, error) {
	var s Suite
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := s.validate(path); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Suite) validate(path string) error {
	if len(s.Cases) == 0 {
		return fmt.Errorf("%s: no cases defined", path)
	}

	seen := make(map[string]int)
	for i, c := range s.Cases {
		if c.Name == "" {
			return fmt.Errorf("%s: cases[%d]: name is required", path, i)
		}
		if j, ok := seen[c.Name]; ok {
			return fmt.Errorf("%s: cases[%d]: name %q already used by cases[%d]", path, i, c.Name, j)
		}
		seen[c.Name] = i

		if c.MaxSteps < 0 {
			return fmt.Errorf("%s: cases[%d] (%s): max_steps must not be negative", path, i, c.Name)
		}
		if c.Error != "" && len(c.Output) > 0 {
			return fmt.Errorf("%s: cases[%d] (%s): output and error are mutually exclusive", path, i, c.Name)
		}
	}
	return nil
}

// Run executes every case in order
func (s *Suite) Run() []Result {
	results := make([]Result, 0, len(s.Cases))
	for _, c := range s.Cases {
		r := c.Run()
		log.Debug("case finished", "name", r.Name, "passed", r.Passed)
		results = append(results, r)
	}
	return results
}

// Run compiles and executes the case on a fresh registry.
// Internal errors are reported as failures instead of crashing the suite.
func (c Case) Run() (r Result) {
	r.Name = c.Name

	defer func() {
		if p := recover(); p != nil {
			r.Passed = false
			r.Msg = fmt.Sprintf("internal error: %v", p)
		}
	}()

	err := c.run()
	if err != nil {
		r.Msg = err.Error()
		return r
	}
	r.Passed = true
	return r
}

func (c Case) run() error {
	root, err := parser.Parse(c.Source)
	if err != nil {
		return c.expect(err, nil)
	}

	code, err := codegen.Compile(root)
	if err != nil {
		return c.expect(err, nil)
	}

	if c.Disasm != nil {
		if err := c.checkDisasm(code); err != nil {
			return err
		}
	}

	var out bytes.Buffer
	it := interpreter.NewInterpreter(code,
		interpreter.WithWriter(&out),
		interpreter.WithMaxSteps(c.MaxSteps),
	)
	return c.expect(it.Run(), lines(out.String()))
}

// expect compares the error and output of a finished program against the case
func (c Case) expect(err error, output []string) error {
	switch {
	case c.Error == "" && err != nil:
		return fmt.Errorf("unexpected error: %w", err)
	case c.Error != "" && err == nil:
		return fmt.Errorf("expected error containing %q, program succeeded", c.Error)
	case c.Error != "" && !strings.Contains(err.Error(), c.Error):
		return fmt.Errorf("error %q does not contain %q", err, c.Error)
	}

	if c.Output == nil {
		return nil
	}
	if len(output) != len(c.Output) {
		return fmt.Errorf("printed %d lines %q, want %d lines %q", len(output), output, len(c.Output), c.Output)
	}
	for i := range output {
		if output[i] != c.Output[i] {
			return fmt.Errorf("line %d: got %q, want %q", i+1, output[i], c.Output[i])
		}
	}
	return nil
}

func (c Case) checkDisasm(code []byte) error {
	ins, err := bytecode.DecodeAll(code)
	if err != nil {
		return fmt.Errorf("decoding compiled program: %w", err)
	}

	ops := bytecode.Ops(ins)
	got := make([]string, len(ops))
	for i, op := range ops {
		got[i] = op.String()
	}

	if strings.Join(got, " ") != strings.Join(c.Disasm, " ") {
		return fmt.Errorf("disasm: got %v, want %v", got, c.Disasm)
	}
	return nil
}

func lines(s string) []string {
	s = strings.TrimSuffix(s, "\n")
	if s == "" {
		return []string{}
	}
	return strings.Split(s, "\n")
}

// Failed counts the results that did not pass
func Failed(results []Result) int {
	n := 0
	for _, r := range results {
		if !r.Passed {
			n++
		}
	}
	return n
}

package harness

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestScenarioSuite(t *testing.T) {
	s, err := Load(filepath.Join("testdata", "scenarios.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	results := s.Run()
	if len(results) != len(s.Cases) {
		t.Fatalf("got %d results for %d cases", len(results), len(s.Cases))
	}
	for _, r := range results {
		if !r.Passed {
			t.Errorf("%s: %s", r.Name, r.Msg)
		}
	}
	if n := Failed(results); n != 0 {
		t.Errorf("Failed = %d, want 0", n)
	}
}

func TestCaseFailures(t *testing.T) {
	tests := []struct {
		name string
		c    Case
		want string
	}{
		{
			name: "wrong output",
			c:    Case{Source: "print(1);", Output: []string{"2"}},
			want: `line 1: got "1", want "2"`,
		},
		{
			name: "too many lines",
			c:    Case{Source: "print(1); print(2);", Output: []string{"1"}},
			want: "printed 2 lines",
		},
		{
			name: "silence required",
			c:    Case{Source: "print(1);", Output: []string{}},
			want: "printed 1 lines",
		},
		{
			name: "unexpected error",
			c:    Case{Source: "print(y);"},
			want: "unexpected error",
		},
		{
			name: "expected error missing",
			c:    Case{Source: "var y;", Error: "undeclared"},
			want: "program succeeded",
		},
		{
			name: "different error",
			c:    Case{Source: "print(y);", Error: "type mismatch"},
			want: "does not contain",
		},
		{
			name: "disasm mismatch",
			c:    Case{Source: "var x;", Disasm: []string{"DECLSET"}},
			want: "disasm",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.c.Name = tt.name
			r := tt.c.Run()
			if r.Passed {
				t.Fatal("case passed, want failure")
			}
			if !strings.Contains(r.Msg, tt.want) {
				t.Errorf("msg = %q, want it to contain %q", r.Msg, tt.want)
			}
		})
	}
}

func TestCaseOutputNotChecked(t *testing.T) {
	r := Case{Name: "free", Source: "print(1);"}.Run()
	if !r.Passed {
		t.Errorf("case failed: %s", r.Msg)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{"bad yaml", "cases: [", "parsing"},
		{"no cases", "cases: []", "no cases defined"},
		{"no name", "cases:\n  - source: \"print(1);\"", "name is required"},
		{"duplicate", "cases:\n  - name: a\n  - name: a", "already used"},
		{"negative steps", "cases:\n  - name: a\n    max_steps: -3", "must not be negative"},
		{"output and error", "cases:\n  - name: a\n    output: [\"1\"]\n    error: boom", "mutually exclusive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data), "suite.yaml")
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want it to contain %q", err, tt.want)
			}
		})
	}
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "none.yaml"))
	if err == nil || !strings.Contains(err.Error(), "reading suite") {
		t.Errorf("error = %v, want reading suite", err)
	}
}

func TestLoadSetsPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "one.yaml")
	if err := os.WriteFile(path, []byte("cases:\n  - name: one\n    source: \"print(1);\"\n    output: [\"1\"]\n"), 0644); err != nil {
		t.Fatal(err)
	}

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if s.Path != path {
		t.Errorf("path = %q, want %q", s.Path, path)
	}
	if n := Failed(s.Run()); n != 0 {
		t.Errorf("Failed = %d, want 0", n)
	}
}

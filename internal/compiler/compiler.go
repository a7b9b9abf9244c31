package compiler

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"gmlite/internal/config"
	"gmlite/internal/harness"
	"gmlite/pkg/bytecode"
	"gmlite/pkg/codegen"
	"gmlite/pkg/color"
	"gmlite/pkg/interpreter"
	"gmlite/pkg/parser"
)

// ErrInternal marks a defect in the compiler or interpreter, never a fault of the script
var ErrInternal = errors.New("internal error")

type Compiler struct {
	Help        bool   // Show help message
	Verbose     bool   // Enable verbose output
	Run         bool   // Run the compiled program
	Disassemble bool   // Print the compiled bytecode
	Trace       bool   // Log every executed instruction
	NoColor     bool   // Disable colored output
	MaxSteps    int    // Stop the program after this many instructions (0 = unlimited)
	ConfigPath  string // Path to gmlite.toml, searched for when empty
	Suite       string // Path to a scenario suite to run instead of a source file
	SourceFile  string // Path to the source file

	Out io.Writer // Program and report output, stdout when nil
}

// LoadConfig reads the config file named by ConfigPath, or the nearest gmlite.toml
// above dir, and merges it into the options. Options set on the command line win.
func (opts *Compiler) LoadConfig(dir string) error {
	var (
		c   *config.Config
		err error
	)
	if opts.ConfigPath != "" {
		c, err = config.Load(opts.ConfigPath)
	} else {
		c, err = config.FindAndLoad(dir)
	}
	if err != nil {
		return err
	}
	if c == nil {
		return nil
	}

	log.Debug("Using config", "path", c.Path)
	opts.Merge(c)
	return nil
}

// Merge fills options from c. Flags already set are kept.
func (opts *Compiler) Merge(c *config.Config) {
	opts.Verbose = opts.Verbose || c.Log.Verbose
	opts.NoColor = opts.NoColor || c.Log.NoColor
	opts.Disassemble = opts.Disassemble || c.Run.Disassemble
	opts.Trace = opts.Trace || c.Run.Trace
	if opts.MaxSteps == 0 {
		opts.MaxSteps = c.Run.MaxSteps
	}
}

// Compile processes the source file, compiles it to bytecode, and disassembles and/or runs it.
func (opts *Compiler) Compile() error {
	runID := uuid.NewString()
	log.Info("Processing file", "file", opts.SourceFile, "run", runID)

	input, err := os.ReadFile(opts.SourceFile)
	if err != nil {
		return fmt.Errorf("cannot read %s: %w", opts.SourceFile, err)
	}

	out := opts.output()

	root, err := parser.Parse(string(input))
	if err != nil {
		var perr *parser.Error
		if errors.As(err, &perr) {
			fmt.Fprintln(out, color.BrightRedText("=== Syntax Errors ==="))
			fmt.Fprintln(out, perr.Format())
		}
		return fmt.Errorf("parsing failed: %w", err)
	}

	var code []byte
	err = guard(func() error {
		code, err = codegen.Compile(root)
		return err
	})
	if err != nil {
		return fmt.Errorf("compilation failed: %w", err)
	}
	log.Info("Compiled", "file", opts.SourceFile, "size", humanize.Bytes(uint64(len(code))), "run", runID)

	if !opts.Run && !opts.Disassemble {
		opts.Run = true
	}

	if opts.Disassemble {
		if err := disassemble(out, code); err != nil {
			return err
		}
	}

	if opts.Run {
		intr := interpreter.NewInterpreter(code,
			interpreter.WithWriter(out),
			interpreter.WithMaxSteps(opts.MaxSteps),
			interpreter.WithTrace(opts.Trace || opts.Verbose),
			interpreter.WithLogger(log.Default().With("run", runID)),
		)

		if opts.Verbose || opts.Disassemble {
			fmt.Fprintln(out, color.GreenText("\n=== Program Output ==="))
		}
		if err := guard(intr.Run); err != nil {
			return fmt.Errorf("interpretation failed: %w", err)
		}
		log.Info("Finished", "steps", humanize.Comma(int64(intr.Steps())), "instances", intr.Registry().Len(), "run", runID)
	}

	return nil
}

// RunSuite runs the scenario suite at opts.Suite and prints one line per case
func (opts *Compiler) RunSuite() error {
	s, err := harness.Load(opts.Suite)
	if err != nil {
		return err
	}

	out := opts.output()
	results := s.Run()
	for _, r := range results {
		if r.Passed {
			fmt.Fprintf(out, "%s %s\n", color.GreenText("PASS"), r.Name)
			continue
		}
		fmt.Fprintf(out, "%s %s\n", color.RedText("FAIL"), r.Name)
		fmt.Fprintf(out, "     %s\n", color.GrayText(r.Msg))
	}

	failed := harness.Failed(results)
	log.Info("Suite finished", "suite", filepath.Base(opts.Suite), "cases", len(results), "failed", failed)
	if failed > 0 {
		return fmt.Errorf("%d of %d cases failed", failed, len(results))
	}
	return nil
}

func (opts *Compiler) output() io.Writer {
	if opts.Out == nil {
		return os.Stdout
	}
	return opts.Out
}

func disassemble(out io.Writer, code []byte) error {
	fmt.Fprintln(out, color.GreenText("=== Bytecode ==="))
	if len(code) == 0 {
		fmt.Fprintln(out, color.GrayText("No code generated."))
		return nil
	}

	text, err := bytecode.DisassembleWith(code, func(addr, body string) string {
		return color.CyanText(addr) + ": " + color.YellowText(body)
	})
	fmt.Fprint(out, text)
	if err != nil {
		return fmt.Errorf("disassembly failed: %w", err)
	}
	return nil
}

// guard turns internal error panics from codegen and the interpreter into ErrInternal
func guard(fn func() error) (err error) {
	defer func() {
		p := recover()
		if p == nil {
			return
		}
		switch p := p.(type) {
		case *codegen.InternalError:
			err = fmt.Errorf("%w: %v", ErrInternal, p)
		case *interpreter.InternalError:
			err = fmt.Errorf("%w: %v", ErrInternal, p)
		default:
			panic(p)
		}
	}()

	return fn()
}

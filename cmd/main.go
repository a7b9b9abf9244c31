package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"gmlite/internal/compiler"
	"gmlite/internal/logger"
	"gmlite/pkg/color"
)

// Main entry point for the gmlite compiler.
func main() {
	options := compiler.Compiler{}

	flag.BoolVar(&options.Help, "h", false, "Show help")
	flag.BoolVar(&options.Verbose, "v", false, "Verbose mode, traces every instruction")
	flag.BoolVar(&options.Run, "r", false, "Run with interpreter (default unless -d is given)")
	flag.BoolVar(&options.Disassemble, "d", false, "Print the compiled bytecode")
	flag.BoolVar(&options.NoColor, "n", false, "No color")
	flag.IntVar(&options.MaxSteps, "s", 0, "Maximum interpreter steps (0 = unlimited)")
	flag.StringVar(&options.ConfigPath, "c", "", "Config file (default: nearest gmlite.toml)")
	flag.StringVar(&options.Suite, "t", "", "Run a scenario suite (YAML)")

	flag.Parse()
	args := flag.Args()

	logger.Init(options.Verbose, options.NoColor)
	if options.Help {
		fmt.Printf("Usage: %s [options] <file>\n", os.Args[0])
		fmt.Printf("       %s [options] -t <suite.yaml>\n", os.Args[0])
		fmt.Println("Options:")
		flag.PrintDefaults()
		return
	}

	if options.MaxSteps < 0 {
		log.Fatal("Step limit must not be negative", "s", options.MaxSteps)
	}

	dir := "."
	switch {
	case options.Suite != "":
		dir = filepath.Dir(options.Suite)
	case len(args) > 0:
		dir = filepath.Dir(args[0])
	}
	if err := options.LoadConfig(dir); err != nil {
		log.Fatal("Invalid config", "error", err)
	}

	// the config file may turn on verbosity or turn off colour
	logger.Init(options.Verbose, options.NoColor)
	if options.NoColor {
		color.EnableColor(false)
	}

	if options.Suite != "" {
		if err := options.RunSuite(); err != nil {
			log.Fatal("Suite failed", "error", err)
		}
		return
	}

	if len(args) == 0 {
		log.Fatal("No input file provided", "help", fmt.Sprintf("%s -h", os.Args[0]))
	}

	options.SourceFile = args[0]

	err := options.Compile()
	if err != nil {
		log.Fatal("Compilation failed", "error", err)
	}
}

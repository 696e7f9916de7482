// Package main is the entry point for the ustring command, which checks,
// repairs and inspects UTF-8 text using the ustring library.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/dshills/ustring/internal/config"
	"github.com/dshills/ustring/internal/config/loader"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Exit codes.
const (
	exitOK    = 0
	exitFail  = 1
	exitUsage = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// options holds the global flags.
type options struct {
	configPath string
	verbose    bool
}

// env carries the streams and settings shared by every command.
type env struct {
	stdin   io.Reader
	stdout  io.Writer
	stderr  io.Writer
	cfg     config.Config
	verbose bool
}

// logf writes a diagnostic line to stderr when -verbose is set.
func (e *env) logf(format string, args ...any) {
	if e.verbose {
		fmt.Fprintf(e.stderr, "ustring: "+format+"\n", args...)
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("ustring", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var opts options
	var showVersion bool
	var showHelp bool

	defaultConfig := loader.GetEnvOrDefault("USTRING_CONFIG", "")
	fs.StringVar(&opts.configPath, "config", defaultConfig, "Path to configuration file")
	fs.StringVar(&opts.configPath, "c", defaultConfig, "Path to configuration file (shorthand)")
	fs.BoolVar(&opts.verbose, "verbose", false, "Report progress on stderr")
	fs.BoolVar(&showVersion, "version", false, "Show version information")
	fs.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")
	fs.BoolVar(&showHelp, "help", false, "Show help message")
	fs.BoolVar(&showHelp, "h", false, "Show help message (shorthand)")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "ustring - UTF-8 text checker\n\n")
		fmt.Fprintf(stderr, "Usage: ustring [options] <command> [args...]\n\n")
		fmt.Fprintf(stderr, "Commands:\n")
		fmt.Fprintf(stderr, "  validate FILE...             Report whether each file is valid UTF-8\n")
		fmt.Fprintf(stderr, "  sanitize FILE                Print FILE with invalid bytes replaced by U+FFFD\n")
		fmt.Fprintf(stderr, "  stats [-format F] FILE       Print size statistics (text, json, yaml)\n")
		fmt.Fprintf(stderr, "  extract -path P FILE         Print the JSON string at path P\n")
		fmt.Fprintf(stderr, "  config                       Print the effective configuration\n")
		fmt.Fprintf(stderr, "\nFILE may be - for standard input.\n\n")
		fmt.Fprintf(stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return exitOK
		}
		return exitUsage
	}

	if showHelp {
		fs.Usage()
		return exitOK
	}

	if showVersion {
		fmt.Fprintf(stdout, "ustring %s\n", version)
		fmt.Fprintf(stdout, "Commit: %s\n", commit)
		fmt.Fprintf(stdout, "Built: %s\n", date)
		return exitOK
	}

	rest := fs.Args()
	if len(rest) == 0 {
		fs.Usage()
		return exitUsage
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Error: failed to load configuration: %v\n", err)
		return exitFail
	}

	e := &env{
		stdin:   stdin,
		stdout:  stdout,
		stderr:  stderr,
		cfg:     cfg,
		verbose: opts.verbose,
	}
	if opts.configPath != "" {
		e.logf("loaded configuration from %s", opts.configPath)
	}

	cmd, ok := commands[rest[0]]
	if !ok {
		fmt.Fprintf(stderr, "Error: unknown command %q\n", rest[0])
		fs.Usage()
		return exitUsage
	}
	return cmd(e, rest[1:])
}

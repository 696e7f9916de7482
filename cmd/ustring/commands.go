package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/tidwall/pretty"
	"gopkg.in/yaml.v3"

	"github.com/dshills/ustring/pkg/alloc"
	"github.com/dshills/ustring/pkg/ustring"
)

// command runs one subcommand and returns the exit code.
type command func(e *env, args []string) int

var commands = map[string]command{
	"validate": runValidate,
	"sanitize": runSanitize,
	"stats":    runStats,
	"extract":  runExtract,
	"config":   runConfig,
}

// open returns a reader for name, where "-" means standard input.
func (e *env) open(name string) (io.ReadCloser, error) {
	if name == "-" {
		return io.NopCloser(e.stdin), nil
	}
	return os.Open(name)
}

func (e *env) readAll(name string) ([]byte, error) {
	r, err := e.open(name)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

// load reads name into a String drawn from a, reserving the configured
// minimum capacity first.
func (e *env) load(name string, a alloc.Allocator) (*ustring.String, error) {
	data, err := e.readAll(name)
	if err != nil {
		return nil, err
	}

	s := ustring.New(a)
	if err := s.TryReserveExact(max(e.cfg.Growth.MinCapacity, len(data))); err != nil {
		return nil, err
	}
	if err := s.PushBytes(data); err != nil {
		s.Release()
		return nil, err
	}
	return s, nil
}

func runValidate(e *env, args []string) int {
	if len(args) == 0 {
		fmt.Fprintf(e.stderr, "Error: validate needs at least one file\n")
		return exitUsage
	}

	a := e.cfg.NewAllocator()
	e.logf("using allocator %v", a)

	code := exitOK
	for _, name := range args {
		s, err := e.load(name, a)
		var uerr *ustring.Utf8Error
		switch {
		case errors.As(err, &uerr):
			fmt.Fprintf(e.stdout, "%s: invalid UTF-8 at byte %d\n", name, uerr.Offset)
			code = exitFail
		case err != nil:
			fmt.Fprintf(e.stderr, "Error: %s: %v\n", name, err)
			code = exitFail
		default:
			fmt.Fprintf(e.stdout, "%s: ok (%d bytes, %d chars)\n", name, s.Len(), s.CharCount())
			s.Release()
		}
	}
	return code
}

func runSanitize(e *env, args []string) int {
	if len(args) != 1 {
		fmt.Fprintf(e.stderr, "Error: sanitize needs exactly one file\n")
		return exitUsage
	}

	r, err := e.open(args[0])
	if err != nil {
		fmt.Fprintf(e.stderr, "Error: %v\n", err)
		return exitFail
	}
	defer r.Close()

	s, err := ustring.FromReaderLossy(r, e.cfg.NewAllocator())
	if err != nil {
		fmt.Fprintf(e.stderr, "Error: %s: %v\n", args[0], err)
		return exitFail
	}
	defer s.Release()

	if _, err := io.WriteString(e.stdout, s.View().Borrow()); err != nil {
		fmt.Fprintf(e.stderr, "Error: writing output: %v\n", err)
		return exitFail
	}
	e.logf("wrote %d bytes", s.Len())
	return exitOK
}

// stats is the report printed by the stats command.
type stats struct {
	File      *ustring.String `json:"file" yaml:"file"`
	Bytes     int             `json:"bytes" yaml:"bytes"`
	Chars     int             `json:"chars" yaml:"chars"`
	Lines     int             `json:"lines" yaml:"lines"`
	Capacity  int             `json:"capacity" yaml:"capacity"`
	Allocator string          `json:"allocator" yaml:"allocator"`
}

func runStats(e *env, args []string) int {
	fs := flag.NewFlagSet("stats", flag.ContinueOnError)
	fs.SetOutput(e.stderr)
	format := fs.String("format", "text", "Output format (text, json, yaml)")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if fs.NArg() != 1 {
		fmt.Fprintf(e.stderr, "Error: stats needs exactly one file\n")
		return exitUsage
	}
	name := fs.Arg(0)

	a := e.cfg.NewAllocator()
	s, err := e.load(name, a)
	if err != nil {
		fmt.Fprintf(e.stderr, "Error: %s: %v\n", name, err)
		return exitFail
	}
	defer s.Release()

	st := stats{
		File:      ustring.FromString(name, a),
		Bytes:     s.Len(),
		Chars:     s.CharCount(),
		Capacity:  s.Cap(),
		Allocator: fmt.Sprint(a),
	}
	defer st.File.Release()
	for r := range s.View().Chars() {
		if r == '\n' {
			st.Lines++
		}
	}
	if !s.IsEmpty() && !s.View().HasSuffix("\n") {
		st.Lines++
	}

	if err := writeStats(e.stdout, *format, &st); err != nil {
		fmt.Fprintf(e.stderr, "Error: %v\n", err)
		return exitUsage
	}
	return exitOK
}

func writeStats(w io.Writer, format string, st *stats) error {
	switch format {
	case "text":
		fmt.Fprintf(w, "file:      %s\n", st.File)
		fmt.Fprintf(w, "bytes:     %d\n", st.Bytes)
		fmt.Fprintf(w, "chars:     %d\n", st.Chars)
		fmt.Fprintf(w, "lines:     %d\n", st.Lines)
		fmt.Fprintf(w, "capacity:  %d\n", st.Capacity)
		fmt.Fprintf(w, "allocator: %s\n", st.Allocator)
		return nil
	case "json":
		data, err := json.Marshal(st)
		if err != nil {
			return err
		}
		_, err = w.Write(pretty.Pretty(data))
		return err
	case "yaml":
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(st)
	default:
		return fmt.Errorf("unknown format %q (must be text, json or yaml)", format)
	}
}

func runExtract(e *env, args []string) int {
	fs := flag.NewFlagSet("extract", flag.ContinueOnError)
	fs.SetOutput(e.stderr)
	path := fs.String("path", "", "JSON path of the string to print")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if *path == "" || fs.NArg() != 1 {
		fmt.Fprintf(e.stderr, "Error: extract needs -path and exactly one file\n")
		return exitUsage
	}

	doc, err := e.readAll(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(e.stderr, "Error: %v\n", err)
		return exitFail
	}

	s, err := ustring.FromJSONPath(doc, *path, e.cfg.NewAllocator())
	if err != nil {
		fmt.Fprintf(e.stderr, "Error: %s: %v\n", fs.Arg(0), err)
		return exitFail
	}
	defer s.Release()

	fmt.Fprintln(e.stdout, s)
	return exitOK
}

func runConfig(e *env, args []string) int {
	if len(args) != 0 {
		fmt.Fprintf(e.stderr, "Error: config takes no arguments\n")
		return exitUsage
	}
	if err := toml.NewEncoder(e.stdout).Encode(e.cfg); err != nil {
		fmt.Fprintf(e.stderr, "Error: %v\n", err)
		return exitFail
	}
	return exitOK
}

// Copyright ©2026 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// The ice command reports host capabilities and provides access to the
// system clipboard.
//
// Usage:
//
//	ice [-config file] [-log level] [-lines] [-version] <command> [arguments]
//
// The commands are:
//
//	probe   print the host capability report
//	check   evaluate CEL capability rules against the host
//	clip    get, set, clear, match or watch the clipboard
//	dl      load a shared library and resolve symbols
//	serve   run the JSON RPC 2 daemon
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"strings"

	"github.com/kortschak/ice/internal/config"
	"github.com/kortschak/ice/internal/slogext"
	"github.com/kortschak/ice/internal/version"
)

// Exit status codes.
const (
	success       = 0
	internalError = 1 << (iota - 1)
	invocationError
)

func main() { os.Exit(Main()) }

// command is an ice sub-command.
type command struct {
	run   func(ctx context.Context, env *environment, args []string) int
	usage string
}

// commands is populated in init since the commands themselves
// refer to it through newFlagSet.
var commands map[string]command

func init() {
	commands = map[string]command{
		"probe": {run: probe, usage: "probe [-json]"},
		"check": {run: check, usage: "check [-rule name]... [expr ...]"},
		"clip":  {run: clip, usage: "clip [-strategy s] [-file path] [-timeout d] get [-wrap n] | set <text> | clear | matches <text> | watch [-poll d] [-history dsn] [-n n] | history [-n n] [-history dsn]"},
		"dl":    {run: load, usage: "dl [-sym name]... [-version n] <path|name>"},
		"serve": {run: serve, usage: "serve [-network unix|tcp] [-addr addr]"},
	}
}

// environment is the state shared by all commands.
type environment struct {
	cfg *config.Config
	log *slog.Logger
}

func Main() int {
	cfgPath := flag.String("config", "", "configuration file (default $XDG_CONFIG_HOME/ice/config.toml)")
	logging := flag.String("log", "", "logging level (debug, info, warn or error) (default from config or info)")
	lines := flag.Bool("lines", false, "display source line details in logs")
	v := flag.Bool("version", false, "print version and exit")
	flag.Usage = usage
	flag.Parse()
	if *v {
		err := version.Print(os.Stdout)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return internalError
		}
		return success
	}
	if flag.NArg() == 0 {
		flag.Usage()
		return invocationError
	}
	cmd, ok := commands[flag.Arg(0)]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", flag.Arg(0))
		flag.Usage()
		return invocationError
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		return invocationError
	}

	var level slog.LevelVar
	if cfg.LogLevel != nil {
		level.Set(*cfg.LogLevel)
	}
	if *logging != "" {
		err = level.UnmarshalText([]byte(*logging))
		if err != nil {
			flag.Usage()
			return invocationError
		}
	}
	addSource := *lines
	if !isSet(flag.CommandLine, "lines") && cfg.AddSource != nil {
		addSource = *cfg.AddSource
	}
	log := slog.New(slogext.GoID{Handler: slogext.NewJSONHandler(os.Stderr, &slogext.HandlerOptions{
		Level:     &level,
		AddSource: slogext.NewAtomicBool(addSource),
	})})

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	return cmd.run(ctx, &environment{cfg: cfg, log: log}, flag.Args()[1:])
}

func usage() {
	fmt.Fprintf(os.Stderr, "usage: %s [options] <command> [arguments]\n\nOptions:\n", os.Args[0])
	flag.PrintDefaults()
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Fprintln(os.Stderr, "\nCommands:")
	for _, name := range names {
		fmt.Fprintf(os.Stderr, "  %s\n", commands[name].usage)
	}
}

// newFlagSet returns a flag set for the named command that reports
// usage errors to stderr.
func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "usage: %s %s\n", os.Args[0], commands[name].usage)
		fs.PrintDefaults()
	}
	return fs
}

// isSet returns whether the named flag was set on the command line.
func isSet(fs *flag.FlagSet, name string) bool {
	var set bool
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}

// stringList is a repeatable string flag.
type stringList []string

func (s *stringList) String() string {
	if s == nil {
		return ""
	}
	return strings.Join(*s, ",")
}

func (s *stringList) Set(v string) error {
	if v == "" {
		return errors.New("empty value")
	}
	*s = append(*s, v)
	return nil
}

// Copyright ©2026 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/kortschak/ice/internal/rules"
	"github.com/kortschak/ice/platform"
)

func probe(ctx context.Context, env *environment, args []string) int {
	fs := newFlagSet("probe")
	jsonOut := fs.Bool("json", false, "print the report as JSON")
	err := fs.Parse(args)
	if err != nil || fs.NArg() != 0 {
		if err == nil {
			fs.Usage()
		}
		return invocationError
	}

	rep := platform.Probe(ctx, platform.Host())
	env.log.LogAttrs(ctx, slog.LevelDebug, "probe", slog.Any("report", rep))
	if *jsonOut {
		b, err := json.MarshalIndent(rep, "", "\t")
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return internalError
		}
		fmt.Printf("%s\n", b)
		return success
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 8, 1, ' ', 0)
	fmt.Fprintf(w, "os:\t%s/%s\n", rep.GOOS, rep.GOARCH)
	fmt.Fprintf(w, "arch:\t%s\n", rep.Arch)
	cores := strconv.Itoa(rep.Cores)
	if !rep.Reliable {
		cores += " (fallback)"
	}
	fmt.Fprintf(w, "cores:\t%s\n", cores)
	if rep.Physical != 0 {
		fmt.Fprintf(w, "physical cores:\t%d\n", rep.Physical)
	}
	fmt.Fprintf(w, "total memory:\t%d\n", rep.TotalMemory)
	fmt.Fprintf(w, "free memory:\t%d\n", rep.FreeMemory)
	if rep.MemoryLimit != 0 {
		fmt.Fprintf(w, "memory limit:\t%d\n", rep.MemoryLimit)
	}
	fmt.Fprintf(w, "clipboard strategies:\t%s\n", strings.Join(rep.Strategies, " "))
	fields := make([]string, 0, len(rep.Errors))
	for f := range rep.Errors {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	for _, f := range fields {
		fmt.Fprintf(w, "%s error:\t%s\n", f, rep.Errors[f])
	}
	err = w.Flush()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return internalError
	}
	return success
}

// check evaluates CEL rules from the command line and configuration
// against the host report. It returns success only if every rule is true.
func check(ctx context.Context, env *environment, args []string) int {
	fs := newFlagSet("check")
	var named stringList
	fs.Var(&named, "rule", "named rule from the configuration to evaluate (repeatable)")
	err := fs.Parse(args)
	if err != nil {
		return invocationError
	}

	type source struct {
		name, src string
	}
	var srcs []source
	for _, name := range named {
		src, ok := env.cfg.Rules[name]
		if !ok {
			fmt.Fprintf(os.Stderr, "no rule %q in configuration\n", name)
			return invocationError
		}
		srcs = append(srcs, source{name: name, src: src})
	}
	for _, expr := range fs.Args() {
		srcs = append(srcs, source{name: expr, src: expr})
	}
	if len(srcs) == 0 {
		names := make([]string, 0, len(env.cfg.Rules))
		for name := range env.cfg.Rules {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			srcs = append(srcs, source{name: name, src: env.cfg.Rules[name]})
		}
	}
	if len(srcs) == 0 {
		fmt.Fprintln(os.Stderr, "no rules to check")
		fs.Usage()
		return invocationError
	}

	prgs := make([]*rules.Rule, len(srcs))
	for i, s := range srcs {
		prgs[i], err = rules.Compile(s.src)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid rule %s: %v\n", s.name, err)
			return invocationError
		}
	}

	rep := platform.Probe(ctx, platform.Host())
	status := success
	for i, r := range prgs {
		ok, err := r.Eval(rep)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to evaluate rule %s: %v\n", srcs[i].name, err)
			return invocationError
		}
		env.log.LogAttrs(ctx, slog.LevelDebug, "check", slog.String("rule", srcs[i].name), slog.Bool("result", ok))
		fmt.Printf("%s\t%t\n", srcs[i].name, ok)
		if !ok {
			status = internalError
		}
	}
	return status
}

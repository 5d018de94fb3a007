// Copyright ©2026 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package rules implements CEL capability rules evaluated against
// a platform report.
//
// Rules are boolean CEL expressions over the variables
//
//	goos         string
//	goarch       string
//	arch         string        "unknown", "x86" or "x86_64"
//	cores        int
//	physical     int
//	total_memory uint          bytes
//	free_memory  uint          bytes
//	memory_limit uint          bytes, zero if unconstrained
//	strategies   list(string)  clipboard strategies
//
// and the function
//
//	parse_size(string) -> uint
//
// which parses a size with an optional unit (B, KB, MB, GB, TB, KiB,
// MiB, GiB or TiB), for example
//
//	cores >= 4 && total_memory >= parse_size("8GiB") && "xorg" in strategies
package rules

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"

	"github.com/kortschak/ice/platform"
)

// Rule is a compiled capability rule.
type Rule struct {
	Src string
	prg cel.Program
}

// Compile returns a compiled Rule from src.
func Compile(src string) (*Rule, error) {
	env, err := cel.NewEnv(
		cel.Lib(sizeLib{}),
		cel.Variable("goos", cel.StringType),
		cel.Variable("goarch", cel.StringType),
		cel.Variable("arch", cel.StringType),
		cel.Variable("cores", cel.IntType),
		cel.Variable("physical", cel.IntType),
		cel.Variable("total_memory", cel.UintType),
		cel.Variable("free_memory", cel.UintType),
		cel.Variable("memory_limit", cel.UintType),
		cel.Variable("strategies", cel.ListType(cel.StringType)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create env: %v", err)
	}

	ast, iss := env.Compile(src)
	if iss.Err() != nil {
		return nil, fmt.Errorf("failed compilation: %v", iss.Err())
	}
	if !ast.OutputType().IsExactType(cel.BoolType) && !ast.OutputType().IsExactType(cel.DynType) {
		return nil, fmt.Errorf("rule must be boolean: got %s", ast.OutputType())
	}

	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("failed program instantiation: %v", err)
	}
	return &Rule{Src: src, prg: prg}, nil
}

// Eval evaluates the rule against r.
func (r *Rule) Eval(rep platform.Report) (bool, error) {
	out, _, err := r.prg.Eval(rep.Vars())
	if err != nil {
		return false, fmt.Errorf("failed eval: %v", err)
	}
	ok, isBool := out.Value().(bool)
	if !isBool {
		return false, fmt.Errorf("rule result is not boolean: %v (%T)", out.Value(), out.Value())
	}
	return ok, nil
}

type sizeLib struct{}

func (sizeLib) ProgramOptions() []cel.ProgramOption { return nil }

func (l sizeLib) CompileOptions() []cel.EnvOption {
	return []cel.EnvOption{
		cel.Function("parse_size",
			cel.Overload(
				"parse_size_string_uint",
				[]*cel.Type{cel.StringType},
				cel.UintType,
				cel.UnaryBinding(l.parseSize),
			),
		),
	}
}

func (sizeLib) parseSize(arg ref.Val) ref.Val {
	s, ok := arg.(types.String)
	if !ok {
		return types.NewErr("invalid type for parse_size: %T", arg)
	}
	n, err := parseSize(string(s))
	if err != nil {
		return types.NewErr("%v", err)
	}
	return types.Uint(n)
}

var units = []struct {
	suffix string
	scale  uint64
}{
	// Longest suffixes first so that "KiB" is not taken as "B".
	{"KiB", 1 << 10},
	{"MiB", 1 << 20},
	{"GiB", 1 << 30},
	{"TiB", 1 << 40},
	{"KB", 1e3},
	{"MB", 1e6},
	{"GB", 1e9},
	{"TB", 1e12},
	{"B", 1},
}

// parseSize parses a byte size with an optional unit suffix.
func parseSize(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	scale := uint64(1)
	for _, u := range units {
		if strings.HasSuffix(s, u.suffix) {
			s = strings.TrimSpace(strings.TrimSuffix(s, u.suffix))
			scale = u.scale
			break
		}
	}
	if n, err := strconv.ParseUint(s, 10, 64); err == nil {
		if n != 0 && n*scale/n != scale {
			return 0, fmt.Errorf("size overflows: %s", s)
		}
		return n * scale, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("invalid size: %q", s)
	}
	f *= float64(scale)
	if f >= 1<<64 {
		return 0, fmt.Errorf("size overflows: %s", s)
	}
	return uint64(f), nil
}

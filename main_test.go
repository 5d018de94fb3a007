// Copyright ©2026 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/rogpeppe/go-internal/gotooltest"
	"github.com/rogpeppe/go-internal/testscript"

	"github.com/kortschak/ice/rpc"
)

var (
	update = flag.Bool("update", false, "update tests")
	keep   = flag.Bool("keep", false, "keep $WORK directory after tests")
)

func TestMain(m *testing.M) {
	os.Exit(testscript.RunMain(m, map[string]func() int{
		"ice":    Main,
		"client": client,
	}))
}

func TestScripts(t *testing.T) {
	t.Parallel()

	p := testscript.Params{
		Dir:           filepath.Join("testdata"),
		UpdateScripts: *update,
		TestWork:      *keep,
		Cmds: map[string]func(ts *testscript.TestScript, neg bool, args []string){
			"sleep":          sleep,
			"grep_from_file": grep,
		},
	}
	if err := gotooltest.Setup(&p); err != nil {
		t.Fatal(err)
	}
	testscript.Run(t, p)
}

func TestCommandUsage(t *testing.T) {
	for name, cmd := range commands {
		t.Run(name, func(t *testing.T) {
			if cmd.run == nil {
				t.Fatal("command has no run function")
			}
			var buf bytes.Buffer
			fs := newFlagSet(name)
			fs.SetOutput(&buf)
			fs.Usage()
			if !strings.Contains(buf.String(), cmd.usage) {
				t.Errorf("flag set usage does not include command usage:\ngot: %s\nwant:%s", &buf, cmd.usage)
			}
		})
	}
}

func sleep(ts *testscript.TestScript, neg bool, args []string) {
	if neg {
		ts.Fatalf("unsupported: ! sleep")
	}
	if len(args) != 1 {
		ts.Fatalf("usage: sleep duration")
	}
	d, err := time.ParseDuration(args[0])
	ts.Check(err)
	time.Sleep(d)
}

func grep(ts *testscript.TestScript, neg bool, args []string) {
	if len(args) != 2 {
		ts.Fatalf("usage: grep_from_file pattern_file data")
	}
	pattern, err := os.ReadFile(ts.MkAbs(args[0]))
	ts.Check(err)
	data, err := os.ReadFile(ts.MkAbs(args[1]))
	ts.Check(err)
	re, err := regexp.Compile("(?m)" + string(pattern))
	ts.Check(err)

	if neg {
		if re.Match(data) {
			ts.Logf("[grep_from_file]\n%s\n", data)
			ts.Fatalf("unexpected match for %#q found in grep_from_file: %s\n", pattern, re.Find(data))
		}
	} else {
		if !re.Match(data) {
			ts.Logf("[grep_from_file]\n%s\n", data)
			ts.Fatalf("no match for %#q found in grep_from_file", pattern)
		}
	}
}

// client is a minimal RPC client for exercising ice serve. It retries
// dialing until the server is available or the timeout is reached.
func client() int {
	timeout := flag.Duration("timeout", 10*time.Second, "dial timeout")
	flag.Parse()
	if flag.NArg() < 3 {
		fmt.Fprintln(os.Stderr, "usage: client [-timeout d] <network> <addr> <method> [text]")
		return 2
	}
	network, addr, method := flag.Arg(0), flag.Arg(1), flag.Arg(2)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()
	var (
		c   *rpc.Client
		err error
	)
	for {
		c, err = rpc.Dial(ctx, network, addr)
		if err == nil {
			break
		}
		select {
		case <-ctx.Done():
			fmt.Fprintf(os.Stderr, "failed dial: %v\n", err)
			return 1
		case <-time.After(50 * time.Millisecond):
		}
	}
	defer c.Close()

	var result any
	switch method {
	case "who":
		result, err = c.Who(ctx)
	case "probe":
		result, err = c.Probe(ctx)
	case "status":
		result, err = c.Status(ctx)
	case "get":
		result, err = c.Get(ctx)
	case "set":
		if flag.NArg() != 4 {
			fmt.Fprintln(os.Stderr, "usage: client <network> <addr> set <text>")
			return 2
		}
		err = c.Set(ctx, flag.Arg(3))
		result = "done"
	case "clear":
		err = c.Clear(ctx)
		result = "done"
	case "matches":
		if flag.NArg() != 4 {
			fmt.Fprintln(os.Stderr, "usage: client <network> <addr> matches <text>")
			return 2
		}
		result, err = c.Matches(ctx, flag.Arg(3))
	case "stop":
		err = c.Stop(ctx)
		result = "sent"
	default:
		fmt.Fprintf(os.Stderr, "unknown method: %s\n", method)
		return 2
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed %s: %v\n", method, err)
		return 1
	}
	b, err := json.MarshalIndent(result, "", "\t")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed format JSON data: %v\n", err)
		return 1
	}
	fmt.Printf("%s\n", b)
	return 0
}

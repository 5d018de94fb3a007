// Copyright ©2026 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package locked provides concurrency-safe helpers.
package locked

import (
	"bufio"
	"bytes"
	"strings"
	"sync"
)

// BytesBuffer is a bytes.Buffer that may be written to from
// multiple goroutines, such as a log sink shared by a server and
// its connections.
type BytesBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *BytesBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	n, err := b.buf.Write(p)
	b.mu.Unlock()
	return n, err
}

func (b *BytesBuffer) String() string {
	b.mu.Lock()
	s := b.buf.String()
	b.mu.Unlock()
	return s
}

// Grep returns the lines written to the buffer that contain substr.
func (b *BytesBuffer) Grep(substr string) []string {
	var lines []string
	sc := bufio.NewScanner(strings.NewReader(b.String()))
	sc.Buffer(nil, 1<<20)
	for sc.Scan() {
		if strings.Contains(sc.Text(), substr) {
			lines = append(lines, sc.Text())
		}
	}
	return lines
}

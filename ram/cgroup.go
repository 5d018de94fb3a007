// Copyright ©2026 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ram

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"
)

// Paths are relative to the root of the file system passed to cgroupLimit.
const (
	cgroupV2Current = "sys/fs/cgroup/memory.current"
	cgroupV2Max     = "sys/fs/cgroup/memory.max"
	cgroupV2Stat    = "sys/fs/cgroup/memory.stat"

	cgroupV1Usage = "sys/fs/cgroup/memory/memory.usage_in_bytes"
	cgroupV1Limit = "sys/fs/cgroup/memory/memory.limit_in_bytes"
	cgroupV1Stat  = "sys/fs/cgroup/memory/memory.stat"

	// cgroup v1 reports an unconstrained group with a page-aligned
	// value near the maximum int64.
	cgroupV1Unlimited = 1 << 60
)

// cgroupLimit returns the memory limit and available memory of the
// control group described by fsys, trying cgroup v2 and then v1.
func cgroupLimit(fsys fs.FS) (Stats, error) {
	s, err := cgroupV2(fsys)
	switch {
	case err == nil:
		return s, nil
	case errors.Is(err, ErrNoLimit):
		return Stats{}, err
	}
	v2err := err
	s, err = cgroupV1(fsys)
	switch {
	case err == nil:
		return s, nil
	case errors.Is(err, ErrNoLimit):
		return Stats{}, err
	case errors.Is(v2err, fs.ErrNotExist) && errors.Is(err, fs.ErrNotExist):
		return Stats{}, ErrNoLimit
	}
	return Stats{}, errors.Join(v2err, err)
}

func cgroupV2(fsys fs.FS) (Stats, error) {
	limit, err := readCgroupValue(fsys, cgroupV2Max)
	if err != nil {
		return Stats{}, fmt.Errorf("cgroup v2 limit: %w", err)
	}
	usage, err := readCgroupValue(fsys, cgroupV2Current)
	if err != nil {
		return Stats{}, fmt.Errorf("cgroup v2 usage: %w", err)
	}
	inactive, err := readCgroupStat(fsys, cgroupV2Stat, "inactive_file")
	if err != nil {
		inactive = 0
	}
	return available(limit, usage, inactive), nil
}

func cgroupV1(fsys fs.FS) (Stats, error) {
	limit, err := readCgroupValue(fsys, cgroupV1Limit)
	if err != nil {
		return Stats{}, fmt.Errorf("cgroup v1 limit: %w", err)
	}
	if limit > cgroupV1Unlimited {
		return Stats{}, ErrNoLimit
	}
	usage, err := readCgroupValue(fsys, cgroupV1Usage)
	if err != nil {
		return Stats{}, fmt.Errorf("cgroup v1 usage: %w", err)
	}
	inactive, err := readCgroupStat(fsys, cgroupV1Stat, "total_inactive_file")
	if err != nil {
		inactive = 0
	}
	return available(limit, usage, inactive), nil
}

// available returns the limit and the memory available under it,
// counting reclaimable page cache as available.
func available(limit, usage, inactive uint64) Stats {
	var free uint64
	if usage > limit {
		free = inactive
	} else {
		free = limit - usage + inactive
	}
	return Stats{Total: limit, Free: min(free, limit)}
}

func readCgroupValue(fsys fs.FS, path string) (uint64, error) {
	b, err := fs.ReadFile(fsys, path)
	if err != nil {
		return 0, err
	}
	s := strings.TrimSpace(string(b))
	if s == "max" {
		return 0, ErrNoLimit
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid value %q in %s: %w", s, path, err)
	}
	return v, nil
}

func readCgroupStat(fsys fs.FS, path, key string) (uint64, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		fields := bytes.Fields(sc.Bytes())
		if len(fields) < 2 || string(fields[0]) != key {
			continue
		}
		v, err := strconv.ParseUint(string(fields[1]), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid value for %s in %s: %w", key, path, err)
		}
		return v, nil
	}
	if err := sc.Err(); err != nil {
		return 0, fmt.Errorf("reading %s: %w", path, err)
	}
	return 0, fmt.Errorf("%s not found in %s", key, path)
}

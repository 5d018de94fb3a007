// Copyright ©2026 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build !unix && !windows

package xdg

const (
	_HOME = "HOME"

	key_XDG_CONFIG_HOME = ""
	def_XDG_CONFIG_HOME = ".config"

	key_XDG_CONFIG_DIRS = ""
	def_XDG_CONFIG_DIRS = ""

	key_XDG_STATE_HOME = ""
	def_XDG_STATE_HOME = ".local/state"

	key_XDG_RUNTIME_DIR = ""
	def_XDG_RUNTIME_DIR = ""
)

// Copyright ©2026 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package xdg

// The XDG variables are honoured when set, otherwise the macOS
// Application Support directories are used. The per-user TMPDIR
// stands in for the runtime directory.
const (
	_HOME = "HOME"

	key_XDG_CONFIG_HOME = "XDG_CONFIG_HOME"
	def_XDG_CONFIG_HOME = "Library/Application Support"

	key_XDG_CONFIG_DIRS = "XDG_CONFIG_DIRS"
	def_XDG_CONFIG_DIRS = "/Library/Application Support"

	key_XDG_STATE_HOME = "XDG_STATE_HOME"
	def_XDG_STATE_HOME = "Library/Application Support"

	key_XDG_RUNTIME_DIR = "TMPDIR"
	def_XDG_RUNTIME_DIR = ""
)

// Copyright ©2026 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package xdg

// https://learn.microsoft.com/en-us/windows/win32/shell/knownfolderid
const (
	_HOME = "USERPROFILE"

	key_XDG_CONFIG_HOME = "APPDATA"
	def_XDG_CONFIG_HOME = `AppData\Roaming`

	key_XDG_CONFIG_DIRS = "PROGRAMDATA"
	def_XDG_CONFIG_DIRS = `C:\ProgramData`

	key_XDG_STATE_HOME = "LOCALAPPDATA"
	def_XDG_STATE_HOME = `AppData\Local`

	key_XDG_RUNTIME_DIR = "LOCALAPPDATA"
	def_XDG_RUNTIME_DIR = `AppData\Local`
)

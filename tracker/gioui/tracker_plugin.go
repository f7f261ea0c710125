//go:build plugin

package gioui

// the host owns the lifetime of the plugin, so the editor cannot quit
var canQuit = false

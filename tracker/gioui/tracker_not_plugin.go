//go:build !plugin

package gioui

var canQuit = true

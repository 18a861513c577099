// Package tui implements the interactive terminal UI for the dmxlink
// tools.
//
// The universe monitor polls one universe on a fixed interval and renders
// all 512 channel values as a grid, dimming channels at zero. Arrow keys
// switch between universes; q quits.
package tui

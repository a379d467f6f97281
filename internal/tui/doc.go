// Package tui provides the interactive prompts of the command line.
//
// It handles:
//   - Yes/no confirmation and text input (using bubbletea and bubbles)
//   - Choosing from a list (using survey)
//   - Detecting whether a terminal is attached
//
// Prompts refuse to run when GITSTACK_NO_INTERACTIVE is set so scripted
// and test runs never block on input.
package tui

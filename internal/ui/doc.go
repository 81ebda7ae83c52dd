// Package ui renders tagged report text for the console.
//
// Each tag maps to a lipgloss style; output that is not a terminal, or a
// terminal without color support, receives the text unchanged.
package ui

// Package ui provides shared terminal styling for the CLI commands.
//
// Styles are built on lipgloss and degrade gracefully on terminals
// without color support. Rendering helpers return strings; the caller
// decides where to print them.
package ui

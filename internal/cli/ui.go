package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/unolab/unolayout/pkg/pipeline"
)

// stdout receives all status output; tests swap it.
var stdout io.Writer = os.Stdout

// Palette (ANSI 256).
var (
	colorCyan  = lipgloss.Color("36")
	colorGreen = lipgloss.Color("35")
	colorRed   = lipgloss.Color("167")
	colorBlue  = lipgloss.Color("75")
	colorWhite = lipgloss.Color("255")
	colorGray  = lipgloss.Color("245")
	colorDim   = lipgloss.Color("240")
)

var (
	// StyleTitle renders headings such as component group names.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	// StyleHighlight renders recipe and component names inside messages.
	StyleHighlight = lipgloss.NewStyle().Foreground(colorCyan)
	// StyleDim renders secondary text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)
	// StyleValue renders paths and values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)
	styleKey         = lipgloss.NewStyle().Foreground(colorGray).Width(12)
	styleCommand     = lipgloss.NewStyle().Foreground(colorBlue)
	styleCached      = lipgloss.NewStyle().Foreground(colorGreen)
	styleFresh       = lipgloss.NewStyle().Foreground(colorGray)
)

// Status line markers.
var (
	markSuccess = lipgloss.NewStyle().Foreground(colorGreen).Render("✓")
	markError   = lipgloss.NewStyle().Foreground(colorRed).Render("✗")
	markInfo    = lipgloss.NewStyle().Foreground(colorGray).Render("›")
	markFile    = StyleDim.Render("→")
)

func status(mark, format string, args ...any) {
	fmt.Fprintln(stdout, mark+" "+fmt.Sprintf(format, args...))
}

func printSuccess(format string, args ...any) { status(markSuccess, format, args...) }
func printError(format string, args ...any)   { status(markError, format, args...) }
func printInfo(format string, args ...any)    { status(markInfo, format, args...) }

// printDetail prints an indented dim line.
func printDetail(format string, args ...any) {
	fmt.Fprintln(stdout, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints a written output path.
func printFile(path string) {
	fmt.Fprintln(stdout, "  "+markFile+" "+StyleValue.Render(path))
}

// printKeyValue prints one aligned "key value" row.
func printKeyValue(key, value string) {
	fmt.Fprintln(stdout, styleKey.Render(key)+" "+StyleValue.Render(value))
}

// printStats prints the build counters of one recipe and whether its
// artifacts came from the cache. Zero counters are left out.
func printStats(stats pipeline.Stats, cached bool) {
	var parts []string
	for _, c := range []struct {
		n    int
		unit string
	}{
		{stats.Placements, "placements"},
		{stats.Cells, "cells"},
		{stats.Polygons, "polygons"},
	} {
		if c.n > 0 {
			parts = append(parts, StyleDim.Render(fmt.Sprintf("%d %s", c.n, c.unit)))
		}
	}
	if cached {
		parts = append(parts, styleCached.Render("cached"))
	} else {
		parts = append(parts, styleFresh.Render("fresh"))
	}
	fmt.Fprintln(stdout, "  "+strings.Join(parts, StyleDim.Render(" · ")))
}

// printNextStep suggests a follow-up command.
func printNextStep(description, cmd string) {
	fmt.Fprintln(stdout, StyleDim.Render(description+":")+" "+styleCommand.Render(cmd))
}

func printNewline() {
	fmt.Fprintln(stdout)
}

// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package format provides CLI output formatting with TTY detection.
package format

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

var (
	finishStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2")) // green
	crashStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1")) // red
	startStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("3")) // yellow
	headerStyle = lipgloss.NewStyle().Bold(true)
)

// IsTTY reports whether stdout is a terminal.
func IsTTY() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

// Status renders a run status, colored when stdout is a terminal.
func Status(status string, isTTY bool) string {
	if !isTTY {
		return status
	}
	switch status {
	case "FINISH":
		return finishStyle.Render(status)
	case "CRASH":
		return crashStyle.Render(status)
	case "START":
		return startStyle.Render(status)
	}
	return status
}

// Header renders a table header, bold when stdout is a terminal.
func Header(text string, isTTY bool) string {
	if !isTTY {
		return text
	}
	return headerStyle.Render(text)
}

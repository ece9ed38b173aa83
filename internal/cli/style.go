package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

var (
	okStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	warnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	failStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	infoStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	dimStyle  = lipgloss.NewStyle().Faint(true)
)

// Status tags used in line-oriented output.
var (
	tagOK   = okStyle.Render("[ OK ]")
	tagFix  = okStyle.Render("[FIX ]")
	tagMiss = failStyle.Render("[MISS]")
	tagFail = failStyle.Render("[FAIL]")
	tagWarn = warnStyle.Render("[WARN]")
	tagInfo = infoStyle.Render("[INFO]")
)

func line(w io.Writer, tag, format string, args ...any) {
	fmt.Fprintf(w, "  %s %s\n", tag, fmt.Sprintf(format, args...))
}

package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/lukalafaye/LinkedinAutoApply/internal/forms"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 8
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintStep outputs a human-readable summary of a scanned form step.
func (p *Printer) PrintStep(number int, step *forms.Step) {
	if step == nil {
		return
	}

	var sb strings.Builder
	count := min(len(step.Elements), maxItemsToShow)
	for i := 0; i < count; i++ {
		el := step.Elements[i]
		sb.WriteString(fmt.Sprintf("• [%s] %s", el.Kind, el.Label))
		if el.Answered() {
			sb.WriteString(" (answered)")
		}
		sb.WriteString("\n")
	}
	if len(step.Elements) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("... and %d more\n", len(step.Elements)-maxItemsToShow))
	}
	if len(step.Skipped) > 0 {
		sb.WriteString(fmt.Sprintf("skipped: %d unclassifiable\n", len(step.Skipped)))
	}
	if step.Action != nil {
		sb.WriteString(fmt.Sprintf("action: %s", step.Action.Label))
		if step.Action.Submit {
			sb.WriteString(" (submit)")
		}
		sb.WriteString("\n")
	}

	p.printBox(fmt.Sprintf("STEP %d — %d ELEMENTS", number, len(step.Elements)), strings.TrimSuffix(sb.String(), "\n"))
}

// PrintResolution outputs one resolved answer in verbose mode.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintResolution(el *forms.Element, value string, fromCache bool) {
	source := "oracle"
	if fromCache {
		source = "cache"
	}
	fmt.Fprintf(p.out, "  %-22s %q ← %q (%s)\n", el.Kind, el.Label, value, source)
}

// PrintUsage outputs the accumulated oracle usage totals.
func (p *Printer) PrintUsage(a *Accountant) {
	calls, tokens, cost := a.Totals()
	content := fmt.Sprintf("Calls:  %d\nTokens: %d\nCost:   $%.6f", calls, tokens, cost)
	p.printBox("ORACLE USAGE", content)
}

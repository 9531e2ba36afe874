// Package observability provides formatted report output for the CLI.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/orphaned-data/internal/posttype"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 10
)

// TypeCount is one orphaned post type and how many posts still use it.
type TypeCount struct {
	Name  string
	Label string
	Count int
}

// OrphanReport is the result of a detection run.
type OrphanReport struct {
	TablePrefix string
	Types       []TypeCount
}

// TotalPosts sums the post counts of every orphaned type.
func (r *OrphanReport) TotalPosts() int {
	total := 0
	for _, t := range r.Types {
		total += t.Count
	}
	return total
}

// Printer handles formatted output for the CLI
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

	for _, line := range strings.Split(content, "\n") {
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintOrphanReport outputs the orphaned post types with their post counts.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintOrphanReport(report *OrphanReport) {
	if report == nil {
		return
	}
	if len(report.Types) == 0 {
		fmt.Fprintf(p.out, "┌%s┐\n", strings.Repeat("─", boxWidth-2))
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, "✅ NO ORPHANED POST TYPES FOUND")
		fmt.Fprintf(p.out, "└%s┘\n", strings.Repeat("─", boxWidth-2))
		return
	}

	var sb strings.Builder
	if report.TablePrefix != "" {
		sb.WriteString(fmt.Sprintf("Table:    %sposts\n", report.TablePrefix))
	}
	sb.WriteString(fmt.Sprintf("Found %d orphaned post types (%s):\n\n", len(report.Types), posts(report.TotalPosts())))

	count := min(len(report.Types), maxItemsToShow)
	for i := 0; i < count; i++ {
		t := report.Types[i]
		name := t.Name
		if t.Label != "" && t.Label != t.Name {
			name = fmt.Sprintf("%s (%s)", t.Name, t.Label)
		}
		if len(name) > 38 {
			name = name[:35] + "..."
		}
		sb.WriteString(fmt.Sprintf("• %-38s %s\n", name, posts(t.Count)))
	}
	if len(report.Types) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("... and %d more\n", len(report.Types)-maxItemsToShow))
	}

	p.printBox("ORPHANED POST TYPES", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintRegisteredTypes outputs the post types known to the registry.
func (p *Printer) PrintRegisteredTypes(defs []posttype.Definition) {
	if len(defs) == 0 {
		return
	}

	var sb strings.Builder
	for _, def := range defs {
		var flags []string
		if def.Public {
			flags = append(flags, "public")
		}
		if def.Placeholder {
			flags = append(flags, "placeholder")
		}
		sb.WriteString(fmt.Sprintf("• %-24s %s", def.Name, def.DisplayName()))
		if len(flags) > 0 {
			sb.WriteString(fmt.Sprintf(" [%s]", strings.Join(flags, ", ")))
		}
		sb.WriteString("\n")
	}

	p.printBox(fmt.Sprintf("REGISTERED POST TYPES (%d)", len(defs)), strings.TrimSuffix(sb.String(), "\n"))
}

func posts(n int) string {
	if n == 1 {
		return "1 post"
	}
	return fmt.Sprintf("%d posts", n)
}

package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"rivet/internal/diag"
	"rivet/internal/source"
)

// Pretty форматирует диагностики в человекочитаемый вид.
// Идёт по bag.Items() (ожидается bag.Sort() заранее).
// Для каждого diag печатает:
// <path>:<line>:<col>: <SEV> [<CODE>]: <Message>
// затем строку исходника с подчёркиванием ^~~~ по Span, затем Notes.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	for _, d := range bag.Items() {
		printDiagnostic(w, d, fs, opts)
	}
}

func printDiagnostic(w io.Writer, d diag.Diagnostic, fs *source.FileSet, opts PrettyOpts) {
	f := fs.Get(d.Primary.File)
	if f == nil {
		fmt.Fprintf(w, "<unknown>: %s [%s]: %s\n", d.Severity, d.Code.ID(), d.Message)
		return
	}
	start, _ := fs.Resolve(d.Primary)
	path := displayPath(f, fs, opts.PathMode)

	sev := d.Severity.String()
	code := fmt.Sprintf("[%s]", d.Code.ID())
	if opts.Color {
		sev = severityColor(d.Severity).Sprint(sev)
		code = color.New(color.Bold).Sprint(code)
	}
	fmt.Fprintf(w, "%s:%d:%d: %s %s: %s\n", path, start.Line, start.Col, sev, code, d.Message)

	printSnippet(w, f, fs, d.Primary, opts)

	if opts.ShowNotes {
		for _, n := range d.Notes {
			nf := fs.Get(n.Span.File)
			if nf == nil {
				fmt.Fprintf(w, "  note: %s\n", n.Msg)
				continue
			}
			nStart, _ := fs.Resolve(n.Span)
			label := "note:"
			if opts.Color {
				label = color.New(color.FgCyan).Sprint(label)
			}
			fmt.Fprintf(w, "  %s %s:%d:%d: %s\n", label, displayPath(nf, fs, opts.PathMode), nStart.Line, nStart.Col, n.Msg)
		}
	}
	if opts.ShowFixes {
		for _, fix := range d.Fixes {
			label := "help:"
			if opts.Color {
				label = color.New(color.FgGreen).Sprint(label)
			}
			fmt.Fprintf(w, "  %s %s\n", label, fix.Title)
		}
	}
}

// printSnippet печатает строку исходника и подчёркивание под Span.
// Многострочные span подчёркиваются только в первой строке.
func printSnippet(w io.Writer, f *source.File, fs *source.FileSet, span source.Span, opts PrettyOpts) {
	start, end := fs.Resolve(span)
	line := f.GetLine(start.Line)
	if line == "" && start.Line == 0 {
		return
	}
	fmt.Fprintf(w, "    %s\n", line)

	// отступ считаем по ширине реального префикса, табы сохраняем
	prefix := line
	if int(start.Col-1) <= len(line) {
		prefix = line[:start.Col-1]
	}
	pad := strings.Map(func(r rune) rune {
		if r == '\t' {
			return '\t'
		}
		return ' '
	}, prefix)

	width := 1
	if end.Line == start.Line && end.Col > start.Col {
		spanned := ""
		if int(end.Col-1) <= len(line) {
			spanned = line[start.Col-1 : end.Col-1]
		}
		if sw := runewidth.StringWidth(spanned); sw > 0 {
			width = sw
		}
	}
	marker := "^"
	if width > 1 {
		marker += strings.Repeat("~", width-1)
	}
	if opts.Color {
		marker = severityMarkerColor().Sprint(marker)
	}
	fmt.Fprintf(w, "    %s%s\n", pad, marker)
}

func severityColor(s diag.Severity) *color.Color {
	switch s {
	case diag.SevError:
		return color.New(color.FgRed, color.Bold)
	case diag.SevWarning:
		return color.New(color.FgYellow, color.Bold)
	default:
		return color.New(color.FgCyan)
	}
}

func severityMarkerColor() *color.Color {
	return color.New(color.FgRed, color.Bold)
}

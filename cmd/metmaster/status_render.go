package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"metmaster/internal/release"
	"metmaster/internal/staging"
)

// outcome is the state of one checked item: an input file, the current
// pointer, an artifact checksum or a leftover directory.
type outcome int

const (
	outcomeInfo outcome = iota
	outcomeOK
	outcomeCurrent
	outcomeStale
	outcomeMismatch
	outcomeMissing
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

func (o outcome) label() string {
	switch o {
	case outcomeOK:
		return "OK"
	case outcomeCurrent:
		return "CURRENT"
	case outcomeStale:
		return "STALE"
	case outcomeMismatch:
		return "MISMATCH"
	case outcomeMissing:
		return "MISSING"
	default:
		return "INFO"
	}
}

func (o outcome) color() string {
	switch o {
	case outcomeOK, outcomeCurrent:
		return ansiGreen
	case outcomeStale:
		return ansiYellow
	case outcomeMismatch, outcomeMissing:
		return ansiRed
	default:
		return ansiBlue
	}
}

type reportLine struct {
	section string
	label   string
	outcome outcome
	detail  string
}

// report collects status lines and renders them with labels padded to the
// widest one, so artifact names line up regardless of length.
type report struct {
	colorize bool
	lines    []reportLine
}

func newReport(w io.Writer) *report {
	return &report{colorize: shouldColorize(w)}
}

func (r *report) section(title string) {
	r.lines = append(r.lines, reportLine{section: strings.TrimSpace(title)})
}

func (r *report) add(label string, o outcome, detail string) {
	r.lines = append(r.lines, reportLine{label: label, outcome: o, detail: detail})
}

func (r *report) render(w io.Writer) {
	width := 0
	for _, l := range r.lines {
		if l.section == "" && len(l.label)+1 > width {
			width = len(l.label) + 1
		}
	}
	for i, l := range r.lines {
		if l.section != "" {
			if i > 0 {
				fmt.Fprintln(w)
			}
			header := fmt.Sprintf("== %s ==", l.section)
			rule := strings.Repeat("-", len(header))
			if r.colorize {
				header, rule = ansiBlue+header+ansiReset, ansiBlue+rule+ansiReset
			}
			fmt.Fprintln(w, header)
			fmt.Fprintln(w, rule)
			continue
		}
		text := fmt.Sprintf("[%s]", l.outcome.label())
		if l.detail != "" {
			text += " " + l.detail
		}
		line := fmt.Sprintf("  %-*s %s", width, l.label+":", text)
		if r.colorize {
			line = l.outcome.color() + line + ansiReset
		}
		fmt.Fprintln(w, line)
	}
}

// addArtifacts records one line per verified database: OK when the digest
// matches both checksums.txt and the manifest, MISMATCH otherwise.
func (r *report) addArtifacts(vr release.VerifyReport) {
	for _, name := range vr.Checked {
		o, detail := outcomeOK, "sha256 matches"
		var problems []string
		for _, m := range vr.Mismatches {
			if strings.HasPrefix(m.Name, name) {
				problems = append(problems, fmt.Sprintf("%s expected %s got %s",
					strings.TrimSpace(strings.TrimPrefix(m.Name, name)), shortDigest(m.Expected), shortDigest(m.Actual)))
			}
		}
		if len(problems) > 0 {
			o, detail = outcomeMismatch, strings.Join(problems, "; ")
		}
		r.add(name, o, detail)
	}
}

// addLeftover records an abandoned staging or temp-current directory.
func (r *report) addLeftover(dir staging.DirInfo, detail string) {
	r.add(dir.Name, outcomeStale, detail)
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

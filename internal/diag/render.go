package diag

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// Render formats every diagnostic in the bag for terminal display, in the
// teacher's "4-digit gutter + caret line" shape, adapted from a single point
// position to an underlined byte range: when a diagnostic's range sits on
// one line, its first byte is marked with '^' and every following byte in
// the range with '~', not just its start column.
//
// sm is the source map of file, the one file every diagnostic in bag is
// rendered against. When sm is nil, positions are printed as byte offsets
// and no source excerpt is shown.
func Render(file string, bag *Bag, sm *SourceMap, useColor bool) string {
	items := bag.Items()
	if len(items) == 0 {
		return ""
	}

	var sb strings.Builder
	if len(items) > 1 {
		fmt.Fprintf(&sb, "compilation failed with %d diagnostic(s):\n\n", len(items))
	}
	for i, d := range items {
		if len(items) > 1 {
			fmt.Fprintf(&sb, "[%d of %d]\n", i+1, len(items))
		}
		sb.WriteString(renderOne(file, d, sm, useColor))
		if i < len(items)-1 {
			sb.WriteString("\n\n")
		}
	}
	return sb.String()
}

func renderOne(file string, d Diagnostic, sm *SourceMap, useColor bool) string {
	var sb strings.Builder

	sev := d.Severity.String()
	if useColor {
		if d.Severity == Error {
			sev = color.New(color.FgRed, color.Bold).Sprint(sev)
		} else {
			sev = color.New(color.FgYellow, color.Bold).Sprint(sev)
		}
	}

	pos := Position{Line: 1, Column: 1}
	loc := fmt.Sprintf("offset %d", d.Range.Start)
	if sm != nil {
		pos = sm.Position(d.Range.Start)
		loc = fmt.Sprintf("%d:%d", pos.Line, pos.Column)
	}
	if file != "" {
		fmt.Fprintf(&sb, "%s: %s:%s: [%s] %s\n", sev, file, loc, d.Code, d.Message)
	} else {
		fmt.Fprintf(&sb, "%s: %s: [%s] %s\n", sev, loc, d.Code, d.Message)
	}

	if sm != nil {
		line := sm.Line(pos.Line)
		if line != "" {
			gutter := fmt.Sprintf("%4d | ", pos.Line)
			sb.WriteString(gutter)
			sb.WriteString(line)
			sb.WriteString("\n")

			underlineLen := 1
			endPos := sm.Position(d.Range.End)
			if d.Range.End > d.Range.Start && endPos.Line == pos.Line {
				underlineLen = endPos.Column - pos.Column
				if underlineLen < 1 {
					underlineLen = 1
				}
			}
			caret := strings.Repeat("~", underlineLen)
			if underlineLen == 1 {
				caret = "^"
			} else {
				caret = "^" + strings.Repeat("~", underlineLen-1)
			}
			if useColor {
				caret = color.New(color.FgRed, color.Bold).Sprint(caret)
			}
			sb.WriteString(strings.Repeat(" ", len(gutter)+pos.Column-1))
			sb.WriteString(caret)
			sb.WriteString("\n")
		}
	}

	for _, lbl := range d.Labels {
		lloc := fmt.Sprintf("offset %d", lbl.Range.Start)
		if sm != nil {
			lp := sm.Position(lbl.Range.Start)
			lloc = fmt.Sprintf("%d:%d", lp.Line, lp.Column)
		}
		fmt.Fprintf(&sb, "  note: %s (%s)\n", lbl.Message, lloc)
	}

	return strings.TrimSuffix(sb.String(), "\n")
}

// Package output renders command results for people and for scripts.
//
// A Printer writes one of three formats: styled terminal output built
// from the semantic styles in pkg/output/styles, plain text, or JSON.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/pterm/pterm"

	"github.com/arthur-debert/rla/pkg/errors"
	"github.com/arthur-debert/rla/pkg/orchestrator"
	"github.com/arthur-debert/rla/pkg/output/styles"
)

// Field is one labelled value of a summary
type Field struct {
	Label string `json:"label"`
	Value string `json:"value"`
	// Path marks values that are filesystem paths
	Path bool `json:"-"`
}

// Summary is the result of one command
type Summary struct {
	Title  string
	Fields []Field
	Tasks  []orchestrator.TaskResult
}

// Printer writes summaries and errors in a fixed format
type Printer struct {
	w        io.Writer
	format   Format
	renderer *lipgloss.Renderer
}

// NewPrinter creates a printer. FormatAuto is treated as text; callers
// resolve it against their output file first.
func NewPrinter(w io.Writer, format Format) *Printer {
	if format == FormatAuto {
		format = FormatText
	}
	r := lipgloss.NewRenderer(w)
	if format != FormatTerminal {
		r.SetColorProfile(termenv.Ascii)
	}
	return &Printer{w: w, format: format, renderer: r}
}

// Format is the format the printer writes
func (p *Printer) Format() Format { return p.format }

func (p *Printer) style(name string) lipgloss.Style {
	return styles.GetStyle(name).Renderer(p.renderer)
}

// Summary prints a command result
func (p *Printer) Summary(s Summary) error {
	switch p.format {
	case FormatJSON:
		return p.summaryJSON(s)
	case FormatTerminal:
		return p.summaryTerminal(s)
	default:
		return p.summaryText(s)
	}
}

func (p *Printer) summaryText(s Summary) error {
	var b strings.Builder
	b.WriteString(s.Title + "\n")
	for _, f := range s.Fields {
		fmt.Fprintf(&b, "  %s: %s\n", f.Label, f.Value)
	}
	for _, t := range s.Tasks {
		fmt.Fprintf(&b, "  [%s] %s (%s)", t.State, t.Name, round(t.Duration))
		if n := note(t); n != "" {
			fmt.Fprintf(&b, ": %s", firstLine(n))
		}
		b.WriteString("\n")
	}
	_, err := io.WriteString(p.w, b.String())
	return err
}

func (p *Printer) summaryTerminal(s Summary) error {
	var b strings.Builder
	b.WriteString(p.style("Header").Render(s.Title) + "\n")

	for _, f := range s.Fields {
		value := f.Value
		if f.Path {
			value = p.style("Path").Render(value)
		}
		b.WriteString(p.style("Indent").Render(p.style("Label").Render(f.Label)+" "+value) + "\n")
	}

	if len(s.Tasks) > 0 {
		data := pterm.TableData{{"Task", "State", "Time", "Note"}}
		for _, t := range s.Tasks {
			data = append(data, []string{t.Name, p.state(t.State), round(t.Duration).String(), firstLine(note(t))})
		}
		table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
		if err != nil {
			return err
		}
		b.WriteString("\n" + table + "\n")
	}

	_, err := io.WriteString(p.w, b.String())
	return err
}

// note is the error text shown for a task. Warnings of best effort tasks
// stay in the log.
func note(t orchestrator.TaskResult) string {
	if t.Err == nil || t.State != orchestrator.TaskFailed {
		return ""
	}
	return t.Err.Error()
}

func (p *Printer) state(s orchestrator.TaskState) string {
	switch s {
	case orchestrator.TaskCompleted:
		return p.style("Success").Render(string(s))
	case orchestrator.TaskWarned:
		return p.style("Warning").Render(string(s))
	case orchestrator.TaskFailed:
		return p.style("Error").Render(string(s))
	default:
		return p.style("Muted").Render(string(s))
	}
}

type jsonTask struct {
	Name     string `json:"name"`
	Phase    string `json:"phase"`
	State    string `json:"state"`
	Duration int64  `json:"duration_ms"`
	Error    string `json:"error,omitempty"`
}

type jsonSummary struct {
	Title  string            `json:"title"`
	Fields map[string]string `json:"fields,omitempty"`
	Tasks  []jsonTask        `json:"tasks,omitempty"`
}

func (p *Printer) summaryJSON(s Summary) error {
	out := jsonSummary{Title: s.Title}
	if len(s.Fields) > 0 {
		out.Fields = make(map[string]string, len(s.Fields))
		for _, f := range s.Fields {
			out.Fields[f.Label] = f.Value
		}
	}
	for _, t := range s.Tasks {
		jt := jsonTask{Name: t.Name, Phase: t.Phase, State: string(t.State), Duration: t.Duration.Milliseconds()}
		if n := note(t); n != "" {
			jt.Error = n
		}
		out.Tasks = append(out.Tasks, jt)
	}
	return p.encode(out)
}

// Error prints a failure with its code. Tool output carried in the error
// details is shown indented below the message.
func (p *Printer) Error(err error) error {
	if err == nil {
		return nil
	}
	code := errors.RootCode(err)
	details := errors.GetErrorDetails(err)
	toolOutput, _ := details["output"].(string)
	message := firstLine(err.Error())

	switch p.format {
	case FormatJSON:
		obj := map[string]interface{}{"error": err.Error(), "code": string(code)}
		if len(details) > 0 {
			obj["details"] = details
		}
		return p.encode(obj)
	case FormatTerminal:
		var b strings.Builder
		b.WriteString(fmt.Sprintf("%s %s\n", pterm.Error.Prefix.Text, p.style("Error").Render(message)))
		if toolOutput != "" {
			b.WriteString(p.style("Indent").Render(p.style("Code").Render(strings.TrimSpace(toolOutput))) + "\n")
		}
		_, werr := io.WriteString(p.w, b.String())
		return werr
	default:
		var b strings.Builder
		b.WriteString("error: " + message + "\n")
		for _, line := range strings.Split(strings.TrimSpace(toolOutput), "\n") {
			if line != "" {
				b.WriteString("  " + line + "\n")
			}
		}
		_, werr := io.WriteString(p.w, b.String())
		return werr
	}
}

// Line prints a single message
func (p *Printer) Line(msg string) error {
	if p.format == FormatJSON {
		return p.encode(map[string]string{"message": msg})
	}
	_, err := fmt.Fprintln(p.w, msg)
	return err
}

func (p *Printer) encode(v interface{}) error {
	enc := json.NewEncoder(p.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func round(d time.Duration) time.Duration {
	return d.Round(time.Millisecond)
}

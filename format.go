package n8nstatus

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
)

// ClassifiedExecution pairs a record with its derived presentation fields
// and optional failure details. This is the unit the formatter renders.
type ClassifiedExecution struct {
	Record   ExecutionRecord
	Status   PresentationStatus
	Duration *time.Duration
	Details  *ErrorDetails
}

var statusColors = map[PresentationStatus]*color.Color{
	StatusSuccess:  color.New(color.FgGreen),
	StatusError:    color.New(color.FgRed),
	StatusRunning:  color.New(color.FgCyan),
	StatusWaiting:  color.New(color.FgHiBlack),
	StatusCanceled: color.New(color.FgMagenta),
}

var (
	boldText   = color.New(color.Bold)
	errorText  = color.New(color.FgRed)
	yellowText = color.New(color.FgYellow)
)

// deletedWorkflowPlaceholder is shown when the execution's workflow no
// longer exists.
const deletedWorkflowPlaceholder = "(deleted)"

const maxErrorMessageLength = 100

// Formatter renders classified executions to a writer. Color degrades
// automatically when the writer is not a terminal (fatih/color handles
// NO_COLOR and tty detection globally).
type Formatter struct {
	out io.Writer
}

// NewFormatter creates a formatter writing to out.
func NewFormatter(out io.Writer) *Formatter {
	return &Formatter{out: out}
}

// RenderList prints one aligned, color-coded row per execution. Column
// widths are sized to the widest value in the batch. An empty batch prints a
// one-line notice instead of a bare header.
func (f *Formatter) RenderList(executions []ClassifiedExecution) {
	if len(executions) == 0 {
		fmt.Fprintln(f.out, "No executions found.")
		return
	}

	headers := []string{"ID", "WORKFLOW", "STATUS", "STARTED", "DURATION", "MODE"}
	const statusColumn = 2

	rows := make([][]string, 0, len(executions))
	for _, exec := range executions {
		rows = append(rows, []string{
			exec.Record.ID,
			workflowLabel(exec.Record),
			string(exec.Status),
			formatStartedAt(exec.Record.StartedAt),
			FormatDuration(exec.Duration),
			exec.Record.Mode,
		})
	}

	widths := columnWidths(headers, rows)

	var header strings.Builder
	for i, h := range headers {
		header.WriteString(pad(h, widths[i]))
	}
	fmt.Fprintln(f.out, boldText.Sprint(strings.TrimRight(header.String(), " ")))
	fmt.Fprintln(f.out, strings.Repeat("-", lineWidth(widths)))

	for i, row := range rows {
		var line strings.Builder
		for col, cell := range row {
			padded := pad(cell, widths[col])
			if col == statusColumn {
				// Colorize the value only; padding stays plain so ANSI codes
				// never skew the alignment.
				padded = statusText(executions[i].Status, cell) + strings.Repeat(" ", len(padded)-len(cell))
			}
			line.WriteString(padded)
		}
		fmt.Fprintln(f.out, strings.TrimRight(line.String(), " "))

		f.printAnnotations(executions[i])
	}
}

// printAnnotations writes the indented detail lines that follow a failed or
// retried execution's row.
func (f *Formatter) printAnnotations(exec ClassifiedExecution) {
	if exec.Status == StatusError && exec.Details != nil {
		message := truncate(exec.Details.Message, maxErrorMessageLength)
		fmt.Fprintf(f.out, "    %s\n", errorText.Sprintf("Error: %s (%s)", message, exec.Details.Node()))
	}
	if exec.Record.RetryOf != nil {
		fmt.Fprintf(f.out, "    %s\n", yellowText.Sprintf("Retry of execution %s", *exec.Record.RetryOf))
	}
}

// RenderDetail prints every attribute of one execution as labeled fields,
// one per line.
func (f *Formatter) RenderDetail(exec ClassifiedExecution) {
	fields := []struct {
		label string
		value string
	}{
		{"ID", exec.Record.ID},
		{"Workflow", workflowLabel(exec.Record)},
		{"Workflow ID", exec.Record.WorkflowID},
		{"Status", statusText(exec.Status, string(exec.Status))},
		{"Raw Status", exec.Record.Status},
		{"Started", formatStartedAt(exec.Record.StartedAt)},
		{"Stopped", formatStoppedAt(exec.Record.StoppedAt)},
		{"Duration", FormatDuration(exec.Duration)},
		{"Mode", exec.Record.Mode},
		{"Finished", fmt.Sprintf("%t", exec.Record.Finished)},
	}
	if exec.Record.RetryOf != nil {
		fields = append(fields, struct{ label, value string }{"Retry Of", *exec.Record.RetryOf})
	}
	if exec.Details != nil {
		fields = append(fields,
			struct{ label, value string }{"Error", errorText.Sprint(exec.Details.Message)},
			struct{ label, value string }{"Failed Node", exec.Details.Node()},
		)
	}

	for _, field := range fields {
		fmt.Fprintf(f.out, "%-12s %s\n", field.label+":", field.value)
	}
}

func workflowLabel(rec ExecutionRecord) string {
	if rec.WorkflowName == nil {
		return deletedWorkflowPlaceholder
	}
	return *rec.WorkflowName
}

func statusText(status PresentationStatus, text string) string {
	if c, ok := statusColors[status]; ok {
		return c.Sprint(text)
	}
	return text
}

func formatStartedAt(t time.Time) string {
	if t.IsZero() {
		return "N/A"
	}
	return t.Local().Format("2006-01-02 15:04:05")
}

func formatStoppedAt(t *time.Time) string {
	if t == nil {
		return "—"
	}
	return t.Local().Format("2006-01-02 15:04:05")
}

// FormatDuration renders a duration as "1h 2m 5s", omitting zero-valued
// leading units, or "—" when unknown.
func FormatDuration(d *time.Duration) string {
	if d == nil {
		return "—"
	}
	total := int(d.Seconds())
	if total < 0 {
		total = 0
	}
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60

	switch {
	case hours > 0:
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	case minutes > 0:
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	default:
		return fmt.Sprintf("%ds", seconds)
	}
}

func columnWidths(headers []string, rows [][]string) []int {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if w := displayWidth(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}
	return widths
}

// displayWidth counts runes, not bytes, so the em dash placeholder does not
// inflate its column.
func displayWidth(s string) int {
	return len([]rune(s))
}

func pad(s string, width int) string {
	const gap = 2
	padding := width - displayWidth(s) + gap
	if padding < gap {
		padding = gap
	}
	return s + strings.Repeat(" ", padding)
}

func lineWidth(widths []int) int {
	total := 0
	for _, w := range widths {
		total += w + 2
	}
	return total
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"

	"github.com/pac-william/mercado/internal/common/eventbus"
	"github.com/pac-william/mercado/internal/storefront/suggestion"
)

var taskLabel = color.New(color.FgHiMagenta, color.Bold)
var startLabel = color.New(color.FgGreen).Add(color.Bold)
var endLabel = color.New(color.FgRed).Add(color.Bold)
var captionColor = color.New(color.FgCyan)
var systemColor = color.New(color.FgHiWhite, color.Faint)

// progressPrinter renders suggestion controller events as a timeline.
type progressPrinter struct {
	w     io.Writer
	start time.Time
	now   func() time.Time
}

func newProgressPrinter(w io.Writer) *progressPrinter {
	return &progressPrinter{w: w, now: time.Now}
}

// Handle prints one event from the suggestion topics.
func (p *progressPrinter) Handle(e eventbus.Event) {
	switch ev := e.Data.(type) {
	case suggestion.StateEvent:
		p.state(ev)
	case suggestion.CaptionEvent:
		p.caption(ev)
	}
}

func (p *progressPrinter) state(ev suggestion.StateEvent) {
	switch ev.Status {
	case suggestion.Running:
		p.start = p.now()
		taskLabel.Fprintf(p.w, "\nTask ID: %s\n", ev.TaskID)
		startLabel.Fprintf(p.w, "    Start: %s\n\n", p.start.Local().Format("2006-01-02 15:04:05.000 MST"))
	case suggestion.Succeeded:
		p.line(systemColor, "▶ suggestion ready at "+ev.Destination)
	case suggestion.Failed:
		p.line(color.New(color.FgHiRed), "❗ "+errString(ev.Err))
	case suggestion.Cancelled:
		p.line(color.New(color.FgYellow), "■ cancelled")
	case suggestion.Idle:
		endLabel.Fprintf(p.w, "\n    End:   %s\n", p.now().Local().Format("2006-01-02 15:04:05.000 MST"))
	}
}

func (p *progressPrinter) caption(ev suggestion.CaptionEvent) {
	p.line(captionColor, fmt.Sprintf("%s…", ev.Caption))
}

func (p *progressPrinter) line(c *color.Color, msg string) {
	fmt.Fprint(p.w, "  "+p.timestamp()+" ")
	c.Fprintln(p.w, msg)
}

// timestamp is the time since the task started, e.g. [00:02.500].
func (p *progressPrinter) timestamp() string {
	relative := p.now().Sub(p.start)
	if p.start.IsZero() || relative < 0 {
		relative = 0
	}
	return fmt.Sprintf("[%02d:%02d.%03d]",
		int(relative.Minutes()),
		int(relative.Seconds())%60,
		relative.Milliseconds()%1000,
	)
}

func errString(err error) string {
	if err == nil {
		return "failed"
	}
	return err.Error()
}

package console

import (
	"fmt"
	"io"
	"sync"
	"time"

	"breakreminder/internal/domain/entity"
)

const clockFormat = "3:04 PM"

// Presenter rewrites a single status line with the next alert time and
// optionally mirrors the time into the terminal title.
type Presenter struct {
	mu    sync.Mutex
	w     io.Writer
	title bool
}

// NewPresenter creates a Presenter writing to w. title enables the OSC 0
// window title sequence.
func NewPresenter(w io.Writer, title bool) *Presenter {
	return &Presenter{w: w, title: title}
}

// Banner prints the program name, version and key help.
func (p *Presenter) Banner(name, version string, keyboard bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.w, "%s %s\n", name, version)
	if keyboard {
		fmt.Fprintln(p.w, "Keys: [P]lay now, [F]requency, [L]ead time, [Q]uit (also X, C, Esc)")
	}
	fmt.Fprintln(p.w)
}

// Display replaces the status line, e.g. "Next alert: 3:05 PM (2/hour, 10 min lead)".
func (p *Presenter) Display(next time.Time, cfg entity.Configuration) {
	at := next.Format(clockFormat)
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.title {
		fmt.Fprintf(p.w, "\x1b]0;%s\x1b\\", at)
	}
	fmt.Fprintf(p.w, "\r\x1b[2KNext alert: %s (%s)", at, cfg)
}

// Close ends the status line so following output starts on a fresh line.
func (p *Presenter) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.w)
}

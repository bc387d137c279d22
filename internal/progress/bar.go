package progress

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"golang.org/x/term"
)

const defaultBarWidth = 80

// Bar renders the combined progress of every tracked job as a single bar.
// On a terminal it redraws in place; otherwise it prints a line each time
// the overall percentage crosses a multiple of ten.
type Bar struct {
	mu          sync.Mutex
	out         io.Writer
	interactive bool
	width       int

	current int
	total   int
	active  int
	label   string
	printed int
}

// NewBar returns a Bar drawing to f, detecting whether f is a terminal.
func NewBar(f *os.File) *Bar {
	b := NewBarWriter(f)
	fd := int(f.Fd())
	if term.IsTerminal(fd) {
		b.interactive = true
		if cols, _, err := term.GetSize(fd); err == nil && cols > 0 {
			b.width = cols
		}
	}
	return b
}

// NewBarWriter returns a non-interactive Bar writing to w.
func NewBarWriter(w io.Writer) *Bar {
	return &Bar{out: w, width: defaultBarWidth, printed: -1}
}

// Track implements Reporter.
func (b *Bar) Track(name string, total int) Tracker {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.total += total
	b.active++
	b.label = name
	b.render()
	return &barTracker{bar: b, name: name, total: total}
}

type barTracker struct {
	bar   *Bar
	name  string
	total int
	ticks int
	done  bool
}

func (t *barTracker) Tick(n int) {
	if n <= 0 {
		return
	}
	b := t.bar
	b.mu.Lock()
	defer b.mu.Unlock()
	if t.done {
		return
	}
	if t.ticks+n > t.total {
		n = t.total - t.ticks
	}
	t.ticks += n
	b.current += n
	b.label = t.name
	b.render()
}

func (t *barTracker) Finish() {
	b := t.bar
	b.mu.Lock()
	defer b.mu.Unlock()
	if t.done {
		return
	}
	t.done = true
	b.current += t.total - t.ticks
	t.ticks = t.total
	b.active--
	b.render()
}

// render must be called with b.mu held.
func (b *Bar) render() {
	if b.total == 0 {
		return
	}
	pct := b.current * 100 / b.total

	if !b.interactive {
		step := pct / 10 * 10
		if step == b.printed && b.active > 0 {
			return
		}
		b.printed = step
		fmt.Fprintf(b.out, "%s %3d%% (%d/%d frames)\n", b.caption(), pct, b.current, b.total)
		return
	}

	caption := b.caption()
	stats := fmt.Sprintf(" %3d%% %d/%d", pct, b.current, b.total)
	room := b.width - len(caption) - len(stats) - 3
	if room < 10 {
		room = 10
	}
	filled := room * b.current / b.total
	line := fmt.Sprintf("%s [%s%s]%s", caption, strings.Repeat("=", filled), strings.Repeat(" ", room-filled), stats)
	fmt.Fprintf(b.out, "\r%s", line)
	if b.active == 0 && b.current >= b.total {
		fmt.Fprintln(b.out)
	}
}

func (b *Bar) caption() string {
	if b.active == 0 {
		return "Transcoding done"
	}
	return "Transcoding " + b.label
}

package ui

import (
	"fmt"
	"io"
	"strings"
	"sync"
)

// Color is a 16-bit RGB565 color.
type Color uint16

// Colors used by the UI.
const (
	ColorBlack  Color = 0x0000
	ColorGreen  Color = 0x07E0
	ColorYellow Color = 0xFFE0
)

// Display is the text display on the UI core.
type Display interface {
	SetTextColors(fg, bg Color)
	Clear()
	// ScrollArea defines the lines which scroll when text is printed by
	// the number of fixed lines at the top and at the bottom.
	ScrollArea(topFixed, bottomFixed int)
	Prints(s string)
}

// TextDisplay is a Display keeping the scroll area in memory and mirroring
// printed text to an optional io.Writer.
type TextDisplay struct {
	Out io.Writer

	lock    sync.Mutex
	lines   []string
	top     int
	bottom  int
	fg, bg  Color
	partial strings.Builder
}

// NewTextDisplay creates a TextDisplay with rows lines.
func NewTextDisplay(rows int, out io.Writer) *TextDisplay {
	if rows < 1 {
		rows = 1
	}
	return &TextDisplay{Out: out, lines: make([]string, rows), bottom: rows - 1}
}

// SetTextColors implements Display.
func (d *TextDisplay) SetTextColors(fg, bg Color) {
	d.lock.Lock()
	d.fg, d.bg = fg, bg
	d.lock.Unlock()
}

// Clear implements Display.
func (d *TextDisplay) Clear() {
	d.lock.Lock()
	for i := range d.lines {
		d.lines[i] = ""
	}
	d.partial.Reset()
	d.lock.Unlock()
}

// ScrollArea implements Display.
func (d *TextDisplay) ScrollArea(topFixed, bottomFixed int) {
	d.lock.Lock()
	defer d.lock.Unlock()
	rows := len(d.lines)
	if topFixed < 0 || bottomFixed < 0 || topFixed+bottomFixed >= rows {
		topFixed, bottomFixed = 0, 0
	}
	d.top, d.bottom = topFixed, rows-1-bottomFixed
}

// Prints implements Display. Text is accumulated until a newline, then the
// line scrolls in at the bottom of the scroll area.
func (d *TextDisplay) Prints(s string) {
	d.lock.Lock()
	defer d.lock.Unlock()
	if d.Out != nil {
		fmt.Fprint(d.Out, s)
	}
	for {
		n := strings.IndexByte(s, '\n')
		if n < 0 {
			d.partial.WriteString(s)
			return
		}
		d.partial.WriteString(s[:n])
		d.scrollLocked(d.partial.String())
		d.partial.Reset()
		s = s[n+1:]
	}
}

func (d *TextDisplay) scrollLocked(line string) {
	copy(d.lines[d.top:d.bottom], d.lines[d.top+1:d.bottom+1])
	d.lines[d.bottom] = line
}

// Lines returns the content of the scroll area.
func (d *TextDisplay) Lines() []string {
	d.lock.Lock()
	defer d.lock.Unlock()
	return append([]string(nil), d.lines[d.top:d.bottom+1]...)
}

// Colors returns the current text colors.
func (d *TextDisplay) Colors() (fg, bg Color) {
	d.lock.Lock()
	defer d.lock.Unlock()
	return d.fg, d.bg
}

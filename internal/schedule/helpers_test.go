package schedule

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// group builds a Group from a compact pattern: v = on, z = off, m = maybe-off.
func group(pattern string) Group {
	g := make(Group, 0, len(pattern))
	for _, r := range pattern {
		switch r {
		case 'v':
			g = append(g, StateOn)
		case 'z':
			g = append(g, StateOff)
		case 'm':
			g = append(g, StateMaybeOff)
		default:
			panic(fmt.Sprintf("bad group pattern rune %q", r))
		}
	}
	return g
}

var tokenCycle = []string{"s", "u", "o"}

// block renders a group the way the oblenergo page does.
func block(id int, g Group) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<div id="inf%d" data-id="%d">`, id, id)
	for h, st := range g {
		tag := tokenCycle[h%len(tokenCycle)]
		fmt.Fprintf(&b, "\n  <%s>%s</%s>", tag, st, tag)
	}
	b.WriteString("\n</div>")
	return b.String()
}

func page(blocks ...string) string {
	return `<!DOCTYPE html><html><head><title>Графік</title></head><body>
<div class="shutdowns">` + strings.Join(blocks, "\n") + `</div>
</body></html>`
}

func pageFor(t Table) string {
	blocks := make([]string, len(t))
	for i, g := range t {
		blocks[i] = block(i+1, g)
	}
	return page(blocks...)
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

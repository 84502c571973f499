package console

import (
	"strings"
	"time"
)

// Pulse rotates through frames while ticks keep arriving. A frozen frame
// means the update loop itself stalled; on this tool that usually means the
// host is on its way down.
type Pulse struct {
	frames   []string
	index    int
	lastTick time.Time
}

func NewPulse() Pulse {
	return Pulse{
		frames:   []string{"⟲", "⟳"},
		lastTick: time.Now(),
	}
}

func (p *Pulse) Tick() {
	p.index = (p.index + 1) % len(p.frames)
	p.lastTick = time.Now()
}

func (p Pulse) Current() string {
	return p.frames[p.index]
}

// Activity shows event traffic with a decaying dot pattern.
// Lights up on events, fades over ten seconds.
type Activity struct {
	dots      int
	lastEvent time.Time
}

func NewActivity() Activity {
	return Activity{}
}

func (a *Activity) OnEvent() {
	a.dots = 5
	a.lastEvent = time.Now()
}

// Decay fades the dots based on time since the last event.
func (a *Activity) Decay() {
	if a.dots == 0 {
		return
	}
	elapsed := time.Since(a.lastEvent)
	switch {
	case elapsed > 10*time.Second:
		a.dots = 0
	case elapsed > 8*time.Second:
		a.dots = 1
	case elapsed > 6*time.Second:
		a.dots = 2
	case elapsed > 4*time.Second:
		a.dots = 3
	case elapsed > 2*time.Second:
		a.dots = 4
	}
}

func (a Activity) Render(theme Theme) string {
	var result strings.Builder
	for i := range 5 {
		if i < a.dots {
			result.WriteString(theme.PulseActive.Render("●"))
		} else {
			result.WriteString(theme.PulseInactive.Render("○"))
		}
	}
	return result.String()
}

func (a Activity) LastEvent() time.Time {
	return a.lastEvent
}

package tracker

import (
	"math"
	"slices"
	"time"
)

type (
	// Alerts are short messages shown to the user, e.g. "Saved to x.yml" or
	// errors from the MIDI output. Named alerts replace the previous alert of
	// the same name instead of piling up.
	Alerts Model

	Alert struct {
		Name      string
		Priority  AlertPriority
		Message   string
		Duration  time.Duration
		FadeLevel float64
	}

	AlertPriority int
)

const (
	None AlertPriority = iota
	Info
	Warning
	Error
)

const (
	defaultAlertDuration = 3 * time.Second
	alertFadeTime        = 150 * time.Millisecond
)

func (m *Model) Alerts() *Alerts { return (*Alerts)(m) }

// Iterate yields the alerts from the lowest to the highest priority.
func (m *Alerts) Iterate(yield func(index int, alert Alert) bool) {
	for i, a := range m.alerts {
		if !yield(i, a) {
			return
		}
	}
}

// Update advances the alert timers by d and removes the alerts that have
// faded out. It returns true if there are alerts still visible, so the UI
// knows to keep redrawing.
func (m *Alerts) Update(d time.Duration) (animating bool) {
	for i := len(m.alerts) - 1; i >= 0; i-- {
		if m.alerts[i].Duration >= d {
			m.alerts[i].Duration -= d
			m.alerts[i].FadeLevel = math.Min(m.alerts[i].FadeLevel+float64(d)/float64(alertFadeTime), 1)
		} else {
			m.alerts[i].Duration = 0
			m.alerts[i].FadeLevel = math.Max(m.alerts[i].FadeLevel-float64(d)/float64(alertFadeTime), 0)
			if m.alerts[i].FadeLevel <= 0 {
				m.alerts = slices.Delete(m.alerts, i, i+1)
				continue
			}
		}
		animating = true
	}
	return
}

func (m *Alerts) Add(message string, priority AlertPriority) {
	m.AddAlert(Alert{Priority: priority, Message: message, Duration: defaultAlertDuration})
}

func (m *Alerts) AddNamed(name, message string, priority AlertPriority) {
	m.AddAlert(Alert{Name: name, Priority: priority, Message: message, Duration: defaultAlertDuration})
}

func (m *Alerts) AddAlert(a Alert) {
	if a.Name != "" {
		for i := range m.alerts {
			if m.alerts[i].Name == a.Name {
				a.FadeLevel = m.alerts[i].FadeLevel
				m.alerts[i] = a
				return
			}
		}
	}
	i, _ := slices.BinarySearchFunc(m.alerts, a, func(x, y Alert) int { return int(x.Priority) - int(y.Priority) })
	m.alerts = slices.Insert(m.alerts, i, a)
}

// Len is the number of alerts that are visible or still fading out.
func (m *Alerts) Len() int { return len(m.alerts) }

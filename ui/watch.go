// Package ui implements the interactive watch viewer: a live rendering of
// a driven session with keystroke forwarding. It is a local debugging aid,
// not a remote client.
package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/remorses/tuistory/keys"
	"github.com/remorses/tuistory/screen"
	"github.com/remorses/tuistory/session"
)

const frameInterval = 80 * time.Millisecond

type frameTickMsg time.Time

// Model is the bubbletea model for the watch viewer.
type Model struct {
	sess    *session.Session
	program string
	spin    spinner.Model

	frame    string
	width    int
	height   int
	copiedAt time.Time
	quitting bool
}

// NewModel creates a viewer for an already-launched session.
func NewModel(sess *session.Session, program string) Model {
	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	return Model{sess: sess, program: program, spin: sp}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, frameTick())
}

func frameTick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg {
		return frameTickMsg(t)
	})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case frameTickMsg:
		if frame, err := m.sess.Text(&screen.TextOptions{Immediate: true}); err == nil {
			m.frame = frame
		}
		return m, frameTick()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+q":
			m.quitting = true
			return m, tea.Quit
		case "ctrl+y":
			_ = clipboard.WriteAll(strings.TrimPrefix(m.frame, "\n"))
			m.copiedAt = time.Now()
			return m, nil
		}
		m.forwardKey(msg)
		return m, nil
	}
	return m, nil
}

// forwardKey relays a viewer keystroke to the child. Raw runes pass
// through untranslated; named keys go through the chord encoder so the
// child sees the exact bytes a real terminal would send.
func (m Model) forwardKey(msg tea.KeyMsg) {
	if msg.Type == tea.KeyRunes {
		_ = m.sess.SendRaw([]byte(string(msg.Runes)))
		return
	}

	names := strings.Split(translateKeyName(msg.String()), "+")
	chord := make([]keys.Key, 0, len(names))
	for _, name := range names {
		k, err := keys.Parse(name)
		if err != nil {
			return
		}
		chord = append(chord, k)
	}
	if encoded := keys.Encode(chord...); len(encoded) > 0 {
		_ = m.sess.SendRaw(encoded)
	}
}

// translateKeyName maps bubbletea key names onto the key enumeration.
func translateKeyName(name string) string {
	switch {
	case name == "pgup":
		return "pageup"
	case name == "pgdown":
		return "pagedown"
	case strings.HasSuffix(name, "+pgup"):
		return strings.TrimSuffix(name, "pgup") + "pageup"
	case strings.HasSuffix(name, "+pgdown"):
		return strings.TrimSuffix(name, "pgdown") + "pagedown"
	}
	return name
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	cols, rows := m.sess.Size()
	title := titleStyle.Render("tuistory") + " " + statusStyle.Render(m.program)
	status := statusStyle.Render(fmt.Sprintf("%s %dx%d · ctrl+q detach · ctrl+y copy", m.spin.View(), cols, rows))
	if time.Since(m.copiedAt) < 2*time.Second {
		status += "  " + noticeStyle.Render("copied")
	}

	body := screenStyle.Render(strings.TrimPrefix(m.frame, "\n"))
	return lipgloss.JoinVertical(lipgloss.Left, title, body, status)
}

// Watch launches the viewer and blocks until the user detaches.
func Watch(sess *session.Session, program string) error {
	p := tea.NewProgram(NewModel(sess, program), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/dmitrijs2005/streamdesk/internal/client/upload"
)

type progressMsg upload.Progress

type uploadDoneMsg struct{ err error }

// progressModel renders a running upload as a single progress bar line.
type progressModel struct {
	bar     progress.Model
	current upload.Progress
	done    bool
	err     error
}

func newProgressModel() progressModel {
	return progressModel{
		bar: progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
	}
}

func (m progressModel) Init() tea.Cmd {
	return nil
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case progressMsg:
		m.current = upload.Progress(msg)
		return m, nil
	case uploadDoneMsg:
		m.done = true
		m.err = msg.err
		return m, tea.Quit
	}
	return m, nil
}

func (m progressModel) View() string {
	label := string(m.current.Step)
	if m.current.Degraded {
		label += " (simulated)"
	}
	if m.current.Message != "" {
		label += ": " + m.current.Message
	}
	line := fmt.Sprintf("%s %3d%%  %s", m.bar.ViewAs(float64(m.current.Percent)/100), m.current.Percent, label)
	if m.done {
		line += "\n"
	}
	return line
}

// runProgressView shows run's progress in a bubbletea program writing to
// out and returns run's error once it finishes.
func runProgressView(out io.Writer, run func(upload.Observer) error) error {
	p := tea.NewProgram(newProgressModel(), tea.WithInput(nil), tea.WithOutput(out))

	errc := make(chan error, 1)
	go func() {
		err := run(func(pr upload.Progress) { p.Send(progressMsg(pr)) })
		errc <- err
		p.Send(uploadDoneMsg{err: err})
	}()

	// A failed view does not stop the upload; its result still counts.
	_, _ = p.Run()
	return <-errc
}

// plainObserver prints a line whenever the step changes or progress crosses
// another ten percent.
func plainObserver(out io.Writer) upload.Observer {
	var last upload.Progress
	started := false
	return func(pr upload.Progress) {
		if started && pr.Step == last.Step && pr.Percent/10 == last.Percent/10 && pr.Degraded == last.Degraded {
			return
		}
		started = true
		last = pr

		var b strings.Builder
		fmt.Fprintf(&b, "[%3d%%] %s", pr.Percent, pr.Step)
		if pr.Degraded {
			b.WriteString(" (simulated)")
		}
		if pr.Message != "" {
			b.WriteString(": " + pr.Message)
		}
		fmt.Fprintln(out, b.String())
	}
}

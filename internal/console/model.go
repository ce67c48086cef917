package console

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"shoplist/internal/chat"
)

type refreshMsg struct{}

type uiModel struct {
	t    *Transport
	user User

	input  textinput.Model
	vp     viewport.Model
	ready  bool
	width  int
	status string
	seen   int
}

func newModel(t *Transport, user User) uiModel {
	in := textinput.New()
	in.Placeholder = "item name, /press <msg#> <btn#>, /as <id> [name], /quit"
	in.Prompt = "> "
	in.CharLimit = 512
	in.Focus()
	return uiModel{t: t, user: user, input: in}
}

func (m uiModel) Init() tea.Cmd { return textinput.Blink }

func (m uiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		h := msg.Height - 4
		if h < 3 {
			h = 3
		}
		if !m.ready {
			m.vp = viewport.New(msg.Width, h)
			m.ready = true
		} else {
			m.vp.Width, m.vp.Height = msg.Width, h
		}
		m.input.Width = msg.Width - 4
		m.refresh()
		return m, nil

	case refreshMsg:
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyPgUp, tea.KeyPgDown:
			var cmd tea.Cmd
			m.vp, cmd = m.vp.Update(msg)
			return m, cmd
		case tea.KeyEnter:
			line := m.input.Value()
			m.input.Reset()
			return m.submit(line)
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit acts on one typed line. Events reach the bot from a command so the UI loop
// never waits on it.
func (m uiModel) submit(line string) (tea.Model, tea.Cmd) {
	in, err := parseInput(line)
	if err != nil {
		m.status = styleAlert.Render(err.Error())
		return m, nil
	}
	m.status = ""
	switch in.kind {
	case inputQuit:
		return m, tea.Quit
	case inputSwitchUser:
		m.user = in.user
		return m, nil
	case inputText:
		ev := m.t.Post(m.user, in.text)
		m.refresh()
		return m, emit(m.t, ev)
	case inputPress:
		ev, err := m.t.Press(m.user, in.message, in.button)
		if err != nil {
			m.status = styleAlert.Render(err.Error())
			return m, nil
		}
		return m, emit(m.t, ev)
	}
	return m, nil
}

func emit(t *Transport, ev chat.Event) tea.Cmd {
	return func() tea.Msg {
		t.Emit(ev)
		return nil
	}
}

func (m *uiModel) refresh() {
	if !m.ready {
		return
	}
	m.vp.SetContent(renderTranscript(m.t.Transcript(), m.width))
	m.vp.GotoBottom()
	if c := m.t.NoticeCount(); c > m.seen {
		m.seen = c
		if n, ok := m.t.LastNotice(); ok {
			m.status = renderNotice(n)
		}
	}
}

func (m uiModel) View() string {
	if !m.ready {
		return "starting…"
	}
	header := styleHeader.Render(fmt.Sprintf("shoplist console  ·  you are %s (id %d)", m.user.Name, m.user.ID))
	return strings.Join([]string{header, m.vp.View(), m.status, m.input.View()}, "\n")
}

// Run shows the chat until the user quits or ctx is done. The bot must already be
// consuming t.Events().
func Run(ctx context.Context, t *Transport, user User) error {
	if termenv.EnvNoColor() {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
	p := tea.NewProgram(newModel(t, user), tea.WithAltScreen(), tea.WithOutput(os.Stdout))
	t.OnChange(func() { p.Send(refreshMsg{}) })
	defer t.OnChange(nil)

	go func() {
		<-ctx.Done()
		p.Quit()
	}()
	_, err := p.Run()
	return err
}

// internal/tui/app.go
//
// The redraft review console. It uses bubbletea, which follows The Elm
// Architecture:
//
// 1. Model: Your application state
// 2. Update: A function that updates state based on messages
// 3. View: A function that renders state to a string
//
// The console drives one coordinator session: pick a task, type a span,
// submit, and watch candidates land in the right-hand pane as completions
// arrive in whatever order the backend produces them.

package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/kingrea/redraft/internal/coordinator"
	"github.com/kingrea/redraft/internal/document"
	"github.com/kingrea/redraft/internal/logbook"
	"github.com/kingrea/redraft/internal/review"
	"github.com/kingrea/redraft/internal/text"
	"github.com/kingrea/redraft/internal/usage"
)

const (
	defaultRefreshInterval = 500 * time.Millisecond
	logTailLines           = 6
)

// Session bundles everything the console needs to drive one coordinator.
type Session struct {
	Coordinator *coordinator.Coordinator
	Document    document.Provider
	Feed        *review.Feed
	Logbook     *logbook.Logbook
	Meter       *usage.Meter
	// Tasks lists the resolvable task names shown in the picker.
	Tasks []string
}

// AppOption customizes App construction for tests and alternate runtimes.
type AppOption func(*App)

// WithRefreshInterval overrides how often the console re-polls the session.
func WithRefreshInterval(d time.Duration) AppOption {
	return func(a *App) {
		if d > 0 {
			a.refreshInterval = d
		}
	}
}

type consoleFocus int

const (
	focusTasks consoleFocus = iota
	focusSpan
	focusInstruction
)

type tickMsg struct{}

type candidateMsg struct {
	candidate review.Candidate
}

type feedClosedMsg struct{}

type noticeMsg struct{}

// taskItem implements list.Item for the task picker.
type taskItem struct {
	name string
}

func (i taskItem) Title() string       { return i.name }
func (i taskItem) Description() string { return "task: " + i.name }
func (i taskItem) FilterValue() string { return i.name }

// App is the console model. In bubbletea, this holds ALL the state.
type App struct {
	session         Session
	refreshInterval time.Duration

	taskMenu    list.Model
	spanInput   textinput.Model
	instrInput  textinput.Model
	focus       consoleFocus
	statusMsg   string
	errorNotice string

	ops       []coordinator.Operation
	status    coordinator.SessionStatus
	candidate *review.Candidate
	logLines  []string
	docText   string

	width  int
	height int
}

// NewApp builds the console over a prepared session.
func NewApp(session Session, opts ...AppOption) (*App, error) {
	if session.Coordinator == nil {
		return nil, fmt.Errorf("tui: coordinator is required")
	}
	if session.Document == nil {
		return nil, fmt.Errorf("tui: document provider is required")
	}
	if session.Feed == nil {
		return nil, fmt.Errorf("tui: review feed is required")
	}

	items := make([]list.Item, 0, len(session.Tasks))
	for _, name := range session.Tasks {
		items = append(items, taskItem{name: name})
	}
	taskMenu := list.New(items, list.NewDefaultDelegate(), 0, 0)
	taskMenu.Title = "Tasks"
	taskMenu.SetShowStatusBar(false)
	taskMenu.SetFilteringEnabled(false)
	taskMenu.SetShowHelp(false)

	spanInput := textinput.New()
	spanInput.Placeholder = "start:end"
	spanInput.CharLimit = 24
	spanInput.Width = 18

	instrInput := textinput.New()
	instrInput.Placeholder = "optional instruction"
	instrInput.CharLimit = 240
	instrInput.Width = 40

	app := &App{
		session:         session,
		refreshInterval: defaultRefreshInterval,
		taskMenu:        taskMenu,
		spanInput:       spanInput,
		instrInput:      instrInput,
		focus:           focusTasks,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(app)
		}
	}
	app.refreshSnapshot()
	return app, nil
}

// Init is called once when the program starts.
func (a *App) Init() tea.Cmd {
	return tea.Batch(a.scheduleTick(), a.waitForCandidate(), a.waitForNotice())
}

func (a *App) scheduleTick() tea.Cmd {
	return tea.Tick(a.refreshInterval, func(time.Time) tea.Msg { return tickMsg{} })
}

func (a *App) waitForCandidate() tea.Cmd {
	feed := a.session.Feed
	return func() tea.Msg {
		candidate, ok := <-feed.Candidates()
		if !ok {
			return feedClosedMsg{}
		}
		return candidateMsg{candidate: candidate}
	}
}

// waitForNotice blocks on the mailbox change signal. The console only reads
// the mailbox when this fires; an unread notice stays unread across refresh
// ticks, so a later overwrite is still reported as a loss.
func (a *App) waitForNotice() tea.Cmd {
	mailbox := a.session.Coordinator.Mailbox()
	return func() tea.Msg {
		<-mailbox.Changes()
		return noticeMsg{}
	}
}

// Update is called when a message is received.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.taskMenu.SetSize(max(20, msg.Width/3-4), max(6, msg.Height/2-6))
		return a, nil

	case tickMsg:
		a.refreshSnapshot()
		return a, a.scheduleTick()

	case candidateMsg:
		candidate := msg.candidate
		a.candidate = &candidate
		a.refreshSnapshot()
		return a, a.waitForCandidate()

	case feedClosedMsg:
		return a, nil

	case noticeMsg:
		if notice, ok := a.session.Coordinator.Mailbox().Peek(); ok {
			a.errorNotice = notice.Message
		}
		return a, a.waitForNotice()

	case tea.KeyMsg:
		return a.handleKey(msg)
	}
	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		_ = a.session.Coordinator.Close()
		return a, tea.Quit
	case "tab":
		a.cycleFocus()
		return a, nil
	case "enter":
		a.submitSelection()
		return a, nil
	case "ctrl+x":
		n := a.session.Coordinator.CancelAll()
		a.statusMsg = fmt.Sprintf("cancelled %d operation(s)", n)
		a.refreshSnapshot()
		return a, nil
	case "ctrl+r":
		a.cancelNewestPending()
		return a, nil
	case "esc":
		a.errorNotice = ""
		a.session.Coordinator.Mailbox().Take()
		return a, nil
	}

	var cmd tea.Cmd
	switch a.focus {
	case focusTasks:
		a.taskMenu, cmd = a.taskMenu.Update(msg)
	case focusSpan:
		a.spanInput, cmd = a.spanInput.Update(msg)
	case focusInstruction:
		a.instrInput, cmd = a.instrInput.Update(msg)
	}
	return a, cmd
}

func (a *App) cycleFocus() {
	a.spanInput.Blur()
	a.instrInput.Blur()
	switch a.focus {
	case focusTasks:
		a.focus = focusSpan
		a.spanInput.Focus()
	case focusSpan:
		a.focus = focusInstruction
		a.instrInput.Focus()
	default:
		a.focus = focusTasks
	}
}

func (a *App) submitSelection() {
	kind := a.selectedTask()
	if kind == "" {
		a.statusMsg = "no task selected"
		return
	}
	span, err := parseSpan(a.spanInput.Value())
	if err != nil {
		a.statusMsg = err.Error()
		return
	}
	id, err := a.session.Coordinator.Submit(coordinator.TaskRequest{
		Span:        span,
		Kind:        kind,
		Instruction: strings.TrimSpace(a.instrInput.Value()),
	})
	if err != nil {
		a.statusMsg = fmt.Sprintf("rejected: %v", err)
		a.refreshSnapshot()
		return
	}
	a.statusMsg = fmt.Sprintf("submitted %s as %s", kind, id)
	a.refreshSnapshot()
}

func (a *App) cancelNewestPending() {
	ops := a.session.Coordinator.Operations()
	for i := len(ops) - 1; i >= 0; i-- {
		if ops[i].Status == coordinator.StatusPending {
			if a.session.Coordinator.Cancel(ops[i].ID) {
				a.statusMsg = fmt.Sprintf("cancelled %s", ops[i].ID)
			}
			a.refreshSnapshot()
			return
		}
	}
	a.statusMsg = "nothing pending to cancel"
}

func (a *App) selectedTask() string {
	item, ok := a.taskMenu.SelectedItem().(taskItem)
	if !ok {
		return ""
	}
	return item.name
}

// refreshSnapshot re-polls everything the panes render. The mailbox is
// deliberately not touched here; notices arrive through waitForNotice.
func (a *App) refreshSnapshot() {
	coord := a.session.Coordinator
	a.ops = coord.Operations()
	a.status = coord.Status()
	if current, err := a.session.Document.Text(); err == nil {
		a.docText = current
	}
	if a.session.Logbook != nil {
		a.logLines, _ = a.session.Logbook.Tail(logTailLines)
	}
}

func parseSpan(raw string) (text.Span, error) {
	trimmed := strings.TrimSpace(raw)
	parts := strings.SplitN(trimmed, ":", 2)
	if len(parts) != 2 {
		return text.Span{}, fmt.Errorf("span must be start:end, got %q", raw)
	}
	start, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return text.Span{}, fmt.Errorf("span start %q is not a number", parts[0])
	}
	end, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return text.Span{}, fmt.Errorf("span end %q is not a number", parts[1])
	}
	return text.NewSpan(start, end), nil
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

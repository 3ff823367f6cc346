package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/streamlist/internal/formatter"
	"github.com/desertthunder/streamlist/internal/shared"
	"github.com/desertthunder/streamlist/internal/tasks"
	"github.com/desertthunder/streamlist/internal/watchlist"
)

// recentEvents is how many log entries the movies view shows.
const recentEvents = 5

// Tab identifies one of the two views under the shell header.
type Tab int

const (
	WatchlistTab Tab = iota
	MoviesTab
)

func (t Tab) String() string {
	switch t {
	case WatchlistTab:
		return "Watchlist"
	case MoviesTab:
		return "Movies"
	default:
		return ""
	}
}

type focus int

const (
	focusInput focus = iota
	focusList
)

// Options holds the [Model] dependencies.
type Options struct {
	Session      *tasks.SearchSession
	Progress     <-chan tasks.ProgressUpdate // the channel the session reports on, if any
	Watchlist    *watchlist.List
	ImageBaseURL string
	Logger       *log.Logger
	StartTab     Tab
}

// Model represents the TUI application state.
type Model struct {
	ctx        context.Context
	tab        Tab
	focus      focus
	width      int
	height     int
	session    *tasks.SearchSession
	progress   <-chan tasks.ProgressUpdate
	status     string
	watch      *watchlist.List
	watchInput textinput.Model
	watchList  list.Model
	queryInput textinput.Model
	results    list.Model
	spinner    spinner.Model
	imageBase  string
	logger     *log.Logger
	help       help.Model
	keys       keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, opts Options) *Model {
	if opts.Watchlist == nil {
		opts.Watchlist = watchlist.New()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Session == nil {
		opts.Session = tasks.NewSearchSession(tasks.SessionOptions{Logger: opts.Logger})
	}

	watchInput := textinput.New()
	watchInput.Placeholder = "Add a movie or show"
	watchInput.Prompt = "› "

	queryInput := textinput.New()
	queryInput.Placeholder = "Search for a movie"
	queryInput.Prompt = "› "

	m := &Model{
		ctx:        ctx,
		tab:        opts.StartTab,
		focus:      focusInput,
		session:    opts.Session,
		progress:   opts.Progress,
		watch:      opts.Watchlist,
		watchInput: watchInput,
		watchList:  newList(watchItems(opts.Watchlist.Items())),
		queryInput: queryInput,
		results:    newList(nil),
		spinner:    spinner.New(spinner.WithSpinner(spinner.Dot)),
		imageBase:  opts.ImageBaseURL,
		logger:     opts.Logger,
		help:       help.New(),
		keys:       newKeyMap(),
	}
	m.activeInput().Focus()

	return m
}

// Init starts the cursor blink and the session hydration.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick, m.hydrate(), m.listenProgress())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case Msg:
		return m.handleMsg(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgHydrated:
		snap := m.session.Snapshot()
		m.queryInput.SetValue(snap.Query)
		m.refreshResults()
		return m, m.restore()

	case MsgSearchDone:
		if err, ok := msg.data.(error); ok && err != nil {
			m.logger.Warn("search failed", "error", err)
		}
		m.refreshResults()

	case MsgPageDone:
		data := msg.data.(struct {
			changed bool
			err     error
		})
		if data.err != nil {
			m.logger.Warn("page change failed", "error", data.err)
		}
		m.refreshResults()

	case MsgProgressUpdate:
		update := msg.data.(tasks.ProgressUpdate)
		m.status = update.Message
		m.refreshResults()
		return m, m.listenProgress()
	}

	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.forceQuit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.tab):
		m.switchTab()
		return m, nil
	}

	if m.focus == focusInput {
		return m.handleInputKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.input):
		m.setFocus(focusInput)
		return m, nil
	}

	if m.tab == WatchlistTab {
		return m.handleWatchlistKey(msg)
	}
	return m.handleMoviesKey(msg)
}

func (m *Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.submit):
		return m.submit()
	case key.Matches(msg, m.keys.back):
		if m.tab == WatchlistTab {
			m.watch.CancelEdit()
			m.watchInput.Reset()
		}
		m.setFocus(focusList)
		return m, nil
	case msg.Type == tea.KeyDown:
		m.setFocus(focusList)
		return m, nil
	}

	var cmd tea.Cmd
	input := m.activeInput()
	*input, cmd = input.Update(msg)
	return m, cmd
}

func (m *Model) handleWatchlistKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	selected, ok := m.watchList.SelectedItem().(watchItem)

	switch {
	case key.Matches(msg, m.keys.toggle):
		if ok {
			m.watchErr(m.watch.Toggle(selected.item.ID))
			m.refreshWatchlist()
		}
		return m, nil
	case key.Matches(msg, m.keys.edit):
		if ok && m.watchErr(m.watch.Edit(selected.item.ID)) {
			m.watchInput.SetValue(m.watch.Input())
			m.setFocus(focusInput)
		}
		return m, nil
	case key.Matches(msg, m.keys.remove):
		if ok {
			m.watchErr(m.watch.Delete(selected.item.ID))
			m.refreshWatchlist()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.watchList, cmd = m.watchList.Update(msg)
	return m, cmd
}

func (m *Model) handleMoviesKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if !m.session.Ready() {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.favorite):
		if selected, ok := m.results.SelectedItem().(movieItem); ok {
			m.session.ToggleFavorite(selected.result.ID)
			m.refreshResults()
		}
		return m, nil
	case key.Matches(msg, m.keys.next):
		return m, m.changePage(m.session.NextPage)
	case key.Matches(msg, m.keys.prev):
		return m, m.changePage(m.session.PrevPage)
	}

	var cmd tea.Cmd
	m.results, cmd = m.results.Update(msg)
	return m, cmd
}

func (m *Model) submit() (tea.Model, tea.Cmd) {
	if m.tab == WatchlistTab {
		if m.watch.Submit(m.watchInput.Value()) {
			m.watchInput.Reset()
			m.refreshWatchlist()
		}
		return m, nil
	}

	if !m.session.Ready() || m.session.Snapshot().Loading {
		return m, nil
	}
	return m, m.search(m.queryInput.Value())
}

// watchErr logs err and reports whether it was nil.
func (m *Model) watchErr(err error) bool {
	if err != nil {
		m.logger.Warn("watchlist action failed", "error", err)
		return false
	}
	return true
}

func (m *Model) hydrate() tea.Cmd {
	session := m.session
	return func() tea.Msg {
		session.Hydrate()
		return hydratedMsg()
	}
}

func (m *Model) restore() tea.Cmd {
	ctx, session := m.ctx, m.session
	return func() tea.Msg {
		return searchDoneMsg(session.Restore(ctx))
	}
}

func (m *Model) search(query string) tea.Cmd {
	ctx, session := m.ctx, m.session
	return func() tea.Msg {
		return searchDoneMsg(session.NewSearch(ctx, query))
	}
}

func (m *Model) changePage(move func(context.Context) (bool, error)) tea.Cmd {
	if m.session.Snapshot().Loading {
		return nil
	}
	ctx := m.ctx
	return func() tea.Msg {
		changed, err := move(ctx)
		return pageDoneMsg(changed, err)
	}
}

func (m *Model) listenProgress() tea.Cmd {
	ch := m.progress
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		update, ok := <-ch
		if !ok {
			return nil
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) switchTab() {
	m.activeInput().Blur()
	if m.tab == WatchlistTab {
		m.tab = MoviesTab
	} else {
		m.tab = WatchlistTab
	}
	m.setFocus(focusInput)
}

func (m *Model) setFocus(f focus) {
	m.focus = f
	if f == focusInput {
		m.activeInput().Focus()
	} else {
		m.activeInput().Blur()
	}
}

func (m *Model) activeInput() *textinput.Model {
	if m.tab == WatchlistTab {
		return &m.watchInput
	}
	return &m.queryInput
}

func (m *Model) resize() {
	listHeight := max(m.height-12, 4)
	m.watchList.SetSize(m.width-4, listHeight)
	m.results.SetSize(m.width-4, listHeight-recentEvents-2)
	m.watchInput.Width = max(m.width-8, 10)
	m.queryInput.Width = max(m.width-8, 10)
}

func (m *Model) refreshWatchlist() {
	m.watchList.SetItems(watchItems(m.watch.Items()))
}

func (m *Model) refreshResults() {
	snap := m.session.Snapshot()
	m.results.SetItems(movieItems(snap.Results, snap.IsFavorite, m.imageBase))
}

// View renders the shell header, the active view, and contextual help.
func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(styles.title.Render("StreamList"))
	b.WriteString("\n")
	b.WriteString(m.tabsView())
	b.WriteString("\n\n")

	if m.tab == WatchlistTab {
		b.WriteString(m.watchlistView())
	} else {
		b.WriteString(m.moviesView())
	}

	return b.String()
}

func (m *Model) tabsView() string {
	tabs := make([]string, 0, 2)
	for _, t := range []Tab{WatchlistTab, MoviesTab} {
		if t == m.tab {
			tabs = append(tabs, styles.activeTab.Render(t.String()))
		} else {
			tabs = append(tabs, styles.tab.Render(t.String()))
		}
	}
	return strings.Join(tabs, " ")
}

func (m *Model) watchlistView() string {
	var b strings.Builder

	label := "Add"
	if _, editing := m.watch.Editing(); editing {
		label = "Update"
	}
	b.WriteString(m.watchInput.View())
	b.WriteString("  ")
	b.WriteString(styles.ok.Render("[" + label + "]"))
	b.WriteString("\n\n")

	if m.watch.Len() == 0 {
		b.WriteString(styles.help.Render("Nothing on your watchlist yet."))
		b.WriteString("\n")
	} else {
		b.WriteString(m.watchList.View())
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.help.ShortHelpView(m.keys.watchlistHelp(m.focus == focusInput)))
	return b.String()
}

func (m *Model) moviesView() string {
	if !m.session.Ready() {
		return styles.help.Render("Loading saved searches...")
	}

	snap := m.session.Snapshot()
	var b strings.Builder

	button := "[Search]"
	if snap.Loading {
		button = m.spinner.View() + " Searching..."
	}
	b.WriteString(m.queryInput.View())
	b.WriteString("  ")
	b.WriteString(styles.ok.Render(button))
	b.WriteString("\n\n")

	if snap.Error != "" {
		b.WriteString(styles.err.Render(snap.Error))
		b.WriteString("\n\n")
	}

	if len(snap.Results) == 0 {
		b.WriteString(styles.help.Render("No results."))
		b.WriteString("\n")
	} else {
		b.WriteString(m.results.View())
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(formatter.PageLabel(snap.Page, snap.TotalPages))
	if len(snap.Favorites) > 0 {
		b.WriteString(styles.warn.Render(fmt.Sprintf("  ★ %d favorites", len(snap.Favorites))))
	}
	b.WriteString("\n\n")

	b.WriteString(styles.title.Render("Recent events"))
	b.WriteString("\n")
	for _, e := range snap.RecentEvents(recentEvents) {
		b.WriteString(styles.help.Render("• " + formatter.EventToText(e)))
		b.WriteString("\n")
	}

	if m.status != "" {
		b.WriteString("\n")
		b.WriteString(styles.help.Render(m.status))
	}

	b.WriteString("\n")
	b.WriteString(m.help.ShortHelpView(m.keys.moviesHelp(m.focus == focusInput)))
	return b.String()
}

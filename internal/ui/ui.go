package ui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/artistblend/abx/internal/history"
	"github.com/artistblend/abx/internal/models"
	"github.com/artistblend/abx/internal/search"
	"github.com/artistblend/abx/internal/services"
	"github.com/artistblend/abx/internal/session"
	"github.com/artistblend/abx/internal/shared"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	FormView ViewState = iota
	TracksView
	HistoryView
	LoginView
)

// sessionPollInterval drives the token-file watch while the TUI runs.
const sessionPollInterval = 2 * time.Second

// Model represents the TUI application state.
type Model struct {
	ctx        context.Context
	view       ViewState
	client     *services.Client
	reconciler *history.Reconciler
	resolver   *session.Resolver

	width  int
	height int

	// blend form
	input        textinput.Model
	draft        *search.Draft
	debouncer    *search.Debouncer
	suggestionCh chan search.Result
	sessionCh    <-chan session.State
	suggestions  []models.Artist
	suggestIdx   int
	searchNote   string
	generating   bool

	// generated or browsed tracks
	tracks      []models.Track
	trackList   list.Model
	demo        bool
	browsing    bool
	playlistURL string

	// history browser
	entries   []models.HistoryEntry
	entryList list.Model
	degraded  bool

	notice string
	errMsg string

	help help.Model
	keys keyMap
}

type suggestionsMsg search.Result

type tracksMsg struct {
	tracks []models.Track
	demo   bool
}

type historyMsg struct {
	outcome       history.Outcome
	loginRequired bool
	err           error
}

type savedMsg struct {
	entry  models.HistoryEntry
	source history.Source
	err    error
}

type createdMsg struct {
	url string
	err error
}

type deletedMsg struct {
	entries []models.HistoryEntry
	err     error
}

type clearedMsg struct {
	err error
}

type sessionMsg session.State

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, client *services.Client, reconciler *history.Reconciler, resolver *session.Resolver) *Model {
	input := textinput.New()
	input.Placeholder = "Abba, Queen, Elton John"
	input.Focus()

	m := &Model{
		ctx:          ctx,
		view:         FormView,
		client:       client,
		reconciler:   reconciler,
		resolver:     resolver,
		input:        input,
		draft:        search.NewDraft(),
		suggestionCh: make(chan search.Result, 8),
		help:         help.New(),
		keys:         newKeyMap(),
	}

	m.debouncer = search.NewDebouncer(client.SearchArtists, m.deliverSuggestions, nil)
	return m
}

// deliverSuggestions feeds debouncer results into the message loop. Drops
// when the channel is full; a newer result is always on its way.
func (m *Model) deliverSuggestions(result search.Result) {
	select {
	case m.suggestionCh <- result:
	default:
	}
}

// Init starts the suggestion listener and the cross-process session watch.
func (m *Model) Init() tea.Cmd {
	m.sessionCh = m.resolver.Watch(m.ctx, sessionPollInterval)
	return tea.Batch(textinput.Blink, m.listenSuggestions(), m.listenSession())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.trackList.Width() == 0 {
			m.trackList.SetSize(msg.Width-4, msg.Height-8)
		}
		if m.entryList.Width() == 0 {
			m.entryList.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case FormView:
			return m.handleFormKeys(msg)
		case TracksView:
			return m.handleTracksKeys(msg)
		case HistoryView:
			return m.handleHistoryKeys(msg)
		case LoginView:
			return m.handleLoginKeys(msg)
		}

	case suggestionsMsg:
		if m.view == FormView {
			m.suggestions = msg.Suggestions
			m.suggestIdx = 0
			m.searchNote = msg.Err
		}
		return m, m.listenSuggestions()

	case sessionMsg:
		state := session.State(msg)
		if !state.Authenticated {
			m.notice = "Logged out in another process"
		} else {
			m.notice = "Logged in"
		}
		return m, m.listenSession()

	case tracksMsg:
		m.generating = false
		m.tracks = msg.tracks
		m.demo = msg.demo
		m.browsing = false
		m.playlistURL = ""
		m.errMsg = ""
		if msg.demo {
			m.notice = "Backend unavailable, showing demo tracks"
		} else {
			m.notice = ""
		}
		m.showTracks(models.DeriveTitle(m.draft.Artists()))
		return m, nil

	case historyMsg:
		if msg.loginRequired {
			m.view = LoginView
			return m, nil
		}
		if msg.err != nil {
			m.errMsg = msg.err.Error()
			return m, nil
		}
		m.entries = msg.outcome.Entries
		m.degraded = msg.outcome.Source == history.SourceDegraded
		m.showHistory()
		return m, nil

	case savedMsg:
		if msg.err != nil {
			m.errMsg = msg.err.Error()
			return m, nil
		}
		if msg.source == history.SourceDegraded {
			m.notice = "Saved locally (backend unreachable)"
		} else {
			m.notice = fmt.Sprintf("Saved %q to history", msg.entry.Title)
		}
		return m, nil

	case createdMsg:
		if msg.err != nil {
			m.errMsg = msg.err.Error()
			return m, nil
		}
		m.playlistURL = msg.url
		m.notice = fmt.Sprintf("Playlist created: %s (press o to open)", msg.url)
		return m, nil

	case deletedMsg:
		if msg.err != nil {
			m.errMsg = msg.err.Error()
			return m, nil
		}
		m.entries = msg.entries
		m.showHistory()
		return m, nil

	case clearedMsg:
		if msg.err != nil {
			m.errMsg = msg.err.Error()
			return m, nil
		}
		m.entries = nil
		m.showHistory()
		m.notice = "Local history copy cleared"
		return m, nil
	}

	return m.updateLists(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case FormView:
		return m.renderForm()
	case TracksView:
		return m.renderTracks()
	case HistoryView:
		return m.renderHistory()
	case LoginView:
		return m.renderLogin()
	default:
		return ""
	}
}

func (m *Model) handleFormKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// The form owns the keyboard while typing, so navigation is limited to
	// keys the text input never consumes.
	switch msg.String() {
	case "ctrl+c", "esc":
		m.debouncer.Stop()
		return m, tea.Quit

	case "ctrl+h":
		return m, m.fetchHistory()

	case "up":
		if m.suggestIdx > 0 {
			m.suggestIdx--
		}
		return m, nil

	case "down":
		if m.suggestIdx < len(m.suggestions)-1 {
			m.suggestIdx++
		}
		return m, nil

	case "tab":
		if len(m.suggestions) == 0 {
			return m, nil
		}
		m.draft.SetInput(m.input.Value())
		if err := m.draft.ReplaceFragment(m.suggestions[m.suggestIdx].Name); err != nil {
			m.errMsg = err.Error()
			return m, nil
		}
		m.input.SetValue(m.draft.Input())
		m.input.CursorEnd()
		m.suggestions = nil
		m.errMsg = ""
		return m, nil

	case "enter":
		m.draft.SetInput(m.input.Value())
		if err := m.draft.Validate(); err != nil {
			m.errMsg = err.Error()
			return m, nil
		}
		m.errMsg = ""
		m.debouncer.Stop()
		m.suggestions = nil
		m.generating = true
		return m, m.generate(m.draft.Artists())
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)

	if value := m.input.Value(); value != before {
		m.draft.SetInput(value)
		// No lookups while a generation request is in flight.
		if !m.generating {
			m.debouncer.Input(m.ctx, m.draft.Fragment())
		}
	}
	return m, cmd
}

func (m *Model) handleTracksKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		if m.browsing {
			m.view = HistoryView
		} else {
			m.view = FormView
		}
		return m, nil
	case "s":
		if m.browsing {
			return m, nil
		}
		return m, m.save(m.draft.Artists(), m.tracks)
	case "c":
		return m, m.createPlaylist(m.tracks)
	case "o":
		if m.playlistURL != "" {
			shared.OpenBrowser(m.playlistURL)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.trackList, cmd = m.trackList.Update(msg)
	return m, cmd
}

func (m *Model) handleHistoryKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.view = FormView
		return m, nil
	case "enter":
		if item, ok := m.entryList.SelectedItem().(entryItem); ok {
			m.tracks = item.entry.Tracks
			m.browsing = true
			m.playlistURL = ""
			m.showTracks(item.entry.Title)
		}
		return m, nil
	case "d":
		if item, ok := m.entryList.SelectedItem().(entryItem); ok {
			return m, m.deleteEntry(item.entry.ID)
		}
		return m, nil
	case "C":
		return m, m.clearLocal()
	}

	var cmd tea.Cmd
	m.entryList, cmd = m.entryList.Update(msg)
	return m, cmd
}

func (m *Model) handleLoginKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.view = FormView
		return m, nil
	case "l":
		shared.OpenBrowser(m.client.LoginURL())
		m.notice = "Complete the login in your browser, then run `abx auth login` to finish"
		return m, nil
	}
	return m, nil
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case TracksView:
		m.trackList, cmd = m.trackList.Update(msg)
	case HistoryView:
		m.entryList, cmd = m.entryList.Update(msg)
	}
	return m, cmd
}

// showTracks builds the track list view from m.tracks.
func (m *Model) showTracks(title string) {
	items := make([]list.Item, len(m.tracks))
	for i, track := range m.tracks {
		items[i] = trackItem{track: track}
	}
	m.trackList = list.New(items, list.NewDefaultDelegate(), 0, 0)
	m.trackList.Title = title
	m.trackList.SetSize(m.width-4, m.height-8)
	m.view = TracksView
}

// showHistory builds the history list view from m.entries.
func (m *Model) showHistory() {
	items := make([]list.Item, len(m.entries))
	for i, entry := range m.entries {
		items[i] = entryItem{entry: entry}
	}
	m.entryList = list.New(items, list.NewDefaultDelegate(), 0, 0)
	m.entryList.Title = fmt.Sprintf("%d playlists saved", len(m.entries))
	m.entryList.SetSize(m.width-4, m.height-8)
	m.view = HistoryView
}

func (m *Model) listenSuggestions() tea.Cmd {
	return func() tea.Msg {
		result, ok := <-m.suggestionCh
		if !ok {
			return nil
		}
		return suggestionsMsg(result)
	}
}

func (m *Model) listenSession() tea.Cmd {
	return func() tea.Msg {
		state, ok := <-m.sessionCh
		if !ok {
			return nil
		}
		return sessionMsg(state)
	}
}

func (m *Model) generate(artists []string) tea.Cmd {
	return func() tea.Msg {
		tracks, err := m.client.Generate(m.ctx, artists)
		if err != nil {
			return tracksMsg{tracks: services.DemoTracks(), demo: true}
		}
		return tracksMsg{tracks: tracks}
	}
}

func (m *Model) fetchHistory() tea.Cmd {
	return func() tea.Msg {
		outcome, err := m.reconciler.Load(m.ctx)
		if err != nil {
			if errors.Is(err, shared.ErrLoginRequired) {
				return historyMsg{loginRequired: true}
			}
			return historyMsg{err: err}
		}
		return historyMsg{outcome: outcome}
	}
}

func (m *Model) save(artists []string, tracks []models.Track) tea.Cmd {
	return func() tea.Msg {
		entry, source, err := m.reconciler.Save(m.ctx, "", artists, tracks)
		return savedMsg{entry: entry, source: source, err: err}
	}
}

func (m *Model) createPlaylist(tracks []models.Track) tea.Cmd {
	name := models.DeriveTitle(m.draft.Artists())
	return func() tea.Msg {
		ids := make([]string, len(tracks))
		for i, track := range tracks {
			ids[i] = track.ID
		}
		url, err := m.client.CreatePlaylist(m.ctx, name, ids)
		return createdMsg{url: url, err: err}
	}
}

func (m *Model) deleteEntry(id string) tea.Cmd {
	return func() tea.Msg {
		entries, err := m.reconciler.Delete(m.ctx, id, m.entries)
		return deletedMsg{entries: entries, err: err}
	}
}

func (m *Model) clearLocal() tea.Cmd {
	return func() tea.Msg {
		return clearedMsg{err: m.reconciler.Clear()}
	}
}

func (m *Model) renderForm() string {
	title := styles.title.Render("Blend a playlist")
	prompt := "Type at least three artists, separated by commas:"

	out := fmt.Sprintf("%s\n%s\n\n%s\n", title, prompt, m.input.View())

	for i, artist := range m.suggestions {
		cursor := "  "
		name := artist.Name
		if i == m.suggestIdx {
			cursor = "> "
			name = styles.accent.Render(name)
		}
		out += fmt.Sprintf("%s%s\n", cursor, name)
	}
	if m.searchNote != "" {
		out += styles.warn.Render(m.searchNote) + "\n"
	}
	if m.errMsg != "" {
		out += styles.err.Render(m.errMsg) + "\n"
	}
	if m.notice != "" {
		out += styles.ok.Render(m.notice) + "\n"
	}

	helpKeys := []key.Binding{m.keys.enter, m.keys.accept, m.keys.history, m.keys.back}
	return out + "\n" + m.help.ShortHelpView(helpKeys)
}

func (m *Model) renderTracks() string {
	out := m.trackList.View()

	if m.demo {
		out += "\n" + styles.warn.Render("Demo tracks: the backend could not generate a blend")
	}
	if m.errMsg != "" {
		out += "\n" + styles.err.Render(m.errMsg)
	}
	if m.notice != "" {
		out += "\n" + styles.ok.Render(m.notice)
	}

	helpKeys := []key.Binding{m.keys.save, m.keys.create, m.keys.open, m.keys.back, m.keys.quit}
	if m.browsing {
		helpKeys = []key.Binding{m.keys.create, m.keys.back, m.keys.quit}
	}
	return fmt.Sprintf("%s\n\n%s", out, m.help.ShortHelpView(helpKeys))
}

func (m *Model) renderHistory() string {
	out := m.entryList.View()

	if m.degraded {
		out += "\n" + styles.warn.Render("Backend unreachable, showing the local copy")
	}
	if m.errMsg != "" {
		out += "\n" + styles.err.Render(m.errMsg)
	}
	if m.notice != "" {
		out += "\n" + styles.ok.Render(m.notice)
	}

	helpKeys := []key.Binding{m.keys.enter, m.keys.delete, m.keys.clear, m.keys.back, m.keys.quit}
	return fmt.Sprintf("%s\n\n%s", out, m.help.ShortHelpView(helpKeys))
}

func (m *Model) renderLogin() string {
	title := styles.title.Render("Login required")
	body := "Your session has expired. The playlist history lives on the backend,\nso it needs a fresh login before it can be shown."

	if m.notice != "" {
		body += "\n\n" + styles.ok.Render(m.notice)
	}

	helpKeys := []key.Binding{m.keys.login, m.keys.back, m.keys.quit}
	return fmt.Sprintf("%s\n%s\n\n%s", title, body, m.help.ShortHelpView(helpKeys))
}

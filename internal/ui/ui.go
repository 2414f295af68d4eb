package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/mvx/internal/gateway"
	"github.com/desertthunder/mvx/internal/models"
	"github.com/desertthunder/mvx/internal/session"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	MovieListView ViewState = iota
	DetailView
)

// Model represents the TUI application state.
type Model struct {
	ctx       context.Context
	view      ViewState
	api       *gateway.Client
	sessions  *session.Coordinator
	width     int
	height    int
	movieList list.Model
	page      models.MoviePage
	detail    *models.MovieDetail
	snapshot  session.Snapshot
	status    string
	err       error
	help      help.Model
	keys      keyMap
}

type moviesFetchedMsg struct {
	page models.MoviePage
}

type detailFetchedMsg struct {
	detail *models.MovieDetail
	err    error
}

type watchlistToggledMsg struct {
	status *models.WatchlistStatus
	err    error
}

type sessionChangedMsg struct {
	snapshot session.Snapshot
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, api *gateway.Client, sessions *session.Coordinator) *Model {
	return &Model{
		ctx:      ctx,
		view:     MovieListView,
		api:      api,
		sessions: sessions,
		snapshot: sessions.Snapshot(),
		help:     help.New(),
		keys:     newKeyMap(),
	}
}

// Init initializes the TUI by fetching the first page of the popular feed.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.fetchMovies(1), m.watchSession())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.movieList.Width() == 0 {
			m.movieList.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case MovieListView:
			return m.handleMovieListKeys(msg)
		case DetailView:
			return m.handleDetailKeys(msg)
		}

	case moviesFetchedMsg:
		m.page = msg.page
		items := make([]list.Item, len(msg.page.Results))
		for i, movie := range msg.page.Results {
			items[i] = movieItem{movie: movie}
		}
		m.movieList = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.movieList.Title = fmt.Sprintf("Popular Movies (page %d)", msg.page.Page)
		m.movieList.SetSize(m.width-4, m.height-8)
		return m, nil

	case detailFetchedMsg:
		if msg.err != nil {
			m.err = msg.err
			m.view = MovieListView
			return m, nil
		}
		m.err = nil
		m.detail = msg.detail
		m.view = DetailView
		return m, nil

	case watchlistToggledMsg:
		if msg.err != nil {
			if gateway.IsUnauthorized(msg.err) {
				if m.snapshot.IsAuthenticated() {
					// The backend stopped accepting our token; purge it so the
					// status line stops claiming a signed-in session.
					m.sessions.Invalidate()
					m.status = "Session expired, sign in again"
				} else {
					m.status = "Sign in to use your watchlist"
				}
			} else {
				m.status = fmt.Sprintf("Watchlist update failed: %v", msg.err)
			}
			return m, nil
		}
		if msg.status.InWatchlist {
			m.status = "Added to watchlist"
		} else {
			m.status = "Removed from watchlist"
		}
		m.sessions.RefreshUser(m.ctx)
		return m, nil

	case sessionChangedMsg:
		m.snapshot = msg.snapshot
		return m, m.watchSession()
	}

	return m.updateList(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case MovieListView:
		return m.renderMovieList()
	case DetailView:
		return m.renderDetail()
	default:
		return ""
	}
}

func (m *Model) handleMovieListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "enter":
		if selected := m.movieList.SelectedItem(); selected != nil {
			if item, ok := selected.(movieItem); ok {
				return m, m.fetchDetail(item.movie.ID)
			}
		}
	case "l", "right":
		if m.page.Page < m.page.TotalPages {
			return m, m.fetchMovies(m.page.Page + 1)
		}
	case "h", "left":
		if m.page.Page > 1 {
			return m, m.fetchMovies(m.page.Page - 1)
		}
	case "w":
		if selected := m.movieList.SelectedItem(); selected != nil {
			if item, ok := selected.(movieItem); ok {
				return m, m.toggleWatchlist(item.movie.ID)
			}
		}
	}

	var cmd tea.Cmd
	m.movieList, cmd = m.movieList.Update(msg)
	return m, cmd
}

func (m *Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.view = MovieListView
		m.detail = nil
		return m, nil
	case "w":
		if m.detail != nil {
			return m, m.toggleWatchlist(m.detail.ID)
		}
	}
	return m, nil
}

func (m *Model) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	if m.view == MovieListView {
		m.movieList, cmd = m.movieList.Update(msg)
	}
	return m, cmd
}

func (m *Model) fetchMovies(page int) tea.Cmd {
	return func() tea.Msg {
		return moviesFetchedMsg{page: m.api.Popular(m.ctx, page)}
	}
}

func (m *Model) fetchDetail(movieID int) tea.Cmd {
	return func() tea.Msg {
		detail, err := m.api.Details(m.ctx, movieID)
		return detailFetchedMsg{detail: detail, err: err}
	}
}

func (m *Model) toggleWatchlist(movieID int) tea.Cmd {
	return func() tea.Msg {
		status, err := m.api.ToggleWatchlist(m.ctx, movieID)
		return watchlistToggledMsg{status: status, err: err}
	}
}

// watchSession delivers the next session transition as a message.
func (m *Model) watchSession() tea.Cmd {
	changes := make(chan session.Snapshot, 1)
	unsubscribe := m.sessions.Subscribe(func(s session.Snapshot) {
		select {
		case changes <- s:
		default:
		}
	})

	return func() tea.Msg {
		defer unsubscribe()
		select {
		case snapshot := <-changes:
			return sessionChangedMsg{snapshot: snapshot}
		case <-m.ctx.Done():
			return nil
		}
	}
}

func (m *Model) renderMovieList() string {
	helpKeys := []key.Binding{m.keys.enter, m.keys.nextPage, m.keys.watchlist, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n%s\n%s", m.movieList.View(), m.statusLine(), helpView)
}

func (m *Model) renderDetail() string {
	if m.detail == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString(styles.title.Render(m.detail.Title))
	b.WriteString("\n")

	if m.detail.Tagline != "" {
		b.WriteString(styles.help.Render(m.detail.Tagline))
		b.WriteString("\n")
	}

	meta := fmt.Sprintf("%.1f/10", m.detail.VoteAverage)
	if year := m.detail.Year(); year != "" {
		meta = fmt.Sprintf("%s • %s", year, meta)
	}
	if m.detail.Runtime > 0 {
		meta = fmt.Sprintf("%s • %d min", meta, m.detail.Runtime)
	}
	b.WriteString(meta)
	b.WriteString("\n")

	if len(m.detail.Genres) > 0 {
		names := make([]string, len(m.detail.Genres))
		for i, genre := range m.detail.Genres {
			names[i] = genre.Name
		}
		b.WriteString(strings.Join(names, ", "))
		b.WriteString("\n")
	}

	if m.detail.Overview != "" {
		b.WriteString("\n")
		b.WriteString(m.detail.Overview)
		b.WriteString("\n")
	}

	if m.detail.PosterPath != "" {
		b.WriteString("\n")
		b.WriteString(styles.help.Render(m.api.ResolveImageURL(m.detail.PosterPath, "")))
		b.WriteString("\n")
	}

	helpKeys := []key.Binding{m.keys.watchlist, m.keys.back, m.keys.quit}
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(m.help.ShortHelpView(helpKeys))
	return b.String()
}

// statusLine shows session identity plus the last transient message.
func (m *Model) statusLine() string {
	var who string
	if m.snapshot.IsAuthenticated() {
		who = styles.ok.Render(fmt.Sprintf("signed in as %s", m.snapshot.User.Username))
	} else {
		who = styles.warn.Render("browsing anonymously")
	}

	if m.status != "" {
		return fmt.Sprintf("%s • %s", who, m.status)
	}
	return who
}

package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/yto/internal/models"
	"github.com/desertthunder/yto/internal/sorting"
	"github.com/desertthunder/yto/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	PlaylistListView ViewState = iota
	VideoListView
)

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	organizer    *tasks.Organizer
	view         ViewState
	width        int
	height       int
	playlistList list.Model
	videoList    list.Model
	selected     *models.Playlist
	sortMode     sorting.Mode
	progressChan chan tasks.ProgressUpdate
	progress     tasks.ProgressUpdate
	loading      bool
	err          error
	help         help.Model
	keys         keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, organizer *tasks.Organizer) *Model {
	return &Model{
		ctx:       ctx,
		view:      PlaylistListView,
		organizer: organizer,
		sortMode:  organizer.SortMode(),
		help:      help.New(),
		keys:      newKeyMap(),
	}
}

// Init starts the library preload.
func (m *Model) Init() tea.Cmd {
	m.loading = true
	m.progressChan = make(chan tasks.ProgressUpdate, 50)

	go func() {
		err := m.organizer.Preload(m.ctx, m.progressChan)
		m.err = err
		close(m.progressChan)
	}()

	return m.waitForProgress()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.playlistList.Width() == 0 {
			m.playlistList.SetSize(msg.Width-4, msg.Height-8)
		}
		if m.videoList.Width() == 0 {
			m.videoList.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case PlaylistListView:
			return m.handlePlaylistListKeys(msg)
		case VideoListView:
			return m.handleVideoListKeys(msg)
		}

	case progressUpdateMsg:
		m.progress = tasks.ProgressUpdate(msg)
		return m, m.waitForProgress()

	case libraryLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
		}
		m.playlistList = list.New(playlistItems(msg.playlists), list.NewDefaultDelegate(), 0, 0)
		m.playlistList.Title = m.listTitle()
		m.playlistList.SetSize(m.width-4, m.height-8)
		return m, nil

	case pageLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.playlistList.SetItems(playlistItems(msg.playlists))
		return m, nil

	case videosLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.selected = &msg.playlist
		m.videoList = list.New(videoItems(msg.videos), list.NewDefaultDelegate(), 0, 0)
		m.videoList.Title = fmt.Sprintf("Videos in '%s'", msg.playlist.Title)
		m.videoList.SetSize(m.width-4, m.height-8)
		m.view = VideoListView
		return m, nil
	}

	return m.updateLists(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.loading {
		title := styles.title.Render("Loading library")
		return fmt.Sprintf("%s\n\n%s", title, m.progress.Message)
	}
	if m.err != nil && m.playlistList.Items() == nil {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case PlaylistListView:
		return m.renderPlaylistList()
	case VideoListView:
		return m.renderVideoList()
	default:
		return ""
	}
}

func (m *Model) handlePlaylistListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.enter):
		if item, ok := m.playlistList.SelectedItem().(playlistItem); ok {
			return m, m.fetchVideos(item.playlist)
		}
	case key.Matches(msg, m.keys.moveUp):
		return m.movePlaylist(-1)
	case key.Matches(msg, m.keys.moveDown):
		return m.movePlaylist(1)
	case key.Matches(msg, m.keys.sortMode):
		m.sortMode = nextMode(m.sortMode)
		m.organizer.SetSortMode(m.sortMode)
		m.playlistList.SetItems(playlistItems(m.organizer.Playlists()))
		m.playlistList.Title = m.listTitle()
		return m, nil
	case key.Matches(msg, m.keys.more):
		if m.organizer.HasMore() {
			return m, m.fetchMore()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.playlistList, cmd = m.playlistList.Update(msg)
	return m, cmd
}

func (m *Model) handleVideoListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.view = PlaylistListView
		m.selected = nil
		return m, nil
	}

	var cmd tea.Cmd
	m.videoList, cmd = m.videoList.Update(msg)
	return m, cmd
}

// movePlaylist shifts the selected playlist one position and keeps the cursor
// on it. The organizer switches to custom ordering as a side effect.
func (m *Model) movePlaylist(delta int) (tea.Model, tea.Cmd) {
	from := m.playlistList.Index()
	to := from + delta
	if to < 0 || to >= len(m.playlistList.Items()) {
		return m, nil
	}

	m.sortMode = m.organizer.Reorder(m.ctx, from, to)
	m.playlistList.SetItems(playlistItems(m.organizer.Playlists()))
	m.playlistList.Select(to)
	m.playlistList.Title = m.listTitle()
	return m, nil
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case PlaylistListView:
		m.playlistList, cmd = m.playlistList.Update(msg)
	case VideoListView:
		m.videoList, cmd = m.videoList.Update(msg)
	}
	return m, cmd
}

func (m *Model) waitForProgress() tea.Cmd {
	return func() tea.Msg {
		update, ok := <-m.progressChan
		if !ok {
			return libraryLoadedMsg{playlists: m.organizer.Playlists(), err: m.err}
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) fetchVideos(p models.Playlist) tea.Cmd {
	return func() tea.Msg {
		videos, err := m.organizer.LoadVideos(m.ctx, p.ID, nil)
		return videosLoadedMsg{playlist: p, videos: videos, err: err}
	}
}

func (m *Model) fetchMore() tea.Cmd {
	return func() tea.Msg {
		err := m.organizer.LoadMore(m.ctx, nil)
		return pageLoadedMsg{playlists: m.organizer.Playlists(), err: err}
	}
}

func (m *Model) listTitle() string {
	return fmt.Sprintf("Playlists (%s)", m.sortMode)
}

func nextMode(mode sorting.Mode) sorting.Mode {
	switch mode {
	case sorting.ModeCustom:
		return sorting.ModeAlphabetical
	case sorting.ModeAlphabetical:
		return sorting.ModeRecent
	default:
		return sorting.ModeCustom
	}
}

func (m *Model) renderPlaylistList() string {
	helpKeys := []key.Binding{m.keys.enter, m.keys.moveUp, m.keys.moveDown, m.keys.sortMode, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", m.playlistList.View(), helpView)
}

func (m *Model) renderVideoList() string {
	helpKeys := []key.Binding{m.keys.back, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", m.videoList.View(), helpView)
}

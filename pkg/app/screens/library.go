package screens

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/kerbaras/comics/pkg/app/components"
	"github.com/kerbaras/comics/pkg/app/styles"
	"github.com/kerbaras/comics/pkg/data"
	"github.com/kerbaras/comics/pkg/services"
)

// CacheWarmer is the part of services.Warmer the list screen drives.
type CacheWarmer interface {
	Warm(ctx context.Context) (services.WarmResult, error)
	GetProgressChannel() <-chan services.WarmProgress
}

// LibraryScreen lists the comic index and can warm the image cache.
type LibraryScreen struct {
	index     *data.Index
	warmer    CacheWarmer
	comicList *components.ComicList
	progress  *components.ProgressTracker
	warming   bool
	status    string
	width     int
	height    int
	err       error
}

func NewLibraryScreen(index *data.Index, warmer CacheWarmer) *LibraryScreen {
	return &LibraryScreen{
		index:     index,
		warmer:    warmer,
		comicList: components.NewComicList(),
		progress:  components.NewProgressTracker(80),
	}
}

func (s *LibraryScreen) Init() tea.Cmd {
	return s.loadLibrary
}

// Select moves the selection to slug, used when coming back from the reader.
func (s *LibraryScreen) Select(slug string) {
	s.comicList.Select(slug)
}

func (s *LibraryScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.width = msg.Width
		s.height = msg.Height
		s.comicList.Width = msg.Width - 4
		s.comicList.Height = msg.Height - 12
		s.progress.SetWidth(msg.Width - 4)

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			s.comicList.Prev()
		case "down", "j":
			s.comicList.Next()
		case "w":
			if s.warming || s.warmer == nil {
				break
			}
			s.warming = true
			s.status = ""
			s.progress.Clear()
			if s.index.Len() == 0 {
				return s, s.warm
			}
			return s, tea.Batch(s.warm, s.waitForProgress)
		case "enter":
			selected := s.comicList.Selected()
			if selected != nil {
				slug := selected.Slug
				return s, func() tea.Msg {
					return SwitchScreenMsg{Screen: "reader", Data: slug}
				}
			}
		}

	case libraryLoadedMsg:
		s.comicList.SetItems(msg.items)

	case warmProgressMsg:
		s.progress.Update(services.WarmProgress(msg))
		if msg.Done < msg.Total {
			return s, s.waitForProgress
		}

	case warmDoneMsg:
		s.warming = false
		s.err = msg.err
		s.status = fmt.Sprintf("Warmed %d of %d comics (%d failed)", msg.result.Resized, msg.result.Total, msg.result.Failed)
	}

	return s, nil
}

func (s *LibraryScreen) View() string {
	if s.width == 0 {
		return "Loading..."
	}

	header := styles.TitleStyle.Render("Comics")

	var errorMsg string
	if s.err != nil {
		errorMsg = styles.StatusError.Render(fmt.Sprintf("Error: %s", s.err))
		errorMsg += "\n\n"
	}

	listView := s.comicList.View()

	var progress string
	if view := s.progress.View(); view != "" {
		progress = "\n" + view
	}
	if s.status != "" {
		progress += "\n" + styles.StatusCompleted.Render(s.status)
	}

	help := styles.HelpStyle.Render(
		"↑/k: up • ↓/j: down • enter: read • w: warm cache • tab: switch view • q: quit",
	)

	return fmt.Sprintf("%s\n\n%s%s%s\n%s", header, errorMsg, listView, progress, help)
}

// Messages
type libraryLoadedMsg struct {
	items []data.Comic
}

type warmProgressMsg services.WarmProgress

type warmDoneMsg struct {
	result services.WarmResult
	err    error
}

// Commands
func (s *LibraryScreen) loadLibrary() tea.Msg {
	return libraryLoadedMsg{items: s.index.Entries()}
}

func (s *LibraryScreen) warm() tea.Msg {
	result, err := s.warmer.Warm(context.Background())
	return warmDoneMsg{result: result, err: err}
}

func (s *LibraryScreen) waitForProgress() tea.Msg {
	return warmProgressMsg(<-s.warmer.GetProgressChannel())
}

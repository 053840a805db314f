package screens

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/kerbaras/comics/pkg/app/styles"
	"github.com/kerbaras/comics/pkg/data"
)

type screenType int

const (
	listView screenType = iota
	readerView
)

// SwitchScreenMsg asks the root screen to show another screen. Data is the
// slug to open or select.
type SwitchScreenMsg struct {
	Screen string
	Data   interface{}
}

type RootScreen struct {
	index  *data.Index
	pages  PageSource
	warmer CacheWarmer

	currentView screenType
	library     *LibraryScreen
	reader      *ReaderScreen

	width  int
	height int
}

// NewRootScreen opens the reader at slug, or the list when slug is empty.
func NewRootScreen(index *data.Index, pages PageSource, warmer CacheWarmer, slug string) *RootScreen {
	r := &RootScreen{
		index:   index,
		pages:   pages,
		warmer:  warmer,
		library: NewLibraryScreen(index, warmer),
	}
	if slug != "" {
		r.currentView = readerView
		r.reader = NewReaderScreen(pages, slug)
	}
	return r
}

func (r *RootScreen) Init() tea.Cmd {
	if r.currentView == readerView {
		return tea.Batch(r.library.Init(), r.reader.Init())
	}
	return r.library.Init()
}

func (r *RootScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		r.width = msg.Width
		r.height = msg.Height
		// Both screens keep their layout in sync.
		r.library.Update(msg)
		if r.reader != nil {
			r.reader.Update(msg)
		}
		return r, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return r, tea.Quit
		case "tab":
			if r.currentView == listView {
				if r.reader == nil {
					last, ok := r.index.LastSlug()
					if !ok {
						return r, nil
					}
					return r, r.openReader(last)
				}
				r.currentView = readerView
			} else {
				r.currentView = listView
			}
			return r, nil
		}

	case SwitchScreenMsg:
		slug, _ := msg.Data.(string)
		switch msg.Screen {
		case "list":
			r.currentView = listView
			if slug != "" {
				r.library.Select(slug)
			}
		case "reader":
			if slug != "" {
				cmd = r.openReader(slug)
			}
		}
		return r, cmd
	}

	// Library messages keep flowing while reading, e.g. warm progress.
	switch msg.(type) {
	case libraryLoadedMsg, warmProgressMsg, warmDoneMsg:
		newModel, newCmd := r.library.Update(msg)
		r.library = newModel.(*LibraryScreen)
		return r, newCmd
	case pageLoadedMsg:
		if r.reader != nil {
			newModel, newCmd := r.reader.Update(msg)
			r.reader = newModel.(*ReaderScreen)
			return r, newCmd
		}
		return r, nil
	}

	// Forward message to active screen
	switch r.currentView {
	case listView:
		newModel, newCmd := r.library.Update(msg)
		r.library = newModel.(*LibraryScreen)
		return r, newCmd
	case readerView:
		if r.reader != nil {
			newModel, newCmd := r.reader.Update(msg)
			r.reader = newModel.(*ReaderScreen)
			return r, newCmd
		}
	}

	return r, cmd
}

func (r *RootScreen) openReader(slug string) tea.Cmd {
	r.reader = NewReaderScreen(r.pages, slug)
	r.reader.Update(tea.WindowSizeMsg{Width: r.width, Height: r.height})
	r.currentView = readerView
	return r.reader.Init()
}

func (r *RootScreen) View() string {
	tabs := r.renderTabs()

	var content string
	switch r.currentView {
	case listView:
		content = r.library.View()
	case readerView:
		if r.reader != nil {
			content = r.reader.View()
		}
	}

	return fmt.Sprintf("%s\n\n%s", tabs, content)
}

func (r *RootScreen) renderTabs() string {
	listTab := "Comics"
	readerTab := "Reader"

	if r.currentView == listView {
		listTab = styles.ActiveTabStyle.Render(listTab)
		readerTab = styles.InactiveTabStyle.Render(readerTab)
	} else {
		listTab = styles.InactiveTabStyle.Render(listTab)
		readerTab = styles.ActiveTabStyle.Render(readerTab)
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, listTab, readerTab)
}

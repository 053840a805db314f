package screens

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/kerbaras/comics/pkg/app/styles"
	"github.com/kerbaras/comics/pkg/services"
)

// PageSource builds the page for a slug.
type PageSource interface {
	Build(slug string) (*services.Page, error)
}

// ReaderScreen shows one comic at a time and follows its navigation links.
type ReaderScreen struct {
	pages  PageSource
	page   *services.Page
	slug   string
	err    error
	width  int
	height int
}

func NewReaderScreen(pages PageSource, slug string) *ReaderScreen {
	return &ReaderScreen{pages: pages, slug: slug}
}

func (s *ReaderScreen) Init() tea.Cmd {
	return s.load(s.slug)
}

// Page is the page currently shown, nil until loaded.
func (s *ReaderScreen) Page() *services.Page {
	return s.page
}

var readerKeys = map[string]string{
	"g": "first", "home": "first",
	"h": "prev", "left": "prev", "p": "prev",
	"r": "random",
	"l": "next", "right": "next", "n": "next", " ": "next",
	"G": "last", "end": "last",
}

func (s *ReaderScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.width = msg.Width
		s.height = msg.Height

	case tea.KeyMsg:
		if msg.String() == "esc" {
			return s, func() tea.Msg {
				return SwitchScreenMsg{Screen: "list", Data: s.slug}
			}
		}
		name, ok := readerKeys[msg.String()]
		if !ok || s.page == nil {
			break
		}
		link, ok := s.page.Link(name)
		if !ok || link.Disabled {
			break
		}
		return s, s.load(link.Slug)

	case pageLoadedMsg:
		if msg.err != nil {
			s.err = msg.err
			break
		}
		s.err = nil
		s.page = msg.page
		s.slug = msg.page.Slug
	}

	return s, nil
}

func (s *ReaderScreen) View() string {
	if s.page == nil {
		if s.err != nil {
			return styles.StatusError.Render(fmt.Sprintf("Error: %s", s.err))
		}
		return "Loading..."
	}

	header := styles.TitleStyle.Render(s.page.Title)

	image := styles.MutedStyle.Render("(no image)")
	if s.page.Image != "" {
		image = lipgloss.JoinVertical(lipgloss.Left,
			styles.TextStyle.Render(s.page.Image),
			styles.MutedStyle.Render(fmt.Sprintf("%d × %d", s.page.Size.W, s.page.Size.H)),
		)
	}
	frame := styles.FrameStyle.Render(image)

	var nav []string
	for _, l := range s.page.Links {
		if l.Disabled {
			nav = append(nav, styles.DisabledLinkStyle.Render(l.Name))
		} else {
			nav = append(nav, styles.LinkStyle.Render(l.Name))
		}
	}

	var errorMsg string
	if s.err != nil {
		errorMsg = "\n" + styles.StatusError.Render(fmt.Sprintf("Error: %s", s.err))
	}

	help := styles.HelpStyle.Render(
		"g: first • ←/h: prev • r: random • →/l: next • G: last • esc: list • q: quit",
	)

	return fmt.Sprintf("%s\n%s\n\n%s%s\n%s",
		header, frame, strings.Join(nav, " "), errorMsg, help)
}

type pageLoadedMsg struct {
	page *services.Page
	err  error
}

func (s *ReaderScreen) load(slug string) tea.Cmd {
	return func() tea.Msg {
		page, err := s.pages.Build(slug)
		return pageLoadedMsg{page: page, err: err}
	}
}

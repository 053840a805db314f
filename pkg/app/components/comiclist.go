package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/kerbaras/comics/pkg/app/styles"
	"github.com/kerbaras/comics/pkg/data"
)

// ComicList is a scrolling list of index entries with one selected.
type ComicList struct {
	Items         []data.Comic
	SelectedIndex int
	Width         int
	Height        int
}

func NewComicList() *ComicList {
	return &ComicList{
		Items:         []data.Comic{},
		SelectedIndex: 0,
		Width:         80,
		Height:        20,
	}
}

func (m *ComicList) SetItems(items []data.Comic) {
	m.Items = items
	if m.SelectedIndex >= len(items) && len(items) > 0 {
		m.SelectedIndex = len(items) - 1
	}
	if len(items) == 0 {
		m.SelectedIndex = 0
	}
}

func (m *ComicList) Next() {
	if len(m.Items) == 0 {
		return
	}
	m.SelectedIndex++
	if m.SelectedIndex >= len(m.Items) {
		m.SelectedIndex = 0
	}
}

func (m *ComicList) Prev() {
	if len(m.Items) == 0 {
		return
	}
	m.SelectedIndex--
	if m.SelectedIndex < 0 {
		m.SelectedIndex = len(m.Items) - 1
	}
}

// Select moves the selection to slug, if present.
func (m *ComicList) Select(slug string) bool {
	for i, c := range m.Items {
		if c.Slug == slug {
			m.SelectedIndex = i
			return true
		}
	}
	return false
}

func (m *ComicList) Selected() *data.Comic {
	if len(m.Items) == 0 || m.SelectedIndex >= len(m.Items) {
		return nil
	}
	return &m.Items[m.SelectedIndex]
}

// visibleRange returns the window of items that fits in Height, keeping
// the selection in view. Each card takes four lines.
func (m *ComicList) visibleRange() (int, int) {
	perPage := m.Height / 4
	if perPage < 1 {
		perPage = 1
	}
	start := 0
	if m.SelectedIndex >= perPage {
		start = m.SelectedIndex - perPage + 1
	}
	end := start + perPage
	if end > len(m.Items) {
		end = len(m.Items)
	}
	return start, end
}

func (m *ComicList) View() string {
	if len(m.Items) == 0 {
		emptyMsg := styles.MutedStyle.Render("No comics in the index")
		return lipgloss.Place(m.Width, m.Height, lipgloss.Center, lipgloss.Center, emptyMsg)
	}

	var b strings.Builder
	start, end := m.visibleRange()

	for i := start; i < end; i++ {
		item := m.Items[i]
		cardStyle := styles.CardStyle
		if i == m.SelectedIndex {
			cardStyle = styles.ActiveCardStyle
		}

		title := styles.TextStyle.Bold(true).Render(fmt.Sprintf("#%d %s", i+1, item.Title))
		info := styles.MutedStyle.Render(fmt.Sprintf("%s • %s", item.Slug, item.File))

		card := cardStyle.Width(max(m.Width-4, 10)).Render(lipgloss.JoinVertical(lipgloss.Left, title, info))
		b.WriteString(card)
		b.WriteString("\n")
	}

	b.WriteString(styles.MutedStyle.Render(fmt.Sprintf("%d/%d", m.SelectedIndex+1, len(m.Items))))
	return b.String()
}

package app

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/kerbaras/comics/pkg/app/screens"
	"github.com/kerbaras/comics/pkg/services"
)

type App struct {
	ctrl *services.ComicController
	slug string
}

// NewApp builds the terminal reader. When slug is set the reader opens on
// that comic instead of the list.
func NewApp(ctrl *services.ComicController, slug string) *App {
	return &App{ctrl: ctrl, slug: slug}
}

func (a *App) Model() tea.Model {
	return screens.NewRootScreen(a.ctrl.Index(), a.ctrl.Pages(), a.ctrl.Warmer(), a.slug)
}

func (a *App) Run() error {
	p := tea.NewProgram(a.Model(), tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	return err
}

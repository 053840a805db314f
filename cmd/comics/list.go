package comics

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/kerbaras/comics/pkg/data"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all comics in the index",
	Long:  "Display every comic of the index, oldest first, in a formatted table",
	Run: func(cmd *cobra.Command, args []string) {
		index, err := data.LoadIndex(cfg.IndexPath)
		cobra.CheckErr(err)

		comics := index.Entries()
		if len(comics) == 0 {
			fmt.Printf("No comics in %s\n", index.Path())
			return
		}

		// Pipes get plain tab separated lines.
		if !isatty.IsTerminal(os.Stdout.Fd()) {
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			for i, c := range comics {
				found, _ := index.Find(c.Slug)
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n", i+1, c.Slug, c.Title, c.File, orDash(found.PrevSlug), orDash(found.NextSlug))
			}
			cobra.CheckErr(w.Flush())
			return
		}

		columns := []table.Column{
			{Title: "#", Width: 5},
			{Title: "Slug", Width: 24},
			{Title: "Title", Width: 36},
			{Title: "File", Width: 24},
			{Title: "Prev", Width: 16},
			{Title: "Next", Width: 16},
		}

		rows := make([]table.Row, 0, len(comics))
		for i, c := range comics {
			found, _ := index.Find(c.Slug)
			rows = append(rows, table.Row{
				fmt.Sprintf("%d", i+1),
				truncateString(c.Slug, 22),
				truncateString(c.Title, 34),
				truncateString(c.File, 22),
				truncateString(orDash(found.PrevSlug), 14),
				truncateString(orDash(found.NextSlug), 14),
			})
		}

		t := table.New(
			table.WithColumns(columns),
			table.WithRows(rows),
			table.WithFocused(false),
			table.WithHeight(len(rows)),
		)

		s := table.DefaultStyles()
		s.Header = s.Header.
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("240")).
			BorderBottom(true).
			Bold(true)
		s.Selected = lipgloss.NewStyle()
		t.SetStyles(s)

		fmt.Printf("\nComics (%d)\n\n", len(comics))
		fmt.Println(t.View())
	},
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-1]) + "…"
}

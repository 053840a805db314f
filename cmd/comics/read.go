package comics

import (
	"github.com/spf13/cobra"
)

var readCmd = &cobra.Command{
	Use:   "read [slug]",
	Short: "Read comics in the terminal",
	Long:  "Open the terminal reader, on the given comic or on the comic list",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		slug := ""
		if len(args) == 1 {
			slug = args[0]
		}
		runReader(slug)
	},
}

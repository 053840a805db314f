package comics

import (
	"fmt"
	"strings"

	"github.com/kerbaras/comics/pkg/integrations"
	"github.com/spf13/cobra"
)

var epubCmd = &cobra.Command{
	Use:   "epub",
	Short: "Export the archive as an EPUB",
	Long:  "Bundle every comic of the index, resized to the page width, into a single EPUB book",
	Run: func(cmd *cobra.Command, args []string) {
		title, _ := cmd.Flags().GetString("title")
		output, _ := cmd.Flags().GetString("output")
		device, _ := cmd.Flags().GetString("device")

		path, err := controller().ExportEPub(title, output, device)
		if err != nil {
			cobra.CheckErr(fmt.Errorf("EPUB generation failed: %w", err))
		}
		fmt.Printf("EPUB created: %s\n", path)
	},
}

func init() {
	epubCmd.Flags().StringP("output", "o", "", "Output file (default <title>.epub)")
	epubCmd.Flags().StringP("title", "t", "Comics", "Book title")
	epubCmd.Flags().StringP("device", "d", "", "Size pages for a reader ("+strings.Join(integrations.DeviceIDs(), ", ")+")")
}

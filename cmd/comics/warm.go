package comics

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/kerbaras/comics/pkg/services"
	"github.com/spf13/cobra"
)

var warmCmd = &cobra.Command{
	Use:   "warm",
	Short: "Resize every comic into the image cache",
	Long:  "Resize every comic of the index to the page width so the server only serves cached files",
	Run: func(cmd *cobra.Command, args []string) {
		warmer := controller().Warmer()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		done := make(chan struct{})
		printed := make(chan struct{})
		go func() {
			defer close(printed)
			for {
				select {
				case p := <-warmer.GetProgressChannel():
					printProgress(p)
				case <-done:
					// drain what was sent before Warm returned
					for {
						select {
						case p := <-warmer.GetProgressChannel():
							printProgress(p)
						default:
							return
						}
					}
				}
			}
		}()

		result, err := warmer.Warm(ctx)
		close(done)
		<-printed
		cobra.CheckErr(err)

		fmt.Printf("\nWarmed %d of %d comics (%d failed)\n", result.Resized, result.Total, result.Failed)
	},
}

func printProgress(p services.WarmProgress) {
	if p.Error != nil {
		fmt.Printf("  [%d/%d] %s: %v\n", p.Done, p.Total, p.Slug, p.Error)
		return
	}
	fmt.Printf("  [%d/%d] %s\n", p.Done, p.Total, p.Slug)
}

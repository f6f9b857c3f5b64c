package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/distributhor/arangotools/repository"
)

var (
	clearDrop bool
	clearYes  bool
)

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Empty every collection of the configured database",
	Long: `Empty every collection of the configured database, or with --drop remove
every graph and collection.

Examples:
  arangotools clear --yes
  arangotools clear --drop --yes`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !clearYes {
			return fmt.Errorf("refusing to clear %s without --yes", cfg.Arango.Database)
		}
		db, release, err := database(cmd.Context())
		if err != nil {
			return err
		}
		defer release()

		method := repository.Truncate
		if clearDrop {
			method = repository.Drop
		}
		if err := db.ClearDB(cmd.Context(), method); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "cleared %s\n", db.Name())
		return nil
	},
}

func init() {
	clearCmd.Flags().BoolVar(&clearDrop, "drop", false, "drop graphs and collections instead of truncating")
	clearCmd.Flags().BoolVar(&clearYes, "yes", false, "confirm")
	rootCmd.AddCommand(clearCmd)
}

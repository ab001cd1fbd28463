package cmd

import (
	"github.com/spf13/cobra"

	"scour.dev/pkg/scour/internal/domain"
)

const lsLongDescription = `List the files contained in the scope without searching their contents.

` + pathArgsHelp

// lsCmd represents the ls command.
var lsCmd = newLsCmd()

func newLsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ls [paths...]",
		Short: "List files in the scope",
		Long:  lsLongDescription,
		RunE: func(cmd *cobra.Command, args []string) error {
			scope, err := buildScope(args)
			if err != nil {
				return err
			}

			searcher := domain.NewSearcher(fsAdapter, buildUI(cmd))

			return searcher.ListFiles(cmd.Context(), scope)
		},
	}
}

func init() {
	rootCmd.AddCommand(lsCmd)
}

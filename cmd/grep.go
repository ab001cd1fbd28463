package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"scour.dev/pkg/scour/internal/domain"
)

var grepRegexFlag bool
var grepIgnoreCaseFlag bool
var grepParallelFlag int

const grepLongDescription = `Search the scope for a query string. The query is literal by default; pass
-e to treat it as a regular expression.

` + pathArgsHelp

// grepCmd represents the grep command.
var grepCmd = newGrepCmd()

func newGrepCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "grep <query> [paths...]",
		Short: "Search for text inside the scope",
		Long:  grepLongDescription,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scope, err := buildScope(args[1:])
			if err != nil {
				return err
			}

			searcher := domain.NewSearcher(fsAdapter, buildUI(cmd))

			return searcher.Search(cmd.Context(), scope, domain.SearchArgs{
				Query:      args[0],
				Regex:      grepRegexFlag,
				IgnoreCase: grepIgnoreCaseFlag,
				Workers:    viper.GetInt(parallelConfigKey),
			})
		},
	}

	configureGrepFlags(cmd)

	return cmd
}

func init() {
	rootCmd.AddCommand(grepCmd)
}

func configureGrepFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVarP(&grepRegexFlag, "regex", "e", false, "treat the query as a regular expression")
	cmd.Flags().BoolVarP(&grepIgnoreCaseFlag, "ignore-case", "i", false, "match the query case-insensitively")
	cmd.Flags().IntVarP(&grepParallelFlag, parallelFlagName, "p", viper.GetInt(parallelConfigKey), "number of parallel scan workers")
	bindFlagToConfig(cmd.Flags().Lookup(parallelFlagName), parallelConfigKey)
}

// Package cmd provides the root command and CLI setup for scour.
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"scour.dev/pkg/scour/internal/adapter"
	"scour.dev/pkg/scour/internal/controller"
	"scour.dev/pkg/scour/internal/domain"
	m "scour.dev/pkg/scour/internal/model"
)

var fsAdapter *adapter.LocalResourceFS
var worksetStore adapter.WorkingSetStore

// filePatternsFlag holds the repeatable file-name glob patterns shared by
// commands that build a scope.
var filePatternsFlag []string

// includeDerivedFlag includes build-output resources when set.
var includeDerivedFlag bool

// worksetNamesFlag selects stored working sets as scope roots.
var worksetNamesFlag []string

// simpleUIFlag forces plain output even on a terminal.
var simpleUIFlag bool

var verboseFlag bool

func init() {
	configureRootFlags(rootCmd)

	// Initialize shared dependencies.
	fsAdapter = adapter.NewLocalResourceFS(viper.GetStringSlice(derivedNamesConfigKey))
	worksetStore = adapter.NewYAMLWorkingSetStore(m.Path(viper.GetString(worksetFileConfigKey)))
}

const pathArgsHelp = `Path arguments become the scope roots. Nested roots are deduplicated
(the broader root wins) and glob path arguments are expanded:
  - scour grep TODO ./cmd ./internal     search two subtrees
  - scour grep TODO "src/*/test"         roots from a path glob
  - scour grep TODO -w backend           roots from a stored working set`

const rootLongDescription = `Scour runs text searches over a file tree, restricted to a scope: a set of
root paths, optional file-name glob patterns (-g '*.go'), and a flag that
controls whether derived resources such as build output are visited.

` + pathArgsHelp

// rootCmd represents the base command when called without any subcommands.
var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scour",
		Short: "Scoped text search for file trees",
		Long:  rootLongDescription,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			configureLogger("", verboseFlag || viper.GetBool(logVerboseKey))
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
}

func configureRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().
		StringArrayVarP(
			&filePatternsFlag, patternFlagName, "g",
			viper.GetStringSlice(patternsConfigKey),
			"file name glob pattern, e.g. '*.go' (can be repeated; default matches every name)",
		)
	bindFlagToConfig(cmd.PersistentFlags().Lookup(patternFlagName), patternsConfigKey)

	cmd.PersistentFlags().BoolVar(&includeDerivedFlag, includeDerivedFlagName, viper.GetBool(includeDerivedConfigKey), "include derived (build output) resources in the scope")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(includeDerivedFlagName), includeDerivedConfigKey)

	cmd.PersistentFlags().StringArrayVarP(&worksetNamesFlag, worksetFlagName, "w", nil, "build the scope from a stored working set (can be repeated)")

	cmd.PersistentFlags().BoolVar(&simpleUIFlag, simpleFlagName, viper.GetBool(simpleConfigKey), "force plain output instead of the interactive pager")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(simpleFlagName), simpleConfigKey)

	cmd.PersistentFlags().BoolVarP(&verboseFlag, verboseFlagName, "v", viper.GetBool(logVerboseKey), "log at debug level")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(verboseFlagName), logVerboseKey)
}

// bindFlagToConfig wires a Cobra flag to a Viper key so config/env values feed the flag.
func bindFlagToConfig(flag *pflag.Flag, key string) {
	if flag == nil {
		cobra.CheckErr(fmt.Errorf("flag for config key %q not found", key))
		return
	}

	cobra.CheckErr(viper.BindPFlag(key, flag))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

// buildUI picks the output controller for a command invocation.
func buildUI(cmd *cobra.Command) controller.UI {
	tty := controller.IsTTY(os.Stdout) && !viper.GetBool(simpleConfigKey)
	return controller.NewUI(cmd, tty)
}

// buildScope turns CLI input into a scope: stored working sets when -w was
// given, explicit roots from path arguments, and the whole working directory
// otherwise.
func buildScope(pathArgs []string) (*domain.Scope, error) {
	patterns := viper.GetStringSlice(patternsConfigKey)
	if err := domain.ValidateNamePatterns(patterns); err != nil {
		return nil, err
	}

	includeDerived := viper.GetBool(includeDerivedConfigKey)

	if len(worksetNamesFlag) > 0 {
		return buildWorksetScope(worksetNamesFlag, patterns, includeDerived)
	}

	if len(pathArgs) == 0 {
		root, err := fsAdapter.Resolve(".")
		if err != nil {
			return nil, fmt.Errorf("resolve working directory: %w", err)
		}

		return domain.NewWorkspaceScope(root, patterns, includeDerived), nil
	}

	paths, err := expandRootArgs(pathArgs)
	if err != nil {
		return nil, err
	}

	roots := make([]domain.Resource, 0, len(paths))

	for _, path := range paths {
		r, err := fsAdapter.Resolve(m.Path(path))
		if err != nil {
			return nil, fmt.Errorf("resolve root %q: %w", path, err)
		}

		roots = append(roots, r)
	}

	return domain.NewScope(roots, patterns, includeDerived), nil
}

func buildWorksetScope(names []string, patterns []string, includeDerived bool) (*domain.Scope, error) {
	stored, err := worksetStore.Load()
	if err != nil {
		return nil, err
	}

	byName := make(map[string]m.WorkingSet, len(stored))
	for _, ws := range stored {
		byName[ws.Name] = ws
	}

	sets := make([]domain.WorkingSet, 0, len(names))

	for _, name := range names {
		ws, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("unknown working set %q", name)
		}

		sets = append(sets, fsAdapter.WorkingSetView(ws))
	}

	workspaceRoot, err := fsAdapter.Resolve(".")
	if err != nil {
		return nil, fmt.Errorf("resolve working directory: %w", err)
	}

	return domain.NewWorkingSetScope(sets, workspaceRoot, patterns, includeDerived), nil
}

// expandRootArgs expands glob path arguments (doublestar syntax, so ** works
// across separators) and passes plain paths through untouched.
func expandRootArgs(args []string) ([]string, error) {
	expanded := make([]string, 0, len(args))

	for _, arg := range args {
		if !strings.ContainsAny(arg, "*?[{") {
			expanded = append(expanded, arg)
			continue
		}

		matches, err := doublestar.FilepathGlob(arg)
		if err != nil {
			return nil, fmt.Errorf("invalid path pattern %q: %w", arg, err)
		}

		if len(matches) == 0 {
			return nil, fmt.Errorf("path pattern %q matched nothing", arg)
		}

		expanded = append(expanded, matches...)
	}

	return expanded, nil
}

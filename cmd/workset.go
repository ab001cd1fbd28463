package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	m "scour.dev/pkg/scour/internal/model"
)

var worksetAggregateFlag bool

// worksetCmd groups the working-set management subcommands.
var worksetCmd = newWorksetCmd()

func newWorksetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workset",
		Short: "Manage stored working sets",
		Long: `Working sets are named groups of root paths stored next to the config file.
Pass one to a search with -w NAME to use it as the scope.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(newWorksetListCmd())
	cmd.AddCommand(newWorksetShowCmd())
	cmd.AddCommand(newWorksetAddCmd())
	cmd.AddCommand(newWorksetRemoveCmd())

	return cmd
}

func init() {
	rootCmd.AddCommand(worksetCmd)
}

func newWorksetListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored working sets",
		RunE: func(cmd *cobra.Command, _ []string) error {
			sets, err := worksetStore.Load()
			if err != nil {
				return err
			}

			if len(sets) == 0 {
				cmd.Println("no working sets stored")
				return nil
			}

			for _, ws := range sets {
				label := ""
				if ws.Aggregate {
					label = " (aggregate)"
				}

				cmd.Printf("%s%s: %d element(s)\n", ws.Name, label, len(ws.Elements))
			}

			return nil
		},
	}
}

func newWorksetShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <name>",
		Short: "Show the elements of a working set",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, _, err := findWorkset(args[0])
			if err != nil {
				return err
			}

			if ws.Aggregate && len(ws.Elements) == 0 {
				cmd.Printf("%s is an empty aggregate set; it expands to the whole workspace\n", ws.Name)
				return nil
			}

			for _, element := range ws.Elements {
				cmd.Println(string(element))
			}

			return nil
		},
	}
}

func newWorksetAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <name> [paths...]",
		Short: "Create or replace a working set",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.TrimSpace(args[0])
			if name == "" {
				return fmt.Errorf("working set name must not be empty")
			}

			paths, err := expandRootArgs(args[1:])
			if err != nil {
				return err
			}

			elements := make([]m.Path, 0, len(paths))
			for _, path := range paths {
				r, err := fsAdapter.Resolve(m.Path(path))
				if err != nil {
					return fmt.Errorf("resolve element %q: %w", path, err)
				}

				elements = append(elements, r.FullPath())
			}

			sets, err := worksetStore.Load()
			if err != nil {
				return err
			}

			replaced := false
			next := m.WorkingSet{Name: name, Elements: elements, Aggregate: worksetAggregateFlag}

			for i, ws := range sets {
				if ws.Name == name {
					sets[i] = next
					replaced = true

					break
				}
			}

			if !replaced {
				sets = append(sets, next)
			}

			if err := worksetStore.Save(sets); err != nil {
				return err
			}

			cmd.Printf("stored working set %s with %d element(s)\n", name, len(elements))

			return nil
		},
	}

	cmd.Flags().BoolVar(&worksetAggregateFlag, "aggregate", false, "mark the set as computed rather than user-assembled")

	return cmd
}

func newWorksetRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <name>",
		Short: "Remove a working set",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, index, err := findWorkset(args[0])
			if err != nil {
				return err
			}

			sets, err := worksetStore.Load()
			if err != nil {
				return err
			}

			sets = append(sets[:index], sets[index+1:]...)

			if err := worksetStore.Save(sets); err != nil {
				return err
			}

			cmd.Printf("removed working set %s\n", args[0])

			return nil
		},
	}
}

func findWorkset(name string) (m.WorkingSet, int, error) {
	sets, err := worksetStore.Load()
	if err != nil {
		return m.WorkingSet{}, -1, err
	}

	for i, ws := range sets {
		if ws.Name == name {
			return ws, i, nil
		}
	}

	return m.WorkingSet{}, -1, fmt.Errorf("unknown working set %q", name)
}

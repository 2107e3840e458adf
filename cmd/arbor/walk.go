package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/phanxgames/arbor"
)

var walkBackwards bool

var walkCmd = &cobra.Command{
	Use:   "walk <outline>",
	Short: "list every trail pointer of an outline in nested order",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := loadOutline(args[0], cmd.InOrStdin())
		if err != nil {
			return err
		}
		runWalk(cmd.OutOrStdout(), root, walkBackwards)
		return nil
	},
}

var betweenConfig struct {
	from, to string
	exclude  bool
}

var betweenCmd = &cobra.Command{
	Use:   "between <outline> --from before:PATH --to after:PATH",
	Short: "list the pointers a depth-first walk visits between two gaps",
	Long: `
PATH is a slash-separated list of child names below the root; the empty path
names the root itself (e.g. "before:", "after:a/b").
`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := loadOutline(args[0], cmd.InOrStdin())
		if err != nil {
			return err
		}
		return runBetween(cmd.OutOrStdout(), root,
			betweenConfig.from, betweenConfig.to, betweenConfig.exclude)
	},
}

func init() {
	walkCmd.Flags().BoolVarP(
		&walkBackwards, "backwards", "b", false, "walk from the end of the tree to the start")

	betweenCmd.Flags().StringVar(
		&betweenConfig.from, "from", "before:", "starting pointer")
	betweenCmd.Flags().StringVar(
		&betweenConfig.to, "to", "after:", "ending pointer")
	betweenCmd.Flags().BoolVar(
		&betweenConfig.exclude, "exclude", false, "do not visit the endpoints")
}

// formatPointer indents the pointer by its depth so the output reads as an
// outline.
func formatPointer(p arbor.TrailPointer) string {
	depth := p.Trail().Len() - 1
	side := "after "
	if p.IsBefore() {
		side = "before"
	}
	return fmt.Sprintf("%s%s %s", strings.Repeat("  ", depth), side, p.Trail().LastNode().Name)
}

func runWalk(w io.Writer, root *arbor.Node, backwards bool) {
	t := arbor.NewTrail(root)
	p := arbor.BeforePointer(t)
	if backwards {
		p = arbor.AfterPointer(t)
	}
	for p.IsActive() {
		fmt.Fprintln(w, formatPointer(p))
		if backwards {
			p.NestedBackwards()
		} else {
			p.NestedForwards()
		}
	}
}

func runBetween(w io.Writer, root *arbor.Node, from, to string, exclude bool) error {
	a, err := arbor.ParsePointer(root, from)
	if err != nil {
		return err
	}
	b, err := arbor.ParsePointer(root, to)
	if err != nil {
		return err
	}
	return a.DepthFirstUntil(b, func(p arbor.TrailPointer) bool {
		fmt.Fprintln(w, formatPointer(p))
		return false
	}, exclude)
}

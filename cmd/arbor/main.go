// Command arbor inspects how a scene outline is addressed by trail pointers
// and stitched into fitted blocks.
package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/phanxgames/arbor"
)

var rootCmd = &cobra.Command{
	Use:   "arbor [command] (flags)",
	Short: "arbor scene outline introspection tool",
	Long: `
Outlines declare one node per line with two spaces of indentation per level,
followed by optional attributes: rect=WxH, at=X,Y, scale=S, rotate=DEG, nofit,
split, hidden. Pass "-" to read the outline from stdin.
`,
	SilenceUsage: true,
}

func main() {
	log.SetFlags(0)

	cobra.EnableCommandSorting = false
	rootCmd.AddCommand(
		renderCmd,
		walkCmd,
		betweenCmd,
	)

	if err := rootCmd.Execute(); err != nil {
		// Cobra has already printed the error message.
		os.Exit(1)
	}
}

// loadOutline parses the outline at path, or stdin for "-".
func loadOutline(path string, stdin io.Reader) (*arbor.Node, error) {
	if path == "-" {
		return arbor.ParseOutline(stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening outline")
	}
	defer f.Close()
	root, err := arbor.ParseOutline(f)
	if err != nil {
		return nil, errors.Wrapf(err, "%s", path)
	}
	return root, nil
}

func formatRect(r arbor.Rect) string {
	if r.IsEmpty() {
		return "-"
	}
	return fmt.Sprintf("[%g,%g %g,%g]", r.MinX, r.MinY, r.MaxX, r.MaxY)
}

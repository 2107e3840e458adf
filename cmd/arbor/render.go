package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/phanxgames/arbor"
)

var renderConfig struct {
	width, height int
	margin        float64
	fit           string
	noClamp       bool
	verbose       bool
}

var renderCmd = &cobra.Command{
	Use:   "render <outline>",
	Short: "stitch an outline into fitted blocks and print their surfaces",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := loadOutline(args[0], cmd.InOrStdin())
		if err != nil {
			return err
		}
		return runRender(cmd.OutOrStdout(), root)
	},
}

func init() {
	renderCmd.Flags().IntVar(
		&renderConfig.width, "width", 640, "viewport width")
	renderCmd.Flags().IntVar(
		&renderConfig.height, "height", 480, "viewport height")
	renderCmd.Flags().Float64Var(
		&renderConfig.margin, "margin", arbor.DefaultFitMargin,
		"pixels added around fitted bounds (negative disables)")
	renderCmd.Flags().StringVar(
		&renderConfig.fit, "fit", "common-ancestor",
		"preferred fit: common-ancestor or full-display")
	renderCmd.Flags().BoolVar(
		&renderConfig.noClamp, "no-clamp", false, "do not clamp fitted bounds to the viewport")
	renderCmd.Flags().BoolVarP(
		&renderConfig.verbose, "verbose", "v", false, "log fit transitions and pass stats")
}

func parseFit(s string) (arbor.Fit, error) {
	switch s {
	case arbor.FitCommonAncestor.String():
		return arbor.FitCommonAncestor, nil
	case arbor.FitFullDisplay.String():
		return arbor.FitFullDisplay, nil
	}
	return 0, errors.Newf("unknown fit %q", s)
}

func runRender(w io.Writer, root *arbor.Node) error {
	fit, err := parseFit(renderConfig.fit)
	if err != nil {
		return err
	}
	margin := renderConfig.margin
	if margin == 0 {
		margin = arbor.NoFitMargin
	}
	d := arbor.NewDisplay(root, &arbor.Options{
		Width:                renderConfig.width,
		Height:               renderConfig.height,
		PreferredFit:         fit,
		FitMargin:            margin,
		DisableViewportClamp: renderConfig.noClamp,
		Debug:                renderConfig.verbose,
	})
	defer d.Dispose()
	if err := d.UpdateDisplay(); err != nil {
		return err
	}

	tbl := tablewriter.NewWriter(w)
	tbl.SetHeader([]string{"Block", "Transform root", "Fit", "Drawables", "Ancestor", "Bounds", "Size"})
	for i, b := range d.Blocks() {
		ancestor := "-"
		if inst := b.CommonFitInstance(); inst != nil {
			ancestor = inst.Trail().String()
		}
		s := b.Surface().(*arbor.RecordingSurface)
		tbl.Append([]string{
			strconv.Itoa(i),
			b.TransformRoot().Trail().String(),
			b.Fit().String(),
			fmt.Sprintf("%s..%s (%d)", b.FirstDrawable().Node().Name,
				b.LastDrawable().Node().Name, len(b.Drawables())),
			ancestor,
			formatRect(b.FitBounds()),
			fmt.Sprintf("%dx%d", s.Size.Width, s.Size.Height),
		})
	}
	tbl.Render()
	return nil
}

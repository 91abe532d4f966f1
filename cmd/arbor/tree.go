package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/phanxgames/arbor"
	"github.com/phanxgames/arbor/ebitenhost"
	"github.com/spf13/cobra"
)

func newTreeCmd() *cobra.Command {
	var (
		file   string
		markup bool
	)
	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Print the view tree of a layout",
		Long: `Tree builds the layout and prints every view with its slot, visibility
and screen placement. With --markup the rendered root markup follows.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := buildLayout(file)
			if err != nil {
				return err
			}
			defer root.Destroy()
			out := cmd.OutOrStdout()
			printTree(out, root, "", 0)
			if markup {
				if s, ok := root.Representation().(fmt.Stringer); ok {
					fmt.Fprintln(out, s.String())
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "layout YAML file")
	cmd.Flags().BoolVar(&markup, "markup", false, "print the rendered markup")
	return cmd
}

func printTree(w io.Writer, v *arbor.View, slot string, depth int) {
	indent := strings.Repeat("  ", depth)
	label := v.ID()
	if slot != "" {
		label = slot + ": " + label
	}
	m := ebitenhost.Placement(v)
	bw, bh := v.Size()
	fmt.Fprintf(w, "%s%s [%gx%g] placement=(%g %g %g | %g %g %g)", indent, label, bw, bh,
		m[0], m[1], m[2], m[3], m[4], m[5])
	if !v.IsVisible() {
		fmt.Fprint(w, " hidden")
	}
	fmt.Fprintln(w)
	for _, s := range v.Slots() {
		for _, child := range v.Children(s) {
			printTree(w, child.AsView(), s, depth+1)
		}
	}
}

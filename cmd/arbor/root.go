package main

import (
	"fmt"

	"github.com/phanxgames/arbor"
	"github.com/phanxgames/arbor/dom"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func newRootCmd() *cobra.Command {
	var verbose bool
	root := &cobra.Command{
		Use:           "arbor",
		Short:         "Inspect and run arbor view layouts",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !verbose {
				return nil
			}
			cfg := zap.NewDevelopmentConfig()
			cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			l, err := cfg.Build()
			if err != nil {
				return fmt.Errorf("build logger: %w", err)
			}
			arbor.SetLogger(l.Named("arbor"))
			return nil
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log at debug level")
	root.AddCommand(newTreeCmd(), newRunCmd())
	return root
}

// buildLayout loads a YAML layout and builds it over dom elements.
func buildLayout(path string) (*arbor.View, error) {
	if path == "" {
		return nil, fmt.Errorf("no layout file given (use -f)")
	}
	l, err := arbor.LoadLayoutFile(path)
	if err != nil {
		return nil, err
	}
	return l.Build(dom.Factory)
}

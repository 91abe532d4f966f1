package main

import (
	"fmt"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/phanxgames/arbor"
	"github.com/phanxgames/arbor/ebitenhost"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newRunCmd() *cobra.Command {
	var (
		file       string
		script     string
		width      int
		height     int
		background string
		title      string
		showFPS    bool
		watch      bool
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Open a layout in a window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := buildLayout(file)
			if err != nil {
				return err
			}

			host := ebitenhost.New(root, ebitenhost.Config{
				Width:      width,
				Height:     height,
				Background: background,
				ShowFPS:    showFPS,
			})
			defer func() { host.Root().Destroy() }()

			if watch {
				lw, err := watchLayout(file, func() { reloadLayout(host, file) })
				if err != nil {
					return err
				}
				defer lw.Close()
			}
			if script != "" {
				data, err := os.ReadFile(script)
				if err != nil {
					return fmt.Errorf("read %s: %w", script, err)
				}
				runner, err := ebitenhost.LoadScript(data)
				if err != nil {
					return err
				}
				host.SetScript(runner)
			}

			ebiten.SetWindowTitle(title)
			ebiten.SetWindowSize(width, height)
			return ebiten.RunGame(host)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "layout YAML file")
	cmd.Flags().StringVar(&script, "script", "", "JSON input script to replay")
	cmd.Flags().IntVar(&width, "width", 640, "window width")
	cmd.Flags().IntVar(&height, "height", 480, "window height")
	cmd.Flags().StringVar(&background, "background", "black", "clear color")
	cmd.Flags().StringVar(&title, "title", "arbor", "window title")
	cmd.Flags().BoolVar(&showFPS, "fps", false, "show an FPS/TPS overlay")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "rebuild the layout when the file changes")
	return cmd
}

// reloadLayout rebuilds the layout and swaps it into host. A layout that
// fails to build leaves the current tree in place.
func reloadLayout(host *ebitenhost.Host, file string) {
	root, err := buildLayout(file)
	if err != nil {
		arbor.Logger().Warn("reload layout", zap.String("file", file), zap.Error(err))
		return
	}
	old := host.SetRoot(root)
	if old != nil {
		old.Destroy()
	}
	arbor.Logger().Info("layout reloaded", zap.String("file", file), zap.String("root", root.ID()))
}

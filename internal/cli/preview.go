package cli

import (
	"errors"
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/gogpu/cellimage"
	"github.com/gogpu/cellimage/atlas"
	"github.com/gogpu/cellimage/config"
	"github.com/gogpu/cellimage/preview"
	"github.com/gogpu/cellimage/render"
	"github.com/spf13/cobra"
)

var previewPlace placementFlags

var previewCmd = &cobra.Command{
	Use:   "preview <image>",
	Short: "Show an image in the terminal using half blocks",
	Long: `Render an image through the atlas cache and paint every slice as one
terminal cell. Press any key to quit; resizing the terminal re-renders
from the cache.`,
	Args: cobra.ExactArgs(1),
	RunE: runPreview,
}

func init() {
	addPlacementFlags(previewCmd, &previewPlace)
	rootCmd.AddCommand(previewCmd)
}

func runPreview(_ *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	data, size, err := decodeFile(args[0])
	if err != nil {
		return err
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("open terminal: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("init terminal: %w", err)
	}
	defer screen.Fini()

	return runPreviewLoop(screen, cfg, data, size, previewPlace)
}

// runPreviewLoop draws the image and redraws it on resize until a key is
// pressed or the screen is finalized.
func runPreviewLoop(screen tcell.Screen, cfg *config.Config, data []byte, size cellimage.Size, place placementFlags) error {
	resize, align, err := place.policies(cfg.Resize(), cfg.Alignment())
	if err != nil {
		return err
	}
	scaler := cfg.Render.Scaler
	if place.scaler != "" {
		scaler = place.scaler
	}

	// One terminal cell shows two vertically stacked samples per column.
	cell := cellimage.Sz(cfg.Cell.Width, cfg.Cell.Width*2)

	a := atlas.New(cfg.AtlasConfig())
	defer a.Close()
	view := preview.New(screen, a)
	r := render.NewImageRenderer(view, a, cell,
		render.WithScaler(render.Scaler(scaler)),
		render.WithColumnOffset(cfg.Slicing.ColumnOffset))
	defer r.Close()

	ref, err := r.Pool().Create(data, size)
	if err != nil {
		return err
	}
	defer ref.Release()

	draw := func() error {
		screen.Clear()
		w, h := screen.Size()
		extent, err := place.extent(size, cell)
		if err != nil {
			return err
		}
		extent = cellimage.Sz(min(extent.Width, w), min(extent.Height, h))
		if !extent.IsPositive() {
			return nil
		}
		req := render.RenderImage{
			Image:     ref.Image(),
			Extent:    extent,
			Resize:    resize,
			Alignment: align,
		}
		err = r.Render(req)
		if errors.Is(err, cellimage.ErrAtlasAllocationFailed) {
			// Slices of earlier sizes fill the atlas.
			r.ClearCache()
			err = r.Render(req)
		}
		if err != nil {
			return err
		}
		view.Show()
		return nil
	}

	if err := draw(); err != nil {
		return err
	}
	for {
		switch screen.PollEvent().(type) {
		case nil, *tcell.EventKey:
			return nil
		case *tcell.EventResize:
			screen.Sync()
			if err := draw(); err != nil {
				return err
			}
		}
	}
}

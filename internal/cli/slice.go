package cli

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/gogpu/cellimage/atlas"
	"github.com/gogpu/cellimage/config"
	"github.com/gogpu/cellimage/render"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	sliceOutput string
	sliceReport string
	slicePlace  placementFlags
)

var sliceCmd = &cobra.Command{
	Use:   "slice <image>",
	Short: "Slice an image into an atlas and print a report",
	Long: `Decode an image, place it on a grid of cells, upload one slice per cell
into a texture atlas and write the atlas as PNG. A YAML report listing
every slice is printed to stdout.

Examples:
  cellimage slice photo.png --cols 20
  cellimage slice logo.webp --cols 4 --rows 2 --resize StretchToFill -o atlas.png`,
	Args: cobra.ExactArgs(1),
	RunE: runSlice,
}

func init() {
	sliceCmd.Flags().StringVarP(&sliceOutput, "output", "o", "", "atlas PNG output path (default: none)")
	sliceCmd.Flags().StringVar(&sliceReport, "report", "", "report output path (default: stdout)")
	addPlacementFlags(sliceCmd, &slicePlace)

	rootCmd.AddCommand(sliceCmd)
}

func addPlacementFlags(cmd *cobra.Command, p *placementFlags) {
	cmd.Flags().IntVar(&p.cols, "cols", 0, "extent in columns (default: derived)")
	cmd.Flags().IntVar(&p.rows, "rows", 0, "extent in rows (default: derived)")
	cmd.Flags().StringVar(&p.resize, "resize", "", "resize policy (default: from config)")
	cmd.Flags().StringVar(&p.alignment, "align", "", "alignment (default: from config)")
	cmd.Flags().StringVar(&p.scaler, "scaler", "", "scaler: nearest, approxbilinear, bilinear, catmullrom")
}

// Report is the YAML document written by the slice command.
type Report struct {
	Image  ImageReport   `yaml:"image"`
	Grid   GridReport    `yaml:"grid"`
	Atlas  AtlasReport   `yaml:"atlas"`
	Cache  render.Stats  `yaml:"cache"`
	Slices []SliceReport `yaml:"slices"`
}

type ImageReport struct {
	Path  string `yaml:"path"`
	Size  string `yaml:"size"`
	Bytes string `yaml:"bytes"`
}

type GridReport struct {
	Extent    string `yaml:"extent"`
	CellSize  string `yaml:"cell_size"`
	Resize    string `yaml:"resize"`
	Alignment string `yaml:"alignment"`
}

type AtlasReport struct {
	Size        string `yaml:"size"`
	Slices      int    `yaml:"slices"`
	Utilization string `yaml:"utilization"`
	Bytes       string `yaml:"bytes"`
}

type SliceReport struct {
	Cell   string `yaml:"cell"`
	Handle uint32 `yaml:"handle"`
	Region string `yaml:"region"`
}

func runSlice(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	report, a, err := sliceImage(cfg, args[0], slicePlace)
	if err != nil {
		return err
	}
	defer a.Close()

	if sliceOutput != "" {
		if err := writeAtlasPNG(sliceOutput, a); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "atlas written: %s\n", sliceOutput)
	}

	out := cmd.OutOrStdout()
	if sliceReport != "" {
		f, err := os.Create(sliceReport)
		if err != nil {
			return fmt.Errorf("create report: %w", err)
		}
		defer f.Close()
		out = f
	}
	return writeReport(out, report)
}

// sliceImage runs one render pass of path into a fresh atlas. Slices are
// released on return; their pixels stay in the atlas shadow.
func sliceImage(cfg *config.Config, path string, place placementFlags) (*Report, *atlas.TextureAtlas, error) {
	data, size, err := decodeFile(path)
	if err != nil {
		return nil, nil, err
	}

	resize, align, err := place.policies(cfg.Resize(), cfg.Alignment())
	if err != nil {
		return nil, nil, err
	}
	extent, err := place.extent(size, cfg.CellSize())
	if err != nil {
		return nil, nil, err
	}
	scaler := cfg.Render.Scaler
	if place.scaler != "" {
		scaler = place.scaler
	}

	a := atlas.New(cfg.AtlasConfig())
	var slices []SliceReport
	listener := render.CommandListenerFunc(func(c render.DrawCommand) {
		slices = append(slices, SliceReport{
			Cell:   c.Cell.String(),
			Handle: uint32(c.Slice),
			Region: c.Region.String(),
		})
	})

	r := render.NewImageRenderer(listener, a, cfg.CellSize(),
		render.WithScaler(render.Scaler(scaler)),
		render.WithColumnOffset(cfg.Slicing.ColumnOffset))
	defer r.Close()

	ref, err := r.Pool().Create(data, size)
	if err != nil {
		a.Close()
		return nil, nil, err
	}
	defer ref.Release()

	err = r.Render(render.RenderImage{
		Image:     ref.Image(),
		Extent:    extent,
		Resize:    resize,
		Alignment: align,
	})
	if err != nil {
		a.Close()
		return nil, nil, err
	}

	report := &Report{
		Image: ImageReport{
			Path:  path,
			Size:  size.String(),
			Bytes: humanize.IBytes(uint64(len(data))),
		},
		Grid: GridReport{
			Extent:    extent.String(),
			CellSize:  cfg.CellSize().String(),
			Resize:    resize.String(),
			Alignment: align.String(),
		},
		Atlas: AtlasReport{
			Size:        fmt.Sprintf("%dx%d", a.Width(), a.Height()),
			Slices:      a.Len(),
			Utilization: fmt.Sprintf("%.1f%%", a.Utilization()*100),
			Bytes:       humanize.IBytes(uint64(len(a.Pixels().Pix))),
		},
		Cache:  r.Stats(),
		Slices: slices,
	}
	return report, a, nil
}

func writeReport(w io.Writer, report *Report) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return enc.Close()
}

// writeAtlasPNG saves the atlas shadow. Slices hold straight alpha, so the
// pixels are encoded as NRGBA.
func writeAtlasPNG(path string, a *atlas.TextureAtlas) error {
	px := a.Pixels()
	img := &image.NRGBA{Pix: px.Pix, Stride: px.Stride, Rect: px.Rect}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create atlas: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode atlas: %w", err)
	}
	return f.Close()
}

package main

import (
	"errors"
	"fmt"

	"github.com/gaubeleo/photoframe/config"
	"github.com/gaubeleo/photoframe/pkg/fitter"
	"github.com/gaubeleo/photoframe/pkg/sysinfo"
	"github.com/spf13/cobra"
)

func newFitCmd() *cobra.Command {
	var (
		zoom, auto    bool
		width, height int
		renderer      string
	)

	cmd := &cobra.Command{
		Use:   "fit <file>",
		Short: "Reframe an image file in place for the display",
		Example: `  # Letterbox for the probed framebuffer
  photoframe fit photo.jpg

  # Crop to fill a 1280x800 panel with the native renderer
  photoframe fit photo.jpg --zoom --width 1280 --height 800 --renderer native`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if width == 0 || height == 0 {
				w, h, err := sysinfo.New(nil).GetResolution(ctx)
				if err != nil {
					return err
				}
				if width == 0 {
					width = w
				}
				if height == 0 {
					height = h
				}
			}

			var f *fitter.Fitter
			switch renderer {
			case config.RendererMagick:
				f = fitter.New(fitter.NewMagickRenderer(nil))
			case config.RendererNative:
				f = fitter.New(fitter.NewNativeRenderer(false))
			default:
				return fmt.Errorf("unknown renderer %q", renderer)
			}

			if !f.Fit(ctx, args[0], width, height, zoom, auto) {
				return errors.New("image was not reframed, see log for details")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Reframed %s for %dx%d\n", args[0], width, height)
			return nil
		},
	}
	cmd.Flags().BoolVar(&zoom, "zoom", false, "crop to fill instead of letterboxing")
	cmd.Flags().BoolVar(&auto, "auto", false, "crop when the letterbox would be thin")
	cmd.Flags().IntVar(&width, "width", 0, "display width (0 probes the framebuffer)")
	cmd.Flags().IntVar(&height, "height", 0, "display height (0 probes the framebuffer)")
	cmd.Flags().StringVar(&renderer, "renderer", config.RendererMagick, "magick or native")
	return cmd
}

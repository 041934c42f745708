package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/folio/internal/api"
	"github.com/jackzampolin/folio/internal/geometry"
	"github.com/jackzampolin/folio/internal/settings"
	"github.com/jackzampolin/folio/internal/translate"
)

var (
	translateSettings string
	translateWidth    float64
	translateHeight   float64
	translatePage     int
	translateStrict   bool
)

var translateCmd = &cobra.Command{
	Use:   "translate",
	Short: "Translate book settings into engine parameters offline",
	Long: `Translate a book settings file into the parameters the segmentation
engine would receive for a page of the given pixel size. No server or
engine is needed.

With --page the page's fixed segments and cuts are restated in pixels
as the existing geometry the engine must preserve.

Diagnostics list every outline that was dropped or adjusted.

Examples:
  folio translate -s book.yaml --width 2480 --height 3508
  folio translate -s book.json --width 2480 --height 3508 --page 12 --strict -o json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := getHome()
		if err != nil {
			return err
		}
		cfgMgr, err := loadConfig(h)
		if err != nil {
			return err
		}
		cfg := cfgMgr.Get()

		bs, err := settings.LoadFile(translateSettings)
		if err != nil {
			return err
		}

		strict := cfg.Translation.Strict
		if cmd.Flags().Changed("strict") {
			strict = translateStrict
		}
		opts := []translate.Option{
			translate.Strict(strict),
			translate.WithLogger(stderrLogger(cfg.Log)),
		}
		if cmd.Flags().Changed("page") {
			opts = append(opts, translate.ForPage(translatePage))
		}

		res, err := translate.Translate(bs, geometry.PageSize{Width: translateWidth, Height: translateHeight}, opts...)
		if err != nil {
			return fmt.Errorf("translation failed: %w", err)
		}
		return api.Output(res)
	},
}

func init() {
	translateCmd.Flags().StringVarP(&translateSettings, "settings", "s", "", "Book settings file (.json or .yaml)")
	translateCmd.Flags().Float64Var(&translateWidth, "width", 0, "Page width in pixels")
	translateCmd.Flags().Float64Var(&translateHeight, "height", 0, "Page height in pixels")
	translateCmd.Flags().IntVarP(&translatePage, "page", "p", 0, "Reconstruct existing geometry for this page")
	translateCmd.Flags().BoolVar(&translateStrict, "strict", false, "Reject malformed position outlines (default: translation.strict)")
	translateCmd.MarkFlagRequired("settings")
	translateCmd.MarkFlagRequired("width")
	translateCmd.MarkFlagRequired("height")

	rootCmd.AddCommand(translateCmd)
}

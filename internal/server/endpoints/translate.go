package endpoints

import (
	"encoding/json"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/folio/internal/api"
	"github.com/jackzampolin/folio/internal/geometry"
	"github.com/jackzampolin/folio/internal/settings"
	"github.com/jackzampolin/folio/internal/svcctx"
	"github.com/jackzampolin/folio/internal/translate"
)

// TranslateRequest is the request body for a translation preview.
type TranslateRequest struct {
	Settings json.RawMessage `json:"settings" swaggertype:"object"`
	Width    float64         `json:"width"`
	Height   float64         `json:"height"`
	// Page reconstructs the existing geometry of this page when set.
	Page   *int  `json:"page,omitempty"`
	Strict *bool `json:"strict,omitempty"`
}

// TranslateEndpoint handles POST /api/translate.
type TranslateEndpoint struct{}

func (e *TranslateEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/translate", e.handler
}

func (e *TranslateEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Translate settings
//	@Description	Shows the engine parameters the settings translate to for a page
//	@Description	size, along with every diagnostic. The engine is not called.
//	@Tags			segmentation
//	@Accept			json
//	@Produce		json
//	@Param			request	body		TranslateRequest	true	"Settings and page size"
//	@Success		200		{object}	translate.Result
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Router			/api/translate [post]
func (e *TranslateEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	var req TranslateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Settings) == 0 {
		writeError(w, http.StatusBadRequest, "settings is required")
		return
	}
	bs, err := settings.Decode(req.Settings)
	if err != nil {
		writeErr(w, err)
		return
	}

	seg := svcctx.SegmenterFrom(r.Context())
	if seg == nil {
		writeError(w, http.StatusServiceUnavailable, "segmenter not initialized")
		return
	}
	strict := seg.Strict()
	if req.Strict != nil {
		strict = *req.Strict
	}

	res, err := seg.Translate(bs, geometry.PageSize{Width: req.Width, Height: req.Height}, req.Page, strict)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (e *TranslateEndpoint) Command(getServerURL func() string) *cobra.Command {
	var (
		settingsFile  string
		width, height float64
		page          int
		strict        bool
	)
	cmd := &cobra.Command{
		Use:   "translate",
		Short: "Preview the engine parameters for book settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			bs, err := settings.LoadFile(settingsFile)
			if err != nil {
				return err
			}
			raw, err := json.Marshal(bs)
			if err != nil {
				return err
			}
			req := TranslateRequest{Settings: raw, Width: width, Height: height}
			if cmd.Flags().Changed("page") {
				req.Page = &page
			}
			if cmd.Flags().Changed("strict") {
				req.Strict = &strict
			}

			client := api.NewClient(getServerURL())
			var resp translate.Result
			if err := client.Post(cmd.Context(), "/api/translate", req, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
	cmd.Flags().StringVarP(&settingsFile, "settings", "s", "", "Book settings file (.json or .yaml)")
	cmd.Flags().Float64Var(&width, "width", 0, "Page width in pixels")
	cmd.Flags().Float64Var(&height, "height", 0, "Page height in pixels")
	cmd.Flags().IntVarP(&page, "page", "p", 0, "Reconstruct existing geometry for this page")
	cmd.Flags().BoolVar(&strict, "strict", false, "Reject malformed position outlines")
	cmd.MarkFlagRequired("settings")
	return cmd
}

package endpoints

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/folio/internal/api"
	"github.com/jackzampolin/folio/internal/segmentation"
	"github.com/jackzampolin/folio/internal/settings"
	"github.com/jackzampolin/folio/internal/svcctx"
)

// SegmentRequest is the request body for segmenting a page.
type SegmentRequest struct {
	Settings         json.RawMessage `json:"settings" swaggertype:"object"`
	Page             int             `json:"page"`
	AllowToLoadLocal bool            `json:"allowToLoadLocal"`
}

// SegmentEndpoint handles POST /segment.
type SegmentEndpoint struct{}

func (e *SegmentEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/segment", e.handler
}

func (e *SegmentEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Segment a page
//	@Description	Runs the segmentation engine on one page using the book settings.
//	@Description	Fixed segments and cuts of the page are preserved. With allowToLoadLocal
//	@Description	a stored annotation is returned instead of re-running the engine.
//	@Tags			segmentation
//	@Accept			json
//	@Produce		json
//	@Param			request	body		SegmentRequest	true	"Settings and page"
//	@Success		200		{object}	segmentation.PageAnnotations
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		502		{object}	ErrorResponse
//	@Failure		503		{object}	ErrorResponse
//	@Router			/segment [post]
func (e *SegmentEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	var req SegmentRequest
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

	annotations, err := seg.Segment(r.Context(), bs, req.Page, req.AllowToLoadLocal)
	if err != nil {
		if logger := svcctx.LoggerFrom(r.Context()); logger != nil {
			logger.Error("segmentation failed", "book", bs.BookID, "page", req.Page, "error", err)
		}
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, annotations)
}

func (e *SegmentEndpoint) Command(getServerURL func() string) *cobra.Command {
	var (
		settingsFile string
		page         int
		local        bool
	)
	cmd := &cobra.Command{
		Use:   "segment",
		Short: "Segment a page with the given book settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			bs, err := settings.LoadFile(settingsFile)
			if err != nil {
				return err
			}
			raw, err := json.Marshal(bs)
			if err != nil {
				return err
			}

			client := api.NewClient(getServerURL())
			var resp segmentation.PageAnnotations
			req := SegmentRequest{Settings: raw, Page: page, AllowToLoadLocal: local}
			if err := client.Post(cmd.Context(), "/segment", req, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
	cmd.Flags().StringVarP(&settingsFile, "settings", "s", "", "Book settings file (.json or .yaml)")
	cmd.Flags().IntVarP(&page, "page", "p", 0, "Page id")
	cmd.Flags().BoolVar(&local, "local", false, "Return the stored annotation if the page was already segmented")
	cmd.MarkFlagRequired("settings")
	return cmd
}

// EmptySegmentEndpoint handles POST /emptysegment.
type EmptySegmentEndpoint struct{}

func (e *EmptySegmentEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/emptysegment", e.handler
}

func (e *EmptySegmentEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Empty segmentation
//	@Description	Returns annotations with no segments for a page
//	@Tags			segmentation
//	@Produce		json
//	@Param			bookid	query		int	true	"Book id"
//	@Param			pageid	query		int	true	"Page id"
//	@Success		200		{object}	segmentation.PageAnnotations
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Router			/emptysegment [post]
func (e *EmptySegmentEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	bookID, err := intQuery(r, "bookid")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	pageID, err := intQuery(r, "pageid")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	seg := svcctx.SegmenterFrom(r.Context())
	if seg == nil {
		writeError(w, http.StatusServiceUnavailable, "segmenter not initialized")
		return
	}
	annotations, err := seg.EmptySegment(bookID, pageID)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, annotations)
}

func (e *EmptySegmentEndpoint) Command(getServerURL func() string) *cobra.Command {
	var bookID, pageID int
	cmd := &cobra.Command{
		Use:   "emptysegment",
		Short: "Get an empty segmentation for a page",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp segmentation.PageAnnotations
			path := fmt.Sprintf("/emptysegment?bookid=%d&pageid=%d", bookID, pageID)
			if err := client.Post(cmd.Context(), path, nil, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
	cmd.Flags().IntVarP(&bookID, "book", "b", 0, "Book id")
	cmd.Flags().IntVarP(&pageID, "page", "p", 0, "Page id")
	return cmd
}

// SegmentedPagesEndpoint handles POST /segmentedpages.
type SegmentedPagesEndpoint struct{}

func (e *SegmentedPagesEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/segmentedpages", e.handler
}

func (e *SegmentedPagesEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Segmented pages
//	@Description	Lists the ids of pages that have a stored annotation
//	@Tags			segmentation
//	@Produce		json
//	@Param			bookid	query	int	true	"Book id"
//	@Success		200		{array}	int
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Router			/segmentedpages [post]
func (e *SegmentedPagesEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	bookID, err := intQuery(r, "bookid")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	seg := svcctx.SegmenterFrom(r.Context())
	if seg == nil {
		writeError(w, http.StatusServiceUnavailable, "segmenter not initialized")
		return
	}
	pages, err := seg.SegmentedPages(r.Context(), bookID)
	if err != nil {
		writeErr(w, err)
		return
	}
	if pages == nil {
		pages = []int{}
	}
	writeJSON(w, http.StatusOK, pages)
}

func (e *SegmentedPagesEndpoint) Command(getServerURL func() string) *cobra.Command {
	var bookID int
	cmd := &cobra.Command{
		Use:   "segmentedpages",
		Short: "List pages of a book with stored annotations",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp []int
			if err := client.Post(cmd.Context(), fmt.Sprintf("/segmentedpages?bookid=%d", bookID), nil, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
	cmd.Flags().IntVarP(&bookID, "book", "b", 0, "Book id")
	return cmd
}

package endpoints

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/folio/internal/api"
	"github.com/jackzampolin/folio/internal/settings"
	"github.com/jackzampolin/folio/internal/svcctx"
)

// BookSettingsEndpoint handles POST /segmentation/settings.
type BookSettingsEndpoint struct{}

func (e *BookSettingsEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/segmentation/settings", e.handler
}

func (e *BookSettingsEndpoint) RequiresInit() bool { return true }

func (e *BookSettingsEndpoint) CommandGroup() string { return "books" }

// handler godoc
//
//	@Summary		Book settings
//	@Description	Returns the saved settings of a book, or settings built from the
//	@Description	default parameters when none are saved
//	@Tags			segmentation
//	@Produce		json
//	@Param			bookid	query		int	true	"Book id"
//	@Success		200		{object}	settings.BookSettings
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Router			/segmentation/settings [post]
func (e *BookSettingsEndpoint) handler(w http.ResponseWriter, r *http.Request) {
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
	bs, err := seg.Settings(bookID)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bs)
}

func (e *BookSettingsEndpoint) Command(getServerURL func() string) *cobra.Command {
	var (
		bookID     int
		outputFile string
	)
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Get the segmentation settings of a book",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp settings.BookSettings
			if err := client.Post(cmd.Context(), fmt.Sprintf("/segmentation/settings?bookid=%d", bookID), nil, &resp); err != nil {
				return err
			}
			if outputFile != "" {
				return settings.SaveFile(outputFile, &resp)
			}
			return api.Output(resp)
		},
	}
	cmd.Flags().IntVarP(&bookID, "book", "b", 0, "Book id")
	cmd.Flags().StringVarP(&outputFile, "file", "f", "", "Write the settings to a .json or .yaml file")
	return cmd
}

// SaveSettingsEndpoint handles PUT /api/books/{id}/settings.
type SaveSettingsEndpoint struct{}

func (e *SaveSettingsEndpoint) Route() (string, string, http.HandlerFunc) {
	return "PUT", "/api/books/{id}/settings", e.handler
}

func (e *SaveSettingsEndpoint) RequiresInit() bool { return true }

func (e *SaveSettingsEndpoint) CommandGroup() string { return "books" }

// handler godoc
//
//	@Summary		Save book settings
//	@Description	Validates and saves the settings of a book. They are returned by
//	@Description	/segmentation/settings from then on.
//	@Tags			books
//	@Accept			json
//	@Produce		json
//	@Param			id			path		int						true	"Book id"
//	@Param			settings	body		settings.BookSettings	true	"Book settings"
//	@Success		200			{object}	settings.BookSettings
//	@Failure		400			{object}	ErrorResponse
//	@Failure		404			{object}	ErrorResponse
//	@Router			/api/books/{id}/settings [put]
func (e *SaveSettingsEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	bookID, err := intPath(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	data, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	bs, err := settings.Decode(data)
	if err != nil {
		writeErr(w, err)
		return
	}
	if bs.BookID != bookID {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("settings are for book %d, not %d", bs.BookID, bookID))
		return
	}

	seg := svcctx.SegmenterFrom(r.Context())
	if seg == nil {
		writeError(w, http.StatusServiceUnavailable, "segmenter not initialized")
		return
	}
	if err := seg.SaveSettings(bs); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bs)
}

func (e *SaveSettingsEndpoint) Command(getServerURL func() string) *cobra.Command {
	var settingsFile string
	cmd := &cobra.Command{
		Use:   "save-settings",
		Short: "Save the segmentation settings of a book",
		RunE: func(cmd *cobra.Command, args []string) error {
			bs, err := settings.LoadFile(settingsFile)
			if err != nil {
				return err
			}
			client := api.NewClient(getServerURL())
			var resp json.RawMessage
			if err := client.Put(cmd.Context(), fmt.Sprintf("/api/books/%d/settings", bs.BookID), bs, &resp); err != nil {
				return err
			}
			fmt.Printf("Saved settings for book %d\n", bs.BookID)
			return nil
		},
	}
	cmd.Flags().StringVarP(&settingsFile, "settings", "s", "", "Book settings file (.json or .yaml)")
	cmd.MarkFlagRequired("settings")
	return cmd
}

package endpoints

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/folio/internal/api"
	"github.com/jackzampolin/folio/internal/books"
	"github.com/jackzampolin/folio/internal/svcctx"
)

// ListBooksResponse is the response for listing books.
type ListBooksResponse struct {
	Books []BookSummary `json:"books"`
}

// BookSummary is a book without its pages.
type BookSummary struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	PDF       bool   `json:"pdf"`
	PageCount int    `json:"page_count"`
}

// BookDetail is a book with the pixel size of every page.
type BookDetail struct {
	ID    int          `json:"id"`
	Name  string       `json:"name"`
	PDF   bool         `json:"pdf"`
	Pages []PageDetail `json:"pages"`
}

// PageDetail is one page of a book.
type PageDetail struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	PDFPage int    `json:"pdf_page,omitempty"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	Error   string `json:"error,omitempty"`
}

// ListBooksEndpoint handles GET /api/books.
type ListBooksEndpoint struct{}

func (e *ListBooksEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/books", e.handler
}

func (e *ListBooksEndpoint) RequiresInit() bool { return true }

func (e *ListBooksEndpoint) CommandGroup() string { return "books" }

// handler godoc
//
//	@Summary		List books
//	@Description	List all books in the library
//	@Tags			books
//	@Produce		json
//	@Success		200	{object}	ListBooksResponse
//	@Failure		500	{object}	ErrorResponse
//	@Failure		503	{object}	ErrorResponse
//	@Router			/api/books [get]
func (e *ListBooksEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	lib := svcctx.LibraryFrom(r.Context())
	if lib == nil {
		writeError(w, http.StatusServiceUnavailable, "library not initialized")
		return
	}

	all, err := lib.Books()
	if err != nil {
		writeErr(w, err)
		return
	}
	resp := ListBooksResponse{Books: make([]BookSummary, 0, len(all))}
	for _, b := range all {
		resp.Books = append(resp.Books, BookSummary{
			ID:        b.ID,
			Name:      b.Name,
			PDF:       b.PDF,
			PageCount: len(b.Pages),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (e *ListBooksEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all books",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp ListBooksResponse
			if err := client.Get(cmd.Context(), "/api/books", &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}

// GetBookEndpoint handles GET /api/books/{id}.
type GetBookEndpoint struct{}

func (e *GetBookEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/books/{id}", e.handler
}

func (e *GetBookEndpoint) RequiresInit() bool { return true }

func (e *GetBookEndpoint) CommandGroup() string { return "books" }

// handler godoc
//
//	@Summary		Get book
//	@Description	Get a book with the pixel size of each page
//	@Tags			books
//	@Produce		json
//	@Param			id	path		int	true	"Book id"
//	@Success		200	{object}	BookDetail
//	@Failure		400	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Router			/api/books/{id} [get]
func (e *GetBookEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	id, err := intPath(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	lib := svcctx.LibraryFrom(r.Context())
	if lib == nil {
		writeError(w, http.StatusServiceUnavailable, "library not initialized")
		return
	}

	book, err := lib.Book(id)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bookDetail(lib, book))
}

// bookDetail measures every page. A page that cannot be measured is
// reported with its error instead of failing the whole book.
func bookDetail(lib *books.Library, book *books.Book) BookDetail {
	detail := BookDetail{ID: book.ID, Name: book.Name, PDF: book.PDF, Pages: make([]PageDetail, 0, len(book.Pages))}
	for _, p := range book.Pages {
		pd := PageDetail{ID: p.ID, Name: p.Name, PDFPage: p.PDFPage}
		size, err := lib.PageSize(book, p.ID)
		if err != nil {
			pd.Error = err.Error()
		} else {
			pd.Width, pd.Height = int(size.Width), int(size.Height)
		}
		detail.Pages = append(detail.Pages, pd)
	}
	return detail
}

func (e *GetBookEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Get a book and its pages",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := strconv.Atoi(args[0]); err != nil {
				return fmt.Errorf("book id must be an integer: %s", args[0])
			}
			client := api.NewClient(getServerURL())
			var resp BookDetail
			if err := client.Get(cmd.Context(), "/api/books/"+args[0], &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}

// DeleteAnnotationEndpoint handles DELETE /api/books/{id}/pages/{page}/annotation.
type DeleteAnnotationEndpoint struct{}

func (e *DeleteAnnotationEndpoint) Route() (string, string, http.HandlerFunc) {
	return "DELETE", "/api/books/{id}/pages/{page}/annotation", e.handler
}

func (e *DeleteAnnotationEndpoint) RequiresInit() bool { return true }

func (e *DeleteAnnotationEndpoint) CommandGroup() string { return "books" }

// handler godoc
//
//	@Summary		Delete stored annotation
//	@Description	Forgets the stored annotation of a page so the next segmentation runs the engine
//	@Tags			books
//	@Param			id		path	int	true	"Book id"
//	@Param			page	path	int	true	"Page id"
//	@Success		204
//	@Failure		400	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Router			/api/books/{id}/pages/{page}/annotation [delete]
func (e *DeleteAnnotationEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	bookID, err := intPath(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	pageID, err := intPath(r, "page")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	seg := svcctx.SegmenterFrom(r.Context())
	if seg == nil {
		writeError(w, http.StatusServiceUnavailable, "segmenter not initialized")
		return
	}
	if err := seg.DeleteAnnotation(r.Context(), bookID, pageID); err != nil {
		writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (e *DeleteAnnotationEndpoint) Command(getServerURL func() string) *cobra.Command {
	var bookID, pageID int
	cmd := &cobra.Command{
		Use:   "forget",
		Short: "Delete the stored annotation of a page",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			path := fmt.Sprintf("/api/books/%d/pages/%d/annotation", bookID, pageID)
			if err := client.Delete(cmd.Context(), path); err != nil {
				return err
			}
			fmt.Printf("Deleted annotation for book %d page %d\n", bookID, pageID)
			return nil
		},
	}
	cmd.Flags().IntVarP(&bookID, "book", "b", 0, "Book id")
	cmd.Flags().IntVarP(&pageID, "page", "p", 0, "Page id")
	return cmd
}

package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
)

// ErrDuplicateRoute is returned when two endpoints claim the same method
// and path.
var ErrDuplicateRoute = errors.New("duplicate route")

// Grouped is implemented by endpoints whose command belongs under a
// subcommand of "folio api" (for example "folio api books list").
type Grouped interface {
	CommandGroup() string
}

// Registry holds every folio endpoint and the command groups they use.
type Registry struct {
	endpoints []Endpoint
	routes    map[string]bool
	groups    map[string]string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		routes: make(map[string]bool),
		groups: make(map[string]string),
	}
}

// Register adds an endpoint. Each method and path pair may be registered once.
func (r *Registry) Register(ep Endpoint) error {
	method, path, _ := ep.Route()
	pattern := method + " " + path
	if r.routes[pattern] {
		return fmt.Errorf("%w: %s", ErrDuplicateRoute, pattern)
	}
	r.routes[pattern] = true
	r.endpoints = append(r.endpoints, ep)
	return nil
}

// AddGroup describes a command group. Groups used by an endpoint but never
// described still get a subcommand, with a generic help line.
func (r *Registry) AddGroup(name, short string) {
	r.groups[name] = short
}

// RegisterRoutes mounts every endpoint on mux. Handlers of endpoints that
// need the segmenter are wrapped by initMiddleware.
func (r *Registry) RegisterRoutes(mux *http.ServeMux, initMiddleware func(http.HandlerFunc) http.HandlerFunc) {
	for _, ep := range r.endpoints {
		method, path, handler := ep.Route()
		if ep.RequiresInit() {
			handler = initMiddleware(handler)
		}
		mux.HandleFunc(method+" "+path, handler)
	}
}

// BuildCommands returns the "api" command with one subcommand per endpoint.
// Grouped endpoints are nested under their group in registration order.
// getServerURL is called at runtime, after flags are parsed.
func (r *Registry) BuildCommands(getServerURL func() string) *cobra.Command {
	apiCmd := &cobra.Command{
		Use:   "api",
		Short: "Commands that call the running server",
		Long: `API commands call the running Folio server via HTTP.

These commands require a running server (folio serve).
Use --server to specify a custom server URL.

Examples:
  folio api health                             # Check server health
  folio api books list                         # List books in the library
  folio api books settings -b 0 -f book.yaml   # Fetch settings into a file
  folio api segment -s book.yaml -p 3          # Segment page 3
  folio api segmentedpages -b 0                # Pages with stored annotations`,
	}

	groups := make(map[string]*cobra.Command)
	for _, ep := range r.endpoints {
		cmd := ep.Command(getServerURL)
		if cmd == nil {
			continue
		}
		g, ok := ep.(Grouped)
		if !ok || g.CommandGroup() == "" {
			apiCmd.AddCommand(cmd)
			continue
		}
		name := g.CommandGroup()
		parent, ok := groups[name]
		if !ok {
			short := r.groups[name]
			if short == "" {
				short = name + " commands"
			}
			parent = &cobra.Command{Use: name, Short: short}
			groups[name] = parent
			apiCmd.AddCommand(parent)
		}
		parent.AddCommand(cmd)
	}

	return apiCmd
}

// Endpoints returns all registered endpoints.
func (r *Registry) Endpoints() []Endpoint {
	return r.endpoints
}

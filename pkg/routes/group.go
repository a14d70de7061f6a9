package routes

import "net/http"

// Middleware wraps a handler.
type Middleware func(http.Handler) http.Handler

// Group organizes routes under a common prefix. Middleware applies to the
// group's routes and to every child group.
type Group struct {
	Prefix     string
	Middleware []Middleware
	Routes     []Route
	Children   []Group
}

// Register adds all routes from the given groups to the mux.
func Register(mux *http.ServeMux, groups ...Group) {
	for _, group := range groups {
		registerGroup(mux, "", nil, group)
	}
}

func registerGroup(mux *http.ServeMux, parentPrefix string, parentMw []Middleware, group Group) {
	prefix := parentPrefix + group.Prefix
	mw := append(append([]Middleware{}, parentMw...), group.Middleware...)

	for _, route := range group.Routes {
		pattern := route.Method + " " + prefix + route.Pattern
		mux.Handle(pattern, wrap(route.Handler, mw))
	}
	for _, child := range group.Children {
		registerGroup(mux, prefix, mw, child)
	}
}

func wrap(h http.Handler, mw []Middleware) http.Handler {
	for i := len(mw) - 1; i >= 0; i-- {
		h = mw[i](h)
	}
	return h
}

package server

import (
	"net/http"
	"strings"
)

// MethodRouter maps HTTP methods to handlers.
type MethodRouter map[string]http.HandlerFunc

// RouteByMethod dispatches on the request method, answering 405 when the
// method has no handler registered.
func RouteByMethod(w http.ResponseWriter, r *http.Request, routes MethodRouter) {
	handler, ok := routes[r.Method]
	if !ok {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	handler(w, r)
}

// RouteCRUD dispatches the four standard verbs. Nil handlers leave the
// verb unregistered so RouteByMethod rejects it.
func RouteCRUD(w http.ResponseWriter, r *http.Request, get, create, update, remove http.HandlerFunc) {
	routes := make(MethodRouter)
	if get != nil {
		routes[http.MethodGet] = get
	}
	if create != nil {
		routes[http.MethodPost] = create
	}
	if update != nil {
		routes[http.MethodPut] = update
	}
	if remove != nil {
		routes[http.MethodDelete] = remove
	}
	RouteByMethod(w, r, routes)
}

// PathSuffixRouter pairs a path suffix with its handler.
type PathSuffixRouter struct {
	Suffix  string
	Handler http.HandlerFunc
}

// RouteByPathSuffix dispatches sub-resource routes under a prefix, e.g.
// "/api/research/{id}/export". Returns true when a route matched.
func RouteByPathSuffix(w http.ResponseWriter, r *http.Request, prefix string, routes []PathSuffixRouter) bool {
	path := r.URL.Path
	if len(path) <= len(prefix) {
		return false
	}

	pathSuffix := path[len(prefix):]
	for _, route := range routes {
		if strings.HasSuffix(pathSuffix, route.Suffix) || pathSuffix == route.Suffix {
			route.Handler(w, r)
			return true
		}
	}
	return false
}

// RouteResourceCollection handles a collection endpoint: GET lists,
// POST creates.
func RouteResourceCollection(w http.ResponseWriter, r *http.Request, list, create http.HandlerFunc) {
	RouteCRUD(w, r, list, create, nil, nil)
}

// RouteResourceItem handles a single-resource endpoint: GET fetches,
// PUT updates, DELETE removes.
func RouteResourceItem(w http.ResponseWriter, r *http.Request, get, update, remove http.HandlerFunc) {
	RouteCRUD(w, r, get, nil, update, remove)
}

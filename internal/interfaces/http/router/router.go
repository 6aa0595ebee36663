// Package router assembles the gin engine and mounts the API routes.
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// API mounts resource groups under /api/<version>
type API struct {
	version string
	groups  []*DomainGroup
}

// NewAPI returns an API for version, "v1" when empty
func NewAPI(version string) *API {
	if version == "" {
		version = "v1"
	}
	return &API{version: version}
}

// Add queues groups for Mount. Nil groups are ignored.
func (a *API) Add(groups ...*DomainGroup) *API {
	for _, g := range groups {
		if g != nil {
			a.groups = append(a.groups, g)
		}
	}
	return a
}

// Mount registers every queued group on r
func (a *API) Mount(r gin.IRouter) {
	base := r.Group("/api/" + a.version)
	for _, g := range a.groups {
		g.mount(base)
	}
}

// DomainGroup collects the routes of one resource under a common prefix.
// Middleware added with Use runs before every route of the group.
type DomainGroup struct {
	prefix     string
	middleware []gin.HandlerFunc
	routes     []route
}

type route struct {
	method   string
	path     string
	handlers []gin.HandlerFunc
}

// NewDomainGroup starts a group mounted at prefix
func NewDomainGroup(prefix string) *DomainGroup {
	return &DomainGroup{prefix: prefix}
}

// Use appends group middleware
func (g *DomainGroup) Use(middleware ...gin.HandlerFunc) *DomainGroup {
	g.middleware = append(g.middleware, middleware...)
	return g
}

// GET adds a GET route
func (g *DomainGroup) GET(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	return g.add(http.MethodGet, path, handlers)
}

// POST adds a POST route
func (g *DomainGroup) POST(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	return g.add(http.MethodPost, path, handlers)
}

// PUT adds a PUT route
func (g *DomainGroup) PUT(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	return g.add(http.MethodPut, path, handlers)
}

// Prefix is the path the group is mounted at
func (g *DomainGroup) Prefix() string {
	return g.prefix
}

func (g *DomainGroup) add(method, path string, handlers []gin.HandlerFunc) *DomainGroup {
	g.routes = append(g.routes, route{method: method, path: path, handlers: handlers})
	return g
}

func (g *DomainGroup) mount(base *gin.RouterGroup) {
	rg := base.Group(g.prefix, g.middleware...)
	for _, r := range g.routes {
		rg.Handle(r.method, r.path, r.handlers...)
	}
}

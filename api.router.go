package main

import (
	"net/http"
	"net/http/pprof"

	"github.com/julienschmidt/httprouter"
)

// MiddlewareMap contains middlwares chain to
// use for public-facing and ops requests.
type MiddlewareMap struct {
	public MiddlewareFunc
	ops    MiddlewareFunc
}

// SetupRoutes injects catalog and ops related endpoints if required.
func (api *APIHandler) SetupRoutes(router *httprouter.Router, m *MiddlewareMap) *httprouter.Router {
	router.RedirectTrailingSlash = true
	router.NotFound = api.NotFound()
	router.GET("/", m.public(api.Index))
	router.GET("/status", m.public(api.Status))
	api.SetupCatalogRoutes(router, m)
	if api.config.OpsEndpointsEnable {
		api.SetupOpsRoutes(router, m)
	}
	return router
}

// SetupCatalogRoutes injects the CRUD endpoints of every catalog kind.
func (api *APIHandler) SetupCatalogRoutes(router *httprouter.Router, m *MiddlewareMap) *httprouter.Router {
	setupRecordRoutes(router, m, AuthorsResource, NewRecordHandler(api, "author", AuthorsResource, api.catalog.Authors))
	setupRecordRoutes(router, m, PublishersResource, NewRecordHandler(api, "publisher", PublishersResource, api.catalog.Publishers))
	setupRecordRoutes(router, m, CategoriesResource, NewRecordHandler(api, "category", CategoriesResource, api.catalog.Categories))
	setupRecordRoutes(router, m, BooksResource, NewRecordHandler(api, "book", BooksResource, api.catalog.Books))

	borrowings := NewRecordHandler(api, "borrowing", BorrowingsResource, api.catalog.Borrowings)
	borrowings.decodeCreate = decodeBorrowingRequest
	borrowings.decodeUpdate = decodeBorrowingUpdateRequest
	setupRecordRoutes(router, m, BorrowingsResource, borrowings)
	return router
}

func setupRecordRoutes[T Record[T]](router *httprouter.Router, m *MiddlewareMap, resource string, h *RecordHandler[T]) {
	router.POST("/v1/"+resource, m.public(h.Create))
	router.GET("/v1/"+resource, m.public(h.GetAll))
	router.GET("/v1/"+resource+"/:id", m.public(h.GetOne))
	router.PUT("/v1/"+resource+"/:id", m.public(h.Update))
	router.DELETE("/v1/"+resource+"/:id", m.public(h.Delete))
}

// SetupOpsRoutes injects internal operations related endpoints.
func (api *APIHandler) SetupOpsRoutes(router *httprouter.Router, m *MiddlewareMap) *httprouter.Router {
	router.GET("/ops/configs", m.ops(api.GetConfigs))
	router.GET("/ops/stats", m.ops(api.GetStatistics))
	router.GET("/ops/maintenance", m.ops(api.Maintenance))
	router.GET("/ops/debug/vars", m.ops(GetMemStats))
	router.GET("/ops/debug/gc", m.ops(api.RunGC))
	router.GET("/ops/debug/fos", m.ops(api.FreeOSMemory))

	if api.config.ProfilerEnable {
		router.GET("/ops/debug/pprof/", m.ops(wrapHandler(http.HandlerFunc(pprof.Index))))
		router.GET("/ops/debug/pprof/profile", m.ops(wrapHandler(http.HandlerFunc(pprof.Profile))))
		router.GET("/ops/debug/pprof/trace", m.ops(wrapHandler(http.HandlerFunc(pprof.Trace))))
		router.GET("/ops/debug/pprof/symbol", m.ops(wrapHandler(http.HandlerFunc(pprof.Symbol))))
		router.GET("/ops/debug/pprof/cmdline", m.ops(wrapHandler(http.HandlerFunc(pprof.Cmdline))))
		for _, name := range []string{"heap", "allocs", "goroutine", "threadcreate", "block", "mutex"} {
			router.GET("/ops/debug/pprof/"+name, m.ops(wrapHandler(pprof.Handler(name))))
		}
	}
	return router
}

// wrapHandler adapts a standard handler to the router signature.
func wrapHandler(h http.Handler) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		h.ServeHTTP(w, r)
	}
}

package crud

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"crudapi/metrics"
)

// Router generates the closed CRUD/query operation set for one entity over
// one backend adapter. The plain operations keep the bare-entity legacy
// contract; the extended ("k") operations always answer with the uniform
// envelope. Both families run through the same adapter calls, they differ
// only in presentation.
type Router[E any] struct {
	desc     *Descriptor
	adapter  Adapter[E]
	cfg      Config
	disabled map[RouteName]bool
}

// NewRouter builds a generated router for the entity type E served by the
// given adapter. The descriptor is derived from E once, here.
func NewRouter[E any](adapter Adapter[E], cfg Config) (*Router[E], error) {
	desc, err := Describe[E]()
	if err != nil {
		return nil, err
	}
	if cfg.Prefix == "" {
		cfg.Prefix = desc.Table
	}
	if cfg.MaxLimit <= 0 {
		cfg.MaxLimit = DefaultMaxLimit
	}
	if cfg.ScopeMode == "" {
		cfg.ScopeMode = ScopeAllOnly
	}
	return &Router[E]{
		desc:     desc,
		adapter:  adapter,
		cfg:      cfg,
		disabled: cfg.disabledSet(),
	}, nil
}

// Descriptor exposes the entity metadata the router was generated from.
func (rt *Router[E]) Descriptor() *Descriptor { return rt.desc }

// Register mounts every enabled operation on the parent group under the
// configured prefix.
func (rt *Router[E]) Register(parent *gin.RouterGroup) {
	g := parent.Group("/" + rt.cfg.Prefix)

	rt.mount(g, "GET", "", RouteGetAll, rt.getAll)
	rt.mount(g, "POST", "", RouteCreate, rt.create)
	rt.mount(g, "DELETE", "", RouteDeleteAll, rt.deleteAll)
	rt.mount(g, "GET", "/:id", RouteGetOne, rt.getOne)
	rt.mount(g, "PUT", "/:id", RouteUpdate, rt.update)
	rt.mount(g, "DELETE", "/:id", RouteDeleteOne, rt.deleteOne)

	rt.mount(g, "POST", "/create", RouteKCreate, rt.kCreate)
	rt.mount(g, "POST", "/delete", RouteKDelete, rt.kDelete)
	rt.mount(g, "POST", "/delete_all", RouteKDeleteAll, rt.kDeleteAll)
	rt.mount(g, "POST", "/update", RouteKUpdate, rt.kUpdate)
	rt.mount(g, "POST", "/get_by_id", RouteKGetByID, rt.kGetByID)
	rt.mount(g, "POST", "/get_one_by_filter", RouteKGetOneByFilter, rt.kGetOneByFilter)
	rt.mount(g, "POST", "/list", RouteKList, rt.kList)
	rt.mount(g, "POST", "/query", RouteKQuery, rt.kQuery)
	rt.mount(g, "POST", "/query_ex", RouteKQueryEx, rt.kQueryEx)
	rt.mount(g, "POST", "/upsert", RouteKUpsert, rt.kUpsert)

	logrus.WithFields(logrus.Fields{
		"entity": rt.desc.Name,
		"prefix": g.BasePath(),
		"scope":  rt.cfg.ScopeMode,
	}).Info("CRUD routes registered")
}

func (rt *Router[E]) mount(g *gin.RouterGroup, method, path string, name RouteName, handler gin.HandlerFunc) {
	if rt.disabled[name] {
		return
	}
	chain := append(append([]gin.HandlerFunc{}, rt.cfg.Guards[name]...), rt.instrument(name, handler))
	g.Handle(method, path, chain...)
}

// instrument records per-operation metrics around a generated handler.
func (rt *Router[E]) instrument(name RouteName, handler gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		handler(c)
		metrics.RecordCRUDOperation(rt.desc.Table, string(name), c.Writer.Status(), start)
	}
}

// resolveScope combines the entity's configured scope mode with the
// per-request override parameter.
func (rt *Router[E]) resolveScope(c *gin.Context, caller Caller) Scope {
	return rt.cfg.ScopeMode.Resolve(c.Query("user_data_filter"), caller)
}

// listParams parses the shared read parameters: pagination, sort and the
// relationship-expansion flag. All validation happens here, before any
// backend call.
func (rt *Router[E]) listParams(c *gin.Context) (Page, *Sort, bool, error) {
	page, err := ParsePage(c.Query("skip"), c.Query("limit"), rt.cfg.MaxLimit)
	if err != nil {
		return Page{}, nil, false, err
	}
	sort, err := ParseSort(rt.desc, c.Query("sort_by"))
	if err != nil {
		return Page{}, nil, false, err
	}
	expand := c.Query("relationships") == "true"
	return page, sort, expand, nil
}

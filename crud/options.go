package crud

import "github.com/gin-gonic/gin"

// RouteName identifies one generated operation, for toggling and for
// attaching authorization gates.
type RouteName string

const (
	RouteGetAll    RouteName = "get_all"
	RouteGetOne    RouteName = "get_one"
	RouteCreate    RouteName = "create"
	RouteUpdate    RouteName = "update"
	RouteDeleteOne RouteName = "delete_one"
	RouteDeleteAll RouteName = "delete_all"

	RouteKCreate         RouteName = "kcreate"
	RouteKDelete         RouteName = "kdelete"
	RouteKDeleteAll      RouteName = "kdelete_all"
	RouteKUpdate         RouteName = "kupdate"
	RouteKGetByID        RouteName = "kget_by_id"
	RouteKGetOneByFilter RouteName = "kget_one_by_filter"
	RouteKList           RouteName = "klist"
	RouteKQuery          RouteName = "kquery"
	RouteKQueryEx        RouteName = "kquery_ex"
	RouteKUpsert         RouteName = "kupsert"
)

// Config tunes one generated router. The zero value generates the full
// operation set under the entity's table name with ALL_ONLY visibility.
type Config struct {
	// Prefix overrides the route prefix; defaults to the entity table name.
	Prefix string
	// MaxLimit bounds the page size; defaults to DefaultMaxLimit.
	MaxLimit int
	// ScopeMode fixes the entity's row-visibility policy.
	ScopeMode ScopeMode
	// Disabled turns individual operations off.
	Disabled []RouteName
	// Guards attaches authorization middleware to individual operations.
	// The engine only mounts them; what they enforce is the caller's
	// business.
	Guards map[RouteName][]gin.HandlerFunc
}

func (c Config) disabledSet() map[RouteName]bool {
	set := make(map[RouteName]bool, len(c.Disabled))
	for _, name := range c.Disabled {
		set[name] = true
	}
	return set
}

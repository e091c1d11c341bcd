package crud

import "github.com/gin-gonic/gin"

// The extended handlers all answer with the uniform envelope and share the
// adapter calls of their plain counterparts; soft deletion, user scoping and
// relationship expansion only exist here.

type kDeleteRequest struct {
	ID   any   `json:"id" binding:"required"`
	Hard *bool `json:"hard"`
}

type kDeleteAllRequest struct {
	Hard *bool `json:"hard"`
}

type kGetByIDRequest struct {
	ID any `json:"id" binding:"required"`
}

// hardOrDefault keeps the historical default: deletes are hard unless the
// caller explicitly asks for a soft delete.
func hardOrDefault(hard *bool) bool {
	if hard == nil {
		return true
	}
	return *hard
}

func (rt *Router[E]) kCreate(c *gin.Context) {
	caller := CallerFrom(c)
	var payload map[string]any
	if err := c.ShouldBindJSON(&payload); err != nil {
		RespondError(c, caller, ValidationErrorf("invalid payload: %v", err))
		return
	}
	if err := rt.desc.ValidateCreate(payload); err != nil {
		RespondError(c, caller, err)
		return
	}
	fields := rt.desc.FilterPayload(payload, caller, true, false)
	model, err := rt.adapter.Insert(c.Request.Context(), fields)
	if err != nil {
		RespondError(c, caller, err)
		return
	}
	RespondOK(c, caller, Shape(rt.desc, model, false), 0)
}

func (rt *Router[E]) kDelete(c *gin.Context) {
	caller := CallerFrom(c)
	var req kDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, caller, ValidationErrorf("invalid payload: %v", err))
		return
	}
	id, err := rt.desc.CoercePK(req.ID)
	if err != nil {
		RespondError(c, caller, err)
		return
	}
	affected, err := rt.adapter.DeleteByID(c.Request.Context(), id, hardOrDefault(req.Hard))
	if err != nil {
		RespondError(c, caller, err)
		return
	}
	RespondOK(c, caller, affected, 0)
}

func (rt *Router[E]) kDeleteAll(c *gin.Context) {
	caller := CallerFrom(c)
	var req kDeleteAllRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		RespondError(c, caller, ValidationErrorf("invalid payload: %v", err))
		return
	}
	count, err := rt.adapter.DeleteAll(c.Request.Context(), Scope{}, hardOrDefault(req.Hard))
	if err != nil {
		RespondError(c, caller, err)
		return
	}
	RespondOK(c, caller, count, 0)
}

func (rt *Router[E]) kUpdate(c *gin.Context) {
	caller := CallerFrom(c)
	var payload map[string]any
	if err := c.ShouldBindJSON(&payload); err != nil {
		RespondError(c, caller, ValidationErrorf("invalid payload: %v", err))
		return
	}
	rawID, ok := payload[rt.desc.PrimaryKey]
	if !ok || rawID == nil {
		RespondError(c, caller, ValidationErrorf("missing primary key %q", rt.desc.PrimaryKey))
		return
	}
	id, err := rt.desc.CoercePK(rawID)
	if err != nil {
		RespondError(c, caller, err)
		return
	}
	relations := rt.desc.RelationIDs(payload)
	fields := rt.desc.FilterPayload(payload, caller, false, false)
	model, err := rt.adapter.UpdateByID(c.Request.Context(), id, fields, relations)
	if err != nil {
		RespondError(c, caller, err)
		return
	}
	RespondOK(c, caller, Shape(rt.desc, model, false), 0)
}

func (rt *Router[E]) kGetByID(c *gin.Context) {
	caller := CallerFrom(c)
	var req kGetByIDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, caller, ValidationErrorf("invalid payload: %v", err))
		return
	}
	id, err := rt.desc.CoercePK(req.ID)
	if err != nil {
		RespondError(c, caller, err)
		return
	}
	model, err := rt.adapter.FetchOne(c.Request.Context(), Scope{}, Eq(rt.desc.PrimaryKey, id), false)
	if err != nil {
		RespondError(c, caller, err)
		return
	}
	RespondOK(c, caller, Shape(rt.desc, model, false), 0)
}

func (rt *Router[E]) kGetOneByFilter(c *gin.Context) {
	caller := CallerFrom(c)
	var filter map[string]any
	if err := c.ShouldBindJSON(&filter); err != nil {
		RespondError(c, caller, ValidationErrorf("invalid payload: %v", err))
		return
	}
	q, err := ParseFilter(rt.desc, filter)
	if err != nil {
		RespondError(c, caller, err)
		return
	}
	expand := c.Query("relationships") == "true"
	scope := rt.resolveScope(c, caller)
	model, err := rt.adapter.FetchOne(c.Request.Context(), scope, q, expand)
	if err != nil {
		RespondError(c, caller, err)
		return
	}
	RespondOK(c, caller, Shape(rt.desc, model, expand), 0)
}

func (rt *Router[E]) kList(c *gin.Context) {
	caller := CallerFrom(c)
	page, sort, expand, err := rt.listParams(c)
	if err != nil {
		RespondError(c, caller, err)
		return
	}
	scope := rt.resolveScope(c, caller)
	models, total, err := rt.adapter.FetchAll(c.Request.Context(), scope, nil, page, sort, expand)
	if err != nil {
		RespondError(c, caller, err)
		return
	}
	RespondOK(c, caller, ShapeList(rt.desc, models, expand), total)
}

func (rt *Router[E]) kQuery(c *gin.Context) {
	caller := CallerFrom(c)
	var filter map[string]any
	if err := c.ShouldBindJSON(&filter); err != nil {
		RespondError(c, caller, ValidationErrorf("invalid payload: %v", err))
		return
	}
	q, err := ParseFilter(rt.desc, filter)
	if err != nil {
		RespondError(c, caller, err)
		return
	}
	page, sort, expand, err := rt.listParams(c)
	if err != nil {
		RespondError(c, caller, err)
		return
	}
	scope := rt.resolveScope(c, caller)
	models, total, err := rt.adapter.FetchAll(c.Request.Context(), scope, q, page, sort, expand)
	if err != nil {
		RespondError(c, caller, err)
		return
	}
	RespondOK(c, caller, ShapeList(rt.desc, models, expand), total)
}

func (rt *Router[E]) kQueryEx(c *gin.Context) {
	caller := CallerFrom(c)
	var raw [][]any
	if err := c.ShouldBindJSON(&raw); err != nil {
		RespondError(c, caller, ValidationErrorf("invalid payload: %v", err))
		return
	}
	q, err := ParseConditions(rt.desc, raw)
	if err != nil {
		RespondError(c, caller, err)
		return
	}
	page, sort, expand, err := rt.listParams(c)
	if err != nil {
		RespondError(c, caller, err)
		return
	}
	scope := rt.resolveScope(c, caller)
	models, total, err := rt.adapter.FetchAll(c.Request.Context(), scope, q, page, sort, expand)
	if err != nil {
		RespondError(c, caller, err)
		return
	}
	RespondOK(c, caller, ShapeList(rt.desc, models, expand), total)
}

func (rt *Router[E]) kUpsert(c *gin.Context) {
	caller := CallerFrom(c)
	var payload map[string]any
	if err := c.ShouldBindJSON(&payload); err != nil {
		RespondError(c, caller, ValidationErrorf("invalid payload: %v", err))
		return
	}
	fields := rt.desc.FilterPayload(payload, caller, true, true)
	model, inserted, err := rt.adapter.Upsert(c.Request.Context(), fields, rt.desc.PrimaryKey)
	if err != nil {
		RespondError(c, caller, err)
		return
	}
	msg := "updated"
	if inserted {
		msg = "created"
	}
	RespondOKMsg(c, caller, Shape(rt.desc, model, false), 0, msg)
}

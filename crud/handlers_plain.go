package crud

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"crudapi/utils/response"
)

// The plain handlers keep the legacy contract: bare entity shapes, no
// envelope, errors as {"error": ...} objects.

func (rt *Router[E]) getAll(c *gin.Context) {
	page, err := ParsePage(c.Query("skip"), c.Query("limit"), rt.cfg.MaxLimit)
	if err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}
	models, _, err := rt.adapter.FetchAll(c.Request.Context(), Scope{}, nil, page, nil, false)
	if err != nil {
		response.Error(c, HTTPStatus(err), err.Error())
		return
	}
	c.JSON(http.StatusOK, models)
}

func (rt *Router[E]) getOne(c *gin.Context) {
	id, err := rt.desc.CoercePK(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}
	model, err := rt.adapter.FetchOne(c.Request.Context(), Scope{}, Eq(rt.desc.PrimaryKey, id), false)
	if err != nil {
		response.Error(c, HTTPStatus(err), err.Error())
		return
	}
	c.JSON(http.StatusOK, model)
}

func (rt *Router[E]) create(c *gin.Context) {
	caller := CallerFrom(c)
	var payload map[string]any
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload: "+err.Error())
		return
	}
	if err := rt.desc.ValidateCreate(payload); err != nil {
		response.Error(c, HTTPStatus(err), err.Error())
		return
	}
	fields := rt.desc.FilterPayload(payload, caller, true, false)
	model, err := rt.adapter.Insert(c.Request.Context(), fields)
	if err != nil {
		response.Error(c, HTTPStatus(err), err.Error())
		return
	}
	c.JSON(http.StatusOK, model)
}

func (rt *Router[E]) update(c *gin.Context) {
	caller := CallerFrom(c)
	id, err := rt.desc.CoercePK(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}
	var payload map[string]any
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload: "+err.Error())
		return
	}
	fields := rt.desc.FilterPayload(payload, caller, false, false)
	model, err := rt.adapter.UpdateByID(c.Request.Context(), id, fields, nil)
	if err != nil {
		response.Error(c, HTTPStatus(err), err.Error())
		return
	}
	c.JSON(http.StatusOK, model)
}

func (rt *Router[E]) deleteOne(c *gin.Context) {
	id, err := rt.desc.CoercePK(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}
	affected, err := rt.adapter.DeleteByID(c.Request.Context(), id, true)
	if err != nil {
		response.Error(c, HTTPStatus(err), err.Error())
		return
	}
	if !affected {
		response.Error(c, http.StatusNotFound, "record not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

func (rt *Router[E]) deleteAll(c *gin.Context) {
	count, err := rt.adapter.DeleteAll(c.Request.Context(), Scope{}, true)
	if err != nil {
		response.Error(c, HTTPStatus(err), err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": count})
}

package api

import (
	"net/http"

	resdto "commerce-core/internal/handler/dto/response"
	"commerce-core/internal/handler/httperr"
	"commerce-core/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

type ProductHandler struct {
	q queries.ProductQueries
}

func NewProductHandler(q queries.ProductQueries) *ProductHandler {
	return &ProductHandler{q: q}
}

func (h *ProductHandler) List(c *gin.Context) {
	views, err := h.q.ListProducts(c.Request.Context())
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": resdto.FromProductViews(views)})
}

func (h *ProductHandler) Get(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	view, err := h.q.GetProduct(c.Request.Context(), id)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromProductView(view))
}

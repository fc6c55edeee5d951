package api

import (
	"net/http"

	reqdto "commerce-core/internal/handler/dto/request"
	resdto "commerce-core/internal/handler/dto/response"
	"commerce-core/internal/handler/httperr"
	"commerce-core/internal/usecase/commands"
	"commerce-core/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

type CartHandler struct {
	cmds commands.CartCommands
	q    queries.CartQueries
}

func NewCartHandler(cmds commands.CartCommands, q queries.CartQueries) *CartHandler {
	return &CartHandler{cmds: cmds, q: q}
}

func (h *CartHandler) GetMine(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	view, err := h.q.GetCart(c.Request.Context(), userID)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromCartView(view))
}

func (h *CartHandler) Add(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	var req reqdto.AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
		return
	}
	it, err := h.cmds.AddToCart(c.Request.Context(), req.ToInput(userID))
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusCreated, resdto.FromCartItem(it))
}

func (h *CartHandler) Remove(c *gin.Context) {
	userID, itemID, ok := callerAndID(c)
	if !ok {
		return
	}
	if err := h.cmds.RemoveFromCart(c.Request.Context(), commands.RemoveFromCartInput{UserID: userID, ItemID: itemID}); err != nil {
		httperr.Abort(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

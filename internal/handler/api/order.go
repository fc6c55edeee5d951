package api

import (
	"net/http"

	reqdto "commerce-core/internal/handler/dto/request"
	resdto "commerce-core/internal/handler/dto/response"
	"commerce-core/internal/handler/httperr"
	"commerce-core/internal/handler/middleware"
	"commerce-core/internal/pkg/errs"
	"commerce-core/internal/usecase/commands"
	"commerce-core/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type OrderHandler struct {
	cmds commands.OrderCommands
	q    queries.OrderQueries
}

func NewOrderHandler(cmds commands.OrderCommands, q queries.OrderQueries) *OrderHandler {
	return &OrderHandler{cmds: cmds, q: q}
}

func (h *OrderHandler) Create(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, nil, "Unauthorized", nil)
		return
	}
	var req reqdto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
		return
	}
	o, err := h.cmds.CreateOrder(c.Request.Context(), req.ToInput(userID))
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.Header("Location", "/api/orders/"+o.ID().String())
	c.JSON(http.StatusCreated, resdto.FromOrder(o))
}

func (h *OrderHandler) List(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, nil, "Unauthorized", nil)
		return
	}
	var query reqdto.ListOrdersQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid query", nil)
		return
	}
	params, err := query.ToParams(userID)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	page, err := h.q.ListOrders(c.Request.Context(), params)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromOrderPage(page))
}

func (h *OrderHandler) Get(c *gin.Context) {
	userID, orderID, ok := callerAndID(c)
	if !ok {
		return
	}
	view, err := h.q.GetOrder(c.Request.Context(), userID, orderID)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromOrderView(view))
}

// Pay takes an optional body; an empty body pays without a coupon.
func (h *OrderHandler) Pay(c *gin.Context) {
	userID, orderID, ok := callerAndID(c)
	if !ok {
		return
	}
	var req reqdto.ProcessPaymentRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
			return
		}
	}
	o, err := h.cmds.ProcessPayment(c.Request.Context(), commands.ProcessPaymentInput{
		OrderID:      orderID,
		UserID:       userID,
		UserCouponID: req.UserCouponID,
	})
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromOrder(o))
}

func (h *OrderHandler) Cancel(c *gin.Context) {
	userID, orderID, ok := callerAndID(c)
	if !ok {
		return
	}
	o, err := h.cmds.CancelOrder(c.Request.Context(), commands.CancelOrderInput{OrderID: orderID, UserID: userID})
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromOrder(o))
}

// callerAndID aborts the request itself when it returns false
func callerAndID(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, nil, "Unauthorized", nil)
		return uuid.Nil, uuid.Nil, false
	}
	id, err := pathID(c)
	if err != nil {
		httperr.Abort(c, err)
		return uuid.Nil, uuid.Nil, false
	}
	return userID, id, true
}

func pathID(c *gin.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, errs.Wrapf(errs.ErrInvalidArgument, "invalid id %q", c.Param("id"))
	}
	return id, nil
}

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

type CouponHandler struct {
	cmds commands.CouponCommands
	q    queries.CouponQueries
}

func NewCouponHandler(cmds commands.CouponCommands, q queries.CouponQueries) *CouponHandler {
	return &CouponHandler{cmds: cmds, q: q}
}

func (h *CouponHandler) Issue(c *gin.Context) {
	userID, couponID, ok := callerAndID(c)
	if !ok {
		return
	}
	issued, err := h.cmds.IssueCoupon(c.Request.Context(), commands.IssueCouponInput{UserID: userID, CouponID: couponID})
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusCreated, resdto.FromIssuedCoupon(issued))
}

func (h *CouponHandler) ListMine(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	var query reqdto.ListUserCouponsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid query", nil)
		return
	}
	status, err := query.ParseStatus()
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	views, err := h.q.ListUserCoupons(c.Request.Context(), userID, status)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": resdto.FromUserCouponViews(views)})
}

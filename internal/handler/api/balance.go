package api

import (
	"context"
	"net/http"

	"commerce-core/internal/domain/ledger"
	reqdto "commerce-core/internal/handler/dto/request"
	resdto "commerce-core/internal/handler/dto/response"
	"commerce-core/internal/handler/httperr"
	"commerce-core/internal/handler/middleware"
	"commerce-core/internal/usecase/commands"
	"commerce-core/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type BalanceHandler struct {
	cmds commands.BalanceCommands
	q    queries.BalanceQueries
}

func NewBalanceHandler(cmds commands.BalanceCommands, q queries.BalanceQueries) *BalanceHandler {
	return &BalanceHandler{cmds: cmds, q: q}
}

func (h *BalanceHandler) GetMine(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	view, err := h.q.GetBalance(c.Request.Context(), userID)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromBalanceView(view))
}

func (h *BalanceHandler) ListMyLogs(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	var query reqdto.BalanceLogsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid query", nil)
		return
	}
	filter, err := query.ToFilter(userID)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	page, err := h.q.ListBalanceLogs(c.Request.Context(), filter)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromBalanceLogPage(page))
}

// Charge and Adjust are operator endpoints; the target user comes from the path.
func (h *BalanceHandler) Charge(c *gin.Context) {
	h.change(c, h.cmds.ChargeBalance)
}

func (h *BalanceHandler) Adjust(c *gin.Context) {
	h.change(c, h.cmds.AdjustBalance)
}

func (h *BalanceHandler) change(c *gin.Context, op func(context.Context, commands.BalanceInput) (*ledger.BalanceChangeLog, error)) {
	userID, err := pathID(c)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	var req reqdto.BalanceChangeRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, bindErr, "Invalid request", nil)
		return
	}
	log, err := op(c.Request.Context(), req.ToInput(userID))
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromBalanceLog(log))
}

func callerID(c *gin.Context) (uuid.UUID, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, nil, "Unauthorized", nil)
	}
	return userID, ok
}

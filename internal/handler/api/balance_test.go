//go:build unit

package api_test

import (
	"net/http"
	"testing"
	"time"

	"commerce-core/internal/domain/auth"
	"commerce-core/internal/domain/ledger"
	"commerce-core/internal/handler/api"
	resdto "commerce-core/internal/handler/dto/response"
	"commerce-core/internal/pkg/ptr"
	"commerce-core/internal/usecase/commands"
	"commerce-core/internal/usecase/queries"
	"commerce-core/internal/usecase/shared"
	"commerce-core/tests/common/builder"
	"commerce-core/tests/common/httptest"
	commandsmock "commerce-core/tests/mock/commands"
	queriesmock "commerce-core/tests/mock/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type BalanceHandlerTestSuite struct {
	suite.Suite
	router       *gin.Engine
	mockCtrl     *gomock.Controller
	mockCommands *commandsmock.MockBalanceCommands
	mockQueries  *queriesmock.MockBalanceQueries
	userID       uuid.UUID
}

func (s *BalanceHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()

	s.mockCtrl = gomock.NewController(s.T())
	s.mockCommands = commandsmock.NewMockBalanceCommands(s.mockCtrl)
	s.mockQueries = queriesmock.NewMockBalanceQueries(s.mockCtrl)
	h := api.NewBalanceHandler(s.mockCommands, s.mockQueries)
	s.userID = uuid.New()

	me := s.router.Group("/api/users/me", fakeAuth(s.userID, auth.RoleCustomer))
	me.GET("/balance", h.GetMine)
	me.GET("/balance/logs", h.ListMyLogs)

	admin := s.router.Group("/api/admin/users", fakeAuth(uuid.New(), auth.RoleAdmin))
	admin.POST("/:id/balance/charge", h.Charge)
	admin.POST("/:id/balance/adjust", h.Adjust)
}

func (s *BalanceHandlerTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestBalanceHandlerSuite(t *testing.T) {
	suite.Run(t, new(BalanceHandlerTestSuite))
}

func (s *BalanceHandlerTestSuite) TestGetMine() {
	s.Run("success", func() {
		s.mockQueries.EXPECT().GetBalance(gomock.Any(), s.userID).Return(&queries.BalanceView{
			UserID: s.userID, Name: "alice", Balance: 12000, UpdatedAt: builder.BaseTime,
		}, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/api/users/me/balance", nil, "bearer-token")

		var body resdto.BalanceResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Equal(s.userID, body.UserID)
		s.Equal(int64(12000), body.Balance)
	})

	s.Run("error: unknown account", func() {
		s.mockQueries.EXPECT().GetBalance(gomock.Any(), s.userID).Return(nil, ledger.ErrUserNotFound).Times(1)
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/api/users/me/balance", nil, "bearer-token")
		httptest.AssertErrorCode(s.T(), rec, http.StatusNotFound, "U001")
	})
}

func (s *BalanceHandlerTestSuite) TestListMyLogs() {
	s.Run("success: builds the filter from the query", func() {
		charge := ledger.CodeCharge
		from := builder.BaseTime.Add(-time.Hour)
		s.mockQueries.EXPECT().ListBalanceLogs(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ any, f shared.BalanceLogFilter) (*queries.BalanceLogPage, error) {
				s.Equal(s.userID, f.UserID)
				s.Equal(&charge, f.Code)
				s.Require().NotNil(f.From)
				s.True(from.Equal(*f.From))
				s.Nil(f.To)
				s.Equal(ptr.Of("pay-1"), f.RefID)
				s.Equal(2, f.Page)
				s.Equal(10, f.Size)
				return &queries.BalanceLogPage{
					Items: []queries.BalanceLogView{{ID: uuid.New(), Amount: 500, BeforeAmount: 0, AfterAmount: 500, Code: "CHARGE", CreatedAt: builder.BaseTime}},
					Page:  2, Size: 10, Total: 11,
				}, nil
			}).Times(1)

		url := "/api/users/me/balance/logs?code=charge&refId=pay-1&page=2&size=10&from=" + from.Format(time.RFC3339)
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, url, nil, "bearer-token")

		var body resdto.BalanceLogListResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Require().Len(body.Items, 1)
		s.Equal("CHARGE", body.Items[0].Code)
		s.Equal(11, body.Total)
		s.Equal(2, body.Page)
	})

	s.Run("error: unknown code", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/api/users/me/balance/logs?code=GIFT", nil, "bearer-token")
		httptest.AssertErrorCode(s.T(), rec, http.StatusBadRequest, "PAY005")
	})

	s.Run("error: page size out of range", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/api/users/me/balance/logs?size=500", nil, "bearer-token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Invalid query")
	})
}

func (s *BalanceHandlerTestSuite) TestChargeAndAdjust() {
	target := uuid.New()
	account := builder.NewAccountBuilder().With(func(b *builder.AccountBuilder) { b.UserID = target }).MustBuild()

	s.Run("success: charge targets the user in the path", func() {
		entry, err := account.Charge(1000, nil, nil, builder.BaseTime)
		s.Require().NoError(err)
		s.mockCommands.EXPECT().ChargeBalance(gomock.Any(), commands.BalanceInput{
			UserID: target, Amount: 1000, Note: ptr.Of("promo"),
		}).Return(entry, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/api/admin/users/"+target.String()+"/balance/charge",
			map[string]any{"amount": 1000, "note": "  promo "}, "bearer-token")

		var body resdto.BalanceLogResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Equal("CHARGE", body.Code)
		s.Equal(int64(1000), body.Amount)
		s.Equal(body.BeforeAmount+1000, body.AfterAmount)
	})

	s.Run("error: non-positive charge", func() {
		s.mockCommands.EXPECT().ChargeBalance(gomock.Any(), gomock.Any()).Return(nil, ledger.ErrInvalidAmount).Times(1)
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/api/admin/users/"+target.String()+"/balance/charge",
			map[string]any{"amount": 0}, "bearer-token")
		httptest.AssertErrorCode(s.T(), rec, http.StatusBadRequest, "PAY004")
	})

	s.Run("error: adjust below zero", func() {
		s.mockCommands.EXPECT().AdjustBalance(gomock.Any(), gomock.Any()).Return(nil, ledger.ErrNegativeBalance).Times(1)
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/api/admin/users/"+target.String()+"/balance/adjust",
			map[string]any{"amount": -999999}, "bearer-token")
		httptest.AssertErrorCode(s.T(), rec, http.StatusConflict, "PAY003")
	})

	s.Run("error: malformed body", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/api/admin/users/"+target.String()+"/balance/adjust",
			map[string]any{"amount": "lots"}, "bearer-token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Invalid request")
	})
}

//go:build unit

package api_test

import (
	"net/http"
	"testing"

	"commerce-core/internal/domain/auth"
	"commerce-core/internal/domain/cart"
	"commerce-core/internal/domain/inventory"
	"commerce-core/internal/handler/api"
	reqdto "commerce-core/internal/handler/dto/request"
	resdto "commerce-core/internal/handler/dto/response"
	"commerce-core/internal/pkg/errs"
	"commerce-core/internal/usecase/commands"
	"commerce-core/internal/usecase/queries"
	"commerce-core/tests/common/builder"
	"commerce-core/tests/common/httptest"
	"commerce-core/tests/common/testutil"
	commandsmock "commerce-core/tests/mock/commands"
	queriesmock "commerce-core/tests/mock/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type CartHandlerTestSuite struct {
	suite.Suite
	router       *gin.Engine
	mockCtrl     *gomock.Controller
	mockCommands *commandsmock.MockCartCommands
	mockQueries  *queriesmock.MockCartQueries
	userID       uuid.UUID
}

func (s *CartHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()

	s.mockCtrl = gomock.NewController(s.T())
	s.mockCommands = commandsmock.NewMockCartCommands(s.mockCtrl)
	s.mockQueries = queriesmock.NewMockCartQueries(s.mockCtrl)
	h := api.NewCartHandler(s.mockCommands, s.mockQueries)
	s.userID = uuid.New()

	authed := fakeAuth(s.userID, auth.RoleCustomer)
	s.router.GET("/api/users/me/cart", authed, h.GetMine)
	s.router.POST("/api/users/me/cart", authed, h.Add)
	s.router.DELETE("/api/users/me/cart/:id", authed, h.Remove)
}

func (s *CartHandlerTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestCartHandlerSuite(t *testing.T) {
	suite.Run(t, new(CartHandlerTestSuite))
}

func (s *CartHandlerTestSuite) TestAdd() {
	variantID := uuid.New()
	valid := reqdto.AddToCartRequest{ProductOptionID: variantID, Quantity: 2}

	s.Run("success: returns 201 with the stored item", func() {
		it, err := cart.NewItem(s.userID, variantID, 5, builder.BaseTime)
		s.Require().NoError(err)
		s.mockCommands.EXPECT().AddToCart(gomock.Any(), commands.AddToCartInput{UserID: s.userID, VariantID: variantID, Quantity: 2}).
			Return(it, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/api/users/me/cart", valid, "bearer-token")

		var body resdto.AddedCartItemResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusCreated, &body)
		s.Equal(it.ID(), body.ID)
		s.Equal(variantID, body.VariantID)
		s.Equal(int64(5), body.Quantity)
	})

	s.Run("error: maps add failures", func() {
		cases := []struct {
			name   string
			err    error
			status int
			code   string
		}{
			{name: "insufficient stock", err: inventory.ErrInsufficientStock, status: http.StatusConflict, code: "P002"},
			{name: "unknown option", err: inventory.ErrVariantNotFound, status: http.StatusNotFound, code: "P006"},
			{name: "invalid quantity", err: inventory.ErrInvalidQuantity, status: http.StatusBadRequest, code: "O001"},
		}
		for _, tc := range cases {
			s.Run(tc.name, func() {
				s.mockCommands.EXPECT().AddToCart(gomock.Any(), gomock.Any()).Return(nil, tc.err).Times(1)
				rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/api/users/me/cart", valid, "bearer-token")
				httptest.AssertErrorCode(s.T(), rec, tc.status, tc.code)
			})
		}
	})

	s.Run("error: 400 without an option id", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/api/users/me/cart", testutil.Payload(s.T(), valid, testutil.Without("productOptionId")), "bearer-token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Invalid request")
	})

	s.Run("error: 401 without a token", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/api/users/me/cart", valid, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusUnauthorized, "Unauthorized")
	})
}

func (s *CartHandlerTestSuite) TestGetMine() {
	s.Run("success: renders items and total", func() {
		view := &queries.CartView{
			Items: []queries.CartItemView{{
				ID: uuid.New(), ProductID: uuid.New(), ProductName: "Shirt", VariantID: uuid.New(), VariantName: "Black / L",
				UnitPrice: 21000, Quantity: 2, Subtotal: 42000, AvailableStock: 6, AddedAt: builder.BaseTime,
			}},
			TotalAmount: 42000,
		}
		s.mockQueries.EXPECT().GetCart(gomock.Any(), s.userID).Return(view, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/api/users/me/cart", nil, "bearer-token")

		var body resdto.CartResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Require().Len(body.Items, 1)
		s.Equal(view.Items[0].VariantID, body.Items[0].VariantID)
		s.Equal("Black / L", body.Items[0].VariantName)
		s.Equal(int64(42000), body.Items[0].Subtotal)
		s.Equal(int64(42000), body.TotalAmount)
	})

	s.Run("success: empty cart renders an empty list", func() {
		s.mockQueries.EXPECT().GetCart(gomock.Any(), s.userID).Return(&queries.CartView{}, nil).Times(1)
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/api/users/me/cart", nil, "bearer-token")
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, nil)
		s.JSONEq(`{"items":[],"totalAmount":0}`, rec.Body.String())
	})
}

func (s *CartHandlerTestSuite) TestRemove() {
	itemID := uuid.New()
	url := "/api/users/me/cart/" + itemID.String()

	s.Run("success: 204", func() {
		s.mockCommands.EXPECT().RemoveFromCart(gomock.Any(), commands.RemoveFromCartInput{UserID: s.userID, ItemID: itemID}).
			Return(nil).Times(1)
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodDelete, url, nil, "bearer-token")
		s.Equal(http.StatusNoContent, rec.Code)
		s.Empty(rec.Body.String())
	})

	s.Run("error: another user's item is 403", func() {
		s.mockCommands.EXPECT().RemoveFromCart(gomock.Any(), gomock.Any()).Return(errs.Wrap(errs.ErrUnauthorized, "cart item")).Times(1)
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodDelete, url, nil, "bearer-token")
		httptest.AssertErrorCode(s.T(), rec, http.StatusForbidden, "A001")
	})

	s.Run("error: unknown item is 404", func() {
		s.mockCommands.EXPECT().RemoveFromCart(gomock.Any(), gomock.Any()).Return(cart.ErrCartItemNotFound).Times(1)
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodDelete, url, nil, "bearer-token")
		httptest.AssertErrorCode(s.T(), rec, http.StatusNotFound, "CART001")
	})

	s.Run("error: 400 on malformed item id", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodDelete, "/api/users/me/cart/abc", nil, "bearer-token")
		httptest.AssertErrorCode(s.T(), rec, http.StatusBadRequest, "A002")
	})
}

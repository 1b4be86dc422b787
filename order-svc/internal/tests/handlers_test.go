package tests

import (
	"bytes"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/tugrulsicakyuz/mobile-delivy/apperr"
	httpapi "github.com/tugrulsicakyuz/mobile-delivy/order-svc/internal/api/http"
	"github.com/tugrulsicakyuz/mobile-delivy/order-svc/internal/domain"
	"github.com/tugrulsicakyuz/mobile-delivy/order-svc/internal/mocks"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type handlerMocks struct {
	orders      *mocks.OrderServiceInterface
	restaurants *mocks.RestaurantServiceInterface
	dashboard   *mocks.DashboardServiceInterface
}

func serve(t *testing.T, setup func(handlerMocks), req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	m := handlerMocks{
		orders:      mocks.NewOrderServiceInterface(t),
		restaurants: mocks.NewRestaurantServiceInterface(t),
		dashboard:   mocks.NewDashboardServiceInterface(t),
	}
	setup(m)

	handler := httpapi.NewHandler(m.orders, m.restaurants, m.dashboard, "")
	r := mux.NewRouter()
	handler.RegisterRoutes(r)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateOrdersHandler(t *testing.T) {
	validBody := `{"orders":[{"restaurantId":"rest-1","restaurantName":"Burger Place","customerName":"Ada",
		"orderItems":[{"menuItemId":"item-burger","name":"Burger","quantity":2,"price":9.99}]}]}`

	tests := []struct {
		name      string
		body      string
		setupMock func(handlerMocks)
		wantCode  int
		wantBody  string
	}{
		{
			name: "valid request",
			body: validBody,
			setupMock: func(m handlerMocks) {
				m.orders.On("CreateOrder", mock.Anything,
					domain.Actor{ID: "cust-1", Name: "Ada", Role: domain.RoleCustomer},
					[]domain.CartLine{{ItemID: "item-burger", Name: "Burger", Price: 9.99, Quantity: 2, RestaurantID: "rest-1", RestaurantName: "Burger Place"}},
				).Return(&domain.Order{ID: "o1", Status: domain.StatusPending, TotalAmount: 19.98}, nil).Once()
			},
			wantCode: http.StatusCreated,
			wantBody: `"totalAmount":19.98`,
		},
		{
			name:      "invalid JSON",
			body:      `{invalid}`,
			setupMock: func(handlerMocks) {},
			wantCode:  http.StatusBadRequest,
			wantBody:  "Invalid JSON format",
		},
		{
			name:      "empty envelope",
			body:      `{"orders":[]}`,
			setupMock: func(handlerMocks) {},
			wantCode:  http.StatusBadRequest,
			wantBody:  "cart is empty",
		},
		{
			name: "several orders rejected before any is stored",
			body: `{"orders":[{"restaurantId":"rest-1","customerName":"Ada","orderItems":[{"menuItemId":"a","name":"A","quantity":1,"price":1}]},
				{"restaurantId":"rest-2","customerName":"Ada","orderItems":[{"menuItemId":"b","name":"B","quantity":1,"price":2}]}]}`,
			setupMock: func(handlerMocks) {},
			wantCode:  http.StatusBadRequest,
			wantBody:  "one order per request",
		},
		{
			name: "inactive restaurant",
			body: validBody,
			setupMock: func(m handlerMocks) {
				m.orders.On("CreateOrder", mock.Anything, mock.Anything, mock.Anything).
					Return(nil, apperr.Validation("createOrder", "restaurant Burger Place is not accepting orders")).Once()
			},
			wantCode: http.StatusBadRequest,
			wantBody: "not accepting orders",
		},
		{
			name: "database error",
			body: validBody,
			setupMock: func(m handlerMocks) {
				m.orders.On("CreateOrder", mock.Anything, mock.Anything, mock.Anything).
					Return(nil, errors.New("db error")).Once()
			},
			wantCode: http.StatusInternalServerError,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/orders/cust-1", bytes.NewBufferString(testCase.body))
			req.Header.Set("Content-Type", "application/json")
			w := serve(t, testCase.setupMock, req)

			assert.Equal(t, testCase.wantCode, w.Code)
			assert.Contains(t, w.Body.String(), testCase.wantBody)
		})
	}
}

func TestListOrdersHandler(t *testing.T) {
	tests := []struct {
		name      string
		url       string
		setupMock func(handlerMocks)
		wantCode  int
	}{
		{
			name: "customer by default",
			url:  "/orders/cust-1",
			setupMock: func(m handlerMocks) {
				m.orders.On("ListOrders", mock.Anything, domain.Actor{ID: "cust-1", Role: domain.RoleCustomer}, domain.Filter{}).
					Return([]domain.Order{{ID: "o1"}}, nil).Once()
			},
			wantCode: http.StatusOK,
		},
		{
			name: "restaurant active only",
			url:  "/orders/rest-1?type=restaurant&active=true",
			setupMock: func(m handlerMocks) {
				m.orders.On("ListOrders", mock.Anything, domain.Actor{ID: "rest-1", Role: domain.RoleRestaurant}, domain.Filter{ActiveOnly: true}).
					Return([]domain.Order{}, nil).Once()
			},
			wantCode: http.StatusOK,
		},
		{
			name: "unknown role",
			url:  "/orders/x?type=admin",
			setupMock: func(m handlerMocks) {
				m.orders.On("ListOrders", mock.Anything, domain.Actor{ID: "x", Role: "ADMIN"}, domain.Filter{}).
					Return(nil, apperr.Validation("listOrders", "unknown role %q", "ADMIN")).Once()
			},
			wantCode: http.StatusBadRequest,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			w := serve(t, testCase.setupMock, httptest.NewRequest("GET", testCase.url, nil))
			assert.Equal(t, testCase.wantCode, w.Code)
		})
	}
}

func TestUpdateStatusHandler(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		setupMock func(handlerMocks)
		wantCode  int
	}{
		{
			name: "owner accepts",
			body: `{"status":"ACCEPTED","userId":"rest-1","role":"restaurant"}`,
			setupMock: func(m handlerMocks) {
				m.orders.On("UpdateStatus", mock.Anything, "o1", domain.StatusAccepted, domain.Actor{ID: "rest-1", Role: domain.RoleRestaurant}).
					Return(&domain.Order{ID: "o1", Status: domain.StatusAccepted}, nil).Once()
			},
			wantCode: http.StatusOK,
		},
		{
			name: "courier fields select courier actor",
			body: `{"status":"ON_WAY","courierId":"cour-1","courierName":"Max"}`,
			setupMock: func(m handlerMocks) {
				m.orders.On("UpdateStatus", mock.Anything, "o1", domain.StatusOnWay, domain.Actor{ID: "cour-1", Name: "Max", Role: domain.RoleCourier}).
					Return(&domain.Order{ID: "o1", Status: domain.StatusOnWay}, nil).Once()
			},
			wantCode: http.StatusOK,
		},
		{
			name: "illegal edge",
			body: `{"status":"READY","userId":"rest-1","role":"RESTAURANT"}`,
			setupMock: func(m handlerMocks) {
				m.orders.On("UpdateStatus", mock.Anything, "o1", domain.StatusReady, mock.Anything).
					Return(nil, apperr.InvalidTransition("updateStatus", "PENDING to READY")).Once()
			},
			wantCode: http.StatusUnprocessableEntity,
		},
		{
			name:      "bad body",
			body:      `status=READY`,
			setupMock: func(handlerMocks) {},
			wantCode:  http.StatusBadRequest,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			req := httptest.NewRequest("PUT", "/orders/o1/status", bytes.NewBufferString(testCase.body))
			w := serve(t, testCase.setupMock, req)
			assert.Equal(t, testCase.wantCode, w.Code)
		})
	}
}

func TestClaimHandler(t *testing.T) {
	courier := domain.Actor{ID: "cour-2", Name: "Lee", Role: domain.RoleCourier}

	w := serve(t, func(m handlerMocks) {
		m.orders.On("Claim", mock.Anything, "o1", courier).
			Return(nil, apperr.Conflict("claim", "order o1 was already claimed by another courier")).Once()
	}, httptest.NewRequest("POST", "/orders/o1/claim", bytes.NewBufferString(`{"courierId":"cour-2","courierName":"Lee"}`)))
	assert.Equal(t, http.StatusConflict, w.Code)

	w = serve(t, func(m handlerMocks) {
		m.orders.On("Claim", mock.Anything, "o1", courier).
			Return(&domain.Order{ID: "o1", Status: domain.StatusPickedUp, CourierID: "cour-2"}, nil).Once()
	}, httptest.NewRequest("POST", "/orders/o1/claim", bytes.NewBufferString(`{"courierId":"cour-2","courierName":"Lee"}`)))
	require.Equal(t, http.StatusOK, w.Code)

	var order domain.Order
	require.NoError(t, json.NewDecoder(w.Body).Decode(&order))
	assert.Equal(t, "cour-2", order.CourierID)
}

func TestGetOrderHandler(t *testing.T) {
	w := serve(t, func(m handlerMocks) {
		m.orders.On("GetOrder", mock.Anything, "missing").Return(nil, apperr.NotFound("getOrder", "order missing not found")).Once()
	}, httptest.NewRequest("GET", "/orders/detail/missing", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = serve(t, func(m handlerMocks) {
		m.orders.On("ListAvailable", mock.Anything).Return([]domain.Order{{ID: "o1", Status: domain.StatusReady}}, nil).Once()
	}, httptest.NewRequest("GET", "/orders/available", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"READY"`)
}

func TestQRCodeHandler(t *testing.T) {
	w := serve(t, func(m handlerMocks) {
		m.orders.On("QRCode", mock.Anything, "o1").Return([]byte("\x89PNG"), nil).Once()
	}, httptest.NewRequest("GET", "/orders/o1/qrcode", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Equal(t, "\x89PNG", w.Body.String())
}

func TestMenuHandlers(t *testing.T) {
	w := serve(t, func(m handlerMocks) {
		m.restaurants.On("Menu", mock.Anything, "rest-1").
			Return([]domain.MenuItem{{ID: "item-burger", Name: "Burger", Price: 9.99, IsAvailable: true}}, nil).Once()
	}, httptest.NewRequest("GET", "/menus/rest-1", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"name":"Burger"`)

	w = serve(t, func(m handlerMocks) {
		m.restaurants.On("SetAvailability", mock.Anything, "rest-1", "item-burger", false).Return(nil).Once()
	}, httptest.NewRequest("PUT", "/menus/rest-1/item-burger/availability", bytes.NewBufferString(`{"isAvailable":false}`)))
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = serve(t, func(m handlerMocks) {
		m.restaurants.On("CreateMenuItem", mock.Anything, mock.MatchedBy(func(item *domain.MenuItem) bool {
			return item.RestaurantID == "rest-1" && item.Name == "Fries"
		})).Return(nil).Once()
	}, httptest.NewRequest("POST", "/menus/rest-1", bytes.NewBufferString(`{"name":"Fries","price":3.5}`)))
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestUploadCoverHandler(t *testing.T) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="image"; filename="cover.png"`)
	header.Set("Content-Type", "image/png")
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write([]byte("png-bytes"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest("POST", "/restaurants/rest-1/cover", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	w := serve(t, func(m handlerMocks) {
		m.restaurants.On("UploadCover", mock.Anything, "rest-1", "cover.png", "image/png", mock.Anything).
			Return("/uploads/cover.png", nil).Once()
	}, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"image_url":"/uploads/cover.png"`)
}

func TestDashboardHandler(t *testing.T) {
	w := serve(t, func(m handlerMocks) {
		m.dashboard.On("Stats", mock.Anything, "rest-1").Return(&domain.DashboardStats{
			RestaurantID:   "rest-1",
			CountsByStatus: map[domain.Status]int64{domain.StatusPending: 2},
			OrdersToday:    5,
			RevenueToday:   42.5,
		}, nil).Once()
	}, httptest.NewRequest("GET", "/restaurants/rest-1/dashboard", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"PENDING":2`)
}

package tests

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tugrulsicakyuz/mobile-delivy/apperr"
	httpapi "github.com/tugrulsicakyuz/mobile-delivy/chat-svc/internal/api/http"
	"github.com/tugrulsicakyuz/mobile-delivy/chat-svc/internal/domain"
	"github.com/tugrulsicakyuz/mobile-delivy/chat-svc/internal/mocks"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestGetMessagesHandler(t *testing.T) {
	tests := []struct {
		name      string
		url       string
		setupMock func(*mocks.MessageServiceInterface)
		wantCode  int
	}{
		{
			name: "restaurant chat",
			url:  "/messages/o1?type=RESTAURANT_CHAT",
			setupMock: func(m *mocks.MessageServiceInterface) {
				m.On("History", mock.Anything, "o1", domain.ChatRestaurant).
					Return([]domain.Message{{ID: "m1", Seq: 1}}, nil).Once()
			},
			wantCode: http.StatusOK,
		},
		{
			name: "lower case type",
			url:  "/messages/o1?type=courier_chat",
			setupMock: func(m *mocks.MessageServiceInterface) {
				m.On("History", mock.Anything, "o1", domain.ChatCourier).Return([]domain.Message{}, nil).Once()
			},
			wantCode: http.StatusOK,
		},
		{
			name: "no type",
			url:  "/messages/o1",
			setupMock: func(m *mocks.MessageServiceInterface) {
				m.On("History", mock.Anything, "o1", domain.ChatType("")).Return([]domain.Message{}, nil).Once()
			},
			wantCode: http.StatusOK,
		},
		{
			name: "bad type",
			url:  "/messages/o1?type=support",
			setupMock: func(m *mocks.MessageServiceInterface) {
				m.On("History", mock.Anything, "o1", domain.ChatType("SUPPORT")).
					Return(nil, apperr.Validation("history", "unknown chat type")).Once()
			},
			wantCode: http.StatusBadRequest,
		},
		{
			name: "store down",
			url:  "/messages/o1?type=RESTAURANT_CHAT",
			setupMock: func(m *mocks.MessageServiceInterface) {
				m.On("History", mock.Anything, "o1", domain.ChatRestaurant).Return(nil, errors.New("db down")).Once()
			},
			wantCode: http.StatusInternalServerError,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			svc := mocks.NewMessageServiceInterface(t)
			testCase.setupMock(svc)

			r := mux.NewRouter()
			httpapi.NewHandler(svc, nil).RegisterRoutes(r)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest("GET", testCase.url, nil))

			assert.Equal(t, testCase.wantCode, w.Code)
		})
	}
}

func TestSendMessageHandler(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		setupMock func(*mocks.MessageServiceInterface)
		wantCode  int
	}{
		{
			name: "client id taken from id",
			body: `{"id":"tmp-1","content":"hi","senderId":"cust-1","isFromUser":true,"chatType":"RESTAURANT_CHAT"}`,
			setupMock: func(m *mocks.MessageServiceInterface) {
				m.On("Send", mock.Anything, mock.MatchedBy(func(msg domain.Message) bool {
					return msg.OrderID == "o1" && msg.ClientID == "tmp-1" && msg.Content == "hi"
				})).Return(&domain.Message{ID: "srv-1", OrderID: "o1", ClientID: "tmp-1", Seq: 1}, nil).Once()
			},
			wantCode: http.StatusCreated,
		},
		{
			name: "explicit client id wins",
			body: `{"id":"tmp-1","clientId":"c-9","content":"hi","senderId":"cust-1","chatType":"COURIER_CHAT"}`,
			setupMock: func(m *mocks.MessageServiceInterface) {
				m.On("Send", mock.Anything, mock.MatchedBy(func(msg domain.Message) bool {
					return msg.ClientID == "c-9"
				})).Return(&domain.Message{ID: "srv-2"}, nil).Once()
			},
			wantCode: http.StatusCreated,
		},
		{
			name: "too long",
			body: `{"content":"...","senderId":"cust-1","chatType":"RESTAURANT_CHAT"}`,
			setupMock: func(m *mocks.MessageServiceInterface) {
				m.On("Send", mock.Anything, mock.Anything).
					Return(nil, apperr.Validation("sendMessage", "message is 501 characters, limit is 500")).Once()
			},
			wantCode: http.StatusBadRequest,
		},
		{
			name:      "invalid JSON",
			body:      `{invalid}`,
			setupMock: func(*mocks.MessageServiceInterface) {},
			wantCode:  http.StatusBadRequest,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			svc := mocks.NewMessageServiceInterface(t)
			testCase.setupMock(svc)

			r := mux.NewRouter()
			httpapi.NewHandler(svc, nil).RegisterRoutes(r)
			req := httptest.NewRequest("POST", "/messages/o1", bytes.NewBufferString(testCase.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, testCase.wantCode, w.Code)
		})
	}
}

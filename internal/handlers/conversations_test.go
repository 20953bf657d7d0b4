package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"messaging-service/internal/middleware"
	"messaging-service/internal/mocks"
	"messaging-service/internal/models"
	"messaging-service/internal/repositories"
)

func setupConversationsRouter(handler *ConversationsHandler, studentID int64) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	if studentID != 0 {
		r.Use(func(c *gin.Context) {
			c.Set(middleware.StudentIDKey, studentID)
			c.Next()
		})
	}
	r.GET("/marketplace/conversations/:id", handler.Get)
	r.GET("/marketplace/conversations/:id/messages", handler.History)
	r.POST("/marketplace/conversations/:id/messages", handler.Send)
	r.POST("/internal/marketplace/conversations", handler.CreateForOrder)
	return r
}

func TestGetConversationAsBuyer(t *testing.T) {
	convRepo := new(mocks.ConversationRepositoryMock)
	handler := NewConversationsHandler(convRepo, new(mocks.ConversationMessageRepositoryMock), nil)
	router := setupConversationsRouter(handler, 7)

	convRepo.On("GetConversation", mock.Anything, int64(5)).Return(models.Conversation{ID: 5, OrderID: 90, BuyerID: 7, SellerID: 8}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/marketplace/conversations/5", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	convRepo.AssertExpectations(t)
}

func TestGetConversationAsSeller(t *testing.T) {
	convRepo := new(mocks.ConversationRepositoryMock)
	handler := NewConversationsHandler(convRepo, new(mocks.ConversationMessageRepositoryMock), nil)
	router := setupConversationsRouter(handler, 8)

	convRepo.On("GetConversation", mock.Anything, int64(5)).Return(models.Conversation{ID: 5, OrderID: 90, BuyerID: 7, SellerID: 8}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/marketplace/conversations/5", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	convRepo.AssertExpectations(t)
}

func TestGetConversationNonParticipantLooksLikeMissing(t *testing.T) {
	convRepo := new(mocks.ConversationRepositoryMock)
	handler := NewConversationsHandler(convRepo, new(mocks.ConversationMessageRepositoryMock), nil)
	router := setupConversationsRouter(handler, 99)

	convRepo.On("GetConversation", mock.Anything, int64(5)).Return(models.Conversation{ID: 5, BuyerID: 7, SellerID: 8}, nil).Once()
	convRepo.On("GetConversation", mock.Anything, int64(404)).Return(models.Conversation{}, repositories.ErrConversationNotFound).Once()

	req := httptest.NewRequest(http.MethodGet, "/marketplace/conversations/5", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNotFound, rec.Code)
	intruderBody := rec.Body.String()

	req = httptest.NewRequest(http.MethodGet, "/marketplace/conversations/404", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNotFound, rec.Code)

	assert.JSONEq(t, intruderBody, rec.Body.String())
	convRepo.AssertExpectations(t)
}

func TestGetConversationInvalidID(t *testing.T) {
	handler := NewConversationsHandler(new(mocks.ConversationRepositoryMock), new(mocks.ConversationMessageRepositoryMock), nil)
	router := setupConversationsRouter(handler, 7)

	req := httptest.NewRequest(http.MethodGet, "/marketplace/conversations/abc", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetConversationUnauthenticated(t *testing.T) {
	handler := NewConversationsHandler(new(mocks.ConversationRepositoryMock), new(mocks.ConversationMessageRepositoryMock), nil)
	router := setupConversationsRouter(handler, 0)

	req := httptest.NewRequest(http.MethodGet, "/marketplace/conversations/5", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestConversationHistorySuccess(t *testing.T) {
	convRepo := new(mocks.ConversationRepositoryMock)
	msgRepo := new(mocks.ConversationMessageRepositoryMock)
	handler := NewConversationsHandler(convRepo, msgRepo, nil)
	router := setupConversationsRouter(handler, 7)

	convRepo.On("GetConversation", mock.Anything, int64(5)).Return(models.Conversation{ID: 5, BuyerID: 7, SellerID: 8}, nil).Once()
	msgRepo.On("ListConversationMessages", mock.Anything, int64(5)).Return([]models.ConversationMessageView{
		{ID: 1, Content: "about order #90", Sender: models.SenderRef{ID: 7, FullName: "Dana Ivanov"}},
		{ID: 2, Content: "shipping tomorrow", Sender: models.SenderRef{ID: 8, FullName: "Lee Park"}},
	}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/marketplace/conversations/5/messages", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Messages []models.ConversationMessageView `json:"messages"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Messages, 2)
	assert.Equal(t, int64(1), resp.Messages[0].ID)

	convRepo.AssertExpectations(t)
	msgRepo.AssertExpectations(t)
}

func TestSendConversationMessageSuccess(t *testing.T) {
	convRepo := new(mocks.ConversationRepositoryMock)
	msgRepo := new(mocks.ConversationMessageRepositoryMock)
	handler := NewConversationsHandler(convRepo, msgRepo, nil)
	router := setupConversationsRouter(handler, 8)

	convRepo.On("GetConversation", mock.Anything, int64(5)).Return(models.Conversation{ID: 5, BuyerID: 7, SellerID: 8}, nil).Once()
	msgRepo.On("CreateConversationMessage", mock.Anything, int64(5), int64(8), "shipping tomorrow").Return(models.ConversationMessageView{ID: 3, Content: "shipping tomorrow"}, nil).Once()

	body := bytes.NewBufferString(`{"content":"shipping tomorrow"}`)
	req := httptest.NewRequest(http.MethodPost, "/marketplace/conversations/5/messages", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	msgRepo.AssertExpectations(t)
}

func TestSendConversationMessageEmptyContent(t *testing.T) {
	convRepo := new(mocks.ConversationRepositoryMock)
	msgRepo := new(mocks.ConversationMessageRepositoryMock)
	handler := NewConversationsHandler(convRepo, msgRepo, nil)
	router := setupConversationsRouter(handler, 7)

	convRepo.On("GetConversation", mock.Anything, int64(5)).Return(models.Conversation{ID: 5, BuyerID: 7, SellerID: 8}, nil).Once()

	body := bytes.NewBufferString(`{"content":"   "}`)
	req := httptest.NewRequest(http.MethodPost, "/marketplace/conversations/5/messages", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	msgRepo.AssertNotCalled(t, "CreateConversationMessage", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateForOrderNew(t *testing.T) {
	convRepo := new(mocks.ConversationRepositoryMock)
	handler := NewConversationsHandler(convRepo, new(mocks.ConversationMessageRepositoryMock), nil)
	router := setupConversationsRouter(handler, 0)

	convRepo.On("CreateForOrder", mock.Anything, int64(90), int64(7), int64(8), "about order #90").Return(models.Conversation{ID: 5, OrderID: 90, BuyerID: 7, SellerID: 8}, true, nil).Once()

	body := bytes.NewBufferString(`{"order_id":90,"buyer_id":7,"seller_id":8,"initial_message":"about order #90"}`)
	req := httptest.NewRequest(http.MethodPost, "/internal/marketplace/conversations", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp struct {
		Conversation models.Conversation `json:"conversation"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, int64(5), resp.Conversation.ID)

	convRepo.AssertExpectations(t)
}

func TestCreateForOrderReplayReturnsExisting(t *testing.T) {
	convRepo := new(mocks.ConversationRepositoryMock)
	handler := NewConversationsHandler(convRepo, new(mocks.ConversationMessageRepositoryMock), nil)
	router := setupConversationsRouter(handler, 0)

	convRepo.On("CreateForOrder", mock.Anything, int64(90), int64(7), int64(8), "about order #90").Return(models.Conversation{ID: 5, OrderID: 90, BuyerID: 7, SellerID: 8}, false, nil).Once()

	body := bytes.NewBufferString(`{"order_id":90,"buyer_id":7,"seller_id":8,"initial_message":"about order #90"}`)
	req := httptest.NewRequest(http.MethodPost, "/internal/marketplace/conversations", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	convRepo.AssertExpectations(t)
}

func TestCreateForOrderBuyerEqualsSeller(t *testing.T) {
	convRepo := new(mocks.ConversationRepositoryMock)
	handler := NewConversationsHandler(convRepo, new(mocks.ConversationMessageRepositoryMock), nil)
	router := setupConversationsRouter(handler, 0)

	body := bytes.NewBufferString(`{"order_id":90,"buyer_id":7,"seller_id":7,"initial_message":"hi"}`)
	req := httptest.NewRequest(http.MethodPost, "/internal/marketplace/conversations", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	convRepo.AssertNotCalled(t, "CreateForOrder", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateForOrderMissingFields(t *testing.T) {
	convRepo := new(mocks.ConversationRepositoryMock)
	handler := NewConversationsHandler(convRepo, new(mocks.ConversationMessageRepositoryMock), nil)
	router := setupConversationsRouter(handler, 0)

	body := bytes.NewBufferString(`{"order_id":90}`)
	req := httptest.NewRequest(http.MethodPost, "/internal/marketplace/conversations", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	convRepo.AssertNotCalled(t, "CreateForOrder", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"messaging-service/internal/identity"
	"messaging-service/internal/models"
	"messaging-service/internal/repositories"
)

type RoomRepositoryMock struct {
	mock.Mock
}

func (m *RoomRepositoryMock) ListRooms(ctx context.Context) ([]models.Room, error) {
	args := m.Called(ctx)
	var rooms []models.Room
	if val := args.Get(0); val != nil {
		rooms = val.([]models.Room)
	}
	return rooms, args.Error(1)
}

func (m *RoomRepositoryMock) GetRoomBySlug(ctx context.Context, slug string) (models.Room, error) {
	args := m.Called(ctx, slug)
	var room models.Room
	if val := args.Get(0); val != nil {
		room = val.(models.Room)
	}
	return room, args.Error(1)
}

func (m *RoomRepositoryMock) PinnedRoomIDs(ctx context.Context, studentID int64) (map[int64]bool, error) {
	args := m.Called(ctx, studentID)
	var pinned map[int64]bool
	if val := args.Get(0); val != nil {
		pinned = val.(map[int64]bool)
	}
	return pinned, args.Error(1)
}

func (m *RoomRepositoryMock) SetPin(ctx context.Context, studentID, roomID int64, pin bool) error {
	args := m.Called(ctx, studentID, roomID, pin)
	return args.Error(0)
}

func (m *RoomRepositoryMock) LastActiveRoomID(ctx context.Context, studentID int64) (*int64, error) {
	args := m.Called(ctx, studentID)
	var roomID *int64
	if val := args.Get(0); val != nil {
		roomID = val.(*int64)
	}
	return roomID, args.Error(1)
}

func (m *RoomRepositoryMock) SetLastActiveRoom(ctx context.Context, studentID, roomID int64) error {
	args := m.Called(ctx, studentID, roomID)
	return args.Error(0)
}

type RoomMessageRepositoryMock struct {
	mock.Mock
}

func (m *RoomMessageRepositoryMock) CreateRoomMessage(ctx context.Context, roomID int64, roomSlug string, studentID int64, content string) (models.RoomMessageView, error) {
	args := m.Called(ctx, roomID, roomSlug, studentID, content)
	var msg models.RoomMessageView
	if val := args.Get(0); val != nil {
		msg = val.(models.RoomMessageView)
	}
	return msg, args.Error(1)
}

func (m *RoomMessageRepositoryMock) ListRoomMessages(ctx context.Context, roomID int64, roomSlug string, limit int) ([]models.RoomMessageView, error) {
	args := m.Called(ctx, roomID, roomSlug, limit)
	var msgs []models.RoomMessageView
	if val := args.Get(0); val != nil {
		msgs = val.([]models.RoomMessageView)
	}
	return msgs, args.Error(1)
}

type ConversationRepositoryMock struct {
	mock.Mock
}

func (m *ConversationRepositoryMock) CreateForOrder(ctx context.Context, orderID, buyerID, sellerID int64, initialMessage string) (models.Conversation, bool, error) {
	args := m.Called(ctx, orderID, buyerID, sellerID, initialMessage)
	var conv models.Conversation
	if val := args.Get(0); val != nil {
		conv = val.(models.Conversation)
	}
	return conv, args.Bool(1), args.Error(2)
}

func (m *ConversationRepositoryMock) GetConversation(ctx context.Context, conversationID int64) (models.Conversation, error) {
	args := m.Called(ctx, conversationID)
	var conv models.Conversation
	if val := args.Get(0); val != nil {
		conv = val.(models.Conversation)
	}
	return conv, args.Error(1)
}

type ConversationMessageRepositoryMock struct {
	mock.Mock
}

func (m *ConversationMessageRepositoryMock) CreateConversationMessage(ctx context.Context, conversationID, senderID int64, content string) (models.ConversationMessageView, error) {
	args := m.Called(ctx, conversationID, senderID, content)
	var msg models.ConversationMessageView
	if val := args.Get(0); val != nil {
		msg = val.(models.ConversationMessageView)
	}
	return msg, args.Error(1)
}

func (m *ConversationMessageRepositoryMock) ListConversationMessages(ctx context.Context, conversationID int64) ([]models.ConversationMessageView, error) {
	args := m.Called(ctx, conversationID)
	var msgs []models.ConversationMessageView
	if val := args.Get(0); val != nil {
		msgs = val.([]models.ConversationMessageView)
	}
	return msgs, args.Error(1)
}

type ResolverMock struct {
	mock.Mock
}

func (m *ResolverMock) Resolve(credential string) (identity.Claims, error) {
	args := m.Called(credential)
	var claims identity.Claims
	if val := args.Get(0); val != nil {
		claims = val.(identity.Claims)
	}
	return claims, args.Error(1)
}

var _ repositories.RoomRepository = (*RoomRepositoryMock)(nil)
var _ repositories.RoomMessageRepository = (*RoomMessageRepositoryMock)(nil)
var _ repositories.ConversationRepository = (*ConversationRepositoryMock)(nil)
var _ repositories.ConversationMessageRepository = (*ConversationMessageRepositoryMock)(nil)
var _ identity.Resolver = (*ResolverMock)(nil)

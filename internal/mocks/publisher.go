package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"messaging-service/internal/fanout"
)

type BroadcasterMock struct {
	mock.Mock
}

func (m *BroadcasterMock) Publish(channel, event string, payload interface{}) error {
	args := m.Called(channel, event, payload)
	return args.Error(0)
}

func (m *BroadcasterMock) Close() error {
	args := m.Called()
	return args.Error(0)
}

type PublisherMock struct {
	mock.Mock
}

func (m *PublisherMock) PublishJSON(ctx context.Context, routingKey string, message interface{}, headers map[string]string) error {
	args := m.Called(ctx, routingKey, message, headers)
	return args.Error(0)
}

var _ fanout.Broadcaster = (*BroadcasterMock)(nil)

// Package client implements the two messaging view sessions used by portal
// frontends: a push-subscribed room view fed by the fan-out channel, and a
// poll-driven conversation view.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Room mirrors the room directory wire shape.
type Room struct {
	ID           int64  `json:"id"`
	Slug         string `json:"slug"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	Pinned       bool   `json:"pinned"`
	IsLastActive bool   `json:"isLastActive"`
}

// StudentRef mirrors the denormalized sender block.
type StudentRef struct {
	ID        int64   `json:"id"`
	FullName  string  `json:"fullName"`
	AvatarURL *string `json:"avatarUrl"`
}

// RoomMessage mirrors the room message wire shape.
type RoomMessage struct {
	ID        int64      `json:"id"`
	Content   string     `json:"content"`
	CreatedAt time.Time  `json:"createdAt"`
	RoomSlug  string     `json:"roomSlug"`
	Student   StudentRef `json:"student"`
}

// SenderRef mirrors the conversation sender block.
type SenderRef struct {
	ID       int64  `json:"id"`
	FullName string `json:"fullName"`
}

// ConversationMessage mirrors the conversation message wire shape.
type ConversationMessage struct {
	ID        int64     `json:"id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	Sender    SenderRef `json:"sender"`
}

// Client is a thin HTTP client for the messaging service.
type Client struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
}

// New constructs a Client with a default HTTP client.
func New(baseURL, token string) *Client {
	return &Client{
		BaseURL:    baseURL,
		Token:      token,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

func (c *Client) do(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	var reqBody *bytes.Buffer
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(raw)
	} else {
		reqBody = &bytes.Buffer{}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		if apiErr.Error != "" {
			return fmt.Errorf("%s %s: %s (status %d)", method, path, apiErr.Error, resp.StatusCode)
		}
		return fmt.Errorf("%s %s: status %d", method, path, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// ListRooms fetches the room directory.
func (c *Client) ListRooms(ctx context.Context) ([]Room, error) {
	var resp struct {
		Rooms []Room `json:"rooms"`
	}
	if err := c.do(ctx, http.MethodGet, "/chat/rooms", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Rooms, nil
}

// PinRoom pins or unpins a room.
func (c *Client) PinRoom(ctx context.Context, roomSlug string, pin bool) error {
	body := map[string]interface{}{"roomSlug": roomSlug, "pin": pin}
	return c.do(ctx, http.MethodPost, "/chat/rooms/pin", body, nil)
}

// RoomHistory fetches the room backlog, oldest first.
func (c *Client) RoomHistory(ctx context.Context, roomSlug string) ([]RoomMessage, error) {
	var resp struct {
		Messages []RoomMessage `json:"messages"`
	}
	if err := c.do(ctx, http.MethodGet, "/chat/rooms/"+roomSlug+"/messages", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Messages, nil
}

// SendRoomMessage appends a message to a room.
func (c *Client) SendRoomMessage(ctx context.Context, roomSlug, content string) (RoomMessage, error) {
	var resp struct {
		Message RoomMessage `json:"message"`
	}
	body := map[string]string{"content": content}
	err := c.do(ctx, http.MethodPost, "/chat/rooms/"+roomSlug+"/messages", body, &resp)
	return resp.Message, err
}

// ConversationMessages fetches the full conversation thread, oldest first.
func (c *Client) ConversationMessages(ctx context.Context, conversationID int64) ([]ConversationMessage, error) {
	var resp struct {
		Messages []ConversationMessage `json:"messages"`
	}
	path := fmt.Sprintf("/marketplace/conversations/%d/messages", conversationID)
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Messages, nil
}

// SendConversationMessage appends a message to a conversation.
func (c *Client) SendConversationMessage(ctx context.Context, conversationID int64, content string) (ConversationMessage, error) {
	var resp struct {
		Message ConversationMessage `json:"message"`
	}
	path := fmt.Sprintf("/marketplace/conversations/%d/messages", conversationID)
	body := map[string]string{"content": content}
	err := c.do(ctx, http.MethodPost, path, body, &resp)
	return resp.Message, err
}

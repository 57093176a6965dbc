// Package client is a small Go client for the murmur HTTP API.
package client

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/murmur-app/murmur/internal/model"
)

// Client talks to a running murmur service.
type Client struct {
	http *resty.Client
}

// New creates a client for the service at baseURL, e.g. "http://localhost:8080".
func New(baseURL string) *Client {
	rc := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(30 * time.Second).
		SetHeader("Accept", "application/json")
	return &Client{http: rc}
}

// apiError converts a non-2xx response into an error carrying the service's
// message.
func apiError(resp *resty.Response) error {
	return fmt.Errorf("http %d: %s", resp.StatusCode(), resp.String())
}

// Health reports whether the service considers itself healthy.
func (c *Client) Health(ctx context.Context) (bool, error) {
	var out struct {
		Status string `json:"status"`
	}
	resp, err := c.http.R().SetContext(ctx).SetResult(&out).Get("/api/health")
	if err != nil {
		return false, err
	}
	if resp.IsError() {
		return false, apiError(resp)
	}
	return out.Status == "healthy", nil
}

// ListConversations returns all conversations, newest first.
func (c *Client) ListConversations(ctx context.Context) ([]model.Conversation, error) {
	var out struct {
		Conversations []model.Conversation `json:"conversations"`
	}
	resp, err := c.http.R().SetContext(ctx).SetResult(&out).Get("/api/conversations")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, apiError(resp)
	}
	return out.Conversations, nil
}

func (c *Client) CreateConversation(ctx context.Context, title string) (*model.Conversation, error) {
	var out model.Conversation
	resp, err := c.http.R().SetContext(ctx).
		SetBody(map[string]string{"title": title}).
		SetResult(&out).
		Post("/api/conversations")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, apiError(resp)
	}
	return &out, nil
}

func (c *Client) GetConversation(ctx context.Context, id string) (*model.Conversation, error) {
	var out model.Conversation
	resp, err := c.http.R().SetContext(ctx).SetResult(&out).
		Get(fmt.Sprintf("/api/conversations/%s", id))
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, apiError(resp)
	}
	return &out, nil
}

func (c *Client) RenameConversation(ctx context.Context, id, title string) (*model.Conversation, error) {
	var out model.Conversation
	resp, err := c.http.R().SetContext(ctx).
		SetBody(map[string]string{"title": title}).
		SetResult(&out).
		Patch(fmt.Sprintf("/api/conversations/%s", id))
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, apiError(resp)
	}
	return &out, nil
}

func (c *Client) DeleteConversation(ctx context.Context, id string) error {
	resp, err := c.http.R().SetContext(ctx).
		Delete(fmt.Sprintf("/api/conversations/%s", id))
	if err != nil {
		return err
	}
	if resp.IsError() {
		return apiError(resp)
	}
	return nil
}

// UploadRecording sends one complete audio take. The conversation is
// created implicitly when the id is unknown.
func (c *Client) UploadRecording(ctx context.Context, conversationID, title string, wav []byte) (*model.Recording, error) {
	var out model.Recording
	req := c.http.R().SetContext(ctx).
		SetHeader("Content-Type", "audio/wav").
		SetBody(wav).
		SetResult(&out)
	if title != "" {
		req.SetQueryParam("title", title)
	}
	resp, err := req.Post(fmt.Sprintf("/api/conversations/%s/recordings", conversationID))
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, apiError(resp)
	}
	return &out, nil
}

func (c *Client) GetRecording(ctx context.Context, conversationID, recordingID string) (*model.Recording, error) {
	var out model.Recording
	resp, err := c.http.R().SetContext(ctx).SetResult(&out).
		Get(fmt.Sprintf("/api/conversations/%s/recordings/%s", conversationID, recordingID))
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, apiError(resp)
	}
	return &out, nil
}

// DownloadAudio fetches the stored audio bytes for playback.
func (c *Client) DownloadAudio(ctx context.Context, conversationID, recordingID string) ([]byte, error) {
	resp, err := c.http.R().SetContext(ctx).
		Get(fmt.Sprintf("/api/conversations/%s/recordings/%s/audio", conversationID, recordingID))
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, apiError(resp)
	}
	return resp.Body(), nil
}

func (c *Client) DeleteRecording(ctx context.Context, conversationID, recordingID string) error {
	resp, err := c.http.R().SetContext(ctx).
		Delete(fmt.Sprintf("/api/conversations/%s/recordings/%s", conversationID, recordingID))
	if err != nil {
		return err
	}
	if resp.IsError() {
		return apiError(resp)
	}
	return nil
}

// CreateDraft asks the service to reshape a conversation's transcripts.
func (c *Client) CreateDraft(ctx context.Context, conversationID, format, instructions string) (*model.Draft, error) {
	var out model.Draft
	resp, err := c.http.R().SetContext(ctx).
		SetBody(map[string]string{"format": format, "instructions": instructions}).
		SetResult(&out).
		Post(fmt.Sprintf("/api/conversations/%s/drafts", conversationID))
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, apiError(resp)
	}
	return &out, nil
}

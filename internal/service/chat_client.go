package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"lead-service/internal/domain"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// ChatMessage is the payload the chat service expects on POST /messages.
// The chat service is not idempotent: resending the same logical content
// creates duplicate messages, so the engine sends at most once per lead.
type ChatMessage struct {
	Sender          string `json:"sender"`
	Recipient       string `json:"recipient"`
	RequirementID   string `json:"requirementId"`
	RequirementName string `json:"requirementName"`
	SellerName      string `json:"sellerName"`
	BuyerName       string `json:"buyerName"`
	Message         string `json:"message"`
}

// ChatDelivery is the chat service's acknowledgement.
type ChatDelivery struct {
	ConversationID string          `json:"conversationId"`
	Message        json.RawMessage `json:"message"`
}

// ChatClient hands a composed message to the chat subsystem after a lead
// action commits. Delivery may take longer than identity reads, hence the
// separate, longer timeout.
type ChatClient interface {
	SendMessage(ctx context.Context, msg ChatMessage) (*ChatDelivery, error)
}

type chatClient struct {
	httpClient *resty.Client
	logger     *zap.Logger
}

func NewChatClient(baseURL string, timeout time.Duration, logger *zap.Logger) ChatClient {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &chatClient{
		httpClient: client,
		logger:     logger,
	}
}

func (c *chatClient) SendMessage(ctx context.Context, msg ChatMessage) (*ChatDelivery, error) {
	var delivery ChatDelivery
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(msg).
		SetResult(&delivery).
		Post("/messages")

	if err != nil {
		c.logger.Error("chat service unreachable",
			zap.String("requirement_id", msg.RequirementID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("chat delivery failed: %w", domain.ErrDependency)
	}
	if resp.IsError() {
		c.logger.Error("chat service rejected message",
			zap.String("requirement_id", msg.RequirementID),
			zap.Int("status_code", resp.StatusCode()),
		)
		return nil, fmt.Errorf("chat delivery failed with status %d: %w", resp.StatusCode(), domain.ErrDependency)
	}

	return &delivery, nil
}

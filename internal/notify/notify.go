package notify

import (
	"context"
	"fmt"
	"time"

	"deskbook/internal/config"
	"deskbook/internal/models"
	"deskbook/internal/worker"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
)

// MailClient posts booking notices to the configured mail API. Delivery is
// retried with backoff; the caller decides what to do with a final error
// (the booking flow logs and swallows it).
type MailClient struct {
	client *resty.Client
	cfg    config.NotifyConfig
	retry  worker.RetryPolicy
	logger *zerolog.Logger
}

func NewMailClient(cfg config.NotifyConfig, logger *zerolog.Logger) *MailClient {
	client := resty.New().
		SetTimeout(time.Duration(cfg.TimeoutSeconds) * time.Second).
		SetHeader("Content-Type", "application/json")
	if cfg.APIKey != "" {
		client.SetAuthToken(cfg.APIKey)
	}

	return &MailClient{
		client: client,
		cfg:    cfg,
		retry: worker.RetryPolicy{
			MaxRetries:   cfg.MaxRetries,
			InitialDelay: time.Second,
			MaxDelay:     10 * time.Second,
		},
		logger: logger,
	}
}

type mailRequest struct {
	Sender          string   `json:"sender,omitempty"`
	RecipientEmails []string `json:"recipient_emails"`
	DeskName        string   `json:"desk_name"`
	UserEmail       string   `json:"user_email"`
}

// NotifyBooked sends one booking notice, retrying transient failures.
func (c *MailClient) NotifyBooked(ctx context.Context, notice models.BookingNotice) error {
	recipients := notice.Recipients
	if len(recipients) == 0 {
		recipients = c.cfg.Recipients
	}
	if len(recipients) == 0 {
		c.logger.Debug().Str("desk_id", notice.DeskID).Msg("no notification recipients configured")
		return nil
	}

	body := mailRequest{
		Sender:          c.cfg.Sender,
		RecipientEmails: recipients,
		DeskName:        notice.DeskName,
		UserEmail:       notice.UserEmail,
	}

	return c.retry.Do(ctx, func(ctx context.Context) error {
		resp, err := c.client.R().
			SetContext(ctx).
			SetBody(body).
			Post(c.cfg.Endpoint)
		if err != nil {
			return fmt.Errorf("failed to post booking notice: %w", err)
		}
		if resp.IsError() {
			return fmt.Errorf("mail API returned %d", resp.StatusCode())
		}
		return nil
	})
}

// LogNotifier writes notices to the log instead of delivering them. It
// backs tests and deployments without a mail endpoint.
type LogNotifier struct {
	Logger *zerolog.Logger
}

func (n *LogNotifier) NotifyBooked(ctx context.Context, notice models.BookingNotice) error {
	n.Logger.Info().
		Str("desk_id", notice.DeskID).
		Str("desk_name", notice.DeskName).
		Str("user_email", notice.UserEmail).
		Msg("booking notice (log only)")
	return nil
}

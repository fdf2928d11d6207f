// services/notifier.go
package services

import (
	"context"
	"errors"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"go.uber.org/zap"
)

// Notifier delivers a payment reminder to a customer phone number.
type Notifier interface {
	Channel() string
	Send(ctx context.Context, to, body string) error
}

// TwilioNotifier sends reminders as SMS through the Twilio REST API.
type TwilioNotifier struct {
	client *twilio.RestClient
	from   string
	logger *zap.Logger
}

func NewTwilioNotifier(accountSID, authToken, from string, logger *zap.Logger) *TwilioNotifier {
	return &TwilioNotifier{
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: accountSID,
			Password: authToken,
		}),
		from:   from,
		logger: logger,
	}
}

func (n *TwilioNotifier) Channel() string { return "sms" }

func (n *TwilioNotifier) Send(_ context.Context, to, body string) error {
	if n.from == "" {
		return errors.New("twilio from number not configured")
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(n.from)
	params.SetBody(body)

	resp, err := n.client.Api.CreateMessage(params)
	if err != nil {
		return err
	}
	if resp.Sid != nil {
		n.logger.Debug("sms sent", zap.String("to", to), zap.String("sid", *resp.Sid))
	}
	return nil
}

// LogNotifier only writes the reminder to the log. It is used when Twilio
// is not configured.
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Channel() string { return "log" }

func (n *LogNotifier) Send(_ context.Context, to, body string) error {
	n.logger.Info("payment reminder", zap.String("to", to), zap.String("body", body))
	return nil
}

package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Channels
const (
	ChannelEmail = "email"
	ChannelSMS   = "sms"
)

// Message is a rendered notification ready to send.
type Message struct {
	Channel   string
	Recipient string
	Subject   string
	Body      string
}

// Sender delivers a message over one channel. Implementations: LogSender
// (simulated), EmailSender and SMSSender (provider HTTP APIs).
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// LogSender is the simulated backend: it prints the payload instead of
// calling a provider.
type LogSender struct {
	log *logrus.Entry
}

func NewLogSender() *LogSender {
	return &LogSender{log: logrus.WithField("notify", "simulated")}
}

func (s *LogSender) Send(ctx context.Context, msg Message) error {
	s.log.WithFields(logrus.Fields{
		"channel":   msg.Channel,
		"recipient": msg.Recipient,
		"subject":   msg.Subject,
	}).Infof("notification: %s", msg.Body)
	return nil
}

// EmailSender posts a JSON payload to a transactional email provider.
type EmailSender struct {
	endpoint string
	apiKey   string
	from     string
	client   *http.Client
	log      *logrus.Entry
}

func NewEmailSender(endpoint, apiKey, from string) *EmailSender {
	return &EmailSender{
		endpoint: endpoint,
		apiKey:   apiKey,
		from:     from,
		client:   &http.Client{Timeout: 10 * time.Second},
		log:      logrus.WithField("notify", "email"),
	}
}

func (s *EmailSender) Send(ctx context.Context, msg Message) error {
	payload := map[string]interface{}{
		"from":    s.from,
		"to":      []string{msg.Recipient},
		"subject": msg.Subject,
		"text":    msg.Body,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewBuffer(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		s.log.WithError(err).Error("email send failed")
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		s.log.WithField("status", resp.StatusCode).Error("email provider rejected send")
		return fmt.Errorf("email send failed with status %d", resp.StatusCode)
	}
	return nil
}

// SMSSender posts a form-encoded payload to an SMS provider.
type SMSSender struct {
	endpoint  string
	accountID string
	token     string
	from      string
	client    *http.Client
	log       *logrus.Entry
}

func NewSMSSender(endpoint, accountID, token, from string) *SMSSender {
	return &SMSSender{
		endpoint:  endpoint,
		accountID: accountID,
		token:     token,
		from:      from,
		client:    &http.Client{Timeout: 10 * time.Second},
		log:       logrus.WithField("notify", "sms"),
	}
}

func (s *SMSSender) Send(ctx context.Context, msg Message) error {
	form := url.Values{}
	form.Set("To", msg.Recipient)
	form.Set("From", s.from)
	form.Set("Body", msg.Body)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(s.accountID, s.token)

	resp, err := s.client.Do(req)
	if err != nil {
		s.log.WithError(err).Error("sms send failed")
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		s.log.WithField("status", resp.StatusCode).Error("sms provider rejected send")
		return fmt.Errorf("sms send failed with status %d", resp.StatusCode)
	}
	return nil
}

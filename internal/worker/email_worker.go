package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Orbeng/engser/internal/infra"

	"github.com/rs/zerolog/log"
)

// EmailJobPayload is the payload of a QueueEmail job.
type EmailJobPayload struct {
	ToEmail string `json:"to_email"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Sender delivers one plain-text email. *infra.Mailer implements it.
type Sender interface {
	Send(to, subject, body string) error
}

// EmailWorker delivers QueueEmail jobs through the SMTP circuit breaker.
type EmailWorker struct {
	sender Sender
	cb     *infra.CircuitBreaker
}

func NewEmailWorker(sender Sender, cb *infra.CircuitBreaker) *EmailWorker {
	return &EmailWorker{sender: sender, cb: cb}
}

func (w *EmailWorker) Process(_ context.Context, raw json.RawMessage) error {
	var payload EmailJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return Permanent(fmt.Errorf("email_worker: invalid payload: %w", err))
	}
	if payload.ToEmail == "" {
		return Permanent(errors.New("email_worker: empty to_email"))
	}

	send := func() error { return w.sender.Send(payload.ToEmail, payload.Subject, payload.Body) }
	var err error
	if w.cb != nil {
		err = w.cb.Execute(send)
	} else {
		err = send()
	}
	if errors.Is(err, infra.ErrMailerDisabled) {
		return Permanent(err)
	}
	if err != nil {
		log.Error().Err(err).Str("to", payload.ToEmail).Msg("email_worker: send failed")
		return err
	}
	log.Info().Str("to", payload.ToEmail).Str("subject", payload.Subject).Msg("email_worker: sent")
	return nil
}

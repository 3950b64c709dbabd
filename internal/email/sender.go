// Copyright 2025 The Polyboost Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package email

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	sestypes "github.com/aws/aws-sdk-go-v2/service/ses/types"
	"go.uber.org/zap"
)

const monitoringSubjectPrefix = "[Polyboost Monitoring] "

// Sender delivers transactional notification email.
type Sender interface {
	// Send delivers a plain-text email to recipient. A blank recipient is
	// simulated (logged, not sent) rather than treated as an error.
	Send(ctx context.Context, subject, body, recipient string) error
	// SendMonitoring delivers an internal monitoring notification.
	// Best-effort: failures are logged and never propagate.
	SendMonitoring(ctx context.Context, subject, body string)
}

// SESAPI is the subset of the SES client the sender uses.
type SESAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// SESSender implements Sender over AWS SES.
type SESSender struct {
	api        SESAPI
	sender     string
	monitoring string
	enabled    bool
	log        *zap.Logger
}

// NewSESSender creates a sender. When enabled is false every send is logged
// and skipped, which keeps non-production deployments from emailing
// customers.
func NewSESSender(api SESAPI, sender, monitoring string, enabled bool, log *zap.Logger) *SESSender {
	return &SESSender{
		api:        api,
		sender:     sender,
		monitoring: monitoring,
		enabled:    enabled,
		log:        log,
	}
}

// Send implements Sender.
func (s *SESSender) Send(ctx context.Context, subject, body, recipient string) error {
	if recipient == "" {
		s.log.Info("simulating email send (blank recipient)", zap.String("subject", subject))
		return nil
	}
	if !s.enabled {
		s.log.Info("email notifications disabled, skipping send",
			zap.String("recipient", recipient),
			zap.String("subject", subject))
		return nil
	}

	out, err := s.api.SendEmail(ctx, &ses.SendEmailInput{
		Source: aws.String(s.sender),
		Destination: &sestypes.Destination{
			ToAddresses: []string{recipient},
		},
		Message: &sestypes.Message{
			Subject: &sestypes.Content{
				Charset: aws.String("UTF-8"),
				Data:    aws.String(subject),
			},
			Body: &sestypes.Body{
				Text: &sestypes.Content{
					Charset: aws.String("UTF-8"),
					Data:    aws.String(body),
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to send email to %s: %w", recipient, err)
	}

	s.log.Info("email sent",
		zap.String("recipient", recipient),
		zap.String("subject", subject),
		zap.String("messageId", aws.ToString(out.MessageId)))
	return nil
}

// SendMonitoring implements Sender.
func (s *SESSender) SendMonitoring(ctx context.Context, subject, body string) {
	if err := s.Send(ctx, monitoringSubjectPrefix+subject, body, s.monitoring); err != nil {
		s.log.Error("failed to send monitoring email",
			zap.String("subject", subject),
			zap.Error(err))
	}
}

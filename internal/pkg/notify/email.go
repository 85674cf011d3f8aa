// Copyright 2025 Worklane Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
)

// Smtp holds mail transport configuration.
type Smtp struct {
	Host     string
	Port     int
	From     string
	Username string
	Password string
	Enabled  bool
}

// IMailer sends transactional mail. Delivery is best-effort: a failed send
// never fails the operation that requested it.
type IMailer interface {
	Send(ctx context.Context, to []string, subject, body string) error
}

// EmailChannel implements IMailer over SMTP.
type EmailChannel struct {
	cfg Smtp
}

func NewEmailChannel(cfg Smtp) *EmailChannel {
	return &EmailChannel{cfg: cfg}
}

func (c *EmailChannel) Validate() error {
	if c.cfg.Host == "" {
		return fmt.Errorf("smtp host is required")
	}
	if c.cfg.Port <= 0 {
		return fmt.Errorf("smtp port is required")
	}
	if c.cfg.From == "" {
		return fmt.Errorf("smtp from address is required")
	}
	return nil
}

func (c *EmailChannel) Send(_ context.Context, to []string, subject, body string) error {
	if !c.cfg.Enabled {
		return nil
	}
	if err := c.Validate(); err != nil {
		return err
	}
	if len(to) == 0 {
		return fmt.Errorf("no recipients")
	}

	msg := "From: " + c.cfg.From + "\r\n" +
		"To: " + strings.Join(to, ",") + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"\r\n" + body

	var auth smtp.Auth
	if c.cfg.Username != "" {
		auth = smtp.PlainAuth("", c.cfg.Username, c.cfg.Password, c.cfg.Host)
	}

	addr := fmt.Sprintf("%s:%d", c.cfg.Host, c.cfg.Port)
	if err := smtp.SendMail(addr, auth, c.cfg.From, to, []byte(msg)); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}

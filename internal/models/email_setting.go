// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "time"

// Mail driver names accepted by the email settings form.
const (
	MailDriverSMTP = "smtp"
	MailDriverLog  = "log"
)

// EmailSetting is the single global mail transport configuration record.
// Same singleton-row pattern as WebsiteSetting. The mailer reads this row
// at send time, so saved changes take effect without a restart.
type EmailSetting struct {
	MailDriver     string  `json:"mail_driver"`
	MailHost       *string `json:"mail_host"`
	MailPort       *string `json:"mail_port"`
	MailUsername   *string `json:"mail_username"`
	MailPassword   *string `json:"-"`
	MailEncryption *string `json:"mail_encryption"`

	MailFromAddress string `json:"mail_from_address"`
	MailFromName    string `json:"mail_from_name"`

	EnableVerification   bool    `json:"enable_verification"`
	VerificationTemplate *string `json:"verification_template"`

	UpdatedAt time.Time `json:"updated_at"`
}

// IsSMTP returns true when the configured driver is a real SMTP transport.
func (s *EmailSetting) IsSMTP() bool {
	return s.MailDriver == MailDriverSMTP
}

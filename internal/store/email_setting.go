// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"

	"backoffice/internal/models"
)

// EmailSettingStore manages the singleton email settings row.
type EmailSettingStore struct {
	db *sql.DB
}

// NewEmailSettingStore returns an EmailSettingStore backed by the given database.
func NewEmailSettingStore(db *sql.DB) *EmailSettingStore {
	return &EmailSettingStore{db: db}
}

// Get returns the email settings row, creating it with schema defaults on
// first access. Same singleton pattern as WebsiteSettingStore.Get.
func (s *EmailSettingStore) Get() (*models.EmailSetting, error) {
	if _, err := s.db.Exec(`
		INSERT INTO email_settings (singleton_key) VALUES (1)
		ON CONFLICT (singleton_key) DO NOTHING`,
	); err != nil {
		return nil, fmt.Errorf("init email settings: %w", err)
	}

	es := &models.EmailSetting{}
	err := s.db.QueryRow(`
		SELECT mail_driver, mail_host, mail_port, mail_username, mail_password, mail_encryption,
		       mail_from_address, mail_from_name, enable_verification, verification_template, updated_at
		FROM email_settings WHERE singleton_key = 1`,
	).Scan(
		&es.MailDriver, &es.MailHost, &es.MailPort, &es.MailUsername, &es.MailPassword, &es.MailEncryption,
		&es.MailFromAddress, &es.MailFromName, &es.EnableVerification, &es.VerificationTemplate, &es.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("get email settings: %w", err)
	}
	return es, nil
}

// Update persists the full validated email settings field set. The mailer
// reads this row at send time, so the new transport configuration takes
// effect immediately without a restart.
func (s *EmailSettingStore) Update(es *models.EmailSetting) error {
	if _, err := s.Get(); err != nil {
		return err
	}
	_, err := s.db.Exec(`
		UPDATE email_settings
		SET mail_driver = $1, mail_host = $2, mail_port = $3, mail_username = $4,
		    mail_password = $5, mail_encryption = $6, mail_from_address = $7,
		    mail_from_name = $8, enable_verification = $9, verification_template = $10,
		    updated_at = now()
		WHERE singleton_key = 1`,
		es.MailDriver, es.MailHost, es.MailPort, es.MailUsername,
		es.MailPassword, es.MailEncryption, es.MailFromAddress,
		es.MailFromName, es.EnableVerification, es.VerificationTemplate,
	)
	if err != nil {
		return fmt.Errorf("update email settings: %w", err)
	}
	return nil
}

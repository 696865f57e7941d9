// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
)

// VerificationSigner builds and checks signed email-verification links.
// The signature covers only the user ID, so a link stays valid until the
// address is verified, with no server-side token state.
type VerificationSigner struct {
	secret  []byte
	baseURL string
}

func NewVerificationSigner(secret, baseURL string) *VerificationSigner {
	return &VerificationSigner{secret: []byte(secret), baseURL: baseURL}
}

// Link returns the absolute verification URL for a user.
func (s *VerificationSigner) Link(userID uuid.UUID) string {
	return fmt.Sprintf("%s/verify-email/%s?signature=%s", s.baseURL, userID, s.sign(userID))
}

// Valid reports whether the signature matches the user ID.
func (s *VerificationSigner) Valid(userID uuid.UUID, signature string) bool {
	return hmac.Equal([]byte(s.sign(userID)), []byte(signature))
}

func (s *VerificationSigner) sign(userID uuid.UUID) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(userID.String()))
	return hex.EncodeToString(mac.Sum(nil))
}

package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"farmlyf_back_end/internal/utils"
)

// OTPSender delivers login codes.
type OTPSender interface {
	SendOTP(ctx context.Context, phone, email, code string, ttl time.Duration) error
}

// MailOTPSender mails the code when the account has an email address.
// In development the code is also logged so phone-only logins work locally.
type MailOTPSender struct {
	Mailer utils.Mailer
	Dev    bool
}

func (s *MailOTPSender) SendOTP(ctx context.Context, phone, email, code string, ttl time.Duration) error {
	if s.Dev {
		zap.L().Info("🔑 otp issued", zap.String("phone", phone), zap.String("code", code))
	}
	if email == "" || s.Mailer == nil {
		if !s.Dev {
			zap.L().Warn("⚠️ no delivery channel for otp", zap.String("phone", phone))
		}
		return nil
	}
	m, err := utils.OTPMail(email, code, ttl)
	if err != nil {
		return err
	}
	return s.Mailer.Send(ctx, m)
}

package services

import (
	"context"
	"encoding/base64"

	"github.com/google/uuid"
	"github.com/pquerna/otp/totp"
	qrcode "github.com/skip2/go-qrcode"
	"github.com/upb/identity-core/config"
	"github.com/upb/identity-core/internal/observability"
	"github.com/upb/identity-core/repositories"
	"go.uber.org/zap"
)

// Enrollment is the artifact handed to a user starting two-factor setup.
// QRCode is a data URI holding a PNG of the otpauth URL.
type Enrollment struct {
	Secret string
	QRCode string
}

// TwoFactorService handles TOTP enrollment. Activation (verifying the
// first code) is a separate flow.
type TwoFactorService struct {
	resolver *ResolverService
	users    repositories.UserRepository
	cfg      config.AuthConfig
	logger   *zap.Logger
}

// NewTwoFactorService creates a new two-factor service
func NewTwoFactorService(resolver *ResolverService, users repositories.UserRepository, cfg config.AuthConfig, logger *zap.Logger) *TwoFactorService {
	return &TwoFactorService{
		resolver: resolver,
		users:    users,
		cfg:      cfg,
		logger:   logger,
	}
}

// Enroll generates a TOTP secret for the user and stores it unconfirmed
// in the user's schema. Re-enrolling before activation simply replaces
// the pending secret.
func (s *TwoFactorService) Enroll(ctx context.Context, userID uuid.UUID) (*Enrollment, error) {
	match, err := s.resolver.ResolveUser(ctx, userID)
	if err != nil {
		if IsNotFoundError(err) {
			observability.TwoFactorEnrollments.WithLabelValues("not_found").Inc()
		} else {
			observability.TwoFactorEnrollments.WithLabelValues("error").Inc()
		}
		return nil, err
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      s.cfg.TOTPIssuer,
		AccountName: match.User.Email,
	})
	if err != nil {
		observability.TwoFactorEnrollments.WithLabelValues("error").Inc()
		return nil, WrapInternal("failed to generate TOTP key", err)
	}

	png, err := qrcode.Encode(key.URL(), qrcode.Medium, 256)
	if err != nil {
		observability.TwoFactorEnrollments.WithLabelValues("error").Inc()
		return nil, WrapInternal("failed to encode QR code", err)
	}

	if err := s.users.SetTwoFactorSecret(ctx, match.Schema, match.User.ID, key.Secret()); err != nil {
		observability.TwoFactorEnrollments.WithLabelValues("error").Inc()
		return nil, WrapInternal("failed to store two-factor secret", err)
	}

	observability.TwoFactorEnrollments.WithLabelValues("success").Inc()
	s.logger.Info("two-factor enrollment started",
		zap.String("user_id", match.User.ID.String()),
		zap.String("schema", match.Schema),
	)

	return &Enrollment{
		Secret: key.Secret(),
		QRCode: "data:image/png;base64," + base64.StdEncoding.EncodeToString(png),
	}, nil
}

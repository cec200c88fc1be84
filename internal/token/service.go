package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/mehmetcc/travelize/internal/config"
	"go.uber.org/zap"
)

// Verifier is the read side of the token service, used by the auth gate.
type Verifier interface {
	Verify(tokenString string) (*Session, error)
}

type TokenService interface {
	Verifier
	Issue(claims Claims) (string, time.Time, error)
}

type tokenService struct {
	logger     *zap.Logger
	cfg        *config.JWTConfig
	signingAlg jwt.SigningMethod
	nowFunc    func() time.Time
}

func NewTokenService(logger *zap.Logger, cfg *config.JWTConfig) (TokenService, error) {
	if cfg == nil || cfg.Secret == "" {
		return nil, errors.New("token: signing secret is required")
	}
	if cfg.AccessTTL <= 0 {
		return nil, errors.New("token: access TTL must be > 0")
	}
	return &tokenService{
		logger:     logger,
		cfg:        cfg,
		signingAlg: jwt.SigningMethodHS256,
		nowFunc:    time.Now,
	}, nil
}

func (s *tokenService) Issue(claims Claims) (string, time.Time, error) {
	issuedAt := s.nowFunc().UTC()
	expiresAt := issuedAt.Add(s.cfg.AccessTTL)

	mc := make(jwt.MapClaims, len(claims)+3)
	for k, v := range claims {
		mc[k] = v
	}
	for _, k := range reservedClaims {
		delete(mc, k)
	}
	mc["iat"] = jwt.NewNumericDate(issuedAt)
	mc["exp"] = jwt.NewNumericDate(expiresAt)
	if s.cfg.Issuer != "" {
		mc["iss"] = s.cfg.Issuer
	}

	signed, err := jwt.NewWithClaims(s.signingAlg, mc).SignedString([]byte(s.cfg.Secret))
	if err != nil {
		s.logger.Error("failed to sign access token", zap.Error(err))
		return "", time.Time{}, fmt.Errorf("sign access token: %w", err)
	}
	return signed, expiresAt, nil
}

func (s *tokenService) Verify(tokenString string) (*Session, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{s.signingAlg.Alg()}),
		jwt.WithTimeFunc(s.nowFunc),
		jwt.WithExpirationRequired(),
	}
	if s.cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.cfg.Issuer))
	}
	parser := jwt.NewParser(opts...)

	mc := jwt.MapClaims{}
	tkn, err := parser.ParseWithClaims(tokenString, mc, func(t *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.Secret), nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrInvalidSignature
		default:
			s.logger.Debug("rejecting malformed token", zap.Error(err))
			return nil, ErrMalformed
		}
	}
	if !tkn.Valid {
		return nil, ErrMalformed
	}

	session := &Session{Claims: make(Claims, len(mc))}
	if iat, err := mc.GetIssuedAt(); err == nil && iat != nil {
		session.IssuedAt = iat.Time
	}
	if exp, err := mc.GetExpirationTime(); err == nil && exp != nil {
		session.ExpiresAt = exp.Time
	}
	for k, v := range mc {
		session.Claims[k] = v
	}
	delete(session.Claims, "iat")
	delete(session.Claims, "exp")
	if s.cfg.Issuer != "" {
		delete(session.Claims, "iss")
	}
	return session, nil
}

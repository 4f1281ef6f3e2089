package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid username or password")

// ActionAdminLogin is the audit action recorded for every login attempt.
const ActionAdminLogin = "ADMIN_LOGIN"

type AuditLogger interface {
	LogAction(ctx context.Context, action, registrationID string, details map[string]interface{}, ip, status string) error
}

type LoginInput struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type Token struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type Service interface {
	Login(ctx context.Context, in LoginInput, ip string) (*Token, error)
}

type service struct {
	username     string
	passwordHash []byte
	secret       []byte
	ttl          time.Duration
	audit        AuditLogger
	now          func() time.Time
}

// NewService builds the single-admin login service from configured
// credentials. passwordHash is a bcrypt hash.
func NewService(username, passwordHash, secret string, ttl time.Duration, audit AuditLogger) Service {
	return &service{
		username:     username,
		passwordHash: []byte(passwordHash),
		secret:       []byte(secret),
		ttl:          ttl,
		audit:        audit,
		now:          time.Now,
	}
}

func (s *service) Login(ctx context.Context, in LoginInput, ip string) (*Token, error) {
	userOK := subtle.ConstantTimeCompare([]byte(in.Username), []byte(s.username)) == 1
	passErr := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(in.Password))

	if !userOK || passErr != nil {
		s.record(ctx, in.Username, ip, "failure")
		return nil, ErrInvalidCredentials
	}

	tok, err := s.generateAccessToken()
	if err != nil {
		return nil, err
	}
	s.record(ctx, in.Username, ip, "success")
	return tok, nil
}

func (s *service) generateAccessToken() (*Token, error) {
	now := s.now()
	exp := now.Add(s.ttl)
	claims := jwt.MapClaims{
		"sub":  s.username,
		"role": "admin",
		"iat":  now.Unix(),
		"exp":  exp.Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, err
	}
	return &Token{Token: signed, ExpiresAt: exp}, nil
}

func (s *service) record(ctx context.Context, username, ip, status string) {
	if s.audit == nil {
		return
	}
	_ = s.audit.LogAction(ctx, ActionAdminLogin, "", map[string]interface{}{"username": username}, ip, status)
}

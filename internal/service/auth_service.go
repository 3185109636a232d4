package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/openshare/internal/db"
)

// tokenLifetime 是签发令牌的有效期
const tokenLifetime = 72 * time.Hour

// AuthService is the identity provider: it registers accounts, verifies
// credentials and issues bearer tokens for SPA clients. Viewer identity is
// always handed to the other services as an explicit argument afterwards.
type AuthService struct {
	db        *gorm.DB
	jwtSecret []byte
}

// NewAuthService creates an AuthService instance.
func NewAuthService(gdb *gorm.DB, jwtSecret string) *AuthService {
	return &AuthService{db: gdb, jwtSecret: []byte(jwtSecret)}
}

// Register creates an account with a bcrypt-hashed password. Username and
// email must be unused.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*db.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || email == "" || password == "" {
		return nil, validationErr("username, email and password are required")
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&db.User{}).
		Where("username = ?", username).Count(&count).Error; err != nil {
		return nil, retrievalErr("check username", err)
	}
	if count > 0 {
		return nil, ErrUsernameTaken
	}

	if err := s.db.WithContext(ctx).Model(&db.User{}).
		Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, retrievalErr("check email", err)
	}
	if count > 0 {
		return nil, ErrEmailTaken
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := db.User{Username: username, Email: email, Password: string(hashed)}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, writeErr("create user", err)
	}

	return &user, nil
}

// Authenticate verifies an email/password pair. Lookup misses and bad
// passwords both map to ErrInvalidCredentials so callers cannot probe for
// registered addresses.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*db.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, validationErr("email and password are required")
	}

	var user db.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, retrievalErr("load user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return &user, nil
}

// IssueToken 为用户签发 HS256 令牌，sub 为用户 id。
func (s *AuthService) IssueToken(user *db.User) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatUint(uint64(user.ID), 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(tokenLifetime)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

// ParseToken 校验令牌并返回其中的用户 id，仅接受 HS256。
func (s *AuthService) ParseToken(tokenStr string) (uint, error) {
	var claims jwt.RegisteredClaims
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims,
		func(t *jwt.Token) (any, error) {
			return s.jwtSecret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil || !token.Valid {
		return 0, ErrInvalidCredentials
	}

	id, err := strconv.ParseUint(claims.Subject, 10, 32)
	if err != nil || id == 0 {
		return 0, ErrInvalidCredentials
	}
	return uint(id), nil
}

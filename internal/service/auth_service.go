package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/Orbeng/engser/internal/auth"
	"github.com/Orbeng/engser/internal/dto"
	"github.com/Orbeng/engser/internal/model"
	"github.com/Orbeng/engser/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	passwordCost  = 12
	resetTokenTTL = time.Hour

	msgInvalidCredentials = "Usuário ou senha inválidos"
)

// MailQueue enqueues outbound email for asynchronous delivery.
type MailQueue interface {
	EnqueueEmail(ctx context.Context, to, subject, body string) error
}

type AuthService interface {
	Register(ctx context.Context, req dto.RegisterRequest) (*dto.LoginResponse, error)
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error)
	User(ctx context.Context, id uuid.UUID) (*dto.UserResponse, error)
	RequestPasswordReset(ctx context.Context, username string) error
	ResetPassword(ctx context.Context, token, password string) error
}

type authService struct {
	users   repository.UserRepository
	authn   *auth.Authenticator
	mail    MailQueue // nil: reset links are only logged
	baseURL string
	now     func() time.Time
}

func NewAuthService(users repository.UserRepository, authn *auth.Authenticator, mail MailQueue, baseURL string) AuthService {
	return &authService{users: users, authn: authn, mail: mail, baseURL: baseURL, now: time.Now}
}

func (s *authService) Register(ctx context.Context, req dto.RegisterRequest) (*dto.LoginResponse, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), passwordCost)
	if err != nil {
		return nil, newError(KindTransient, "Erro interno, tente novamente", err)
	}
	user := &model.User{
		Username:     req.Username,
		PasswordHash: string(hash),
		Name:         req.Name,
		Email:        req.Email,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			err = &Error{
				Kind:    KindDuplicate,
				Message: "Nome de usuário já existe",
				Fields:  []FieldError{{Field: "username", Message: "Já está em uso"}},
				Err:     err,
			}
		} else {
			err = classify(err, "")
		}
		logFailure("auth.register", req.Username, err)
		return nil, err
	}
	log.Info().Str("user_id", user.ID.String()).Msg("user registered")
	return s.issue(user)
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.users.FindByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newError(KindUnauthorized, msgInvalidCredentials, err)
		}
		err = classify(err, "")
		logFailure("auth.login", req.Username, err)
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, newError(KindUnauthorized, msgInvalidCredentials, err)
	}

	now := s.now()
	if err := s.users.Update(ctx, user.ID, map[string]interface{}{"last_login": now}); err != nil {
		log.Warn().Err(err).Str("user_id", user.ID.String()).Msg("auth: could not record last login")
	} else {
		user.LastLogin = &now
	}
	return s.issue(user)
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error) {
	claims, err := s.authn.Parse(refreshToken, auth.KindRefresh)
	if err != nil {
		return nil, newError(KindUnauthorized, "Token de atualização inválido ou expirado", err)
	}
	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, newError(KindUnauthorized, "Usuário não encontrado", err)
	}
	return s.issue(user)
}

func (s *authService) User(ctx context.Context, id uuid.UUID) (*dto.UserResponse, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		err = classify(err, "Usuário não encontrado")
		logFailure("auth.user", id.String(), err)
		return nil, err
	}
	resp := userToResponse(user)
	return &resp, nil
}

// RequestPasswordReset stores a one-hour reset token and mails the link.
// Unknown usernames are not reported so callers cannot probe accounts.
func (s *authService) RequestPasswordReset(ctx context.Context, username string) error {
	user, err := s.users.FindByUsername(ctx, username)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		err = classify(err, "")
		logFailure("auth.reset_request", username, err)
		return err
	}

	token := uuid.NewString()
	expiry := s.now().Add(resetTokenTTL)
	if err := s.users.Update(ctx, user.ID, map[string]interface{}{
		"reset_token":        token,
		"reset_token_expiry": expiry,
	}); err != nil {
		err = classify(err, "")
		logFailure("auth.reset_request", user.ID.String(), err)
		return err
	}

	link := fmt.Sprintf("%s/reset-password?token=%s", s.baseURL, url.QueryEscape(token))
	if s.mail == nil || user.Email == nil || *user.Email == "" {
		log.Info().Str("user_id", user.ID.String()).Msg("auth: reset token issued, no mail delivery available")
		return nil
	}
	body := fmt.Sprintf("Olá %s,\n\nPara redefinir sua senha acesse:\n%s\n\nO link expira em 1 hora.\n", user.Name, link)
	if err := s.mail.EnqueueEmail(ctx, *user.Email, "Redefinição de senha", body); err != nil {
		log.Error().Err(err).Str("user_id", user.ID.String()).Msg("auth: could not enqueue reset email")
	}
	return nil
}

func (s *authService) ResetPassword(ctx context.Context, token, password string) error {
	user, err := s.users.FindByResetToken(ctx, token)
	if err != nil || user.ResetTokenExpiry == nil || s.now().After(*user.ResetTokenExpiry) {
		return ValidationError("Token inválido ou expirado", FieldError{Field: "token", Message: "Inválido ou expirado"})
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), passwordCost)
	if err != nil {
		return newError(KindTransient, "Erro interno, tente novamente", err)
	}
	if err := s.users.Update(ctx, user.ID, map[string]interface{}{
		"password_hash":      string(hash),
		"reset_token":        nil,
		"reset_token_expiry": nil,
	}); err != nil {
		err = classify(err, "Usuário não encontrado")
		logFailure("auth.reset", user.ID.String(), err)
		return err
	}
	log.Info().Str("user_id", user.ID.String()).Msg("password reset")
	return nil
}

func (s *authService) issue(user *model.User) (*dto.LoginResponse, error) {
	access, refresh, err := s.authn.IssuePair(user.ID, user.Username)
	if err != nil {
		return nil, newError(KindTransient, "Erro interno, tente novamente", err)
	}
	return &dto.LoginResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
		ExpiresIn:    int(s.authn.AccessTTL().Seconds()),
		User:         userToResponse(user),
	}, nil
}

func userToResponse(u *model.User) dto.UserResponse {
	return dto.UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Name:      u.Name,
		Email:     u.Email,
		LastLogin: u.LastLogin,
		CreatedAt: u.CreatedAt,
	}
}

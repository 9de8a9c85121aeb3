package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/yungbote/consciousness-backend/internal/data/repos"
	types "github.com/yungbote/consciousness-backend/internal/domain"
	"github.com/yungbote/consciousness-backend/internal/pkg/dbctx"
	"github.com/yungbote/consciousness-backend/internal/platform/apierr"
	"github.com/yungbote/consciousness-backend/internal/platform/ctxutil"
	"github.com/yungbote/consciousness-backend/internal/platform/logger"
)

const minPasswordLength = 6

type JWTClaims struct {
	jwt.RegisteredClaims
}

// Session is the token pair handed to a client after register, login or
// refresh.
type Session struct {
	User         *types.User
	AccessToken  string
	RefreshToken string
}

type AuthService interface {
	RegisterUser(ctx context.Context, email, password, fullName string) (*Session, error)
	LoginUser(ctx context.Context, email, password string) (*Session, error)
	RefreshUser(ctx context.Context, refreshToken string) (*Session, error)
	LogoutUser(ctx context.Context) error
	CurrentUser(ctx context.Context) (*types.User, error)
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
	GetAccessTTL() time.Duration
}

type authService struct {
	db            *gorm.DB
	log           *logger.Logger
	userRepo      repos.UserRepo
	userTokenRepo repos.UserTokenRepo
	jwtSecretKey  string
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

func NewAuthService(
	db *gorm.DB,
	log *logger.Logger,
	userRepo repos.UserRepo,
	userTokenRepo repos.UserTokenRepo,
	jwtSecretKey string,
	accessTTL time.Duration,
	refreshTTL time.Duration,
) AuthService {
	serviceLog := log.With("service", "AuthService")
	return &authService{
		db:            db,
		log:           serviceLog,
		userRepo:      userRepo,
		userTokenRepo: userTokenRepo,
		jwtSecretKey:  jwtSecretKey,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		now:           time.Now,
	}
}

func (as *authService) RegisterUser(ctx context.Context, email, password, fullName string) (*Session, error) {
	email = normalizeEmail(email)
	fullName = strings.TrimSpace(fullName)
	if !validEmail(email) {
		return nil, apierr.Validation("Valid email is required")
	}
	if len(password) < minPasswordLength {
		return nil, apierr.Validation(fmt.Sprintf("Password must be at least %d characters", minPasswordLength))
	}
	if fullName == "" {
		return nil, apierr.Validation("Full name is required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	var session *Session
	err = inTx(ctx, as.db, func(dbc dbctx.Context) error {
		exists, err := as.userRepo.EmailExists(dbc, email)
		if err != nil {
			return fmt.Errorf("check email: %w", err)
		}
		if exists {
			return apierr.Conflict("email_taken", "User already exists with this email")
		}
		user := &types.User{
			ID:       uuid.New(),
			Email:    email,
			Password: string(hash),
			FullName: fullName,
		}
		if _, err := as.userRepo.Create(dbc, []*types.User{user}); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apierr.Conflict("email_taken", "User already exists with this email")
			}
			return fmt.Errorf("create user: %w", err)
		}
		session, err = as.issueSession(dbc, user)
		return err
	})
	if err != nil {
		return nil, err
	}
	as.log.Info("User registered", "user_id", session.User.ID.String())
	return session, nil
}

func (as *authService) LoginUser(ctx context.Context, email, password string) (*Session, error) {
	email = normalizeEmail(email)
	if !validEmail(email) {
		return nil, apierr.Validation("Valid email is required")
	}
	if password == "" {
		return nil, apierr.Validation("Password is required")
	}

	users, err := as.userRepo.GetByEmails(dbctx.Context{Ctx: ctx}, []string{email})
	if err != nil {
		return nil, fmt.Errorf("load user by email: %w", err)
	}
	if len(users) == 0 {
		return nil, invalidCredentials()
	}
	user := users[0]
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, invalidCredentials()
	}

	var session *Session
	err = inTx(ctx, as.db, func(dbc dbctx.Context) error {
		if n, err := as.userTokenRepo.DeleteExpired(dbc, as.now()); err != nil {
			as.log.Warn("Failed to prune expired user tokens", "error", err)
		} else if n > 0 {
			as.log.Debug("Pruned expired user tokens", "count", n)
		}
		session, err = as.issueSession(dbc, user)
		return err
	})
	if err != nil {
		return nil, err
	}
	return session, nil
}

// RefreshUser rotates a refresh token. It works after the access token has
// expired; the old pair is deleted in the same transaction.
func (as *authService) RefreshUser(ctx context.Context, refreshToken string) (*Session, error) {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		if rd := ctxutil.GetRequestData(ctx); rd != nil {
			refreshToken = rd.RefreshToken
		}
	}
	if refreshToken == "" {
		return nil, apierr.Unauthorized("unauthorized", "Refresh token required")
	}

	var session *Session
	err := inTx(ctx, as.db, func(dbc dbctx.Context) error {
		found, err := as.userTokenRepo.GetByRefreshTokens(dbc, []string{refreshToken})
		if err != nil {
			return fmt.Errorf("load refresh token: %w", err)
		}
		if len(found) == 0 || found[0] == nil {
			return apierr.Unauthorized("unauthorized", "Invalid refresh token")
		}
		existing := found[0]
		if existing.ExpiresAt.Before(as.now()) {
			if err := as.userTokenRepo.FullDeleteByTokens(dbc, []*types.UserToken{existing}); err != nil {
				as.log.Warn("Refresh token expired, error deleting", "error", err)
			}
			return apierr.Unauthorized("unauthorized", "Refresh token expired")
		}
		users, err := as.userRepo.GetByIDs(dbc, []uuid.UUID{existing.UserID})
		if err != nil {
			return fmt.Errorf("load user for refresh: %w", err)
		}
		if len(users) == 0 {
			return apierr.Unauthorized("unauthorized", "User not found")
		}
		session, err = as.issueSession(dbc, users[0])
		if err != nil {
			return err
		}
		if err := as.userTokenRepo.FullDeleteByTokens(dbc, []*types.UserToken{existing}); err != nil {
			return fmt.Errorf("remove old refresh token: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return session, nil
}

func (as *authService) LogoutUser(ctx context.Context) error {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.TokenString == "" {
		return apierr.Unauthorized("unauthorized", "Not authenticated")
	}
	return inTx(ctx, as.db, func(dbc dbctx.Context) error {
		found, err := as.userTokenRepo.GetByAccessTokens(dbc, []string{rd.TokenString})
		if err != nil {
			return fmt.Errorf("load user token: %w", err)
		}
		if len(found) == 0 {
			return nil
		}
		if err := as.userTokenRepo.FullDeleteByTokens(dbc, found); err != nil {
			return fmt.Errorf("delete user token: %w", err)
		}
		return nil
	})
}

func (as *authService) CurrentUser(ctx context.Context) (*types.User, error) {
	userID := ctxutil.UserID(ctx)
	if userID == uuid.Nil {
		return nil, apierr.Unauthorized("unauthorized", "Not authenticated")
	}
	users, err := as.userRepo.GetByIDs(dbctx.Context{Ctx: ctx}, []uuid.UUID{userID})
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if len(users) == 0 {
		return nil, apierr.Unauthorized("unauthorized", "User not found")
	}
	return users[0], nil
}

// SetContextFromToken validates the JWT and that its session still exists,
// then attaches the request data to ctx.
func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	if tokenString == "" {
		return ctx, apierr.Unauthorized("unauthorized", "Missing bearer token")
	}
	parsed, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(as.jwtSecretKey), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(as.now))
	if err != nil {
		return ctx, apierr.New(http.StatusUnauthorized, "unauthorized", fmt.Errorf("invalid token: %w", err))
	}
	claims, ok := parsed.Claims.(*JWTClaims)
	if !ok || !parsed.Valid {
		return ctx, apierr.Unauthorized("unauthorized", "Invalid or expired token")
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return ctx, apierr.Unauthorized("unauthorized", "Invalid user id in token")
	}

	found, err := as.userTokenRepo.GetByAccessTokens(dbctx.Context{Ctx: ctx}, []string{tokenString})
	if err != nil {
		as.log.Warn("Error fetching user token by access token", "error", err)
		return ctx, fmt.Errorf("load user token: %w", err)
	}
	if len(found) == 0 {
		return ctx, apierr.Unauthorized("unauthorized", "Session has ended")
	}

	rd := &ctxutil.RequestData{
		TokenString:  tokenString,
		RefreshToken: found[0].RefreshToken,
		UserID:       userID,
	}
	return ctxutil.WithRequestData(ctx, rd), nil
}

func (as *authService) GetAccessTTL() time.Duration {
	return as.accessTTL
}

func (as *authService) issueSession(dbc dbctx.Context, user *types.User) (*Session, error) {
	access, err := as.generateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}
	token := &types.UserToken{
		ID:           uuid.New(),
		UserID:       user.ID,
		AccessToken:  access,
		RefreshToken: uuid.New().String(),
		ExpiresAt:    as.now().Add(as.refreshTTL),
	}
	if _, err := as.userTokenRepo.Create(dbc, []*types.UserToken{token}); err != nil {
		as.log.Warn("Create User Token Error", "error", err)
		return nil, fmt.Errorf("create user token: %w", err)
	}
	return &Session{User: user, AccessToken: access, RefreshToken: token.RefreshToken}, nil
}

func (as *authService) generateAccessToken(user *types.User) (string, error) {
	now := as.now()
	claims := JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.ID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(as.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(as.jwtSecretKey))
}

func invalidCredentials() error {
	return apierr.Unauthorized("invalid_credentials", "Invalid email or password")
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validEmail(email string) bool {
	if email == "" {
		return false
	}
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

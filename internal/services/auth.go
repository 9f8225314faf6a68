package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/bibliomemory/bibliomemory-backend/internal/data/repos"
	types "github.com/bibliomemory/bibliomemory-backend/internal/domain"
	"github.com/bibliomemory/bibliomemory-backend/internal/normalization"
	"github.com/bibliomemory/bibliomemory-backend/internal/pkg/ctxutil"
	"github.com/bibliomemory/bibliomemory-backend/internal/platform/apierr"
	"github.com/bibliomemory/bibliomemory-backend/internal/platform/logger"
	"github.com/bibliomemory/bibliomemory-backend/internal/platform/sessions"
)

type RegisterInput struct {
	Email         string
	Password      string
	FirstName     string
	LastName      string
	InstitutionID uuid.UUID
	Matricule     string
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*types.User, error)
	Login(ctx context.Context, email, password string) (*TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
	ChangePassword(ctx context.Context, currentPassword, newPassword string) error
	ParseAccessToken(tokenString string) (*ctxutil.Actor, error)
}

type authService struct {
	db              *gorm.DB
	log             *logger.Logger
	userRepo        repos.UserRepo
	studentRepo     repos.StudentRepo
	institutionRepo repos.InstitutionRepo
	sessionStore    sessions.Store
	jwtSecretKey    []byte
	accessTTL       time.Duration
	refreshTTL      time.Duration
}

func NewAuthService(
	db *gorm.DB,
	log *logger.Logger,
	userRepo repos.UserRepo,
	studentRepo repos.StudentRepo,
	institutionRepo repos.InstitutionRepo,
	sessionStore sessions.Store,
	jwtSecretKey string,
	accessTTL time.Duration,
	refreshTTL time.Duration,
) AuthService {
	serviceLog := log.With("service", "AuthService")
	return &authService{
		db:              db,
		log:             serviceLog,
		userRepo:        userRepo,
		studentRepo:     studentRepo,
		institutionRepo: institutionRepo,
		sessionStore:    sessionStore,
		jwtSecretKey:    []byte(jwtSecretKey),
		accessTTL:       accessTTL,
		refreshTTL:      refreshTTL,
	}
}

// Register creates a STUDENT account plus its student profile. Other roles
// are provisioned out of band, never through the public endpoint.
func (as *authService) Register(ctx context.Context, in RegisterInput) (*types.User, error) {
	email := normalization.Fold(in.Email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, apierr.InvalidInput("a valid email is required")
	}
	if len(in.Password) < 8 {
		return nil, apierr.InvalidInput("password must be at least 8 characters")
	}
	if strings.TrimSpace(in.FirstName) == "" || strings.TrimSpace(in.LastName) == "" {
		return nil, apierr.InvalidInput("first and last name are required")
	}
	if in.InstitutionID == uuid.Nil {
		return nil, apierr.InvalidInput("institution is required")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apierr.Unavailable(err)
	}

	user := &types.User{
		ID:            uuid.New(),
		Email:         email,
		Password:      string(hashed),
		FirstName:     strings.TrimSpace(in.FirstName),
		LastName:      strings.TrimSpace(in.LastName),
		Role:          types.RoleStudent,
		InstitutionID: &in.InstitutionID,
	}

	txErr := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		exists, err := as.userRepo.EmailExists(ctx, tx, email)
		if err != nil {
			return apierr.Unavailable(err)
		}
		if exists {
			return apierr.Conflict("an account with this email already exists")
		}

		institutions, err := as.institutionRepo.GetByIDs(ctx, tx, []uuid.UUID{in.InstitutionID})
		if err != nil {
			return apierr.Unavailable(err)
		}
		if len(institutions) == 0 {
			return apierr.NotFound("institution %s not found", in.InstitutionID)
		}

		if _, err := as.userRepo.Create(ctx, tx, []*types.User{user}); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apierr.Conflict("an account with this email already exists")
			}
			return apierr.Unavailable(err)
		}

		if _, err := as.studentRepo.Create(ctx, tx, []*types.Student{{
			ID:        uuid.New(),
			UserID:    user.ID,
			Matricule: strings.TrimSpace(in.Matricule),
		}}); err != nil {
			return apierr.Unavailable(err)
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	as.log.Info("student registered", "user_id", user.ID)
	return user, nil
}

func (as *authService) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	email = normalization.Fold(email)

	users, err := as.userRepo.GetByEmails(ctx, nil, []string{email})
	if err != nil {
		return nil, apierr.Unavailable(err)
	}
	if len(users) == 0 {
		return nil, apierr.Unauthorized("invalid credentials")
	}
	user := users[0]

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, apierr.Unauthorized("invalid credentials")
	}

	return as.issueTokens(ctx, user.ID, user.Role, user.InstitutionID)
}

// ChangePassword re-verifies the current password before swapping in the
// new hash. Existing refresh sessions stay valid.
func (as *authService) ChangePassword(ctx context.Context, currentPassword, newPassword string) error {
	actor := ctxutil.GetActor(ctx)
	if actor == nil {
		return apierr.Unauthorized("authentication required")
	}
	if len(newPassword) < 8 {
		return apierr.InvalidInput("password must be at least 8 characters")
	}

	users, err := as.userRepo.GetByIDs(ctx, nil, []uuid.UUID{actor.UserID})
	if err != nil {
		return apierr.Unavailable(err)
	}
	if len(users) == 0 {
		return apierr.NotFound("user %s not found", actor.UserID)
	}
	user := users[0]

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(currentPassword)); err != nil {
		return apierr.Unauthorized("invalid credentials")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return apierr.Unavailable(err)
	}
	if err := as.userRepo.UpdatePassword(ctx, nil, user.ID, string(hashed)); err != nil {
		return apierr.Unavailable(err)
	}
	return nil
}

// Refresh rotates the session: the presented token is revoked and a fresh
// pair is issued, so a replayed refresh token fails.
func (as *authService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	hash := hashToken(refreshToken)

	data, err := as.sessionStore.Lookup(ctx, hash)
	if err != nil {
		if errors.Is(err, sessions.ErrNotFound) {
			return nil, apierr.Unauthorized("invalid refresh token")
		}
		return nil, apierr.Unavailable(err)
	}

	if err := as.sessionStore.Revoke(ctx, hash); err != nil {
		return nil, apierr.Unavailable(err)
	}

	return as.issueTokens(ctx, data.UserID, data.Role, data.InstitutionID)
}

func (as *authService) Logout(ctx context.Context, refreshToken string) error {
	if strings.TrimSpace(refreshToken) == "" {
		return nil
	}
	if err := as.sessionStore.Revoke(ctx, hashToken(refreshToken)); err != nil {
		return apierr.Unavailable(err)
	}
	return nil
}

type accessClaims struct {
	Role          string `json:"role"`
	InstitutionID string `json:"institution_id,omitempty"`
	jwt.RegisteredClaims
}

func (as *authService) issueTokens(ctx context.Context, userID uuid.UUID, role types.Role, institutionID *uuid.UUID) (*TokenPair, error) {
	now := time.Now().UTC()

	claims := accessClaims{
		Role: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(as.accessTTL)),
		},
	}
	if institutionID != nil {
		claims.InstitutionID = institutionID.String()
	}

	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(as.jwtSecretKey)
	if err != nil {
		return nil, apierr.Unavailable(err)
	}

	refreshToken, err := randomToken()
	if err != nil {
		return nil, apierr.Unavailable(err)
	}

	if err := as.sessionStore.Save(ctx, hashToken(refreshToken), sessions.SessionData{
		UserID:        userID,
		Role:          role,
		InstitutionID: institutionID,
	}, now.Add(as.refreshTTL)); err != nil {
		return nil, apierr.Unavailable(err)
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(as.accessTTL.Seconds()),
	}, nil
}

func (as *authService) ParseAccessToken(tokenString string) (*ctxutil.Actor, error) {
	var claims accessClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return as.jwtSecretKey, nil
	})
	if err != nil || !token.Valid {
		return nil, apierr.Unauthorized("invalid access token")
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, apierr.Unauthorized("invalid access token subject")
	}
	role := types.Role(claims.Role)
	if !role.Valid() {
		return nil, apierr.Unauthorized("invalid access token role")
	}

	actor := &ctxutil.Actor{UserID: userID, Role: role}
	if claims.InstitutionID != "" {
		instID, err := uuid.Parse(claims.InstitutionID)
		if err != nil {
			return nil, apierr.Unauthorized("invalid access token institution")
		}
		actor.InstitutionID = &instID
	}
	return actor, nil
}

func randomToken() (string, error) {
	var raw [32]byte
	if _, err := rand.Read(raw[:]); err != nil {
		return "", err
	}
	return hex.EncodeToString(raw[:]), nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

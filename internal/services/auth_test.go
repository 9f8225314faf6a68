package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/bibliomemory/bibliomemory-backend/internal/data/repos"
	"github.com/bibliomemory/bibliomemory-backend/internal/data/repos/testutil"
	types "github.com/bibliomemory/bibliomemory-backend/internal/domain"
	"github.com/bibliomemory/bibliomemory-backend/internal/pkg/ctxutil"
	"github.com/bibliomemory/bibliomemory-backend/internal/platform/apierr"
)

func newAuthForTest(t *testing.T, tx *gorm.DB) (AuthService, repos.UserRepo) {
	t.Helper()
	log := testutil.Logger(t)
	userRepo := repos.NewUserRepo(tx, log)
	return NewAuthService(
		tx,
		log,
		userRepo,
		repos.NewStudentRepo(tx, log),
		repos.NewInstitutionRepo(tx, log),
		nil,
		"test-secret",
		15*time.Minute,
		24*time.Hour,
	), userRepo
}

func TestChangePassword(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()

	svc, userRepo := newAuthForTest(t, tx)
	user := testutil.SeedUser(t, ctx, tx, "pwchange@example.com", types.RoleStudent, nil)

	hash, err := bcrypt.GenerateFromPassword([]byte("oldsecret1"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	if err := userRepo.UpdatePassword(ctx, nil, user.ID, string(hash)); err != nil {
		t.Fatalf("UpdatePassword: %v", err)
	}

	actorCtx := ctxutil.WithActor(context.Background(), &ctxutil.Actor{UserID: user.ID, Role: types.RoleStudent})

	if err := svc.ChangePassword(context.Background(), "oldsecret1", "newsecret1"); apierr.CodeOf(err) != apierr.CodeUnauthorized {
		t.Fatalf("no actor: err=%v, want UNAUTHORIZED", err)
	}
	if err := svc.ChangePassword(actorCtx, "wrongsecret", "newsecret1"); apierr.CodeOf(err) != apierr.CodeUnauthorized {
		t.Fatalf("wrong current password: err=%v, want UNAUTHORIZED", err)
	}
	if err := svc.ChangePassword(actorCtx, "oldsecret1", "short"); apierr.CodeOf(err) != apierr.CodeInvalidInput {
		t.Fatalf("short new password: err=%v, want INVALID_INPUT", err)
	}

	if err := svc.ChangePassword(actorCtx, "oldsecret1", "newsecret1"); err != nil {
		t.Fatalf("ChangePassword: %v", err)
	}

	users, err := userRepo.GetByIDs(ctx, nil, []uuid.UUID{user.ID})
	if err != nil || len(users) == 0 {
		t.Fatalf("reload user: %v", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(users[0].Password), []byte("newsecret1")); err != nil {
		t.Fatalf("stored hash does not match the new password: %v", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(users[0].Password), []byte("oldsecret1")); err == nil {
		t.Fatalf("old password still accepted after change")
	}
}

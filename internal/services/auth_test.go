package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/dhruvmojila/memory-api/internal/repos"
	"github.com/dhruvmojila/memory-api/internal/types"
)

func newAuthFixture(t *testing.T) AuthService {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open("file::memory:?cache=shared&mode=memory"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := gdb.AutoMigrate(&types.User{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	log := testLogger(t)
	return NewAuthService(gdb, log, repos.NewUserRepo(gdb, log), "test-secret", time.Hour)
}

func TestRegisterAndLogin(t *testing.T) {
	as := newAuthFixture(t)
	ctx := context.Background()

	user, err := as.Register(ctx, "Alice@Example.com", "s3cret", "Alice")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Email != "alice@example.com" {
		t.Fatalf("email not normalized: %q", user.Email)
	}
	if user.Password == "s3cret" {
		t.Fatal("password stored in plaintext")
	}

	token, err := as.Login(ctx, "alice@example.com", "s3cret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	userID, err := as.ParseToken(token)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if userID != user.ID {
		t.Fatalf("token subject=%s, want %s", userID, user.ID)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	as := newAuthFixture(t)
	ctx := context.Background()

	if _, err := as.Register(ctx, "bob@example.com", "pw", "Bob"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := as.Register(ctx, "bob@example.com", "pw2", "Bobby"); err == nil {
		t.Fatal("expected duplicate email to fail")
	}
}

func TestLoginWrongPassword(t *testing.T) {
	as := newAuthFixture(t)
	ctx := context.Background()

	if _, err := as.Register(ctx, "carol@example.com", "right", "Carol"); err != nil {
		t.Fatalf("register: %v", err)
	}
	_, err := as.Login(ctx, "carol@example.com", "wrong")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("err=%v, want ErrInvalidCredentials", err)
	}
}

func TestLoginUnknownUser(t *testing.T) {
	as := newAuthFixture(t)
	_, err := as.Login(context.Background(), "nobody@example.com", "pw")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("err=%v, want ErrInvalidCredentials", err)
	}
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	as := newAuthFixture(t)
	if _, err := as.ParseToken("not-a-jwt"); err == nil {
		t.Fatal("expected parse failure")
	}
}

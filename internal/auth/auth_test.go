package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/goer-app/goer/backend/internal/models"
)

func TestIssueAndVerify(t *testing.T) {
	issuer, err := NewIssuer("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("new issuer: %v", err)
	}
	account := &models.Account{ID: primitive.NewObjectID(), Role: models.RoleBusiness}

	first, err := issuer.Issue(account)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	second, _ := issuer.Issue(account)
	if first == second {
		t.Error("tokens issued for the same account must differ")
	}

	claims, err := issuer.Verify(first)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.AccountID != account.ID.Hex() || claims.Role != models.RoleBusiness {
		t.Errorf("unexpected claims %+v", claims)
	}
}

func TestVerifyRejects(t *testing.T) {
	issuer, _ := NewIssuer("test-secret", time.Hour)
	other, _ := NewIssuer("other-secret", time.Hour)
	expired, _ := NewIssuer("test-secret", -time.Minute)
	account := &models.Account{ID: primitive.NewObjectID(), Role: models.RoleUser}

	foreign, _ := other.Issue(account)
	stale, _ := expired.Issue(account)
	none, _ := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{AccountID: account.ID.Hex()}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)

	for name, token := range map[string]string{"foreign": foreign, "expired": stale, "none": none, "garbage": "abc"} {
		if _, err := issuer.Verify(token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("%s: expected ErrInvalidToken, got %v", name, err)
		}
	}
}

func TestNewIssuerRequiresSecret(t *testing.T) {
	if _, err := NewIssuer("", time.Hour); err == nil {
		t.Error("expected an error for an empty secret")
	}
}

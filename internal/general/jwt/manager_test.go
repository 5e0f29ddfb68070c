package jwt

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"ride-share/internal/domain/user"
)

func TestIssueAndValidate(t *testing.T) {
	mgr := NewManager("test-secret", time.Hour)

	signed, issued, err := mgr.IssueUserToken("user-42", user.RoleDriver)
	if err != nil {
		t.Fatal(err)
	}
	if issued.Subject != "user-42" {
		t.Errorf("issued subject = %q, want user-42", issued.Subject)
	}

	_, claims, err := mgr.ParseAndValidate(signed)
	if err != nil {
		t.Fatal(err)
	}
	if claims.Subject != "user-42" || claims.Role != user.RoleDriver {
		t.Errorf("claims = subject %q role %q, want user-42/driver", claims.Subject, claims.Role)
	}

	if _, _, err := mgr.IssueUserToken("user-42", user.Role("pilot")); err == nil {
		t.Error("expected an error for an unknown role")
	}
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	signed, _, err := NewManager("secret-a", time.Hour).IssueUserToken("user-1", user.RolePassenger)
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := NewManager("secret-b", time.Hour).ParseAndValidate(signed); err == nil {
		t.Fatal("token signed with a different secret must not validate")
	}
}

func TestValidateRejectsExpiredToken(t *testing.T) {
	mgr := NewManager("test-secret", -time.Minute)
	signed, _, err := mgr.IssueUserToken("user-1", user.RolePassenger)
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := mgr.ParseAndValidate(signed); err == nil {
		t.Fatal("expired token must not validate")
	}
}

func TestRoleAllowed(t *testing.T) {
	claims := &Claims{Role: user.RolePassenger}

	if err := RoleAllowed(claims, user.RolePassenger, user.RoleDriver); err != nil {
		t.Errorf("passenger should pass a passenger+driver gate: %v", err)
	}
	if err := RoleAllowed(claims, user.RoleDriver); !errors.Is(err, ErrRoleForbidden) {
		t.Errorf("passenger at a driver-only gate: err = %v, want ErrRoleForbidden", err)
	}
}

func TestValidateWSAuth(t *testing.T) {
	mgr := NewManager("test-secret", time.Hour)
	signed, _, err := mgr.IssueUserToken("user-7", user.RolePassenger)
	if err != nil {
		t.Fatal(err)
	}

	frame, _ := json.Marshal(ClientAuthMessage{Type: "auth", Token: "Bearer " + signed})
	res, err := ValidateWSAuth(frame, mgr, user.RolePassenger, user.RoleDriver)
	if err != nil {
		t.Fatal(err)
	}
	if res.Claims.Subject != "user-7" {
		t.Errorf("subject = %q, want user-7", res.Claims.Subject)
	}

	tests := []struct {
		name  string
		frame []byte
		want  error
	}{
		{"not json", []byte("hello"), ErrBadAuthMsg},
		{"wrong type", mustFrame(t, "join", "Bearer "+signed), ErrBadAuthMsg},
		{"missing bearer wrap", mustFrame(t, "auth", signed), ErrBadTokenWrap},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ValidateWSAuth(tt.frame, mgr, user.RolePassenger); !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}

	// wrong role fails even with a valid token
	if _, err := ValidateWSAuth(frame, mgr, user.RoleDriver); !errors.Is(err, ErrRoleForbidden) {
		t.Errorf("role gate error = %v, want ErrRoleForbidden", err)
	}
}

func mustFrame(t *testing.T, typ, token string) []byte {
	t.Helper()
	b, err := json.Marshal(ClientAuthMessage{Type: typ, Token: token})
	if err != nil {
		t.Fatal(err)
	}
	return b
}

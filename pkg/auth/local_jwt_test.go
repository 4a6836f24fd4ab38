package auth

import (
	"testing"
	"time"
)

func TestExtractToken(t *testing.T) {
	tests := []struct {
		name      string
		header    string
		expected  string
		expectErr bool
	}{
		{"bearer token", "Bearer abc123", "abc123", false},
		{"lowercase bearer", "bearer abc123", "abc123", false},
		{"empty header", "", "", true},
		{"missing scheme", "abc123", "", true},
		{"wrong scheme", "Basic abc123", "", true},
		{"empty token", "Bearer   ", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := ExtractToken(tt.header)
			if tt.expectErr {
				if err == nil {
					t.Error("Expected error, got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if token != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, token)
			}
		})
	}
}

func TestNewLocalJWTAuth_RequiresSecret(t *testing.T) {
	if _, err := NewLocalJWTAuth("", 0, 0); err == nil {
		t.Error("Expected error for empty secret")
	}
}

func TestGenerateAndVerifyTokens(t *testing.T) {
	jwtAuth, err := NewLocalJWTAuth("test-secret", 15*time.Minute, 7*24*time.Hour)
	if err != nil {
		t.Fatalf("Failed to create auth: %v", err)
	}

	accessToken, refreshToken, err := jwtAuth.GenerateTokens("user-123", "student@example.edu")
	if err != nil {
		t.Fatalf("Failed to generate tokens: %v", err)
	}

	user, err := jwtAuth.VerifyAccessToken(accessToken)
	if err != nil {
		t.Fatalf("Failed to verify access token: %v", err)
	}
	if user.ID != "user-123" || user.Email != "student@example.edu" {
		t.Errorf("Unexpected user from access token: %+v", user)
	}

	claims, err := jwtAuth.VerifyRefreshToken(refreshToken)
	if err != nil {
		t.Fatalf("Failed to verify refresh token: %v", err)
	}
	if claims.UserID != "user-123" {
		t.Errorf("Unexpected user ID in refresh claims: %q", claims.UserID)
	}
	if claims.TokenID == "" {
		t.Error("Expected refresh token to carry a token ID")
	}
}

func TestVerifyRefreshToken_RejectsAccessToken(t *testing.T) {
	jwtAuth, _ := NewLocalJWTAuth("test-secret", 15*time.Minute, 7*24*time.Hour)

	accessToken, _, err := jwtAuth.GenerateTokens("user-123", "student@example.edu")
	if err != nil {
		t.Fatalf("Failed to generate tokens: %v", err)
	}

	if _, err := jwtAuth.VerifyRefreshToken(accessToken); err == nil {
		t.Error("Expected access token to be rejected as a refresh token")
	}
}

func TestVerifyAccessToken_RejectsWrongSecret(t *testing.T) {
	signer, _ := NewLocalJWTAuth("secret-a", 15*time.Minute, 7*24*time.Hour)
	verifier, _ := NewLocalJWTAuth("secret-b", 15*time.Minute, 7*24*time.Hour)

	accessToken, _, err := signer.GenerateTokens("user-123", "student@example.edu")
	if err != nil {
		t.Fatalf("Failed to generate tokens: %v", err)
	}

	if _, err := verifier.VerifyAccessToken(accessToken); err == nil {
		t.Error("Expected verification to fail with a different secret")
	}
}

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}

	ok, err := VerifyPassword(hash, "correct horse battery staple")
	if err != nil {
		t.Fatalf("Failed to verify password: %v", err)
	}
	if !ok {
		t.Error("Expected correct password to verify")
	}

	ok, err = VerifyPassword(hash, "wrong password")
	if err != nil {
		t.Fatalf("Failed to verify password: %v", err)
	}
	if ok {
		t.Error("Expected wrong password to fail verification")
	}
}

func TestHashPassword_SaltsDiffer(t *testing.T) {
	first, _ := HashPassword("same password")
	second, _ := HashPassword("same password")
	if first == second {
		t.Error("Expected different salts to produce different hashes")
	}
}

func TestVerifyPassword_InvalidFormat(t *testing.T) {
	if _, err := VerifyPassword("not-a-hash", "password"); err == nil {
		t.Error("Expected error for malformed hash")
	}
}

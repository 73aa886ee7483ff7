package authctx

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reminder-engine/internal/domain/interfaces"
)

func TestJWTVerifier_VerifyToken(t *testing.T) {
	v := NewJWTVerifier("test-secret")

	tests := []struct {
		name          string
		tokenFunc     func() string
		expectErr     bool
		expectUserID  uint64
		expectTZ      string
		expectLocale  string
	}{
		{
			name: "valid token",
			tokenFunc: func() string {
				tok, err := v.Sign(interfaces.Identity{UserID: 42, TZ: "America/Argentina/Buenos_Aires", Locale: "es"}, time.Hour)
				require.NoError(t, err)
				return tok
			},
			expectErr:    false,
			expectUserID: 42,
			expectTZ:     "America/Argentina/Buenos_Aires",
			expectLocale: "es",
		},
		{
			name: "missing tz and locale default",
			tokenFunc: func() string {
				claims := jwt.MapClaims{
					"user_id": float64(7),
					"iat":     time.Now().Unix(),
					"exp":     time.Now().Add(time.Hour).Unix(),
				}
				tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
				signed, err := tok.SignedString([]byte("test-secret"))
				require.NoError(t, err)
				return signed
			},
			expectErr:    false,
			expectUserID: 7,
			expectTZ:     "UTC",
			expectLocale: "en",
		},
		{
			name: "expired token",
			tokenFunc: func() string {
				tok, err := v.Sign(interfaces.Identity{UserID: 1, TZ: "UTC", Locale: "en"}, -time.Hour)
				require.NoError(t, err)
				return tok
			},
			expectErr: true,
		},
		{
			name: "wrong secret",
			tokenFunc: func() string {
				other := NewJWTVerifier("other-secret")
				tok, err := other.Sign(interfaces.Identity{UserID: 1, TZ: "UTC", Locale: "en"}, time.Hour)
				require.NoError(t, err)
				return tok
			},
			expectErr: true,
		},
		{
			name: "missing user_id claim",
			tokenFunc: func() string {
				claims := jwt.MapClaims{"iat": time.Now().Unix(), "exp": time.Now().Add(time.Hour).Unix()}
				tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
				signed, err := tok.SignedString([]byte("test-secret"))
				require.NoError(t, err)
				return signed
			},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			identity, err := v.VerifyToken(context.Background(), tt.tokenFunc())
			if tt.expectErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expectUserID, identity.UserID)
			assert.Equal(t, tt.expectTZ, identity.TZ)
			assert.Equal(t, tt.expectLocale, identity.Locale)
		})
	}
}

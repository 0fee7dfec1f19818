package tokens

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-jwt-secret")

func TestSign_NoTTL_HasNoExpiry(t *testing.T) {
	t.Parallel()

	token, err := Sign(testSecret, 42, "admin", 0)
	require.NoError(t, err)

	claims, err := Parse(testSecret, token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "admin", claims.Role)
	assert.Nil(t, claims.ExpiresAt)
	require.NotNil(t, claims.IssuedAt)
}

func TestSign_WithTTL_SetsExpiry(t *testing.T) {
	t.Parallel()

	token, err := Sign(testSecret, 7, "customer", time.Hour)
	require.NoError(t, err)

	claims, err := Parse(testSecret, token)
	require.NoError(t, err)
	require.NotNil(t, claims.ExpiresAt)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, 5*time.Second)
}

func TestParse_Rejects(t *testing.T) {
	t.Parallel()

	valid, err := Sign(testSecret, 1, "customer", 0)
	require.NoError(t, err)

	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID: 1,
		Role:   "customer",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}).SignedString(testSecret)
	require.NoError(t, err)

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{UserID: 1, Role: "customer"}).SignedString(testSecret)
	require.NoError(t, err)

	noRole, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{UserID: 1}).SignedString(testSecret)
	require.NoError(t, err)

	tests := []struct {
		name   string
		token  string
		secret []byte
	}{
		{name: "garbage", token: "not-a-valid-jwt", secret: testSecret},
		{name: "wrong secret", token: valid, secret: []byte("other-secret")},
		{name: "tampered payload", token: tamper(valid), secret: testSecret},
		{name: "expired", token: expired, secret: testSecret},
		{name: "other algorithm", token: hs512, secret: testSecret},
		{name: "missing role", token: noRole, secret: testSecret},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			claims, err := Parse(tt.secret, tt.token)
			require.Error(t, err)
			assert.Nil(t, claims)
		})
	}
}

// tamper flips one character of the payload segment.
func tamper(token string) string {
	b := []byte(token)
	for i := range b {
		if b[i] == '.' {
			j := i + 2
			if b[j] == 'A' {
				b[j] = 'B'
			} else {
				b[j] = 'A'
			}
			break
		}
	}
	return string(b)
}

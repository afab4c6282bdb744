package utils

import (
	"testing"
	"wellness_shop/internal/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParseToken(t *testing.T) {
	config.GlobalConfig.JWT.Secret = "test-secret-test-secret-test-secret"
	config.GlobalConfig.JWT.Expire = 1

	token, expireAt, err := GenerateToken("user-1", "admin", "session-1")
	require.NoError(t, err)
	require.NotNil(t, expireAt)

	claims, err := ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, "session-1", claims.ID)
}

func TestParseTokenWrongSecret(t *testing.T) {
	config.GlobalConfig.JWT.Secret = "test-secret-test-secret-test-secret"
	token, _, err := GenerateToken("user-1", "user", "session-1")
	require.NoError(t, err)

	config.GlobalConfig.JWT.Secret = "another-secret-another-secret-xxxx"
	_, err = ParseToken(token)
	assert.Error(t, err)
}

func TestPaginationOffset(t *testing.T) {
	p := Pagination{Page: 0, Limit: 500}
	offset, limit := p.GetPageOffset()
	assert.Equal(t, 0, offset)
	assert.Equal(t, 100, limit)

	p = Pagination{Page: 3, Limit: 20}
	offset, limit = p.GetPageOffset()
	assert.Equal(t, 40, offset)
	assert.Equal(t, 20, limit)
}

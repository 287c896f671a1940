package middleware

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateURL(t *testing.T) {
	assert.NoError(t, ValidateURL("https://apexplumbing.example.com"))
	assert.NoError(t, ValidateURL("http://example.com/about"))

	assert.Error(t, ValidateURL(""))
	assert.Error(t, ValidateURL("ftp://example.com"))
	assert.Error(t, ValidateURL("http://localhost:8080"))
	assert.Error(t, ValidateURL("http://127.0.0.1/admin"))
	assert.Error(t, ValidateURL("http://192.168.1.10"))
	assert.Error(t, ValidateURL("http://10.0.0.5"))
}

func TestValidateCategory(t *testing.T) {
	assert.NoError(t, ValidateCategory("Business License"))
	assert.NoError(t, ValidateCategory("Tools & Equipment (1/2)"))

	assert.Error(t, ValidateCategory(""))
	assert.Error(t, ValidateCategory("Tax Return"))
	assert.Error(t, ValidateCategory("business license"))
}

func TestValidateSessionID(t *testing.T) {
	assert.NoError(t, ValidateSessionID("sess-1"))
	assert.NoError(t, ValidateSessionID("a1B2_c3-d4"))

	assert.Error(t, ValidateSessionID(""))
	assert.Error(t, ValidateSessionID("has spaces"))
	assert.Error(t, ValidateSessionID("dot.dot"))
	long := make([]byte, 65)
	for i := range long {
		long[i] = 'a'
	}
	assert.Error(t, ValidateSessionID(string(long)))
}

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "hello", SanitizeString("  hello  "))
	assert.Equal(t, "hello", SanitizeString("he\x00llo"))
	assert.Equal(t, "ab", SanitizeString("a\x1bb"))
}

func TestValidateLimit(t *testing.T) {
	assert.Equal(t, 20, ValidateLimit(0))
	assert.Equal(t, 20, ValidateLimit(-5))
	assert.Equal(t, 50, ValidateLimit(50))
	assert.Equal(t, 100, ValidateLimit(500))
}

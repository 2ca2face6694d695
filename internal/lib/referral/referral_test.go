package referral

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCode_Stable(t *testing.T) {
	first := Code("miner@example.com")
	second := Code("miner@example.com")
	assert.Equal(t, first, second)
}

func TestCode_NormalizesEmail(t *testing.T) {
	assert.Equal(t, Code("miner@example.com"), Code("  Miner@Example.COM  "))
}

func TestCode_Format(t *testing.T) {
	code := Code("miner@example.com")
	assert.True(t, strings.HasPrefix(code, "REF"))
	assert.Len(t, code, 11)
}

func TestCode_DifferentEmails(t *testing.T) {
	assert.NotEqual(t, Code("alice@example.com"), Code("bob@example.com"))
}

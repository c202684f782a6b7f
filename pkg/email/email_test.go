package email

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, "Maria.Silva@prefeitura.gov.br", Normalize("  Maria.Silva@Prefeitura.GOV.br "))
	assert.Equal(t, "no-at-sign", Normalize("no-at-sign"))
}

func TestIsValid(t *testing.T) {
	assert.True(t, IsValid("cidadao@example.org"))
	assert.False(t, IsValid(""))
	assert.False(t, IsValid("not-an-email"))
	assert.False(t, IsValid("Name <cidadao@example.org>"))
}

func TestMask(t *testing.T) {
	assert.Equal(t, "m***@x.org", Mask("maria@x.org"))
	assert.Equal(t, "***", Mask("invalid"))
}

package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGravatar(t *testing.T) {
	// md5("test@example.com")
	want := "//www.gravatar.com/avatar/55502f40dc8b7c769880b10874abc9d0?s=200&r=pg&d=mm"

	assert.Equal(t, want, Gravatar("test@example.com"))
	assert.Equal(t, want, Gravatar("  Test@Example.com "))
}

package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewUserNormalizesEmail(t *testing.T) {
	u := NewUser("  Ada@Example.COM ", "hash", "Ada", time.Now())
	assert.Equal(t, "ada@example.com", u.Email)
}

func TestProfilePatchApply(t *testing.T) {
	u := &User{Name: "Ada", Bio: "math", Email: "ada@example.com"}
	name := "  Grace "
	empty := ""
	ProfilePatch{Name: &name, Bio: &empty}.Apply(u)

	assert.Equal(t, "Grace", u.Name)
	assert.Empty(t, u.Bio)
	assert.Equal(t, "ada@example.com", u.Email)
}

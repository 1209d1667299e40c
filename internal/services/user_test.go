package services

import (
	"context"
	"errors"
	"testing"

	"eventhub/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePasswordHasher implements domain.PasswordHasher for tests.
type fakePasswordHasher struct {
	err error
}

func (f *fakePasswordHasher) Hash(password string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "hash-" + password, nil
}

func (f *fakePasswordHasher) Compare(hash, password string) error {
	if hash != "hash-"+password {
		return errors.New("mismatch")
	}
	return nil
}

// fakeTokenIssuer implements domain.TokenIssuer for tests.
type fakeTokenIssuer struct {
	err error
}

func (f *fakeTokenIssuer) Issue(userID, email string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "token-" + userID, nil
}

func newUserFixture() (*fakeStore, *fakeTokenIssuer, domain.UserService) {
	store := newFakeStore()
	issuer := &fakeTokenIssuer{}
	return store, issuer, NewUserService(fakeUserRepo{store}, &fakePasswordHasher{}, issuer)
}

func TestUserService_SignUp(t *testing.T) {
	ctx := context.Background()

	t.Run("success normalizes email", func(t *testing.T) {
		_, _, svc := newUserFixture()
		u, err := svc.SignUp(ctx, "  Ada@Example.COM ", "secret1", " Ada ")
		require.NoError(t, err)
		assert.NotEmpty(t, u.ID)
		assert.Equal(t, "ada@example.com", u.Email)
		assert.Equal(t, "Ada", u.Name)
		assert.Equal(t, "hash-secret1", u.PasswordHash)
	})

	tests := []struct {
		name, email, password, userName string
	}{
		{"bad email", "not-an-email", "secret1", "Ada"},
		{"short password", "ada@example.com", "12345", "Ada"},
		{"missing name", "ada@example.com", "secret1", "  "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, svc := newUserFixture()
			_, err := svc.SignUp(ctx, tt.email, tt.password, tt.userName)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}

	t.Run("duplicate email", func(t *testing.T) {
		_, _, svc := newUserFixture()
		_, err := svc.SignUp(ctx, "ada@example.com", "secret1", "Ada")
		require.NoError(t, err)
		_, err = svc.SignUp(ctx, "ADA@example.com", "secret2", "Ada 2")
		assert.ErrorIs(t, err, domain.ErrDuplicateEmail)
	})
}

func TestUserService_Login(t *testing.T) {
	ctx := context.Background()
	_, issuer, svc := newUserFixture()
	u, err := svc.SignUp(ctx, "ada@example.com", "secret1", "Ada")
	require.NoError(t, err)

	token, got, err := svc.Login(ctx, "ADA@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "token-"+u.ID, token)
	assert.Equal(t, u.ID, got.ID)

	_, _, err = svc.Login(ctx, "ada@example.com", "wrong")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, _, err = svc.Login(ctx, "nobody@example.com", "secret1")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	issuer.err = errors.New("sign failed")
	_, _, err = svc.Login(ctx, "ada@example.com", "secret1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestUserService_UpdateProfile(t *testing.T) {
	ctx := context.Background()
	store, _, svc := newUserFixture()
	u, err := svc.SignUp(ctx, "ada@example.com", "secret1", "Ada")
	require.NoError(t, err)

	bio, org := " Gopher ", "Acme"
	updated, err := svc.UpdateProfile(ctx, u.ID, domain.ProfilePatch{Bio: &bio, Organization: &org})
	require.NoError(t, err)
	assert.Equal(t, "Gopher", updated.Bio)
	assert.Equal(t, "Acme", store.users[u.ID].Organization)
	assert.Equal(t, "Ada", updated.Name)

	empty := ""
	_, err = svc.UpdateProfile(ctx, u.ID, domain.ProfilePatch{Name: &empty})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.UpdateProfile(ctx, "missing", domain.ProfilePatch{Bio: &bio})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/journeyconnect/journeyconnect/internal/common"
	"github.com/journeyconnect/journeyconnect/internal/server/models"
)

func TestUsers_List(t *testing.T) {
	rm := newFakeRM(alice, bob, mentor)
	db, _ := newSQLMockDB(t)
	s := NewUserService(db, rm)

	_, err := s.List(context.Background(), alice, "")
	assert.ErrorIs(t, err, common.ErrAuthorization)

	got, err := s.List(context.Background(), mentor, models.RoleUser)
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, models.RoleUser, rm.users.listRole)

	_, err = s.List(context.Background(), admin, "owner")
	assert.ErrorIs(t, err, common.ErrValidation)

	got, err = s.List(context.Background(), admin, models.RoleAdmin)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestUsers_UpdateRole(t *testing.T) {
	rm := newFakeRM(alice, mentor)
	db, _ := newSQLMockDB(t)
	s := NewUserService(db, rm)

	_, err := s.UpdateRole(context.Background(), mentor, alice.ID, models.RoleMentor)
	assert.ErrorIs(t, err, common.ErrAuthorization)

	_, err = s.UpdateRole(context.Background(), admin, alice.ID, "superuser")
	assert.ErrorIs(t, err, common.ErrValidation)

	_, err = s.UpdateRole(context.Background(), admin, "ghost", models.RoleMentor)
	assert.ErrorIs(t, err, common.ErrorNotFound)

	u, err := s.UpdateRole(context.Background(), admin, alice.ID, models.RoleMentor)
	require.NoError(t, err)
	assert.Equal(t, models.RoleMentor, u.Role)
}

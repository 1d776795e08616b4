package users_test

import (
	"testing"
	"time"

	"github.com/martinmanurung/account-service/internal/domain/users"
	"github.com/stretchr/testify/assert"
)

func ptr[T any](v T) *T { return &v }

func sampleUser() users.User {
	return users.User{
		ID:         "b8c5b2e4-6f4a-4a7e-9a55-1c0f4f5e8a10",
		Email:      "john@example.com",
		Username:   "john",
		Phone:      "+48221234567",
		Name:       "John",
		Surname:    "Doe",
		Role:       users.RoleUser,
		CreatedAt:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		ModifiedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestParseRole(t *testing.T) {
	tests := []struct {
		in   string
		want users.Role
		ok   bool
	}{
		{in: "user", want: users.RoleUser, ok: true},
		{in: " MODERATOR ", want: users.RoleModerator, ok: true},
		{in: "Admin", want: users.RoleAdmin, ok: true},
		{in: "root", ok: false},
		{in: "", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := users.ParseRole(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUserPatchApplyCopies(t *testing.T) {
	original := sampleUser()
	patch := users.UserPatch{Email: ptr("new@example.com")}

	updated := patch.Apply(original)

	assert.Equal(t, "new@example.com", updated.Email)
	assert.Equal(t, "john@example.com", original.Email)
	assert.Equal(t, original.Username, updated.Username)
	assert.Equal(t, original.Phone, updated.Phone)
	assert.Equal(t, original.Name, updated.Name)
	assert.False(t, patch.IsEmpty())
	assert.True(t, users.UserPatch{}.IsEmpty())
}

func TestAdminPatchApply(t *testing.T) {
	original := sampleUser()
	patch := users.AdminPatch{
		Role:      ptr(users.RoleModerator),
		IsBlocked: ptr(true),
		GroupID:   ptr("3f1c7a52-1111-4b5e-8d55-0a4c6f0a9e11"),
	}

	updated := patch.Apply(original)

	assert.Equal(t, users.RoleModerator, updated.Role)
	assert.True(t, updated.IsBlocked)
	assert.Equal(t, "3f1c7a52-1111-4b5e-8d55-0a4c6f0a9e11", updated.GroupRef())
	assert.Nil(t, original.GroupID)
	assert.False(t, patch.IsEmpty())
	assert.True(t, users.AdminPatch{}.IsEmpty())
}

func TestInGroup(t *testing.T) {
	u := sampleUser()
	assert.False(t, u.InGroup(nil))
	assert.False(t, u.InGroup(ptr("g1")))

	u.GroupID = ptr("g1")
	assert.True(t, u.InGroup(ptr("g1")))
	assert.False(t, u.InGroup(ptr("g2")))
	assert.False(t, u.InGroup(nil))
}

func TestListFilterOffset(t *testing.T) {
	assert.Equal(t, 0, users.ListFilter{Page: 1, Limit: 30}.Offset())
	assert.Equal(t, 60, users.ListFilter{Page: 3, Limit: 30}.Offset())
	assert.Equal(t, 0, users.ListFilter{Page: 5, Limit: 0}.Offset())
	assert.Equal(t, 0, users.ListFilter{Page: 0, Limit: 10}.Offset())

	def := users.DefaultListFilter()
	assert.Equal(t, 1, def.Page)
	assert.Equal(t, users.OrderDesc, def.OrderBy)
}

package service_test

import (
	"context"
	"testing"

	"bouw-backoffice/internal/model"
	"bouw-backoffice/internal/service"
	"bouw-backoffice/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeRoleRepo struct {
	roles map[string]*model.Role
}

func newFakeRoleRepo() *fakeRoleRepo {
	r := &fakeRoleRepo{roles: make(map[string]*model.Role)}
	for i, code := range []string{model.RoleAdmin, model.RoleOffice, model.RoleWorker} {
		r.roles[code] = &model.Role{
			ID:         uint(i + 1),
			Code:       code,
			Privileges: []model.Privilege{{Code: "default:" + code}},
		}
	}
	return r
}

func (r *fakeRoleRepo) FindAll(ctx context.Context) ([]model.Role, error) { return nil, nil }

func (r *fakeRoleRepo) FindByCode(ctx context.Context, code string) (*model.Role, error) {
	role, ok := r.roles[code]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return role, nil
}

func (r *fakeRoleRepo) ReplacePrivileges(ctx context.Context, role *model.Role, privileges []model.Privilege) error {
	return nil
}

func (r *fakeRoleRepo) SeedDefaults(ctx context.Context) error { return nil }

type fakePrivilegeRepo struct{}

func (fakePrivilegeRepo) FindByCodes(ctx context.Context, codes []string) ([]model.Privilege, error) {
	var out []model.Privilege
	for _, c := range codes {
		if c == model.PrivStockBook || c == model.PrivTimeRegister {
			out = append(out, model.Privilege{Code: c})
		}
	}
	return out, nil
}

func (fakePrivilegeRepo) FindAll(ctx context.Context) ([]model.Privilege, error) { return nil, nil }
func (fakePrivilegeRepo) SeedDefaults(ctx context.Context) error                 { return nil }

func newUserFixture(t *testing.T) (service.UserService, *fakeUserRepo, service.Actor) {
	t.Helper()
	users := newFakeUserRepo()
	roles := newFakeRoleRepo()
	svc := service.NewUserService(users, fakePrivilegeRepo{}, roles)

	admin := users.add(t, "admin@example.com", "geheim123", true)
	admin.RoleID = &roles.roles[model.RoleAdmin].ID
	return svc, users, service.Actor{ID: admin.ID, Email: admin.Email}
}

func TestCreateUser_TakesRolePrivileges(t *testing.T) {
	svc, _, admin := newUserFixture(t)

	u, err := svc.CreateUser(context.Background(), &service.CreateUserRequest{
		Email:    "  Jan@Example.com ",
		Password: "geheim123",
		FullName: "Jan",
		RoleCode: model.RoleWorker,
	}, admin)
	require.NoError(t, err)
	assert.Equal(t, "jan@example.com", u.Email)
	assert.Equal(t, []string{"default:WORKER"}, u.GetPrivilegeCodes())
	assert.Equal(t, admin.ID.String(), u.CreatedBy)

	_, err = svc.CreateUser(context.Background(), &service.CreateUserRequest{
		Email: "jan@example.com", Password: "geheim123", FullName: "Jan 2", RoleCode: model.RoleWorker,
	}, admin)
	assert.ErrorIs(t, err, service.ErrEmailExists)
}

func TestCreateUser_RejectsUnknownRole(t *testing.T) {
	svc, _, admin := newUserFixture(t)

	_, err := svc.CreateUser(context.Background(), &service.CreateUserRequest{
		Email: "x@example.com", Password: "geheim123", FullName: "X", RoleCode: "MASTER",
	}, admin)
	assert.True(t, apperror.IsValidation(err))
}

func TestUpdateUser_CannotLockOutSelf(t *testing.T) {
	svc, _, admin := newUserFixture(t)
	inactive := false

	_, err := svc.UpdateUser(context.Background(), admin.ID, &service.UpdateUserRequest{
		Email: admin.Email, FullName: "Admin", RoleCode: model.RoleWorker,
	}, admin)
	assert.ErrorIs(t, err, service.ErrSelfLockout)
	assert.Equal(t, apperror.KindForbidden, apperror.KindOf(err))

	_, err = svc.UpdateUser(context.Background(), admin.ID, &service.UpdateUserRequest{
		Email: admin.Email, FullName: "Admin", RoleCode: model.RoleAdmin, IsActive: &inactive,
	}, admin)
	assert.ErrorIs(t, err, service.ErrSelfLockout)

	updated, err := svc.UpdateUser(context.Background(), admin.ID, &service.UpdateUserRequest{
		Email: admin.Email, FullName: "Beheerder", RoleCode: model.RoleAdmin,
	}, admin)
	require.NoError(t, err)
	assert.Equal(t, "Beheerder", updated.FullName)
}

func TestUpdateUser_RoleChangeResetsPrivileges(t *testing.T) {
	svc, users, admin := newUserFixture(t)
	worker := users.add(t, "piet@example.com", "geheim123", true)
	worker.Privileges = []model.Privilege{{Code: model.PrivStockBook}}
	inactive := false

	updated, err := svc.UpdateUser(context.Background(), worker.ID, &service.UpdateUserRequest{
		Email: worker.Email, FullName: "Piet", RoleCode: model.RoleOffice, IsActive: &inactive,
	}, admin)
	require.NoError(t, err)
	assert.Equal(t, []string{"default:OFFICE"}, updated.GetPrivilegeCodes())
	assert.False(t, updated.IsActive)
}

func TestUpdateUserPrivileges(t *testing.T) {
	svc, users, admin := newUserFixture(t)
	worker := users.add(t, "piet@example.com", "geheim123", true)
	worker.TokenVersion = "v1"

	_, err := svc.UpdateUserPrivileges(context.Background(), worker.ID, []string{model.PrivStockBook, "bogus:code"}, admin)
	assert.True(t, apperror.IsValidation(err))

	updated, err := svc.UpdateUserPrivileges(context.Background(), worker.ID, []string{model.PrivStockBook, model.PrivTimeRegister}, admin)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{model.PrivStockBook, model.PrivTimeRegister}, updated.GetPrivilegeCodes())
	assert.NotEqual(t, "v1", users.users[worker.ID].TokenVersion)
}

package service

import (
	"context"
	"testing"

	"hotel-portfolio-api/internal/model"
	"hotel-portfolio-api/pkg/apperror"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type propertyFixture struct {
	properties PropertyService
	portfolios PortfolioService
	audits     AuditService
	access     *fakeAccessRepo
	propRepo   *fakePropertyRepo
	auditRepo  *fakeAuditRepo
	manager    *model.User
	source     uuid.UUID
	target     uuid.UUID
	property   uuid.UUID
}

func newPropertyFixture(t *testing.T) *propertyFixture {
	t.Helper()
	f := &propertyFixture{access: newFakeAccessRepo(), manager: newUser("manager", managerRole())}

	source := &model.Portfolio{Name: "Coastal"}
	source.ID = uuid.New()
	target := &model.Portfolio{Name: "Mountain"}
	target.ID = uuid.New()
	portfolioRepo := &fakePortfolioRepo{portfolios: map[uuid.UUID]*model.Portfolio{source.ID: source, target.ID: target}}

	property := &model.Property{Name: "Seaview", PortfolioID: source.ID, IsActive: true}
	property.ID = uuid.New()
	f.propRepo = &fakePropertyRepo{properties: map[uuid.UUID]*model.Property{property.ID: property}, portfolios: portfolioRepo}
	f.auditRepo = &fakeAuditRepo{audits: map[uuid.UUID]*model.Audit{}}

	f.source, f.target, f.property = source.ID, target.ID, property.ID
	f.access.set(f.manager.ID, []string{source.ID.String()}, []string{property.ID.String()})

	users := newFakeUserRepo(f.manager)
	permissions := NewPermissionService(f.access, users, fakeTx{}, fakePasswords{}, quietLogger())
	f.properties = NewPropertyService(f.propRepo, portfolioRepo, permissions, fakeTx{}, quietLogger())
	f.portfolios = NewPortfolioService(portfolioRepo, permissions, fakeTx{}, quietLogger())
	f.audits = NewAuditService(f.auditRepo, permissions, quietLogger())
	return f
}

func TestTransferPropertyPrunesAccess(t *testing.T) {
	f := newPropertyFixture(t)
	ctx := context.Background()

	require.NoError(t, f.properties.TransferProperty(ctx, f.property, f.target))
	assert.Equal(t, f.target, f.propRepo.properties[f.property].PortfolioID)

	access, err := f.access.FindByUserID(ctx, f.manager.ID)
	require.NoError(t, err)
	assert.Empty(t, access.PropertyIDs)

	err = f.properties.TransferProperty(ctx, f.property, f.target)
	assert.Equal(t, apperror.KindBadRequest, apperror.KindOf(err))

	err = f.properties.TransferProperty(ctx, uuid.New(), f.target)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

func TestSetPropertyActive(t *testing.T) {
	f := newPropertyFixture(t)
	ctx := context.Background()

	require.NoError(t, f.properties.DeactivateProperty(ctx, f.property))
	assert.False(t, f.propRepo.properties[f.property].IsActive)

	err := f.properties.DeactivateProperty(ctx, f.property)
	assert.Equal(t, apperror.KindBadRequest, apperror.KindOf(err))

	require.NoError(t, f.properties.ActivateProperty(ctx, f.property))
	assert.True(t, f.propRepo.properties[f.property].IsActive)
}

func TestPropertyListingIsScoped(t *testing.T) {
	f := newPropertyFixture(t)
	ctx := context.Background()

	hidden := &model.Property{Name: "Hidden", PortfolioID: f.source}
	hidden.ID = uuid.New()
	f.propRepo.properties[hidden.ID] = hidden

	properties, err := f.properties.GetAllProperties(ctx, f.manager)
	require.NoError(t, err)
	require.Len(t, properties, 1)
	assert.Equal(t, f.property, properties[0].ID)

	_, err = f.properties.GetPropertyByID(ctx, hidden.ID, f.manager)
	assert.ErrorIs(t, err, ErrResourceNotAccessible)
}

func TestCreateGrantsAccessToPartialCreator(t *testing.T) {
	f := newPropertyFixture(t)
	ctx := context.Background()

	property, err := f.properties.CreateProperty(ctx, &CreatePropertyRequest{Name: "Harbor", PortfolioID: f.source}, f.manager)
	require.NoError(t, err)

	portfolio, err := f.portfolios.CreatePortfolio(ctx, &CreatePortfolioRequest{Name: "Northern"}, f.manager)
	require.NoError(t, err)

	access, err := f.access.FindByUserID(ctx, f.manager.ID)
	require.NoError(t, err)
	assert.Contains(t, access.PropertyIDs, property.ID.String())
	assert.Contains(t, access.PortfolioIDs, portfolio.ID.String())

	_, err = f.portfolios.CreatePortfolio(ctx, &CreatePortfolioRequest{Name: "Northern"}, f.manager)
	assert.Equal(t, apperror.KindBadRequest, apperror.KindOf(err))

	// the target portfolio must be in the creator's scope
	_, err = f.properties.CreateProperty(ctx, &CreatePropertyRequest{Name: "Lodge", PortfolioID: f.target}, f.manager)
	assert.ErrorIs(t, err, ErrResourceNotAccessible)

	_, err = f.properties.CreateProperty(ctx, &CreatePropertyRequest{Name: ""}, f.manager)
	assert.Equal(t, apperror.KindBadRequest, apperror.KindOf(err))
}

func TestUpdateAuditAmountConfirmed(t *testing.T) {
	f := newPropertyFixture(t)
	ctx := context.Background()

	audit := &model.Audit{PropertyID: f.property}
	audit.ID = uuid.New()
	f.auditRepo.audits[audit.ID] = audit

	require.NoError(t, f.audits.UpdateAuditAmountConfirmed(ctx, audit.ID, 80))
	require.NotNil(t, audit.AmountConfirmed)
	assert.Equal(t, 80.0, *audit.AmountConfirmed)

	assert.Equal(t, apperror.KindBadRequest, apperror.KindOf(f.audits.UpdateAuditAmountConfirmed(ctx, audit.ID, -1)))
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(f.audits.UpdateAuditAmountConfirmed(ctx, uuid.New(), 1)))
}

func TestActionExecutorDelegates(t *testing.T) {
	f := newPropertyFixture(t)
	exec := NewActionExecutor(f.properties, f.audits)

	require.NoError(t, exec.DeactivateProperty(context.Background(), f.property))
	assert.False(t, f.propRepo.properties[f.property].IsActive)
}

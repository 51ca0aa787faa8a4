package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ZephyrexTechnologies/ServerFramework-sub002/internal/access"
	apperrors "github.com/ZephyrexTechnologies/ServerFramework-sub002/pkg/errors"
)

func TestInvitationLifecycle(t *testing.T) {
	db := setupServiceTestDB(t)
	resolver := newServiceTestResolver(t, db)
	svc, err := NewInvitationService(db, resolver)
	require.NoError(t, err)

	creator := createTestUser(t, db, "inv-creator")

	inv, err := svc.Create(context.Background(), creator.ID, CreateInvitationInput{
		Email: "Guest@Example.com",
	})
	require.NoError(t, err)
	require.Equal(t, "guest@example.com", inv.Email)
	require.NotEmpty(t, inv.Code)
	require.Equal(t, creator.ID, inv.CreatedByUserID)

	loaded, err := svc.Get(context.Background(), creator.ID, inv.ID)
	require.NoError(t, err)
	require.Equal(t, inv.ID, loaded.ID)

	listed, err := svc.List(context.Background(), creator.ID)
	require.NoError(t, err)
	require.Len(t, listed, 1)

	require.NoError(t, svc.Delete(context.Background(), creator.ID, inv.ID))

	// Soft-deleted rows are opaque even to the creator.
	_, err = svc.Get(context.Background(), creator.ID, inv.ID)
	require.ErrorIs(t, err, apperrors.ErrNotFound)

	listed, err = svc.List(context.Background(), creator.ID)
	require.NoError(t, err)
	require.Empty(t, listed)
}

func TestInvitationCreateRejectsInvalidEmail(t *testing.T) {
	db := setupServiceTestDB(t)
	resolver := newServiceTestResolver(t, db)
	svc, err := NewInvitationService(db, resolver)
	require.NoError(t, err)

	creator := createTestUser(t, db, "inv-validate")

	_, err = svc.Create(context.Background(), creator.ID, CreateInvitationInput{Email: "not-an-email"})
	require.Error(t, err)

	_, err = svc.Create(context.Background(), creator.ID, CreateInvitationInput{})
	require.Error(t, err)
}

func TestInvitationReadDenialHidesExistence(t *testing.T) {
	db := setupServiceTestDB(t)
	resolver := newServiceTestResolver(t, db)
	svc, err := NewInvitationService(db, resolver)
	require.NoError(t, err)

	creator := createTestUser(t, db, "hide-creator")
	outsider := createTestUser(t, db, "hide-outsider")

	inv, err := svc.Create(context.Background(), creator.ID, CreateInvitationInput{Email: "x@example.com"})
	require.NoError(t, err)

	// A denied view and a missing row are indistinguishable to the caller.
	_, err = svc.Get(context.Background(), outsider.ID, inv.ID)
	require.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = svc.Get(context.Background(), outsider.ID, "does-not-exist")
	require.ErrorIs(t, err, apperrors.ErrNotFound)

	// Mutation denials stay distinguishable for the authorized surface.
	grantSvc, err := NewGrantService(db, resolver)
	require.NoError(t, err)
	_, err = grantSvc.CreateGrant(context.Background(), creator.ID, CreateGrantInput{
		ResourceType:   "invitations",
		ResourceID:     inv.ID,
		UserID:         &outsider.ID,
		PermissionType: access.CapabilityView,
	})
	require.NoError(t, err)

	// The outsider can now read but still not delete.
	_, err = svc.Get(context.Background(), outsider.ID, inv.ID)
	require.NoError(t, err)
	err = svc.Delete(context.Background(), outsider.ID, inv.ID)
	require.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestInvitationEndToEndThroughServices(t *testing.T) {
	db := setupServiceTestDB(t)
	resolver := newServiceTestResolver(t, db)
	invSvc, err := NewInvitationService(db, resolver)
	require.NoError(t, err)
	grantSvc, err := NewGrantService(db, resolver)
	require.NoError(t, err)

	userA := createTestUser(t, db, "e2e-a")
	userB := createTestUser(t, db, "e2e-b")

	inv, err := invSvc.Create(context.Background(), userA.ID, CreateInvitationInput{Email: "e2e@example.com"})
	require.NoError(t, err)

	_, err = invSvc.Get(context.Background(), userB.ID, inv.ID)
	require.ErrorIs(t, err, apperrors.ErrNotFound)

	grant, err := grantSvc.CreateGrant(context.Background(), testSuperuserID, CreateGrantInput{
		ResourceType:   "invitations",
		ResourceID:     inv.ID,
		UserID:         &userB.ID,
		PermissionType: access.CapabilityView,
	})
	require.NoError(t, err)

	_, err = invSvc.Get(context.Background(), userB.ID, inv.ID)
	require.NoError(t, err)

	require.NoError(t, grantSvc.DeleteGrant(context.Background(), testSuperuserID, grant.ID))

	_, err = invSvc.Get(context.Background(), userB.ID, inv.ID)
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

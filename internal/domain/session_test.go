package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/spec-kit/beacon-marketplace/pkg/util/errorutil"
)

func newUnboundSession() *Session {
	return &Session{
		ID:        "sess-1",
		UserID:    "user-1",
		IssuedAt:  time.Now(),
		ExpiresAt: time.Now().Add(time.Hour),
	}
}

func TestSessionBindOrganization(t *testing.T) {
	t.Run("unbound to organization", func(t *testing.T) {
		s := newUnboundSession()
		err := s.BindOrganization(OrganizationRole{MembershipID: "m1", OrganizationID: "org1"})
		require.NoError(t, err)
		assert.Equal(t, BindingStateBoundToOrganization, s.BindingState())
	})

	t.Run("rebind to a different venue wins", func(t *testing.T) {
		s := newUnboundSession()
		venueA := "venue-a"
		venueB := "venue-b"
		require.NoError(t, s.BindOrganization(OrganizationRole{MembershipID: "m1", OrganizationID: "org1", VenueID: &venueA}))
		require.NoError(t, s.BindOrganization(OrganizationRole{MembershipID: "m2", OrganizationID: "org2", VenueID: &venueB}))
		assert.Equal(t, "org2", s.OrgRole.OrganizationID)
		assert.Equal(t, venueB, *s.OrgRole.VenueID)
	})

	t.Run("conflict when integration role bound", func(t *testing.T) {
		s := newUnboundSession()
		require.NoError(t, s.BindIntegration(IntegrationRole{MembershipID: "m1", IntegrationID: "int1"}))
		err := s.BindOrganization(OrganizationRole{MembershipID: "m2", OrganizationID: "org1"})
		require.Error(t, err)
		assert.True(t, apperrors.IsCode(err, "CONFLICT"))
		// prior binding untouched
		require.NotNil(t, s.IntegrationRole)
		assert.Equal(t, "int1", s.IntegrationRole.IntegrationID)
		assert.Nil(t, s.OrgRole)
	})
}

func TestSessionBindIntegration(t *testing.T) {
	t.Run("unbound to integration", func(t *testing.T) {
		s := newUnboundSession()
		require.NoError(t, s.BindIntegration(IntegrationRole{MembershipID: "m1", IntegrationID: "int1"}))
		assert.Equal(t, BindingStateBoundToIntegration, s.BindingState())
	})

	t.Run("conflict when organization role bound", func(t *testing.T) {
		s := newUnboundSession()
		require.NoError(t, s.BindOrganization(OrganizationRole{MembershipID: "m1", OrganizationID: "org1"}))
		err := s.BindIntegration(IntegrationRole{MembershipID: "m2", IntegrationID: "int1"})
		require.Error(t, err)
		assert.True(t, apperrors.IsCode(err, "CONFLICT"))
		assert.Equal(t, "org1", s.OrgRole.OrganizationID)
	})

	t.Run("rebind same variant wins", func(t *testing.T) {
		s := newUnboundSession()
		require.NoError(t, s.BindIntegration(IntegrationRole{MembershipID: "m1", IntegrationID: "int1"}))
		require.NoError(t, s.BindIntegration(IntegrationRole{MembershipID: "m2", IntegrationID: "int2"}))
		assert.Equal(t, "int2", s.IntegrationRole.IntegrationID)
	})
}

func TestSessionReleaseBinding(t *testing.T) {
	t.Run("release unbound fails not found", func(t *testing.T) {
		s := newUnboundSession()
		_, err := s.ReleaseBinding()
		require.Error(t, err)
		assert.True(t, apperrors.IsCode(err, "NOT_FOUND"))
	})

	t.Run("release organization role", func(t *testing.T) {
		s := newUnboundSession()
		require.NoError(t, s.BindOrganization(OrganizationRole{MembershipID: "m1", OrganizationID: "org1"}))
		released, err := s.ReleaseBinding()
		require.NoError(t, err)
		assert.Equal(t, BindingStateBoundToOrganization, released)
		assert.Equal(t, BindingStateUnbound, s.BindingState())
	})

	t.Run("release then bind other variant succeeds", func(t *testing.T) {
		s := newUnboundSession()
		require.NoError(t, s.BindOrganization(OrganizationRole{MembershipID: "m1", OrganizationID: "org1"}))
		_, err := s.ReleaseBinding()
		require.NoError(t, err)
		require.NoError(t, s.BindIntegration(IntegrationRole{MembershipID: "m2", IntegrationID: "int1"}))
		assert.Equal(t, BindingStateBoundToIntegration, s.BindingState())
	})
}

func TestSessionBadState(t *testing.T) {
	s := newUnboundSession()
	s.OrgRole = &OrganizationRole{MembershipID: "m1", OrganizationID: "org1"}
	s.IntegrationRole = &IntegrationRole{MembershipID: "m2", IntegrationID: "int1"}

	_, err := s.ReleaseBinding()
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "BAD_STATE"))

	err = s.BindOrganization(OrganizationRole{MembershipID: "m3", OrganizationID: "org2"})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "BAD_STATE"))
}

func TestSessionExpired(t *testing.T) {
	s := newUnboundSession()
	assert.False(t, s.Expired(time.Now()))
	assert.True(t, s.Expired(time.Now().Add(2*time.Hour)))
}

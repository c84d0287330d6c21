package database

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestCreateAndListInvitations(t *testing.T) {
	ctx := context.Background()
	expires := time.Now().UTC().Add(7 * 24 * time.Hour).Truncate(time.Microsecond)

	first, err := testStore.CreateInvitation(ctx, CreateInvitationParams{Code: uuid.NewString()[:8], ExpiresAt: expires})
	require.NoError(t, err)
	require.False(t, first.Used)
	require.Nil(t, first.UsedBy)
	require.True(t, expires.Equal(first.ExpiresAt))

	second, err := testStore.CreateInvitation(ctx, CreateInvitationParams{Code: uuid.NewString()[:8], ExpiresAt: expires})
	require.NoError(t, err)

	_, err = testStore.CreateInvitation(ctx, CreateInvitationParams{Code: first.Code, ExpiresAt: expires})
	require.ErrorIs(t, err, ErrDuplicateCode)

	invitations, err := testStore.ListInvitations(ctx)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(invitations), 2)

	firstIdx, secondIdx := -1, -1
	for i, inv := range invitations {
		switch inv.ID {
		case first.ID:
			firstIdx = i
		case second.ID:
			secondIdx = i
		}
	}
	require.Less(t, secondIdx, firstIdx)
	require.NotEqual(t, -1, secondIdx)
}

func TestCreateInvitationWithExplicitCreationTime(t *testing.T) {
	created := time.Now().UTC().Truncate(time.Microsecond)
	expires := created.AddDate(0, 0, 7)

	inv, err := testStore.CreateInvitation(context.Background(), CreateInvitationParams{
		Code:      uuid.NewString()[:8],
		ExpiresAt: expires,
		CreatedAt: created,
	})
	require.NoError(t, err)
	require.True(t, created.Equal(inv.CreatedAt))
	require.Equal(t, 7*24*time.Hour, inv.ExpiresAt.Sub(inv.CreatedAt))
}

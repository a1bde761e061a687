package identity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bloomfeed/billing/pkg/types"
)

func TestResolve_UserScope(t *testing.T) {
	// user scope never touches the datastore
	svc := NewService(nil)
	ctx := context.Background()

	got, err := svc.Resolve(ctx, "u-1", types.OwnerRef{Type: types.OwnerTypeUser, ID: "u-1"})
	require.NoError(t, err)
	require.Equal(t, &types.OwnerRef{ID: "u-1", Type: types.OwnerTypeUser}, got)

	// empty owner id defaults to the actor
	got, err = svc.Resolve(ctx, "u-1", types.OwnerRef{})
	require.NoError(t, err)
	require.Equal(t, "u-1", got.ID)

	// acting for a different user is rejected
	_, err = svc.Resolve(ctx, "u-1", types.OwnerRef{Type: types.OwnerTypeUser, ID: "u-2"})
	require.ErrorIs(t, err, ErrForbidden)
}

func TestResolve_Rejections(t *testing.T) {
	svc := NewService(nil)
	ctx := context.Background()

	_, err := svc.Resolve(ctx, "", types.OwnerRef{Type: types.OwnerTypeUser, ID: "u-1"})
	require.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Resolve(ctx, "u-1", types.OwnerRef{Type: types.OwnerTypeCompany})
	require.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Resolve(ctx, "u-1", types.OwnerRef{Type: "team", ID: "x"})
	require.ErrorIs(t, err, ErrForbidden)
}

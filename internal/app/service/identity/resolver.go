package identity

import (
	"context"
	"errors"
	"fmt"

	models "github.com/bloomfeed/billing/internal/models"
	types "github.com/bloomfeed/billing/pkg/types"

	"gorm.io/gorm"
)

// ErrForbidden means the authenticated actor may not act for the requested
// owner.
var ErrForbidden = errors.New("actor is not authorized for this owner")

// Resolver maps an authenticated actor plus a requested owner scope onto the
// owner the action is actually performed for. Company scopes require a
// verified membership.
type Resolver interface {
	Resolve(ctx context.Context, actorID string, owner types.OwnerRef) (*types.OwnerRef, error)
}

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service { return &Service{db: db} }

func (s *Service) Resolve(ctx context.Context, actorID string, owner types.OwnerRef) (*types.OwnerRef, error) {
	if actorID == "" {
		return nil, ErrForbidden
	}

	switch owner.Type {
	case types.OwnerTypeUser, "":
		// Users act only for themselves. An empty owner id defaults to the
		// actor rather than trusting a client-supplied id.
		if owner.ID != "" && owner.ID != actorID {
			return nil, ErrForbidden
		}
		return &types.OwnerRef{ID: actorID, Type: types.OwnerTypeUser}, nil

	case types.OwnerTypeCompany:
		if owner.ID == "" {
			return nil, ErrForbidden
		}
		var member models.OrgMember
		err := s.db.WithContext(ctx).
			Where("org_id = ? AND user_id = ? AND verified = ?", owner.ID, actorID, true).
			First(&member).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrForbidden
			}
			return nil, fmt.Errorf("failed to check org membership: %w", err)
		}
		return &types.OwnerRef{ID: owner.ID, Type: types.OwnerTypeCompany}, nil

	default:
		return nil, ErrForbidden
	}
}

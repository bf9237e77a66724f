package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"holiday-service/internal/models"
	"holiday-service/internal/repositories"
)

// GatheringView is a gathering with its member ids.
type GatheringView struct {
	models.Gathering
	Members []uuid.UUID `json:"members"`
}

// GatheringService manages host-owned gatherings and their collaborators.
type GatheringService struct {
	uow repositories.UnitOfWork
}

func NewGatheringService(uow repositories.UnitOfWork) *GatheringService {
	return &GatheringService{uow: uow}
}

// Create makes a gathering owned by ownerID. The owner is always a member.
func (s *GatheringService) Create(ctx context.Context, ownerID uuid.UUID, name, date string, memberIDs []uuid.UUID) (GatheringView, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return GatheringView{}, validationError("name is required")
	}

	var view GatheringView
	err := s.uow.WithinTx(ctx, func(r repositories.Repos) error {
		for _, id := range memberIDs {
			if id == ownerID {
				continue
			}
			if _, err := r.Users.GetByID(ctx, id); err != nil {
				return notFound("member", err)
			}
		}
		g, err := r.Gatherings.CreateGathering(ctx, ownerID, name, strings.TrimSpace(date), memberIDs)
		if err != nil {
			return fmt.Errorf("create gathering: %w", err)
		}
		members, err := r.Gatherings.ListMembers(ctx, g.ID)
		if err != nil {
			return fmt.Errorf("list members: %w", err)
		}
		view = GatheringView{Gathering: g, Members: members}
		return nil
	})
	if err != nil {
		return GatheringView{}, err
	}
	return view, nil
}

// List returns the gatherings the user owns or belongs to.
func (s *GatheringService) List(ctx context.Context, userID uuid.UUID) ([]GatheringView, error) {
	repos := s.uow.Repos()
	gatherings, err := repos.Gatherings.ListGatheringsForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list gatherings: %w", err)
	}
	out := make([]GatheringView, 0, len(gatherings))
	for _, g := range gatherings {
		members, err := repos.Gatherings.ListMembers(ctx, g.ID)
		if err != nil {
			return nil, fmt.Errorf("list members: %w", err)
		}
		out = append(out, GatheringView{Gathering: g, Members: members})
	}
	return out, nil
}

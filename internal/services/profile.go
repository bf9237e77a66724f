package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"holiday-service/internal/models"
	"holiday-service/internal/repositories"
)

// Project is the single privacy gate for profile reads. The private field
// group survives only for the owner and for a matched counterpart; for anyone
// else the fields are cleared on the returned copy.
func Project(viewerID uuid.UUID, p models.Profile, matched bool) models.Profile {
	if viewerID == p.UserID || matched {
		return p
	}
	p.Surname = nil
	p.Phone = nil
	p.Address = nil
	return p
}

// ProfileInput is the owner-editable part of a profile.
type ProfileInput struct {
	HostingIntent models.Intent `json:"hosting_intent"`
	GuestIntent   models.Intent `json:"guest_intent"`
	OfferedDates  []string      `json:"offered_dates"`
	DesiredDates  []string      `json:"desired_dates"`
	Locale        string        `json:"locale"`
	Name          string        `json:"name"`
	Age           *int          `json:"age"`
	City          string        `json:"city"`
	Bio           string        `json:"bio"`
	Languages     []string      `json:"languages"`
	DietaryTags   []string      `json:"dietary_tags"`
	Surname       *string       `json:"surname"`
	Phone         *string       `json:"phone"`
	Address       *string       `json:"address"`
}

func (in ProfileInput) validate() error {
	if !in.HostingIntent.Valid() {
		return validationError("hosting_intent must be yes, maybe or no")
	}
	if !in.GuestIntent.Valid() {
		return validationError("guest_intent must be yes, maybe or no")
	}
	if strings.TrimSpace(in.Name) == "" {
		return validationError("name is required")
	}
	if in.Age != nil && (*in.Age < 0 || *in.Age > 130) {
		return validationError("age out of range")
	}
	return nil
}

// ProfileService owns profile reads and writes.
type ProfileService struct {
	uow repositories.UnitOfWork
	now func() time.Time
}

func NewProfileService(uow repositories.UnitOfWork) *ProfileService {
	return &ProfileService{uow: uow, now: time.Now}
}

// Get returns the target's profile as the viewer may see it. A draft profile
// is invisible to everyone but its owner.
func (s *ProfileService) Get(ctx context.Context, viewerID, targetID uuid.UUID) (models.Profile, error) {
	repos := s.uow.Repos()
	p, err := repos.Profiles.Get(ctx, targetID)
	if err != nil {
		return models.Profile{}, notFound("profile", err)
	}
	if viewerID == targetID {
		return p, nil
	}
	if !p.IsVisible {
		return models.Profile{}, fmt.Errorf("%w: profile", ErrNotFound)
	}

	matched, err := repos.Connections.HasAccepted(ctx, viewerID, targetID)
	if err != nil {
		return models.Profile{}, fmt.Errorf("check match: %w", err)
	}
	return Project(viewerID, p, matched), nil
}

// Browse lists visible profiles, plus the viewer's own, each projected.
func (s *ProfileService) Browse(ctx context.Context, viewerID uuid.UUID, filter models.BrowseFilter) ([]models.Profile, error) {
	if filter.Role != "" && filter.Role != models.RoleHost && filter.Role != models.RoleGuest && filter.Role != models.RoleBoth {
		return nil, validationError("role must be host, guest or both")
	}

	repos := s.uow.Repos()
	profiles, err := repos.Profiles.Browse(ctx, viewerID, filter)
	if err != nil {
		return nil, fmt.Errorf("browse profiles: %w", err)
	}
	counterparts, err := repos.Connections.AcceptedCounterparts(ctx, viewerID)
	if err != nil {
		return nil, fmt.Errorf("load matches: %w", err)
	}
	matched := make(map[uuid.UUID]bool, len(counterparts))
	for _, id := range counterparts {
		matched[id] = true
	}

	out := make([]models.Profile, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, Project(viewerID, p, matched[p.UserID]))
	}
	return out, nil
}

// Save writes the owner's profile. The first full save makes it visible.
func (s *ProfileService) Save(ctx context.Context, ownerID uuid.UUID, in ProfileInput) (models.Profile, error) {
	if err := in.validate(); err != nil {
		return models.Profile{}, err
	}

	now := nowMicro(s.now)
	p := models.Profile{
		UserID:        ownerID,
		Role:          models.DeriveRole(in.HostingIntent, in.GuestIntent),
		HostingIntent: in.HostingIntent,
		GuestIntent:   in.GuestIntent,
		OfferedDates:  stringArray(in.OfferedDates),
		DesiredDates:  stringArray(in.DesiredDates),
		Locale:        strings.TrimSpace(in.Locale),
		Name:          strings.TrimSpace(in.Name),
		Age:           in.Age,
		City:          strings.TrimSpace(in.City),
		Bio:           in.Bio,
		Languages:     stringArray(in.Languages),
		DietaryTags:   stringArray(in.DietaryTags),
		Surname:       trimmedPtr(in.Surname),
		Phone:         trimmedPtr(in.Phone),
		Address:       trimmedPtr(in.Address),
		IsVisible:     true,
		UpdatedAt:     now,
	}

	var saved models.Profile
	err := s.uow.WithinTx(ctx, func(r repositories.Repos) error {
		var err error
		saved, err = r.Profiles.Upsert(ctx, p)
		return err
	})
	if err != nil {
		return models.Profile{}, fmt.Errorf("save profile: %w", err)
	}
	return saved, nil
}

// AttachPhoto stores a photo URL for the user, creating an invisible draft
// profile when the user has not onboarded yet.
func (s *ProfileService) AttachPhoto(ctx context.Context, userID uuid.UUID, url string) (models.Profile, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return models.Profile{}, validationError("url is required")
	}

	now := nowMicro(s.now)
	var out models.Profile
	err := s.uow.WithinTx(ctx, func(r repositories.Repos) error {
		if _, err := r.Profiles.EnsureDraft(ctx, models.NewDraftProfile(userID, now)); err != nil {
			return fmt.Errorf("ensure draft: %w", err)
		}
		var err error
		out, err = r.Profiles.AddPhoto(ctx, userID, url, now)
		return err
	})
	if err != nil {
		return models.Profile{}, err
	}
	return out, nil
}

// SetVerified records the verification collaborator's outcome.
func (s *ProfileService) SetVerified(ctx context.Context, userID uuid.UUID, verified bool) error {
	if err := s.uow.Repos().Profiles.SetVerified(ctx, userID, verified); err != nil {
		return notFound("profile", err)
	}
	return nil
}

// summaries resolves the public summary of each user. Provider fields stand
// in for a missing profile, photo or name; deleted users keep only their id.
func summaries(ctx context.Context, r repositories.Repos, ids []uuid.UUID) (map[uuid.UUID]models.PublicSummary, error) {
	out := make(map[uuid.UUID]models.PublicSummary, len(ids))
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return out, nil
	}
	profiles, err := r.Profiles.ListByUserIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load profiles: %w", err)
	}
	users, err := r.Users.ListByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}

	owners := make(map[uuid.UUID]*models.User, len(users))
	for i := range users {
		owners[users[i].ID] = &users[i]
	}
	for _, p := range profiles {
		out[p.UserID] = p.Summary(owners[p.UserID])
	}
	for _, id := range ids {
		if _, ok := out[id]; ok {
			continue
		}
		if owner, ok := owners[id]; ok {
			out[id] = owner.Summary()
			continue
		}
		out[id] = models.PublicSummary{UserID: id}
	}
	return out, nil
}

func stringArray(in []string) pq.StringArray {
	out := make(pq.StringArray, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func trimmedPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

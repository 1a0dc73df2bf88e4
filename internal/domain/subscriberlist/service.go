package subscriberlist

import (
	"context"
	"database/sql"
	"strings"
	"unicode/utf8"

	"github.com/creatorhub/creatorhub-api/internal/domain/audience"
	"github.com/creatorhub/creatorhub-api/internal/domain/user"
)

// DefaultCustomListLimit caps custom lists per creator when no limit is configured
const DefaultCustomListLimit = 50

// AudienceResolver evaluates smart list filters; satisfied by *audience.Service
type AudienceResolver interface {
	ResolveSmartMembers(ctx context.Context, creatorID int64, f audience.Filters) (audience.UserSet, error)
	Preview(ctx context.Context, creatorID int64, f audience.Filters) (*audience.Preview, error)
}

// UserReader loads user records; satisfied by user.Repository
type UserReader interface {
	GetByIDs(ctx context.Context, ids []int64) ([]*user.User, error)
}

// Service is the list registry and membership store
type Service struct {
	repo            Repository
	audience        AudienceResolver
	users           UserReader
	customListLimit int
}

// NewService creates subscriber list service
func NewService(repo Repository, resolver AudienceResolver, users UserReader, customListLimit int) *Service {
	if customListLimit <= 0 {
		customListLimit = DefaultCustomListLimit
	}
	return &Service{
		repo:            repo,
		audience:        resolver,
		users:           users,
		customListLimit: customListLimit,
	}
}

// CreateList creates a list owned by creatorID
func (s *Service) CreateList(ctx context.Context, creatorID int64, req *CreateListRequest) (*SubscriberList, error) {
	name := strings.TrimSpace(req.Name)
	if err := validateName(name); err != nil {
		return nil, err
	}
	if err := validateDescription(req.Description); err != nil {
		return nil, err
	}

	list := &SubscriberList{
		CreatorID:   creatorID,
		Name:        name,
		Description: toNullString(req.Description),
		ListType:    req.ListType,
		IsActive:    true,
	}

	switch req.ListType {
	case ListTypeSmart:
		if req.Filters == nil {
			return nil, ErrFiltersRequired
		}
		if err := validateFilters(req.Filters); err != nil {
			return nil, err
		}
		list.Filters = req.Filters
	case ListTypeCustom:
	default:
		return nil, newValidationError("list_type", "Invalid list type. Must be: smart or custom")
	}

	exists, err := s.repo.ExistsByName(ctx, creatorID, name, 0)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateName
	}

	if list.IsCustom() {
		count, err := s.repo.CountByType(ctx, creatorID, ListTypeCustom)
		if err != nil {
			return nil, err
		}
		if count >= s.customListLimit {
			return nil, ErrQuotaExceeded
		}
	}

	if err := s.repo.Create(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

// GetList returns the list if creatorID owns it, ErrListNotFound otherwise
func (s *Service) GetList(ctx context.Context, listID, creatorID int64) (*SubscriberList, error) {
	list, err := s.repo.GetByID(ctx, listID)
	if err != nil {
		return nil, err
	}
	if !list.IsOwnedBy(creatorID) {
		return nil, ErrListNotFound
	}
	return list, nil
}

// UpdateList applies a patch; filters replace the stored document wholesale
func (s *Service) UpdateList(ctx context.Context, listID, creatorID int64, req *UpdateListRequest) (*SubscriberList, error) {
	list, err := s.GetList(ctx, listID, creatorID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if err := validateName(name); err != nil {
			return nil, err
		}
		exists, err := s.repo.ExistsByName(ctx, creatorID, name, list.ID)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, ErrDuplicateName
		}
		list.Name = name
	}

	if req.Description != nil {
		if err := validateDescription(req.Description); err != nil {
			return nil, err
		}
		list.Description = toNullString(req.Description)
	}

	// custom lists carry no filter document
	if req.Filters != nil && list.ListType == ListTypeSmart {
		if err := validateFilters(req.Filters); err != nil {
			return nil, err
		}
		list.Filters = req.Filters
	}

	if err := s.repo.Update(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

// DeleteList removes the list and all of its members
func (s *Service) DeleteList(ctx context.Context, listID, creatorID int64) error {
	if _, err := s.GetList(ctx, listID, creatorID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, listID)
}

// ToggleActive flips is_active
func (s *Service) ToggleActive(ctx context.Context, listID, creatorID int64) (*SubscriberList, error) {
	list, err := s.GetList(ctx, listID, creatorID)
	if err != nil {
		return nil, err
	}

	list.IsActive = !list.IsActive
	if err := s.repo.Update(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

// ListLists returns the creator's lists, newest first
func (s *Service) ListLists(ctx context.Context, creatorID int64, filter ListFilter) ([]*SubscriberList, error) {
	return s.repo.ListByCreator(ctx, creatorID, filter)
}

// PreviewSmartList resolves filters without persisting anything
func (s *Service) PreviewSmartList(ctx context.Context, creatorID int64, filters audience.Filters) (*audience.Preview, error) {
	if err := validateFilters(&filters); err != nil {
		return nil, err
	}
	return s.audience.Preview(ctx, creatorID, filters)
}

// ResolveMembers returns the list's current audience: stored rows for custom
// lists, evaluated filters (ascending id) for smart lists.
func (s *Service) ResolveMembers(ctx context.Context, list *SubscriberList) ([]int64, error) {
	if list.IsCustom() {
		return s.repo.AllMemberIDs(ctx, list.ID)
	}
	if list.Filters == nil {
		return []int64{}, nil
	}

	set, err := s.audience.ResolveSmartMembers(ctx, list.CreatorID, *list.Filters)
	if err != nil {
		return nil, err
	}
	return set.Sorted(), nil
}

func validateName(name string) error {
	n := utf8.RuneCountInString(name)
	if n < 3 || n > 50 {
		return newValidationError("name", "Name must be between 3 and 50 characters")
	}
	return nil
}

func validateDescription(desc *string) error {
	if desc != nil && utf8.RuneCountInString(*desc) > 200 {
		return newValidationError("description", "Value is too long (max: 200)")
	}
	return nil
}

func validateFilters(f *audience.Filters) error {
	errs := f.Validate()
	if errs == nil {
		return nil
	}
	fields := make(map[string]string, len(errs))
	for k, v := range errs {
		fields["filters."+k] = v
	}
	return &ValidationError{Fields: fields}
}

func toNullString(s *string) sql.NullString {
	if s == nil || *s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

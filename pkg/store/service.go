package store

import (
	"context"
	"errors"

	"github.com/charmbracelet/log"

	kerrors "github.com/matzehuels/kintree/pkg/errors"
	"github.com/matzehuels/kintree/pkg/family"
)

// Service applies input validation and ownership rules on top of a Store.
// It is what the CLI and HTTP layers call.
type Service struct {
	Store  Store
	Logger *log.Logger
}

// NewService wraps s. A nil logger uses log.Default().
func NewService(s Store, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.Default()
	}
	return &Service{Store: s, Logger: logger}
}

// Members returns all members sorted by name, then ID.
func (s *Service) Members(ctx context.Context) ([]family.Member, error) {
	ms, err := s.Store.List(ctx)
	if err != nil {
		return nil, kerrors.Wrap(kerrors.ErrCodeStorage, err, "failed to fetch family members")
	}
	return ms, nil
}

// Member returns one member.
func (s *Service) Member(ctx context.Context, id string) (family.Member, error) {
	if err := kerrors.ValidateMemberID(id); err != nil {
		return family.Member{}, err
	}
	m, err := s.Store.Get(ctx, id)
	if err != nil {
		return family.Member{}, notFound(err, id)
	}
	return m, nil
}

// UpdateMemberPosition pins a member at (x, y). Any actor may move any
// member. Transient store failures are retried.
func (s *Service) UpdateMemberPosition(ctx context.Context, id string, x, y float64, actor string) error {
	if err := kerrors.ValidateMemberID(id); err != nil {
		return err
	}
	if err := kerrors.ValidateActor(actor); err != nil {
		return err
	}
	if err := kerrors.ValidateCoordinates(x, y); err != nil {
		return err
	}

	m, err := s.Store.Get(ctx, id)
	if err != nil {
		return notFound(err, id)
	}

	err = RetryWithBackoff(ctx, func() error {
		return s.Store.SetPosition(ctx, id, x, y)
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return notFound(err, id)
		}
		return kerrors.Wrap(kerrors.ErrCodeStorage, err, "failed to update position")
	}
	s.Logger.Debug("saved position", "member", m.Name, "x", x, "y", y, "actor", actor)
	return nil
}

// ResetTreeLayout clears every stored position so the next layout is fully
// automatic.
func (s *Service) ResetTreeLayout(ctx context.Context, actor string) error {
	if err := kerrors.ValidateActor(actor); err != nil {
		return err
	}
	err := RetryWithBackoff(ctx, func() error {
		return s.Store.ClearPositions(ctx)
	})
	if err != nil {
		return kerrors.Wrap(kerrors.ErrCodeStorage, err, "failed to reset tree layout")
	}
	s.Logger.Info("reset tree layout", "actor", actor)
	return nil
}

// CreateMember validates m and stores it as added by actor. Stored
// positions on the input are ignored.
func (s *Service) CreateMember(ctx context.Context, m family.Member, actor string) (family.Member, error) {
	if err := kerrors.ValidateActor(actor); err != nil {
		return family.Member{}, err
	}
	m = family.Normalize(m).WithoutPosition()
	m.ID = ""
	m.AddedBy = actor
	if err := family.Validate(m); err != nil {
		return family.Member{}, err
	}
	if err := s.checkReferences(ctx, m); err != nil {
		return family.Member{}, err
	}

	created, err := s.Store.Create(ctx, m)
	if err != nil {
		return family.Member{}, kerrors.Wrap(kerrors.ErrCodeStorage, err, "failed to add family member")
	}
	s.Logger.Info("added member", "id", created.ID, "name", created.Name, "actor", actor)
	return created, nil
}

// UpdateMember replaces the editable fields of an existing member. Only the
// actor who added the member may edit it. The stored position, creator and
// creation time are preserved.
func (s *Service) UpdateMember(ctx context.Context, m family.Member, actor string) (family.Member, error) {
	if err := kerrors.ValidateMemberID(m.ID); err != nil {
		return family.Member{}, err
	}
	if err := kerrors.ValidateActor(actor); err != nil {
		return family.Member{}, err
	}
	existing, err := s.owned(ctx, m.ID, actor, "edit")
	if err != nil {
		return family.Member{}, err
	}

	m = family.Normalize(m)
	m.PositionX = existing.PositionX
	m.PositionY = existing.PositionY
	m.CustomPosition = existing.CustomPosition
	m.AddedBy = existing.AddedBy
	m.CreatedAt = existing.CreatedAt
	if err := family.Validate(m); err != nil {
		return family.Member{}, err
	}
	if err := s.checkReferences(ctx, m); err != nil {
		return family.Member{}, err
	}

	if err := s.Store.Update(ctx, m); err != nil {
		if errors.Is(err, ErrNotFound) {
			return family.Member{}, notFound(err, m.ID)
		}
		return family.Member{}, kerrors.Wrap(kerrors.ErrCodeStorage, err, "failed to update family member")
	}
	s.Logger.Info("updated member", "id", m.ID, "actor", actor)
	return m, nil
}

// DeleteMember removes a member and every reference to it. Only the actor
// who added the member may delete it.
func (s *Service) DeleteMember(ctx context.Context, id, actor string) error {
	if err := kerrors.ValidateMemberID(id); err != nil {
		return err
	}
	if err := kerrors.ValidateActor(actor); err != nil {
		return err
	}
	if _, err := s.owned(ctx, id, actor, "delete"); err != nil {
		return err
	}
	if err := s.Store.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return notFound(err, id)
		}
		return kerrors.Wrap(kerrors.ErrCodeStorage, err, "failed to delete family member")
	}
	s.Logger.Info("deleted member", "id", id, "actor", actor)
	return nil
}

func (s *Service) owned(ctx context.Context, id, actor, action string) (family.Member, error) {
	m, err := s.Store.Get(ctx, id)
	if err != nil {
		return family.Member{}, notFound(err, id)
	}
	if m.AddedBy != actor {
		return family.Member{}, kerrors.New(kerrors.ErrCodeForbidden,
			"you don't have permission to %s this family member", action)
	}
	return m, nil
}

// checkReferences rejects parent or spouse IDs that name no stored member.
func (s *Service) checkReferences(ctx context.Context, m family.Member) error {
	for _, ref := range []string{m.ParentID, m.Parent2ID, m.SpouseID} {
		if ref == "" {
			continue
		}
		if _, err := s.Store.Get(ctx, ref); err != nil {
			if errors.Is(err, ErrNotFound) {
				return kerrors.New(kerrors.ErrCodeInvalidRelationship, "related member %q does not exist", ref)
			}
			return kerrors.Wrap(kerrors.ErrCodeStorage, err, "failed to check related member")
		}
	}
	return nil
}

func notFound(err error, id string) error {
	if errors.Is(err, ErrNotFound) {
		return kerrors.Wrap(kerrors.ErrCodeMemberNotFound, err, "family member not found: %s", id)
	}
	return kerrors.Wrap(kerrors.ErrCodeStorage, err, "failed to fetch family member")
}

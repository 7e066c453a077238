package service

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/vonm84/qah-app/internal/birthday"
	"github.com/vonm84/qah-app/internal/domain"
	"github.com/vonm84/qah-app/internal/events"
	"github.com/vonm84/qah-app/internal/repository"
)

// MemberService 成员管理服务接口
type MemberService interface {
	// Register creates the member if the name is free, otherwise returns the
	// stored profile unchanged. created reports which happened.
	Register(ctx context.Context, profile domain.Member) (m *domain.Member, created bool, err error)
	Get(ctx context.Context, name string) (*domain.Member, error)
	// List is ordered by name; the admin account is left out unless includeAdmin.
	List(ctx context.Context, includeAdmin bool) ([]domain.Member, error)
	UpdateProfile(ctx context.Context, profile domain.Member) (*domain.Member, error)
	Delete(ctx context.Context, name string) error

	IsAdmin(name string) bool
	AdminName() string

	// Birthdays ranks non-admin members by their next birthday.
	Birthdays(ctx context.Context, today domain.Date) ([]birthday.Entry, error)
}

type memberService struct {
	repo      repository.MembersRepository
	publisher events.Publisher
	adminName string
	logger    *zap.Logger
}

func NewMemberService(repo repository.MembersRepository, publisher events.Publisher, adminName string, logger *zap.Logger) MemberService {
	return &memberService{repo: repo, publisher: publisher, adminName: adminName, logger: logger}
}

func (s *memberService) IsAdmin(name string) bool {
	return name != "" && name == s.adminName
}

func (s *memberService) AdminName() string { return s.adminName }

func (s *memberService) decorate(m *domain.Member) {
	m.IsAdmin = s.IsAdmin(m.Name)
}

func (s *memberService) Register(ctx context.Context, profile domain.Member) (*domain.Member, bool, error) {
	if err := profile.Normalize(); err != nil {
		return nil, false, err
	}
	created, err := s.repo.CreateMember(ctx, &profile)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create member: %w", err)
	}
	if !created {
		existing, err := s.Get(ctx, profile.Name)
		if err != nil {
			return nil, false, err
		}
		return existing, false, nil
	}

	s.logger.Info("Member registered", zap.String("member_name", profile.Name))
	s.publisher.Publish(ctx, events.ChangeEvent{EventType: events.MemberRegistered, MemberName: profile.Name})
	s.decorate(&profile)
	return &profile, true, nil
}

func (s *memberService) Get(ctx context.Context, name string) (*domain.Member, error) {
	m, err := s.repo.GetMember(ctx, name)
	if err != nil {
		return nil, err
	}
	s.decorate(m)
	return m, nil
}

func (s *memberService) List(ctx context.Context, includeAdmin bool) ([]domain.Member, error) {
	all, err := s.repo.ListMembers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	out := make([]domain.Member, 0, len(all))
	for _, m := range all {
		s.decorate(&m)
		if m.IsAdmin && !includeAdmin {
			continue
		}
		out = append(out, m)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *memberService) UpdateProfile(ctx context.Context, profile domain.Member) (*domain.Member, error) {
	if err := profile.Normalize(); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateMember(ctx, &profile); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update member: %w", err)
	}
	s.decorate(&profile)
	return &profile, nil
}

func (s *memberService) Delete(ctx context.Context, name string) error {
	if s.IsAdmin(name) {
		return fmt.Errorf("the admin account cannot be deleted: %w", domain.ErrForbidden)
	}
	if err := s.repo.DeleteMember(ctx, name); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to delete member: %w", err)
	}
	s.logger.Info("Member deleted", zap.String("member_name", name))
	s.publisher.Publish(ctx, events.ChangeEvent{EventType: events.MemberDeleted, MemberName: name})
	return nil
}

func (s *memberService) Birthdays(ctx context.Context, today domain.Date) ([]birthday.Entry, error) {
	members, err := s.List(ctx, false)
	if err != nil {
		return nil, err
	}
	return birthday.Rank(members, today), nil
}

package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/nurpe/drillfleet/internal/cache"
	"github.com/nurpe/drillfleet/internal/model"
)

const UnknownWorker = "Bilinmeyen Çalışan"

type WorkforceAPI interface {
	ListUsers(ctx context.Context, role model.Role) ([]model.User, error)
	CreateUser(ctx context.Context, in model.UserInput) (*model.User, error)
	UpdateUser(ctx context.Context, userID int64, in model.UserInput) (*model.User, error)
	DeleteUser(ctx context.Context, userID int64) error
	ActiveAssignments(ctx context.Context) ([]model.WorkerAssignment, error)
	AssignWorker(ctx context.Context, machineID, workerID int64) error
	UnassignWorker(ctx context.Context, machineID, workerID int64) error
}

// WorkforceService covers users and worker-to-machine assignments. Assignments are
// independent of shifts.
type WorkforceService struct {
	api   WorkforceAPI
	cache cache.Store
	log   zerolog.Logger
}

func NewWorkforceService(client WorkforceAPI, store cache.Store, log zerolog.Logger) *WorkforceService {
	return &WorkforceService{
		api:   client,
		cache: store,
		log:   log.With().Str("component", "workforce").Logger(),
	}
}

func (s *WorkforceService) Users(ctx context.Context, role model.Role) ([]model.User, error) {
	return cache.Fetch(ctx, s.cache, s.log, cache.Key("users", role), func(ctx context.Context) ([]model.User, error) {
		return s.api.ListUsers(ctx, role)
	})
}

func (s *WorkforceService) CreateUser(ctx context.Context, in model.UserInput) (*model.User, error) {
	if in.Email == "" || in.Password == "" {
		return nil, fmt.Errorf("%w: email and password are required", ErrInvalidInput)
	}
	if err := model.Validate(in); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	user, err := s.api.CreateUser(ctx, in)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, "users")
	return user, nil
}

func (s *WorkforceService) UpdateUser(ctx context.Context, userID int64, in model.UserInput) (*model.User, error) {
	if err := model.Validate(in); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	user, err := s.api.UpdateUser(ctx, userID, in)
	if err != nil {
		return nil, notFound(err)
	}
	s.invalidate(ctx, "users")
	return user, nil
}

func (s *WorkforceService) DeleteUser(ctx context.Context, userID int64) error {
	if err := s.api.DeleteUser(ctx, userID); err != nil {
		return notFound(err)
	}
	s.invalidate(ctx, "users")
	s.invalidate(ctx, "assignments")
	return nil
}

func (s *WorkforceService) Assignments(ctx context.Context) ([]model.WorkerAssignment, error) {
	return cache.Fetch(ctx, s.cache, s.log, "assignments", s.api.ActiveAssignments)
}

func (s *WorkforceService) Assign(ctx context.Context, machineID, workerID int64) error {
	if err := s.api.AssignWorker(ctx, machineID, workerID); err != nil {
		return err
	}
	s.invalidate(ctx, "assignments")
	return nil
}

func (s *WorkforceService) Unassign(ctx context.Context, machineID, workerID int64) error {
	if err := s.api.UnassignWorker(ctx, machineID, workerID); err != nil {
		return err
	}
	s.invalidate(ctx, "assignments")
	return nil
}

// WorkerNames maps user ids to "name surname" for display.
func (s *WorkforceService) WorkerNames(ctx context.Context) (map[int64]string, error) {
	users, err := s.Users(ctx, "")
	if err != nil {
		return nil, err
	}
	names := make(map[int64]string, len(users))
	for _, u := range users {
		names[u.ID] = strings.TrimSpace(u.FullName())
	}
	return names, nil
}

// WorkerName resolves one id against names, falling back to the unknown-worker label.
func WorkerName(names map[int64]string, id int64) string {
	if n, ok := names[id]; ok && n != "" {
		return n
	}
	return UnknownWorker
}

// CanManageWorkers reports whether the user may edit users and assignments.
func CanManageWorkers(user *model.User) bool {
	return user != nil && (user.Role == model.RoleAdmin || user.Role == model.RoleEngineer)
}

func RoleLabel(role model.Role) string {
	switch role {
	case model.RoleWorker:
		return "İşçi"
	case model.RoleEngineer:
		return "Mühendis"
	case model.RoleManager:
		return "Yönetici"
	case model.RoleAdmin:
		return "Admin"
	default:
		return string(role)
	}
}

func (s *WorkforceService) invalidate(ctx context.Context, prefix string) {
	if err := s.cache.Invalidate(ctx, prefix); err != nil {
		s.log.Warn().Err(err).Str("prefix", prefix).Msg("workforce invalidation failed")
	}
}

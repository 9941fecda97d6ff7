package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/neurodesk/helpdesk-service/internal/domain"
	"github.com/neurodesk/helpdesk-service/internal/repository"
	"github.com/neurodesk/helpdesk-service/pkg/util"
)

const directoryCacheTTL = 30 * time.Second

// DirectoryService answers "does this user / technician exist" questions for
// the ticket workflow. Positive answers are cached in Redis for a short TTL;
// cache failures degrade silently to the database.
type DirectoryService struct {
	users       repository.UserRepository
	technicians repository.TechnicianRepository
	cache       *redis.Client
	logger      *zap.Logger
}

func NewDirectoryService(users repository.UserRepository, technicians repository.TechnicianRepository, cache *redis.Client, logger *zap.Logger) *DirectoryService {
	return &DirectoryService{
		users:       users,
		technicians: technicians,
		cache:       cache,
		logger:      logger,
	}
}

func (s *DirectoryService) UserExists(ctx context.Context, id int64) (bool, error) {
	return s.exists(ctx, "directory:user:"+strconv.FormatInt(id, 10), func() (bool, error) {
		_, err := s.users.GetByID(ctx, id)
		if err != nil {
			if util.IsNotFound(err) {
				return false, nil
			}
			return false, err
		}
		return true, nil
	})
}

func (s *DirectoryService) TechnicianExists(ctx context.Context, id int64) (bool, error) {
	return s.exists(ctx, "directory:technician:"+strconv.FormatInt(id, 10), func() (bool, error) {
		_, err := s.technicians.GetByID(ctx, id)
		if err != nil {
			if util.IsNotFound(err) {
				return false, nil
			}
			return false, err
		}
		return true, nil
	})
}

// GetUserSummary loads the embeddable summary for ticket responses.
func (s *DirectoryService) GetUserSummary(ctx context.Context, id int64) (*domain.UserSummary, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return user.Summary(), nil
}

// GetTechnicianSummary loads the technician plus its linked user for embedding.
func (s *DirectoryService) GetTechnicianSummary(ctx context.Context, id int64) (*domain.TechnicianSummary, error) {
	technician, err := s.technicians.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	summary := technician.Summary()
	if user, err := s.users.GetByID(ctx, technician.UserID); err == nil {
		summary.User = user.Summary()
	}
	return summary, nil
}

// exists consults the cache before the backing lookup. Only positive results
// are cached so a freshly created record never waits out a negative entry.
func (s *DirectoryService) exists(ctx context.Context, key string, lookup func() (bool, error)) (bool, error) {
	if s.cache != nil {
		val, err := s.cache.Get(ctx, key).Result()
		if err == nil && val == "1" {
			return true, nil
		}
		if err != nil && err != redis.Nil {
			s.logger.Warn("directory cache read failed", zap.String("key", key), zap.Error(err))
		}
	}

	found, err := lookup()
	if err != nil {
		return false, fmt.Errorf("directory lookup: %w", err)
	}

	if found && s.cache != nil {
		if err := s.cache.Set(ctx, key, "1", directoryCacheTTL).Err(); err != nil {
			s.logger.Warn("directory cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return found, nil
}

package repository

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/example/fooddash/pkg/apperr"
	"github.com/example/fooddash/pkg/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// UserCache is the read-through cache in front of the user table.
type UserCache interface {
	CacheUser(ctx context.Context, user *models.User) error
	GetUserCache(ctx context.Context, userID string) (*models.User, error)
	InvalidateUser(ctx context.Context, userID string) error
}

type UserRepository struct {
	db        *gorm.DB
	cache     UserCache
	opTimeout time.Duration
	logger    *zap.Logger
}

// NewUserRepository builds the account store. cache may be nil; a
// non-positive opTimeout falls back to the store default.
func NewUserRepository(db *gorm.DB, cache UserCache, opTimeout time.Duration, logger *zap.Logger) *UserRepository {
	if opTimeout <= 0 {
		opTimeout = defaultOpTimeout
	}
	return &UserRepository{db: db, cache: cache, opTimeout: opTimeout, logger: logger.Named("users")}
}

// conn returns a session bounded by the store timeout.
func (r *UserRepository) conn(ctx context.Context) (*gorm.DB, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(ctx, r.opTimeout)
	return r.db.WithContext(ctx), cancel
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))

	db, cancel := r.conn(ctx)
	defer cancel()

	var count int64
	if err := db.Model(&models.User{}).Where("email = ?", user.Email).Count(&count).Error; err != nil {
		return r.translate("count users", err)
	}
	if count > 0 {
		return apperr.Conflict(apperr.CodeDuplicate, "Email is already registered")
	}

	if err := db.Create(user).Error; err != nil {
		return r.translate("create user", err)
	}
	r.cacheUser(ctx, user)
	return nil
}

// GetByID serves from the cache when possible. Cached users carry no
// password hash.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	if r.cache != nil {
		user, err := r.cache.GetUserCache(ctx, id)
		if err == nil {
			return user, nil
		}
		if !errors.Is(err, ErrCacheMiss) {
			r.logger.Warn("User cache read failed", zap.String("user_id", id), zap.Error(err))
		}
	}

	db, cancel := r.conn(ctx)
	defer cancel()

	var user models.User
	if err := db.Where("id = ?", id).First(&user).Error; err != nil {
		return nil, r.translate("get user", err)
	}
	r.cacheUser(ctx, &user)
	return &user, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	db, cancel := r.conn(ctx)
	defer cancel()

	var user models.User
	err := db.
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&user).Error
	if err != nil {
		return nil, r.translate("get user by email", err)
	}
	return &user, nil
}

// UpdateProfile applies the non-empty fields of changes.
func (r *UserRepository) UpdateProfile(ctx context.Context, id string, changes map[string]interface{}) (*models.User, error) {
	db, cancel := r.conn(ctx)
	defer cancel()

	var user models.User
	if err := db.Where("id = ?", id).First(&user).Error; err != nil {
		return nil, r.translate("get user", err)
	}
	if len(changes) > 0 {
		if err := db.Model(&user).Updates(changes).Error; err != nil {
			return nil, r.translate("update user", err)
		}
		if err := db.Where("id = ?", id).First(&user).Error; err != nil {
			return nil, r.translate("reload user", err)
		}
	}

	if r.cache != nil {
		if err := r.cache.InvalidateUser(ctx, id); err != nil {
			r.logger.Warn("Failed to invalidate user cache", zap.String("user_id", id), zap.Error(err))
		}
	}
	return &user, nil
}

func (r *UserRepository) cacheUser(ctx context.Context, user *models.User) {
	if r.cache == nil {
		return
	}
	if err := r.cache.CacheUser(ctx, user); err != nil {
		r.logger.Warn("Failed to cache user", zap.String("user_id", user.ID), zap.Error(err))
	}
}

func (r *UserRepository) translate(op string, err error) error {
	var netErr net.Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperr.NotFound("User not found")
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperr.Conflict(apperr.CodeDuplicate, "Email is already registered")
	case errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled),
		errors.Is(err, driver.ErrBadConn),
		errors.As(err, &netErr):
		return apperr.Unavailable("store unavailable", fmt.Errorf("%s: %w", op, err))
	}
	return apperr.Internal("store failure", fmt.Errorf("%s: %w", op, err))
}

package repo

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/akulov/points-api/internal/models"
)

var ErrUserNotFound = errors.New("user not found")

func (r *GormRepo) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// UserExists checks the pre-insert uniqueness predicate: exact byte match on
// either column, no case folding.
func (r *GormRepo) UserExists(ctx context.Context, username, email string) (bool, error) {
	var count int64
	if err := r.DB.WithContext(ctx).Model(&models.User{}).
		Where("email = ? OR username = ?", email, username).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GormRepo) CreateUser(ctx context.Context, u *models.User) error {
	return r.DB.WithContext(ctx).Create(u).Error
}

func (r *GormRepo) FindAllUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := r.DB.WithContext(ctx).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *GormRepo) FindUsersByRole(ctx context.Context, role string) ([]models.User, error) {
	var users []models.User
	if err := r.DB.WithContext(ctx).Where("role = ?", role).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// FindUsersByRoleSorted returns the role's rows ordered by points. Anything
// other than "asc" (any case) falls back to descending, matching the public
// leaderboard behavior.
func (r *GormRepo) FindUsersByRoleSorted(ctx context.Context, role, order string) ([]models.User, error) {
	dir := "DESC"
	if strings.EqualFold(order, "asc") {
		dir = "ASC"
	}
	var users []models.User
	if err := r.DB.WithContext(ctx).
		Where("role = ?", role).
		Order("points " + dir).
		Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// DeleteUser removes the row physically and returns how many rows matched so
// the caller can tell "deleted" from "was never there".
func (r *GormRepo) DeleteUser(ctx context.Context, id string) (int64, error) {
	result := r.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.User{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (r *GormRepo) UpdateUserPoints(ctx context.Context, id string, points int) (int64, error) {
	result := r.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		Update("points", points)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

package repo

import (
	"context"

	"github.com/akulov/points-api/internal/models"
	"github.com/akulov/points-api/pkg/jwthelp"
)

// InsertRevocation appends to the ledger. No existence or validity check on
// the token string: revoking garbage is accepted and simply recorded.
func (r *GormRepo) InsertRevocation(ctx context.Context, tokenStr, userLabel string) error {
	record := models.RevokedToken{
		Token:     jwthelp.Sha256Hex(tokenStr),
		UserLabel: userLabel,
		Revoked:   true,
	}
	return r.DB.WithContext(ctx).Create(&record).Error
}

// IsTokenRevoked is on the hot path of every authenticated request: a single
// point lookup against the indexed token column.
func (r *GormRepo) IsTokenRevoked(ctx context.Context, tokenStr string) (bool, error) {
	var count int64
	if err := r.DB.WithContext(ctx).Model(&models.RevokedToken{}).
		Where("token = ? AND revoked = ?", jwthelp.Sha256Hex(tokenStr), true).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

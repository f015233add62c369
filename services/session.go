package services

import (
	"context"
	"errors"
	"time"

	"campuslink/models"

	"gorm.io/gorm"
)

// SessionService backs the idle logout. It never touches workflow state.
type SessionService struct {
	base
}

// Find loads the session a token was issued for.
func (s *SessionService) Find(ctx context.Context, tokenID string) (*models.Session, error) {
	var session models.Session
	err := s.db.WithContext(ctx).Where("token_id = ?", tokenID).First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newError(KindUnauthenticated, "Session expired, please log in again")
		}
		return nil, err
	}
	return &session, nil
}

// Touch records activity on a session.
func (s *SessionService) Touch(ctx context.Context, sessionID uint) error {
	return s.db.WithContext(ctx).Model(&models.Session{}).
		Where("id = ?", sessionID).
		Update("last_activity", s.timestamp()).Error
}

// End removes a session so its token stops working.
func (s *SessionService) End(ctx context.Context, tokenID string) error {
	return s.db.WithContext(ctx).Unscoped().Where("token_id = ?", tokenID).Delete(&models.Session{}).Error
}

// PurgeIdle removes sessions idle for longer than timeout.
func (s *SessionService) PurgeIdle(ctx context.Context, timeout time.Duration) (int64, error) {
	cutoff := s.timestamp().Add(-timeout)
	res := s.db.WithContext(ctx).Unscoped().Where("last_activity < ?", cutoff).Delete(&models.Session{})
	return res.RowsAffected, res.Error
}

// Now is the clock the services run on.
func (s *SessionService) Now() time.Time {
	return s.timestamp()
}

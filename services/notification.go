package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"campuslink/models"

	"gorm.io/gorm"
)

// Inbox tabs
const (
	TabAll      = "all"
	TabFavorite = "favorite"
	TabArchive  = "archive"
)

// Mutations a recipient may apply to one notification
const (
	ActionFavorite = "favorite"
	ActionRead     = "read"
	ActionArchive  = "archive"
	ActionDelete   = "delete"
)

// NotificationService is the append-only ledger. Rows are written by the
// state machines inside their transactions and only flagged by recipients.
type NotificationService struct {
	db    *gorm.DB
	clock func() time.Time
}

type NotificationInput struct {
	RecipientID      uint
	SenderID         *uint
	Type             string
	Title            string
	Message          string
	RelatedPostingID *uint
}

type NotificationList struct {
	Items         []models.Notification `json:"notifications"`
	UnreadCount   int64                 `json:"unread_count"`
	FavoriteCount int64                 `json:"favorite_count"`
	ArchiveCount  int64                 `json:"archive_count"`
}

// Append inserts one notification using the caller's transaction.
func (s *NotificationService) Append(tx *gorm.DB, in NotificationInput) error {
	n := models.Notification{
		RecipientID:      in.RecipientID,
		SenderID:         in.SenderID,
		Type:             in.Type,
		Title:            in.Title,
		Message:          in.Message,
		Timestamp:        s.clock().UTC(),
		RelatedPostingID: in.RelatedPostingID,
	}
	if err := tx.Create(&n).Error; err != nil {
		return fmt.Errorf("append notification: %w", err)
	}
	return nil
}

// appendToAdmins fans one notification out to every admin account.
func (s *NotificationService) appendToAdmins(tx *gorm.DB, in NotificationInput) error {
	var adminIDs []uint
	if err := tx.Model(&models.Profile{}).
		Where("role = ?", models.RoleAdmin).
		Order("user_id").
		Pluck("user_id", &adminIDs).Error; err != nil {
		return fmt.Errorf("load admins: %w", err)
	}
	for _, id := range adminIDs {
		in.RecipientID = id
		if err := s.Append(tx, in); err != nil {
			return err
		}
	}
	return nil
}

// List returns one inbox tab newest first. Listed non-archived rows are marked
// read; the returned items keep the flags they had before the view while the
// counts reflect the state after it.
func (s *NotificationService) List(ctx context.Context, userID uint, tab string) (*NotificationList, error) {
	if tab == "" {
		tab = TabAll
	}
	out := &NotificationList{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx.Where("recipient_id = ?", userID)
		switch tab {
		case TabAll:
			q = q.Where("is_archived = ?", false)
		case TabFavorite:
			q = q.Where("is_favorite = ? AND is_archived = ?", true, false)
		case TabArchive:
			q = q.Where("is_archived = ?", true)
		default:
			return validationError("Invalid tab", map[string]string{"tab": "tab must be one of: all, favorite, archive"})
		}
		if err := q.Order("timestamp desc, id desc").Find(&out.Items).Error; err != nil {
			return err
		}

		var unread []uint
		for _, n := range out.Items {
			if !n.Read && !n.IsArchived {
				unread = append(unread, n.ID)
			}
		}
		if len(unread) > 0 {
			if err := tx.Model(&models.Notification{}).
				Where("id IN ?", unread).
				Update("is_read", true).Error; err != nil {
				return err
			}
		}

		return s.counts(tx, userID, out)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *NotificationService) counts(tx *gorm.DB, userID uint, out *NotificationList) error {
	base := tx.Model(&models.Notification{}).Where("recipient_id = ?", userID)
	if err := base.Session(&gorm.Session{}).
		Where("is_read = ? AND is_archived = ?", false, false).
		Count(&out.UnreadCount).Error; err != nil {
		return err
	}
	if err := base.Session(&gorm.Session{}).
		Where("is_favorite = ? AND is_archived = ?", true, false).
		Count(&out.FavoriteCount).Error; err != nil {
		return err
	}
	return base.Session(&gorm.Session{}).
		Where("is_archived = ?", true).
		Count(&out.ArchiveCount).Error
}

// Mutate applies a recipient action to one notification.
func (s *NotificationService) Mutate(ctx context.Context, userID, id uint, action string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n models.Notification
		if err := tx.First(&n, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return newError(KindNotFound, "Notification not found")
			}
			return err
		}
		if n.RecipientID != userID {
			return newError(KindAccessDenied, "You can only manage your own notifications")
		}

		q := tx.Model(&models.Notification{}).Where("id = ?", id)
		switch action {
		case ActionFavorite:
			return q.Update("is_favorite", gorm.Expr("NOT is_favorite")).Error
		case ActionRead:
			return q.Update("is_read", gorm.Expr("NOT is_read")).Error
		case ActionArchive:
			return q.Updates(map[string]any{"is_archived": true, "is_read": true}).Error
		case ActionDelete:
			return tx.Delete(&models.Notification{}, id).Error
		}
		return validationError("Invalid action", map[string]string{"action": "action must be one of: favorite, read, archive, delete"})
	})
}

// MarkAllRead flags every unread inbox notification as read.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID uint) (int64, error) {
	res := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ? AND is_archived = ?", userID, false, false).
		Update("is_read", true)
	return res.RowsAffected, res.Error
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ? AND is_archived = ?", userID, false, false).
		Count(&count).Error
	return count, err
}

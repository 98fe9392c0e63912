package notifications

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/pestilink/pestilink-backend/pkg/db/models"
	"github.com/pestilink/pestilink-backend/pkg/enums"
	"github.com/pestilink/pestilink-backend/pkg/pagination"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository exposes persistence helpers for notifications.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, notification *models.Notification) error
	List(ctx context.Context, params listNotificationsParams) ([]models.Notification, *pagination.Cursor, error)
	MarkRead(ctx context.Context, actor Actor, notificationID uuid.UUID, now time.Time) (notificationMarkResult, error)
	MarkAllRead(ctx context.Context, actor Actor, now time.Time) (int64, error)
}

// Actor identifies whose feed is being read.
type Actor struct {
	UserID uuid.UUID
	Role   enums.UserRole
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a notifications repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

type listNotificationsParams struct {
	Actor      Actor
	Limit      int
	Cursor     *pagination.Cursor
	UnreadOnly bool
}

type notificationMarkResult struct {
	Updated bool
	Found   bool
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, notification *models.Notification) error {
	return r.db.WithContext(ctx).Create(notification).Error
}

// scopeForActor restricts the query to the actor's feed. Farmers also see
// broadcast entries; shop owners only see entries addressed to them.
func scopeForActor(query *gorm.DB, actor Actor) *gorm.DB {
	if actor.Role == enums.UserRoleFarmer {
		return query.Where("(farmer_id = ? OR broadcast = ?)", actor.UserID, true)
	}
	return query.Where("shop_owner_id = ?", actor.UserID)
}

// scopeUnread filters to entries the actor has not read. Addressed entries
// carry read_at on the row; broadcast entries are shared, so each farmer's
// read state is a notification_reads receipt.
func scopeUnread(query *gorm.DB, actor Actor) *gorm.DB {
	if actor.Role == enums.UserRoleFarmer {
		return query.Where(
			"((broadcast = ? AND read_at IS NULL) OR (broadcast = ? AND NOT EXISTS (SELECT 1 FROM notification_reads nr WHERE nr.notification_id = notifications.id AND nr.user_id = ?)))",
			false, true, actor.UserID,
		)
	}
	return query.Where("read_at IS NULL")
}

func (r *repositoryImpl) List(ctx context.Context, params listNotificationsParams) ([]models.Notification, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)
	query := scopeForActor(r.db.WithContext(ctx).Model(&models.Notification{}), params.Actor)
	if params.UnreadOnly {
		query = scopeUnread(query, params.Actor)
	}
	if params.Cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var notifications []models.Notification
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&notifications).Error; err != nil {
		return nil, nil, err
	}

	if len(notifications) > normalized {
		next := notifications[normalized]
		notifications = notifications[:normalized]
		return notifications, &pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID}, nil
	}
	return notifications, nil, nil
}

func (r *repositoryImpl) MarkRead(ctx context.Context, actor Actor, notificationID uuid.UUID, now time.Time) (notificationMarkResult, error) {
	var notification models.Notification
	err := scopeForActor(r.db.WithContext(ctx).Model(&models.Notification{}), actor).
		Where("id = ?", notificationID).
		First(&notification).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notificationMarkResult{}, nil
	}
	if err != nil {
		return notificationMarkResult{}, err
	}

	// A broadcast row is shared by every farmer; the receipt keeps one
	// reader's mark from hiding the entry in everyone else's feed.
	if notification.Broadcast {
		result := r.db.WithContext(ctx).
			Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.NotificationRead{
				NotificationID: notification.ID,
				UserID:         actor.UserID,
				ReadAt:         now,
			})
		if result.Error != nil {
			return notificationMarkResult{}, result.Error
		}
		return notificationMarkResult{Found: true, Updated: result.RowsAffected > 0}, nil
	}

	result := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND read_at IS NULL", notification.ID).
		UpdateColumn("read_at", now)
	if result.Error != nil {
		return notificationMarkResult{}, result.Error
	}
	return notificationMarkResult{Found: true, Updated: result.RowsAffected > 0}, nil
}

func (r *repositoryImpl) MarkAllRead(ctx context.Context, actor Actor, now time.Time) (int64, error) {
	direct := r.db.WithContext(ctx).Model(&models.Notification{})
	if actor.Role == enums.UserRoleFarmer {
		direct = direct.Where("farmer_id = ?", actor.UserID)
	} else {
		direct = direct.Where("shop_owner_id = ?", actor.UserID)
	}
	result := direct.Where("read_at IS NULL").UpdateColumn("read_at", now)
	if result.Error != nil {
		return 0, result.Error
	}
	updated := result.RowsAffected

	if actor.Role == enums.UserRoleFarmer {
		receipts := r.db.WithContext(ctx).Exec(`
			INSERT INTO notification_reads (notification_id, user_id, read_at)
			SELECT n.id, ?, ?
			FROM notifications n
			WHERE n.broadcast = ?
			  AND NOT EXISTS (
				SELECT 1 FROM notification_reads nr
				WHERE nr.notification_id = n.id AND nr.user_id = ?
			  )
		`, actor.UserID, now, true, actor.UserID)
		if receipts.Error != nil {
			return 0, receipts.Error
		}
		updated += receipts.RowsAffected
	}
	return updated, nil
}

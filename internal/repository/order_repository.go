package repository

import (
	"time"

	"order_service/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OrderFilter narrows order listings. Zero values mean "no filter".
type OrderFilter struct {
	UserID        uint
	SellerID      uint
	OrderStatuses []string
	PaymentStatus string
	StartDate     *time.Time
	EndDate       *time.Time
	CompletedOnly bool
}

type OrderRepository interface {
	// CreateWithItems persists one order and its item snapshots in a
	// single transaction.
	CreateWithItems(order *models.Order, items []*models.OrderItem) error
	GetByID(id uint) (*models.Order, error)
	GetByIDs(ids []uint) ([]models.Order, error)
	List(filter OrderFilter) ([]models.Order, error)
	// UpdateWithLock loads the order under a row lock, applies the
	// mutation and saves it, all inside one transaction. Prevents lost
	// updates on concurrent status changes.
	UpdateWithLock(id uint, apply func(*models.Order) error) (*models.Order, error)
	// UpdateStatuses writes order_status and payment_status directly,
	// bypassing the completed guard. Used for the refund write-back from
	// a completed return; last write wins.
	UpdateStatuses(id uint, orderStatus, paymentStatus string) error
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) CreateWithItems(order *models.Order, items []*models.OrderItem) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(order).Error; err != nil {
			return err
		}
		for _, item := range items {
			item.OrderID = order.ID
		}
		return tx.Create(&items).Error
	})
}

func (r *orderRepository) GetByID(id uint) (*models.Order, error) {
	var order models.Order
	err := r.db.First(&order, id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) GetByIDs(ids []uint) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.Where("id IN ?", ids).Find(&orders).Error
	return orders, err
}

func (r *orderRepository) List(filter OrderFilter) ([]models.Order, error) {
	query := r.db.Model(&models.Order{})

	if filter.UserID > 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.SellerID > 0 {
		query = query.Where("seller_id = ?", filter.SellerID)
	}
	if len(filter.OrderStatuses) > 0 {
		query = query.Where("order_status IN ?", filter.OrderStatuses)
	}
	if filter.PaymentStatus != "" {
		query = query.Where("payment_status = ?", filter.PaymentStatus)
	}
	if filter.StartDate != nil && filter.EndDate != nil {
		query = query.Where("created_at BETWEEN ? AND ?", *filter.StartDate, *filter.EndDate)
	}
	if filter.CompletedOnly {
		query = query.Where("is_completed = ?", true)
	}

	var orders []models.Order
	// Cancelled orders sink to the bottom, newest first otherwise.
	err := query.
		Order("CASE WHEN order_status = 'cancelled' THEN 1 ELSE 0 END ASC").
		Order("created_at DESC").
		Find(&orders).Error
	return orders, err
}

func (r *orderRepository) UpdateWithLock(id uint, apply func(*models.Order) error) (*models.Order, error) {
	var order models.Order
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&order, id).Error; err != nil {
			return err
		}
		if err := apply(&order); err != nil {
			return err
		}
		return tx.Save(&order).Error
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) UpdateStatuses(id uint, orderStatus, paymentStatus string) error {
	return r.db.Model(&models.Order{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"order_status":   orderStatus,
			"payment_status": paymentStatus,
		}).Error
}

package repository

import (
	"time"

	"order_service/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ReturnedOrderFilter narrows returned order listings.
type ReturnedOrderFilter struct {
	SellerID            uint
	UserID              uint
	OrderStatus         string
	PaymentRefundStatus string
	StartDate           *time.Time
	EndDate             *time.Time
	CompletedOnly       bool
}

type ReturnedOrderRepository interface {
	// CreateFromRequest runs the acceptance transaction: the responded
	// request is saved, the returned order created and every claimed
	// item relinked to it.
	CreateFromRequest(request *models.OrderReturnRequest, returnedOrder *models.ReturnedOrder, items []*models.ReturnedOrderItem) error
	GetByID(id uint) (*models.ReturnedOrder, error)
	List(filter ReturnedOrderFilter) ([]models.ReturnedOrder, error)
	// UpdateWithLock mirrors OrderRepository.UpdateWithLock for the
	// returned order aggregate.
	UpdateWithLock(id uint, apply func(*models.ReturnedOrder) error) (*models.ReturnedOrder, error)
}

type returnedOrderRepository struct {
	db *gorm.DB
}

func NewReturnedOrderRepository(db *gorm.DB) ReturnedOrderRepository {
	return &returnedOrderRepository{db: db}
}

func (r *returnedOrderRepository) CreateFromRequest(request *models.OrderReturnRequest, returnedOrder *models.ReturnedOrder, items []*models.ReturnedOrderItem) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(request).Error; err != nil {
			return err
		}
		if err := tx.Create(returnedOrder).Error; err != nil {
			return err
		}
		for _, item := range items {
			item.ReturnedOrderID = &returnedOrder.ID
			if err := tx.Save(item).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *returnedOrderRepository) GetByID(id uint) (*models.ReturnedOrder, error) {
	var returnedOrder models.ReturnedOrder
	err := r.db.First(&returnedOrder, id).Error
	if err != nil {
		return nil, err
	}
	return &returnedOrder, nil
}

func (r *returnedOrderRepository) List(filter ReturnedOrderFilter) ([]models.ReturnedOrder, error) {
	query := r.db.Model(&models.ReturnedOrder{})
	if filter.SellerID > 0 {
		query = query.Where("seller_id = ?", filter.SellerID)
	}
	if filter.UserID > 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.OrderStatus != "" {
		query = query.Where("order_status = ?", filter.OrderStatus)
	}
	if filter.PaymentRefundStatus != "" {
		query = query.Where("payment_refund_status = ?", filter.PaymentRefundStatus)
	}
	if filter.StartDate != nil && filter.EndDate != nil {
		query = query.Where("returned_at BETWEEN ? AND ?", *filter.StartDate, *filter.EndDate)
	}
	if filter.CompletedOnly {
		query = query.Where("is_completed = ?", true)
	}

	var returnedOrders []models.ReturnedOrder
	err := query.Order("returned_at DESC").Find(&returnedOrders).Error
	return returnedOrders, err
}

func (r *returnedOrderRepository) UpdateWithLock(id uint, apply func(*models.ReturnedOrder) error) (*models.ReturnedOrder, error) {
	var returnedOrder models.ReturnedOrder
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&returnedOrder, id).Error; err != nil {
			return err
		}
		if err := apply(&returnedOrder); err != nil {
			return err
		}
		return tx.Save(&returnedOrder).Error
	})
	if err != nil {
		return nil, err
	}
	return &returnedOrder, nil
}

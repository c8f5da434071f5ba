package repository

import (
	"errors"

	"order_service/internal/models"

	"gorm.io/gorm"
)

// ReturnRequestFilter narrows return request listings.
type ReturnRequestFilter struct {
	SellerID uint
	UserID   uint
	Status   string
}

type ReturnRequestRepository interface {
	// CreateWithItems persists the request and every claimed item line
	// atomically. Item validation happens before this call; any failure
	// rolls back the whole request.
	CreateWithItems(request *models.OrderReturnRequest, items []*models.ReturnedOrderItem) error
	GetByID(id uint) (*models.OrderReturnRequest, error)
	// GetActiveByOrderID returns the request currently requested or
	// accepted for the order, or nil when none exists.
	GetActiveByOrderID(orderID uint) (*models.OrderReturnRequest, error)
	// GetAwaitingResponse returns the request only when it may still be
	// responded to (requested, or rejected for an overturned rejection).
	GetAwaitingResponse(id uint) (*models.OrderReturnRequest, error)
	List(filter ReturnRequestFilter) ([]models.OrderReturnRequest, error)
	Update(request *models.OrderReturnRequest) error
	Delete(request *models.OrderReturnRequest) error
}

type returnRequestRepository struct {
	db *gorm.DB
}

func NewReturnRequestRepository(db *gorm.DB) ReturnRequestRepository {
	return &returnRequestRepository{db: db}
}

func (r *returnRequestRepository) CreateWithItems(request *models.OrderReturnRequest, items []*models.ReturnedOrderItem) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(request).Error; err != nil {
			return err
		}
		for _, item := range items {
			item.OrderReturnRequestID = request.ID
		}
		return tx.Create(&items).Error
	})
}

func (r *returnRequestRepository) GetByID(id uint) (*models.OrderReturnRequest, error) {
	var request models.OrderReturnRequest
	err := r.db.First(&request, id).Error
	if err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *returnRequestRepository) GetActiveByOrderID(orderID uint) (*models.OrderReturnRequest, error) {
	var request models.OrderReturnRequest
	err := r.db.
		Where("order_id = ? AND status IN ?", orderID, []string{models.ReturnRequested, models.ReturnAccepted}).
		First(&request).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *returnRequestRepository) GetAwaitingResponse(id uint) (*models.OrderReturnRequest, error) {
	var request models.OrderReturnRequest
	err := r.db.
		Where("id = ? AND status IN ?", id, []string{models.ReturnRequested, models.ReturnRejected}).
		First(&request).Error
	if err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *returnRequestRepository) List(filter ReturnRequestFilter) ([]models.OrderReturnRequest, error) {
	query := r.db.Model(&models.OrderReturnRequest{})
	if filter.SellerID > 0 {
		query = query.Where("seller_id = ?", filter.SellerID)
	}
	if filter.UserID > 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var requests []models.OrderReturnRequest
	err := query.Order("request_at DESC").Find(&requests).Error
	return requests, err
}

func (r *returnRequestRepository) Update(request *models.OrderReturnRequest) error {
	return r.db.Save(request).Error
}

func (r *returnRequestRepository) Delete(request *models.OrderReturnRequest) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_return_request_id = ?", request.ID).
			Delete(&models.ReturnedOrderItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(request).Error
	})
}

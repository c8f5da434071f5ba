package repository

import (
	"order_service/internal/models"

	"gorm.io/gorm"
)

type ReturnedOrderItemRepository interface {
	GetByRequestID(requestID uint) ([]*models.ReturnedOrderItem, error)
	GetByReturnedOrderID(returnedOrderID uint) ([]*models.ReturnedOrderItem, error)
	GetByReturnedOrderIDs(returnedOrderIDs []uint) ([]*models.ReturnedOrderItem, error)
}

type returnedOrderItemRepository struct {
	db *gorm.DB
}

func NewReturnedOrderItemRepository(db *gorm.DB) ReturnedOrderItemRepository {
	return &returnedOrderItemRepository{db: db}
}

func (r *returnedOrderItemRepository) GetByRequestID(requestID uint) ([]*models.ReturnedOrderItem, error) {
	var items []*models.ReturnedOrderItem
	err := r.db.Where("order_return_request_id = ?", requestID).Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *returnedOrderItemRepository) GetByReturnedOrderID(returnedOrderID uint) ([]*models.ReturnedOrderItem, error) {
	var items []*models.ReturnedOrderItem
	err := r.db.Where("returned_order_id = ?", returnedOrderID).Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *returnedOrderItemRepository) GetByReturnedOrderIDs(returnedOrderIDs []uint) ([]*models.ReturnedOrderItem, error) {
	var items []*models.ReturnedOrderItem
	if len(returnedOrderIDs) == 0 {
		return items, nil
	}
	err := r.db.Where("returned_order_id IN ?", returnedOrderIDs).Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

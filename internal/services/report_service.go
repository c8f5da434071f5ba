package services

import (
	"fmt"
	"log"
	"time"

	"order_service/internal/repository"
)

// SalesReport aggregates a seller's completed orders and completed
// returns over a date range. Profit is revenue minus refunds; platform
// fees are settled elsewhere.
type SalesReport struct {
	TotalOrders           int     `json:"total_orders"`
	TotalProductsSold     int     `json:"total_products_sold"`
	TotalRevenue          float64 `json:"total_revenue"`
	TotalRefund           float64 `json:"total_refund"`
	TotalProductsRefunded int     `json:"total_products_refunded"`
	Profit                float64 `json:"profit"`
}

// ReportCache is the slice of the Redis client the report service
// needs.
type ReportCache interface {
	SetReport(key string, value interface{}, ttl time.Duration) error
	GetReport(key string, dest interface{}) error
}

type ReportService interface {
	GetStatistics(sellerID uint, startDate, endDate *time.Time) (*SalesReport, error)
}

type reportService struct {
	orderRepo         repository.OrderRepository
	returnedOrderRepo repository.ReturnedOrderRepository
	cache             ReportCache
	cacheTTL          time.Duration
}

func NewReportService(
	orderRepo repository.OrderRepository,
	returnedOrderRepo repository.ReturnedOrderRepository,
	cache ReportCache,
	cacheTTL time.Duration,
) ReportService {
	return &reportService{
		orderRepo:         orderRepo,
		returnedOrderRepo: returnedOrderRepo,
		cache:             cache,
		cacheTTL:          cacheTTL,
	}
}

// GetStatistics computes the sales report, serving it from cache when a
// fresh copy exists. Cache failures fall through to the database.
func (s *reportService) GetStatistics(sellerID uint, startDate, endDate *time.Time) (*SalesReport, error) {
	key := reportKey(sellerID, startDate, endDate)

	var cached SalesReport
	if err := s.cache.GetReport(key, &cached); err == nil {
		return &cached, nil
	}

	orders, err := s.orderRepo.List(repository.OrderFilter{
		SellerID:      sellerID,
		StartDate:     startDate,
		EndDate:       endDate,
		CompletedOnly: true,
	})
	if err != nil {
		return nil, err
	}
	returnedOrders, err := s.returnedOrderRepo.List(repository.ReturnedOrderFilter{
		SellerID:      sellerID,
		StartDate:     startDate,
		EndDate:       endDate,
		CompletedOnly: true,
	})
	if err != nil {
		return nil, err
	}

	report := &SalesReport{TotalOrders: len(orders)}
	for _, order := range orders {
		report.TotalProductsSold += order.TotalQuantity
		report.TotalRevenue += order.FinalTotal
	}
	for _, returnedOrder := range returnedOrders {
		report.TotalRefund += returnedOrder.RefundAmount
		report.TotalProductsRefunded += returnedOrder.TotalQuantity
	}
	report.Profit = report.TotalRevenue - report.TotalRefund

	if err := s.cache.SetReport(key, report, s.cacheTTL); err != nil {
		log.Printf("failed to cache report %s: %v", key, err)
	}
	return report, nil
}

func reportKey(sellerID uint, startDate, endDate *time.Time) string {
	start, end := "all", "all"
	if startDate != nil {
		start = startDate.Format("2006-01-02")
	}
	if endDate != nil {
		end = endDate.Format("2006-01-02")
	}
	return fmt.Sprintf("statistics:%d:%s:%s", sellerID, start, end)
}

package services

import (
	"testing"
	"time"

	"order_service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetStatistics(t *testing.T) {
	orderRepo := newFakeOrderRepo()
	returnedRepo := newFakeReturnedOrderRepo(nil)
	cache := newFakeReportCache()
	service := NewReportService(orderRepo, returnedRepo, cache, 5*time.Minute)

	orderRepo.add(models.Order{ID: 1, SellerID: 3, TotalQuantity: 2, FinalTotal: 150000, IsCompleted: true})
	orderRepo.add(models.Order{ID: 2, SellerID: 3, TotalQuantity: 1, FinalTotal: 50000, IsCompleted: true})
	// Incomplete orders never count.
	orderRepo.add(models.Order{ID: 3, SellerID: 3, TotalQuantity: 4, FinalTotal: 999999})
	returnedRepo.add(models.ReturnedOrder{ID: 1, SellerID: 3, TotalQuantity: 1, RefundAmount: 45000, IsCompleted: true})

	report, err := service.GetStatistics(3, nil, nil)

	require.NoError(t, err)
	assert.Equal(t, 2, report.TotalOrders)
	assert.Equal(t, 3, report.TotalProductsSold)
	assert.Equal(t, 200000.0, report.TotalRevenue)
	assert.Equal(t, 45000.0, report.TotalRefund)
	assert.Equal(t, 1, report.TotalProductsRefunded)
	assert.Equal(t, 155000.0, report.Profit)
	assert.Equal(t, 1, cache.sets)
}

func TestGetStatisticsServedFromCache(t *testing.T) {
	orderRepo := newFakeOrderRepo()
	returnedRepo := newFakeReturnedOrderRepo(nil)
	cache := newFakeReportCache()
	service := NewReportService(orderRepo, returnedRepo, cache, 5*time.Minute)

	orderRepo.add(models.Order{ID: 1, SellerID: 3, TotalQuantity: 1, FinalTotal: 100000, IsCompleted: true})

	first, err := service.GetStatistics(3, nil, nil)
	require.NoError(t, err)
	listCallsAfterFirst := orderRepo.listCalls

	second, err := service.GetStatistics(3, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	// The second call never reached the database.
	assert.Equal(t, listCallsAfterFirst, orderRepo.listCalls)
}

func TestReportKeySeparatesRanges(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, "statistics:3:all:all", reportKey(3, nil, nil))
	assert.Equal(t, "statistics:3:2024-03-01:2024-03-31", reportKey(3, &start, &end))
	assert.NotEqual(t, reportKey(3, nil, nil), reportKey(4, nil, nil))
}

package main

import (
	"log"
	"net/http"
	"time"

	"order_service/internal/config"
	"order_service/internal/database"
	"order_service/internal/email"
	"order_service/internal/handlers"
	"order_service/internal/redis"
	"order_service/internal/repository"
	"order_service/internal/services"
	"order_service/pkg/platform"
	"order_service/pkg/storage"

	"github.com/gin-gonic/gin"
)

const clientTimeout = 10 * time.Second

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.Initialize(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Initialize Redis
	redisClient, err := redis.Initialize(cfg.RedisURL)
	if err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}

	// Sibling-service clients, routed through the API gateway. The
	// product and store calls made on order completion go direct.
	productClient := platform.NewProductClient(cfg.GatewayURL+"/product", clientTimeout)
	directProductClient := platform.NewProductClient(cfg.DirectProductURL, clientTimeout)
	customerClient := platform.NewCustomerClient(cfg.GatewayURL+"/customer", clientTimeout)
	discountClient := platform.NewDiscountClient(cfg.GatewayURL+"/discount", clientTimeout)
	paymentClient := platform.NewPaymentClient(cfg.GatewayURL+"/payment", clientTimeout)
	shipmentClient := platform.NewShipmentClient(cfg.GatewayURL+"/shipment", clientTimeout)
	userClient := platform.NewUserClient(cfg.GatewayURL+"/user", clientTimeout)
	storeClient := platform.NewStoreClient(cfg.DirectStoreURL, clientTimeout)
	notificationClient := platform.NewNotificationClient(cfg.GatewayURL+"/notification", clientTimeout)

	fileStorage, err := storage.NewCloudinaryStorage(cfg.CloudinaryURL, cfg.CloudinaryFolder)
	if err != nil {
		log.Fatal("Failed to init Cloudinary:", err)
	}
	mailer := email.NewService(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPFrom)

	// Initialize repositories
	orderRepo := repository.NewOrderRepository(db)
	orderItemRepo := repository.NewOrderItemRepository(db)
	requestRepo := repository.NewReturnRequestRepository(db)
	returnedOrderRepo := repository.NewReturnedOrderRepository(db)
	returnedItemRepo := repository.NewReturnedOrderItemRepository(db)

	// Initialize services
	orderService := services.NewOrderService(
		orderRepo, orderItemRepo,
		productClient, directProductClient,
		customerClient, discountClient, paymentClient,
		shipmentClient, userClient, storeClient, notificationClient,
		mailer,
		services.AsyncDispatch,
		cfg.SellerShareRate,
	)
	returnService := services.NewReturnService(
		orderRepo, orderItemRepo,
		requestRepo, returnedOrderRepo, returnedItemRepo,
		productClient, shipmentClient, userClient, notificationClient, fileStorage,
		services.AsyncDispatch,
		cfg.FallbackReturnShippingFee,
	)
	reportService := services.NewReportService(
		orderRepo, returnedOrderRepo,
		redisClient,
		time.Duration(cfg.ReportCacheTTL)*time.Second,
	)

	// Initialize handlers
	orderHandler := handlers.NewOrderHandler(orderService)
	returnHandler := handlers.NewReturnHandler(returnService)
	reportHandler := handlers.NewReportHandler(reportService)

	// Setup routes
	router := gin.Default()

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "order_service"})
	})

	orders := router.Group("/orders")
	{
		orders.GET("", orderHandler.GetOrders)
		orders.POST("", orderHandler.CreateOrders)
		orders.POST("/ids", orderHandler.GetOrdersByIDs)
		orders.GET("/get-details-order", orderHandler.GetOrdersWithDetails)
		orders.GET("/user", orderHandler.GetOrdersByUser)
		orders.GET("/shop/:seller_id", orderHandler.GetOrdersBySeller)
		orders.GET("/details/:id", orderHandler.GetOrderItems)
		orders.GET("/:id", orderHandler.GetOrder)
		orders.PUT("/:id", orderHandler.UpdateOrder)
		orders.DELETE("/:id", orderHandler.CancelOrder)
	}

	returns := router.Group("/order-returns")
	{
		returns.POST("/request/:order_id", returnHandler.CreateReturnRequest)
		returns.GET("/requests", returnHandler.GetReturnRequests)
		returns.GET("/request/details", returnHandler.GetReturnRequestDetails)
		returns.GET("/request/:id", returnHandler.GetReturnRequest)
		returns.DELETE("/request/:id", returnHandler.DeleteReturnRequest)
		returns.PUT("/request/:id/response", returnHandler.RespondReturnRequest)

		returns.GET("/returned-orders", returnHandler.GetReturnedOrders)
		returns.GET("/returned-orders-details", returnHandler.GetReturnedOrdersWithDetails)
		returns.GET("/returned-order/details", returnHandler.GetReturnedOrderDetails)
		returns.GET("/returned-order/:id", returnHandler.GetReturnedOrder)
		returns.PUT("/returned-order/:id", returnHandler.UpdateReturnedOrder)
	}

	router.GET("/reports", reportHandler.GetStatistics)

	// Start server
	log.Printf("Server starting on port %s", cfg.ServerPort)
	if err := router.Run(":" + cfg.ServerPort); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}

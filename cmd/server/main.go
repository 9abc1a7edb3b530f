package main

import (
	"context"
	"time"

	"wuroud-pos/internal/billing"
	"wuroud-pos/internal/cache"
	"wuroud-pos/internal/config"
	"wuroud-pos/internal/database"
	"wuroud-pos/internal/handlers"
	"wuroud-pos/internal/middleware"
	"wuroud-pos/internal/receipt"
	"wuroud-pos/internal/scheduler"
	"wuroud-pos/pkg/logger"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	log := logger.Must(logger.New())
	defer log.Sync()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("invalid configuration", zap.Error(err))
	}

	if err := database.Connect(cfg.DB.DSN, logger.Named(log, "database")); err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	stores := database.NewStores(database.DB)

	// The report cache is optional; a dead Redis just means slower reports
	if err := cache.Init(cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.Password); err != nil {
		log.Warn("report cache disabled", zap.Error(err))
	}

	// --- BILLING CORE ---
	ctx := context.Background()

	products, err := stores.LoadProducts(ctx)
	if err != nil {
		log.Fatal("failed to load catalog", zap.Error(err))
	}
	ledger := billing.NewStockLedger(products, stores, logger.Named(log, "ledger"))

	agg := billing.NewSalesAggregator(time.Now)
	seedFrom := billing.DayKey(time.Now().AddDate(0, 0, -(cfg.Sales.RetentionDays - 1)))
	txs, err := stores.LoadTransactionsSince(ctx, seedFrom)
	if err != nil {
		log.Fatal("failed to load sales history", zap.Error(err))
	}
	compacted, err := stores.LoadDailyTotals(ctx)
	if err != nil {
		log.Fatal("failed to load daily totals", zap.Error(err))
	}
	agg.Seed(txs, compacted)

	sale := billing.NewSaleCompletion(ledger, billing.FanOut(stores, agg), time.Now, logger.Named(log, "sale"))
	seq := billing.NewSequence(stores, logger.Named(log, "sequence"))

	shop := receipt.ShopInfo{
		Name:  cfg.Shop.Name,
		Place: cfg.Shop.Place,
		Phone: cfg.Shop.Phone,
		GSTIN: cfg.Shop.GSTIN,
	}

	sched := scheduler.New(agg, stores, cfg.Sales.RetentionDays, cfg.Sales.PruneSchedule, logger.Named(log, "scheduler"))
	sched.Start()
	defer sched.Stop()

	// --- HANDLERS ---
	productHandler := &handlers.ProductHandler{Ledger: ledger, Log: logger.Named(log, "products")}
	checkoutHandler := &handlers.CheckoutHandler{
		Ledger: ledger, Sale: sale, Seq: seq, Agg: agg, Shop: shop,
		Log: logger.Named(log, "checkout"),
	}
	reportHandler := &handlers.ReportHandler{Agg: agg, Stores: stores, Log: logger.Named(log, "reports")}
	receiptHandler := &handlers.ReceiptHandler{Shop: shop, Log: logger.Named(log, "receipt")}

	// --- ROUTES ---
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.Server.AllowedOrigin},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) { c.JSON(200, gin.H{"status": "online"}) })
	r.POST("/login", handlers.Login)

	// Only opens if we explicitly allow it in .env
	if cfg.Auth.AllowRegistration {
		r.POST("/register", handlers.Register)
		log.Warn("⚠️ Registration route is OPEN. Disable this in production!")
	} else {
		log.Info("🔒 Registration route is safely DISABLED.")
	}

	// --- PROTECTED ROUTES ---
	api := r.Group("/api")
	api.Use(middleware.AuthMiddleware())
	{
		// PUBLIC TO STAFF & ADMIN
		api.GET("/products", productHandler.GetProducts)
		api.POST("/checkout", checkoutHandler.ProcessCheckout)
		api.POST("/receipt/pdf", receiptHandler.ReceiptPDF)
		api.POST("/receipt/print", receiptHandler.ReceiptText)
		api.POST("/receipt/whatsapp", receiptHandler.ReceiptWhatsApp)

		// ADMIN ONLY
		admin := api.Group("/")
		admin.Use(middleware.RequireRole("admin"))
		{
			admin.POST("/products", productHandler.AddProduct)
			admin.PUT("/products/:id", productHandler.UpdateProduct)
			admin.DELETE("/products/:id", productHandler.DeleteProduct)
			admin.POST("/products/:id/stock", productHandler.AdjustStock)
			admin.POST("/sales/:id/reverse", checkoutHandler.ReverseSale)
			admin.GET("/reports", reportHandler.GetSalesReport)
			admin.GET("/reports/valuation", reportHandler.GetStockValuation)
			admin.GET("/reports/zakat", reportHandler.GetZakatReport)
		}
	}

	log.Info("🚀 Server starting", zap.String("base_url", cfg.Server.BaseURL))
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		log.Fatal("server failed to start", zap.Error(err))
	}
}

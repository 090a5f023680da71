package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/specbook/internal/bom"
	bomdomain "github.com/smallbiznis/specbook/internal/bom/domain"
	"github.com/smallbiznis/specbook/internal/config"
	"github.com/smallbiznis/specbook/internal/observability"
	obsmiddleware "github.com/smallbiznis/specbook/internal/observability/logger"
	obstracing "github.com/smallbiznis/specbook/internal/observability/tracing"
	"github.com/smallbiznis/specbook/internal/order"
	orderdomain "github.com/smallbiznis/specbook/internal/order/domain"
	"github.com/smallbiznis/specbook/internal/organization"
	organizationdomain "github.com/smallbiznis/specbook/internal/organization/domain"
	"github.com/smallbiznis/specbook/internal/payment"
	paymentdomain "github.com/smallbiznis/specbook/internal/payment/domain"
	"github.com/smallbiznis/specbook/internal/product"
	productdomain "github.com/smallbiznis/specbook/internal/product/domain"
	"github.com/smallbiznis/specbook/internal/project"
	projectdomain "github.com/smallbiznis/specbook/internal/project/domain"
	"github.com/smallbiznis/specbook/internal/providers/pdf"
	"github.com/smallbiznis/specbook/internal/ratelimit"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	organization.Module,
	product.Module,
	project.Module,
	bom.Module,
	order.Module,
	payment.Module,
	pdf.Module,
	ratelimit.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(log, obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, log *zap.Logger) *gin.Engine {
	return NewEngine(obsCfg, log)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server failed", zap.Error(err))
				}
			}()
			log.Info("http server started", zap.String("addr", cfg.HTTPAddr))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine          *gin.Engine
	cfg             config.Config
	db              *gorm.DB
	genID           *snowflake.Node
	organizationSvc organizationdomain.Service
	productSvc      productdomain.Service
	projectSvc      projectdomain.Service
	bomSvc          bomdomain.Service
	orderSvc        orderdomain.Service
	paymentSvc      paymentdomain.Service
	pdfRenderer     pdf.Renderer
	publicLimiter   ratelimit.Limiter
}

type ServerParams struct {
	fx.In

	Gin             *gin.Engine
	Cfg             config.Config
	DB              *gorm.DB
	GenID           *snowflake.Node
	OrganizationSvc organizationdomain.Service
	ProductSvc      productdomain.Service
	ProjectSvc      projectdomain.Service
	BOMSvc          bomdomain.Service
	OrderSvc        orderdomain.Service
	PaymentSvc      paymentdomain.Service
	PDFRenderer     pdf.Renderer
	PublicLimiter   ratelimit.Limiter
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:          p.Gin,
		cfg:             p.Cfg,
		db:              p.DB,
		genID:           p.GenID,
		organizationSvc: p.OrganizationSvc,
		productSvc:      p.ProductSvc,
		projectSvc:      p.ProjectSvc,
		bomSvc:          p.BOMSvc,
		orderSvc:        p.OrderSvc,
		paymentSvc:      p.PaymentSvc,
		pdfRenderer:     p.PDFRenderer,
		publicLimiter:   p.PublicLimiter,
	}

	svc.registerAPIRoutes()
	svc.registerWebhookRoutes()
	svc.registerPublicRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api", s.IdentityRequired())

	// -------- Organization --------
	api.GET("/org", s.GetOrganization)
	api.POST("/org", s.RequireRole(RoleOwner, RoleAdmin), s.CreateOrganization)
	api.PATCH("/org/settings", s.RequireRole(RoleOwner, RoleAdmin), s.UpdateOrganizationSettings)

	// -------- Catalog --------
	api.GET("/products", s.ListProducts)
	api.GET("/products/:id", s.GetProductByID)
	api.GET("/products/sku/:sku", s.GetProductBySKU)
	api.POST("/products/sync", s.RequireRole(RoleOwner, RoleAdmin), s.UpsertProduct)
	api.POST("/products/:id/archive", s.RequireRole(RoleOwner, RoleAdmin), s.ArchiveProduct)

	// -------- Projects --------
	api.GET("/projects", s.ListProjects)
	api.POST("/projects", s.CreateProject)
	api.GET("/projects/:id", s.GetProjectByID)
	api.PATCH("/projects/:id", s.UpdateProject)
	api.POST("/projects/:id/archive", s.ArchiveProject)
	api.DELETE("/projects/:id", s.RequireRole(RoleOwner, RoleAdmin), s.DeleteProject)
	api.GET("/projects/:id/totals", s.GetProjectTotals)

	api.GET("/projects/:id/rooms", s.ListRooms)
	api.POST("/projects/:id/rooms", s.AddRoom)
	api.DELETE("/projects/:id/rooms/:roomId", s.DeleteRoom)

	api.GET("/projects/:id/line-items", s.ListLineItems)
	api.POST("/projects/:id/line-items", s.AddLineItem)
	api.PATCH("/projects/:id/line-items/:lineItemId", s.UpdateLineItem)
	api.DELETE("/projects/:id/line-items/:lineItemId", s.RemoveLineItem)

	// -------- BOM versions --------
	api.POST("/projects/:id/bom-versions", s.CreateBOMVersion)
	api.GET("/projects/:id/bom-versions", s.ListBOMVersions)
	api.GET("/bom-versions/:id", s.GetBOMVersion)
	api.POST("/bom-versions/:id/share", s.ShareBOMVersion)
	api.GET("/bom-versions/:id/export.csv", s.ExportBOMVersionCSV)

	// -------- Orders --------
	api.GET("/orders", s.ListOrders)
	api.POST("/orders", s.CreateOrder)
	api.GET("/orders/:id", s.GetOrderByID)
	api.POST("/orders/:id/status", s.UpdateOrderStatus)
	api.POST("/orders/:id/tracking", s.AddOrderTracking)
	api.POST("/orders/:id/share", s.ShareOrder)

	// -------- Payments --------
	api.POST("/payments", s.InitializePayment)
	api.GET("/payments/verify/:reference", s.VerifyPayment)
	api.GET("/payments/:id", s.GetPaymentByID)
}

func (s *Server) registerWebhookRoutes() {
	s.engine.POST("/webhooks/payments/paystack", s.HandlePaystackWebhook)
}

func (s *Server) registerPublicRoutes() {
	public := s.engine.Group("/p", ratelimit.GinMiddleware(s.publicLimiter))

	public.GET("/proposals/:shareId", s.GetPublicProposal)
	public.POST("/proposals/:shareId/respond", s.RespondPublicProposal)
	public.GET("/proposals/:shareId/pdf", s.GetPublicProposalPDF)
	public.GET("/orders/:shareId", s.TrackPublicOrder)
}

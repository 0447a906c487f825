package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/fieldline/fieldline/internal/advisor"
	"github.com/fieldline/fieldline/internal/agreement"
	agreementdomain "github.com/fieldline/fieldline/internal/agreement/domain"
	"github.com/fieldline/fieldline/internal/auth"
	authdomain "github.com/fieldline/fieldline/internal/auth/domain"
	"github.com/fieldline/fieldline/internal/auth/session"
	"github.com/fieldline/fieldline/internal/billing"
	"github.com/fieldline/fieldline/internal/config"
	"github.com/fieldline/fieldline/internal/customer"
	customerdomain "github.com/fieldline/fieldline/internal/customer/domain"
	"github.com/fieldline/fieldline/internal/estimate"
	estimatedomain "github.com/fieldline/fieldline/internal/estimate/domain"
	"github.com/fieldline/fieldline/internal/inventory"
	inventorydomain "github.com/fieldline/fieldline/internal/inventory/domain"
	"github.com/fieldline/fieldline/internal/invoice"
	invoicedomain "github.com/fieldline/fieldline/internal/invoice/domain"
	"github.com/fieldline/fieldline/internal/job"
	jobdomain "github.com/fieldline/fieldline/internal/job/domain"
	"github.com/fieldline/fieldline/internal/observability"
	obslogger "github.com/fieldline/fieldline/internal/observability/logger"
	obsmetrics "github.com/fieldline/fieldline/internal/observability/metrics"
	"github.com/fieldline/fieldline/internal/organization"
	organizationdomain "github.com/fieldline/fieldline/internal/organization/domain"
	"github.com/fieldline/fieldline/internal/payment"
	paymentwebhook "github.com/fieldline/fieldline/internal/payment/webhook"
	"github.com/fieldline/fieldline/internal/providers"
	"github.com/fieldline/fieldline/internal/providers/email"
	"github.com/fieldline/fieldline/internal/providers/pdf"
	"github.com/fieldline/fieldline/internal/ratelimit"
	"github.com/fieldline/fieldline/internal/technician"
	techniciandomain "github.com/fieldline/fieldline/internal/technician/domain"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	auth.Module,
	organization.Module,
	customer.Module,
	technician.Module,
	job.Module,
	inventory.Module,
	estimate.Module,
	agreement.Module,
	invoice.Module,
	payment.Module,
	providers.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obslogger.GinMiddleware(obslogger.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config) {
	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
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
	log             *zap.Logger
	db              *gorm.DB
	genID           *snowflake.Node
	sessions        *session.Manager
	authSvc         authdomain.Service
	organizationSvc organizationdomain.Service
	customerSvc     customerdomain.Service
	technicianSvc   techniciandomain.Service
	jobSvc          jobdomain.Service
	inventorySvc    inventorydomain.Service
	estimateSvc     estimatedomain.Service
	agreementSvc    agreementdomain.Service
	invoiceSvc      invoicedomain.Service
	advisorSvc      *advisor.Service
	billingSvc      *billing.Service
	webhookSvc      *paymentwebhook.Service
	advisoryLimiter *ratelimit.AdvisoryLimiter
	loginLimiter    *ratelimit.LoginLimiter
	emailProvider   email.Provider
	pdfProvider     pdf.Provider
}

type ServerParams struct {
	fx.In

	Gin             *gin.Engine
	Cfg             config.Config
	Log             *zap.Logger
	DB              *gorm.DB
	GenID           *snowflake.Node
	Sessions        *session.Manager
	AuthSvc         authdomain.Service
	OrganizationSvc organizationdomain.Service
	CustomerSvc     customerdomain.Service
	TechnicianSvc   techniciandomain.Service
	JobSvc          jobdomain.Service
	InventorySvc    inventorydomain.Service
	EstimateSvc     estimatedomain.Service
	AgreementSvc    agreementdomain.Service
	InvoiceSvc      invoicedomain.Service
	AdvisorSvc      *advisor.Service
	BillingSvc      *billing.Service
	WebhookSvc      *paymentwebhook.Service
	AdvisoryLimiter *ratelimit.AdvisoryLimiter `optional:"true"`
	LoginLimiter    *ratelimit.LoginLimiter
	EmailProvider   email.Provider
	PDFProvider     pdf.Provider
}

func NewServer(p ServerParams) *Server {
	s := &Server{
		engine:          p.Gin,
		cfg:             p.Cfg,
		log:             p.Log.Named("http.server"),
		db:              p.DB,
		genID:           p.GenID,
		sessions:        p.Sessions,
		authSvc:         p.AuthSvc,
		organizationSvc: p.OrganizationSvc,
		customerSvc:     p.CustomerSvc,
		technicianSvc:   p.TechnicianSvc,
		jobSvc:          p.JobSvc,
		inventorySvc:    p.InventorySvc,
		estimateSvc:     p.EstimateSvc,
		agreementSvc:    p.AgreementSvc,
		invoiceSvc:      p.InvoiceSvc,
		advisorSvc:      p.AdvisorSvc,
		billingSvc:      p.BillingSvc,
		webhookSvc:      p.WebhookSvc,
		advisoryLimiter: p.AdvisoryLimiter,
		loginLimiter:    p.LoginLimiter,
		emailProvider:   p.EmailProvider,
		pdfProvider:     p.PDFProvider,
	}

	s.registerAuthRoutes()
	s.registerAPIRoutes()

	return s
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAuthRoutes() {
	auth := s.engine.Group("/auth")

	auth.POST("/signup", s.Signup)
	auth.POST("/login", s.Login)
	auth.POST("/logout", s.Logout)
	auth.GET("/me", s.AuthRequired(), s.Me)

	user := auth.Group("/user", s.AuthRequired())
	{
		// Org creation lives here because a fresh user has no org to
		// put in the X-Org-ID header yet.
		user.GET("/orgs", s.ListUserOrgs)
		user.POST("/orgs", s.CreateOrg)
		user.POST("/using/:orgId", s.UseOrg)
	}
}

func (s *Server) registerAPIRoutes() {
	// Webhooks authenticate with provider signatures, not sessions.
	s.engine.POST("/api/payments/webhooks/stripe", s.HandleStripeWebhook)

	api := s.engine.Group("/api", s.AuthRequired(), s.OrgContext())

	dispatcherUp := s.RequireRole(organizationdomain.RoleOwner, organizationdomain.RoleDispatcher)
	anyMember := s.RequireRole(organizationdomain.RoleOwner, organizationdomain.RoleDispatcher, organizationdomain.RoleTechnician)

	// -------- Organizations --------
	api.GET("/orgs/:id", anyMember, s.GetOrg)
	api.POST("/orgs/:id/members", s.RequireRole(organizationdomain.RoleOwner), s.AddOrgMember)

	// -------- Customers --------
	api.GET("/customers", anyMember, s.ListCustomers)
	api.POST("/customers", dispatcherUp, s.CreateCustomer)
	api.GET("/customers/:id", anyMember, s.GetCustomerByID)
	api.PATCH("/customers/:id", dispatcherUp, s.UpdateCustomer)

	// -------- Technicians --------
	api.GET("/technicians", anyMember, s.ListTechnicians)
	api.POST("/technicians", dispatcherUp, s.CreateTechnician)
	api.GET("/technicians/:id", anyMember, s.GetTechnicianByID)
	api.POST("/technicians/:id/active", dispatcherUp, s.SetTechnicianActive)

	// -------- Jobs --------
	api.GET("/jobs", anyMember, s.ListJobs)
	api.POST("/jobs", dispatcherUp, s.CreateJob)
	api.GET("/jobs/:id", anyMember, s.GetJobByID)
	api.POST("/jobs/:id/assign", dispatcherUp, s.AssignJob)
	api.POST("/jobs/:id/status", anyMember, s.UpdateJobStatus)

	// -------- Inventory --------
	api.GET("/inventory", anyMember, s.ListInventoryItems)
	api.POST("/inventory", dispatcherUp, s.CreateInventoryItem)
	api.GET("/inventory/:id", anyMember, s.GetInventoryItemByID)
	api.POST("/inventory/:id/adjust", dispatcherUp, s.AdjustInventoryStock)

	// -------- Estimates --------
	api.GET("/estimates", anyMember, s.ListEstimates)
	api.POST("/estimates", dispatcherUp, s.CreateEstimate)
	api.GET("/estimates/:id", anyMember, s.GetEstimateByID)
	api.POST("/estimates/:id/send", dispatcherUp, s.SendEstimate)
	api.POST("/estimates/:id/select", dispatcherUp, s.SelectEstimateTier)
	api.POST("/estimates/:id/decline", dispatcherUp, s.DeclineEstimate)

	// -------- Agreements --------
	api.GET("/agreements", anyMember, s.ListAgreements)
	api.POST("/agreements", dispatcherUp, s.CreateAgreement)
	api.GET("/agreements/:id", anyMember, s.GetAgreementByID)
	api.POST("/agreements/:id/cancel", dispatcherUp, s.CancelAgreement)

	// -------- Invoices --------
	api.GET("/invoices", anyMember, s.ListInvoices)
	api.POST("/invoices", dispatcherUp, s.CreateInvoice)
	api.GET("/invoices/:id", anyMember, s.GetInvoiceByID)
	api.GET("/invoices/:id/pdf", anyMember, s.RenderInvoicePDF)
	api.POST("/invoices/:id/send", dispatcherUp, s.SendInvoice)
	api.POST("/invoices/:id/void", dispatcherUp, s.VoidInvoice)

	// -------- Billing --------
	api.POST("/billing/checkout", dispatcherUp, s.CreateCheckout)
	api.POST("/billing/cancel", dispatcherUp, s.CancelBilling)

	// -------- AI advisory --------
	ai := api.Group("/ai", anyMember, s.AdvisoryRateLimit())
	{
		ai.POST("/customer-insights", s.CustomerInsights)
		ai.POST("/inventory-forecast", s.InventoryForecast)
		ai.POST("/job-summary", s.SummarizeJob)
		ai.POST("/quote-generator", s.GenerateQuote)
		ai.POST("/smart-scheduling", s.SuggestSchedule)
		ai.POST("/dispatch", s.OptimizeDispatch)
		ai.POST("/maintenance", s.MaintenanceReminders)
	}
}

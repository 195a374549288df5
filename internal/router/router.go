package router

import (
	"database/sql"
	"net/http"

	mem "shelter-ops/internal/adapters/storage/memory"
	pg "shelter-ops/internal/adapters/storage/postgres"

	"shelter-ops/internal/adapters/capabilities/tiers"
	"shelter-ops/internal/adapters/payments/stripe"
	"shelter-ops/internal/domain/adoptions"
	"shelter-ops/internal/domain/animals"
	"shelter-ops/internal/domain/billing"
	"shelter-ops/internal/domain/fosters"
	"shelter-ops/internal/domain/medical"
	"shelter-ops/internal/domain/members"
	"shelter-ops/internal/domain/organizations"
	"shelter-ops/internal/domain/reports"
	"shelter-ops/internal/domain/volunteers"
	"shelter-ops/internal/middleware"
	"shelter-ops/internal/platform/logger"
	"shelter-ops/internal/ports/auth"
	"shelter-ops/internal/ports/payments"

	_ "shelter-ops/docs"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Options struct {
	AuthVerifier auth.AuthVerifier // puede ser nil (modo dev: headers X-Debug-*)

	// Opcional: si viene, usa Postgres. Si no, in-memory.
	DB *sql.DB

	Logger logger.Logger

	StripeSecretKey     string
	StripeWebhookSecret string

	// Opcional: registry de Prometheus. Default: el global.
	MetricsRegisterer prometheus.Registerer
}

// Services agrupa los servicios armados por NewRouter para que main
// pueda colgarles el scheduler u otros consumidores.
type Services struct {
	Medical *medical.Service
}

func NewRouter(opts Options) (http.Handler, *Services) {
	r := chi.NewRouter()

	log := opts.Logger
	if log == nil {
		log = logger.NewFromEnv()
	}

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	reg := opts.MetricsRegisterer
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	metrics := middleware.NewMetrics(reg)
	r.Use(metrics.Handler)

	r.Use(middleware.AuthContext(opts.AuthVerifier))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	var (
		orgRepo       organizations.Repository
		memberRepo    members.Repository
		animalRepo    animals.Repository
		medicalRepo   medical.Repository
		fosterRepo    fosters.Repository
		volunteerRepo volunteers.Repository
		adoptionRepo  adoptions.Repository
		billingRepo   billing.Repository
		reportsRepo   reports.Repository
	)

	if opts.DB != nil {
		orgRepo = pg.NewOrganizationsRepo(opts.DB)
		memberRepo = pg.NewMembersRepo(opts.DB)
		animalRepo = pg.NewAnimalsRepo(opts.DB)
		medicalRepo = pg.NewMedicalRepo(opts.DB)
		fosterRepo = pg.NewFostersRepo(opts.DB)
		volunteerRepo = pg.NewVolunteersRepo(opts.DB)
		adoptionRepo = pg.NewAdoptionsRepo(opts.DB)
		billingRepo = pg.NewBillingRepo(opts.DB)
		reportsRepo = pg.NewReportsRepo(opts.DB)
	} else {
		orgRepo = mem.NewOrganizationRepo()
		memberRepo = mem.NewMemberRepo()
		animalRepo = mem.NewAnimalRepo()
		medicalRepo = mem.NewMedicalRepo()
		fosterRepo = mem.NewFosterRepo()
		volunteerRepo = mem.NewVolunteerRepo()
		adoptionRepo = mem.NewAdoptionRepo()
		billingRepo = mem.NewBillingRepo()
		reportsRepo = mem.NewReportsRepo(animalRepo, adoptionRepo, volunteerRepo)
	}

	// Services por módulo
	orgsSvc := organizations.NewService(orgRepo)
	membersSvc := members.NewService(memberRepo)
	billingSvc := billing.NewService(billingRepo, orgsSvc, log)
	caps := tiers.NewResolver(billingSvc)
	animalsSvc := animals.NewService(animalRepo, caps)
	medicalSvc := medical.NewService(medicalRepo)
	fostersSvc := fosters.NewService(fosterRepo, animalsSvc, membersSvc)
	volunteersSvc := volunteers.NewService(volunteerRepo)
	reportsSvc := reports.NewService(reportsRepo)

	var checkout payments.CheckoutCreator
	if opts.StripeSecretKey != "" {
		checkout = stripe.NewClient(opts.StripeSecretKey)
	}
	adoptionsSvc := adoptions.NewService(adoptionRepo, animalsSvc, fostersSvc, checkout)

	var verifyWebhook billing.SignatureVerifier
	if secret := opts.StripeWebhookSecret; secret != "" {
		verifyWebhook = func(payload []byte, sigHeader string) error {
			return stripe.VerifySignature(payload, sigHeader, secret, stripe.DefaultTolerance)
		}
	} else {
		log.Warn("STRIPE_WEBHOOK_SECRET not set, accepting unsigned webhooks", nil)
	}

	// Rutas por módulo
	organizations.RegisterRoutes(r, orgsSvc, membersSvc)
	members.RegisterRoutes(r, membersSvc)
	animals.RegisterRoutes(r, animalsSvc, membersSvc)
	medical.RegisterRoutes(r, medicalSvc, animalsSvc, membersSvc, fostersSvc)
	fosters.RegisterRoutes(r, fostersSvc, membersSvc)
	volunteers.RegisterRoutes(r, volunteersSvc, membersSvc)
	adoptions.RegisterRoutes(r, adoptionsSvc, membersSvc)
	billing.RegisterRoutes(r, billingSvc, membersSvc, verifyWebhook)
	reports.RegisterRoutes(r, reportsSvc, membersSvc, caps)

	return r, &Services{Medical: medicalSvc}
}

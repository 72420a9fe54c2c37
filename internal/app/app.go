// Package app arma el contenedor de dependencias y el router. Todo el
// wiring explícito vive acá: main sólo carga config, construye el
// Container y levanta el server.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	rdb "github.com/redis/go-redis/v9"

	"github.com/dropDatabas3/launchbase/internal/auth"
	"github.com/dropDatabas3/launchbase/internal/billing"
	"github.com/dropDatabas3/launchbase/internal/config"
	"github.com/dropDatabas3/launchbase/internal/email"
	httpx "github.com/dropDatabas3/launchbase/internal/http"
	"github.com/dropDatabas3/launchbase/internal/http/handlers"
	"github.com/dropDatabas3/launchbase/internal/http/middlewares"
	jwtx "github.com/dropDatabas3/launchbase/internal/jwt"
	"github.com/dropDatabas3/launchbase/internal/oauth/google"
	"github.com/dropDatabas3/launchbase/internal/oauth/linkedin"
	"github.com/dropDatabas3/launchbase/internal/observability/logger"
	"github.com/dropDatabas3/launchbase/internal/rate"
	"github.com/dropDatabas3/launchbase/internal/security/password"
	"github.com/dropDatabas3/launchbase/internal/store/core"
	"github.com/dropDatabas3/launchbase/internal/store/pg"
)

type Container struct {
	Cfg    *config.Config
	Store  *pg.Store
	Users  core.UserRepository
	Issuer *jwtx.Issuer
	Auth   *auth.Service
	Bill   *billing.Service
	Redis  *rdb.Client // nil con cache.kind=memory
}

// New construye el contenedor completo a partir de la config.
func New(ctx context.Context, cfg *config.Config) (*Container, error) {
	store, err := pg.Connect(ctx, cfg.Storage.DSN, pg.Options{
		MaxConns:        int32(cfg.Storage.Postgres.MaxConns),
		MinConns:        int32(cfg.Storage.Postgres.MinConns),
		ConnMaxLifetime: config.Duration(cfg.Storage.Postgres.ConnMaxLifetime, time.Hour),
	})
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	var users core.UserRepository = store

	issuer := jwtx.NewIssuer(cfg.JWT.AccessSecret, cfg.JWT.RefreshSecret, cfg.JWT.ResetSecret)
	issuer.AccessTTL = config.Duration(cfg.JWT.AccessTTL, issuer.AccessTTL)
	issuer.RefreshTTL = config.Duration(cfg.JWT.RefreshTTL, issuer.RefreshTTL)
	issuer.ResetTTL = config.Duration(cfg.JWT.ResetTTL, issuer.ResetTTL)

	tmpl, err := email.LoadTemplates(cfg.Email.TemplatesDir)
	if err != nil {
		return nil, fmt.Errorf("load email templates: %w", err)
	}
	mailer := &email.SMTPSender{
		Host:               cfg.SMTP.Host,
		Port:               cfg.SMTP.Port,
		From:               cfg.SMTP.From,
		User:               cfg.SMTP.User,
		Pass:               cfg.SMTP.Pass,
		TLSMode:            cfg.SMTP.TLSMode,
		InsecureSkipVerify: cfg.SMTP.InsecureSkipVerify,
	}

	googleClient := google.New(
		cfg.Providers.Google.ClientID,
		cfg.Providers.Google.ClientSecret,
		cfg.Providers.Google.RedirectURL,
	)
	linkedinClient := linkedin.New(
		cfg.Providers.Linkedin.ClientID,
		cfg.Providers.Linkedin.ClientSecret,
		cfg.Providers.Linkedin.RedirectURL,
	)

	authSvc := auth.NewService(users, issuer, googleClient, linkedinClient, mailer, tmpl, cfg.Email.FrontendURL)
	billSvc := billing.NewService(cfg.Stripe.SecretKey, users, store)

	c := &Container{
		Cfg:    cfg,
		Store:  store,
		Users:  users,
		Issuer: issuer,
		Auth:   authSvc,
		Bill:   billSvc,
	}

	if cfg.Cache.Kind == "redis" {
		c.Redis = rdb.NewClient(&rdb.Options{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
		})
		if err := c.Redis.Ping(ctx).Err(); err != nil {
			logger.L().Warn("redis unreachable, rate limiting degradado a memoria", logger.Err(err))
			_ = c.Redis.Close()
			c.Redis = nil
		}
	}
	return c, nil
}

// limiter arma el limiter para una ruta según backend disponible.
func (c *Container) limiter(limit int, window string, fallback time.Duration) rate.Limiter {
	if !c.Cfg.Rate.Enabled {
		return nil
	}
	w := config.Duration(window, fallback)
	if c.Redis != nil {
		return rate.NewRedisLimiter(c.Redis, c.Cfg.Cache.Redis.Prefix+"rl:", limit, w)
	}
	return rate.NewMemoryLimiter(limit, w)
}

// Router arma el chi.Mux con todos los endpoints y middlewares globales.
func (c *Container) Router() (http.Handler, error) {
	metricsHandler, err := httpx.RegisterMetrics(prometheus.DefaultRegisterer)
	if err != nil {
		return nil, fmt.Errorf("register metrics: %w", err)
	}

	r := chi.NewRouter()
	r.Use(middlewares.WithRequestID())
	r.Use(middlewares.WithLogging())
	r.Use(httpx.WithMetrics)
	r.Use(middlewares.WithRecover())

	(&handlers.AuthHandler{
		Svc:          c.Auth,
		Policy:       password.DefaultPolicy,
		LoginLimiter: c.limiter(c.Cfg.Rate.Login.Limit, c.Cfg.Rate.Login.Window, time.Minute),
	}).Register(r)

	(&handlers.SocialHandler{Svc: c.Auth}).Register(r)

	(&handlers.PasswordHandler{
		Svc:     c.Auth,
		Policy:  password.DefaultPolicy,
		Limiter: c.limiter(c.Cfg.Rate.Forgot.Limit, c.Cfg.Rate.Forgot.Window, 10*time.Minute),
	}).Register(r)

	(&handlers.AccountHandler{Svc: c.Auth, Issuer: c.Issuer}).Register(r)

	(&handlers.BillingHandler{
		Billing:         c.Bill,
		Users:           c.Users,
		Issuer:          c.Issuer,
		CheckoutPriceID: c.Cfg.Stripe.PriceID,
		TrialDays:       c.Cfg.Stripe.TrialDays,
	}).Register(r)

	checks := map[string]func(ctx context.Context) error{
		"postgres": c.Store.Ping,
	}
	if c.Redis != nil {
		checks["redis"] = func(ctx context.Context) error { return c.Redis.Ping(ctx).Err() }
	}
	(&handlers.HealthHandler{Checks: checks}).Register(r)

	r.Method(http.MethodGet, "/metrics", metricsHandler)

	return r, nil
}

// Close libera conexiones. Seguro de llamar más de una vez.
func (c *Container) Close() {
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
	if c.Store != nil {
		c.Store.Close()
	}
}

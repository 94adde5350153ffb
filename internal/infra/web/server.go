package web

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"game-vip-service/internal/config"
	"game-vip-service/internal/infra/redis"
	"game-vip-service/internal/usecase"
)

// Redemption attempts allowed per player per window when a limiter is wired.
const (
	redeemLimit  = 5
	redeemWindow = time.Minute
)

// Server is the admin/operator HTTP surface: voucher issuance and redemption,
// direct grants and removals, and read-only state queries.
type Server struct {
	vouchers     *usecase.VoucherUseCase
	entitlements *usecase.EntitlementUseCase
	commands     *usecase.CommandService
	catalog      *config.Catalog
	auth         *AuthManager
	limiter      *redis.RateLimiter // nil disables redeem rate limiting
	log          *zerolog.Logger
}

func NewServer(
	vouchers *usecase.VoucherUseCase,
	entitlements *usecase.EntitlementUseCase,
	commands *usecase.CommandService,
	catalog *config.Catalog,
	auth *AuthManager,
	limiter *redis.RateLimiter,
	logger *zerolog.Logger,
) *Server {
	l := logger.With().Str("component", "WebServer").Logger()
	return &Server{
		vouchers:     vouchers,
		entitlements: entitlements,
		commands:     commands,
		catalog:      catalog,
		auth:         auth,
		limiter:      limiter,
		log:          &l,
	}
}

// Routes builds the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(accessLog(s.log))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/login", s.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(s.auth.Middleware)

			r.Post("/vouchers", s.handleIssueVoucher)
			r.Get("/vouchers/{id}", s.handleGetVoucher)
			r.Post("/redeem", s.handleRedeem)

			r.Get("/players", s.handleListPlayers)
			r.Get("/players/{id}", s.handleGetPlayer)
			r.Get("/players/{id}/history", s.handleGetHistory)
			r.Post("/players/{id}/vip", s.handleAdminAdd)
			r.Delete("/players/{id}/vip", s.handleAdminRemove)

			r.Get("/vips", s.handleListVips)
		})
	})
	return r
}

package router

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yatagaratsu666/Servidor-Inventario/internal/handler"
	"github.com/yatagaratsu666/Servidor-Inventario/internal/metrics"
	"github.com/yatagaratsu666/Servidor-Inventario/internal/middleware"
	"github.com/yatagaratsu666/Servidor-Inventario/internal/model"
)

// Config holds the configuration for creating a router.
type Config struct {
	Handler        *handler.Handler
	PlayerHandler  *handler.PlayerHandler
	LogHandler     *handler.LogHandler
	AdminHandler   *handler.AdminHandler
	AllowedOrigins []string
}

// legacyKinds maps the suffix of the per-kind equip routes to a slot kind.
var legacyKinds = []struct {
	suffix string
	kind   model.SlotKind
}{
	{"Weapon", model.KindWeapon},
	{"Armor", model.KindArmor},
	{"Item", model.KindItem},
	{"Epic", model.KindEpicAbility},
	{"Hero", model.KindHero},
}

// New creates and configures the HTTP router.
func New(cfg Config) *chi.Mux {
	r := chi.NewRouter()

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	// Global middleware stack (applies to ALL routes)
	r.Use(middleware.Recovery)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(metrics.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		if cfg.Handler != nil {
			r.Get("/health", cfg.Handler.Health)
			r.Get("/ready", cfg.Handler.Ready)
		}

		if h := cfg.PlayerHandler; h != nil {
			r.Route("/usuarios", func(r chi.Router) {
				r.Post("/create", h.CreatePlayers)
				r.Post("/rewards", h.ApplyReward)
				r.Patch("/transfer-item", h.TransferItem)
				r.Put("/hero/{nombreUsuario}/unequipHero", h.LegacyMove(model.KindHero, false))

				r.Route("/{nombreUsuario}", func(r chi.Router) {
					r.Get("/", h.GetPlayer)
					r.Get("/hero", h.GetEquippedHero)
					r.Post("/inventario/{categoria}", h.AddToInventory)
					r.Patch("/creditos", h.IncrementCredits)
					r.Put("/equip/{categoria}", h.Equip)
					r.Put("/unequip/{categoria}", h.Unequip)

					for _, lk := range legacyKinds {
						r.Put("/equip"+lk.suffix, h.LegacyMove(lk.kind, true))
						r.Put("/unequip"+lk.suffix, h.LegacyMove(lk.kind, false))
					}
				})
			})
		}

		if cfg.LogHandler != nil {
			r.Get("/logs", cfg.LogHandler.GetMutationLogs)
		}

		if cfg.AdminHandler != nil {
			r.Get("/admin/stats", cfg.AdminHandler.GetStats)
		}
	})

	return r
}

package app

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"
	"gorm.io/gorm"

	"github.com/putrawijaya/trackdev_be/internal/config"
	"github.com/putrawijaya/trackdev_be/internal/handlers"
	"github.com/putrawijaya/trackdev_be/internal/middleware"
	"github.com/putrawijaya/trackdev_be/internal/models"
	"github.com/putrawijaya/trackdev_be/internal/realtime"
)

// New builds the fiber app with the full route table. Everything the
// handlers need comes in through here; there are no package-level singletons.
func New(cfg config.Config, gdb *gorm.DB, hub *realtime.Hub, bus *realtime.EventBus) *fiber.App {
	app := fiber.New()

	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		ExposeHeaders:    "Content-Length",
		AllowCredentials: true,
	}))

	app.Static("/uploads", cfg.UploadDir)

	authH := &handlers.AuthHandler{
		DB:        gdb,
		JWTSecret: cfg.JWTSecret,
		Expires:   cfg.JWTExpiresMin,
	}
	studentH := handlers.NewStudentHandler(gdb, cfg.UploadDir)
	projectH := handlers.NewProjectHandler(gdb, bus)
	statsH := handlers.NewStatsHandler(gdb)
	eventsH := handlers.NewEventsHandler(gdb, hub, cfg.JWTSecret)

	requireAuth := middleware.RequireAuth(gdb, cfg.JWTSecret)
	requireDeveloper := middleware.RequireRoles(models.RoleDeveloper)

	api := app.Group("/api")

	// public
	api.Post("/auth/register", authH.Register)
	api.Post("/auth/login", authH.Login)
	api.Get("/auth/developers", authH.ListDevelopers)

	api.Get("/auth/me", requireAuth, authH.Me)

	students := api.Group("/students", requireAuth)

	// fixed paths before /:id so they are never captured as ids
	students.Get("/stats/global", requireDeveloper, statsH.GlobalStats)
	students.Post("/assign-project", requireDeveloper, projectH.Assign)
	students.Get("/my-projects", projectH.MyProjects)

	students.Post("/", requireDeveloper, studentH.Create)
	students.Get("/", requireDeveloper, studentH.List)
	students.Get("/:id", requireDeveloper, studentH.Detail)
	students.Put("/:id", requireDeveloper, studentH.Update)
	students.Post("/:id/upload", requireDeveloper, studentH.Upload)

	students.Put("/project/:id", requireDeveloper, projectH.Update)
	students.Put("/project/:id/save-bill", requireDeveloper, projectH.SaveBill)
	students.Put("/project/:id/send-bill", requireDeveloper, projectH.SendBill)

	// websocket auth happens inside the handler via the token query param
	app.Get("/ws/events", websocket.New(eventsH.WebSocketHandler))

	return app
}

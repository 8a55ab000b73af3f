// Package api is the HTTP backend: auth and per-user task CRUD behind
// bearer tokens, with every error rendered as the shared JSON envelope.
package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"todo-planner/internal/service"
)

const bodyLimit = 1 << 20

// NewApp wires middleware and routes.
func NewApp(name string, auth *service.AuthService, tasks *service.TaskService) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               name,
		ErrorHandler:          ErrorHandler(),
		BodyLimit:             bodyLimit,
		DisableStartupMessage: true,
	})

	// RequestID must run before Logger.
	app.Use(RequestID())
	app.Use(Logger())
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization, " + RequestIDHeader,
		ExposeHeaders: RequestIDHeader,
	}))

	SetupRoutes(app, NewAuthHandler(auth), NewTaskHandler(tasks), Protected(auth))
	return app
}

func SetupRoutes(app *fiber.App, authH *AuthHandler, taskH *TaskHandler, protected fiber.Handler) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/signup", authH.SignUp)
	auth.Post("/login", authH.Login)
	auth.Get("/me", protected, authH.Me)
	auth.Post("/logout", protected, authH.Logout)

	tasks := api.Group("/tasks", protected)
	tasks.Get("/", taskH.List)
	// Registered before /:id so "calendar" is not parsed as an id.
	tasks.Get("/calendar", taskH.Calendar)
	tasks.Get("/:id", taskH.Get)
	tasks.Post("/", taskH.Create)
	tasks.Put("/:id", taskH.Update)
	tasks.Delete("/:id", taskH.Delete)
}

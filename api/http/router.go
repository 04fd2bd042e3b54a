package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/artem13815/career/api/http/handlers"
)

// Handlers groups everything Register mounts.
type Handlers struct {
	Auth      *handlers.AuthHandler
	Health    *handlers.HealthHandler
	Profile   *handlers.ProfileHandler
	Interview *handlers.InterviewHandler
	Diagnosis *handlers.DiagnosisHandler
	Legacy    *handlers.LegacyHandler
}

// Register wires all HTTP routes onto given Fiber app. authMW guards user
// routes, internalMW guards the execute endpoints used by the job runner.
func Register(app *fiber.App, h Handlers, authMW, internalMW fiber.Handler) {
	api := app.Group("/api")
	v1 := api.Group("/v1")

	// Health and readiness endpoints for monitoring
	v1.Get("/health", h.Health.Health)
	v1.Get("/ready", h.Health.Ready)

	a := v1.Group("/auth")
	a.Post("/register", h.Auth.Register)
	a.Post("/login", h.Auth.Login)

	// Internal execute phases. Registered before the user groups so the JWT
	// middleware does not run for them.
	v1.Post("/interview/extract/execute", internalMW, h.Interview.ExecuteExtraction)
	v1.Post("/diagnosis/execute", internalMW, h.Diagnosis.Execute)

	p := v1.Group("/profile", authMW)
	p.Get("/", h.Profile.Get)
	p.Put("/", h.Profile.Put)
	p.Patch("/ai-merge", h.Profile.Merge)

	iv := v1.Group("/interview", authMW)
	iv.Get("/history", h.Interview.History)
	iv.Post("/message", h.Interview.Message)
	iv.Delete("/", h.Interview.Reset)
	iv.Post("/extract/start", h.Interview.StartExtraction)
	iv.Get("/extract/status", h.Interview.ExtractionStatus)
	iv.Get("/:id/skills", h.Interview.Skills)
	iv.Put("/:id/skills", h.Interview.ConfirmSkills)
	iv.Delete("/:id/skills/:skillId", h.Interview.DeleteSkill)

	d := v1.Group("/diagnosis", authMW)
	d.Post("/start", h.Diagnosis.Start)
	d.Get("/", h.Diagnosis.List)
	d.Get("/step-detail", h.Diagnosis.StepDetail)
	d.Patch("/steps/:stepId", h.Diagnosis.SetStepCompleted)
	d.Get("/:id", h.Diagnosis.Get)

	l := v1.Group("/legacy", authMW)
	l.Get("/profile", h.Legacy.Profile)
	l.Patch("/profile", h.Legacy.MergeProfile)
	l.Get("/learning-plan", h.Legacy.LearningPlan)
	l.Get("/learning-plan/step-detail", h.Legacy.StepDetail)
}

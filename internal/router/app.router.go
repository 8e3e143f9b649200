package router

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/jabalpuragrawalsabha2019-pixel/jbp-agrawal-sabha/internal/handler"
)

func SetupRoutes(
	r chi.Router,
	auth *handler.AuthHandler,
	community *handler.CommunityHandler,
	uploads *handler.UploadHandler,
	wsh *handler.WSHandler,
) chi.Router {
	// ---- Global Middleware ----
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Route("/api/v1", func(api chi.Router) {
		// ---------------- Auth & Onboarding ----------------
		api.Route("/auth", func(a chi.Router) {
			a.Get("/state", auth.HandleState)
			a.Get("/login-url", auth.HandleLoginURL)
			a.Post("/callback", auth.HandleCallback)
			a.Post("/google", auth.HandleGoogleSignIn)
			a.Post("/verify-phone", auth.HandleVerifyPhone)
			a.Post("/profile", auth.HandleCreateProfile)
			a.Patch("/profile", auth.HandleUpdateProfile)
			a.Post("/profile/refresh", auth.HandleRefreshProfile)
			a.Post("/signout", auth.HandleSignOut)
		})

		// ---------------- Community Content ----------------
		api.Get("/home", community.HandleHome)

		api.Route("/events", func(e chi.Router) {
			e.Get("/", community.HandleListEvents)
			e.Post("/", community.HandleCreateEvent)
			e.Get("/{id}", community.HandleGetEvent)
		})

		api.Route("/jobs", func(j chi.Router) {
			j.Get("/", community.HandleListJobs)
			j.Post("/", community.HandleCreateJob)
		})

		api.Route("/blood-donors", func(b chi.Router) {
			b.Get("/", community.HandleListDonors)
			b.Post("/", community.HandleRegisterDonor)
		})

		api.Route("/donations", func(d chi.Router) {
			d.Get("/", community.HandleListDonations)
			d.Post("/", community.HandleRecordDonation)
		})

		api.Route("/matrimonial", func(m chi.Router) {
			m.Get("/", community.HandleListMatrimonial)
			m.Post("/", community.HandleCreateMatrimonial)
			m.Get("/{id}", community.HandleGetMatrimonial)
			m.Post("/{id}/contact-request", community.HandleRequestContact)
		})

		api.Get("/post-holders", community.HandleListPostHolders)
		api.Get("/members", community.HandleListMembers)

		api.Post("/uploads/photo", uploads.HandleUploadPhoto)
	})

	r.Get("/ws", wsh.HandleWS)

	return r
}

package routes

import (
	"roadsafe/auth"
	"roadsafe/chatbot"
	"roadsafe/middleware"
	"roadsafe/profile"
	"roadsafe/ratelim"
	"roadsafe/reports"
	"roadsafe/sos"

	"github.com/julienschmidt/httprouter"
)

func AddAuthRoutes(router *httprouter.Router, rl *ratelim.RateLimiter) {
	router.POST("/api/auth/signup", rl.Limit(auth.Signup))
	router.POST("/api/auth/login", rl.Limit(auth.Login))
}

func AddReportRoutes(router *httprouter.Router) {
	router.GET("/api/report", middleware.Authenticate(reports.GetReports))
	router.POST("/api/report", middleware.Authenticate(reports.AddReport))
	router.PUT("/api/report/:id", middleware.Authenticate(reports.UpdateReport))
	router.DELETE("/api/report/:id", middleware.Authenticate(reports.DeleteReport))
	router.GET("/api/report/:id/pdf", middleware.Authenticate(reports.ExportReportPDF))
}

func AddProfileRoutes(router *httprouter.Router) {
	router.GET("/api/user/profile", middleware.Authenticate(profile.GetProfile))
	router.PUT("/api/user/profile", middleware.Authenticate(profile.UpdateProfile))
}

func AddChatbotRoutes(router *httprouter.Router, rl *ratelim.RateLimiter) {
	router.POST("/api/chatbot", rl.Limit(chatbot.ChatWithBot))
	router.GET("/api/chatbot", chatbot.GetChats)
}

func AddSosRoutes(router *httprouter.Router, rl *ratelim.RateLimiter, hub *sos.Hub) {
	router.POST("/api/sos", rl.Limit(sos.CreateSos(hub)))
	router.GET("/api/sos", sos.GetSosEvents)
	router.GET("/ws/alerts", sos.ServeWS(hub))
}

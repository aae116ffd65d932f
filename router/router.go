package router

import (
	"github.com/gin-gonic/gin"
	"github.com/sakura-poker/reservation-app/controllers"
	"github.com/sakura-poker/reservation-app/middlewares"
	"github.com/sakura-poker/reservation-app/services"
	"gorm.io/gorm"
)

// Dependencies carries the shared services the routes are built on.
type Dependencies struct {
	DB            *gorm.DB
	Reservations  *services.ReservationService
	Tables        *services.TableService
	Settings      *services.SettingsService
	Templates     *services.TemplateService
	Conversations *services.ConversationService
	Notifications *services.NotificationService
	Line          *services.LineClient
	Scheduler     *services.ReminderScheduler
}

func SetupRouter(deps Dependencies) *gin.Engine {
	r := gin.Default()

	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares())
	r.Use(middlewares.LoggerMiddleware())

	userCtrl := controllers.NewUserController(deps.DB)
	authCtrl := controllers.NewAuthController(deps.Settings)
	tableCtrl := controllers.NewTableController(deps.Tables)
	reservationCtrl := controllers.NewReservationController(deps.Reservations, deps.Tables)
	customerCtrl := controllers.NewCustomerController(deps.Reservations, deps.Tables, deps.Templates, deps.Notifications)
	adminCtrl := controllers.NewAdminController(deps.DB, deps.Settings, deps.Templates, deps.Scheduler)
	lineCtrl := controllers.NewLineController(deps.Reservations, deps.Tables, deps.Conversations, deps.Templates, deps.Notifications, deps.Line)

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	r.GET("/tables", tableCtrl.GetAllTables)

	// LINE messaging webhook; the SDK checks the channel signature.
	r.POST("/line/webhook", lineCtrl.Webhook)

	// LIFF id-token exchange for customers.
	r.POST("/auth/liff", authCtrl.LiffLogin)

	// Staff login, throttled.
	login := r.Group("/admin")
	login.Use(middlewares.NewStrictRateLimiter())
	{
		login.POST("/login", userCtrl.Login)
	}

	// ----------------------------------------------------------------
	//                      CUSTOMER ROUTES (LIFF)
	// ----------------------------------------------------------------
	r.GET("/customer/availability", customerCtrl.GetAvailability)

	customer := r.Group("/customer")
	customer.Use(middlewares.LiffAuthMiddleware())
	{
		customer.POST("/book", customerCtrl.Book)
		customer.GET("/my/reservations", customerCtrl.GetMyReservations)
	}

	// ----------------------------------------------------------------
	//                      ADMIN ROUTES
	// ----------------------------------------------------------------
	admin := r.Group("/admin")
	admin.Use(middlewares.StaffAuthMiddleware())

	admin.GET("/profile", userCtrl.GetProfile)

	admin.GET("/reservations", reservationCtrl.ListReservations)
	admin.POST("/reservations", reservationCtrl.CreateReservation)
	admin.PUT("/reservations/:id", reservationCtrl.UpdateReservation)

	admin.GET("/tables", tableCtrl.GetAllTables)
	admin.GET("/tables/:table_id", tableCtrl.GetTableByID)
	admin.PATCH("/tables/:table_id", tableCtrl.UpdateTable)
	admin.GET("/tables/:table_id/availability", reservationCtrl.GetAvailability)

	admin.GET("/dashboard", adminCtrl.GetDashboard)

	admin.GET("/templates/reminder", adminCtrl.GetTemplate("REMINDER"))
	admin.PUT("/templates/reminder", adminCtrl.PutTemplate("REMINDER"))
	admin.GET("/templates/confirmation", adminCtrl.GetTemplate("CONFIRMATION"))
	admin.PUT("/templates/confirmation", adminCtrl.PutTemplate("CONFIRMATION"))

	admin.GET("/settings", adminCtrl.GetSettings)
	admin.PUT("/settings", adminCtrl.PutSettings)
	admin.GET("/settings/notification", adminCtrl.GetNotificationSettings)
	admin.PUT("/settings/notification", adminCtrl.PutNotificationSettings)

	admin.POST("/reminders/test", adminCtrl.TestReminders)

	// Dashboard event stream.
	wsGroup := r.Group("/ws")
	wsGroup.Use(middlewares.WebSocketAuthMiddleware())
	{
		wsGroup.GET("/:role", controllers.EventsHandler)
	}

	return r
}

package main

import (
	"log"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sakura-poker/reservation-app/config"
	"github.com/sakura-poker/reservation-app/controllers"
	"github.com/sakura-poker/reservation-app/database"
	"github.com/sakura-poker/reservation-app/middlewares"
	"github.com/sakura-poker/reservation-app/router"
	"github.com/sakura-poker/reservation-app/services"
	"github.com/sakura-poker/reservation-app/utils"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or error loading: %v", err)
	}

	utils.InitLogger()

	db, err := config.InitDB()
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}
	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := database.Migrate(db); err != nil {
		utils.ErrorLogger.Fatalf("Failed to migrate database: %v", err)
	}

	tableService := services.NewTableService(db)
	if err := tableService.EnsureSeedData(); err != nil {
		utils.ErrorLogger.Fatalf("Failed to seed tables: %v", err)
	}

	if err := controllers.EnsureInitialAdmin(db, os.Getenv("ADMIN_USERNAME"), os.Getenv("ADMIN_PASSWORD")); err != nil {
		utils.ErrorLogger.Fatalf("Failed to create initial admin: %v", err)
	}

	settingsService := services.NewSettingsService(db)
	templateService := services.NewTemplateService(db)
	conversationService := services.NewConversationService(db)
	reservationService := services.NewReservationService(db)
	lineClient := services.NewLineClient(settingsService)
	notificationService := services.NewNotificationService(db, lineClient, settingsService)

	reminderHour := 10
	if raw := os.Getenv("REMINDER_HOUR"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed >= 0 && parsed <= 23 {
			reminderHour = parsed
		}
	}
	scheduler := services.NewReminderScheduler(reservationService, templateService, notificationService, reminderHour)
	scheduler.Start()
	defer scheduler.Stop()

	r := router.SetupRouter(router.Dependencies{
		DB:            db,
		Reservations:  reservationService,
		Tables:        tableService,
		Settings:      settingsService,
		Templates:     templateService,
		Conversations: conversationService,
		Notifications: notificationService,
		Line:          lineClient,
		Scheduler:     scheduler,
	})

	rateLimiter := middlewares.NewRateLimiter(50, 1)
	r.Use(rateLimiter.RateLimit())

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	utils.InfoLogger.Printf("Listening on port %s", port)
	if err := r.Run(":" + port); err != nil {
		utils.ErrorLogger.Fatal(err)
	}
}

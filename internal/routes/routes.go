package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/business-scheduler/internal/audit"
	"github.com/BruksfildServices01/business-scheduler/internal/config"
	"github.com/BruksfildServices01/business-scheduler/internal/domain/availability"
	"github.com/BruksfildServices01/business-scheduler/internal/handlers"
	"github.com/BruksfildServices01/business-scheduler/internal/infra/lock"
	infraRepo "github.com/BruksfildServices01/business-scheduler/internal/infra/repository"
	"github.com/BruksfildServices01/business-scheduler/internal/middleware"
	"github.com/BruksfildServices01/business-scheduler/internal/models"
	ucAppointment "github.com/BruksfildServices01/business-scheduler/internal/usecase/appointment"
	ucCalendar "github.com/BruksfildServices01/business-scheduler/internal/usecase/calendar"
	"github.com/BruksfildServices01/business-scheduler/internal/validators"
)

// Deps are the process-wide singletons built in cmd/api.
type Deps struct {
	DB     *gorm.DB
	Config *config.Config
	Logger zerolog.Logger
	Locker lock.Locker
	Audit  *audit.Dispatcher
}

func RegisterRoutes(r *gin.Engine, deps Deps) error {
	db := deps.DB
	cfg := deps.Config

	if err := validators.RegisterBindings(); err != nil {
		return err
	}

	locker := deps.Locker
	if locker == nil {
		locker = lock.Noop{}
	}

	// ======================================================
	// 🌍 MIDDLEWARE GLOBAL
	// ======================================================
	r.Use(
		middleware.RequestID(),
		middleware.Logger(deps.Logger),
		middleware.Recovery(deps.Logger),
		middleware.CORSMiddleware(cfg.CORSOrigins()),
	)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// ======================================================
	// 🔧 INFRA (SINGLETONS)
	// ======================================================
	appointmentRepo := infraRepo.NewAppointmentGormRepository(db)

	engine := availability.NewEngine(
		appointmentRepo,
		availability.Policy{
			AllowPastBookings: cfg.AllowPastBookings,
			MaxRangeDays:      cfg.MaxStatisticsDays,
		},
		deps.Logger,
	)
	calendarEngine := ucCalendar.Adapt(engine)

	// ======================================================
	// 🧠 USE CASES: APPOINTMENTS
	// ======================================================
	createAppointmentUC := ucAppointment.NewCreateAppointment(
		appointmentRepo,
		engine.Validator,
		locker,
		deps.Audit,
		deps.Logger,
	)

	rescheduleAppointmentUC := ucAppointment.NewRescheduleAppointment(
		appointmentRepo,
		engine.Validator,
		locker,
		deps.Audit,
		deps.Logger,
	)

	changeStatusUC := ucAppointment.NewChangeAppointmentStatus(
		appointmentRepo,
		deps.Audit,
	)

	listAppointmentsByDateUC := ucAppointment.NewListAppointmentsByDate(
		appointmentRepo,
	)

	listAppointmentsByMonthUC := ucAppointment.NewListAppointmentsByMonth(
		appointmentRepo,
	)

	getAvailabilityUC := ucAppointment.NewGetAvailability(
		appointmentRepo,
		engine.Slots,
	)

	// ======================================================
	// 🧠 USE CASES: CALENDAR
	// ======================================================
	validateAvailabilityUC := ucCalendar.NewValidateAvailability(calendarEngine)
	availableSlotsUC := ucCalendar.NewGetAvailableSlots(calendarEngine, appointmentRepo)
	calendarEventsUC := ucCalendar.NewGetCalendarEvents(calendarEngine, appointmentRepo)
	calendarStatisticsUC := ucCalendar.NewGetCalendarStatistics(calendarEngine, appointmentRepo)

	// ======================================================
	// 🧩 HANDLERS
	// ======================================================
	authHandler := handlers.NewAuthHandler(db, cfg)
	meHandler := handlers.NewMeHandler(db)
	businessHandler := handlers.NewBusinessHandler(db)

	serviceHandler := handlers.NewServiceHandler(db)
	clientHandler := handlers.NewClientHandler(db)
	workingHoursHandler := handlers.NewWorkingHoursHandler(db)
	exceptionHandler := handlers.NewScheduleExceptionHandler(db)

	appointmentHandler := handlers.NewAppointmentHandler(
		createAppointmentUC,
		rescheduleAppointmentUC,
		changeStatusUC,
		listAppointmentsByDateUC,
		listAppointmentsByMonthUC,
	)

	availabilityHandler := handlers.NewAvailabilityHandler(validateAvailabilityUC, availableSlotsUC)
	calendarHandler := handlers.NewCalendarHandler(calendarEventsUC, calendarStatisticsUC)

	auditLogsHandler := handlers.NewAuditLogsHandler(db)

	publicHandler := handlers.NewPublicHandler(db, createAppointmentUC, getAvailabilityUC)

	// ======================================================
	// 🌐 API (JSON)
	// ======================================================
	api := r.Group("/api")
	{
		// ------------------------------
		// 🌐 API PÚBLICA
		// ------------------------------
		publicAPI := api.Group("/public")
		{
			publicAPI.GET("/:slug/services", publicHandler.ListServices)
			publicAPI.GET("/:slug/availability", publicHandler.AvailabilityForClient)
			publicAPI.POST("/:slug/appointments", publicHandler.CreateAppointment)
		}

		// ------------------------------
		// 🔐 AUTH
		// ------------------------------
		api.POST("/auth/register", authHandler.Register)
		api.POST("/auth/login", authHandler.Login)

		// ------------------------------
		// 🔐 API PRIVADA
		// ------------------------------
		secured := api.Group("/me")
		secured.Use(middleware.AuthMiddleware(cfg.JWTSecret))
		{
			secured.GET("", meHandler.GetMe)
			secured.PATCH("", meHandler.UpdateMe)

			secured.GET("/business", businessHandler.GetMeBusiness)
			secured.PATCH("/business", middleware.RequireRole(models.RoleOwner), businessHandler.UpdateMeBusiness)

			secured.GET("/clients", clientHandler.List)

			secured.GET("/services", serviceHandler.List)
			secured.POST("/services", middleware.RequireRole(models.RoleOwner), serviceHandler.Create)
			secured.PATCH("/services/:id", middleware.RequireRole(models.RoleOwner), serviceHandler.Update)

			secured.GET("/working-hours", workingHoursHandler.Get)
			secured.PUT("/working-hours", workingHoursHandler.Update)

			secured.GET("/schedule-exceptions", exceptionHandler.List)
			secured.POST("/schedule-exceptions", exceptionHandler.Create)
			secured.DELETE("/schedule-exceptions/:id", exceptionHandler.Delete)

			// ------------------------------
			// AVAILABILITY / CALENDAR
			// ------------------------------
			secured.POST("/availability/validate", availabilityHandler.Validate)
			secured.GET("/availability/slots", availabilityHandler.Slots)

			secured.GET("/calendar", calendarHandler.Events)
			secured.GET("/calendar/statistics", calendarHandler.Statistics)

			// ------------------------------
			// APPOINTMENTS
			// ------------------------------
			secured.POST("/appointments", appointmentHandler.Create)
			secured.GET("/appointments", appointmentHandler.ListByDate)
			secured.GET("/appointments/month", appointmentHandler.ListByMonth)
			secured.PATCH("/appointments/:id/reschedule", appointmentHandler.Reschedule)
			secured.PATCH("/appointments/:id/confirm", appointmentHandler.Confirm)
			secured.PATCH("/appointments/:id/start", appointmentHandler.Start)
			secured.PATCH("/appointments/:id/complete", appointmentHandler.Complete)
			secured.PATCH("/appointments/:id/cancel", appointmentHandler.Cancel)
			secured.PATCH("/appointments/:id/no-show", appointmentHandler.NoShow)

			secured.GET("/audit-logs", middleware.RequireRole(models.RoleOwner), auditLogsHandler.List)
		}
	}

	return nil
}

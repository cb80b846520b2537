// @title FocusBear API
// @description API for gamified study-habit tracker "FocusBear"
// @BasePath /api/v1
// @schemes http
package main

import (
	"log"
	"log/slog"

	"github.com/limbo/focusbear/internal/api"
	"github.com/limbo/focusbear/internal/repository"
	"github.com/limbo/focusbear/internal/service"
	"github.com/limbo/focusbear/pkg/cleanup"
	"github.com/limbo/focusbear/pkg/clock"
	"github.com/limbo/focusbear/pkg/config"
	jwtservice "github.com/limbo/focusbear/pkg/jwt_service"
)

func init() {
	service.InitValidator()
}

func main() {
	cfg := config.New()
	dbCfg := repository.PGCfg{
		Address:  cfg.GetString("POSTGRES_DB_ADDRESS"),
		Username: cfg.GetString("POSTGRES_USER"),
		Password: cfg.GetString("POSTGRES_PASSWORD"),
		DB:       cfg.GetString("POSTGRES_DB"),
	}

	statsRepo := repository.NewStatsRepo(&dbCfg)
	clk := clock.Real{}
	// Single locks instance: every service crediting coins serializes
	// per-user ledger writes through it.
	locks := service.NewUserLocks()

	events := service.NewFanoutPublisher()
	events.Subscribe(func(e service.Event) {
		slog.Info("focus session event",
			slog.String("kind", string(e.Kind)),
			slog.String("session_id", e.Session.ID.String()),
			slog.String("uid", e.Session.UserID.String()),
		)
	})

	userService := service.NewUserService(repository.NewUsersRepo(&dbCfg))
	focusService := service.NewFocusService(
		repository.NewSessionsRepo(&dbCfg),
		statsRepo,
		repository.NewWhitelistRepo(&dbCfg),
		clk,
		events,
		locks,
	)
	tasksService := service.NewTasksService(repository.NewTasksRepo(&dbCfg), statsRepo, clk, locks)
	assignmentsService := service.NewAssignmentsService(repository.NewAssignmentsRepo(&dbCfg), statsRepo, clk, locks)
	habitsService := service.NewHabitsService(repository.NewHabitsRepo(&dbCfg), statsRepo, clk, locks)
	coursesService := service.NewCoursesService(repository.NewCoursesRepo(&dbCfg))

	serv := api.New(&api.ServicesList{
		UserService:        userService,
		FocusService:       focusService,
		TasksService:       tasksService,
		AssignmentsService: assignmentsService,
		HabitsService:      habitsService,
		CoursesService:     coursesService,
		JwtService:         jwtservice.New(cfg.GetString("JWT_SECRET")),
	})
	defer cleanup.CleanUp()
	err := serv.Run(cfg.GetStringOrDefault("API_ADDRESS", ":8080"))
	if err != nil {
		log.Println("Server error: " + err.Error())
	}
}

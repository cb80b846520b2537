package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/limbo/focusbear/internal/service"
)

type Server struct {
	mx                 *chi.Mux
	userService        service.UserServiceI
	focusService       service.FocusServiceI
	tasksService       service.TasksServiceI
	assignmentsService service.AssignmentsServiceI
	habitsService      service.HabitsServiceI
	coursesService     service.CoursesServiceI
	jwtService         JWTServiceI
}

type ServicesList struct {
	UserService        service.UserServiceI
	FocusService       service.FocusServiceI
	TasksService       service.TasksServiceI
	AssignmentsService service.AssignmentsServiceI
	HabitsService      service.HabitsServiceI
	CoursesService     service.CoursesServiceI
	JwtService         JWTServiceI
}

func New(servicesOptions *ServicesList) *Server {
	return &Server{
		mx:                 chi.NewMux(),
		userService:        servicesOptions.UserService,
		focusService:       servicesOptions.FocusService,
		tasksService:       servicesOptions.TasksService,
		assignmentsService: servicesOptions.AssignmentsService,
		habitsService:      servicesOptions.HabitsService,
		coursesService:     servicesOptions.CoursesService,
		jwtService:         servicesOptions.JwtService,
	}
}

func (s *Server) Run(address string) error {
	s.mx.Use(s.RequestIDMiddleware, s.SettingUpLoggerMiddleware)
	s.mx.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/register", s.Register)
		r.Post("/auth/login", s.Login)
		r.Group(func(r chi.Router) {
			r.Use(s.AuthMiddleware, s.LoggerExtensionMiddleware)

			r.Delete("/auth/account", s.DeleteAccount)

			r.Post("/focus/sessions", s.StartSession)
			r.Get("/focus/sessions/active", s.GetActiveSession)
			r.Post("/focus/sessions/{id}/complete", s.CompleteSession)
			r.Post("/focus/sessions/break", s.BreakSession)
			r.Get("/focus/stats", s.GetStats)
			r.Post("/focus/guard", s.GuardOpen)
			r.Get("/focus/whitelist", s.GetWhitelist)
			r.Post("/focus/whitelist", s.AddWhitelistItem)
			r.Delete("/focus/whitelist/{id}", s.RemoveWhitelistItem)

			r.Post("/tasks", s.CreateTask)
			r.Get("/tasks", s.GetTasks)
			r.Post("/tasks/{id}/complete", s.CompleteTask)
			r.Delete("/tasks/{id}", s.DeleteTask)

			r.Post("/assignments", s.CreateAssignment)
			r.Get("/assignments", s.GetAssignments)
			r.Post("/assignments/{id}/complete", s.CompleteAssignment)
			r.Delete("/assignments/{id}", s.DeleteAssignment)

			r.Post("/habits", s.CreateHabit)
			r.Get("/habits", s.GetHabits)
			r.Post("/habits/{id}/complete", s.CompleteHabit)
			r.Delete("/habits/{id}", s.DeleteHabit)

			r.Post("/courses", s.CreateCourse)
			r.Get("/courses", s.GetCourses)
			r.Patch("/courses/{id}", s.UpdateCourseProgress)
			r.Delete("/courses/{id}", s.DeleteCourse)
		})
	})
	return http.ListenAndServe(address, s.mx)
}

package handler

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/sysu-ecnc-dev/worktime-manager/backend/internal/config"
	"github.com/sysu-ecnc-dev/worktime-manager/backend/internal/domain"
	"github.com/sysu-ecnc-dev/worktime-manager/backend/internal/lock"
	"github.com/sysu-ecnc-dev/worktime-manager/backend/internal/repository"
)

type Handler struct {
	validate     *validator.Validate
	config       *config.Config
	repository   *repository.Repository
	translator   ut.Translator
	eventChannel *amqp.Channel
	coordinator  *lock.Coordinator

	Mux *chi.Mux
}

func NewHandler(cfg *config.Config, repo *repository.Repository, eventCh *amqp.Channel, lockStore lock.Store) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	zh := zh.New()
	uni := ut.New(zh, zh)
	trans, _ := uni.GetTranslator("zh")
	if err := zh_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	return &Handler{
		validate:     validate,
		config:       cfg,
		repository:   repo,
		translator:   trans,
		eventChannel: eventCh,
		coordinator:  lock.NewCoordinator(lockStore, time.Duration(cfg.Lock.TTL)*time.Second),

		Mux: chi.NewRouter(),
	}, nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)

	// 认证相关
	h.Mux.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
	})

	// 以下 API 必须要在登录后才允许调用
	h.Mux.Group(func(r chi.Router) {
		r.Use(h.auth)
		r.Use(h.myInfo)

		r.Route("/users", func(r chi.Router) {
			r.With(h.RequiredRole([]domain.Role{domain.RoleAdministrator})).Post("/", h.CreateUser)
			r.Get("/", h.GetAllUserInfo)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.userInfo)
				r.Get("/", h.GetUserInfo)
				r.With(h.preventOperateInitialAdmin).With(h.RequiredRole([]domain.Role{domain.RoleAdministrator})).Patch("/", h.UpdateUser)
				r.With(h.preventOperateInitialAdmin).With(h.RequiredRole([]domain.Role{domain.RoleAdministrator})).Delete("/", h.DeleteUser)
			})
		})

		r.Route("/schedule", func(r chi.Router) {
			r.Get("/week/{weekStart}", h.GetMyWeek)
			r.With(h.RequiredRole([]domain.Role{domain.RoleScheduler, domain.RoleAdministrator})).Get("/team-week/{weekStart}", h.GetTeamWeek)

			r.Get("/hours-summary/{weekStart}", h.GetWeekHoursSummary)
			r.Get("/hours-summary/month/{year}/{month}", h.GetMonthHoursSummary)

			r.Route("/day/{id}", func(r chi.Router) {
				r.Use(h.daySchedule)
				r.Put("/", h.UpdateDaySchedule)
				r.Post("/lock", h.AcquireDayScheduleLock)
				r.Delete("/lock", h.CancelDayScheduleLock)
			})
			r.Post("/day/resync", h.ResyncDaySchedule)

			r.Route("/templates", func(r chi.Router) {
				r.With(h.RequiredRole([]domain.Role{domain.RoleScheduler, domain.RoleAdministrator})).Post("/", h.CreateScheduleTemplate)
				r.Get("/", h.GetAllScheduleTemplates)
				r.Route("/{id}", func(r chi.Router) {
					r.Use(h.scheduleTemplate)
					r.Get("/", h.GetScheduleTemplate)
					r.With(h.RequiredRole([]domain.Role{domain.RoleScheduler, domain.RoleAdministrator})).Put("/", h.UpdateScheduleTemplate)
					r.With(h.RequiredRole([]domain.Role{domain.RoleScheduler, domain.RoleAdministrator})).Delete("/", h.DeleteScheduleTemplate)
					r.With(h.RequiredRole([]domain.Role{domain.RoleScheduler, domain.RoleAdministrator})).Post("/lock", h.AcquireTemplateLock)
					r.With(h.RequiredRole([]domain.Role{domain.RoleScheduler, domain.RoleAdministrator})).Delete("/lock", h.CancelTemplateLock)
				})
			})

			r.Route("/template-assignments", func(r chi.Router) {
				r.Use(h.RequiredRole([]domain.Role{domain.RoleScheduler, domain.RoleAdministrator}))
				r.Post("/", h.CreateTemplateAssignment)
				r.Get("/", h.GetAllTemplateAssignments)
				r.Route("/{id}", func(r chi.Router) {
					r.Use(h.templateAssignment)
					r.Get("/", h.GetTemplateAssignment)
					r.Put("/", h.UpdateTemplateAssignment)
					r.Delete("/", h.DeleteTemplateAssignment)
				})
			})
		})

		r.Route("/holidays", func(r chi.Router) {
			r.Get("/", h.GetAllHolidays)
			r.With(h.RequiredRole([]domain.Role{domain.RoleAdministrator})).Post("/", h.CreateHoliday)
			r.With(h.RequiredRole([]domain.Role{domain.RoleAdministrator})).Delete("/{id}", h.DeleteHoliday)
		})
	})
}

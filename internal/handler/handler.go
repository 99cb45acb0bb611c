package handler

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
	"github.com/redis/go-redis/v9"
	"github.com/sanctuary-dev/party-roster/backend/internal/config"
	"github.com/sanctuary-dev/party-roster/backend/internal/domain"
	"github.com/sanctuary-dev/party-roster/backend/internal/repository"
	"github.com/sanctuary-dev/party-roster/backend/internal/roster"
)

type Handler struct {
	validate    *validator.Validate
	config      *config.Config
	repository  *repository.Repository
	coordinator *roster.Coordinator
	translator  ut.Translator
	redisClient *redis.Client

	Mux *chi.Mux
}

func NewHandler(cfg *config.Config, repo *repository.Repository, coordinator *roster.Coordinator, rdb *redis.Client) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	zh := zh.New()
	uni := ut.New(zh, zh)
	trans, _ := uni.GetTranslator("zh")
	if err := zh_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	return &Handler{
		validate:    validate,
		config:      cfg,
		repository:  repo,
		coordinator: coordinator,
		translator:  trans,
		redisClient: rdb,

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

		r.Route("/my-info", func(r chi.Router) {
			r.Use(h.myInfo)
			r.Get("/", h.GetMyInfo)
			r.Route("/characters", func(r chi.Router) {
				r.Post("/", h.AddCharacter)
				r.Patch("/{index}", h.RenameCharacter)
				r.Delete("/{name}", h.RemoveCharacter)
			})
		})

		r.Route("/parties", func(r chi.Router) {
			r.Use(h.myInfo)
			r.Post("/", h.CreateParty)
			r.Get("/", h.ListOpenParties)
			r.Route("/{id}", func(r chi.Router) {
				r.Delete("/", h.DeleteParty)
				r.Post("/complete", h.CompleteParty)
				r.Route("/teams/{team}/slots/{index}", func(r chi.Router) {
					r.Post("/claim", h.ClaimSlot)
					r.Delete("/", h.ReleaseSlot)
				})
			})
		})

		r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).
			Get("/completion-records", h.ListCompletionRecords)

		r.Route("/users", func(r chi.Router) {
			r.Use(h.RequiredRole([]domain.Role{domain.RoleAdmin}))
			r.Get("/", h.GetAllUserInfo)
			r.With(h.myInfo, h.userInfo).Patch("/{id}/pin", h.ResetUserPIN)
		})

		r.Route("/settings", func(r chi.Router) {
			r.Use(h.RequiredRole([]domain.Role{domain.RoleAdmin}))
			r.Use(h.myInfo)
			r.Get("/", h.GetSettings)
			r.Put("/", h.SaveSettings)
		})

		r.Get("/events", h.Events)
	})
}

package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"biotrack/internal/domain"
	"biotrack/internal/service"
	"biotrack/internal/transport/http/ez"
)

type UserHandler struct {
	svc *service.UserService
	log *zap.Logger
}

func NewUserHandler(svc *service.UserService, l *zap.Logger) *UserHandler {
	return &UserHandler{svc: svc, log: l}
}

func (h *UserHandler) Priority() int { return 10 }

type bmiQuery struct {
	Range string `form:"range" binding:"required"`
}

type createdOut struct {
	ID uint `json:"id"`
}

func (h *UserHandler) MountAPI(g *gin.RouterGroup) {
	e := ez.New(g, h.log)

	ez.Register(e, ez.Action[domain.UserRequest, createdOut]{
		Method:  http.MethodPost,
		Path:    "/users",
		Binder:  ez.BindJSON,
		Message: "User created successfully!",
		Handler: func(c *gin.Context, in *domain.UserRequest) (createdOut, error) {
			u, err := h.svc.Create(c.Request.Context(), *in)
			return createdOut{ID: u.ID}, err
		},
	})

	ez.Register(e, ez.Action[struct{}, []service.UserView]{
		Method: http.MethodGet,
		Path:   "/users",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) ([]service.UserView, error) {
			return h.svc.List(c.Request.Context())
		},
	})

	ez.Register(e, ez.Action[struct{}, []service.UserView]{
		Method: http.MethodGet,
		Path:   "/users/without-measures",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) ([]service.UserView, error) {
			return h.svc.ListWithoutMeasures(c.Request.Context())
		},
	})

	ez.Register(e, ez.Action[bmiQuery, []service.UserBMI]{
		Method: http.MethodGet,
		Path:   "/users/bmi-filter",
		Binder: ez.BindQuery,
		Handler: func(c *gin.Context, in *bmiQuery) ([]service.UserBMI, error) {
			return h.svc.FilterByBMI(c.Request.Context(), in.Range)
		},
	})

	ez.Register(e, ez.Action[struct{}, service.UserView]{
		Method: http.MethodGet,
		Path:   "/users/:id",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (service.UserView, error) {
			id, err := ez.ParamID(c, "id")
			if err != nil {
				return service.UserView{}, err
			}
			return h.svc.Get(c.Request.Context(), id)
		},
	})

	ez.Register(e, ez.Action[struct{}, service.UserWithMeasures]{
		Method: http.MethodGet,
		Path:   "/users/:id/all-measures",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (service.UserWithMeasures, error) {
			id, err := ez.ParamID(c, "id")
			if err != nil {
				return service.UserWithMeasures{}, err
			}
			return h.svc.WithAllMeasures(c.Request.Context(), id)
		},
	})

	ez.Register(e, ez.Action[struct{}, service.UserWithMeasures]{
		Method: http.MethodGet,
		Path:   "/users/:id/latest-measure",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (service.UserWithMeasures, error) {
			id, err := ez.ParamID(c, "id")
			if err != nil {
				return service.UserWithMeasures{}, err
			}
			return h.svc.WithLatestMeasure(c.Request.Context(), id)
		},
	})

	ez.Register(e, ez.Action[domain.UserRequest, struct{}]{
		Method:  http.MethodPut,
		Path:    "/users/:id",
		Binder:  ez.BindJSON,
		Message: "User updated successfully!",
		Handler: func(c *gin.Context, in *domain.UserRequest) (struct{}, error) {
			id, err := ez.ParamID(c, "id")
			if err != nil {
				return struct{}{}, err
			}
			return struct{}{}, h.svc.Update(c.Request.Context(), id, *in)
		},
	})

	ez.Register(e, ez.Action[domain.UserPatchRequest, struct{}]{
		Method:  http.MethodPatch,
		Path:    "/users/:id",
		Binder:  ez.BindJSON,
		Message: "User partially updated successfully!",
		Handler: func(c *gin.Context, in *domain.UserPatchRequest) (struct{}, error) {
			id, err := ez.ParamID(c, "id")
			if err != nil {
				return struct{}{}, err
			}
			return struct{}{}, h.svc.Patch(c.Request.Context(), id, *in)
		},
	})

	ez.Register(e, ez.Action[struct{}, struct{}]{
		Method:  http.MethodDelete,
		Path:    "/users/:id",
		Binder:  ez.BindNone,
		Message: "User removed successfully!",
		Handler: func(c *gin.Context, _ *struct{}) (struct{}, error) {
			id, err := ez.ParamID(c, "id")
			if err != nil {
				return struct{}{}, err
			}
			return struct{}{}, h.svc.Delete(c.Request.Context(), id)
		},
	})
}

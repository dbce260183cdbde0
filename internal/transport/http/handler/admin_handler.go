package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"biotrack/internal/service"
	"biotrack/internal/transport/http/ez"
)

type AdminHandler struct {
	users    *service.UserService
	measures *service.MeasureService
	log      *zap.Logger
}

func NewAdminHandler(users *service.UserService, measures *service.MeasureService, l *zap.Logger) *AdminHandler {
	return &AdminHandler{users: users, measures: measures, log: l}
}

type userPageQuery struct {
	Offset int    `form:"offset,default=0"  binding:"min=0"`
	Limit  int    `form:"limit,default=20"`
	Q      string `form:"q"` // matches name or email
}

type userPage struct {
	Total int64              `json:"total"`
	Items []service.UserView `json:"items"`
}

type purgeOut struct {
	Removed int64 `json:"removed"`
}

func (h *AdminHandler) MountAdmin(g *gin.RouterGroup) {
	e := ez.New(g, h.log)

	ez.Register(e, ez.Action[userPageQuery, userPage]{
		Method: http.MethodGet,
		Path:   "/users",
		Binder: ez.BindQuery,
		Handler: func(c *gin.Context, in *userPageQuery) (userPage, error) {
			items, total, err := h.users.Page(c.Request.Context(), in.Offset, in.Limit, in.Q)
			return userPage{Total: total, Items: items}, err
		},
	})

	ez.Register(e, ez.Action[struct{}, purgeOut]{
		Method:  http.MethodDelete,
		Path:    "/users/:id/measures",
		Binder:  ez.BindNone,
		Message: "Measures removed successfully!",
		Handler: func(c *gin.Context, _ *struct{}) (purgeOut, error) {
			id, err := ez.ParamID(c, "id")
			if err != nil {
				return purgeOut{}, err
			}
			n, err := h.measures.PurgeForUser(c.Request.Context(), id)
			return purgeOut{Removed: n}, err
		},
	})
}

package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"biotrack/internal/domain"
	"biotrack/internal/service"
	"biotrack/internal/transport/http/ez"
)

type MeasureHandler struct {
	svc *service.MeasureService
	log *zap.Logger
}

func NewMeasureHandler(svc *service.MeasureService, l *zap.Logger) *MeasureHandler {
	return &MeasureHandler{svc: svc, log: l}
}

func (h *MeasureHandler) Priority() int { return 20 }

func (h *MeasureHandler) MountAPI(g *gin.RouterGroup) {
	e := ez.New(g, h.log)

	ez.Register(e, ez.Action[domain.MeasureRequest, createdOut]{
		Method:  http.MethodPost,
		Path:    "/measures/:userId",
		Binder:  ez.BindJSON,
		Message: "Measure created successfully!",
		Handler: func(c *gin.Context, in *domain.MeasureRequest) (createdOut, error) {
			userID, err := ez.ParamID(c, "userId")
			if err != nil {
				return createdOut{}, err
			}
			m, err := h.svc.Create(c.Request.Context(), userID, *in)
			return createdOut{ID: m.ID}, err
		},
	})

	ez.Register(e, ez.Action[struct{}, []service.MeasureView]{
		Method: http.MethodGet,
		Path:   "/measures/:userId/measures",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) ([]service.MeasureView, error) {
			userID, err := ez.ParamID(c, "userId")
			if err != nil {
				return nil, err
			}
			return h.svc.ListForUser(c.Request.Context(), userID)
		},
	})

	ez.Register(e, ez.Action[struct{}, service.MeasureView]{
		Method: http.MethodGet,
		Path:   "/measures/:userId/measures/:id",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (service.MeasureView, error) {
			userID, err := ez.ParamID(c, "userId")
			if err != nil {
				return service.MeasureView{}, err
			}
			id, err := ez.ParamID(c, "id")
			if err != nil {
				return service.MeasureView{}, err
			}
			return h.svc.GetForUser(c.Request.Context(), userID, id)
		},
	})

	// data is null when the user has no measure yet
	ez.Register(e, ez.Action[struct{}, *service.MeasureView]{
		Method: http.MethodGet,
		Path:   "/measures/:userId/latest",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (*service.MeasureView, error) {
			userID, err := ez.ParamID(c, "userId")
			if err != nil {
				return nil, err
			}
			return h.svc.Latest(c.Request.Context(), userID)
		},
	})

	ez.Register(e, ez.Action[domain.MeasureRequest, struct{}]{
		Method:  http.MethodPut,
		Path:    "/measures/:id",
		Binder:  ez.BindJSON,
		Message: "Measure updated successfully!",
		Handler: func(c *gin.Context, in *domain.MeasureRequest) (struct{}, error) {
			id, err := ez.ParamID(c, "id")
			if err != nil {
				return struct{}{}, err
			}
			_, err = h.svc.Update(c.Request.Context(), id, *in)
			return struct{}{}, err
		},
	})

	ez.Register(e, ez.Action[struct{}, struct{}]{
		Method:  http.MethodDelete,
		Path:    "/measures/:id",
		Binder:  ez.BindNone,
		Message: "Measure removed successfully!",
		Handler: func(c *gin.Context, _ *struct{}) (struct{}, error) {
			id, err := ez.ParamID(c, "id")
			if err != nil {
				return struct{}{}, err
			}
			return struct{}{}, h.svc.Delete(c.Request.Context(), id)
		},
	})
}

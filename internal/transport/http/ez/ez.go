package ez

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"biotrack/internal/domain"
	mdw "biotrack/internal/transport/http/middleware"
	resp "biotrack/internal/transport/http/response"
)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
			return domain.ValidPassword(fl.Field().String())
		})
	}
}

type Binder string

const (
	BindJSON  Binder = "json"
	BindQuery Binder = "query"
	BindNone  Binder = "none" // handler reads c.Param itself
)

// Action is one endpoint: I is bound from the request, O is sent as data.
type Action[I any, O any] struct {
	Method string
	Path   string
	Binder Binder
	// Status on success, 200 when zero.
	Status int
	// Message replaces the default "OK" text of a successful response.
	Message string
	Handler func(c *gin.Context, in *I) (O, error)
}

type EZ struct {
	g   *gin.RouterGroup
	log *zap.Logger
}

func New(g *gin.RouterGroup, l *zap.Logger) EZ {
	if l == nil {
		l = zap.NewNop()
	}
	return EZ{g: g, log: l}
}

func Register[I any, O any](e EZ, a Action[I, O]) {
	h := func(c *gin.Context) {
		var in I
		var bindErr error
		switch a.Binder {
		case BindJSON:
			bindErr = c.ShouldBindJSON(&in)
		case BindQuery:
			bindErr = c.ShouldBindQuery(&in)
		}
		if bindErr != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(bindErr, &tooLarge) {
				c.JSON(http.StatusRequestEntityTooLarge, resp.Error(resp.CodeTooLarge, "request body too large"))
				return
			}
			c.JSON(http.StatusBadRequest, resp.Invalid("invalid request", bindDetails(bindErr, &in)))
			return
		}

		out, err := a.Handler(c, &in)
		if err != nil {
			e.fail(c, err)
			return
		}

		status := a.Status
		if status == 0 {
			status = http.StatusOK
		}
		if a.Message != "" {
			c.JSON(status, resp.Message(a.Message, out))
			return
		}
		c.JSON(status, resp.OK(out))
	}

	switch strings.ToUpper(a.Method) {
	case http.MethodGet:
		e.g.GET(a.Path, h)
	case http.MethodPut:
		e.g.PUT(a.Path, h)
	case http.MethodPatch:
		e.g.PATCH(a.Path, h)
	case http.MethodDelete:
		e.g.DELETE(a.Path, h)
	default:
		e.g.POST(a.Path, h)
	}
}

// fail maps a domain error kind to its status. Anything unclassified is a 500
// whose cause stays in the log.
func (e EZ) fail(c *gin.Context, err error) {
	_ = c.Error(err)
	status, code := StatusOf(err)
	msg := domain.PublicMessage(err)
	if domain.KindOf(err) == 0 {
		msg = "internal error"
	}
	if status >= http.StatusInternalServerError {
		e.log.Error("request failed",
			zap.String("rid", c.GetString(mdw.KeyRequestID)),
			zap.String("route", c.FullPath()),
			zap.Error(err),
		)
	}
	c.JSON(status, resp.Error(code, msg))
}

// StatusOf returns the HTTP status and envelope code for err.
func StatusOf(err error) (int, int) {
	switch domain.KindOf(err) {
	case domain.KindNotFound:
		return http.StatusNotFound, resp.CodeNotFound
	case domain.KindValidation:
		return http.StatusBadRequest, resp.CodeBadRequest
	case domain.KindConflict:
		return http.StatusConflict, resp.CodeConflict
	default:
		return http.StatusInternalServerError, resp.CodeServerError
	}
}

// ParamID reads a numeric path parameter. Zero is passed through so the service
// can reject it with its own message.
func ParamID(c *gin.Context, name string) (uint, error) {
	raw := c.Param(name)
	n, err := strconv.ParseUint(raw, 10, 0)
	if err != nil {
		return 0, domain.Validation("%s must be a positive number", name)
	}
	return uint(n), nil
}

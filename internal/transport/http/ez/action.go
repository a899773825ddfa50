package ez

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"merchant-api/internal/core/auth"
	"merchant-api/internal/domain"
	"merchant-api/internal/transport/http/middleware"
	resp "merchant-api/internal/transport/http/response"
)

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

// 绑定方式
type Binder string

const (
	BindJSON  Binder = "json"  // 从 JSON 绑定
	BindQuery Binder = "query" // 从 URL ?a=b 绑定
	BindNone  Binder = "none"  // 不绑定，自己从 c.Param 取
)

// AErr 统一错误对象，Code 同时作为 HTTP 状态码
type AErr struct {
	Code int
	Msg  string
	Err  error
}

func (e *AErr) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "action error"
}

func (e *AErr) Unwrap() error { return e.Err }

func BadRequest(msg string) error   { return &AErr{Code: resp.CodeBadRequest, Msg: msg} }
func Unauthorized(msg string) error { return &AErr{Code: resp.CodeUnauthorized, Msg: msg} }
func NotFound(msg string) error     { return &AErr{Code: resp.CodeNotFound, Msg: msg} }
func Conflict(msg string) error     { return &AErr{Code: resp.CodeConflict, Msg: msg} }
func Internal(msg string, err error) error {
	return &AErr{Code: resp.CodeServerError, Msg: msg, Err: err}
}

const (
	MsgInvalidCredentials = "로그인 정보가 잘못되었습니다."
	MsgMobileNumberTaken  = "이미 등록된 핸드폰 번호입니다."
	MsgProductNotFound    = "상품을 찾을 수 없습니다."
	MsgUnexpected         = "예상치 못한 에러가 발생했습니다."
)

// FromError 把领域错误映射成 AErr；未知错误按 500 返回原始信息
func FromError(err error) *AErr {
	var ae *AErr
	if errors.As(err, &ae) {
		return ae
	}
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		return &AErr{Code: resp.CodeBadRequest, Msg: verr.Error(), Err: err}
	case errors.Is(err, domain.ErrMobileNumberTaken):
		return &AErr{Code: resp.CodeConflict, Msg: MsgMobileNumberTaken, Err: err}
	case errors.Is(err, domain.ErrInvalidCredentials):
		return &AErr{Code: resp.CodeBadRequest, Msg: MsgInvalidCredentials, Err: err}
	case errors.Is(err, domain.ErrProductNotFound):
		return &AErr{Code: resp.CodeNotFound, Msg: MsgProductNotFound, Err: err}
	}
	msg := err.Error()
	if msg == "" {
		msg = MsgUnexpected
	}
	return &AErr{Code: resp.CodeServerError, Msg: msg, Err: err}
}

// Action 一个接口的声明：I 入参，O 出参
type Action[I any, O any] struct {
	Method string // GET | POST | PUT | PATCH | DELETE
	Path   string // 例："/auth/login"、"/products/:id"
	Binder Binder
	Auth   bool // 要求已认证（subject 非空）

	// 成功时 meta.code / meta.message；Code 为 0 时用 200
	Code    int
	Message string

	// BindFailMsg 覆盖绑定失败时的 400 文案
	BindFailMsg string

	Handler func(c *gin.Context, in *I) (O, error)
}

// RegisterAction 在当前 EZ 下注册动作接口。成功一律 HTTP 200。
func RegisterAction[I any, O any](e EZ, a Action[I, O]) {
	h := func(c *gin.Context) {
		// 1) 鉴权
		if a.Auth && c.GetString(auth.GinKeySubject) == "" {
			resp.Abort(c, resp.CodeUnauthorized, "")
			return
		}

		// 2) 绑定入参
		var in I
		var bindErr error
		switch a.Binder {
		case BindJSON:
			bindErr = c.ShouldBindJSON(&in)
		case BindQuery:
			bindErr = c.ShouldBindQuery(&in)
		default: // BindNone
		}
		if bindErr != nil {
			msg := a.BindFailMsg
			if msg == "" {
				msg = bindErr.Error()
			}
			resp.Abort(c, resp.CodeBadRequest, msg)
			return
		}

		// 3) 执行
		out, err := a.Handler(c, &in)

		// 4) 统一错误映射
		if err != nil {
			ae := FromError(err)
			if ae.Code >= http.StatusInternalServerError {
				e.log.Error("action failed",
					zap.String("method", c.Request.Method),
					zap.String("path", c.FullPath()),
					zap.String("request_id", c.GetString(middleware.CtxRequestID)),
					zap.Error(err),
				)
			}
			resp.Abort(c, ae.Code, ae.Error())
			return
		}
		code := a.Code
		if code == 0 {
			code = resp.CodeOK
		}
		c.JSON(http.StatusOK, resp.New(code, a.Message, out))
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
	default: // 默认 POST
		e.g.POST(a.Path, h)
	}
}

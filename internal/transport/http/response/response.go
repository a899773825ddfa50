package response

import "github.com/gin-gonic/gin"

type Meta struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Resp 统一信封，data 可以是 null
type Resp struct {
	Meta Meta `json:"meta"`
	Data any  `json:"data"`
}

func New(code int, msg string, data any) Resp {
	if msg == "" {
		msg = CodeMsgMap[code]
	}
	return Resp{Meta: Meta{Code: code, Message: msg}, Data: data}
}

// OK 成功响应，msg 为空时用默认文案
func OK(msg string, data any) Resp {
	return New(CodeOK, msg, data)
}

// Error 失败响应（可以传自定义 msg 覆盖默认）
func Error(code int, customMsg string) Resp {
	return New(code, customMsg, nil)
}

// Abort 写出错误信封，HTTP 状态与 code 一致
func Abort(c *gin.Context, code int, msg string) {
	c.AbortWithStatusJSON(code, Error(code, msg))
}

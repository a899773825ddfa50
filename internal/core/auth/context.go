package auth

import "context"

type subjectKey struct{}

// GinKeySubject 是 gin.Context 上的键
const GinKeySubject = "subject"

func WithSubject(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, subjectKey{}, subject)
}

// SubjectFrom 返回已认证的手机号，没有则为空串
func SubjectFrom(ctx context.Context) string {
	s, _ := ctx.Value(subjectKey{}).(string)
	return s
}

package httpx

import "context"

type ctxKey string

// CtxKeySubject holds the authenticated identifier set by AuthnMiddleware.
const CtxKeySubject ctxKey = "subject"

// SubjectFromContext returns the authenticated identifier, if any.
func SubjectFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(CtxKeySubject).(string)
	return v, ok && v != ""
}

// ContextWithSubject marks ctx as authenticated for subject.
func ContextWithSubject(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, CtxKeySubject, subject)
}

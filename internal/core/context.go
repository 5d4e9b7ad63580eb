package core

import "context"

type contextKey string

const (
	ctxKeyClientIP  contextKey = "submit_ip"
	ctxKeyUserAgent contextKey = "submit_ua"
	ctxKeyLocale    contextKey = "submit_locale"
)

// ContextWithClientIP records the submitter's address for submission logs.
func ContextWithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, ctxKeyClientIP, ip)
}

// ContextWithUserAgent records the submitter's User-Agent for submission logs.
func ContextWithUserAgent(ctx context.Context, ua string) context.Context {
	return context.WithValue(ctx, ctxKeyUserAgent, ua)
}

// ContextWithLocale records the negotiated display locale.
func ContextWithLocale(ctx context.Context, tag string) context.Context {
	return context.WithValue(ctx, ctxKeyLocale, tag)
}

// ClientIPFromContext returns the recorded address, or "".
func ClientIPFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyClientIP).(string); ok {
		return v
	}
	return ""
}

// UserAgentFromContext returns the recorded User-Agent, or "".
func UserAgentFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyUserAgent).(string); ok {
		return v
	}
	return ""
}

// LocaleFromContext returns the recorded locale tag, or "".
func LocaleFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyLocale).(string); ok {
		return v
	}
	return ""
}

// submitLogFields collects the request attributes present in ctx.
func submitLogFields(ctx context.Context) []any {
	var fields []any
	if ip := ClientIPFromContext(ctx); ip != "" {
		fields = append(fields, "client_ip", ip)
	}
	if ua := UserAgentFromContext(ctx); ua != "" {
		fields = append(fields, "user_agent", ua)
	}
	if loc := LocaleFromContext(ctx); loc != "" {
		fields = append(fields, "locale", loc)
	}
	return fields
}

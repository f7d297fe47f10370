package auth

import "context"

type contextKey string

const subjectKey contextKey = "subject_id"

// ContextWithSubject attaches the authenticated subject ID to ctx.
func ContextWithSubject(ctx context.Context, subjectID string) context.Context {
	return context.WithValue(ctx, subjectKey, subjectID)
}

// SubjectFromContext returns the subject attached by the identity gate.
func SubjectFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(subjectKey).(string)
	return id, ok && id != ""
}

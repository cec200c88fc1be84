package token

import "context"

type ctxKey struct{}

func NewContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(*Session)
	return s, ok && s != nil
}

// CallerEmail returns the normalized email of the authenticated caller, or "".
func CallerEmail(ctx context.Context) string {
	s, _ := FromContext(ctx)
	return s.Email()
}

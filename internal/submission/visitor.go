package submission

import "context"

// Visitor identifies the browser a submission is made on behalf of. When the
// site posts to its own form endpoint, these are forwarded so the endpoint
// records and rate limits the visitor rather than the server.
type Visitor struct {
	IP        string
	UserAgent string
}

type visitorKey struct{}

// WithVisitor returns a context carrying v for Client.Submit.
func WithVisitor(ctx context.Context, v Visitor) context.Context {
	return context.WithValue(ctx, visitorKey{}, v)
}

// VisitorFrom returns the visitor stored by WithVisitor, if any.
func VisitorFrom(ctx context.Context) (Visitor, bool) {
	v, ok := ctx.Value(visitorKey{}).(Visitor)
	return v, ok
}

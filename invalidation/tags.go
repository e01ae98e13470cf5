package invalidation

import "context"

type patternsContextKey struct{}

// WithPatterns attaches additional clear patterns to ctx so one mutation
// path can widen a single invalidation without editing the graph. Patterns
// accumulate across nested calls.
func WithPatterns(ctx context.Context, patterns ...string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if len(patterns) == 0 {
		return ctx
	}

	combined := dedupeStrings(append(PatternsFromContext(ctx), patterns...))
	if len(combined) == 0 {
		return ctx
	}
	return context.WithValue(ctx, patternsContextKey{}, combined)
}

// PatternsFromContext returns a copy of the patterns attached to ctx.
func PatternsFromContext(ctx context.Context) []string {
	if ctx == nil {
		return nil
	}
	if patterns, ok := ctx.Value(patternsContextKey{}).([]string); ok {
		return append([]string(nil), patterns...)
	}
	return nil
}

func dedupeStrings(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := values[:0]
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

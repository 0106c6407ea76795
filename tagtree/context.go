package tagtree

import "context"

type contextKey struct{}

var treeKey = contextKey{}

// FromContext returns the Tree installed on ctx, if any.
func FromContext(ctx context.Context) (*Tree, bool) {
	t, ok := ctx.Value(treeKey).(*Tree)
	return t, ok
}

// WithTree derives a new context carrying tree. Used by the outermost
// call on a request to install a fresh Tree so nested calls reuse it
// instead of each starting their own: request-scoped state, carried
// explicitly rather than through a goroutine-local.
func WithTree(ctx context.Context, tree *Tree) context.Context {
	return context.WithValue(ctx, treeKey, tree)
}

// Ensure returns the Tree already installed on ctx along with isRoot
// false, or — if none is installed — a freshly created Tree, a context
// derived from ctx carrying it, and isRoot true. The caller for which
// Ensure reports isRoot true owns that tree's entire lifecycle: it must
// use the returned context for everything downstream of this call
// (including invoking any callback that might itself memoize), and it
// is the only caller allowed to treat a failure as cause to abandon the
// tree rather than just popping its own frame.
func Ensure(ctx context.Context) (tree *Tree, next context.Context, isRoot bool) {
	if t, ok := FromContext(ctx); ok {
		return t, ctx, false
	}
	t := New()
	return t, WithTree(ctx, t), true
}

package link

import (
	"context"

	"grimm.is/rtlink/internal/linkattr"
	"grimm.is/rtlink/internal/linkflags"
)

// Handle is a Registry bound to one interface index. It holds no link state.
type Handle struct {
	registry *Registry
	Index    int32
}

// Fetch reads the link.
func (h *Handle) Fetch(ctx context.Context) (*Link, error) {
	return h.registry.Fetch(ctx, h.Index)
}

// Modify updates the link.
func (h *Handle) Modify(ctx context.Context, flags linkflags.Set, attrs linkattr.Attrs) error {
	return h.registry.Modify(ctx, h.Index, flags, attrs)
}

// Delete removes the link.
func (h *Handle) Delete(ctx context.Context) error {
	return h.registry.DeleteLink(ctx, h.Index)
}

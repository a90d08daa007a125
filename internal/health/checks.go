package health

import (
	"context"
	"fmt"

	"grimm.is/rtlink/internal/events"
	"grimm.is/rtlink/internal/link"
	"grimm.is/rtlink/internal/linkattr"
)

// Lister is the part of the link registry the checks need.
type Lister interface {
	FindAllBy(ctx context.Context, f link.Filter) ([]*link.Link, error)
}

// NetlinkCheck dumps the link table. A failed dump means the registry is
// unusable.
func NetlinkCheck(l Lister) CheckFunc {
	return func(ctx context.Context) Check {
		links, err := l.FindAllBy(ctx, link.Filter{})
		if err != nil {
			return Check{Status: StatusUnhealthy, Message: fmt.Sprintf("link dump failed: %v", err)}
		}
		return Check{Status: StatusHealthy, Message: fmt.Sprintf("%d links", len(links))}
	}
}

// LoopbackCheck verifies lo exists and is up.
func LoopbackCheck(l Lister) CheckFunc {
	return func(ctx context.Context) Check {
		links, err := l.FindAllBy(ctx, link.Filter{Attrs: linkattr.Attrs{Name: "lo"}})
		switch {
		case err != nil:
			return Check{Status: StatusUnhealthy, Message: fmt.Sprintf("lookup failed: %v", err)}
		case len(links) == 0:
			return Check{Status: StatusDegraded, Message: "lo not found"}
		case !links[0].IsUp():
			return Check{Status: StatusDegraded, Message: "lo is down"}
		}
		return Check{Status: StatusHealthy, Message: "lo is up"}
	}
}

// EventsCheck degrades once the hub has dropped notifications to slow
// subscribers.
func EventsCheck(hub *events.Hub) CheckFunc {
	return func(ctx context.Context) Check {
		published, dropped := hub.Stats()
		if dropped > 0 {
			return Check{
				Status:  StatusDegraded,
				Message: fmt.Sprintf("%d of %d events dropped", dropped, published),
			}
		}
		return Check{Status: StatusHealthy, Message: fmt.Sprintf("%d events published", published)}
	}
}

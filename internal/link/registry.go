package link

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"grimm.is/rtlink/internal/clock"
	"grimm.is/rtlink/internal/ifinfo"
	"grimm.is/rtlink/internal/linkattr"
	"grimm.is/rtlink/internal/linkflags"
	"grimm.is/rtlink/internal/logging"
	"grimm.is/rtlink/internal/metrics"
	"grimm.is/rtlink/internal/rtattr"
)

// DefaultCreateAttempts is the number of index predictions CreateLink makes
// before giving up. One attempt means any race fails the call immediately.
const DefaultCreateAttempts = 1

// Registry performs link operations over a borrowed Transport.
type Registry struct {
	transport      Transport
	createAttempts int
	retryDelay     time.Duration
	clock          clock.Clock
	logger         *logging.Logger
	metrics        *metrics.Registry
}

// Option configures a Registry.
type Option func(*Registry)

// WithCreateAttempts sets the CreateLink attempt budget. Values below 1 are
// treated as 1.
func WithCreateAttempts(n int) Option {
	return func(r *Registry) {
		if n < 1 {
			n = 1
		}
		r.createAttempts = n
	}
}

// WithRetryDelay sets the pause between CreateLink rounds.
func WithRetryDelay(d time.Duration) Option {
	return func(r *Registry) { r.retryDelay = d }
}

// WithClock replaces the clock used for retry pauses.
func WithClock(c clock.Clock) Option {
	return func(r *Registry) { r.clock = c }
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(r *Registry) { r.logger = l }
}

// WithMetrics enables request metrics.
func WithMetrics(m *metrics.Registry) Option {
	return func(r *Registry) { r.metrics = m }
}

// NewRegistry creates a Registry. The transport is not closed by the registry.
func NewRegistry(t Transport, opts ...Option) *Registry {
	r := &Registry{
		transport:      t,
		createAttempts: DefaultCreateAttempts,
		clock:          clock.RealClock{},
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = logging.WithComponent("registry")
	}
	return r
}

// FromIndex returns a handle bound to one interface index.
func (r *Registry) FromIndex(index int32) *Handle {
	return &Handle{registry: r, Index: index}
}

// Fetch returns the link with the given index.
func (r *Registry) Fetch(ctx context.Context, index int32) (*Link, error) {
	msgs, err := r.talk(ctx, "fetch", ifinfo.Message{
		Header: ifinfo.NetlinkHeader{
			Type:  ifinfo.TypeGetLink,
			Flags: ifinfo.FlagRequest | ifinfo.FlagAck,
		},
		Info: ifinfo.Header{Family: ifinfo.FamilyPacket, Index: index},
	})
	if err != nil {
		return nil, fmt.Errorf("fetch link %d: %w", index, err)
	}

	links, err := decodeLinks(msgs)
	if err != nil {
		return nil, fmt.Errorf("fetch link %d: %w", index, err)
	}
	switch len(links) {
	case 0:
		return nil, fmt.Errorf("fetch link %d: %w", index, ErrNotFound)
	case 1:
		return links[0], nil
	default:
		return nil, fmt.Errorf("fetch link %d: got %d responses: %w", index, len(links), ErrMultipleResults)
	}
}

// FindAllBy returns every link matching f. A kernel "no such device" answer
// is an empty result.
func (r *Registry) FindAllBy(ctx context.Context, f Filter) ([]*Link, error) {
	if err := f.validate(); err != nil {
		return nil, fmt.Errorf("find links: %w", err)
	}
	req, err := f.request()
	if err != nil {
		return nil, fmt.Errorf("find links: %w", err)
	}

	reply, err := r.tryTalk(ctx, "find", req)
	if err != nil {
		return nil, fmt.Errorf("find links: %w", err)
	}
	switch reply.ErrorCode {
	case 0:
	case codeNoDevice:
		return nil, nil
	default:
		return nil, &TransportError{Op: "find links", Code: reply.ErrorCode}
	}

	all, err := decodeLinks(reply.Packets)
	if err != nil {
		return nil, fmt.Errorf("find links: %w", err)
	}
	var out []*Link
	for _, l := range all {
		if f.matches(l) {
			out = append(out, l)
		}
	}
	return out, nil
}

// FindOneBy returns the single link matching f.
func (r *Registry) FindOneBy(ctx context.Context, f Filter) (*Link, error) {
	links, err := r.FindAllBy(ctx, f)
	if err != nil {
		return nil, err
	}
	switch len(links) {
	case 0:
		return nil, ErrNotFound
	case 1:
		return links[0], nil
	default:
		return nil, fmt.Errorf("%d links: %w", len(links), ErrMultipleResults)
	}
}

// TryFindOneBy is FindOneBy that returns nil, nil unless exactly one link
// matches.
func (r *Registry) TryFindOneBy(ctx context.Context, f Filter) (*Link, error) {
	links, err := r.FindAllBy(ctx, f)
	if err != nil {
		return nil, err
	}
	if len(links) != 1 {
		return nil, nil
	}
	return links[0], nil
}

// Modify updates the link at index. Only flags named in flags are changed;
// the kernel leaves every other flag bit alone.
func (r *Registry) Modify(ctx context.Context, index int32, flags linkflags.Set, attrs linkattr.Attrs) error {
	info, rtas, err := encodeRequest(flags, attrs)
	if err != nil {
		return fmt.Errorf("modify link %d: %w", index, err)
	}
	info.Family = ifinfo.FamilyPacket
	info.Index = index

	_, err = r.talk(ctx, "modify", ifinfo.Message{
		Header: ifinfo.NetlinkHeader{
			Type:  ifinfo.TypeNewLink,
			Flags: ifinfo.FlagRequest | ifinfo.FlagAck,
		},
		Info:       info,
		Attributes: rtas,
	})
	if err != nil {
		return fmt.Errorf("modify link %d: %w", index, err)
	}
	return nil
}

// DeleteLink removes the link at index.
func (r *Registry) DeleteLink(ctx context.Context, index int32) error {
	_, err := r.talk(ctx, "delete", ifinfo.Message{
		Header: ifinfo.NetlinkHeader{
			Type:  ifinfo.TypeDelLink,
			Flags: ifinfo.FlagRequest | ifinfo.FlagAck,
		},
		Info: ifinfo.Header{Family: ifinfo.FamilyUnspec, Index: index},
	})
	if err != nil {
		return fmt.Errorf("delete link %d: %w", index, err)
	}
	return nil
}

// NextUnusedIndex dumps all links and returns the highest index plus one.
func (r *Registry) NextUnusedIndex(ctx context.Context) (int32, error) {
	msgs, err := r.talk(ctx, "scan", ifinfo.Message{
		Header: ifinfo.NetlinkHeader{
			Type:  ifinfo.TypeGetLink,
			Flags: ifinfo.FlagRequest | ifinfo.FlagDump | ifinfo.FlagAck,
		},
		Info: ifinfo.Header{Family: ifinfo.FamilyPacket},
	})
	if err != nil {
		return 0, fmt.Errorf("scan links: %w", err)
	}

	var highest int32
	for _, m := range msgs {
		if m.Header.Type == ifinfo.TypeNewLink && m.Info.Index > highest {
			highest = m.Info.Index
		}
	}
	return highest + 1, nil
}

// CreateLink creates a link and returns it as the kernel reports it.
//
// Each round rescans the link table, predicts the next free index and
// attempts a create-if-absent there. EEXIST means the prediction raced with
// another creator; the round is repeated until the attempt budget runs out.
// Any other kernel error ends the call with a *CreateError.
func (r *Registry) CreateLink(ctx context.Context, req CreateRequest) (*Link, error) {
	info, rtas, err := encodeRequest(req.Flags, req.Attrs)
	if err != nil {
		return nil, fmt.Errorf("create link: %w", err)
	}
	info.Family = req.Family

	log := r.logger.WithLink(0, req.Name).With("create_id", uuid.NewString())

	for attempt := 1; attempt <= r.createAttempts; attempt++ {
		if attempt > 1 && r.retryDelay > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-r.clock.After(r.retryDelay):
			}
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		index, err := r.NextUnusedIndex(ctx)
		if err != nil {
			return nil, fmt.Errorf("create link: %w", err)
		}
		info.Index = index

		log.Debug("attempting create", "attempt", attempt, "ifindex", index)
		reply, err := r.tryTalk(ctx, "create", ifinfo.Message{
			Header: ifinfo.NetlinkHeader{
				Type:  ifinfo.TypeNewLink,
				Flags: ifinfo.FlagRequest | ifinfo.FlagCreate | ifinfo.FlagExcl | ifinfo.FlagAck,
			},
			Info:       info,
			Attributes: rtas,
		})
		if err != nil {
			return nil, fmt.Errorf("create link: %w", err)
		}

		switch reply.ErrorCode {
		case 0:
			r.metrics.RecordCreateAttempt(false)
			log.Debug("link created", "attempt", attempt, "ifindex", index)
			return r.Fetch(ctx, index)
		case codeExist:
			r.metrics.RecordCreateAttempt(true)
			log.Warn("interface index race lost", "attempt", attempt, "ifindex", index)
		default:
			r.metrics.RecordCreateAttempt(false)
			return nil, &CreateError{Index: index, Code: reply.ErrorCode}
		}
	}

	return nil, fmt.Errorf("%w: got EEXIST %d times, assuming index prediction is unreliable",
		ErrIndexAllocationFailed, r.createAttempts)
}

func (r *Registry) talk(ctx context.Context, op string, req ifinfo.Message) ([]ifinfo.Message, error) {
	start := r.clock.Now()
	msgs, err := r.transport.Talk(ctx, req)
	r.metrics.RecordRequest(op, err, r.clock.Since(start))
	return msgs, err
}

func (r *Registry) tryTalk(ctx context.Context, op string, req ifinfo.Message) (ifinfo.Reply, error) {
	start := r.clock.Now()
	reply, err := r.transport.TryTalk(ctx, req)
	if err == nil && reply.ErrorCode != 0 {
		r.metrics.RecordRequest(op, &TransportError{Op: op, Code: reply.ErrorCode}, r.clock.Since(start))
	} else {
		r.metrics.RecordRequest(op, err, r.clock.Since(start))
	}
	return reply, err
}

func encodeRequest(flags linkflags.Set, attrs linkattr.Attrs) (ifinfo.Header, []rtattr.Attribute, error) {
	mask, err := linkflags.Mask(flags)
	if err != nil {
		return ifinfo.Header{}, nil, err
	}
	change, err := linkflags.ChangeMask(flags)
	if err != nil {
		return ifinfo.Header{}, nil, err
	}
	rtas, err := linkattr.Marshal(attrs)
	if err != nil {
		return ifinfo.Header{}, nil, err
	}
	return ifinfo.Header{Flags: mask, Change: change}, rtas, nil
}

func decodeLinks(msgs []ifinfo.Message) ([]*Link, error) {
	var links []*Link
	for _, m := range msgs {
		if m.Header.Type != ifinfo.TypeNewLink {
			continue
		}
		l, err := linkFromMessage(m)
		if err != nil {
			return nil, err
		}
		links = append(links, l)
	}
	return links, nil
}

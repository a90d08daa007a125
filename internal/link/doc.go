// Package link lists, creates, modifies and deletes network interfaces over
// rtnetlink.
//
// # Overview
//
// A [Registry] turns high-level link operations into GETLINK, NEWLINK and
// DELLINK requests, hands them to a [Transport] and decodes the replies into
// fresh [Link] values. Nothing is cached: every call is a round trip, and the
// registry holds no locks, so concurrent calls are safe as long as the
// transport pairs requests with their responses.
//
// # Index allocation
//
// The kernel assigns interface indices at creation time and offers no way to
// reserve one. [Registry.CreateLink] therefore predicts the next free index
// (highest index seen in a fresh dump, plus one) and asks the kernel to create
// the link there only if the slot is still free (NLM_F_CREATE|NLM_F_EXCL).
// If another creator won the slot the kernel answers EEXIST and the registry
// rescans and tries again, up to the configured attempt budget. When the
// budget is spent, CreateLink fails with [ErrIndexAllocationFailed]; callers
// should treat that as contention and try later.
//
// # Notifications
//
// [Watcher] consumes the transport's unsolicited RTMGRP_LINK messages and
// republishes them on an events.Hub. Correlating replies with requests is the
// transport's job; the watcher only ever sees messages no request asked for.
package link

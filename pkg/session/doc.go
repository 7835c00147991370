// Package session holds spiderfied anchors on behalf of a host.
//
// A [Session] is one expanded cluster: the anchor coordinates, the markers
// currently attached to it, the parameters and the cached layout. Hosts call
// [Session.Update] whenever their marker list or parameters change; the
// layout is recomputed only when [spider.NeedsRelayout] says so, otherwise
// the cached records are kept verbatim. Changing only Animate,
// AnimationSpeed or AnchorOffsetY therefore does not touch the records.
//
// # Markers and events
//
// Markers carry an optional [Handlers] set. Handlers belong to the marker
// identity and are never serialized; a session-level Handlers value applies
// to markers that do not define their own. [Session.Dispatch] routes an
// [Event] to the right handler with the marker's [Placement].
//
// # Storage
//
// Sessions live in a [Store]:
//
//   - [MemoryStore]: in-process map, for tests and single-instance servers
//   - [FileStore]: JSON files, for the CLI
//   - [RedisStore]: Redis with native expiry, for multi-instance servers
//
// Stores copy sessions in and out, so a session obtained from a store can be
// modified freely before it is Set again. Handlers do not survive a store
// round trip.
//
//	sess := session.New(document.Anchor{Lng: 13.4, Lat: 52.5}, markers, spider.DefaultParameters(), session.DefaultTTL)
//	if err := store.Set(ctx, sess); err != nil {
//	    return err
//	}
//	relaid := sess.Update(newMarkers, sess.Params)
package session

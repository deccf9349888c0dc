// Package store persists family members and implements the operations the
// layout engine relies on.
//
// # Backends
//
// Every backend implements [Store]:
//
//   - [MemoryStore]: process-local, for tests and demos (memory://)
//   - [SQLiteStore]: a local SQLite file via modernc.org/sqlite (sqlite://path)
//   - [MongoStore]: a MongoDB collection (mongodb://...)
//   - [SupabaseStore]: the legacy hosted family_members table, where location
//     and position live inside the bio text (see family.ExtractFromBio)
//
// [Open] picks a backend from [Options]. Wrap a store with [Instrument] to
// report operations to the observability hooks.
//
// # Service
//
// [Service] layers validation and the actor rules over a Store and
// provides the drag and reset operations:
//
//	svc := store.NewService(s, logger)
//	err := svc.UpdateMemberPosition(ctx, id, x, y, actor)
//	err = svc.ResetTreeLayout(ctx, actor)
//
// Position writes that fail with a [Retryable] error are retried with
// backoff before the error is surfaced.
package store

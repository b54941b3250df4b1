// Package profile persists sticky-bucketing state: which variation a user
// was bucketed into per experiment, so later decisions replay the stored
// outcome instead of recomputing it.
//
// The engine treats every Store as advisory. A failed Lookup falls back to
// live bucketing; a failed Save means the decision is not remembered for
// next time. Neither failure ever aborts the decision in flight.
//
// Three implementations are provided:
//
//   - MemoryStore: LRU-bounded, for tests and single-process hosts.
//   - RedisStore: one hash per user with optional TTL, for shared state
//     across processes. Use ConnectRedis with RedisConfig (env-tagged) to
//     establish the connection.
//   - PGStore: a (user_id, experiment_id, variation_id) upsert table via
//     pgx. The host owns the schema; see the PGStore doc comment for DDL.
//
// # Usage
//
//	var cfg profile.RedisConfig
//	if err := env.Parse(&cfg); err != nil {
//		// handle
//	}
//	rdb, err := profile.ConnectRedis(ctx, cfg)
//	if err != nil {
//		// profile persistence unavailable; the engine still works,
//		// decisions are just not sticky across processes
//	}
//	store := profile.NewRedisStore(rdb, cfg)
package profile

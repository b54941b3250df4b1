// Package bucketer deterministically assigns users to buckets for traffic
// splitting, without any persistent state.
//
// A bucketing key (bucketing id + entity id) is hashed with MurmurHash3
// x86_32 under a fixed seed and scaled onto a 10,000-slot bucket space.
// Traffic-allocation ranges from the datafile are cumulative ends over that
// space; the first range containing the computed bucket wins.
//
// Determinism here is load-bearing: bucket numbers are an implicit contract
// shared by every SDK implementation across languages, because analytics
// attribute results to the variation the bucket selected. Do not change the
// hash variant, the seed, or the scaling formula.
//
//	bucket := bucketer.Bucket(bucketer.Key("user-42", experiment.ID))
//	variationID, ok := bucketer.FindRange(bucket, experiment.TrafficAllocation)
package bucketer

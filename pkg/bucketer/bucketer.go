package bucketer

import (
	"github.com/twmb/murmur3"
)

const (
	// BucketSpace is the number of buckets traffic is split over.
	// Allocation ranges in the datafile are cumulative ends within [0, BucketSpace].
	BucketSpace = 10000

	// hashSeed is fixed across every SDK implementation. Changing it would
	// silently re-shuffle every running experiment.
	hashSeed = 1

	// keySeparator joins the bucketing id and the entity id into one hash input.
	keySeparator = ":"
)

// Range is one traffic-allocation entry: the entity (variation or
// experiment) that owns all buckets below EndOfRange not claimed by an
// earlier entry. Ranges are cumulative and ordered as in the datafile.
type Range struct {
	EntityID   string `json:"entityId"`
	EndOfRange int    `json:"endOfRange"`
}

// Key builds the hash input for a (user, entity) pair. The entity id keeps a
// user's bucket independent across unrelated experiments and groups; the
// bucketing id keeps it stable for the same pair.
func Key(bucketingID, entityID string) string {
	return bucketingID + keySeparator + entityID
}

// Bucket maps a bucketing key onto [0, BucketSpace) with MurmurHash3 x86_32.
// The hash variant, seed, and scaling are a cross-SDK contract: independent
// implementations must produce identical bucket numbers for identical input.
func Bucket(bucketingKey string) int {
	hash := murmur3.SeedSum32(hashSeed, []byte(bucketingKey))
	return int(uint64(hash) * BucketSpace >> 32)
}

// FindRange returns the entity owning the given bucket, scanning ranges in
// datafile order. The first range whose cumulative end exceeds the bucket
// wins. ok is false when the bucket falls past every range (the user is
// excluded by traffic allocation) or the winning entry carries the empty
// entity id sentinel for an unallocated remainder.
func FindRange(bucket int, ranges []Range) (entityID string, ok bool) {
	for _, r := range ranges {
		if bucket < r.EndOfRange {
			if r.EntityID == "" {
				return "", false
			}
			return r.EntityID, true
		}
	}
	return "", false
}

package ports

import (
	"tseval/domain/eval"
)

// ProfileStore is the approach-keyed registry of efficiency profiles.
// It is always an explicit object owned by the orchestrating driver and
// passed into the profiler, never a package-level singleton. Appends must
// be serialized by the implementation; reads return copies.
type ProfileStore interface {
	Append(profile eval.EfficiencyProfile)
	Profiles(approach string) []eval.EfficiencyProfile
	Approaches() []string
}

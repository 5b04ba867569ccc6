// Package snap ranks the reference targets near a queried world point so
// an input layer can offer "snap to this" choices. Candidates are drawn
// from the current geometry of the targets the caller passes in, never
// cached, so they are always consistent with the latest recomputation.
package snap

import (
	"sort"

	"github.com/felixgeelhaar/linework/internal/domain/figure"
	"github.com/felixgeelhaar/linework/internal/domain/geom"
)

// Class orders candidates by what they snap to. An explicit point beats a
// shape anchor, which beats a computed intersection; the raw queried
// coordinate is the fallback when nothing else is close enough.
type Class string

// Candidate classes, highest priority first.
const (
	ClassPoint        Class = "point"
	ClassAnchor       Class = "anchor"
	ClassIntersection Class = "intersection"
	ClassRaw          Class = "raw"
)

var classRank = map[Class]int{
	ClassPoint:        0,
	ClassAnchor:       1,
	ClassIntersection: 2,
	ClassRaw:          3,
}

// Candidate is one ranked snap result. Step and Selector together form
// the reference a caller would record to pin a new step to this spot;
// a raw candidate has no step and just echoes the queried coordinate.
type Candidate struct {
	Class    Class
	Step     figure.StepID
	Selector figure.Selector
	Point    geom.Point
	Distance float64
}

// Reference converts the candidate into a recordable step reference.
// Raw candidates have none.
func (c Candidate) Reference() (figure.Reference, bool) {
	if c.Class == ClassRaw || !c.Step.IsValid() {
		return figure.Reference{}, false
	}
	return figure.Ref(c.Step, c.Selector), true
}

// Target is one visible step the resolver may snap to.
type Target struct {
	ID       figure.StepID
	Geometry geom.Shape
}

// Config controls optional candidate classes.
type Config struct {
	// Intersections enables pairwise intersection candidates, the most
	// expensive class.
	Intersections bool
}

// DefaultConfig enables intersection snapping.
func DefaultConfig() Config {
	return Config{Intersections: true}
}

// Resolver ranks snap candidates for spatial queries.
type Resolver struct {
	cfg Config
}

// NewResolver creates a resolver with the given configuration.
func NewResolver(cfg Config) *Resolver {
	return &Resolver{cfg: cfg}
}

// Query ranks every candidate within tolerance of world, ordered by
// priority class, then ascending distance, with exact ties going to the
// higher step id. The raw fallback candidate is always last. Targets
// whose geometry is nil are skipped; visibility restrictions are the
// caller's, expressed by the target list it passes.
func (r *Resolver) Query(world geom.Point, tolerance float64, targets []Target) []Candidate {
	var candidates []Candidate
	add := func(c Candidate) {
		c.Distance = world.Distance(c.Point)
		if c.Distance <= tolerance {
			candidates = append(candidates, c)
		}
	}

	for _, target := range targets {
		if target.Geometry == nil {
			continue
		}
		if dot, ok := target.Geometry.(geom.Dot); ok {
			add(Candidate{
				Class:    ClassPoint,
				Step:     target.ID,
				Selector: figure.Center(),
				Point:    dot.P,
			})
			continue
		}
		anchors := target.Geometry.Anchors()
		for i, anchor := range anchors {
			add(Candidate{
				Class:    ClassAnchor,
				Step:     target.ID,
				Selector: figure.Anchor(i),
				Point:    anchor,
			})
		}
		if center := target.Geometry.Center(); !coincidesWithAny(center, anchors) {
			add(Candidate{
				Class:    ClassAnchor,
				Step:     target.ID,
				Selector: figure.Center(),
				Point:    center,
			})
		}
	}

	if r.cfg.Intersections {
		r.addIntersections(add, targets)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if classRank[a.Class] != classRank[b.Class] {
			return classRank[a.Class] < classRank[b.Class]
		}
		if a.Distance != b.Distance {
			return a.Distance < b.Distance
		}
		return a.Step > b.Step
	})

	return append(candidates, Candidate{
		Class: ClassRaw,
		Point: world,
	})
}

// addIntersections emits one candidate per crossing of each target pair.
// The later-drawn step owns the candidate; its selector indexes the
// crossing list of (later, earlier), the same order reference resolution
// uses.
func (r *Resolver) addIntersections(add func(Candidate), targets []Target) {
	for j := 1; j < len(targets); j++ {
		if targets[j].Geometry == nil || isDot(targets[j].Geometry) {
			continue
		}
		for i := 0; i < j; i++ {
			if targets[i].Geometry == nil || isDot(targets[i].Geometry) {
				continue
			}
			later, earlier := targets[j], targets[i]
			if earlier.ID > later.ID {
				later, earlier = earlier, later
			}
			for k, crossing := range geom.Intersections(later.Geometry, earlier.Geometry) {
				add(Candidate{
					Class:    ClassIntersection,
					Step:     later.ID,
					Selector: figure.Intersection(k, earlier.ID),
					Point:    crossing,
				})
			}
		}
	}
}

func isDot(shape geom.Shape) bool {
	_, ok := shape.(geom.Dot)
	return ok
}

func coincidesWithAny(p geom.Point, anchors []geom.Point) bool {
	for _, a := range anchors {
		if p.Near(a, 1e-9) {
			return true
		}
	}
	return false
}

package pipeline

import (
	"github.com/matzehuels/kintree/pkg/family"
	"github.com/matzehuels/kintree/pkg/graph"
	"github.com/matzehuels/kintree/pkg/layout"
)

// GenerateLayout runs the layout engine on members and converts the result
// to the serializable form. It never fails for a valid Options.
func GenerateLayout(members []family.Member, opts Options) (graph.Layout, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return graph.Layout{}, err
	}
	l := layout.Compute(members, opts.LayoutOptions())
	out := graph.FromLayout(members, l)

	opts.Logger.Debug("layout computed",
		"members", len(l.Positions),
		"junctions", len(l.Junctions),
		"levels", countLevels(l),
		"offset", l.Offset)
	return out, nil
}

func countLevels(l *layout.Layout) int {
	seen := make(map[int]struct{})
	for _, lvl := range l.Levels {
		seen[lvl] = struct{}{}
	}
	return len(seen)
}

package layout

import (
	"reflect"
	"testing"

	"github.com/matzehuels/kintree/pkg/family"
)

func TestTrackerChanged(t *testing.T) {
	base := []family.Member{person("a", "", "", ""), person("b", "a", "", "")}

	tests := []struct {
		name string
		next []family.Member
		want bool
	}{
		{"same snapshot", base, false},
		{"position update", []family.Member{base[0].WithPosition(10, 20), base[1]}, false},
		{"reordered", []family.Member{base[1], base[0]}, false},
		{"member added", append(append([]family.Member{}, base...), person("c", "", "", "")), true},
		{"member removed", base[:1], true},
		{"member replaced", []family.Member{base[0], person("z", "", "", "")}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := NewTracker()
			tr.Accept(base)
			if got := tr.Changed(tt.next); got != tt.want {
				t.Errorf("Changed() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTrackerUninitialized(t *testing.T) {
	tr := NewTracker()
	if !tr.Changed(nil) {
		t.Error("an uninitialized tracker should report a change")
	}
	if !tr.Observe(nil) {
		t.Error("first Observe should report a change")
	}
	if tr.Observe(nil) {
		t.Error("second Observe of the same snapshot should not")
	}
	tr.Reset()
	if !tr.Changed(nil) {
		t.Error("Reset should forget the snapshot")
	}
}

func TestTrackerState(t *testing.T) {
	tr := NewTracker()
	tr.Accept([]family.Member{person("b", "", "", ""), person("a", "", "", "")})

	st := tr.State()
	want := TrackerState{Initialized: true, Count: 2, Known: []string{"a", "b"}}
	if !reflect.DeepEqual(st, want) {
		t.Errorf("State() = %+v, want %+v", st, want)
	}

	restored := RestoreTracker(st)
	if restored.Changed([]family.Member{person("a", "", "", ""), person("b", "", "", "")}) {
		t.Error("restored tracker should recognise the snapshot")
	}
	if !restored.Changed([]family.Member{person("a", "", "", ""), person("c", "", "", "")}) {
		t.Error("restored tracker should notice a new member")
	}
}

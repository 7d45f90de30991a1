package scenegraph

import (
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
	"pgregory.net/rapid"
)

func TestNodeIDSymbol(t *testing.T) {
	tests := []struct {
		name string
		id   NodeID
		want string
	}{
		{name: "object", id: NewNodeID('O', 5), want: "O(5)"},
		{name: "place", id: NewNodeID('p', 0), want: "p(0)"},
		{name: "large index", id: NewNodeID('R', 1<<40), want: "R(1099511627776)"},
		{name: "no category", id: 42, want: "42"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.id.Symbol(); got != tt.want {
				t.Errorf("Symbol() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNodeIDRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		category := rune(rapid.IntRange('A', 'z').Filter(func(c int) bool {
			return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
		}).Draw(t, "category"))
		index := rapid.Uint64Range(0, (1<<56)-1).Draw(t, "index")

		id := NewNodeID(category, index)
		if id.Category() != category {
			t.Fatalf("Category() = %q, want %q", id.Category(), category)
		}
		if id.Index() != index {
			t.Fatalf("Index() = %d, want %d", id.Index(), index)
		}
	})
}

func TestNodeSemanticViews(t *testing.T) {
	tests := []struct {
		name       string
		attrs      AttributeSet
		semantic   bool
		place      bool
		place2D    bool
		base       r3.Vec
		colorAfter uint8
	}{
		{
			name:  "bare attributes",
			attrs: &Attributes{Position: r3.Vec{X: 1}},
			base:  r3.Vec{X: 1},
		},
		{
			name:       "semantic",
			attrs:      &SemanticAttributes{Color: Color{R: 9}},
			semantic:   true,
			colorAfter: 9,
		},
		{
			name:       "place embeds semantic",
			attrs:      &PlaceAttributes{SemanticAttributes: SemanticAttributes{Color: Color{R: 7}}},
			semantic:   true,
			place:      true,
			colorAfter: 7,
		},
		{
			name:     "place2d embeds semantic",
			attrs:    &Place2DAttributes{},
			semantic: true,
			place2D:  true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := &Node{ID: 1, Attrs: tt.attrs}
			if n.Position() != tt.base {
				t.Errorf("Position() = %+v, want %+v", n.Position(), tt.base)
			}
			sem, ok := n.Semantic()
			if ok != tt.semantic {
				t.Fatalf("Semantic() ok = %v, want %v", ok, tt.semantic)
			}
			if ok && sem.Color.R != tt.colorAfter {
				t.Errorf("semantic color = %d, want %d", sem.Color.R, tt.colorAfter)
			}
			if _, ok := n.Place(); ok != tt.place {
				t.Errorf("Place() ok = %v, want %v", ok, tt.place)
			}
			if _, ok := n.Place2D(); ok != tt.place2D {
				t.Errorf("Place2D() ok = %v, want %v", ok, tt.place2D)
			}
		})
	}
}

func TestSemanticViewIsWritable(t *testing.T) {
	// The semantic view aliases the stored payload, it is not a copy.
	attrs := &PlaceAttributes{}
	n := &Node{ID: 1, Attrs: attrs}
	sem, _ := n.Semantic()
	sem.Name = "corridor"
	if attrs.Name != "corridor" {
		t.Error("Semantic() should return a view into the stored attributes")
	}
}

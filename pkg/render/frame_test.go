package render

import "testing"

func TestPaintOrder(t *testing.T) {
	f := Frame{Elements: []Element{
		{Index: 0, ZIndex: 1100, Opacity: 1},
		{Index: 1, ZIndex: 900, Opacity: 1},
		{Index: 2, Hidden: true},
		{Index: 3, ZIndex: 1000, Opacity: 0},
		{Index: 4, ZIndex: 900, Opacity: 0.5},
	}}

	got := f.PaintOrder()
	want := []int{1, 4, 0}
	if len(got) != len(want) {
		t.Fatalf("PaintOrder() returned %d elements, want %d", len(got), len(want))
	}
	for i, e := range got {
		if e.Index != want[i] {
			t.Errorf("PaintOrder()[%d] = element %d, want %d", i, e.Index, want[i])
		}
	}

	if v := f.Visible(); v != 4 {
		t.Errorf("Visible() = %d, want 4", v)
	}
}

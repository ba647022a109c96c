package source

import "testing"

func TestSpanCover(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Span
		expected Span
	}{
		{
			name:     "disjoint spans",
			a:        Span{File: 1, Start: 10, End: 20},
			b:        Span{File: 1, Start: 30, End: 40},
			expected: Span{File: 1, Start: 10, End: 40},
		},
		{
			name:     "nested span",
			a:        Span{File: 1, Start: 10, End: 40},
			b:        Span{File: 1, Start: 15, End: 20},
			expected: Span{File: 1, Start: 10, End: 40},
		},
		{
			name:     "different files are not merged",
			a:        Span{File: 1, Start: 10, End: 20},
			b:        Span{File: 2, Start: 0, End: 50},
			expected: Span{File: 1, Start: 10, End: 20},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Cover(tt.b); got != tt.expected {
				t.Fatalf("Cover() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestSpanOrdering(t *testing.T) {
	first := Span{File: 0, Start: 9, End: 17}
	second := Span{File: 0, Start: 29, End: 37}
	if !first.Before(second) || second.Before(first) {
		t.Fatalf("expected %v before %v", first, second)
	}
	if !(Span{File: 0, Start: 0, End: 50}).Contains(first) {
		t.Fatalf("expected containment")
	}
	if (Span{File: 1, Start: 0, End: 50}).Contains(first) {
		t.Fatalf("spans in other files must not contain each other")
	}
}

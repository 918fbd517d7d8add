package coding

import (
	"testing"
)

func TestCodeAssignment_Overlaps(t *testing.T) {
	base := CodeAssignment{DocumentID: "d1", StartChar: 4, EndChar: 9}

	tests := []struct {
		name  string
		other CodeAssignment
		want  bool
	}{
		{"identical span", CodeAssignment{DocumentID: "d1", StartChar: 4, EndChar: 9}, true},
		{"partial overlap", CodeAssignment{DocumentID: "d1", StartChar: 8, EndChar: 12}, true},
		{"contained", CodeAssignment{DocumentID: "d1", StartChar: 5, EndChar: 6}, true},
		{"adjacent after", CodeAssignment{DocumentID: "d1", StartChar: 9, EndChar: 12}, false},
		{"adjacent before", CodeAssignment{DocumentID: "d1", StartChar: 0, EndChar: 4}, false},
		{"other document", CodeAssignment{DocumentID: "d2", StartChar: 4, EndChar: 9}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := base.Overlaps(&tt.other); got != tt.want {
				t.Errorf("Overlaps() = %v, want %v", got, tt.want)
			}
			if got := tt.other.Overlaps(&base); got != tt.want {
				t.Errorf("Overlaps() is not symmetric for %s", tt.name)
			}
		})
	}
}

func TestDocument_SliceUsesRuneOffsets(t *testing.T) {
	doc := Document{Content: "naïve café"}

	if got := doc.Length(); got != 10 {
		t.Fatalf("Length() = %d, want 10", got)
	}
	if got := doc.Slice(6, 10); got != "café" {
		t.Errorf("Slice(6, 10) = %q, want %q", got, "café")
	}
}

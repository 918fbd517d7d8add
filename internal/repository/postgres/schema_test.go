package postgres

import (
	"slices"
	"testing"
)

func TestNewTableNames(t *testing.T) {
	tables := NewTableNames("dev_")

	if tables.Projects != "dev_projects" {
		t.Errorf("Projects = %q, want dev_projects", tables.Projects)
	}
	if tables.CodeAssignments != "dev_code_assignments" {
		t.Errorf("CodeAssignments = %q, want dev_code_assignments", tables.CodeAssignments)
	}

	all := tables.All()
	if len(all) != 8 {
		t.Fatalf("All() returned %d tables, want 8", len(all))
	}
	if slices.Index(all, tables.Themes) < slices.Index(all, tables.Codes) {
		t.Errorf("themes must be dropped after codes, got %v", all)
	}
	if all[len(all)-1] != tables.Projects {
		t.Errorf("projects must be dropped last, got %q", all[len(all)-1])
	}
}

func TestFirstLine(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"single line", "CREATE EXTENSION x", "CREATE EXTENSION x"},
		{"multi line", "CREATE TABLE t (\n  id INT\n)", "CREATE TABLE t ("},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := firstLine(tt.in); got != tt.want {
				t.Errorf("firstLine() = %q, want %q", got, tt.want)
			}
		})
	}
}

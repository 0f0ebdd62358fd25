package query_test

import (
	"testing"

	"github.com/wardenlabs/warden/pkg/query"
)

func testProjection() *query.ProjectionMap {
	return query.NewProjectionMap("rules", "r").
		Project("id", "id").
		Project("name", "name").
		Project("created_at", "createdAt")
}

func ptr(s string) *string { return &s }

func TestProjectionMapFrom(t *testing.T) {
	p := testProjection()
	if got := p.From(); got != "rules r" {
		t.Errorf("From() = %q, want %q", got, "rules r")
	}
}

func TestProjectionMapColumns(t *testing.T) {
	p := testProjection()
	got := p.Columns()
	want := "r.id, r.name, r.created_at"
	if got != want {
		t.Errorf("Columns() = %q, want %q", got, want)
	}
}

func TestProjectionMapColumnLookup(t *testing.T) {
	p := testProjection()

	tests := []struct {
		name     string
		viewName string
		want     string
	}{
		{"mapped field", "name", "r.name"},
		{"mapped camel", "createdAt", "r.created_at"},
		{"unmapped passthrough", "unknown", "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.Column(tt.viewName); got != tt.want {
				t.Errorf("Column(%q) = %q, want %q", tt.viewName, got, tt.want)
			}
		})
	}
}

func TestParseSortFields(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []query.SortField
	}{
		{
			name:  "empty string",
			input: "",
			want:  nil,
		},
		{
			name:  "single ascending",
			input: "name",
			want:  []query.SortField{{Field: "name", Descending: false}},
		},
		{
			name:  "single descending",
			input: "-createdAt",
			want:  []query.SortField{{Field: "createdAt", Descending: true}},
		},
		{
			name:  "multiple mixed",
			input: "name,-createdAt",
			want: []query.SortField{
				{Field: "name", Descending: false},
				{Field: "createdAt", Descending: true},
			},
		},
		{
			name:  "with spaces",
			input: " name , -createdAt ",
			want: []query.SortField{
				{Field: "name", Descending: false},
				{Field: "createdAt", Descending: true},
			},
		},
		{
			name:  "empty parts skipped",
			input: "name,,createdAt",
			want: []query.SortField{
				{Field: "name", Descending: false},
				{Field: "createdAt", Descending: false},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := query.ParseSortFields(tt.input)
			if tt.want == nil {
				if got != nil {
					t.Errorf("ParseSortFields(%q) = %v, want nil", tt.input, got)
				}
				return
			}
			if len(got) != len(tt.want) {
				t.Fatalf("ParseSortFields(%q) length = %d, want %d", tt.input, len(got), len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("ParseSortFields(%q)[%d] = %v, want %v", tt.input, i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestBuilderBuild(t *testing.T) {
	b := query.NewBuilder(testProjection())
	sql, args := b.Build()

	wantSQL := "SELECT r.id, r.name, r.created_at FROM rules r"
	if sql != wantSQL {
		t.Errorf("Build() sql = %q, want %q", sql, wantSQL)
	}
	if len(args) != 0 {
		t.Errorf("Build() args = %v, want empty", args)
	}
}

func TestBuilderBuildCount(t *testing.T) {
	b := query.NewBuilder(testProjection())
	sql, args := b.BuildCount()

	wantSQL := "SELECT COUNT(*) FROM rules r"
	if sql != wantSQL {
		t.Errorf("BuildCount() sql = %q, want %q", sql, wantSQL)
	}
	if len(args) != 0 {
		t.Errorf("BuildCount() args = %v, want empty", args)
	}
}

func TestBuilderBuildPage(t *testing.T) {
	b := query.NewBuilder(testProjection(), query.SortField{Field: "createdAt", Descending: true})
	sql, args := b.BuildPage(2, 10)

	wantSQL := "SELECT r.id, r.name, r.created_at FROM rules r ORDER BY r.created_at DESC LIMIT 10 OFFSET 10"
	if sql != wantSQL {
		t.Errorf("BuildPage() sql = %q, want %q", sql, wantSQL)
	}
	if len(args) != 0 {
		t.Errorf("BuildPage() args = %v, want empty", args)
	}
}

func TestBuilderBuildSingle(t *testing.T) {
	b := query.NewBuilder(testProjection())
	sql, args := b.BuildSingle("id", "abc-123")

	wantSQL := "SELECT r.id, r.name, r.created_at FROM rules r WHERE r.id = $1"
	if sql != wantSQL {
		t.Errorf("BuildSingle() sql = %q, want %q", sql, wantSQL)
	}
	if len(args) != 1 || args[0] != "abc-123" {
		t.Errorf("BuildSingle() args = %v, want [abc-123]", args)
	}
}

func TestBuilderWhereEquals(t *testing.T) {
	b := query.NewBuilder(testProjection())
	b.WhereEquals("name", "balance_check")
	sql, args := b.Build()

	wantSQL := "SELECT r.id, r.name, r.created_at FROM rules r WHERE r.name = $1"
	if sql != wantSQL {
		t.Errorf("sql = %q, want %q", sql, wantSQL)
	}
	if len(args) != 1 || args[0] != "balance_check" {
		t.Errorf("args = %v, want [balance_check]", args)
	}
}

func TestBuilderWhereEqualsNilSkipped(t *testing.T) {
	b := query.NewBuilder(testProjection())
	b.WhereEquals("name", nil)
	sql, args := b.Build()

	wantSQL := "SELECT r.id, r.name, r.created_at FROM rules r"
	if sql != wantSQL {
		t.Errorf("sql = %q, want %q", sql, wantSQL)
	}
	if len(args) != 0 {
		t.Errorf("args = %v, want empty", args)
	}
}

func TestBuilderWhereEqualsNilPointerSkipped(t *testing.T) {
	var name *string
	b := query.NewBuilder(testProjection())
	b.WhereEquals("name", name)
	_, args := b.Build()

	if len(args) != 0 {
		t.Errorf("args = %v, want empty", args)
	}
}

func TestBuilderWhereContains(t *testing.T) {
	b := query.NewBuilder(testProjection())
	b.WhereContains("name", ptr("balance"))
	sql, args := b.Build()

	wantSQL := "SELECT r.id, r.name, r.created_at FROM rules r WHERE r.name ILIKE $1"
	if sql != wantSQL {
		t.Errorf("sql = %q, want %q", sql, wantSQL)
	}
	if len(args) != 1 || args[0] != "%balance%" {
		t.Errorf("args = %v, want [%%balance%%]", args)
	}
}

func TestBuilderWhereContainsNilSkipped(t *testing.T) {
	b := query.NewBuilder(testProjection())
	b.WhereContains("name", nil)
	_, args := b.Build()

	if len(args) != 0 {
		t.Errorf("args = %v, want empty", args)
	}
}

func TestBuilderWhereContainsEmptySkipped(t *testing.T) {
	b := query.NewBuilder(testProjection())
	b.WhereContains("name", ptr(""))
	_, args := b.Build()

	if len(args) != 0 {
		t.Errorf("args = %v, want empty", args)
	}
}

func TestBuilderWhereSearch(t *testing.T) {
	b := query.NewBuilder(testProjection())
	b.WhereSearch(ptr("balance"), "name", "id")
	sql, args := b.Build()

	wantSQL := "SELECT r.id, r.name, r.created_at FROM rules r WHERE (r.name ILIKE $1 OR r.id ILIKE $2)"
	if sql != wantSQL {
		t.Errorf("sql = %q, want %q", sql, wantSQL)
	}
	if len(args) != 2 || args[0] != "%balance%" || args[1] != "%balance%" {
		t.Errorf("args = %v, want [%%balance%% %%balance%%]", args)
	}
}

func TestBuilderWhereSearchNilSkipped(t *testing.T) {
	b := query.NewBuilder(testProjection())
	b.WhereSearch(nil, "name")
	_, args := b.Build()

	if len(args) != 0 {
		t.Errorf("args = %v, want empty", args)
	}
}

func TestBuilderMultipleConditions(t *testing.T) {
	b := query.NewBuilder(testProjection())
	b.WhereEquals("name", "balance_check")
	b.WhereContains("id", ptr("abc"))
	sql, args := b.Build()

	wantSQL := "SELECT r.id, r.name, r.created_at FROM rules r WHERE r.name = $1 AND r.id ILIKE $2"
	if sql != wantSQL {
		t.Errorf("sql = %q, want %q", sql, wantSQL)
	}
	if len(args) != 2 {
		t.Fatalf("args length = %d, want 2", len(args))
	}
	if args[0] != "balance_check" {
		t.Errorf("args[0] = %v, want balance_check", args[0])
	}
	if args[1] != "%abc%" {
		t.Errorf("args[1] = %v, want %%abc%%", args[1])
	}
}

func TestBuilderOrderByFields(t *testing.T) {
	b := query.NewBuilder(testProjection(), query.SortField{Field: "id", Descending: false})
	b.OrderByFields([]query.SortField{
		{Field: "createdAt", Descending: true},
		{Field: "name", Descending: false},
	})
	sql, _ := b.Build()

	wantSQL := "SELECT r.id, r.name, r.created_at FROM rules r ORDER BY r.created_at DESC, r.name ASC"
	if sql != wantSQL {
		t.Errorf("sql = %q, want %q", sql, wantSQL)
	}
}

func TestBuilderDefaultSort(t *testing.T) {
	b := query.NewBuilder(testProjection(), query.SortField{Field: "createdAt", Descending: true})
	sql, _ := b.Build()

	wantSQL := "SELECT r.id, r.name, r.created_at FROM rules r ORDER BY r.created_at DESC"
	if sql != wantSQL {
		t.Errorf("sql = %q, want %q", sql, wantSQL)
	}
}

func TestBuilderBuildCountWithConditions(t *testing.T) {
	b := query.NewBuilder(testProjection())
	b.WhereEquals("name", "balance_check")
	sql, args := b.BuildCount()

	wantSQL := "SELECT COUNT(*) FROM rules r WHERE r.name = $1"
	if sql != wantSQL {
		t.Errorf("sql = %q, want %q", sql, wantSQL)
	}
	if len(args) != 1 || args[0] != "balance_check" {
		t.Errorf("args = %v, want [balance_check]", args)
	}
}

func TestBuilderBuildPageWithConditions(t *testing.T) {
	b := query.NewBuilder(testProjection(), query.SortField{Field: "id"})
	b.WhereContains("name", ptr("check"))
	sql, args := b.BuildPage(3, 25)

	wantSQL := "SELECT r.id, r.name, r.created_at FROM rules r WHERE r.name ILIKE $1 ORDER BY r.id ASC LIMIT 25 OFFSET 50"
	if sql != wantSQL {
		t.Errorf("sql = %q, want %q", sql, wantSQL)
	}
	if len(args) != 1 || args[0] != "%check%" {
		t.Errorf("args = %v, want [%%check%%]", args)
	}
}

package resolve

import (
	"testing"

	"wlbind/internal/registry"
)

func owner(proto string) registry.Owner {
	return registry.Owner{Protocol: proto, Module: registry.ModuleName(proto), Document: proto + ".xml"}
}

func protocols(owners []registry.Owner) []string {
	out := make([]string, 0, len(owners))
	for _, o := range owners {
		out = append(out, o.Protocol)
	}
	return out
}

func TestCascadeSteps(t *testing.T) {
	tests := []struct {
		name   string
		step   CascadeStep
		query  Query
		owners []registry.Owner
		want   []string
	}{
		{
			name:   "imports by module",
			step:   StepImports,
			query:  Query{Name: "zwp_x_v1", Imports: []string{"bar"}},
			owners: []registry.Owner{owner("foo_v1"), owner("bar_v2")},
			want:   []string{"bar_v2"},
		},
		{
			name:   "apparent protocol",
			step:   StepProtocol,
			query:  Query{Name: "zwp_linux_dmabuf_v1"},
			owners: []registry.Owner{owner("other"), owner("linux_dmabuf_v1")},
			want:   []string{"linux_dmabuf_v1"},
		},
		{
			name:   "module name",
			step:   StepModule,
			query:  Query{Name: "zwp_linux_dmabuf_v1"},
			owners: []registry.Owner{owner("linux_dmabuf_v2"), owner("other_v1")},
			want:   []string{"linux_dmabuf_v2"},
		},
		{
			name:   "stable owner",
			step:   StepStable,
			query:  Query{Name: "zwp_tablet_v2"},
			owners: []registry.Owner{owner("tablet_unstable_v2"), owner("tablet_v2"), owner("tablet_staging")},
			want:   []string{"tablet_v2"},
		},
		{
			name:   "step that empties the set is skipped",
			step:   StepImports,
			query:  Query{Name: "zwp_x_v1", Imports: []string{"nothing"}},
			owners: []registry.Owner{owner("a"), owner("b")},
			want:   []string{"a", "b"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := protocols(Narrow(tt.owners, tt.query, []CascadeStep{tt.step}))
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("got %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestCascadeStopsAtOne(t *testing.T) {
	// импорт оставляет одного кандидата, хотя stable-шаг выбрал бы другого
	owners := []registry.Owner{owner("foo_unstable_v1"), owner("foo")}
	got := Narrow(owners, Query{Name: "zfoo_x", Imports: []string{"foo_unstable"}}, Cascade)
	if len(got) != 1 || got[0].Protocol != "foo_unstable_v1" {
		t.Fatalf("got %v", protocols(got))
	}
}

func TestCascadeNarrowsCumulatively(t *testing.T) {
	owners := []registry.Owner{
		owner("foo_unstable_v1"),
		owner("foo"),
		owner("bar"),
	}
	got := Narrow(owners, Query{Name: "zfoo_x", Imports: []string{"foo_unstable", "foo"}}, Cascade)
	if len(got) != 1 || got[0].Protocol != "foo" {
		t.Fatalf("got %v", protocols(got))
	}
}

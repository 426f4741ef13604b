package prof

import (
	"testing"

	"github.com/spf13/afero"
)

func TestSessionWritesHeapProfile(t *testing.T) {
	fsys := afero.NewMemMapFs()
	s, err := Start(fsys, Options{Mem: "heap.pprof"})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := s.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	info, err := fsys.Stat("heap.pprof")
	if err != nil {
		t.Fatalf("heap profile missing: %v", err)
	}
	if info.Size() == 0 {
		t.Error("heap profile is empty")
	}
}

func TestOptionsEnabled(t *testing.T) {
	if (Options{}).Enabled() {
		t.Error("empty options must be disabled")
	}
	if !(Options{CPU: "cpu.pprof"}).Enabled() {
		t.Error("cpu option must enable profiling")
	}
	var s *Session
	if err := s.Stop(); err != nil {
		t.Errorf("nil session Stop: %v", err)
	}
}

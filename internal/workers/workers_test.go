package workers

import (
	"runtime"
	"testing"
)

func TestForCPUWithEnvOverride(t *testing.T) {
	cpus := runtime.GOMAXPROCS(0)

	tests := []struct {
		name  string
		env   string
		limit int
		want  int
	}{
		{"unset uses CPUs", "", 0, cpus},
		{"override", "3", 0, 3},
		{"override with spaces", " 5 ", 0, 5},
		{"override above limit", "12", 4, 4},
		{"override below limit", "2", 4, 2},
		{"zero falls back", "0", 0, cpus},
		{"negative falls back", "-2", 0, cpus},
		{"garbage falls back", "many", 0, cpus},
		{"fallback capped", "", 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvOverride, tt.env)
			if got := ForCPU(tt.limit); got != tt.want {
				t.Errorf("ForCPU(%d) with %s=%q = %d, want %d", tt.limit, EnvOverride, tt.env, got, tt.want)
			}
		})
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name       string
		env        string
		configured int
		want       int
	}{
		{"configured wins over env", "7", 2, 2},
		{"zero defers to env", "7", 0, 7},
		{"negative defers to env", "7", -1, 7},
		{"zero without env uses CPUs", "", 0, runtime.GOMAXPROCS(0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvOverride, tt.env)
			if got := Resolve(tt.configured); got != tt.want {
				t.Errorf("Resolve(%d) = %d, want %d", tt.configured, got, tt.want)
			}
		})
	}
}

func TestCapAt(t *testing.T) {
	tests := []struct {
		n, limit, want int
	}{
		{0, 0, 1},
		{-3, 0, 1},
		{6, 0, 6},
		{6, 4, 4},
		{0, 4, 1},
	}
	for _, tt := range tests {
		if got := capAt(tt.n, tt.limit); got != tt.want {
			t.Errorf("capAt(%d, %d) = %d, want %d", tt.n, tt.limit, got, tt.want)
		}
	}
}

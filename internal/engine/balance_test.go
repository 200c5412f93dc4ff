package engine

import "testing"

func TestAssignTeam(t *testing.T) {
	cases := []struct {
		name    string
		counts  map[int]int
		enabled bool
		want    int
	}{
		{
			name:    "disabled returns zero",
			counts:  map[int]int{0: 3, 1: 1},
			enabled: false,
			want:    0,
		},
		{
			name:    "unknown counts returns zero",
			counts:  nil,
			enabled: true,
			want:    0,
		},
		{
			name:    "least populated team wins",
			counts:  map[int]int{0: 3, 1: 1},
			enabled: true,
			want:    1,
		},
		{
			name:    "tie breaks to lowest team id",
			counts:  map[int]int{2: 1, 1: 1, 3: 1},
			enabled: true,
			want:    1,
		},
		{
			name:    "empty team beats populated ones",
			counts:  map[int]int{0: 4, 1: 0, 2: 2},
			enabled: true,
			want:    1,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := AssignTeam(tc.counts, tc.enabled); got != tc.want {
				t.Fatalf("got team %d, want %d", got, tc.want)
			}
		})
	}
}

func TestAssignTeam_DeterministicAcrossCalls(t *testing.T) {
	counts := map[int]int{4: 2, 2: 2, 0: 2, 3: 2}
	for i := 0; i < 50; i++ {
		if got := AssignTeam(counts, true); got != 0 {
			t.Fatalf("call %d: got %d, want 0", i, got)
		}
	}
}

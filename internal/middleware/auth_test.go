package middleware

import (
	"testing"
)

func TestIsFacilityOwner(t *testing.T) {
	cases := []struct {
		name   string
		claims map[string]any
		want   bool
	}{
		{"nil claims", nil, false},
		{"empty claims", map[string]any{}, false},
		{"role owner", map[string]any{"role": "owner"}, true},
		{"role facility_owner", map[string]any{"role": "facility_owner"}, true},
		{"role trainer", map[string]any{"role": "trainer"}, true},
		{"role player", map[string]any{"role": "player"}, false},
		{"accountType trainer", map[string]any{"accountType": "trainer"}, true},
		{"owner flag", map[string]any{"owner": true}, true},
		{"owner flag false", map[string]any{"owner": false}, false},
		{"roles array", map[string]any{"roles": []interface{}{"member", "trainer"}}, true},
		{"roles array without match", map[string]any{"roles": []interface{}{"member"}}, false},
	}

	for _, tc := range cases {
		if got := IsFacilityOwner(tc.claims); got != tc.want {
			t.Fatalf("%s: IsFacilityOwner = %v, want %v", tc.name, got, tc.want)
		}
	}
}

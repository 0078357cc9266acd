package domain

import "testing"

func TestOverall(t *testing.T) {
	cases := []struct {
		in   []HealthState
		want HealthState
	}{
		{nil, Healthy},
		{[]HealthState{Healthy, Healthy}, Healthy},
		{[]HealthState{Healthy, Degraded}, Degraded},
		{[]HealthState{Degraded, Unhealthy, Healthy}, Unhealthy},
		{[]HealthState{Unhealthy}, Unhealthy},
	}
	for _, c := range cases {
		services := make([]ServiceHealth, 0, len(c.in))
		for _, s := range c.in {
			services = append(services, ServiceHealth{Status: s})
		}
		if got := Overall(services); got != c.want {
			t.Fatalf("Overall(%v)=%q want %q", c.in, got, c.want)
		}
	}
}

func TestHealthState_Up(t *testing.T) {
	if !Healthy.Up() || !Degraded.Up() || Unhealthy.Up() {
		t.Fatalf("Up() mapping wrong")
	}
}

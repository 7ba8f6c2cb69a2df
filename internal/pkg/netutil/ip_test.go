package netutil

import "testing"

func TestIsLocalOrUnusableIP(t *testing.T) {
	cases := map[string]bool{
		"10.0.0.5":           true,
		"127.0.0.1":          true,
		"192.168.1.20":       true,
		"172.16.4.4":         true,
		"172.32.0.1":         false,
		"169.254.10.1":       true,
		"::1":                true,
		"fe80::1":            true,
		"fd12:3456::1":       true,
		"::ffff:10.1.2.3":    true,
		"":                   true,
		"unknown":            true,
		"8.8.8.8":            false,
		"2001:4860::8888":    false,
		" 81.2.69.160 ":      false,
		"::ffff:81.2.69.1":   false,
		"203.0.113.7:4711":   false,
		"10.0.0.1:8080":      true,
		"[2001:4860::1]:443": false,
		"[::1]:443":          true,
	}
	for ip, want := range cases {
		if got := IsLocalOrUnusableIP(ip); got != want {
			t.Errorf("IsLocalOrUnusableIP(%q) = %v, want %v", ip, got, want)
		}
	}
}

func TestSelectClientIP(t *testing.T) {
	cases := []struct {
		chain string
		want  string
	}{
		{"", ""},
		{"81.2.69.160", "81.2.69.160"},
		{"2001:db8::1, 81.2.69.160, 10.0.0.1", "81.2.69.160"},
		{"2001:db8::1, 2001:db8::2", "2001:db8::1"},
		{" , 8.8.4.4", "8.8.4.4"},
		{"garbage, 2001:db8::2", "garbage"},
		{"203.0.113.7:4711, 10.0.0.1", "203.0.113.7"},
		{"[2001:db8::1]:443, [2001:db8::2]", "2001:db8::1"},
		{"[2001:db8::5]", "2001:db8::5"},
		{"::ffff:81.2.69.160", "81.2.69.160"},
	}
	for _, tc := range cases {
		if got := SelectClientIP(tc.chain); got != tc.want {
			t.Errorf("SelectClientIP(%q) = %q, want %q", tc.chain, got, tc.want)
		}
	}
}

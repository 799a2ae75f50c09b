package version

import "testing"

func TestTag(t *testing.T) {
	tests := []struct {
		version string
		want    string
	}{
		{"dev", "dev"},
		{"0.4.0", "v0.4.0"},
		{"v0.4.0", "v0.4.0"},
		{"1.0.0", "v1.0.0"},
		{"v1.0.0", "v1.0.0"},
		{"v0.4.0-2-g98e23e6", "dev"},
		{"v0.4.0-dirty", "dev"},
		{"none", "dev"},
		{"", "dev"},
		{"v0.4.0-rc1", "dev"},
		{"0.4.0-beta.1", "dev"},
	}

	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			Version = tt.version
			got := Tag()
			if got != tt.want {
				t.Errorf("Tag() = %q, want %q", got, tt.want)
			}
		})
	}
}

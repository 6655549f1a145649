package style

import "testing"

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Errorf("default config should validate, got %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	valid := Default()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"unchanged", func(c *Config) {}, false},
		{"zero font size", func(c *Config) { c.FontSize = 0 }, true},
		{"negative x", func(c *Config) { c.PositionX = -1 }, true},
		{"x above 100", func(c *Config) { c.PositionX = 101 }, true},
		{"y above 100", func(c *Config) { c.PositionY = 100.5 }, true},
		{"edge positions", func(c *Config) { c.PositionX = 0; c.PositionY = 100 }, false},
		{"bad animation", func(c *Config) { c.Animation = "spin" }, true},
		{"bad color", func(c *Config) { c.FontColor = "white" }, true},
		{"all animations valid", func(c *Config) { c.Animation = AnimationTyping }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		in      string
		want    RGB
		wantErr bool
	}{
		{"#ffffff", RGB{255, 255, 255}, false},
		{"#000000", RGB{0, 0, 0}, false},
		{"#1a2b3c", RGB{0x1a, 0x2b, 0x3c}, false},
		{"ffffff", RGB{}, true},
		{"#fff", RGB{}, true},
		{"#zzzzzz", RGB{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseHexColor(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseHexColor(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseHexColor(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

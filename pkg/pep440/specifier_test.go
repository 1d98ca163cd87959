package pep440

import "testing"

func TestParseSpecifierSet(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{">=2.28.0", ">=2.28.0", false},
		{"  >= 2.28.0 , < 3 ", ">=2.28.0,<3", false},
		{"==1.4.*", "==1.4.*", false},
		{"~=2.4", "~=2.4", false},
		{"===1.0-custom", "===1.0-custom", false},
		{"!=3.0.*,>=2.8", "!=3.0.*,>=2.8", false},
		{"", "", false},
		{">=", "", true},
		{"1.0", "", true},       // bare version, no operator
		{">=1.0,,<2", "", true}, // empty clause
		{"~=1", "", true},       // single release component
		{">=1.4.*", "", true},   // wildcard with ordered operator
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			set, err := ParseSpecifierSet(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseSpecifierSet(%q) succeeded, want error", tt.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseSpecifierSet(%q): %v", tt.in, err)
			}
			if got := set.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSpecifierSet_Match(t *testing.T) {
	tests := []struct {
		set     string
		version string
		want    bool
	}{
		{">=2.28.0", "2.28.0", true},
		{">=2.28.0", "2.27.9", false},
		{"==1.4.*", "1.4.7", true},
		{"==1.4.*", "1.5.0", false},
		{"!=1.4.*", "1.4.7", false},
		{"!=1.4.*", "1.3.9", true},
		{"~=2.4", "2.9", true},
		{"~=2.4", "3.0", false},
		{"~=2.4.1", "2.4.9", true},
		{"~=2.4.1", "2.5.0", false},
		{">=2.8,!=3.0.*,<4", "3.1", true},
		{">=2.8,!=3.0.*,<4", "3.0.2", false},
		{"===1.0-custom", "1.0-custom", true},
		{"==1.0+cpu", "1.0+cpu", true},
		{"==1.0", "1.0+cpu", true}, // local ignored when clause has none
		{"<1.0", "1.0.dev1", true}, // dev releases order below the final
	}
	for _, tt := range tests {
		t.Run(tt.set+"/"+tt.version, func(t *testing.T) {
			set, err := ParseSpecifierSet(tt.set)
			if err != nil {
				t.Fatal(err)
			}
			if got := set.Match(MustParse(tt.version)); got != tt.want {
				t.Errorf("Match(%s, %s) = %v, want %v", tt.set, tt.version, got, tt.want)
			}
		})
	}
}

func TestSpecifierSet_Intersects(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{">=1.0", "<2.0", true},
		{">=2.0", "<1.0", false},
		{"<=1.0", ">=1.0", true},  // single shared point
		{"<1.0", ">=1.0", false},  // touching but exclusive
		{"==1.5", ">=1.0,<2", true},
		{"==2.5", ">=1.0,<2", false},
		{"==1.5", "==1.5.0", true}, // padded equality
		{"==1.5", "==1.6", false},
		{"==1.4.*", ">=1.5", false},
		{"==1.4.*", ">=1.4.2", true},
		{"~=2.28", ">=3", false},
		{"~=2.28", "<2.30", true},
		{">=1.4,<1.5", "!=1.4.*", false}, // wildcard exclusion swallows the interval
		{">=1.4,<1.6", "!=1.4.*", true},
		{"===abc", "===abc", true},
		{"===abc", "===abd", false},
		{"", ">=1.0", true},
	}
	for _, tt := range tests {
		t.Run(tt.a+" vs "+tt.b, func(t *testing.T) {
			a, err := ParseSpecifierSet(tt.a)
			if err != nil {
				t.Fatal(err)
			}
			b, err := ParseSpecifierSet(tt.b)
			if err != nil {
				t.Fatal(err)
			}
			if got := a.Intersects(b); got != tt.want {
				t.Errorf("Intersects(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
			if got := b.Intersects(a); got != tt.want {
				t.Errorf("Intersects(%q, %q) = %v, want %v", tt.b, tt.a, got, tt.want)
			}
		})
	}
}

func TestSpecifierSet_Pin(t *testing.T) {
	set, err := ParseSpecifierSet("==8.1.0")
	if err != nil {
		t.Fatal(err)
	}
	if pin := set.Pin(); pin == nil || pin.String() != "8.1.0" {
		t.Errorf("Pin() = %v, want 8.1.0", pin)
	}

	set, err = ParseSpecifierSet(">=8.1.0")
	if err != nil {
		t.Fatal(err)
	}
	if pin := set.Pin(); pin != nil {
		t.Errorf("Pin() = %v, want nil", pin)
	}
}

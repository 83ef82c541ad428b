package locale

import "testing"

func TestCountryNameChinese(t *testing.T) {
	cases := []struct {
		code, fallback, want string
	}{
		{"CHN", "China", "中国"},
		{"usa", "United States of America", "美国"},
		{"DEU", "", "德国"},
		{"XCS", "", "中国"},
	}
	for _, c := range cases {
		if got := Chinese.CountryName(c.code, c.fallback); got != c.want {
			t.Errorf("CountryName(%s) = %q want %q", c.code, got, c.want)
		}
	}
}

func TestCountryNameFallbacks(t *testing.T) {
	if got := Chinese.CountryName("ZZZ", "Atlantis"); got != "Atlantis" {
		t.Fatalf("missing zh entry should use geometry name, got %q", got)
	}
	if got := English.CountryName("CHN", "China"); got != "China" {
		t.Fatalf("english should prefer geometry name, got %q", got)
	}
	if got := English.CountryName("DEU", ""); got == "" || got == "DEU" {
		t.Fatalf("english registry lookup failed, got %q", got)
	}
	if got := English.CountryName("QQQ", ""); got != "QQQ" {
		t.Fatalf("unknown code should echo itself, got %q", got)
	}
}

func TestParse(t *testing.T) {
	for in, want := range map[string]Locale{"zh": Chinese, "EN": English, "": Chinese} {
		got, err := Parse(in)
		if err != nil || got != want {
			t.Errorf("Parse(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := Parse("fr"); err == nil {
		t.Fatal("expected error for unsupported locale")
	}
}

func TestLabelsDefault(t *testing.T) {
	if Locale("xx").Labels().Peak != "峰值" {
		t.Fatal("unknown locale should fall back to Chinese labels")
	}
	if English.Labels().Peak != "Peak" {
		t.Fatal("english peak label mismatch")
	}
}

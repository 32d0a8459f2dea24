package languages

import "testing"

func TestAll(t *testing.T) {
	langs := All()
	if len(langs) != 30 {
		t.Fatalf("expected 30 languages, got %d", len(langs))
	}
	if langs[0].Code != "es" || langs[0].Name != "Spanish" {
		t.Errorf("first language = %+v, want Spanish", langs[0])
	}
	if langs[0].Native == "" {
		t.Error("expected a native name")
	}

	// callers must not be able to modify the catalog
	langs[0].Name = "Klingon"
	if All()[0].Name != "Spanish" {
		t.Error("All() should return a copy")
	}
}

func TestLookup(t *testing.T) {
	tests := []struct {
		input    string
		expected string
		found    bool
	}{
		{"Spanish", "Spanish", true},
		{"spanish", "Spanish", true},
		{"es", "Spanish", true},
		{"zh-CN", "Chinese (Simplified)", true},
		{"zh-cn", "Chinese (Simplified)", true},
		{"Chinese (Traditional)", "Chinese (Traditional)", true},
		{"", "", false},
		{"xx-invalid-tag-!!", "", false},
		{"Latin", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			l, ok := Lookup(tt.input)
			if ok != tt.found {
				t.Fatalf("Lookup(%q) found = %v, want %v", tt.input, ok, tt.found)
			}
			if l.Name != tt.expected {
				t.Errorf("Lookup(%q) = %q, want %q", tt.input, l.Name, tt.expected)
			}
		})
	}
}

func TestResolve(t *testing.T) {
	name, err := Resolve("fr")
	if err != nil || name != "French" {
		t.Errorf("Resolve(fr) = %q, %v", name, err)
	}

	// valid tag outside the catalog
	name, err = Resolve("la")
	if err != nil {
		t.Fatalf("Resolve(la): %v", err)
	}
	if name != "Latin" {
		t.Errorf("Resolve(la) = %q, want Latin", name)
	}

	for _, bad := range []string{"not a language", "und", "UND", "", "Klingon"} {
		if name, err := Resolve(bad); err == nil {
			t.Errorf("Resolve(%q) = %q, expected an error", bad, name)
		}
	}
}

func TestResolveEnglishNames(t *testing.T) {
	tests := map[string]string{
		"English": "English",
		"english": "English",
		"Chinese": "Chinese",
		"Latin":   "Latin",
		" Welsh ": "Welsh",
		"en":      "English",
		"Spanish": "Spanish",
	}
	for input, want := range tests {
		got, err := Resolve(input)
		if err != nil {
			t.Errorf("Resolve(%q): %v", input, err)
			continue
		}
		if got != want {
			t.Errorf("Resolve(%q) = %q, want %q", input, got, want)
		}
	}
}

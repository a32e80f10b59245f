package template

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		name         string
		template     string
		wantErr      bool
		placeholders []string
	}{
		{
			name:         "literal only",
			template:     "Hello world",
			placeholders: nil,
		},
		{
			name:         "single placeholder",
			template:     "Hello {city}",
			placeholders: []string{"city"},
		},
		{
			name:         "multiple placeholders",
			template:     "{character} visits {city} in {season}",
			placeholders: []string{"character", "city", "season"},
		},
		{
			name:         "repeated placeholder counted once",
			template:     "{city} and {city} again, plus {season}",
			placeholders: []string{"city", "season"},
		},
		{
			name:         "empty braces are literal",
			template:     "empty {} braces",
			placeholders: nil,
		},
		{
			name:         "adjacent placeholders",
			template:     "{a}{b}",
			placeholders: []string{"a", "b"},
		},
		{
			name:     "empty template",
			template: "",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpl, err := Parse(tt.template)
			if (err != nil) != tt.wantErr {
				t.Errorf("Parse() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if err != nil {
				return
			}

			got := tmpl.Placeholders()
			if len(got) != len(tt.placeholders) {
				t.Errorf("Placeholders() = %v, want %v", got, tt.placeholders)
			}
			for i, p := range got {
				if i < len(tt.placeholders) && p != tt.placeholders[i] {
					t.Errorf("placeholder[%d] = %v, want %v", i, p, tt.placeholders[i])
				}
			}
		})
	}
}

func TestExecute(t *testing.T) {
	values := map[string]string{
		"city":      "Lisbon",
		"character": "a cartographer",
	}

	tests := []struct {
		name     string
		template string
		want     string
		wantErr  bool
	}{
		{
			name:     "literal passthrough",
			template: "no placeholders here",
			want:     "no placeholders here",
		},
		{
			name:     "single substitution",
			template: "Welcome to {city}!",
			want:     "Welcome to Lisbon!",
		},
		{
			name:     "repeated substitution",
			template: "{city}, {city}",
			want:     "Lisbon, Lisbon",
		},
		{
			name:     "multiple values",
			template: "{character} maps {city}",
			want:     "a cartographer maps Lisbon",
		},
		{
			name:     "missing value",
			template: "{city} in {season}",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpl, err := Parse(tt.template)
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}

			got, err := tmpl.Execute(values)
			if (err != nil) != tt.wantErr {
				t.Errorf("Execute() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if got != tt.want {
				t.Errorf("Execute() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRawRoundTrip(t *testing.T) {
	raw := "leading {a} middle {b} trailing"
	tmpl, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if tmpl.Raw() != raw {
		t.Errorf("Raw() = %q, want %q", tmpl.Raw(), raw)
	}

	// Executing with identity values reproduces the raw text
	got, err := tmpl.Execute(map[string]string{"a": "{a}", "b": "{b}"})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if got != raw {
		t.Errorf("identity Execute() = %q, want %q", got, raw)
	}
}

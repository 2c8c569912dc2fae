package scraper

import "testing"

func TestSearchSpecValidate(t *testing.T) {
	tests := []struct {
		name    string
		spec    SearchSpec
		wantErr bool
	}{
		{"valid minimal", SearchSpec{SearchTerm: "phone", MaxPages: 1}, false},
		{"valid with bounds", SearchSpec{SearchTerm: "phone", MinPrice: floatPtr(1), MaxPrice: floatPtr(2), MaxPages: 5}, false},
		{"equal bounds", SearchSpec{SearchTerm: "phone", MinPrice: floatPtr(2), MaxPrice: floatPtr(2), MaxPages: 1}, false},
		{"empty term", SearchSpec{SearchTerm: "", MaxPages: 1}, true},
		{"whitespace term", SearchSpec{SearchTerm: "   ", MaxPages: 1}, true},
		{"zero pages", SearchSpec{SearchTerm: "phone", MaxPages: 0}, true},
		{"negative pages", SearchSpec{SearchTerm: "phone", MaxPages: -3}, true},
		{"inverted bounds", SearchSpec{SearchTerm: "phone", MinPrice: floatPtr(10), MaxPrice: floatPtr(5), MaxPages: 1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.spec.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

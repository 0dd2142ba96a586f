package extract

import "testing"

func TestNormalizeMobile(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "country code with spaces", raw: "+91 98765 43210", want: "919876543210"},
		{name: "bare ten digits", raw: "9876543210", want: "9876543210"},
		{name: "dashed", raw: "98765-43210", want: "9876543210"},
		{name: "parenthesized", raw: "(0) 98765 43210", want: "09876543210"},
		{name: "too short kept as-is", raw: "12345", want: "12345"},
		{name: "too long kept as-is", raw: "1234567890123456", want: "1234567890123456"},
		{name: "no digits kept as-is", raw: "call me", want: "call me"},
		{name: "empty", raw: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeMobile(tt.raw); got != tt.want {
				t.Errorf("NormalizeMobile(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestDecodeLeadStripsCodeFences(t *testing.T) {
	raw := "```json\n{\"name\": \"Rahul Sharma\", \"address\": null, \"mobile\": \"9876543210\", \"confidence\": 0.9, \"notes\": \"wants prepaid\"}\n```"

	lead, err := DecodeLead(raw)
	if err != nil {
		t.Fatalf("DecodeLead returned error: %v", err)
	}
	if lead.Name == nil || *lead.Name != "Rahul Sharma" {
		t.Errorf("Name = %v, want Rahul Sharma", lead.Name)
	}
	if lead.Address != nil {
		t.Errorf("Address = %v, want nil", lead.Address)
	}
	if lead.Confidence != 0.9 {
		t.Errorf("Confidence = %v, want 0.9", lead.Confidence)
	}
}

func TestDecodeLeadClampsConfidence(t *testing.T) {
	lead, err := DecodeLead(`{"name": null, "address": null, "mobile": null, "confidence": 1.7, "notes": ""}`)
	if err != nil {
		t.Fatalf("DecodeLead returned error: %v", err)
	}
	if lead.Confidence != 1 {
		t.Errorf("Confidence = %v, want clamped to 1", lead.Confidence)
	}
}

func TestDecodeLeadRejectsProse(t *testing.T) {
	if _, err := DecodeLead("Sure! Here are the details you asked for."); err == nil {
		t.Error("expected error for non-JSON response")
	}
}

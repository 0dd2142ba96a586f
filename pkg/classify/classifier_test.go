package classify

import (
	"testing"
)

func TestIsNoise(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{name: "empty", text: "", want: true},
		{name: "single char", text: "k", want: true},
		{name: "whitespace only", text: "   ", want: true},
		{name: "hi", text: "hi", want: true},
		{name: "stretched hii", text: "hiii", want: true},
		{name: "hello with punctuation", text: "Hello!!", want: true},
		{name: "ok", text: "ok", want: true},
		{name: "okay", text: "okay", want: true},
		{name: "thanks", text: "Thanks", want: true},
		{name: "good morning", text: "Good Morning", want: true},
		{name: "namaste", text: "namaste", want: true},
		{name: "haan", text: "haan", want: true},
		{name: "theek hai", text: "theek hai", want: true},
		{name: "hmm", text: "hmm", want: true},
		{name: "long greeting-like text is kept", text: "hello, I need a new connection", want: false},
		{name: "name is not noise", text: "Rahul Sharma", want: false},
		{name: "phone is not noise", text: "9876543210", want: false},
		{name: "short real content", text: "2 BHK flat", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsNoise(tt.text); got != tt.want {
				t.Errorf("IsNoise(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestIdentifySlot(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Slot
	}{
		{name: "bare mobile", text: "9876543210", want: SlotMobile},
		{name: "mobile with plus country code", text: "+919876543210", want: SlotMobile},
		{name: "mobile with spaces", text: "+91 98765 43210", want: SlotMobile},
		{name: "mobile with dashes", text: "98765-43210", want: SlotMobile},
		{name: "mobile with leading zero", text: "09876543210", want: SlotMobile},
		{name: "too short number", text: "98765", want: SlotUnknown},
		{name: "landline-like start digit", text: "1234567890", want: SlotUnknown},
		{name: "two word name", text: "Rahul Sharma", want: SlotName},
		{name: "three word name", text: "Anita Kumari Devi", want: SlotName},
		{name: "single word is not a name", text: "Rahul", want: SlotUnknown},
		{name: "four words is not a name", text: "Rahul Kumar Sharma Verma", want: SlotUnknown},
		{name: "lowercase is not a name", text: "rahul sharma", want: SlotUnknown},
		{name: "address keyword", text: "42 MG Road Indiranagar", want: SlotAddress},
		{name: "address keyword nagar", text: "Sharma Nagar 2nd cross", want: SlotAddress},
		{name: "flat number", text: "Flat 302 Green Heights", want: SlotAddress},
		{name: "long message counts as address", text: "I live just past the big temple next to the water tank", want: SlotAddress},
		{name: "short free text", text: "need new sim", want: SlotUnknown},
		{name: "empty", text: "", want: SlotUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IdentifySlot(tt.text); got != tt.want {
				t.Errorf("IdentifySlot(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestMobileWinsOverName(t *testing.T) {
	// Priority order: a message that could be read several ways gets exactly
	// one label, and the phone shape is checked first.
	if got := IdentifySlot(" 9876543210 "); got != SlotMobile {
		t.Errorf("IdentifySlot with surrounding spaces = %q, want %q", got, SlotMobile)
	}
}

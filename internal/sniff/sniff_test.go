package sniff

import "testing"

func TestClassify_Text(t *testing.T) {
	cases := []struct {
		name   string
		prefix []byte
	}{
		{"plain ascii", []byte("hello, world\n")},
		{"json", []byte(`{"key": "value"}`)},
		{"xml", []byte(`<?xml version="1.0"?><root/>`)},
		{"utf8", []byte("héllo wörld\n")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Classify(tc.prefix); got != Text {
				t.Errorf("Classify(%q) = %s, want text", tc.prefix, got)
			}
		})
	}
}

func TestClassify_Binary(t *testing.T) {
	cases := []struct {
		name   string
		prefix []byte
	}{
		{"png magic", []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a}},
		{"gzip magic", []byte{0x1f, 0x8b, 0x08, 0x00}},
		{"null bytes", []byte{0x00, 0x01, 0x02, 0x03}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Classify(tc.prefix); got != Binary {
				t.Errorf("Classify(%v) = %s, want binary", tc.prefix, got)
			}
		})
	}
}

func TestClassify_Deterministic(t *testing.T) {
	prefix := []byte("the same bytes every time")
	first := Classify(prefix)
	for i := 0; i < 10; i++ {
		if got := Classify(prefix); got != first {
			t.Fatalf("classification changed between calls: %s then %s", first, got)
		}
	}
}

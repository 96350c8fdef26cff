package nlp

import (
	"reflect"
	"testing"
)

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercase", "Hello World", "hello world"},
		{"punctuation", "hello, world!", "hello world"},
		{"contraction", "don't stop", "dont stop"},
		{"accents", "café crème", "cafe creme"},
		{"digits kept", "top 10 hits", "top 10 hits"},
		{"collapse spaces", "a   b\tc", "a b c"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeText(tt.in); got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTokens(t *testing.T) {
	got := Tokens("The quick, brown fox!")
	want := []string{"the", "quick", "brown", "fox"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

package tabular

import (
	"strings"
	"testing"
)

func TestSignature_EmptyOutput(t *testing.T) {
	if got := Signature(nil); got != "0" {
		t.Fatalf("expected \"0\" for empty output, got %q", got)
	}
}

func TestSignature_EqualOutputsAgree(t *testing.T) {
	a := []Record{{"name": "A"}, {"name": "B"}}
	b := []Record{{"name": "A"}, {"name": "B"}}

	if Signature(a) != Signature(b) {
		t.Fatalf("structurally equal outputs must share a signature")
	}
}

func TestSignature_CountChangesSignature(t *testing.T) {
	a := []Record{{"name": "A"}}
	b := []Record{{"name": "A"}, {"name": "A"}}

	if Signature(a) == Signature(b) {
		t.Fatalf("outputs of different length must not share a signature")
	}
}

func TestSignature_BoundaryRecordChangesSignature(t *testing.T) {
	a := []Record{{"name": "A"}, {"name": "B"}}
	b := []Record{{"name": "A"}, {"name": "C"}}

	if Signature(a) == Signature(b) {
		t.Fatalf("differing last record must change the signature")
	}
}

func TestSignature_SnippetIsBounded(t *testing.T) {
	wide := Record{"blob": strings.Repeat("x", 10_000)}
	sig := Signature([]Record{wide})

	if len(sig) > 2*signatureSnippetLen+32 {
		t.Fatalf("signature not bounded: %d bytes", len(sig))
	}
}

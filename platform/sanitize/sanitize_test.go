package sanitize

import "testing"

func TestTextStripsTagsAndCollapsesSpaces(t *testing.T) {
	got := Text("  <b>Pintura</b>   da   &lt;script&gt;fachada&lt;/script&gt;  ")
	if got != "Pintura da fachada" {
		t.Fatalf("unexpected result %q", got)
	}
}

func TestTextKeepsLineBreaks(t *testing.T) {
	got := Text("linha 1\nlinha   2")
	if got != "linha 1\nlinha 2" {
		t.Fatalf("unexpected result %q", got)
	}
}

func TestTextPtrBlankBecomesNil(t *testing.T) {
	blank := "   <br/> "
	if TextPtr(&blank) != nil {
		t.Fatal("expected nil for blank input")
	}
	if TextPtr(nil) != nil {
		t.Fatal("expected nil for nil input")
	}
}

package value

import "testing"

func TestInferNumericAndBoolLiterals(t *testing.T) {
	cases := map[string]Kind{"42": Int, "-3": Int, "3.5": Float, "true": Bool, "false": Bool}
	for text, want := range cases {
		v, err := Infer(text)
		if err != nil {
			t.Fatalf("Infer(%q) failed: %v", text, err)
		}
		if v.Kind != want {
			t.Errorf("Infer(%q).Kind = %v, want %v", text, v.Kind, want)
		}
	}
}

func TestInferQuotedString(t *testing.T) {
	v, err := Infer("'hello'")
	if err != nil {
		t.Fatalf("Infer failed: %v", err)
	}
	if v.Kind != String || v.S != "hello" {
		t.Errorf("expected String \"hello\", got %v", v)
	}
}

func TestInferBareIdentifierErrors(t *testing.T) {
	if _, err := Infer("some_var"); err == nil {
		t.Fatal("expected an error inferring a bare, unquoted identifier")
	}
}

func TestParseInputDemotesUnparsableTextToString(t *testing.T) {
	v := ParseInput("hello there")
	if v.Kind != String || v.S != "hello there" {
		t.Errorf("expected the raw text back as a String, got %v", v)
	}
}

func TestParseInputParsesNumericText(t *testing.T) {
	v := ParseInput("42")
	if v.Kind != Int || v.I != 42 {
		t.Errorf("expected Integer 42, got %v", v)
	}
}

package host

import (
	"testing"

	"github.com/mitescript/mite/internal/value"
)

func TestRegexMethodIsMatchFindAllAndReplace(t *testing.T) {
	v, err := regexMethod("hello123world", "is_match", []value.Value{value.StringOf(`\d+`)})
	if err != nil || !v.B {
		t.Fatalf("is_match: got %v, err=%v", v, err)
	}

	v, err = regexMethod("a1 b22 c333", "find_all", []value.Value{value.StringOf(`\d+`)})
	if err != nil {
		t.Fatalf("find_all failed: %v", err)
	}
	if len(v.Vec) != 3 || v.Vec[0].S != "1" || v.Vec[2].S != "333" {
		t.Errorf("unexpected find_all result: %v", v)
	}

	v, err = regexMethod("foo-bar-baz", "regex_replace", []value.Value{value.StringOf("-"), value.StringOf("_")})
	if err != nil || v.S != "foo_bar_baz" {
		t.Fatalf("regex_replace: got %v, err=%v", v, err)
	}
}

func TestRegexMethodRejectsInvalidPatternAndUnknownName(t *testing.T) {
	if _, err := regexMethod("x", "is_match", []value.Value{value.StringOf("(")}); err == nil {
		t.Error("expected an error for an invalid regex pattern")
	}
	if _, err := regexMethod("x", "nope", nil); err == nil {
		t.Error("expected an error for an unknown regex method name")
	}
}

package utils

import (
	"strings"
	"testing"
)

func TestSDumpIsStable(t *testing.T) {
	v := &struct{ M map[string]int }{M: map[string]int{"b": 2, "a": 1}}
	out := SDump(v)
	if strings.Contains(out, "0x") {
		t.Errorf("SDump leaked a pointer address: %s", out)
	}
	if a, b := strings.Index(out, `"a"`), strings.Index(out, `"b"`); a < 0 || b < 0 || a > b {
		t.Errorf("SDump map keys not sorted: %s", out)
	}
	if out != SDump(v) {
		t.Errorf("SDump is not deterministic")
	}
}

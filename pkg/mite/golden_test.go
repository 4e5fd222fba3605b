package mite

import (
	"bytes"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"
	"github.com/mitescript/mite/internal/value"
)

// goldenScripts covers one representative script per control-flow and
// interop shape spec.md §8 walks through end to end: straight-line
// arithmetic/templating, a terminating while loop, break out of a for
// loop, a module-namespaced function call, and a caught runtime error.
// Each one pins its printed output against a recorded snapshot, the way
// the teacher's fixture harness pins interpreter output against .txt
// goldens.
var goldenScripts = map[string]string{
	"greeting": `
print 'Hello, {NAME}!'
sum 2 + 3
total sum * 4
print 'total={total}'
`,
	"while_loop": `
i = 0
while i < 5 [
print 'tick {i}'
i += 1
]
print 'done at {i}'
`,
	"for_break": `
found = -1
for n 0 9 [
if n == 4 [
found = n
break
]
]
print 'found={found}'
`,
	"module_call": `
module Shapes [
function square x [
area x * x
return area
]
]
r = Shapes.square(6)
print 'area={r}'
`,
	"caught_error": `
try [
x 10 / 0
] catch [
print 'caught: {LAST_ERROR}'
]
print 'recovered'
`,
}

func TestGoldenScripts(t *testing.T) {
	for name, src := range goldenScripts {
		t.Run(name, func(t *testing.T) {
			var out bytes.Buffer
			rt, err := New(src, WithOutput(&out))
			if err != nil {
				t.Fatalf("New failed: %v", err)
			}
			rt.SetGlobal("NAME", value.StringOf("World"))
			if err := rt.Run(); err != nil {
				t.Fatalf("Run failed: %v", err)
			}
			snaps.MatchSnapshot(t, out.String())
		})
	}
}

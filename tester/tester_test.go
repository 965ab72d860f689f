package tester

import (
	"strings"
	"testing"

	"github.com/nihei9/psc/testcase"
)

// TestTester_Testdata runs every fixture under ../testdata end to end,
// including turchin_relation.tc's and generalization.tc's "equivalent:"
// assertions against addAcc(a,b) and add(a,a) — the two whistle+MSG
// generalization scenarios §8.3/§8.4 call out by name. A "not-contains"
// check alone can pass on a residual program that still generalizes wrong
// (wrong arity, a dangling call into a function that no longer exists);
// running these through the interpreter oracle is what actually catches
// that class of bug.
func TestTester_Testdata(t *testing.T) {
	cases := ListTestCases("../testdata")
	if len(cases) == 0 {
		t.Fatal("expected at least one fixture under ../testdata")
	}
	tr := &Tester{Cases: cases}
	for _, r := range tr.Run() {
		if r.Error != nil {
			t.Errorf("%s: %v", r.FilePath, r.Error)
		}
	}
}

const natProgram = `
type [Nat] : Z | S [Nat] .

fun (add [Nat] [Nat]) -> [Nat] :
    (add [Z] y) -> y
  | (add [S x] y) -> [S (add x y)] .
`

func TestTester_Run(t *testing.T) {
	tests := []struct {
		name    string
		testSrc string
		error   bool
	}{
		{
			name: "start directive synthesizes the call and folds",
			testSrc: `
Test
---
` + natProgram + `
---
start: add
strategy: he
---
not-contains: (add
`,
		},
		{
			name: "expr directive drives a partially concrete call",
			testSrc: `
Test
---
` + natProgram + `
---
expr: (add [S [Z]] a)
-t a=[Nat]
---
not-contains: (add
contains: S
`,
		},
		{
			name: "equivalent assertion catches a wrong expectation",
			testSrc: `
Test
---
` + natProgram + `
---
start: add
strategy: he
---
equivalent: [S [Z]]
`,
			error: true,
		},
		{
			name: "contains assertion against a missing constructor fails",
			testSrc: `
Test
---
` + natProgram + `
---
start: add
strategy: he
---
contains: NoSuchConstructor
`,
			error: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := testcase.Parse(strings.NewReader(tt.testSrc))
			if err != nil {
				t.Fatal(err)
			}
			tr := &Tester{
				Cases: []*TestCaseWithMetadata{{TestCase: c, FilePath: tt.name}},
			}
			rs := tr.Run()
			if len(rs) != 1 {
				t.Fatalf("expected 1 result, got %d", len(rs))
			}
			if tt.error {
				if rs[0].Error == nil {
					t.Fatal("this test must fail, but it passed")
				}
				return
			}
			if rs[0].Error != nil {
				t.Fatalf("unexpected error occurred: %v", rs[0].Error)
			}
		})
	}
}

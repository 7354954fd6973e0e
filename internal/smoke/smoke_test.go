package smoke

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"reflect"
	"runtime"
	"strconv"
	"strings"
	"testing"
)

func TestReference(t *testing.T) {
	for _, c := range DefaultCases {
		got, err := Reference(c.CNF)
		if err != nil {
			t.Fatalf("%s: Reference() error = %v", c.Name, err)
		}
		want := Sat
		if strings.HasSuffix(c.Name, "unsat") || strings.HasPrefix(c.Name, "pigeonhole") {
			want = Unsat
		}
		if got != want {
			t.Errorf("%s: Reference() = %v, want %v", c.Name, got, want)
		}
	}
}

func TestReferenceInvalid(t *testing.T) {
	if _, err := Reference("p cnf 1 1\n2 0\n"); err == nil {
		t.Error("Reference() on an out-of-range literal should fail")
	}
}

func TestSatisfies(t *testing.T) {
	cnf := "p cnf 3 2\n1 -3 0\n2 3 -1 0\n"
	tests := []struct {
		model []int
		want  bool
	}{
		{[]int{1, 2, 3}, true},
		{[]int{-1, -2, -3}, true},
		{[]int{1, -2, -3}, false},
		{[]int{-1, 2, 3}, false},
	}
	for _, tt := range tests {
		got, err := Satisfies(cnf, tt.model)
		if err != nil {
			t.Fatalf("Satisfies(%v) error = %v", tt.model, err)
		}
		if got != tt.want {
			t.Errorf("Satisfies(%v) = %v, want %v", tt.model, got, tt.want)
		}
	}
}

func TestParseModel(t *testing.T) {
	got, err := parseModel("SAT\n1 -2 3 0\n")
	if err != nil {
		t.Fatalf("parseModel() error = %v", err)
	}
	if want := []int{1, -2, 3}; !reflect.DeepEqual(got, want) {
		t.Errorf("parseModel() = %v, want %v", got, want)
	}

	for _, bad := range []string{"UNSAT\n", "SAT\n1 x 0\n", ""} {
		if _, err := parseModel(bad); err == nil {
			t.Errorf("parseModel(%q) error = nil, want error", bad)
		}
	}
}

func TestVerdictString(t *testing.T) {
	for v, want := range map[Verdict]string{Sat: "SAT", Unsat: "UNSAT", Unknown: "UNKNOWN"} {
		if got := v.String(); got != want {
			t.Errorf("Verdict(%d).String() = %q, want %q", v, got, want)
		}
	}
}

// fakeMinisat writes a shell script that answers like minisat: it prints
// result to the output file and exits with code.
func fakeMinisat(t *testing.T, result string, code int) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake solver is a shell script")
	}
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not found in PATH")
	}
	bin := filepath.Join(t.TempDir(), "minisat")
	script := "#!/bin/sh\n" +
		"printf '" + strings.ReplaceAll(result, "\n", `\n`) + "' > \"$3\"\n" +
		"exit " + strconv.Itoa(code) + "\n"
	if err := os.WriteFile(bin, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
	return bin
}

func TestRun(t *testing.T) {
	ctx := context.Background()

	bin := fakeMinisat(t, "SAT\n1 2 -3 0\n", exitSat)
	v, model, err := Run(ctx, bin, DefaultCases[0].CNF)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if v != Sat || !reflect.DeepEqual(model, []int{1, 2, -3}) {
		t.Errorf("Run() = %v %v, want SAT [1 2 -3]", v, model)
	}

	bin = fakeMinisat(t, "UNSAT\n", exitUnsat)
	if v, _, err := Run(ctx, bin, DefaultCases[1].CNF); err != nil || v != Unsat {
		t.Errorf("Run() = %v, %v, want UNSAT", v, err)
	}

	bin = fakeMinisat(t, "", 3)
	if _, _, err := Run(ctx, bin, DefaultCases[0].CNF); err == nil {
		t.Error("Run() with an unexpected exit code should fail")
	}

	if _, _, err := Run(ctx, filepath.Join(t.TempDir(), "missing"), DefaultCases[0].CNF); err == nil {
		t.Error("Run() with a missing binary should fail")
	}
}

func TestVerifyDisagreement(t *testing.T) {
	bin := fakeMinisat(t, "UNSAT\n", exitUnsat)
	cases := []Case{DefaultCases[0]} // satisfiable
	err := Verify(context.Background(), bin, cases)
	if err == nil || !strings.Contains(err.Error(), "reference says SAT") {
		t.Errorf("Verify() error = %v, want disagreement", err)
	}
}

func TestVerifyBadModel(t *testing.T) {
	// 1 -2 -3 falsifies "2 3 -1".
	bin := fakeMinisat(t, "SAT\n1 -2 -3 0\n", exitSat)
	err := Verify(context.Background(), bin, []Case{DefaultCases[0]})
	if err == nil || !strings.Contains(err.Error(), "does not satisfy") {
		t.Errorf("Verify() error = %v, want invalid model", err)
	}
}

func TestVerifyRealMinisat(t *testing.T) {
	bin, err := exec.LookPath("minisat")
	if err != nil {
		t.Skip("minisat not found in PATH")
	}
	if err := Verify(context.Background(), bin, DefaultCases); err != nil {
		t.Errorf("Verify() error = %v", err)
	}
}

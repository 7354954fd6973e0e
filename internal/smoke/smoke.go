// Package smoke checks a packaged minisat executable by solving a few small
// CNF instances and comparing the verdicts with a reference solver.
package smoke

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/crillab/gophersat/solver"
	"github.com/qiniu/x/log"
	"github.com/samber/lo"
)

// Verdict is the answer of a SAT solver.
type Verdict int

const (
	Unknown Verdict = iota
	Sat
	Unsat
)

func (v Verdict) String() string {
	switch v {
	case Sat:
		return "SAT"
	case Unsat:
		return "UNSAT"
	default:
		return "UNKNOWN"
	}
}

// minisat exit codes.
const (
	exitSat   = 10
	exitUnsat = 20
)

// Case is a named DIMACS CNF instance.
type Case struct {
	Name string
	CNF  string
}

// DefaultCases mixes small satisfiable and unsatisfiable instances.
var DefaultCases = []Case{
	{Name: "trivial-sat", CNF: "p cnf 3 2\n1 -3 0\n2 3 -1 0\n"},
	{Name: "pigeonhole-2-1", CNF: "p cnf 2 3\n1 0\n2 0\n-1 -2 0\n"},
	{Name: "chain-sat", CNF: "c implication chain\np cnf 4 4\n1 0\n-1 2 0\n-2 3 0\n-3 4 0\n"},
	{Name: "xor-unsat", CNF: "p cnf 2 4\n1 2 0\n-1 -2 0\n1 -2 0\n-1 2 0\n"},
}

// Run solves cnf with the minisat executable at bin. The model, if any, is
// returned as signed literals.
func Run(ctx context.Context, bin, cnf string) (Verdict, []int, error) {
	dir, err := os.MkdirTemp("", "minisat-smoke-*")
	if err != nil {
		return Unknown, nil, err
	}
	defer os.RemoveAll(dir)

	in := filepath.Join(dir, "in.cnf")
	out := filepath.Join(dir, "out.txt")
	if err := os.WriteFile(in, []byte(cnf), 0o644); err != nil {
		return Unknown, nil, err
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, "-verb=0", in, out)
	cmd.Stderr = &stderr
	err = cmd.Run()

	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		return Unknown, nil, fmt.Errorf("run %s: %w", bin, err)
	}
	switch code := cmd.ProcessState.ExitCode(); code {
	case exitSat:
		data, err := os.ReadFile(out)
		if err != nil {
			return Sat, nil, err
		}
		model, err := parseModel(string(data))
		return Sat, model, err
	case exitUnsat:
		return Unsat, nil, nil
	default:
		return Unknown, nil, fmt.Errorf("%s exited with %d: %s", bin, code, strings.TrimSpace(stderr.String()))
	}
}

// parseModel parses the minisat result file: a "SAT" header line followed by
// the model terminated by 0.
func parseModel(output string) ([]int, error) {
	lines := strings.Split(output, "\n")
	if len(lines) < 2 || strings.TrimSpace(lines[0]) != "SAT" {
		return nil, fmt.Errorf("unexpected minisat output: %q", output)
	}
	var parseErr error
	lits := lo.FilterMap(strings.Fields(lines[1]), func(s string, _ int) (int, bool) {
		v, err := strconv.Atoi(s)
		if err != nil {
			parseErr = fmt.Errorf("invalid literal %q in minisat output", s)
			return 0, false
		}
		return v, v != 0
	})
	return lits, parseErr
}

// Reference solves cnf with gophersat.
func Reference(cnf string) (Verdict, error) {
	pb, err := solver.ParseCNF(strings.NewReader(cnf))
	if err != nil {
		return Unknown, err
	}
	switch solver.New(pb).Solve() {
	case solver.Sat:
		return Sat, nil
	case solver.Unsat:
		return Unsat, nil
	default:
		return Unknown, nil
	}
}

// Satisfies reports whether model satisfies cnf. The model is added as unit
// clauses; since minisat models are total, the result is satisfiable iff the
// model satisfies every original clause.
func Satisfies(cnf string, model []int) (bool, error) {
	var b strings.Builder
	b.WriteString(cnf)
	if !strings.HasSuffix(cnf, "\n") {
		b.WriteByte('\n')
	}
	for _, lit := range model {
		fmt.Fprintf(&b, "%d 0\n", lit)
	}
	v, err := Reference(b.String())
	if err != nil {
		return false, err
	}
	return v == Sat, nil
}

// Verify runs every case through bin and the reference solver and fails on
// the first disagreement or invalid model.
func Verify(ctx context.Context, bin string, cases []Case) error {
	for _, c := range cases {
		got, model, err := Run(ctx, bin, c.CNF)
		if err != nil {
			return fmt.Errorf("%s: %w", c.Name, err)
		}
		want, err := Reference(c.CNF)
		if err != nil {
			return fmt.Errorf("%s: reference: %w", c.Name, err)
		}
		if got != want {
			return fmt.Errorf("%s: minisat says %v, reference says %v", c.Name, got, want)
		}
		if got == Sat {
			ok, err := Satisfies(c.CNF, model)
			if err != nil {
				return fmt.Errorf("%s: %w", c.Name, err)
			}
			if !ok {
				return fmt.Errorf("%s: minisat model %v does not satisfy the formula", c.Name, model)
			}
		}
		log.Debug("smoke:", c.Name, got)
	}
	return nil
}

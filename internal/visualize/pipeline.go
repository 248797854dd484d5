package visualize

import (
	"fmt"

	"github.com/mazinbersy/asicflow/internal/flowerrors"
)

// Stage is one named visualization data-preparation step.
type Stage struct {
	Name string
	Run  func() (interface{}, error)
}

// Result is one stage's outcome: the prepared data on success, or why it
// didn't run (spec.md §7 "missing_input" soft failure).
type Result struct {
	Stage        string
	OK           bool
	Skipped      bool
	MissingInput bool
	Error        string
	Data         interface{}
}

func (r Result) String() string {
	switch {
	case r.Skipped:
		return fmt.Sprintf("  - %s: skipped", r.Stage)
	case r.OK:
		return fmt.Sprintf("  + %s: ok", r.Stage)
	case r.MissingInput:
		return fmt.Sprintf("  ! %s: missing input (%s)", r.Stage, r.Error)
	default:
		return fmt.Sprintf("  x %s: %s", r.Stage, r.Error)
	}
}

// RunAll runs every stage not excluded by only/skip, in registration
// order. With strict set, any non-ok, non-skipped result causes RunAll to
// also return a non-nil error after every stage has run (spec.md §6
// "visualize ... --strict").
func RunAll(stages []Stage, only, skip []string, strict bool) ([]Result, error) {
	onlySet := toSet(only)
	skipSet := toSet(skip)

	var results []Result
	var hardFailed, softFailed bool
	for _, s := range stages {
		if len(onlySet) > 0 {
			if _, want := onlySet[s.Name]; !want {
				results = append(results, Result{Stage: s.Name, Skipped: true})
				continue
			}
		}
		if _, drop := skipSet[s.Name]; drop {
			results = append(results, Result{Stage: s.Name, Skipped: true})
			continue
		}

		data, err := s.Run()
		if err == nil {
			results = append(results, Result{Stage: s.Name, OK: true, Data: data})
			continue
		}

		missing := isMissingInput(err)
		if missing {
			softFailed = true
		} else {
			hardFailed = true
		}
		results = append(results, Result{Stage: s.Name, MissingInput: missing, Error: err.Error()})
	}

	if hardFailed {
		return results, fmt.Errorf("visualize: one or more stages hard-failed")
	}
	if strict && softFailed {
		return results, fmt.Errorf("visualize: one or more stages had missing input under --strict")
	}
	return results, nil
}

func isMissingInput(err error) bool {
	switch err.(type) {
	case *flowerrors.MissingInputError, *flowerrors.MissingDataError:
		return true
	default:
		return false
	}
}

func toSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}

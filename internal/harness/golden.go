package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/jeason0813/dblinq2007/internal/ir"
	"github.com/jeason0813/dblinq2007/internal/pieces"
)

// Snapshot returns the canonical JSON of a scenario result: the error
// kind for failed translations, otherwise the result piece and query.
func Snapshot(scenarioName string, result *Result) ([]byte, error) {
	snapshot := ir.IRObject{"scenario": ir.IRString(scenarioName)}
	if result.Translation == nil {
		snapshot["error"] = ir.IRString(result.ErrorKind)
	} else {
		snapshot["result"] = pieces.ToIR(result.Translation.Root)
		snapshot["query"] = pieces.QueryToIR(result.Translation.Query)
	}
	return ir.MarshalCanonical(snapshot)
}

// RunWithGolden executes a scenario and compares its snapshot against a
// golden file stored in testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns the result so callers can also check expectations.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}

	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an already computed result against its golden
// file.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	data, err := Snapshot(scenarioName, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)
	return nil
}

package loader

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/openpsa-mef/loader/internal/loader"
	"github.com/openpsa-mef/loader/internal/merr"
	"github.com/openpsa-mef/loader/internal/model"
	"github.com/openpsa-mef/loader/internal/symtab"
	"github.com/openpsa-mef/loader/internal/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeFile writes content to dir/name and returns the full path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_SimpleFaultTree(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := writeFile(t, dir, "ft.xml", `<?xml version="1.0"?>
<opsa-mef>
  <define-fault-tree name="ft1">
    <define-gate name="top">
      <or>
        <gate name="g1"/>
        <basic-event name="b1"/>
      </or>
    </define-gate>
    <define-gate name="g1">
      <and>
        <basic-event name="b1"/>
        <basic-event name="b2"/>
      </and>
    </define-gate>
    <define-basic-event name="b1">
      <float value="0.001"/>
    </define-basic-event>
    <define-basic-event name="b2">
      <float value="0.002"/>
    </define-basic-event>
  </define-fault-tree>
</opsa-mef>`)

	mdl, err := Load(context.Background(), []string{path}, Options{})
	require.NoError(t, err)
	require.Len(t, mdl.Gates(), 2)
	require.Len(t, mdl.BasicEvents(), 2)

	ft := mdl.FaultTrees()[0]
	top := validator.TopEvents(ft)
	require.Len(t, top, 1)
	assert.Equal(t, "top", top[0].FullName())
}

// TestLoad_DuplicatePublicParameter covers the scenario of a public
// parameter declared twice across two files: the loader must report a
// duplicate-entity error naming the parameter and the offending file.
func TestLoad_DuplicatePublicParameter(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	file1 := writeFile(t, dir, "one.xml", `<?xml version="1.0"?>
<opsa-mef>
  <model-data>
    <define-parameter name="lambda" unit="hours-1">
      <float value="0.01"/>
    </define-parameter>
  </model-data>
</opsa-mef>`)
	file2 := writeFile(t, dir, "two.xml", `<?xml version="1.0"?>
<opsa-mef>
  <model-data>
    <define-parameter name="lambda" unit="hours-1">
      <float value="0.02"/>
    </define-parameter>
  </model-data>
</opsa-mef>`)

	_, err := Load(context.Background(), []string{file1, file2}, Options{})
	require.Error(t, err)
	assert.ErrorContains(t, err, "lambda")
	assert.ErrorContains(t, err, file2)

	var dup *symtab.DuplicateEntityError
	require.ErrorAs(t, err, &dup)
	assert.True(t, errors.Is(err, merr.ErrValidation))
}

// TestLoad_GateCycle covers two gates referencing each other, which must
// be reported as a cycle naming both gate names.
func TestLoad_GateCycle(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := writeFile(t, dir, "ft.xml", `<?xml version="1.0"?>
<opsa-mef>
  <define-fault-tree name="ft1">
    <define-gate name="g1">
      <and>
        <gate name="g2"/>
        <basic-event name="x"/>
      </and>
    </define-gate>
    <define-gate name="g2">
      <or>
        <gate name="g1"/>
        <basic-event name="y"/>
      </or>
    </define-gate>
    <define-basic-event name="x"/>
    <define-basic-event name="y"/>
  </define-fault-tree>
</opsa-mef>`)

	_, err := Load(context.Background(), []string{path}, Options{})
	require.Error(t, err)

	var cycleErr *validator.CycleError
	require.ErrorAs(t, err, &cycleErr)
	assert.Equal(t, "gate", cycleErr.Kind)
	assert.Contains(t, cycleErr.Cycle, "g1")
	assert.Contains(t, cycleErr.Cycle, "g2")
	assert.True(t, errors.Is(err, merr.ErrCycle))
}

// TestLoad_AtLeastArityTooSmall covers an <atleast> formula whose
// threshold exceeds its own argument count.
func TestLoad_AtLeastArityTooSmall(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := writeFile(t, dir, "ft.xml", `<?xml version="1.0"?>
<opsa-mef>
  <define-fault-tree name="ft1">
    <define-gate name="top">
      <atleast min="3">
        <basic-event name="a"/>
        <basic-event name="b"/>
      </atleast>
    </define-gate>
    <define-basic-event name="a"/>
    <define-basic-event name="b"/>
  </define-fault-tree>
</opsa-mef>`)

	_, err := Load(context.Background(), []string{path}, Options{})
	require.Error(t, err)

	var verr *model.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.True(t, errors.Is(err, merr.ErrValidation))
}

// TestLoad_ParameterUnitMismatch covers a parameter defined with one
// unit and referenced elsewhere with an incompatible one.
func TestLoad_ParameterUnitMismatch(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := writeFile(t, dir, "model.xml", `<?xml version="1.0"?>
<opsa-mef>
  <model-data>
    <define-parameter name="p1" unit="hours">
      <float value="10"/>
    </define-parameter>
    <define-basic-event name="b1">
      <parameter name="p1" unit="years"/>
    </define-basic-event>
  </model-data>
</opsa-mef>`)

	_, err := Load(context.Background(), []string{path}, Options{})
	require.Error(t, err)
	assert.ErrorContains(t, err, "hours")
	assert.ErrorContains(t, err, "years")
	assert.True(t, errors.Is(err, merr.ErrValidation))
}

// TestLoad_HistogramBoundariesAndWeights covers a histogram expression
// with a lower bound and two bins, asserting the derived boundary and
// weight slices.
func TestLoad_HistogramBoundariesAndWeights(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := writeFile(t, dir, "model.xml", `<?xml version="1.0"?>
<opsa-mef>
  <model-data>
    <define-parameter name="h1">
      <histogram>
        <float value="0"/>
        <bin>
          <float value="1"/>
          <float value="0.3"/>
        </bin>
        <bin>
          <float value="2"/>
          <float value="0.7"/>
        </bin>
      </histogram>
    </define-parameter>
  </model-data>
</opsa-mef>`)

	mdl, err := Load(context.Background(), []string{path}, Options{})
	require.NoError(t, err)

	p, lookupErr := mdl.GetParameter("h1", "")
	require.NoError(t, lookupErr)
	hist, ok := p.Expression.(*model.HistogramExpression)
	require.True(t, ok)
	assert.Equal(t, []float64{0, 1, 2}, hist.Boundaries())
	assert.Equal(t, []float64{0.3, 0.7}, hist.Weights())
}

// TestLoad_EventTreeForkSharesNamedBranch covers a fork whose two paths
// both resolve to the same named-branch instance.
func TestLoad_EventTreeForkSharesNamedBranch(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := writeFile(t, dir, "et.xml", `<?xml version="1.0"?>
<opsa-mef>
  <define-event-tree name="et1">
    <define-functional-event name="F"/>
    <define-sequence name="seq-end">
      <collect-expression>
        <float value="1"/>
      </collect-expression>
    </define-sequence>
    <define-branch name="B1">
      <sequence name="seq-end"/>
    </define-branch>
    <initial-state>
      <fork functional-event="F">
        <path state="success">
          <branch name="B1"/>
        </path>
        <path state="failure">
          <branch name="B1"/>
        </path>
      </fork>
    </initial-state>
  </define-event-tree>
</opsa-mef>`)

	mdl, err := Load(context.Background(), []string{path}, Options{})
	require.NoError(t, err)

	tree := mdl.EventTrees()[0]
	require.Len(t, tree.Forks, 1)
	fork := tree.Forks[0]
	require.Len(t, fork.Paths, 2)

	successBranch, ok := fork.Paths[0].Branch.Target.(*model.NamedBranch)
	require.True(t, ok)
	failureBranch, ok := fork.Paths[1].Branch.Target.(*model.NamedBranch)
	require.True(t, ok)
	assert.Same(t, successBranch, failureBranch, "both paths must resolve to the same named-branch instance")
}

// TestLoad_DuplicateComponentName covers two sibling components
// declaring the same name under the same fault tree, which must be
// reported as a duplicate rather than silently overwriting the first.
func TestLoad_DuplicateComponentName(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := writeFile(t, dir, "ft.xml", `<?xml version="1.0"?>
<opsa-mef>
  <define-fault-tree name="ft1">
    <define-component name="c1"/>
    <define-component name="c1"/>
  </define-fault-tree>
</opsa-mef>`)

	_, err := Load(context.Background(), []string{path}, Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, merr.ErrValidation))
	assert.ErrorContains(t, err, "c1")
}

// TestLoad_DuplicateCanonicalPaths covers two input arguments that
// resolve to the same file on disk.
// Not run in parallel: it changes the process working directory, which
// would race against other tests resolving their own relative paths.
func TestLoad_DuplicateCanonicalPaths(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.xml", `<?xml version="1.0"?><opsa-mef/>`)
	cwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	defer func() { require.NoError(t, os.Chdir(cwd)) }()

	_, loadErr := Load(context.Background(), []string{"./a.xml", "a.xml"}, Options{})
	require.Error(t, loadErr)

	var dup *loader.DuplicateArgumentError
	require.ErrorAs(t, loadErr, &dup)
	assert.ElementsMatch(t, []string{"./a.xml", "a.xml"}, dup.Paths)
	assert.True(t, errors.Is(loadErr, merr.ErrDuplicateArgument))

	_ = path
}

package catalog_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/novapay/pkg/catalog"
	"github.com/aretw0/novapay/pkg/domain"
	"github.com/aretw0/novapay/pkg/flows"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const doc = `
flows:
  send-money:
    title: Pay Someone
    steps:
      recipient:
        label: Choose payee
        description: Pick someone you paid recently.
      success:
        label: Done
`

func TestLoadAndApply(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	c, err := catalog.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Pay Someone", c.Title(flows.SendMoney))
	assert.Equal(t, flows.Register, c.Title(flows.Register))

	reg, err := flows.Builtin()
	require.NoError(t, err)
	before, err := reg.Get(flows.SendMoney)
	require.NoError(t, err)

	require.NoError(t, c.Apply(reg))

	after, err := reg.Get(flows.SendMoney)
	require.NoError(t, err)
	first, _ := after.Step(0)
	assert.Equal(t, "Choose payee", first.Label)
	assert.Equal(t, "Pick someone you paid recently.", first.Description)
	last, _ := after.Step(3)
	assert.Equal(t, "Done", last.Label)
	assert.True(t, last.Terminal, "behavior is untouched")

	// The original definition is immutable.
	orig, _ := before.Step(0)
	assert.Equal(t, "Recipient", orig.Label)

	review, _ := after.Step(2)
	assert.NotNil(t, review.Action)
}

func TestApply_UnknownFlowOrStep(t *testing.T) {
	reg, err := flows.Builtin()
	require.NoError(t, err)

	c, err := catalog.Parse([]byte("flows:\n  open-fd:\n    title: FD\n"))
	require.NoError(t, err)
	assert.ErrorIs(t, c.Apply(reg), domain.ErrFlowNotFound)

	c, err = catalog.Parse([]byte("flows:\n  send-money:\n    steps:\n      nope:\n        label: X\n"))
	require.NoError(t, err)
	assert.Error(t, c.Apply(reg))
}

func TestParse(t *testing.T) {
	c, err := catalog.Parse(nil)
	require.NoError(t, err)
	assert.Empty(t, c.Flows)

	_, err = catalog.Parse([]byte("flows:\n  send-money:\n    colour: red\n"))
	assert.Error(t, err, "unknown keys are rejected")

	_, err = catalog.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

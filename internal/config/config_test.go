package config_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zkavm/avmc/internal/config"
	"github.com/zkavm/avmc/internal/field"
)

func TestLoadParsesYAML(t *testing.T) {
	doc := `
entry_fn: main
arg_fn: prove
include_paths:
  - ./lib
extension_priorities:
  - ax
  - zk
input:
  - "3"
  - "4"
verbosity: 2
`
	c, err := config.Load(strings.NewReader(doc))
	require.NoError(t, err)
	require.Equal(t, "main", c.EntryFn)
	require.Equal(t, "prove", c.ArgFn)
	require.Equal(t, []string{"./lib"}, c.IncludePaths)
	require.Equal(t, []string{"ax", "zk"}, c.ExtensionPriorities)
	require.Equal(t, uint8(2), c.Verbosity)
}

func TestLoadEmptyReaderYieldsZeroValue(t *testing.T) {
	c, err := config.Load(strings.NewReader(""))
	require.NoError(t, err)
	require.Equal(t, config.Config{}, c)
}

func TestValidateRequiresEntryFn(t *testing.T) {
	c := config.Config{}
	require.Error(t, c.Validate())
}

func TestValidateRejectsDuplicateExtensionPriorities(t *testing.T) {
	c := config.Config{EntryFn: "main", ExtensionPriorities: []string{"ax", "ax"}}
	require.Error(t, c.Validate())
}

func TestValidateAccepts(t *testing.T) {
	c := config.Config{EntryFn: "main", ExtensionPriorities: []string{"ax", "zk"}}
	require.NoError(t, c.Validate())
}

func TestStampRunIDIsNonEmptyAndStable(t *testing.T) {
	c := config.Config{EntryFn: "main"}
	stamped := c.StampRunID()
	require.NotEmpty(t, stamped.RunID)
	require.Empty(t, c.RunID, "StampRunID must not mutate the receiver")
}

func TestParseInput(t *testing.T) {
	f := field.PrimeField{}
	c := config.Config{Input: []string{"3", "4"}}
	vals, err := c.ParseInput(f)
	require.NoError(t, err)
	require.Len(t, vals, 2)
	require.True(t, vals[0].Equal(f.FromUint64(3)))
	require.True(t, vals[1].Equal(f.FromUint64(4)))
}

func TestParseInputRejectsMalformedLiteral(t *testing.T) {
	f := field.PrimeField{}
	c := config.Config{Input: []string{"not-a-number"}}
	_, err := c.ParseInput(f)
	require.Error(t, err)
}

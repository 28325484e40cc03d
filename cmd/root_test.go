package cmd_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/masoudtahsiri/sitemap-extractor/cmd"
)

func TestRootCommand_Version(t *testing.T) {
	root := cmd.NewRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})

	require.NoError(t, root.Execute())
	assert.Equal(t, "sitemap-extractor version "+cmd.Version+"\n", out.String())
}

func TestRootCommand_Subcommands(t *testing.T) {
	root := cmd.NewRootCommand()

	for _, name := range []string{"serve", "extract", "version"} {
		sub, _, err := root.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, sub.Name())
	}

	assert.NotNil(t, root.PersistentFlags().Lookup("config"))
	assert.NotNil(t, root.PersistentFlags().Lookup("debug"))
}

func TestRootCommand_ExtractRequiresURL(t *testing.T) {
	root := cmd.NewRootCommand()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"extract"})

	assert.Error(t, root.Execute())
}

package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(args ...string) error {
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	return root.Execute()
}

func TestExport_RequiresSelection(t *testing.T) {
	err := run("export", "--server", "demo.webuntis.com", "--school", "demo", "--user", "u")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "classes")
}

func TestExport_SelectionsAreExclusive(t *testing.T) {
	err := run("export", "--server", "demo.webuntis.com", "--school", "demo", "--user", "u",
		"--classes", "1", "--rooms", "2")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "none of the others")
}

func TestExport_RequiresServer(t *testing.T) {
	err := run("export", "--school", "demo", "--user", "u", "--rooms", "2")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server")
}

func TestServe_RejectsArgs(t *testing.T) {
	assert.Error(t, run("serve", "extra"))
}

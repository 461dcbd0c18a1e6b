package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintRoutes(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printRoutes(&buf))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, []string{"1", "home", "/", "true"}, strings.Fields(lines[1]))
	assert.Equal(t, []string{"2", "room", "/room/:id", "false"}, strings.Fields(lines[2]))
	assert.Equal(t, []string{"3", "not_found", "*", "false"}, strings.Fields(lines[3]))
}

func TestMatchCommand(t *testing.T) {
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs([]string{"match", "/", "/room/42", "/unknown/path", "/room/"})
	require.NoError(t, rootCmd.Execute())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, []string{"/", "home", "-"}, strings.Fields(lines[1]))
	assert.Equal(t, []string{"/room/42", "room", "id=42"}, strings.Fields(lines[2]))
	assert.Equal(t, []string{"/unknown/path", "not_found", "-"}, strings.Fields(lines[3]))
	assert.Equal(t, []string{"/room/", "not_found", "-"}, strings.Fields(lines[4]))
}

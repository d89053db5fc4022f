package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateCommandHelp(t *testing.T) {
	tests := []struct {
		name           string
		args           []string
		expectedOutput string
	}{
		{
			name:           "migrate command with help",
			args:           []string{"migrate", "--help"},
			expectedOutput: "Manage database migrations",
		},
		{
			name:           "migrate up subcommand",
			args:           []string{"migrate", "up", "--help"},
			expectedOutput: "Apply all pending database migrations",
		},
		{
			name:           "migrate status subcommand",
			args:           []string{"migrate", "status", "--help"},
			expectedOutput: "Display the current status",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output, err := execute(t, nil, tt.args...)
			require.NoError(t, err)
			assert.Contains(t, output, tt.expectedOutput)
		})
	}
}

func TestMigrateCommand(t *testing.T) {
	useTempStorage(t)

	output, err := execute(t, nil, "migrate", "status")
	require.NoError(t, err)
	assert.Contains(t, output, "voices     pending")
	assert.Contains(t, output, "3 pending")

	output, err = execute(t, nil, "migrate", "up", "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, output, "Would create: voices, stories, chunks")

	output, err = execute(t, nil, "migrate", "status")
	require.NoError(t, err)
	assert.Contains(t, output, "3 pending")

	output, err = execute(t, nil, "migrate", "up")
	require.NoError(t, err)
	assert.Contains(t, output, "Migrations applied (3 new table(s))")

	output, err = execute(t, nil, "migrate", "status")
	require.NoError(t, err)
	assert.Contains(t, output, "chunks     applied")
	assert.Contains(t, output, "0 pending")
}

func TestMigrateCommandSubcommands(t *testing.T) {
	migrateCmd, _, err := NewRootCmd().Find([]string{"migrate"})
	require.NoError(t, err)

	var names []string
	for _, child := range migrateCmd.Commands() {
		names = append(names, child.Name())
	}
	assert.ElementsMatch(t, []string{"up", "status"}, names)
}

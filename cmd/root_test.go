package cmd

import (
	"bytes"
	"io"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the root command with args after resetting every flag left
// over from earlier runs
func execute(t *testing.T, stdin io.Reader, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	cmd := NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetIn(stdin)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return buf.String(), err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, child := range cmd.Commands() {
		resetFlags(child)
	}
}

func TestRootCommand(t *testing.T) {
	tests := []struct {
		name           string
		args           []string
		wantErr        bool
		expectedOutput string
	}{
		{
			name:           "root command without args shows help",
			args:           []string{},
			expectedOutput: "Story Teller API",
		},
		{
			name:           "root command with --help",
			args:           []string{"--help"},
			expectedOutput: "Available Commands:",
		},
		{
			name:    "root command with invalid flag",
			args:    []string{"--invalid-flag"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output, err := execute(t, nil, tt.args...)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Contains(t, output, tt.expectedOutput)
		})
	}
}

func TestRootSubcommands(t *testing.T) {
	var names []string
	for _, child := range NewRootCmd().Commands() {
		names = append(names, child.Name())
	}
	assert.Subset(t, names, []string{"serve", "migrate", "segment", "version"})
}

func TestLogFlags(t *testing.T) {
	cmd := NewRootCmd()

	logFlag := cmd.PersistentFlags().Lookup("log-level")
	require.NotNil(t, logFlag)
	assert.Equal(t, "info", logFlag.DefValue)

	jsonFlag := cmd.PersistentFlags().Lookup("json-logs")
	require.NotNil(t, jsonFlag)
	assert.Equal(t, "false", jsonFlag.DefValue)
}

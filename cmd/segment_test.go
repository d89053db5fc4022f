package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const segmentText = "The fox ran. The dog slept. The end came."

func TestSegmentCommand(t *testing.T) {
	file := filepath.Join(t.TempDir(), "story.txt")
	require.NoError(t, os.WriteFile(file, []byte(segmentText), 0644))

	tests := []struct {
		name  string
		stdin string
		args  []string
		want  string
	}{
		{
			name:  "stdin",
			stdin: segmentText,
			args:  []string{"segment", "--chunk-size", "14", "--min-length", "0"},
			want:  "[0] (12) The fox ran.\n[1] (14) The dog slept.\n[2] (13) The end came.\n",
		},
		{
			name: "file",
			args: []string{"segment", file, "--chunk-size", "14", "--min-length", "0"},
			want: "[0] (12) The fox ran.\n[1] (14) The dog slept.\n[2] (13) The end came.\n",
		},
		{
			name:  "dash reads stdin",
			stdin: segmentText,
			args:  []string{"segment", "-", "--chunk-size", "100"},
			want:  "[0] (41) The fox ran. The dog slept. The end came.\n",
		},
		{
			name:  "blank text",
			stdin: "   \n\t ",
			args:  []string{"segment"},
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output, err := execute(t, strings.NewReader(tt.stdin), tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, output)
		})
	}
}

func TestSegmentCommandJSON(t *testing.T) {
	output, err := execute(t, strings.NewReader(segmentText), "segment", "--chunk-size", "14", "--min-length", "0", "--json")
	require.NoError(t, err)

	var chunks []segmentOutput
	require.NoError(t, json.Unmarshal([]byte(output), &chunks))
	require.Len(t, chunks, 3)
	for i, chunk := range chunks {
		assert.Equal(t, i, chunk.Index)
		assert.Equal(t, len([]rune(chunk.Text)), chunk.Length)
		assert.LessOrEqual(t, chunk.Length, 14)
	}
	assert.Equal(t, "The dog slept.", chunks[1].Text)
}

func TestSegmentCommandErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "missing file", args: []string{"segment", filepath.Join(t.TempDir(), "missing.txt")}},
		{name: "zero chunk size", args: []string{"segment", "--chunk-size", "0"}},
		{name: "too many args", args: []string{"segment", "a.txt", "b.txt"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, strings.NewReader(segmentText), tt.args...)
			assert.Error(t, err)
		})
	}
}

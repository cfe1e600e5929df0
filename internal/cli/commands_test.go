package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// Subcommand error handling
// ---------------------------------------------------------------------------

func TestCommands_RequireInputs(t *testing.T) {
	for _, sub := range []string{"convert", "inspect", "validate", "diff", "watch"} {
		t.Run(sub, func(t *testing.T) {
			_, _, err := executeCommand(sub)
			require.Error(t, err)

			var exitErr *ExitError
			require.ErrorAs(t, err, &exitErr)
			assert.Equal(t, ExitUsage, exitErr.Code)
		})
	}
}

func TestCommands_RejectPositionalArgs(t *testing.T) {
	for _, sub := range []string{"convert", "inspect", "validate", "diff", "watch"} {
		t.Run(sub, func(t *testing.T) {
			_, _, err := executeCommand(sub, "views.xml")
			require.Error(t, err)
		})
	}
}

// ---------------------------------------------------------------------------
// Help text
// ---------------------------------------------------------------------------

func TestConvert_Help(t *testing.T) {
	stdout, _, err := executeCommand("convert", "--help")
	require.NoError(t, err)
	assert.Contains(t, stdout, "--output-dir")
	assert.Contains(t, stdout, "--dry-run")
}

func TestInspect_Help(t *testing.T) {
	stdout, _, err := executeCommand("inspect", "--help")
	require.NoError(t, err)
	assert.Contains(t, stdout, "--format")
}

// ---------------------------------------------------------------------------
// Completion command
// ---------------------------------------------------------------------------

func TestCompletion_Shells(t *testing.T) {
	for shell, marker := range map[string]string{
		"bash":       "bash completion",
		"zsh":        "#compdef odoo2mod",
		"fish":       "complete -c odoo2mod",
		"powershell": "Register-ArgumentCompleter",
	} {
		t.Run(shell, func(t *testing.T) {
			stdout, _, err := executeCommand("completion", shell)
			require.NoError(t, err)
			assert.Contains(t, stdout, marker)
		})
	}
}

func TestCompletion_InvalidArgs(t *testing.T) {
	_, _, err := executeCommand("completion", "invalid")
	require.Error(t, err)

	_, _, err = executeCommand("completion")
	require.Error(t, err)
}

func TestCompletion_FlagValues(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want []string
	}{
		{
			name: "inspect format",
			args: []string{"__complete", "inspect", "--format", ""},
			want: []string{"table", "json", "yaml"},
		},
		{
			name: "log format",
			args: []string{"__complete", "convert", "--log-format", ""},
			want: []string{"text", "json", "pretty"},
		},
		{
			name: "input documents are xml",
			args: []string{"__complete", "convert", "--views", ""},
			want: []string{"xml"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, _, err := executeCommand(tt.args...)
			require.NoError(t, err)

			for _, w := range tt.want {
				assert.Contains(t, stdout, w+"\n")
			}
		})
	}
}

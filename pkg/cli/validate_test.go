package cli_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/actionboard/pkg/cli"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "board.toml")
	gt.NoError(t, os.WriteFile(configPath, []byte(content), 0o600)).Required()
	return configPath
}

func TestRun_ValidateCommand_ValidConfig(t *testing.T) {
	configPath := writeConfig(t, `
[board]
initial = "BACKLOG"

[[column]]
id = "BACKLOG"
name = "Backlog"
transitions = ["DOING"]

[[column]]
id = "DOING"
name = "Doing"

[[workspace]]
id = "acme"
name = "Acme Inc."
`)

	// Run validate command with only config (no board check)
	err := cli.Run(context.Background(), []string{"actionboard", "validate", "--config", configPath}, "test")
	gt.NoError(t, err)
}

func TestRun_ValidateCommand_DefaultBoard(t *testing.T) {
	err := cli.Run(context.Background(), []string{"actionboard", "validate"}, "test")
	gt.NoError(t, err)
}

func TestRun_ValidateCommand_InvalidConfig(t *testing.T) {
	testCases := map[string]string{
		"undeclared transition target": `
[[column]]
id = "TODO"
name = "To Do"
transitions = ["ARCHIVED"]
`,
		"lowercase column ID": `
[[column]]
id = "todo"
name = "To Do"
`,
		"duplicate column": `
[[column]]
id = "TODO"
name = "To Do"

[[column]]
id = "TODO"
name = "Again"
`,
		"duplicate workspace": `
[[workspace]]
id = "acme"

[[workspace]]
id = "acme"
`,
	}

	for name, content := range testCases {
		t.Run(name, func(t *testing.T) {
			configPath := writeConfig(t, content)
			err := cli.Run(context.Background(), []string{"actionboard", "validate", "--config", configPath}, "test")
			gt.Value(t, err).NotNil()
		})
	}
}

func TestRun_ValidateCommand_MissingConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "nonexistent.toml")

	err := cli.Run(context.Background(), []string{"actionboard", "validate", "--config", configPath}, "test")
	gt.Value(t, err).NotNil()
}

func TestRun_ValidateCommand_BoardCheckWithMemory(t *testing.T) {
	// Empty memory repository has no drift
	err := cli.Run(context.Background(), []string{
		"actionboard", "validate",
		"--check-board", "acme/platform",
		"--repository-backend", "memory",
	}, "test")
	gt.NoError(t, err)
}

func TestRun_ValidateCommand_BadBoardTarget(t *testing.T) {
	err := cli.Run(context.Background(), []string{
		"actionboard", "validate",
		"--check-board", "acme",
		"--repository-backend", "memory",
	}, "test")
	gt.Value(t, err).NotNil()
}

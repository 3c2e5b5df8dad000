package synth

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"morning-brief/internal/config"
)

// CommandEngine runs an external text-to-speech program. Arguments may contain the
// placeholders {text}, {text_file} and {output}.
type CommandEngine struct {
	name    string
	command string
	args    []string
}

// NewCommandEngine builds an engine from its configuration.
func NewCommandEngine(cfg config.Engine) *CommandEngine {
	name := strings.TrimSpace(cfg.Name)
	if name == "" {
		name = cfg.Command
	}
	return &CommandEngine{name: name, command: cfg.Command, args: append([]string(nil), cfg.Args...)}
}

// EnginesFromConfig builds the command engines in configuration order.
func EnginesFromConfig(cfgs []config.Engine) []Engine {
	engines := make([]Engine, 0, len(cfgs))
	for _, c := range cfgs {
		engines = append(engines, NewCommandEngine(c))
	}
	return engines
}

// Name returns the configured engine name.
func (e *CommandEngine) Name() string {
	return e.name
}

// Synthesize runs the command. The script is always written to a temporary file so
// {text_file} can be used by programs that read from disk.
func (e *CommandEngine) Synthesize(ctx context.Context, text, outPath string) error {
	textFile, err := os.CreateTemp("", "morning-brief-*.txt")
	if err != nil {
		return fmt.Errorf("create script file: %w", err)
	}
	defer os.Remove(textFile.Name())
	if _, err := textFile.WriteString(text); err != nil {
		textFile.Close()
		return fmt.Errorf("write script file: %w", err)
	}
	if err := textFile.Close(); err != nil {
		return fmt.Errorf("close script file: %w", err)
	}

	replacer := strings.NewReplacer("{text}", text, "{text_file}", textFile.Name(), "{output}", outPath)
	args := make([]string, len(e.args))
	for i, arg := range e.args {
		args[i] = replacer.Replace(arg)
	}

	cmd := exec.CommandContext(ctx, e.command, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s: %w: %s", e.name, err, tail(strings.TrimSpace(string(output)), 400))
	}
	return nil
}

func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return "…" + s[len(s)-n:]
}

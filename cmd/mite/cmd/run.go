package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mitescript/mite/pkg/mite"
	"github.com/spf13/cobra"
)

const defaultOpLimit = 1_000_000

var (
	limitFlag           uint64
	unlimitedFlag       bool
	sandboxFlag         string
	allowReadFlag       bool
	allowWriteFlag      bool
	allowDeleteFlag     bool
	unsafeNoSandboxFlag bool
)

var runCmd = &cobra.Command{
	Use:   "run <file>",
	Short: "Run a Mite script",
	Long: `Execute a Mite script file, resolving "import" lines first.

Examples:
  mite run script.mite
  mite run --unlimited script.mite
  mite run --sandbox ./data --allow-read --allow-write script.mite`,
	Args: cobra.ExactArgs(1),
	RunE: runScript,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().Uint64Var(&limitFlag, "limit", 0, "max instruction count (overrides MITE_MAX_OPS)")
	runCmd.Flags().BoolVar(&unlimitedFlag, "unlimited", false, "disable the execution safety limit")
	runCmd.Flags().StringVar(&sandboxFlag, "sandbox", "", "root directory the io static module resolves paths against")
	runCmd.Flags().BoolVar(&allowReadFlag, "allow-read", false, "enable file reading")
	runCmd.Flags().BoolVar(&allowWriteFlag, "allow-write", false, "enable file writing")
	runCmd.Flags().BoolVar(&allowDeleteFlag, "allow-delete", false, "enable file deletion")
	runCmd.Flags().BoolVar(&unsafeNoSandboxFlag, "unsafe-no-sandbox", false, "DISABLE SANDBOX (allow access to the host filesystem)")
}

func runScript(cmd *cobra.Command, args []string) error {
	scriptPath := args[0]

	opts := []mite.Option{
		mite.WithOutput(os.Stdout),
		mite.WithHost(consoleHost{}),
		mite.WithSandbox(sandboxFlag),
		mite.WithPermissions(allowReadFlag, allowWriteFlag, allowDeleteFlag, unsafeNoSandboxFlag),
	}
	if unlimitedFlag {
		opts = append(opts, mite.WithUnlimitedBudget())
	} else {
		opts = append(opts, mite.WithBudget(resolveLimit()))
	}

	rt, err := mite.NewFromFile(scriptPath, opts...)
	if err != nil {
		return fmt.Errorf("parse error: %w", err)
	}

	if err := rt.Run(); err != nil {
		if mite.IsBudgetExceeded(err) && verbose {
			fmt.Fprintln(os.Stderr, "execution stopped by instruction budget")
		}
		return fmt.Errorf("runtime error: %w", err)
	}
	return nil
}

// resolveLimit mirrors the original CLI's precedence: an explicit --limit
// flag wins, then MITE_MAX_OPS, then the built-in default.
func resolveLimit() uint64 {
	if limitFlag > 0 {
		return limitFlag
	}
	if v := os.Getenv("MITE_MAX_OPS"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			return n
		}
	}
	return defaultOpLimit
}

// consoleHost is the CLI's Host: print writes a line to stdout, input
// prompts on stdout and reads a trimmed line from stdin, and command
// implements the two built-in host commands the original console
// handler supports.
type consoleHost struct{}

func (consoleHost) Print(text string) {
	fmt.Println(text)
}

func (consoleHost) Input(name string) (string, error) {
	fmt.Print("> ")
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", nil
	}
	return strings.TrimSpace(line), nil
}

func (consoleHost) Command(name string, args []string) (bool, error) {
	switch name {
	case "wait":
		ms := uint64(0)
		if len(args) > 0 {
			if n, err := strconv.ParseUint(args[0], 10, 64); err == nil {
				ms = n
			}
		}
		time.Sleep(time.Duration(ms) * time.Millisecond)
		return true, nil
	case "beep":
		fmt.Println("[BEEP]")
		return true, nil
	default:
		return false, nil
	}
}

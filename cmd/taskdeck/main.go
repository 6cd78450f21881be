package main

import (
	"os"
	"strconv"
	"strings"

	"taskdeck/internal/cli"
)

func isTaskID(s string) bool {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	id, err := strconv.ParseInt(s, 10, 64)
	return err == nil && id > 0
}

func rewriteDirectTaskLookupArgs(argv []string) []string {
	// Convenience: `taskdeck <id>` works like `taskdeck tasks show <id>`.
	//
	// Cobra treats the first non-flag token as a subcommand, so we rewrite argv before parsing.
	//
	// Users often pass persistent flags first (e.g. `taskdeck --api ... 12`), so we must find
	// the first positional token, not just argv[1].
	if len(argv) < 2 {
		return argv
	}

	// Minimal persistent-flag awareness. Unknown flags are skipped without skipping a value
	// so the task id is never consumed by accident.
	valueFlags := map[string]bool{
		"--api":       true,
		"--format":    true,
		"--lang":      true,
		"--log-level": true,
	}
	boolFlags := map[string]bool{
		"--pretty": true,
		"--mock":   true,
	}

	// rewrite inserts the subcommand before argv[from:]; argv[skip:from] is
	// dropped so a "--" does not turn the subcommand into positional args.
	rewrite := func(skip, from int) []string {
		out := make([]string, 0, len(argv)+2)
		out = append(out, argv[:skip]...)
		out = append(out, "tasks", "show")
		out = append(out, argv[from:]...)
		return out
	}

	for i := 1; i < len(argv); i++ {
		a := strings.TrimSpace(argv[i])
		if a == "" {
			continue
		}
		if a == "--" {
			// Stop flag parsing; next token (if any) is the first positional.
			if i+1 < len(argv) && isTaskID(argv[i+1]) {
				return rewrite(i, i+1)
			}
			return argv
		}

		if strings.HasPrefix(a, "-") {
			if strings.Contains(a, "=") || boolFlags[a] {
				continue
			}
			if valueFlags[a] {
				i++ // skip value if present
			}
			continue
		}

		// First positional token.
		if isTaskID(a) {
			return rewrite(i, i)
		}
		return argv
	}

	return argv
}

func main() {
	os.Args = rewriteDirectTaskLookupArgs(os.Args)

	cmd := cli.NewRootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(cli.ExitCode(err))
	}
}

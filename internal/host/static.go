package host

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/mitescript/mite/internal/value"
)

// CallStatic routes a "module.method(args)" FunctionCall to its static
// module handler (spec §4.10). The os module has no corresponding CLI
// permission flag at all — it stays permanently disabled, matching the
// original's default feature-gate-off behavior but with no exposed way
// to turn it on (see DESIGN.md).
func CallStatic(module, method string, args []value.Value, sandboxRoot string, perms Permissions) (value.Value, error) {
	switch module {
	case "math":
		return callMath(method, args)
	case "rand":
		return callRand(method, args)
	case "json":
		return callJSON(method, args)
	case "os":
		return value.Value{}, fmt.Errorf("security violation: 'os' module is disabled")
	case "io":
		return callIO(method, args, sandboxRoot, perms)
	default:
		return value.Value{}, fmt.Errorf("unknown static module %q", module)
	}
}

// execCommand is unused by CallStatic directly (the os module stays
// disabled) but is kept as the grounded shape for the exec static
// command the original gates behind its os_access feature, for a future
// explicitly-opted-in build.
func execCommand(commandLine string) (int32, error) {
	fields := strings.Fields(commandLine)
	if len(fields) == 0 {
		return -1, fmt.Errorf("empty command")
	}
	cmd := exec.Command(fields[0], fields[1:]...)
	if err := cmd.Run(); err != nil {
		return -1, nil
	}
	return 0, nil
}

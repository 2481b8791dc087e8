package export

import (
	"fmt"
	"os/exec"
	"runtime"
)

// OpenerCommand returns the desktop opener and its leading arguments for goos.
func OpenerCommand(goos string) (string, []string) {
	switch goos {
	case "darwin":
		return "open", nil
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler"}
	default:
		return "xdg-open", nil
	}
}

// Open hands path to the desktop opener (a browser for reports, a spreadsheet
// application for workbooks). It returns once the opener has started; the
// opener outlives the command.
func Open(path string) error {
	name, args := OpenerCommand(runtime.GOOS)
	if _, err := exec.LookPath(name); err != nil {
		return fmt.Errorf("open %s: %s not found: %w", path, name, err)
	}
	cmd := exec.Command(name, append(args, path)...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	go func() { _ = cmd.Wait() }()
	return nil
}

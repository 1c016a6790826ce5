//go:build !windows

package process

import "os/exec"

// ShellCommand runs line through the POSIX shell inside dir.
func ShellCommand(line, dir string) Command {
	return Command{Name: "sh", Args: []string{"-c", line}, Dir: dir}
}

func applyShell(*exec.Cmd, Command) {}

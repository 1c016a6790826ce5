//go:build windows

package process

import (
	"os/exec"
	"syscall"
)

// ShellCommand runs line through cmd.exe inside dir.
func ShellCommand(line, dir string) Command {
	return Command{Name: "cmd", Args: []string{"/S", "/C", line}, Dir: dir, shell: true}
}

// applyShell hands the line to cmd.exe verbatim. The default argument
// escaping turns embedded quotes into \" which cmd.exe does not parse.
func applyShell(cmd *exec.Cmd, c Command) {
	if !c.shell || len(c.Args) == 0 {
		return
	}
	cmd.SysProcAttr = &syscall.SysProcAttr{CmdLine: `cmd /S /C "` + c.Args[len(c.Args)-1] + `"`}
}

package command

import (
	"fmt"

	"github.com/sasha-s/go-deadlock"
)

// CommandAsDifferentUser helps to redefine commands so that they are run as a different user or with more privileges.
type CommandAsDifferentUser struct {
	mu deadlock.RWMutex
	// changeUserCmd describes the command to use to execute any command as a different user
	// e.g. it can be set as "sudo" to run commands as `root` or as "pkexec" to raise a GUI password prompt
	changeUserCmd []string
}

// Redefine redefines a command so that it will be run as a different user.
func (c *CommandAsDifferentUser) Redefine(cmd string, args ...string) (cmdName string, cmdArgs []string) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	newArgs := []string{cmd}
	newArgs = append(newArgs, args...)
	cmdName, cmdArgs = c.redefineCommand(newArgs...)
	return
}

func (c *CommandAsDifferentUser) redefineCommand(args ...string) (cmdName string, cmdArgs []string) {
	if len(c.changeUserCmd) > 0 {
		cmdName = c.changeUserCmd[0]
		cmdArgs = append(cmdArgs, c.changeUserCmd[1:]...)
		cmdArgs = append(cmdArgs, args...)
	} else {
		cmdName = args[0]
		cmdArgs = append(cmdArgs, args[1:]...)
	}
	return
}

// RedefineInShellForm returns the new command defined in shell form.
func (c *CommandAsDifferentUser) RedefineInShellForm(cmd string, args ...string) string {
	ncmd, nargs := c.Redefine(cmd, args...)
	return AsShellForm(ncmd, nargs...)
}

// NewCommandAsDifferentUser defines a command wrapper which helps to redefine commands so that they are run as a different user.
// e.g.
//   - switchUserCmd="sudo" to run commands as `root`
//   - switchUserCmd="su", "tom" if `tom` has enough privileges to run the command
func NewCommandAsDifferentUser(switchUserCmd ...string) *CommandAsDifferentUser {
	return &CommandAsDifferentUser{changeUserCmd: switchUserCmd}
}

// Sudo will call commands with `sudo` (for Unix only).
func Sudo() *CommandAsDifferentUser {
	return NewCommandAsDifferentUser("sudo")
}

// Su will run commands as the user username using [su](https://www.unix.com/man-page/posix/1/su/) (for Unix only).
func Su(username string) *CommandAsDifferentUser {
	return NewCommandAsDifferentUser("su", username)
}

// Me will run the commands without switching user. It is a no operation wrapper.
func Me() *CommandAsDifferentUser {
	return NewCommandAsDifferentUser()
}

// Pkexec will call commands with [pkexec](https://www.freedesktop.org/software/polkit/docs/latest/pkexec.1.html)
// which raises the polkit authentication agent, i.e. a graphical password prompt on desktop systems (for Linux only).
func Pkexec() *CommandAsDifferentUser {
	return NewCommandAsDifferentUser("pkexec")
}

// OsascriptAdministrator runs a shell command line with administrator privileges through the macOS
// authorisation dialog (for macOS only). The command must be provided in shell form as a single argument.
func OsascriptAdministrator(shellFormCmd string) (string, []string) {
	return "osascript", []string{"-e", fmt.Sprintf("do shell script %q with administrator privileges", shellFormCmd)}
}

// RunAs will run commands as the user username using [runas](https://learn.microsoft.com/en-us/previous-versions/windows/it-pro/windows-server-2012-r2-and-2012/cc771525%28v=ws.11%29) (for Windows only).
func RunAs(username string) *CommandAsDifferentUser {
	return NewCommandAsDifferentUser("runas", fmt.Sprintf("/user:%v", username))
}

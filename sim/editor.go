package sim

import (
	"errors"
	"fmt"
	"os/exec"

	"github.com/lixenwraith/vi-danmaku/core"
)

// ExecLauncher starts command with the pattern path appended, detached from the terminal
// An empty command returns nil, the author edits in another window
func ExecLauncher(command []string) Launcher {
	if len(command) == 0 {
		return nil
	}
	return func(path string) error {
		if path == "" {
			return errors.New("no file to edit")
		}
		args := append(append([]string(nil), command[1:]...), path)
		cmd := exec.Command(command[0], args...)
		if err := cmd.Start(); err != nil {
			return fmt.Errorf("starting %s: %w", command[0], err)
		}
		log.Infof("editor started: %s (pid %d)", cmd.String(), cmd.Process.Pid)

		core.Go(func() {
			if err := cmd.Wait(); err != nil {
				log.Warningf("editor exited: %s", err)
			}
		})
		return nil
	}
}

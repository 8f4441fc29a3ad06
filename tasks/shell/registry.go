package shell

import (
	"fmt"
	"strings"

	"newtown/kernel/task"
)

// cmdFunc runs a command. A command that has to wait returns a future; the
// shell polls it to completion before showing the next prompt.
type cmdFunc func(s *Task, args []string) task.Future

type command struct {
	Name  string
	Usage string
	Desc  string
	Run   cmdFunc
}

type registry struct {
	commands map[string]command
	order    []string
}

func newRegistry() *registry {
	return &registry{commands: make(map[string]command)}
}

func (r *registry) register(cmd command) error {
	cmd.Name = strings.TrimSpace(cmd.Name)
	if cmd.Name == "" {
		return fmt.Errorf("shell registry: empty command name")
	}
	if cmd.Run == nil {
		return fmt.Errorf("shell registry: %q has no handler", cmd.Name)
	}
	if _, ok := r.commands[cmd.Name]; ok {
		return fmt.Errorf("shell registry: duplicate command %q", cmd.Name)
	}
	if cmd.Usage == "" {
		cmd.Usage = cmd.Name
	}
	r.commands[cmd.Name] = cmd
	r.order = append(r.order, cmd.Name)
	return nil
}

func (r *registry) resolve(name string) (command, bool) {
	cmd, ok := r.commands[name]
	return cmd, ok
}

// list returns the commands in registration order.
func (r *registry) list() []command {
	out := make([]command, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.commands[name])
	}
	return out
}

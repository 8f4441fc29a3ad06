package shell

import (
	"runtime"
	"strconv"
	"strings"

	"newtown/hal"
	"newtown/internal/buildinfo"
	"newtown/kernel"
	"newtown/kernel/task"
	"newtown/kernel/tick"
	"newtown/tasks/snake"
)

func builtins() []command {
	return []command{
		{Name: "help", Desc: "Show this help message", Run: cmdHelp},
		{Name: "echo", Usage: "echo <txt>", Desc: "Print back text", Run: cmdEcho},
		{Name: "clear", Desc: "Clear the screen", Run: cmdClear},
		{Name: "shutdown", Desc: "Power off the machine", Run: cmdShutdown},
		{Name: "heap", Desc: "Show heap memory info", Run: cmdHeap},
		{Name: "alloc_test", Desc: "Test heap allocation", Run: cmdAllocTest},
		{Name: "snake", Desc: "Play Snake game!", Run: cmdSnake},
		{Name: "panic", Desc: "Trigger a kernel panic", Run: cmdPanic},
		{Name: "ps", Desc: "List active tasks", Run: cmdPs},
		{Name: "kill", Usage: "kill <id>", Desc: "Request a task to stop", Run: cmdKill},
		{Name: "sleep", Usage: "sleep <n>", Desc: "Sleep for n timer ticks", Run: cmdSleep},
		{Name: "ticks", Desc: "Show the timer tick counter", Run: cmdTicks},
		{Name: "uname", Desc: "Show system information", Run: cmdUname},
	}
}

func (s *Task) execute(line string) {
	args := strings.Fields(line)
	if len(args) == 0 {
		return
	}
	s.cfg.Log.Debug().Str("command", args[0]).Log("shell command")

	cmd, ok := s.cmds.resolve(args[0])
	if !ok {
		s.printf("Unknown command: '%s'\n", args[0])
		s.println("Type 'help' to list commands.")
		return
	}
	s.running = cmd.Run(s, args[1:])
}

func cmdHelp(s *Task, _ []string) task.Future {
	s.println("Available commands:")
	for _, cmd := range s.cmds.list() {
		s.printf("  %-10s - %s\n", cmd.Usage, cmd.Desc)
	}
	return nil
}

func cmdEcho(s *Task, args []string) task.Future {
	s.println(strings.Join(args, " "))
	return nil
}

func cmdClear(s *Task, _ []string) task.Future {
	s.w.ClearScreen()
	return nil
}

func cmdShutdown(s *Task, _ []string) task.Future {
	s.println("Shutting down...")
	s.cfg.Log.Notice().Log("shutdown requested")
	if s.cfg.Ports != nil {
		s.cfg.Ports.WritePort32(hal.PortDebugExit, hal.ExitSuccess)
	}
	return nil
}

func cmdHeap(s *Task, _ []string) task.Future {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	s.printf("Heap In Use: %d bytes\n", ms.HeapInuse)
	s.printf("Heap Size:   %d bytes\n", ms.HeapSys)
	s.printf("Objects:     %d\n", ms.HeapObjects)
	s.printf("GC Cycles:   %d\n", ms.NumGC)
	return nil
}

func cmdAllocTest(s *Task, _ []string) task.Future {
	s.println("Allocating vector...")
	var vec []int
	for i := 0; i < 1000; i++ {
		vec = append(vec, i)
	}
	s.printf("Vector allocated at %p, size: %d\n", vec, len(vec))
	s.printf("Testing value at index 500: %d\n", vec[500])
	s.println("Dropping vector (freeing memory)...")
	return nil
}

func cmdSnake(s *Task, _ []string) task.Future {
	s.println("Starting Snake Game... (Press 'q' or Enter to exit)")
	return snake.New(s.w, s.cfg.Ticks, s.cfg.Keys)
}

func cmdPanic(_ *Task, _ []string) task.Future {
	panic(kernel.Errorf("shell", "Manual panic triggered by user!"))
}

func cmdPs(s *Task, _ []string) task.Future {
	tasks := s.cfg.Registry.Snapshot()
	if len(tasks) == 0 {
		s.println("No active tasks.")
		return nil
	}
	s.println("ID   STATE          POLLS NAME")
	for _, t := range tasks {
		s.printf("%2d   %-13s %5d %s\n", uint64(t.ID), t.State, t.PollCount, t.Name)
	}
	return nil
}

func cmdKill(s *Task, args []string) task.Future {
	if len(args) == 0 {
		s.println("Usage: kill <task_id>")
		return nil
	}
	n, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil {
		s.printf("Invalid task id: '%s'\n", args[0])
		return nil
	}
	id := task.ID(n)
	switch s.cfg.Registry.RequestKill(id) {
	case task.Queued:
		s.cfg.Log.Info().Uint64("task", n).Log("kill requested")
		s.printf("Kill requested for task %d.\n", n)
	case task.AlreadyQueued:
		s.printf("Task %d is already waiting to be killed.\n", n)
	case task.NotFound:
		s.printf("Task %d not found.\n", n)
	}
	return nil
}

func cmdSleep(s *Task, args []string) task.Future {
	if len(args) == 0 {
		s.println("Usage: sleep <ticks>")
		return nil
	}
	n, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil {
		s.printf("Invalid tick count: '%s'\n", args[0])
		return nil
	}
	if n == 0 {
		s.println("Ticks must be > 0.")
		return nil
	}
	s.printf("Sleeping for %d ticks...\n", n)
	s.done = func() { s.println("Awake.") }
	return tick.NewSleep(s.cfg.Ticks, n)
}

func cmdTicks(s *Task, _ []string) task.Future {
	s.printf("Ticks: %d\n", s.cfg.Ticks.Now())
	return nil
}

func cmdUname(s *Task, _ []string) task.Future {
	s.println(buildinfo.Uname())
	s.printf("Boot ID: %s\n", s.cfg.BootID)
	return nil
}

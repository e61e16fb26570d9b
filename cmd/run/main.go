// Command run is the taskbox dispatcher: it maps a task name to one
// executable unit in the task collection and runs it, passing the unit's
// exit status through to the scheduler.
//
//	run <task-name> [task-args...]
//	run -list
//
// Exit codes: the task unit's own code on execution; 127 when the name
// resolves to nothing; 2 on usage errors; 1 on dispatcher-side failures.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"taskbox/internal/config"
	"taskbox/internal/dispatch"
	"taskbox/internal/schedule"
	"taskbox/pkg/logx"
)

const exitNotFound = 127

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(argv []string) int {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	var (
		cfgPath string
		list    bool
	)
	fs.StringVar(&cfgPath, "config", "", "path to config yaml (default: config.yaml next to the dispatcher)")
	fs.BoolVar(&list, "list", false, "print the task registry and exit")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "usage: run [-config path] [-list] <task-name> [task-args...]\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(argv); err != nil {
		return 2
	}

	exe, err := os.Executable()
	if err != nil {
		fmt.Fprintln(os.Stderr, "fatal: cannot locate dispatcher binary:", err)
		return 1
	}
	exeDir := filepath.Dir(exe)

	// One .env next to the dispatcher serves dispatcher and task units alike
	// (the child inherits the environment and starts in exeDir).
	_ = godotenv.Load(filepath.Join(exeDir, ".env"))

	if cfgPath == "" {
		cfgPath = filepath.Join(exeDir, "config.yaml")
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		return 1
	}

	log, closeLog, err := logx.New(logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.ConsoleEnabled(),
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
		Journal: logx.JournalConfig{
			Enabled:  cfg.Logging.Journal.Enabled,
			MinLevel: cfg.Logging.Journal.MinLevel,
		},
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		return 1
	}
	defer closeLog()

	root := cfg.Tasks.Root
	if root == "" {
		root = exeDir
	}
	reg, err := dispatch.Scan(root, cfg.Tasks.EntryPoint, filepath.Base(exe))
	if err != nil {
		log.Error("task registry scan failed", logx.Err(err))
		return 1
	}

	if list {
		printRegistry(reg, cfg.Schedules)
		return 0
	}

	if fs.NArg() == 0 {
		fs.Usage()
		return 2
	}
	name := fs.Arg(0)
	taskArgs := fs.Args()[1:]

	unit, err := reg.Resolve(name)
	if err != nil {
		if errors.Is(err, dispatch.ErrTaskNotFound) {
			log.Error("task not found", logx.String("task", name), logx.String("root", root))
			return exitNotFound
		}
		log.Error("task resolution failed", logx.Err(err))
		return 1
	}

	log.Debug("dispatching task",
		logx.String("task", unit.Name),
		logx.String("kind", unit.Kind.String()),
		logx.String("path", unit.Path),
		logx.Int("args", len(taskArgs)),
	)

	start := time.Now()
	code, err := dispatch.Execute(context.Background(), unit, taskArgs, dispatch.Options{Dir: exeDir})
	if err != nil {
		log.Error("task failed to start", logx.String("task", unit.Name), logx.Err(err))
		return 1
	}
	if code != 0 {
		log.Warn("task exited non-zero",
			logx.String("task", unit.Name),
			logx.Int("exit_code", code),
			logx.Duration("took", time.Since(start)),
		)
	} else {
		log.Info("task completed",
			logx.String("task", unit.Name),
			logx.Duration("took", time.Since(start)),
		)
	}
	return code
}

func printRegistry(reg *dispatch.Registry, schedules map[string]string) {
	now := time.Now()
	for _, u := range reg.Units() {
		line := fmt.Sprintf("%-20s %-7s %s", u.Name, u.Kind, u.Path)
		if raw, ok := schedules[u.Name]; ok {
			if spec, err := schedule.Parse(raw); err != nil {
				line += fmt.Sprintf("  [schedule %q: %v]", raw, err)
			} else {
				line += fmt.Sprintf("  [%s, next %s]", spec, spec.Next(now).Format("2006-01-02 15:04"))
			}
		}
		fmt.Println(line)
	}
}

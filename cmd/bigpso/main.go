// Command bigpso drives the arbitrary-precision particle-swarm engine
// from the command line: starting, resuming, and supervising long-running
// swarms backed by `<prefix>.*` filesystem artifacts.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/shiblon/bigpso/config"
	"github.com/shiblon/bigpso/engine"
	"github.com/shiblon/bigpso/nursery"
	"github.com/shiblon/bigpso/strategy"
)

const (
	version       = "1.0.0"
	bignumVersion = "math/big (Go standard library), arbitrary precision via big.Float"
)

func main() {
	versionFlag := flag.Bool("version", false, "print the engine version and exit")
	bignumVersionFlag := flag.Bool("bignumversion", false, "print the arbitrary-precision backend in use and exit")
	flag.Parse()

	if *versionFlag {
		fmt.Println(version)
		return
	}
	if *bignumVersionFlag {
		fmt.Println(bignumVersion)
		return
	}

	args := flag.Args()
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "usage: bigpso {c <config> | r <prefix>.confBU | rf <prefix>.confBU | restart <config> <backup> | restartAll <dir>}")
		os.Exit(1)
	}

	var err error
	switch args[0] {
	case "c":
		err = runCmdStart(args[1:])
	case "r":
		err = runCmdResume(args[1:], false)
	case "rf":
		err = runCmdResume(args[1:], true)
	case "restart":
		err = runCmdRestart(args[1:])
	case "restartAll":
		err = runCmdRestartAll(args[1:])
	default:
		err = fmt.Errorf("unknown subcommand %q", args[0])
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "bigpso: %v\n", err)
		os.Exit(1)
	}
}

// prefixFor derives `<prefix>` from a path by stripping its extension.
func prefixFor(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path))
}

func loadConfig(path string) (*config.Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()
	return config.Parse(f)
}

func newFileLogger(logPath string) (*zerolog.Logger, *os.File, error) {
	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log %q: %w", logPath, err)
	}
	l := zerolog.New(f).With().Timestamp().Logger()
	return &l, f, nil
}

func appendStartLine(logger *zerolog.Logger, cmd, prefix string) {
	logger.Info().Str("command", cmd).Str("prefix", prefix).Time("started_at", time.Now()).Msg("run starting")
}

func copyFileContents(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0644)
}

// runCmdStart implements `c <config>`: read the configuration, freeze it
// as `<prefix>.confBU`, append a start line to `<prefix>.log`, and begin
// a fresh run.
func runCmdStart(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("c requires exactly one <config> argument")
	}
	configPath := args[0]
	prefix := prefixFor(configPath)

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	if err := copyFileContents(configPath, prefix+".confBU"); err != nil {
		return fmt.Errorf("freeze config: %w", err)
	}

	logger, logFile, err := newFileLogger(prefix + ".log")
	if err != nil {
		return err
	}
	defer logFile.Close()
	appendStartLine(logger, "c", prefix)

	objective := strategy.NewSphere(cfg.Dimensions)
	eng, err := engine.New(cfg, objective, prefix, logger)
	if err != nil {
		return fmt.Errorf("build engine: %w", err)
	}
	return eng.Run()
}

// runCmdResume implements `r`/`rf <prefix>.confBU`: resume from the
// rolling backup, requiring the `.SHUTDOWN` sentinel unless force is set.
func runCmdResume(args []string, force bool) error {
	if len(args) != 1 {
		return fmt.Errorf("resume requires exactly one <prefix>.confBU argument")
	}
	confBUPath := args[0]
	prefix := strings.TrimSuffix(confBUPath, ".confBU")

	if !force {
		if _, err := os.Stat(prefix + ".SHUTDOWN"); err != nil {
			return fmt.Errorf("resume requires %s.SHUTDOWN (use rf to force): %w", prefix, err)
		}
	}

	cfg, err := loadConfig(confBUPath)
	if err != nil {
		return err
	}

	logger, logFile, err := newFileLogger(prefix + ".log")
	if err != nil {
		return err
	}
	defer logFile.Close()
	cmdName := "r"
	if force {
		cmdName = "rf"
	}
	appendStartLine(logger, cmdName, prefix)

	objective := strategy.NewSphere(cfg.Dimensions)
	eng, err := engine.Restore(cfg, objective, prefix, prefix+".backup", logger)
	if err != nil {
		return fmt.Errorf("restore engine: %w", err)
	}

	os.Remove(prefix + ".SHUTDOWN")
	return eng.Run()
}

// runCmdRestart implements `restart <config> <backup>`: resume swarm
// state from <backup> but re-read configuration from <config>, for
// parameters safe to change mid-run (statistics, max_steps, backup
// cadence). Swarm sizing and RNG selection in the new config are ignored
// in favor of the restored state's actual shape.
func runCmdRestart(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("restart requires <config> and <backup> arguments")
	}
	configPath, backupPath := args[0], args[1]
	prefix := prefixFor(configPath)

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	logger, logFile, err := newFileLogger(prefix + ".log")
	if err != nil {
		return err
	}
	defer logFile.Close()
	appendStartLine(logger, "restart", prefix)

	objective := strategy.NewSphere(cfg.Dimensions)
	eng, err := engine.Restore(cfg, objective, prefix, backupPath, logger)
	if err != nil {
		return fmt.Errorf("restore engine: %w", err)
	}
	return eng.Run()
}

// runCmdRestartAll implements `restartAll <dir>`: for every
// `<prefix>.confBU` in dir whose `<prefix>.SHUTDOWN` sentinel exists,
// spawn a child process running `r <prefix>.confBU`, all supervised
// concurrently via an errgroup.
func runCmdRestartAll(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("restartAll requires exactly one <dir> argument")
	}
	dir := args[0]

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read dir: %w", err)
	}

	self, err := os.Executable()
	if err != nil {
		return fmt.Errorf("locate self: %w", err)
	}

	return nursery.Run(context.Background(), func(ctx context.Context, n *nursery.Nursery) {
		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".confBU") {
				continue
			}
			confBUPath := filepath.Join(dir, entry.Name())
			prefix := strings.TrimSuffix(confBUPath, ".confBU")
			if _, err := os.Stat(prefix + ".SHUTDOWN"); err != nil {
				continue
			}

			n.Go(func() error {
				cmd := exec.CommandContext(ctx, self, "r", confBUPath)
				cmd.Stdout = os.Stdout
				cmd.Stderr = os.Stderr
				if err := cmd.Run(); err != nil {
					return fmt.Errorf("%s: %w", confBUPath, err)
				}
				return nil
			})
		}
	})
}

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"gregoryjjb/ringtool/puzzles"
)

// Populated by ldflags
var (
	version            string
	buildUnixTimestamp string
	commitHash         string
)

func GetBuildInfo() BuildInfo {
	ts, _ := strconv.ParseInt(buildUnixTimestamp, 10, 64)
	v := version
	if v == "" {
		v = "dev"
	}
	return BuildInfo{
		Version:    v,
		BuildTime:  time.Unix(ts, 0).UTC(),
		CommitHash: commitHash,
	}
}

// CLI holds everything a command invocation touches, so tests can swap
// the terminal, filesystem and environment.
type CLI struct {
	Stdout    io.Writer
	Stderr    io.Writer
	FS        RingFS
	Getenv    func(string) string
	NoColor   bool
	BuildInfo BuildInfo
}

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

func (cli *CLI) Run(ctx context.Context, args []string) int {
	fl := flag.NewFlagSet("ringtool", flag.ContinueOnError)
	fl.SetOutput(cli.Stderr)
	fl.Usage = func() {
		fmt.Fprintln(fl.Output(), "Usage: ringtool [flags] <puzzle> [key=value ...]")
		fl.PrintDefaults()
	}

	var flags Flags
	fl.StringVar(&flags.ConfigPath, "config", "", "Path to the config file (default ./"+DefaultConfigName+")")
	fl.StringVar(&flags.Host, "host", "", "Host to listen on with -serve")
	fl.StringVar(&flags.Port, "port", "", "Port to listen on with -serve")
	fl.StringVar(&flags.DataDir, "data-dir", "", "Directory for stored results")
	fl.StringVar(&flags.LogLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")
	versionFlag := fl.Bool("version", false, "Print version")
	systemdFlag := fl.Bool("systemd", false, "Print systemd service file")
	listFlag := fl.Bool("list", false, "List puzzles and their parameters")
	serveFlag := fl.Bool("serve", false, "Start the HTTP API")
	fl.BoolVar(&NoEmbed, "no-embed", false, "Read web templates from ./www instead of the binary")

	if err := fl.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}

	if *versionFlag {
		fmt.Fprintln(cli.Stdout, "Ringtool version:", cli.BuildInfo.Version)
		fmt.Fprintln(cli.Stdout, "Built on:", cli.BuildInfo.BuildTime)
		fmt.Fprintln(cli.Stdout, "Commit hash:", cli.BuildInfo.CommitHash)
		return exitOK
	}

	if *systemdFlag {
		return cli.systemd(flags)
	}

	config, err := NewConfig(cli.FS, flags, cli.Getenv)
	if err != nil {
		log.Error().Err(err).Msg("Config initialization failed")
		return exitError
	}
	zerolog.SetGlobalLevel(config.LogLevel())
	if config.Path() != "" {
		log.Debug().Str("path", config.Path()).Msg("Loaded config")
	}

	switch {
	case *listFlag:
		if err := PrintPuzzles(cli.Stdout, cli.NoColor, config); err != nil {
			return exitError
		}
		return exitOK

	case *serveFlag:
		return cli.serve(ctx, config)
	}

	if fl.NArg() == 0 {
		fl.Usage()
		return exitUsage
	}
	return cli.solve(ctx, config, fl.Arg(0), fl.Args()[1:])
}

func (cli *CLI) solve(ctx context.Context, config *Config, name string, args []string) int {
	pz, err := puzzles.Lookup(name)
	if err != nil {
		fmt.Fprintf(cli.Stderr, "%s (try -list)\n", err)
		return exitUsage
	}

	params, err := puzzles.ParseParams(args)
	if err != nil {
		fmt.Fprintln(cli.Stderr, err)
		return exitUsage
	}
	params = config.PuzzleDefaults(name).Merge(params)

	start := time.Now()
	answer, err := pz.Solve(ctx, params, config.ProgressEvery(), func(p puzzles.Progress) {
		log.Debug().Str("puzzle", name).Int("step", p.Step).Int("total", p.Total).Msg("Progress")
	})
	if err != nil {
		if errors.Is(err, puzzles.ErrValidation) {
			fmt.Fprintln(cli.Stderr, err)
			return exitUsage
		}
		log.Error().Err(err).Str("puzzle", name).Msg("Solve failed")
		return exitError
	}

	log.Info().
		Str("puzzle", name).
		Str("params", pz.Defaults.Merge(params).String()).
		Dur("took", time.Since(start)).
		Msg("Solved")

	if err := PrintAnswer(cli.Stdout, cli.NoColor, "The answer to {} is {}", name, answer); err != nil {
		return exitError
	}
	return exitOK
}

func (cli *CLI) serve(ctx context.Context, config *Config) int {
	log.Info().
		Str("version", cli.BuildInfo.Version).
		Str("build_timestamp", cli.BuildInfo.BuildTime.Format(time.RFC3339)).
		Str("commit_hash", cli.BuildInfo.CommitHash).
		Str("data_dir", config.DataDir()).
		Msg("Initializing Ringtool")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	storage := NewStorage(cli.FS, config)
	runner := NewRunner(ctx, config, storage)

	err := StartServer(ctx, config, cli.BuildInfo, runner, storage)
	cancel()
	<-runner.Done()

	if err != nil {
		log.Err(err).Msg("Server closed with error")
		return exitError
	}
	return exitOK
}

func (cli *CLI) systemd(flags Flags) int {
	path, err := os.Executable()
	if err != nil {
		log.Err(err).Msg("Could not locate executable")
		return exitError
	}

	params := RingtoolServiceParams{
		BinaryPath: path,
		User:       cli.Getenv("USER"),
	}
	if flags.ConfigPath != "" {
		if params.ConfigPath, err = cli.FS.Abs(flags.ConfigPath); err != nil {
			log.Err(err).Msg("Could not resolve config path")
			return exitError
		}
	}

	if err := SystemdServiceFile(cli.Stdout, params); err != nil {
		log.Err(err).Msg("Could not render service file")
		return exitError
	}
	return exitOK
}

func main() {
	noColor := !StdoutIsTerminal() || os.Getenv("NO_COLOR") != ""
	InitializeLogger(os.Stderr, noColor)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cli := &CLI{
		Stdout:    NewThreadSafeWriter(os.Stdout),
		Stderr:    os.Stderr,
		FS:        NewRingOSFS(),
		Getenv:    os.Getenv,
		NoColor:   noColor,
		BuildInfo: GetBuildInfo(),
	}

	code := cli.Run(ctx, os.Args[1:])
	stop()
	os.Exit(code)
}

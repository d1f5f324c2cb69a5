package main

import (
	"flag"
	"fmt"
	"os"

	"festivalbot/internal/config"
	appLog "festivalbot/internal/log"
)

const usage = `usage: festivalbot [-config=<path>] [-data=<path>] [-debug] [-demo] [<command> [<args>]]

Commands
   shell            Interactive menu (default)
   remind           Print and notify festivals happening today and within 7 days
   upcoming [N]     Print festivals within the next N days (default from config)
   export [path]    Write a backup; a path ending in .ics writes iCalendar
   import <source>  Add festivals from an .ics file or http(s) URL
   watch            Run the reminder check on the configured cron schedule
   help             Display this message

Flags
`

// flagConfig holds CLI flag values.
type flagConfig struct {
	configPath string
	dataFile   string
	debug      bool
	demo       bool
}

func main() {
	flags := parseFlags()

	conf, err := config.Load(flags.configPath)
	if err != nil {
		if conf == nil {
			fmt.Fprintf(os.Stderr, "could not load config %s: %v\n", flags.configPath, err)
			os.Exit(1)
		}
		// First-run write failed; the defaults are still usable.
		appLog.Error("failed to write default config", err, "config_path", flags.configPath)
	}
	if err := conf.ApplyEnv(); err != nil {
		appLog.Error("failed to read .env", err)
	}

	// CLI -data overrides config file and environment.
	if flags.dataFile != "" {
		conf.DataFile = flags.dataFile
	}

	appLog.SetLevel(appLog.ParseLevel(conf.LogLevel))
	if flags.debug {
		appLog.SetLevel(appLog.LevelDebug)
	}

	appLog.Info("festivalbot starting",
		"config_path", flags.configPath,
		"data_file", conf.DataFile,
		"backup_file", conf.BackupFile,
		"table", conf.Table,
		"notify", conf.Notify,
	)

	args := flag.Args()
	cmd := "shell"
	if len(args) > 0 {
		cmd, args = args[0], args[1:]
	}

	switch cmd {
	case "shell":
		err = runShell(conf, flags.demo)
	case "remind":
		err = runRemind(conf)
	case "upcoming":
		err = runUpcoming(conf, args)
	case "export":
		err = runExport(conf, args)
	case "import":
		err = runImport(conf, args)
	case "watch":
		err = runWatch(conf)
	case "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", cmd)
		printUsage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s error: %v\n", cmd, err)
		os.Exit(1)
	}
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", config.DefaultPath(), "Path to config file")
	flag.StringVar(&cfg.dataFile, "data", "", "Festival data file (overrides config if set)")
	flag.BoolVar(&cfg.debug, "debug", false, "Enable debug logging on stderr")
	flag.BoolVar(&cfg.demo, "demo", false, "Seed demo festivals when the data file is empty")
	flag.Usage = printUsage

	flag.Parse()

	return cfg
}

func printUsage() {
	fmt.Fprint(os.Stderr, usage)
	flag.PrintDefaults()
}

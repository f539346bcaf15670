package hwstress

import (
	"os"
	"runtime"

	logrus "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"HwStress/internal/command"
	"HwStress/internal/util"
)

var (
	FlagConfigFilePath string
	FlagLogLevel       string

	FlagCpuWorkers  int
	FlagCpuDuration int

	FlagRamWorkers  int
	FlagRamBytes    string
	FlagRamDuration int

	FlagDiskSize     string
	FlagDiskRuntime  int
	FlagDiskFilename string

	FlagNetServer string
	FlagNetExtra  string

	FlagMonitorDB bool

	FlagLogsFollow bool
	FlagLogsCount  int

	RootCmd = &cobra.Command{
		Use:   "hwstress",
		Short: "drive hardware stress tools and watch host utilization",
		Long: "hwstress wraps stress-ng, glmark2, fio and iperf3 as managed " +
			"subprocesses: it streams and logs their output, estimates " +
			"progress for bounded runs, and samples CPU/memory/disk usage.",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			config := util.ParseConfig(FlagConfigFilePath)
			level := diagnosticLevel(config, cmd.Root().PersistentFlags().Changed("log-level"))
			if config.Diagnostics.File != "" {
				util.InitFileLogger(level, config.Diagnostics.File)
			} else {
				util.InitLogger(level)
			}
		},
	}

	cpuCmd = &cobra.Command{
		Use:   "cpu",
		Short: "run a stress-ng CPU test",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			os.Exit(RunTest(command.CPUOptions{
				Workers:     FlagCpuWorkers,
				DurationSec: FlagCpuDuration,
			}))
		},
	}

	ramCmd = &cobra.Command{
		Use:   "ram",
		Short: "run a stress-ng virtual-memory test",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			os.Exit(RunTest(command.RAMOptions{
				VMWorkers:   FlagRamWorkers,
				BytesPerVM:  FlagRamBytes,
				DurationSec: FlagRamDuration,
			}))
		},
	}

	gpuCmd = &cobra.Command{
		Use:   "gpu",
		Short: "run the glmark2 GPU suite (fixed length, no duration setting)",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			os.Exit(RunTest(command.GPUOptions{}))
		},
	}

	diskCmd = &cobra.Command{
		Use:   "disk",
		Short: "run a fio random read/write test",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			os.Exit(RunTest(command.DiskOptions{
				Size:       FlagDiskSize,
				RuntimeSec: FlagDiskRuntime,
				Filename:   FlagDiskFilename,
			}))
		},
	}

	netCmd = &cobra.Command{
		Use:   "net",
		Short: "run an iperf3 client test against a server",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			os.Exit(RunTest(command.NetworkOptions{
				ServerHost: FlagNetServer,
				ExtraArgs:  FlagNetExtra,
			}))
		},
	}

	depsCmd = &cobra.Command{
		Use:   "deps",
		Short: "check which stress tools are installed",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			os.Exit(CheckDependencies())
		},
	}

	monitorCmd = &cobra.Command{
		Use:   "monitor",
		Short: "show live CPU/memory/disk utilization",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			os.Exit(MonitorResources())
		},
	}

	logsCmd = &cobra.Command{
		Use:   "logs",
		Short: "list recent run logs, or follow the newest one",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			os.Exit(ShowLogs(FlagLogsFollow, FlagLogsCount))
		},
	}
)

// diagnosticLevel picks the logger level: the --log-level flag when given on
// the command line, otherwise the config's Diagnostics.Level, otherwise info.
func diagnosticLevel(config *util.Config, flagGiven bool) logrus.Level {
	name := FlagLogLevel
	if !flagGiven && config.Diagnostics.Level != "" {
		name = config.Diagnostics.Level
	}
	level, err := logrus.ParseLevel(name)
	if err != nil {
		return logrus.InfoLevel
	}
	return level
}

func ParseCmdArgs() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(util.ErrorCmdArg)
	}
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&FlagConfigFilePath, "config", "C",
		util.DefaultConfigPath, "Path to configuration file")
	RootCmd.PersistentFlags().StringVar(&FlagLogLevel, "log-level", "info",
		"Diagnostic log level (trace, debug, info, warn, error)")

	cpuCmd.Flags().IntVarP(&FlagCpuWorkers, "workers", "w", runtime.NumCPU(),
		"number of CPU stress workers")
	cpuCmd.Flags().IntVarP(&FlagCpuDuration, "duration", "d", 300,
		"test duration in seconds (minimum 5)")

	ramCmd.Flags().IntVar(&FlagRamWorkers, "vm", 2,
		"number of virtual-memory stress workers")
	ramCmd.Flags().StringVar(&FlagRamBytes, "vm-bytes", "",
		"bytes per VM worker, e.g. 512M or 1G (default 512M)")
	ramCmd.Flags().IntVarP(&FlagRamDuration, "duration", "d", 300,
		"test duration in seconds (minimum 5)")

	diskCmd.Flags().StringVar(&FlagDiskSize, "size", "1G",
		"total I/O size, e.g. 1G")
	diskCmd.Flags().IntVar(&FlagDiskRuntime, "runtime", 60,
		"test runtime in seconds (5-3600)")
	diskCmd.Flags().StringVar(&FlagDiskFilename, "filename", "",
		"test file path (default ./fio_testfile.bin)")

	netCmd.Flags().StringVarP(&FlagNetServer, "server", "s", "",
		"iperf3 server address (required)")
	netCmd.Flags().StringVar(&FlagNetExtra, "args", "",
		"extra iperf3 arguments, shell-tokenized")

	monitorCmd.Flags().BoolVar(&FlagMonitorDB, "db", false,
		"persist samples to the configured InfluxDB")

	logsCmd.Flags().BoolVarP(&FlagLogsFollow, "follow", "f", false,
		"follow the newest run log")
	logsCmd.Flags().IntVarP(&FlagLogsCount, "count", "n", 10,
		"number of log files to list")

	RootCmd.AddCommand(cpuCmd, ramCmd, gpuCmd, diskCmd, netCmd,
		depsCmd, monitorCmd, logsCmd)
}

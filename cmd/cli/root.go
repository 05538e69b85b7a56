package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/turtacn/riskboard/internal/config"
	"github.com/turtacn/riskboard/internal/infrastructure/monitoring"
	"github.com/turtacn/riskboard/pkg/logger"
)

var (
	configPath string
	logLevel   string
)

// rootCmd represents the base command when the `riskctl` binary is called without any subcommands.
// rootCmd 代表在没有任何子命令的情况下调用 `riskctl` 二进制文件时的基本命令。
var rootCmd = NewRootCommand()

// NewRootCommand builds the riskctl command tree.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "riskctl",
		Short: "Score, project and explore startup risk datasets.",
		Long: `riskctl computes composite risk scores for startup CSV files, projects cluster
validation data onto principal axes, and serves the risk dashboard API.`,
		SilenceUsage: true,
	}
	AddConfigFlags(root)

	root.AddCommand(
		newScoreCommand(),
		newProjectCommand(),
		newDatasetsCommand(),
		newSampleCommand(),
		NewServeCommand(),
	)
	return root
}

// Execute is the main entry point for the CLI application.
// If an error occurs, it prints the error and exits.
// Execute 是 CLI 应用程序的主入口点。如果发生错误，它会打印错误并退出。
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads the configuration selected by --config and applies --log-level.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	return cfg, nil
}

// toolLogger logs to stderr with the console encoder so that stdout carries only command output.
func toolLogger(cfg *config.Config) logger.Logger {
	level, err := zapcore.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = zapcore.WarnLevel
	}
	encoderConfig := zap.NewDevelopmentEncoderConfig()
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), zapcore.Lock(os.Stderr), level)
	return monitoring.NewLoggerFromCore(core).WithComponent("riskctl")
}

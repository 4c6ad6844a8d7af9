package main

import (
	"context"
	"fmt"
	"os"

	"github.com/bytedance/sonic"
	"github.com/go-arcade/reviewhub/internal/bootstrap"
	"github.com/go-arcade/reviewhub/pkg/version"
	"github.com/spf13/cobra"
)

/**
 * @author: gagral.x@gmail.com
 * @file: main.go
 * @description: reviewhub 入口
 */

var configFile string

var rootCmd = &cobra.Command{
	Use:   "reviewhub",
	Short: "Code review webhook gateway and notification router",
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server, queue worker, scheduler and metrics server",
	RunE: func(cmd *cobra.Command, args []string) error {
		// Bootstrap 初始化应用
		app, cleanup, err := bootstrap.Bootstrap(configFile, initApp)
		if err != nil {
			return err
		}

		// 启动应用并等待退出信号
		bootstrap.Run(app, cleanup)
		return nil
	},
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate and send today's daily report once",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, cleanup, err := bootstrap.Bootstrap(configFile, initApp)
		if err != nil {
			return err
		}
		defer cleanup()

		result, err := app.Services.Report.DailyReport(context.Background())
		if err != nil {
			return err
		}
		out, err := sonic.ConfigStd.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "conf", "conf.d/config.toml", "conf file path, e.g. --conf ./conf.d/config.toml")
	rootCmd.AddCommand(serveCmd, reportCmd, version.VersionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

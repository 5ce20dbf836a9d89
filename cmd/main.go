package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// configDir 由 --config 指定，目录下需有 config.yaml
	configDir string
	// seedOnServe serve 启动时是否写入参考数据
	seedOnServe bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "gameingest",
	Short: "按搜索热度从游戏目录拉取元数据并入库",
	Long: `gameingest 读取用户搜索需求积压，按热度筛选后到 IGDB 查询游戏信息，
写入 Game 与 GameVariant，并把成功的需求标记为已处理。
可作为常驻服务（HTTP 触发或定时触发）或一次性任务运行。`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "./config", "配置目录（包含 config.yaml）")
	serveCmd.Flags().BoolVar(&seedOnServe, "seed", false, "启动时写入平台/品相/区域参考数据")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(runOnceCmd)
	rootCmd.AddCommand(seedCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "启动 HTTP 服务（触发接口、版本查询、可选定时入库）",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(configDir)
		if err != nil {
			return err
		}
		defer app.Close()
		if seedOnServe {
			if err := app.seed(cmd.Context()); err != nil {
				return err
			}
		}
		return app.serve(cmd.Context())
	},
}

var runOnceCmd = &cobra.Command{
	Use:   "run-once",
	Short: "执行一次入库运行后退出",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(configDir)
		if err != nil {
			return err
		}
		defer app.Close()
		return app.runOnce(cmd.Context())
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "写入平台/品相/区域参考数据（幂等）",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(configDir)
		if err != nil {
			return err
		}
		defer app.Close()
		return app.seed(cmd.Context())
	},
}

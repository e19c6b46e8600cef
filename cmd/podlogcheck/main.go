// podlogcheck 是 podLog 配置的命令行检查工具。
//
// 用法:
//
//	podlogcheck [全局选项] <命令> [命令参数]
//
// 全局选项:
//
//	-c, --config   配置文件路径（默认在工作目录搜索 podlog.yaml|yml|json）
//
// 命令:
//
//	validate       加载并校验配置
//	print          打印展开后的有效配置（JSON）
//	emit           把一条测试记录推过配置的管线
//	help           显示帮助信息
//
// 退出码:
//
//	0: 命令执行成功
//	1: 配置无效或命令执行失败
//	2: 参数错误（未知命令、非法 flag 等）
//
// 示例:
//
//	podlogcheck validate                      # 校验工作目录下的配置
//	podlogcheck -c /etc/app/podlog.yaml print # 打印指定文件的有效配置
//	podlogcheck emit --level warn -m "test"   # 发射一条测试记录
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
)

// 版本信息（可通过 -ldflags 注入）。
var (
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
)

func main() {
	os.Exit(run(os.Args))
}

// createApp 创建 CLI 应用。
func createApp() *cli.Command {
	return &cli.Command{
		Name:    "podlogcheck",
		Usage:   "podLog 配置检查工具",
		Version: fmt.Sprintf("%s (commit: %s)", Version, GitCommit),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "配置文件路径",
			},
		},
		Commands:       createCommands(),
		DefaultCommand: "help",
		// 设计决策: 禁止 urfave/cli 直接调用 os.Exit，
		// 由 run() 统一处理退出码映射，确保与文档退出码契约一致。
		ExitErrHandler: func(_ context.Context, _ *cli.Command, err error) {
			if _, ok := err.(cli.ExitCoder); ok {
				fmt.Fprintln(os.Stderr, err)
			}
		},
	}
}

func run(args []string) int {
	app := createApp()

	if err := app.Run(context.Background(), args); err != nil {
		var exitErr *exitError
		if errors.As(err, &exitErr) {
			return exitErr.code
		}
		if _, ok := err.(cli.ExitCoder); ok {
			// ExitErrHandler 已输出错误详情
			return 2
		}
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		return 1
	}
	return 0
}

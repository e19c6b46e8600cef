package main

import (
	"context"
	"fmt"
	"os"

	"github.com/goccy/go-json"
	"github.com/urfave/cli/v3"

	"github.com/podhq/podLog/pkg/config"
	"github.com/podhq/podLog/pkg/core/level"
	"github.com/podhq/podLog/pkg/core/manager"
)

// exitError 表示需要非零退出码但已完成输出的场景。
type exitError struct {
	code int
}

func (e *exitError) Error() string { return "" }

func createCommands() []*cli.Command {
	return []*cli.Command{
		createValidateCommand(),
		createPrintCommand(),
		createEmitCommand(),
	}
}

// loadConfig 按全局 flag 加载配置，不含校验
func loadConfig(cmd *cli.Command) (*config.Config, error) {
	var opts []config.Option
	if path := cmd.String("config"); path != "" {
		opts = append(opts, config.WithFile(path))
	}
	return config.Load(opts...)
}

func createValidateCommand() *cli.Command {
	return &cli.Command{
		Name:  "validate",
		Usage: "加载并校验配置",
		Action: func(_ context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err == nil {
				err = config.Validate(cfg)
			}
			if err != nil {
				fmt.Fprintf(os.Stderr, "配置无效: %v\n", err)
				return &exitError{code: 1}
			}
			fmt.Printf("配置有效: %d 个处理器已启用\n", len(cfg.Handlers.Enabled))
			return nil
		},
	}
}

func createPrintCommand() *cli.Command {
	return &cli.Command{
		Name:  "print",
		Usage: "打印展开后的有效配置（JSON）",
		Action: func(_ context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				fmt.Fprintf(os.Stderr, "配置加载失败: %v\n", err)
				return &exitError{code: 1}
			}
			data, err := json.MarshalIndent(cfg, "", "  ")
			if err != nil {
				return fmt.Errorf("序列化配置: %w", err)
			}
			fmt.Println(string(data))
			return nil
		},
	}
}

func createEmitCommand() *cli.Command {
	return &cli.Command{
		Name:  "emit",
		Usage: "把一条测试记录推过配置的管线",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "level",
				Aliases: []string{"l"},
				Usage:   "记录级别",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "message",
				Aliases: []string{"m"},
				Usage:   "记录消息",
				Value:   "podlogcheck test record",
			},
			&cli.StringFlag{
				Name:  "logger",
				Usage: "logger 名",
				Value: "podlogcheck",
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			lvl, err := level.Parse(cmd.String("level"))
			if err != nil {
				fmt.Fprintf(os.Stderr, "参数错误: %v\n", err)
				return &exitError{code: 2}
			}

			cfg, err := loadConfig(cmd)
			if err != nil {
				fmt.Fprintf(os.Stderr, "配置加载失败: %v\n", err)
				return &exitError{code: 1}
			}

			var failed bool
			m := manager.New(manager.WithDiagnostic(func(stage string, diagErr error) {
				failed = true
				fmt.Fprintf(os.Stderr, "管线错误 [%s]: %v\n", stage, diagErr)
			}))
			if err := m.Configure(cfg); err != nil {
				fmt.Fprintf(os.Stderr, "配置无效: %v\n", err)
				return &exitError{code: 1}
			}

			m.GetLogger(cmd.String("logger")).Emit(lvl, cmd.String("message"), nil)
			m.Shutdown()

			if failed {
				return &exitError{code: 1}
			}
			fmt.Println("记录已发射")
			return nil
		},
	}
}

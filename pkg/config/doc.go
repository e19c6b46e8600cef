// Package config 提供 podLog 的配置加载、展开、校验与热更新能力。
//
// 配置来源分四层，优先级从低到高：
//  1. 内置默认值（structs + confmap provider）
//  2. 配置文件（yaml/json，按扩展名自动识别）或内存字节（WithBytes）
//  3. 环境变量（PODLOG__ 前缀，双下划线作为层级分隔符）
//  4. 程序化覆盖（Load 的 WithOverrides 选项）
//
// 加载完成后配置被展开为强类型的 [Config]：formatters/filters/handlers
// 这类异构段从原始树手工展开（值形状不固定，无法直接反序列化），
// 其余段通过 koanf 的弱类型 Unmarshal 填充。
//
// 设计决策：
//   - 校验阶段对所有名字引用（formatter / filter / handler）快速失败，
//     宁可启动报错也不让日志悄悄丢失。
//   - 级别值在校验阶段统一归一化（"INFO"、"20"、20 均可），
//     未知级别立即报错而不是回退默认值。
//   - 日期目录格式使用 Go 时间布局（如 "2006-01-02"）。
//
// 注意事项：
//   - Watch 监视配置文件所在目录而非文件本身，编辑器原子写入
//     （写临时文件后 rename）才不会丢事件。
package config

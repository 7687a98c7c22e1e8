// Package chat 是 meshchat 的应用层
//
// 组成：
//   - Router：把一行输入解析成订阅或发布，并调用 pubsub.Engine
//   - Bridge：把发现事件翻译成地址簿与成员表的更新
//   - Loop：唯一驱动 Engine 的事件循环，依次处理输入行、入站帧、发现事件和心跳
//   - Printer：向 stdout 输出人类可读的状态行
//
// 输入语法（先匹配最长前缀）：
//
//	t:sub:<topic>          订阅 topic
//	t:<topic>:<payload>    向 topic 发布 payload
//	其他                    向广播主题发布整行
package chat

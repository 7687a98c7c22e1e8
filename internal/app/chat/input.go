package chat

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"
)

// ReadLines 逐行读取 r，去掉行尾换行；EOF 或 ctx 取消时关闭通道
//
// 行长度不设上限，超长内容交给 Router 按消息大小拒绝。
// 读取协程可能阻塞在 r 上直到进程退出。
func ReadLines(ctx context.Context, r io.Reader) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		br := bufio.NewReader(r)
		for {
			line, err := br.ReadString('\n')
			if len(line) > 0 || err == nil {
				line = strings.TrimSuffix(line, "\n")
				line = strings.TrimSuffix(line, "\r")
				select {
				case lines <- line:
				case <-ctx.Done():
					return
				}
			}
			if err != nil {
				if !errors.Is(err, io.EOF) {
					log.Warn("stdin read failed", "err", err)
				}
				return
			}
		}
	}()
	return lines
}

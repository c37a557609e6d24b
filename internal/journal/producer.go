package journal

import "context"

// Producer 生产者接口
type Producer interface {
	// Publish 发送消息
	// key: 分区键, 这里使用交易哈希保证同一交易的事件有序
	Publish(ctx context.Context, topic string, key string, payload []byte) error
	Close() error
}

package utils

import "sync"

// Queue 是一个不阻塞生产者的无界队列，用于把控制器事件交给连接写协程
type Queue[T any] struct {
	mu     sync.Mutex
	items  []T
	notify chan struct{}
}

// NewQueue 创建队列
func NewQueue[T any]() *Queue[T] {
	return &Queue[T]{notify: make(chan struct{}, 1)}
}

// Push 追加一个元素并唤醒消费者
func (q *Queue[T]) Push(item T) {
	q.mu.Lock()
	q.items = append(q.items, item)
	q.mu.Unlock()

	select {
	case q.notify <- struct{}{}:
	default:
	}
}

// Ready 在有新元素时可读
func (q *Queue[T]) Ready() <-chan struct{} {
	return q.notify
}

// Drain 取出当前全部元素
func (q *Queue[T]) Drain() []T {
	q.mu.Lock()
	defer q.mu.Unlock()
	items := q.items
	q.items = nil
	return items
}

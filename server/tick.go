package server

import (
	"context"
	"time"
)

const (
	// TicksPerSecond 世界推进频率（10 TPS）
	TicksPerSecond = 10
)

// TickInterval 固定 Tick 间隔
const TickInterval = time.Second / TicksPerSecond // 100ms

// StartTicker 在独立协程中启动房间循环，只会启动一次
func (r *Room) StartTicker(ctx context.Context) {
	r.startOnce.Do(func() {
		go r.Run(ctx)
	})
}

// Run 房间主循环：指令随到随执行；Tick 由自由运行的定时器驱动，与消息到达无关
func (r *Room) Run(ctx context.Context) {
	defer close(r.done)
	ticker := time.NewTicker(r.tickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case c := <-r.inbox:
			r.apply(c)
		case <-ticker.C:
			r.tick()
		}
	}
}

// tick 核心循环：处理积压指令 → 更新世界 → 广播结果
func (r *Room) tick() {
	start := time.Now()
	r.ProcessInputs()
	r.UpdateWorld()
	r.Broadcast()
	r.metrics.AddTick(time.Since(start).Nanoseconds())
}

// Done 房间协程退出后关闭
func (r *Room) Done() <-chan struct{} { return r.done }

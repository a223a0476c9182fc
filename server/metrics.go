package server

import (
	"sync/atomic"
)

// RoomMetrics 记录运行期的关键指标（用于监控与调试）
type RoomMetrics struct {
	TickCount          int64 // 统计的 Tick 次数
	TickFaults         int64 // Tick 中被隔离的单个玩家故障
	InputsAccepted     int64 // 被接受的方向输入
	NamesRejected      int64 // 空名字被拒绝的次数
	ChanFullDiscarded  int64 // 因房间收件箱满被丢弃的指令
	RelaysForwarded    int64 // 成功转发的信令
	RelaysDropped      int64 // 目标不在线或队列满而丢弃的信令
	BroadcastDelivered int64 // 成功入队的状态广播
	BroadcastDropped   int64 // 因发送队列满而丢弃的状态广播
	TotalTickNs        int64 // Tick 累计耗时（纳秒）
	Players            int64 // 最近一次 Tick 时占用槽位的玩家数
	Spectators         int64 // 最近一次 Tick 时的观战者数
}

func (m *RoomMetrics) IncAccepted()          { atomic.AddInt64(&m.InputsAccepted, 1) }
func (m *RoomMetrics) IncNameRejected()      { atomic.AddInt64(&m.NamesRejected, 1) }
func (m *RoomMetrics) IncChanFullDiscarded() { atomic.AddInt64(&m.ChanFullDiscarded, 1) }
func (m *RoomMetrics) IncRelayForwarded()    { atomic.AddInt64(&m.RelaysForwarded, 1) }
func (m *RoomMetrics) IncRelayDropped()      { atomic.AddInt64(&m.RelaysDropped, 1) }
func (m *RoomMetrics) AddTickFaults(n int)   { atomic.AddInt64(&m.TickFaults, int64(n)) }
func (m *RoomMetrics) AddBroadcast(delivered, dropped int) {
	atomic.AddInt64(&m.BroadcastDelivered, int64(delivered))
	atomic.AddInt64(&m.BroadcastDropped, int64(dropped))
}
func (m *RoomMetrics) SetPopulation(players, spectators int) {
	atomic.StoreInt64(&m.Players, int64(players))
	atomic.StoreInt64(&m.Spectators, int64(spectators))
}
func (m *RoomMetrics) AddTick(ns int64) {
	atomic.AddInt64(&m.TickCount, 1)
	atomic.AddInt64(&m.TotalTickNs, ns)
}

// Snapshot 返回只读副本，便于 HTTP 输出
func (m *RoomMetrics) Snapshot() map[string]any {
	tick := atomic.LoadInt64(&m.TickCount)
	total := atomic.LoadInt64(&m.TotalTickNs)
	var avgMs float64
	if tick > 0 {
		avgMs = float64(total) / float64(tick) / 1e6
	}
	return map[string]any{
		"tick_count":          tick,
		"tick_faults":         atomic.LoadInt64(&m.TickFaults),
		"inputs_accepted":     atomic.LoadInt64(&m.InputsAccepted),
		"names_rejected":      atomic.LoadInt64(&m.NamesRejected),
		"chan_full_discarded": atomic.LoadInt64(&m.ChanFullDiscarded),
		"relays_forwarded":    atomic.LoadInt64(&m.RelaysForwarded),
		"relays_dropped":      atomic.LoadInt64(&m.RelaysDropped),
		"broadcast_delivered": atomic.LoadInt64(&m.BroadcastDelivered),
		"broadcast_dropped":   atomic.LoadInt64(&m.BroadcastDropped),
		"players":             atomic.LoadInt64(&m.Players),
		"spectators":          atomic.LoadInt64(&m.Spectators),
		"avg_tick_ms":         avgMs,
	}
}

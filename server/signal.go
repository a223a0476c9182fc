package server

// Relay 信令中转：把握手数据原样转交给目标会话，与模拟状态无关
type Relay struct {
	sessions *SessionManager
	metrics  *RoomMetrics
}

func NewRelay(sessions *SessionManager, metrics *RoomMetrics) *Relay {
	return &Relay{sessions: sessions, metrics: metrics}
}

// Forward 目标在线则投递 {from, data}，否则静默丢弃，发送方不会收到任何错误
func (r *Relay) Forward(from SessionID, sig Signal) bool {
	if sig.Target == "" {
		r.drop(from, sig.Target, "no target")
		return false
	}
	b, err := EncodeSignal(from, sig.Data)
	if err != nil {
		r.drop(from, sig.Target, err.Error())
		return false
	}
	if !r.sessions.Send(sig.Target, b) {
		r.drop(from, sig.Target, "target offline or queue full")
		return false
	}
	if r.metrics != nil {
		r.metrics.IncRelayForwarded()
	}
	return true
}

func (r *Relay) drop(from, target SessionID, reason string) {
	if r.metrics != nil {
		r.metrics.IncRelayDropped()
	}
	Log.Debugw("signal dropped", "from", from, "target", target, "reason", reason)
}

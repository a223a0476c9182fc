package server

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"
)

// ErrRoomStopped 房间协程已退出
var ErrRoomStopped = errors.New("room stopped")

// command 房间收件箱中的指令，全部在房间协程内执行
type command interface{ isCommand() }

type setNameCmd struct {
	SID  SessionID
	Name string
}

type inputCmd struct {
	SID SessionID
	Dir Direction
}

type retryCmd struct{ SID SessionID }

type leaveCmd struct{ SID SessionID }

type snapshotCmd struct{ Reply chan<- State }

func (setNameCmd) isCommand()  {}
func (inputCmd) isCommand()    {}
func (retryCmd) isCommand()    {}
func (leaveCmd) isCommand()    {}
func (snapshotCmd) isCommand() {}

// RoomConfig 世界尺寸与节奏，进程生命周期内不变
type RoomConfig struct {
	Width        int
	Height       int
	TickInterval time.Duration
	InboxSize    int
	Rand         *rand.Rand
}

func DefaultRoomConfig() RoomConfig {
	return RoomConfig{
		Width:        WorldWidth,
		Height:       WorldHeight,
		TickInterval: TickInterval,
		InboxSize:    256, // 足够缓冲，避免网络读阻塞影响 Tick
		Rand:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Room 房间：权威世界维护在内存，单协程推进 Tick 并执行客户端指令
type Room struct {
	world    *World
	sessions *SessionManager
	metrics  *RoomMetrics

	inbox        chan command
	done         chan struct{}
	tickInterval time.Duration
	tickSeq      int64

	startOnce sync.Once
}

// NewRoom 创建房间，初始化数据结构
func NewRoom(cfg RoomConfig, sessions *SessionManager, metrics *RoomMetrics) *Room {
	if cfg.InboxSize <= 0 {
		cfg.InboxSize = 256
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = TickInterval
	}
	if cfg.Rand == nil {
		cfg.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if metrics == nil {
		metrics = &RoomMetrics{}
	}
	return &Room{
		world:        NewWorld(cfg.Width, cfg.Height, cfg.Rand),
		sessions:     sessions,
		metrics:      metrics,
		inbox:        make(chan command, cfg.InboxSize),
		done:         make(chan struct{}),
		tickInterval: cfg.TickInterval,
	}
}

// SetName 提交名字（非阻塞）
func (r *Room) SetName(sid SessionID, name string) { r.submit(setNameCmd{SID: sid, Name: name}) }

// Input 记录方向意图，下一次 Tick 生效（非阻塞）
func (r *Room) Input(sid SessionID, dir Direction) { r.submit(inputCmd{SID: sid, Dir: dir}) }

// Retry 请求重开（非阻塞）
func (r *Room) Retry(sid SessionID) { r.submit(retryCmd{SID: sid}) }

// submit 不阻塞：收件箱满时丢弃，保证读协程与 Tick 准时
func (r *Room) submit(c command) {
	select {
	case r.inbox <- c:
	default:
		r.metrics.IncChanFullDiscarded()
		Log.Debugw("room inbox full, command dropped", "cmd", c)
	}
}

// RequestLeave 请求在房间协程中移除会话。为保证移除一定生效采用阻塞写入，房间停止后直接返回。
func (r *Room) RequestLeave(sid SessionID) {
	select {
	case r.inbox <- leaveCmd{SID: sid}:
	case <-r.done:
	}
}

// Snapshot 通过房间协程读取一致的世界快照
func (r *Room) Snapshot(ctx context.Context) (State, error) {
	reply := make(chan State, 1)
	select {
	case r.inbox <- snapshotCmd{Reply: reply}:
	case <-r.done:
		return State{}, ErrRoomStopped
	case <-ctx.Done():
		return State{}, ctx.Err()
	}
	select {
	case s := <-reply:
		return s, nil
	case <-r.done:
		return State{}, ErrRoomStopped
	case <-ctx.Done():
		return State{}, ctx.Err()
	}
}

// apply 执行一条指令。非法指令（观战者重开、无玩家输入等）静默忽略。
func (r *Room) apply(c command) {
	switch cmd := c.(type) {
	case setNameCmd:
		if _, ok := r.sessions.Lookup(cmd.SID); !ok {
			return
		}
		p, created, err := r.world.Join(cmd.SID, cmd.Name)
		if err != nil {
			r.metrics.IncNameRejected()
			Log.Infow("name rejected", "sid", cmd.SID, "err", err)
			return
		}
		if created {
			Log.Infow("session joined", "sid", cmd.SID, "name", p.Name, "slot", p.ID)
		}
		b, err := EncodeWelcome(cmd.SID, p.clone())
		if err != nil {
			Log.Errorw("encode welcome", "sid", cmd.SID, "err", err)
			return
		}
		r.sessions.Send(cmd.SID, b)

	case inputCmd:
		if r.world.SetDirection(cmd.SID, cmd.Dir) {
			r.metrics.IncAccepted()
		}

	case retryCmd:
		if r.world.Retry(cmd.SID) {
			Log.Infow("player retry", "sid", cmd.SID)
		}

	case leaveCmd:
		if r.world.Remove(cmd.SID) {
			Log.Infow("session left world", "sid", cmd.SID)
		}

	case snapshotCmd:
		cmd.Reply <- r.world.Snapshot()
	}
}

// ProcessInputs 处理当前帧之前积压的所有指令（非阻塞 drain）
func (r *Room) ProcessInputs() {
	for {
		select {
		case c := <-r.inbox:
			r.apply(c)
		default:
			return
		}
	}
}

// UpdateWorld 推进世界一个 Tick
func (r *Room) UpdateWorld() {
	r.tickSeq++
	if faults := r.world.Step(); faults > 0 {
		r.metrics.AddTickFaults(faults)
	}
	r.metrics.SetPopulation(r.world.Counts())
}

// Broadcast 将当前世界状态广播给所有在线会话（文本 JSON），投递失败互不影响
func (r *Room) Broadcast() {
	b, err := EncodeState(r.world.Snapshot())
	if err != nil {
		Log.Errorw("encode state", "tick", r.tickSeq, "err", err)
		return
	}
	r.metrics.AddBroadcast(r.sessions.Broadcast(b))
}

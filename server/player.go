package server

import (
	"fmt"
)

// SessionID 会话的不透明标识（每个连接一个）
type SessionID string

// Slot 模拟槽位：1、2 为玩家，0 为观战者
type Slot int

const (
	SlotSpectator Slot = 0
	SlotOne       Slot = 1
	SlotTwo       Slot = 2
)

// IsPlayer 是否占用模拟槽位
func (s Slot) IsPlayer() bool { return s == SlotOne || s == SlotTwo }

// Direction 移动方向（服务端权威解释客户端“意图”）
type Direction int

const (
	DirStop Direction = iota
	DirUp
	DirDown
	DirLeft
	DirRight
)

var dirNames = [...]string{"STOP", "UP", "DOWN", "LEFT", "RIGHT"}

func (d Direction) String() string {
	if d < DirStop || d > DirRight {
		return fmt.Sprintf("Direction(%d)", int(d))
	}
	return dirNames[d]
}

// MarshalText 以 "UP" 等字符串形式出现在 JSON 中
func (d Direction) MarshalText() ([]byte, error) {
	if d < DirStop || d > DirRight {
		return nil, fmt.Errorf("invalid direction %d", int(d))
	}
	return []byte(dirNames[d]), nil
}

func (d *Direction) UnmarshalText(b []byte) error {
	dir, ok := ParseDirection(string(b))
	if !ok {
		return fmt.Errorf("%w: %q", ErrBadDirection, string(b))
	}
	*d = dir
	return nil
}

// ParseDirection 解析方向字符串，只接受大写
func ParseDirection(s string) (Direction, bool) {
	switch s {
	case "STOP":
		return DirStop, true
	case "UP":
		return DirUp, true
	case "DOWN":
		return DirDown, true
	case "LEFT":
		return DirLeft, true
	case "RIGHT":
		return DirRight, true
	}
	return DirStop, false
}

// delta 每个 Tick 头部移动一格的偏移
func (d Direction) delta() (dx, dy int) {
	switch d {
	case DirUp:
		return 0, -1
	case DirDown:
		return 0, 1
	case DirLeft:
		return -1, 0
	case DirRight:
		return 1, 0
	}
	return 0, 0
}

// Point 网格坐标
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Player 世界中的实体（服务端权威状态）。观战者同样用该结构表示，Slot 为 0，从不参与模拟。
type Player struct {
	ID    Slot      `json:"id"`
	Name  string    `json:"name"`
	X     int       `json:"x"`
	Y     int       `json:"y"`
	Dir   Direction `json:"dir"`
	Tail  []Point   `json:"tail"`
	Alive bool      `json:"alive"`
	Score int       `json:"score"`
}

// Head 当前头部位置
func (p *Player) Head() Point { return Point{X: p.X, Y: p.Y} }

// clone 深拷贝，快照与世界状态不共享尾巴切片
func (p *Player) clone() *Player {
	cp := *p
	cp.Tail = make([]Point, len(p.Tail))
	copy(cp.Tail, p.Tail)
	return &cp
}

// LeaderboardEntry 排行榜条目（仅模拟槽位玩家）
type LeaderboardEntry struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

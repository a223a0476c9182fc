package server

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"unicode/utf8"
)

const (
	WorldWidth  = 60
	WorldHeight = 30

	FruitReward   = 10 // 吃到果子的固定奖励
	SurvivalBonus = 1  // 每个 Tick 存活奖励
	MaxNameLen    = 20 // 名字上限（按字符截断，属于策略而非错误）

	spawnInset = 5 // 出生点距边界的距离
	fruitInset = 2 // 果子距边界的距离
)

// ErrEmptyName 名字为空或全是空白
var ErrEmptyName = errors.New("empty name")

// World 权威世界状态：尺寸固定，所有修改都必须在房间的单一协程中执行
type World struct {
	Width  int
	Height int

	Players     map[SessionID]*Player
	Fruit       Point
	Leaderboard []LeaderboardEntry

	rng *rand.Rand
}

// State 广播给客户端的世界快照
type State struct {
	Width       int                   `json:"width"`
	Height      int                   `json:"height"`
	Players     map[SessionID]*Player `json:"players"`
	Leaderboard []LeaderboardEntry    `json:"leaderboard"`
	Fruit       Point                 `json:"fruit"`
}

// NewWorld 创建世界并随机放置第一个果子
func NewWorld(width, height int, rng *rand.Rand) *World {
	if width < 2*spawnInset+1 || height < 2*spawnInset+1 {
		panic(fmt.Sprintf("world %dx%d too small", width, height))
	}
	w := &World{
		Width:       width,
		Height:      height,
		Players:     make(map[SessionID]*Player),
		Leaderboard: []LeaderboardEntry{},
		rng:         rng,
	}
	w.Fruit = w.randomFruit()
	return w
}

// Join 处理名字提交：前两个会话占用槽位 1、2（取最小空闲槽），之后的都是观战者。
// 已有条目的会话重复提交时保持原条目不变，created 为 false。
func (w *World) Join(sid SessionID, name string) (p *Player, created bool, err error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, false, ErrEmptyName
	}
	if existing, ok := w.Players[sid]; ok {
		return existing, false, nil
	}
	name = truncateName(name)

	slot := w.freeSlot()
	if slot == SlotSpectator {
		p = &Player{ID: SlotSpectator, Name: name, Dir: DirStop, Tail: []Point{}}
	} else {
		p = &Player{ID: slot, Name: name}
		w.spawn(p)
	}
	w.Players[sid] = p
	return p, true, nil
}

// SetDirection 修改玩家的方向意图，下一个 Tick 生效；观战者或未知会话返回 false
func (w *World) SetDirection(sid SessionID, dir Direction) bool {
	p, ok := w.Players[sid]
	if !ok || !p.ID.IsPlayer() {
		return false
	}
	p.Dir = dir
	return true
}

// Retry 重置玩家的瞬态状态，保留槽位与名字；仅对占用模拟槽位的会话有效
func (w *World) Retry(sid SessionID) bool {
	p, ok := w.Players[sid]
	if !ok || !p.ID.IsPlayer() {
		return false
	}
	w.spawn(p)
	return true
}

// Remove 断线时立即移除条目，槽位随之释放，不保留重连身份
func (w *World) Remove(sid SessionID) bool {
	if _, ok := w.Players[sid]; !ok {
		return false
	}
	delete(w.Players, sid)
	return true
}

// Step 推进一个 Tick。单个玩家处理出错只影响该玩家，返回出错的玩家数。
func (w *World) Step() (faults int) {
	for _, sid := range w.simulationOrder() {
		if err := w.safeStepPlayer(w.Players[sid]); err != nil {
			faults++
			Log.Errorw("player step failed", "sid", sid, "err", err)
		}
	}
	w.Leaderboard = w.buildLeaderboard()
	return faults
}

func (w *World) safeStepPlayer(p *Player) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("recovered: %v", r)
		}
	}()
	w.stepPlayer(p)
	return nil
}

// stepPlayer 尾巴跟随 → 移动 → 边界 → 与他人碰撞 → 吃果子 → 存活奖励
func (w *World) stepPlayer(p *Player) {
	if !p.Alive {
		return
	}

	prev := p.Head()
	if n := len(p.Tail); n > 0 {
		copy(p.Tail[1:], p.Tail[:n-1])
		p.Tail[0] = prev
	}

	dx, dy := p.Dir.delta()
	p.X += dx
	p.Y += dy
	head := p.Head()

	if !w.InPlayable(head) {
		p.Alive = false
	}

	// 不检查撞到自己的尾巴
	for _, op := range w.Players {
		if op == p || !op.ID.IsPlayer() || !op.Alive {
			continue
		}
		if op.Head() == head {
			p.Alive = false
		}
		for _, seg := range op.Tail {
			if seg == head {
				p.Alive = false
			}
		}
	}

	if head == w.Fruit {
		p.Score += FruitReward
		// 新段落在当前头部；尾巴为空时落在移动前的头部
		seg := head
		if len(p.Tail) == 0 {
			seg = prev
		}
		p.Tail = append(p.Tail, seg)
		w.Fruit = w.randomFruit()
	}

	if p.Alive {
		p.Score += SurvivalBonus
	}
}

// InPlayable 是否位于内缩一格的可玩矩形 x∈[1,width-2], y∈[1,height-2]
func (w *World) InPlayable(pt Point) bool {
	return pt.X >= 1 && pt.X <= w.Width-2 && pt.Y >= 1 && pt.Y <= w.Height-2
}

// Snapshot 深拷贝当前世界，用于序列化
func (w *World) Snapshot() State {
	players := make(map[SessionID]*Player, len(w.Players))
	for sid, p := range w.Players {
		players[sid] = p.clone()
	}
	lb := make([]LeaderboardEntry, len(w.Leaderboard))
	copy(lb, w.Leaderboard)
	return State{
		Width:       w.Width,
		Height:      w.Height,
		Players:     players,
		Leaderboard: lb,
		Fruit:       w.Fruit,
	}
}

// Counts 玩家与观战者数量
func (w *World) Counts() (players, spectators int) {
	for _, p := range w.Players {
		if p.ID.IsPlayer() {
			players++
		} else {
			spectators++
		}
	}
	return players, spectators
}

// simulationOrder 按槽位顺序返回参与模拟的会话
func (w *World) simulationOrder() []SessionID {
	var bySlot [3]SessionID
	var found [3]bool
	for sid, p := range w.Players {
		if p.ID.IsPlayer() {
			bySlot[p.ID] = sid
			found[p.ID] = true
		}
	}
	order := make([]SessionID, 0, 2)
	for _, s := range []Slot{SlotOne, SlotTwo} {
		if found[s] {
			order = append(order, bySlot[s])
		}
	}
	return order
}

// buildLeaderboard 同分顺序取决于 map 遍历顺序，不做额外约定
func (w *World) buildLeaderboard() []LeaderboardEntry {
	lb := make([]LeaderboardEntry, 0, 2)
	for _, p := range w.Players {
		if !p.ID.IsPlayer() {
			continue
		}
		lb = append(lb, LeaderboardEntry{Name: p.Name, Score: p.Score})
	}
	sort.SliceStable(lb, func(i, j int) bool { return lb[i].Score > lb[j].Score })
	return lb
}

func (w *World) freeSlot() Slot {
	var taken [3]bool
	for _, p := range w.Players {
		if p.ID.IsPlayer() {
			taken[p.ID] = true
		}
	}
	for _, s := range []Slot{SlotOne, SlotTwo} {
		if !taken[s] {
			return s
		}
	}
	return SlotSpectator
}

// spawn 随机出生点，清空尾巴与分数
func (w *World) spawn(p *Player) {
	p.X = spawnInset + w.rng.Intn(w.Width-2*spawnInset)
	p.Y = spawnInset + w.rng.Intn(w.Height-2*spawnInset)
	p.Dir = DirStop
	p.Tail = []Point{}
	p.Alive = true
	p.Score = 0
}

// randomFruit 在内缩矩形中均匀取点，不考虑是否与蛇重叠
func (w *World) randomFruit() Point {
	return Point{
		X: fruitInset + w.rng.Intn(w.Width-2*fruitInset),
		Y: fruitInset + w.rng.Intn(w.Height-2*fruitInset),
	}
}

func truncateName(name string) string {
	if utf8.RuneCountInString(name) <= MaxNameLen {
		return name
	}
	return string([]rune(name)[:MaxNameLen])
}

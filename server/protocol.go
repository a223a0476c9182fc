package server

import (
	"encoding/json"
	"errors"
	"fmt"
)

// 消息类型（信封中的 type 字段）
const (
	MsgSetName     = "setName"
	MsgInput       = "input"
	MsgRetry       = "retry"
	MsgSignal      = "signal"
	MsgRequestName = "requestName"
	MsgWelcome     = "welcome"
	MsgState       = "state"
)

var (
	ErrEmptyMessage = errors.New("empty message")
	ErrUnknownType  = errors.New("unknown message type")
	ErrBadDirection = errors.New("bad direction")
)

// Inbound 客户端发来的消息，只有本文件中的类型实现它
type Inbound interface{ isInbound() }

// SetName 提交显示名
type SetName struct {
	Name string `json:"name"`
}

// InputMessage 方向输入，只接受 UP/DOWN/LEFT/RIGHT
type InputMessage struct {
	Dir Direction `json:"dir"`
}

// Retry 死亡后重开
type Retry struct{}

// Signal 发往另一个会话的握手数据，服务端不解析 data
type Signal struct {
	Target SessionID       `json:"target"`
	Data   json.RawMessage `json:"data"`
}

func (SetName) isInbound()      {}
func (InputMessage) isInbound() {}
func (Retry) isInbound()        {}
func (Signal) isInbound()       {}

type envelope struct {
	Type string `json:"type"`
}

// DecodeInbound 解析一条入站 JSON 文本消息
func DecodeInbound(b []byte) (Inbound, error) {
	if len(b) == 0 {
		return nil, ErrEmptyMessage
	}
	var env envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}

	switch env.Type {
	case MsgSetName:
		return decodeAs[SetName](env.Type, b)
	case MsgInput:
		m, err := decodeAs[InputMessage](env.Type, b)
		if err != nil {
			return nil, err
		}
		if m.Dir == DirStop {
			return nil, fmt.Errorf("%w: STOP is not an input", ErrBadDirection)
		}
		return m, nil
	case MsgRetry:
		return Retry{}, nil
	case MsgSignal:
		return decodeAs[Signal](env.Type, b)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, env.Type)
	}
}

func decodeAs[T Inbound](t string, b []byte) (T, error) {
	var out T
	if err := json.Unmarshal(b, &out); err != nil {
		return out, fmt.Errorf("decode %s: %w", t, err)
	}
	return out, nil
}

type requestNameMessage struct {
	Type string `json:"type"`
}

type welcomeMessage struct {
	Type   string    `json:"type"`
	SID    SessionID `json:"sid"`
	Player *Player   `json:"player"`
}

type stateMessage struct {
	Type  string `json:"type"`
	State State  `json:"state"`
}

type signalMessage struct {
	Type string          `json:"type"`
	From SessionID       `json:"from"`
	Data json.RawMessage `json:"data"`
}

// EncodeRequestName 连接建立后立刻发送，要求客户端提交名字
func EncodeRequestName() ([]byte, error) {
	return json.Marshal(requestNameMessage{Type: MsgRequestName})
}

func EncodeWelcome(sid SessionID, p *Player) ([]byte, error) {
	if p == nil {
		return nil, fmt.Errorf("welcome for %s without player", sid)
	}
	return json.Marshal(welcomeMessage{Type: MsgWelcome, SID: sid, Player: p})
}

func EncodeState(s State) ([]byte, error) {
	return json.Marshal(stateMessage{Type: MsgState, State: s})
}

func EncodeSignal(from SessionID, data json.RawMessage) ([]byte, error) {
	if len(data) == 0 {
		data = json.RawMessage("null")
	}
	return json.Marshal(signalMessage{Type: MsgSignal, From: from, Data: data})
}

package server

import (
	"sync"

	"github.com/google/uuid"
)

// Conn 会话的发送端。Enqueue 不得阻塞，返回 false 表示消息被丢弃。
type Conn interface {
	Enqueue(b []byte) bool
	Close()
}

// Session 一个在线连接
type Session struct {
	ID   SessionID
	Conn Conn
}

// SessionManager 管理在线会话。信令转发与广播只读它，世界状态只由房间协程修改。
type SessionManager struct {
	mu       sync.RWMutex
	sessions map[SessionID]*Session
}

func NewSessionManager() *SessionManager {
	return &SessionManager{sessions: make(map[SessionID]*Session)}
}

// Open 为新连接分配 ID 并登记
func (m *SessionManager) Open(conn Conn) *Session {
	s := &Session{ID: SessionID(uuid.NewString()), Conn: conn}
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	return s
}

// Close 注销会话并关闭连接；此后发往它的消息都会被丢弃
func (m *SessionManager) Close(id SessionID) bool {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if !ok {
		return false
	}
	s.Conn.Close()
	return true
}

func (m *SessionManager) Lookup(id SessionID) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Send 向单个会话投递；会话不存在或队列满时返回 false
func (m *SessionManager) Send(id SessionID, b []byte) bool {
	s, ok := m.Lookup(id)
	if !ok {
		return false
	}
	return s.Conn.Enqueue(b)
}

// Broadcast 尽力投递给所有在线会话，单个会话失败不影响其他会话
func (m *SessionManager) Broadcast(b []byte) (delivered, dropped int) {
	m.mu.RLock()
	targets := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		targets = append(targets, s)
	}
	m.mu.RUnlock()

	for _, s := range targets {
		if s.Conn.Enqueue(b) {
			delivered++
		} else {
			dropped++
		}
	}
	return delivered, dropped
}

func (m *SessionManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

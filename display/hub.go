package display

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/tsinghua-fib-lab/roadrage-sim/engine"
)

var log = logrus.WithField("module", "display")

const writeWait = time.Second // 单次写入超时

// message 推送给显示层的消息
type message struct {
	Type     string           `json:"type"` // "snapshot"
	Snapshot *engine.Snapshot `json:"snapshot"`
}

// Hub 显示层适配器
// 功能：通过websocket向所有连接推送引擎快照
// 说明：新连接先收到最近一次快照，之后每步收到一条消息；客户端发来的消息被忽略
type Hub struct {
	upgrader websocket.Upgrader

	mu    sync.Mutex
	conns map[*websocket.Conn]*sync.Mutex // 连接 -> 写锁
	last  []byte                          // 最近一次快照
}

// NewHub 创建显示层适配器
func NewHub() *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		conns: make(map[*websocket.Conn]*sync.Mutex),
	}
}

// Publish 推送快照，作为引擎订阅回调使用
func (h *Hub) Publish(s *engine.Snapshot) {
	data, err := json.Marshal(message{Type: "snapshot", Snapshot: s})
	if err != nil {
		log.Errorf("failed to marshal snapshot at tick %d: %v", s.Tick, err)
		return
	}
	h.mu.Lock()
	h.last = data
	conns := make(map[*websocket.Conn]*sync.Mutex, len(h.conns))
	for conn, lock := range h.conns {
		conns[conn] = lock
	}
	h.mu.Unlock()

	for conn, lock := range conns {
		if err := write(conn, lock, data); err != nil {
			log.Debugf("drop connection %v: %v", conn.RemoteAddr(), err)
			h.remove(conn)
		}
	}
}

// Len 当前连接数
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

// Handle websocket入口
func (h *Hub) Handle(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warnf("upgrade failed for %v: %v", r.RemoteAddr, err)
		return
	}
	// 持有写锁直到首条快照写完，保证之后的推送不会早于它
	lock := &sync.Mutex{}
	lock.Lock()
	h.mu.Lock()
	last := h.last
	h.conns[conn] = lock
	h.mu.Unlock()
	log.Infof("display connected: %v", conn.RemoteAddr())

	if last != nil {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		err = conn.WriteMessage(websocket.TextMessage, last)
	}
	lock.Unlock()
	if err != nil {
		h.remove(conn)
		return
	}
	// 读循环仅用于感知断开
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			h.remove(conn)
			log.Infof("display disconnected: %v", conn.RemoteAddr())
			return
		}
	}
}

// Handler 返回挂载了/ws的HTTP处理器
func (h *Hub) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", h.Handle)
	return mux
}

func (h *Hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	_, ok := h.conns[conn]
	delete(h.conns, conn)
	h.mu.Unlock()
	if ok {
		conn.Close()
	}
}

func write(conn *websocket.Conn, lock *sync.Mutex, data []byte) error {
	lock.Lock()
	defer lock.Unlock()
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteMessage(websocket.TextMessage, data)
}

package service

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Message 是 WebSocket 傳輸的訊息封包。
// 客戶端送進來的事件與伺服器廣播出去的通知共用同一個結構
type Message struct {
	Type     string      `json:"type"`
	RoomCode string      `json:"room_code,omitempty"`
	Choice   string      `json:"choice,omitempty"`
	UserID   uint        `json:"user_id,omitempty"`
	Payload  interface{} `json:"payload,omitempty"`
	Error    string      `json:"error,omitempty"`
}

// Client 代表一個 WebSocket 客戶端連接
type Client struct {
	Conn     *websocket.Conn // WebSocket 連接
	UserID   uint            // 用戶 ID
	Group    string          // 廣播群組，這裡是房號
	SendChan chan *Message   // 消息發送通道，用於異步傳送消息
}

// WebSocketManager 管理所有的 WebSocket 連接和群組廣播。
// 群組以名稱為鍵（房號），引擎的權威狀態改變之後才廣播
type WebSocketManager struct {
	clients    map[string]map[*Client]bool // 兩層 map: group -> client -> bool
	clientsMux sync.RWMutex                // 用於保護 clients map 的讀寫鎖
}

// NewWebSocketManager 創建並初始化新的 WebSocket 管理器
func NewWebSocketManager() *WebSocketManager {
	return &WebSocketManager{
		clients: make(map[string]map[*Client]bool),
	}
}

// HandleConnection 接手一條新的 WebSocket 連接，
// 收到的每個事件交給 onMessage 處理；函數在連接關閉時返回
func (m *WebSocketManager) HandleConnection(conn *websocket.Conn, userID uint, group string, onMessage func(*Client, *Message)) {
	client := &Client{
		Conn:     conn,
		UserID:   userID,
		Group:    group,
		SendChan: make(chan *Message, 256), // 設置緩衝大小為 256 的消息通道
	}

	m.addClient(client)

	// 確保連接關閉時清理資源
	defer func() {
		m.removeClient(client)
		conn.Close()
		close(client.SendChan)
	}()

	// 啟動讀寫處理
	go m.writePump(client)
	m.readPump(client, onMessage)
}

// readPump 持續監聽並處理從客戶端接收的消息
func (m *WebSocketManager) readPump(client *Client, onMessage func(*Client, *Message)) {
	client.Conn.SetReadLimit(4096) // 設置最大消息大小為 4KB
	client.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	client.Conn.SetPongHandler(func(string) error {
		client.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, data, err := client.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("websocket unexpected close error: %v", err)
			}
			break
		}

		// 解析接收到的消息
		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Printf("message parse error: %v", err)
			continue
		}

		msg.UserID = client.UserID
		onMessage(client, &msg)
	}
}

// writePump 處理向客戶端發送消息的邏輯
func (m *WebSocketManager) writePump(client *Client) {
	// 設置心跳檢查計時器
	ticker := time.NewTicker(54 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case message, ok := <-client.SendChan:
			// 設置寫入超時
			client.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				client.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			messageBytes, err := json.Marshal(message)
			if err != nil {
				log.Printf("message encoding error: %v", err)
				continue
			}

			if err := client.Conn.WriteMessage(websocket.TextMessage, messageBytes); err != nil {
				return
			}

		case <-ticker.C:
			// 發送心跳包
			client.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := client.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Broadcast 向群組內的所有客戶端廣播消息
func (m *WebSocketManager) Broadcast(group string, message *Message) {
	m.clientsMux.RLock()
	clients := m.clients[group]
	targets := make([]*Client, 0, len(clients))
	for client := range clients {
		targets = append(targets, client)
	}
	m.clientsMux.RUnlock()

	for _, client := range targets {
		m.Send(client, message)
	}
}

// Send 向單一客戶端發送消息；發送隊列滿了就斷開該客戶端
func (m *WebSocketManager) Send(client *Client, message *Message) {
	select {
	case client.SendChan <- message:
		// 消息成功加入發送隊列
	default:
		m.removeClient(client)
		client.Conn.Close()
	}
}

// addClient 安全地添加新的客戶端連接
func (m *WebSocketManager) addClient(client *Client) {
	m.clientsMux.Lock()
	defer m.clientsMux.Unlock()

	if m.clients[client.Group] == nil {
		m.clients[client.Group] = make(map[*Client]bool)
	}
	m.clients[client.Group][client] = true
}

// removeClient 安全地移除客戶端連接
func (m *WebSocketManager) removeClient(client *Client) {
	m.clientsMux.Lock()
	defer m.clientsMux.Unlock()

	if clients, ok := m.clients[client.Group]; ok {
		delete(clients, client)
		// 如果群組空了，刪除群組
		if len(clients) == 0 {
			delete(m.clients, client.Group)
		}
	}
}

// GroupSize 獲取指定群組的在線客戶端數量
func (m *WebSocketManager) GroupSize(group string) int {
	m.clientsMux.RLock()
	defer m.clientsMux.RUnlock()

	return len(m.clients[group])
}

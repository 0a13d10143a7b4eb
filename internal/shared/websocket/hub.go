package websocket

import (
	"context"
	"time"

	"github.com/cristianortiz/auctionlifecycle/internal/shared/logger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var log = logger.GetLogger()

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 1024

	sendBuffer    = 64
	controlBuffer = 256
)

// Hub keeps the clients of every room and fans messages out to them. The clients map is owned by
// the Run goroutine, every other method talks to it through channels.
type Hub struct {
	// room -> set of clients
	rooms map[string]map[*Client]struct{}

	broadcast  chan *Message
	direct     chan *directMessage
	sizes      chan sizeRequest
	register   chan *Client
	unregister chan *Client

	// InboundMessages is consumed by module handlers (e.g. the auction bid handler).
	InboundMessages chan *ClientMessage
}

// Client is one websocket connection joined to a room.
type Client struct {
	Hub  *Hub
	Conn *websocket.Conn
	// Send is the buffered queue of outbound frames, closed by the hub on unregister.
	Send       chan []byte
	Room       string
	ID         string
	RemoteAddr string
}

type Message struct {
	Room string
	Data []byte
}

type directMessage struct {
	client *Client
	data   []byte
}

type sizeRequest struct {
	room  string
	reply chan int
}

// ClientMessage pairs an inbound frame with the client that sent it.
type ClientMessage struct {
	Client *Client
	Data   []byte
}

func NewHub() *Hub {
	return &Hub{
		rooms:           make(map[string]map[*Client]struct{}),
		broadcast:       make(chan *Message, controlBuffer),
		direct:          make(chan *directMessage, controlBuffer),
		sizes:           make(chan sizeRequest),
		register:        make(chan *Client, controlBuffer),
		unregister:      make(chan *Client, controlBuffer),
		InboundMessages: make(chan *ClientMessage, controlBuffer),
	}
}

// NewClient builds a client for room. conn may be nil for clients that are not backed by a socket.
func (h *Hub) NewClient(conn *websocket.Conn, room, remoteAddr string) *Client {
	return &Client{
		Hub:        h,
		Conn:       conn,
		Send:       make(chan []byte, sendBuffer),
		Room:       room,
		ID:         uuid.NewString(),
		RemoteAddr: remoteAddr,
	}
}

// Run serves register, unregister and broadcast requests until ctx is done, then closes every
// client's Send channel so their write pumps say goodbye.
func (h *Hub) Run(ctx context.Context) {
	log.Info("websocket hub started")
	for {
		select {
		case <-ctx.Done():
			for room, clients := range h.rooms {
				for client := range clients {
					close(client.Send)
				}
				delete(h.rooms, room)
			}
			log.Info("websocket hub stopped")
			return

		case client := <-h.register:
			if _, ok := h.rooms[client.Room]; !ok {
				h.rooms[client.Room] = make(map[*Client]struct{})
			}
			h.rooms[client.Room][client] = struct{}{}
			log.Info("client joined room",
				zap.String("clientID", client.ID),
				zap.String("room", client.Room),
				zap.String("remote_addr", client.RemoteAddr),
				zap.Int("room_clients", len(h.rooms[client.Room])),
			)

		case client := <-h.unregister:
			h.remove(client, "client left room")

		case req := <-h.sizes:
			req.reply <- len(h.rooms[req.room])

		case msg := <-h.direct:
			if _, ok := h.rooms[msg.client.Room][msg.client]; !ok {
				continue
			}
			select {
			case msg.client.Send <- msg.data:
			default:
				h.remove(msg.client, "client too slow, dropped from room")
			}

		case message := <-h.broadcast:
			clients := h.rooms[message.Room]
			log.Debug("broadcasting to room", zap.String("room", message.Room), zap.Int("clients", len(clients)))
			for client := range clients {
				select {
				case client.Send <- message.Data:
				default:
					h.remove(client, "client too slow, dropped from room")
				}
			}
		}
	}
}

// remove drops client from its room and closes its Send channel. Must run on the Run goroutine.
func (h *Hub) remove(client *Client, reason string) {
	clients, ok := h.rooms[client.Room]
	if !ok {
		return
	}
	if _, ok := clients[client]; !ok {
		return
	}
	delete(clients, client)
	close(client.Send)
	if len(clients) == 0 {
		delete(h.rooms, client.Room)
	}
	log.Info(reason,
		zap.String("clientID", client.ID),
		zap.String("room", client.Room),
		zap.String("remote_addr", client.RemoteAddr),
	)
}

func (h *Hub) RegisterClient(client *Client) {
	select {
	case h.register <- client:
	default:
		log.Error("register queue full, closing client",
			zap.String("clientID", client.ID),
			zap.String("room", client.Room),
		)
		if client.Conn != nil {
			_ = client.Conn.Close()
		}
	}
}

func (h *Hub) UnregisterClient(client *Client) {
	select {
	case h.unregister <- client:
	default:
		log.Error("unregister queue full",
			zap.String("clientID", client.ID),
			zap.String("room", client.Room),
		)
	}
}

// BroadcastToRoom queues data for every client in room. It never blocks, a full queue drops data.
func (h *Hub) BroadcastToRoom(room string, data []byte) bool {
	select {
	case h.broadcast <- &Message{Room: room, Data: data}:
		return true
	default:
		log.Error("broadcast queue full, message dropped", zap.String("room", room))
		return false
	}
}

// RoomSize reports how many clients are joined to room. It needs Run to be serving.
func (h *Hub) RoomSize(ctx context.Context, room string) (int, error) {
	req := sizeRequest{room: room, reply: make(chan int, 1)}
	select {
	case h.sizes <- req:
	case <-ctx.Done():
		return 0, ctx.Err()
	}
	select {
	case n := <-req.reply:
		return n, nil
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

// SendToClient queues data for a single client. Delivery happens on the hub goroutine, so it never
// races the hub closing the client's Send channel.
func (h *Hub) SendToClient(client *Client, data []byte) bool {
	select {
	case h.direct <- &directMessage{client: client, data: data}:
		return true
	default:
		log.Error("direct queue full, message dropped", zap.String("clientID", client.ID))
		return false
	}
}

// Handler upgrades requests into room clients, the room is read from the route param.
// Requests that are not websocket upgrades are answered with 426.
func (h *Hub) Handler(ctx context.Context, param string) fiber.Handler {
	serve := websocket.New(func(conn *websocket.Conn) {
		remote, _ := conn.Locals("remote_addr").(string)
		client := h.NewClient(conn, conn.Params(param), remote)
		h.RegisterClient(client)

		go client.WritePump(ctx)
		client.ReadPump(ctx)
	})
	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		c.Locals("remote_addr", c.IP())
		return serve(c)
	}
}

// ReadPump forwards inbound frames to Hub.InboundMessages until the peer goes away.
// It runs on the connection's handler goroutine.
func (c *Client) ReadPump(ctx context.Context) {
	defer func() {
		c.Hub.UnregisterClient(c)
		_ = c.Conn.Close()
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if ctx.Err() != nil {
			return
		}
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn("websocket read error",
					zap.String("clientID", c.ID),
					zap.String("room", c.Room),
					zap.String("remote_addr", c.RemoteAddr),
					zap.Error(err),
				)
			}
			return
		}

		select {
		case c.Hub.InboundMessages <- &ClientMessage{Client: c, Data: message}:
		default:
			log.Error("inbound queue full, message dropped",
				zap.String("clientID", c.ID),
				zap.String("room", c.Room),
			)
		}
	}
}

// WritePump writes queued frames and keepalive pings. It is the only writer of the connection.
func (c *Client) WritePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Conn.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			_ = c.Conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
				time.Now().Add(writeWait))
			return

		case message, ok := <-c.Send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Warn("websocket write failed",
					zap.String("clientID", c.ID),
					zap.String("room", c.Room),
					zap.Error(err),
				)
				return
			}

		case <-ticker.C:
			if err := c.Conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

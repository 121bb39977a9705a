package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/abrezinsky/snapchaos/internal/errors"
	"github.com/abrezinsky/snapchaos/internal/models"
)

// Client is a middleman between the websocket connection and the hub.
// Its id doubles as the player id in whatever room it joins.
type Client struct {
	hub     *Hub
	conn    *websocket.Conn
	id      string
	send    chan models.WSMessage
	limiter *rate.Limiter

	room string // guarded by hub.mutex

	kickOnce sync.Once
}

// kick closes the connection; readPump then unregisters the client
func (c *Client) kick() {
	c.kickOnce.Do(func() {
		c.conn.Close()
	})
}

// readPump pumps messages from the websocket connection to the hub
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister(c)
		c.kick()
	}()

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.Debug("WebSocket error", "client", c.id, "error", err)
			}
			break
		}
		c.handle(message)
	}
}

// handle decodes one frame, dispatches it and acknowledges it
func (c *Client) handle(message []byte) {
	var in models.Inbound
	if err := json.Unmarshal(message, &in); err != nil {
		c.reply(models.NewErrorAck(0, errors.InvalidPayload("malformed frame")))
		return
	}

	if !c.limiter.Allow() {
		c.hub.log.Debug("Event rate limited", "client", c.id, "event", in.Event)
		if in.ID != 0 {
			c.reply(models.NewErrorAck(in.ID, errors.RateLimited()))
		}
		return
	}

	ack, err := c.hub.dispatch(c, in)
	if err != nil {
		if errors.KindOf(err) == errors.ErrInternal {
			c.hub.log.Error("Event failed", "client", c.id, "event", in.Event, "error", err)
		} else {
			c.hub.log.Debug("Event rejected", "client", c.id, "event", in.Event, "error", err)
		}
		ack = models.NewErrorAck(in.ID, err)
	} else {
		ack.ID = in.ID
		ack.OK = true
	}

	if in.ID != 0 {
		c.reply(ack)
	}
}

func (c *Client) reply(ack models.Ack) {
	c.hub.sendTo(c, models.WSMessage{Type: models.TypeAck, Payload: ack})
}

// writePump pumps messages from the hub to the websocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.kick()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			msgBytes, err := json.Marshal(message)
			if err != nil {
				c.hub.log.Error("Failed to encode message", "type", message.Type, "error", err)
				continue
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msgBytes); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

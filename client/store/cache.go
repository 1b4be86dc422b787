package store

import (
	"time"

	"github.com/tugrulsicakyuz/mobile-delivy/client/model"
)

const DefaultRetention = 3 * time.Hour

// Cache is the read-through copy of server state used when the network is not.
type Cache struct {
	kv        *KV
	Retention time.Duration
	now       func() time.Time
}

func NewCache(kv *KV, retention time.Duration) *Cache {
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &Cache{kv: kv, Retention: retention, now: time.Now}
}

func ordersKey(actorID string, role model.Role) string {
	return prefixOrders + actorID + ":" + string(role)
}

func messagesKey(orderID string, chatType model.ChatType) string {
	return prefixMessages + orderID + ":" + string(chatType)
}

func (c *Cache) SaveOrders(actorID string, role model.Role, orders []model.Order) error {
	return c.kv.Put(ordersKey(actorID, role), orders)
}

func (c *Cache) LoadOrders(actorID string, role model.Role) ([]model.Order, error) {
	var orders []model.Order
	_, err := c.kv.Get(ordersKey(actorID, role), &orders)
	return orders, err
}

func (c *Cache) SaveMenu(restaurantID string, items []model.MenuItem) error {
	return c.kv.Put(prefixMenu+restaurantID, items)
}

func (c *Cache) LoadMenu(restaurantID string) ([]model.MenuItem, error) {
	var items []model.MenuItem
	_, err := c.kv.Get(prefixMenu+restaurantID, &items)
	return items, err
}

// SaveMessages stores the retained part of msgs.
func (c *Cache) SaveMessages(orderID string, chatType model.ChatType, msgs []model.Message) error {
	return c.kv.Put(messagesKey(orderID, chatType), c.retain(msgs))
}

// LoadMessages returns cached messages inside the retention window, in the stored order.
// Anything that aged out is pruned from storage as a side effect.
func (c *Cache) LoadMessages(orderID string, chatType model.ChatType) ([]model.Message, error) {
	var msgs []model.Message
	if _, err := c.kv.Get(messagesKey(orderID, chatType), &msgs); err != nil {
		return nil, err
	}
	kept := c.retain(msgs)
	if len(kept) != len(msgs) {
		if err := c.kv.Put(messagesKey(orderID, chatType), kept); err != nil {
			return kept, err
		}
	}
	return kept, nil
}

func (c *Cache) retain(msgs []model.Message) []model.Message {
	cutoff := c.now().Add(-c.Retention)
	kept := make([]model.Message, 0, len(msgs))
	for _, m := range msgs {
		if m.Timestamp.After(cutoff) {
			kept = append(kept, m)
		}
	}
	return kept
}

// readMark is the newest server message a viewer has seen. Seq comes from the server,
// so the device clock plays no part in what counts as read.
type readMark struct {
	Seq int64  `json:"seq"`
	ID  string `json:"id,omitempty"`
}

func readKey(orderID string, chatType model.ChatType, viewerID string) string {
	return prefixRead + viewerID + ":" + orderID + ":" + string(chatType)
}

// MarkRead records that viewer has seen every cached message of the conversation.
func (c *Cache) MarkRead(orderID string, chatType model.ChatType, viewerID string) error {
	msgs, err := c.LoadMessages(orderID, chatType)
	if err != nil {
		return err
	}
	var mark readMark
	if _, err := c.kv.Get(readKey(orderID, chatType, viewerID), &mark); err != nil {
		return err
	}
	for _, m := range msgs {
		if m.Seq > mark.Seq {
			mark.Seq = m.Seq
		}
	}
	if len(msgs) > 0 {
		mark.ID = msgs[len(msgs)-1].ID
	}
	return c.kv.Put(readKey(orderID, chatType, viewerID), mark)
}

// UnreadCount counts cached messages from someone other than viewer past the last
// MarkRead. Messages without a seq are placed by their position after the marked id.
func (c *Cache) UnreadCount(orderID string, chatType model.ChatType, viewerID string) (int, error) {
	msgs, err := c.LoadMessages(orderID, chatType)
	if err != nil {
		return 0, err
	}
	var mark readMark
	if _, err := c.kv.Get(readKey(orderID, chatType, viewerID), &mark); err != nil {
		return 0, err
	}
	afterMark := mark.ID == ""
	n := 0
	for _, m := range msgs {
		unread := m.Seq > mark.Seq
		if m.Seq == 0 {
			unread = afterMark
		}
		if m.SenderID != viewerID && unread {
			n++
		}
		if m.ID == mark.ID {
			afterMark = true
		}
	}
	return n, nil
}

// Export renders the cached history as text, one line per message.
func (c *Cache) Export(orderID string, chatType model.ChatType, viewerID string) (string, error) {
	msgs, err := c.LoadMessages(orderID, chatType)
	if err != nil {
		return "", err
	}
	return FormatTranscript(msgs, viewerID), nil
}

func FormatTranscript(msgs []model.Message, viewerID string) string {
	var out []byte
	for i, m := range msgs {
		if i > 0 {
			out = append(out, '\n')
		}
		who := "Other"
		if m.SenderID == viewerID {
			who = "You"
		}
		out = append(out, '[')
		out = m.Timestamp.Local().AppendFormat(out, time.DateTime)
		out = append(out, "] "+who+": "+m.Content...)
	}
	return string(out)
}

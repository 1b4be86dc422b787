package store

import (
	"strings"
	"testing"
	"time"

	"github.com/tugrulsicakyuz/mobile-delivy/apperr"
	"github.com/tugrulsicakyuz/mobile-delivy/client/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openKV(t *testing.T) *KV {
	t.Helper()
	kv, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { kv.Close() })
	return kv
}

var (
	burger = model.MenuItem{ID: "burger", RestaurantID: "r1", Name: "Burger", Price: 9.99, IsAvailable: true}
	fries  = model.MenuItem{ID: "fries", RestaurantID: "r1", Name: "Fries", Price: 3.5, IsAvailable: true}
	pizza  = model.MenuItem{ID: "pizza", RestaurantID: "r2", Name: "Pizza", Price: 12, IsAvailable: true}
)

func TestKV_PutOverwrites(t *testing.T) {
	kv := openKV(t)

	require.NoError(t, kv.Put("k", "one"))
	require.NoError(t, kv.Put("k", "two"))

	var got string
	ok, err := kv.Get("k", &got)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "two", got)

	ok, err = kv.Get("missing", &got)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestIdentityStore_Login(t *testing.T) {
	tests := []struct {
		name          string
		identity      model.Identity
		expectedError error
	}{
		{name: "customer", identity: model.Identity{FullName: "Ada", Role: model.RoleCustomer}},
		{name: "courier with vehicle", identity: model.Identity{FullName: "Cora", Role: model.RoleCourier, VehicleInfo: "bike"}},
		{name: "courier without vehicle", identity: model.Identity{FullName: "Cora", Role: model.RoleCourier}, expectedError: apperr.ErrValidation},
		{name: "blank name", identity: model.Identity{FullName: "  ", Role: model.RoleCustomer}, expectedError: apperr.ErrValidation},
		{name: "unknown role", identity: model.Identity{FullName: "Ada", Role: "ADMIN"}, expectedError: apperr.ErrValidation},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			ids := NewIdentityStore(openKV(t))

			got, err := ids.Login(testCase.identity)

			if testCase.expectedError != nil {
				assert.ErrorIs(t, err, testCase.expectedError)
				current, err := ids.Current()
				require.NoError(t, err)
				assert.Nil(t, current)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, got.ID)
			current, err := ids.Current()
			require.NoError(t, err)
			assert.Equal(t, got, current)
		})
	}
}

func TestIdentityStore_LoginGeneratesFreshIDs(t *testing.T) {
	ids := NewIdentityStore(openKV(t))

	a, err := ids.Login(model.Identity{FullName: "Ada", Role: model.RoleCustomer})
	require.NoError(t, err)
	b, err := ids.Login(model.Identity{FullName: "Ada", Role: model.RoleCustomer})
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
}

func TestIdentityStore_LogoutClearsEverything(t *testing.T) {
	kv := openKV(t)
	ids := NewIdentityStore(kv)
	cart := NewCartStore(kv)
	cache := NewCache(kv, 0)

	me, err := ids.Login(model.Identity{FullName: "Ada", Role: model.RoleCustomer})
	require.NoError(t, err)
	_, err = cart.AddItem(burger, "Grill", 1, nil)
	require.NoError(t, err)
	require.NoError(t, cache.SaveOrders(me.ID, me.Role, []model.Order{{ID: "o1"}}))
	require.NoError(t, cache.SaveMenu("r1", []model.MenuItem{burger}))
	require.NoError(t, cache.SaveMessages("o1", model.ChatRestaurant, []model.Message{{ID: "m1", Timestamp: time.Now()}}))

	require.NoError(t, ids.Logout())

	current, err := ids.Current()
	require.NoError(t, err)
	assert.Nil(t, current)
	lines, _ := cart.Lines()
	assert.Empty(t, lines)
	orders, _ := cache.LoadOrders(me.ID, me.Role)
	assert.Empty(t, orders)
	menu, _ := cache.LoadMenu("r1")
	assert.Empty(t, menu)
	msgs, _ := cache.LoadMessages("o1", model.ChatRestaurant)
	assert.Empty(t, msgs)
}

func TestCartStore_AddItem(t *testing.T) {
	cart := NewCartStore(openKV(t))

	added, err := cart.AddItem(burger, "Grill", 1, nil)
	require.NoError(t, err)
	assert.True(t, added)
	_, err = cart.AddItem(burger, "Grill", 1, nil)
	require.NoError(t, err)
	_, err = cart.AddItem(fries, "Grill", 1, nil)
	require.NoError(t, err)

	lines, err := cart.Lines()
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, 2, lines[0].Quantity)

	total, err := cart.Total()
	require.NoError(t, err)
	assert.InDelta(t, 23.48, total, 1e-9)
}

func TestCartStore_AddItemValidation(t *testing.T) {
	cart := NewCartStore(openKV(t))
	soldOut := burger
	soldOut.IsAvailable = false
	free := burger
	free.Price = 0

	for name, add := range map[string]func() (bool, error){
		"zero quantity": func() (bool, error) { return cart.AddItem(burger, "Grill", 0, nil) },
		"unavailable":   func() (bool, error) { return cart.AddItem(soldOut, "Grill", 1, nil) },
		"no price":      func() (bool, error) { return cart.AddItem(free, "Grill", 1, nil) },
	} {
		added, err := add()
		assert.False(t, added, name)
		assert.ErrorIs(t, err, apperr.ErrValidation, name)
	}
	lines, _ := cart.Lines()
	assert.Empty(t, lines)
}

func TestCartStore_DifferentRestaurant(t *testing.T) {
	tests := []struct {
		name      string
		confirm   ConfirmReplace
		wantAdded bool
		wantLines []string
	}{
		{
			name:      "cancel leaves cart unchanged",
			confirm:   func(string) bool { return false },
			wantAdded: false,
			wantLines: []string{"burger", "fries"},
		},
		{
			name:      "no prompt counts as cancel",
			confirm:   nil,
			wantAdded: false,
			wantLines: []string{"burger", "fries"},
		},
		{
			name:      "confirm replaces entirely",
			confirm:   func(current string) bool { return current == "Grill" },
			wantAdded: true,
			wantLines: []string{"pizza"},
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			cart := NewCartStore(openKV(t))
			_, err := cart.AddItem(burger, "Grill", 1, nil)
			require.NoError(t, err)
			_, err = cart.AddItem(fries, "Grill", 2, nil)
			require.NoError(t, err)

			added, err := cart.AddItem(pizza, "Pizzeria", 1, testCase.confirm)

			require.NoError(t, err)
			assert.Equal(t, testCase.wantAdded, added)
			lines, err := cart.Lines()
			require.NoError(t, err)
			var ids []string
			for _, l := range lines {
				ids = append(ids, l.ItemID)
			}
			assert.Equal(t, testCase.wantLines, ids)
		})
	}
}

func TestCartStore_SetQuantityAndClear(t *testing.T) {
	cart := NewCartStore(openKV(t))
	_, _ = cart.AddItem(burger, "Grill", 1, nil)
	_, _ = cart.AddItem(fries, "Grill", 1, nil)

	require.NoError(t, cart.SetQuantity("burger", 3))
	require.NoError(t, cart.Remove("fries"))

	lines, err := cart.Lines()
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 3, lines[0].Quantity)

	require.NoError(t, cart.Clear())
	lines, _ = cart.Lines()
	assert.Empty(t, lines)
}

func TestCache_MessagesRetention(t *testing.T) {
	cache := NewCache(openKV(t), time.Hour)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }

	msgs := []model.Message{
		{ID: "old", Timestamp: now.Add(-2 * time.Hour)},
		{ID: "a", Timestamp: now.Add(-30 * time.Minute)},
		{ID: "b", Timestamp: now.Add(-10 * time.Minute)},
	}
	require.NoError(t, cache.SaveMessages("o1", model.ChatCourier, msgs))

	got, err := cache.LoadMessages("o1", model.ChatCourier)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "b", got[1].ID)

	now = now.Add(45 * time.Minute)
	got, err = cache.LoadMessages("o1", model.ChatCourier)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "b", got[0].ID)
}

func TestCache_UnreadAndExport(t *testing.T) {
	cache := NewCache(openKV(t), 0)
	now := time.Now()
	cache.now = func() time.Time { return now }

	msgs := []model.Message{
		{ID: "1", Seq: 1, SenderID: "cust-1", Content: "hi", Timestamp: now.Add(-3 * time.Minute)},
		{ID: "2", Seq: 2, SenderID: "r1", Content: "on it", Timestamp: now.Add(-2 * time.Minute)},
		{ID: "3", Seq: 3, SenderID: "r1", Content: "ready soon", Timestamp: now.Add(-time.Minute)},
	}
	require.NoError(t, cache.SaveMessages("o1", model.ChatRestaurant, msgs))

	n, err := cache.UnreadCount("o1", model.ChatRestaurant, "cust-1")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.NoError(t, cache.MarkRead("o1", model.ChatRestaurant, "cust-1"))
	n, err = cache.UnreadCount("o1", model.ChatRestaurant, "cust-1")
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = cache.UnreadCount("o1", model.ChatRestaurant, "r1")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	text, err := cache.Export("o1", model.ChatRestaurant, "cust-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"] You: hi", "] Other: on it", "] Other: ready soon"}, transcriptTails(text))
}

func TestCache_UnreadIgnoresDeviceClock(t *testing.T) {
	tests := []struct {
		name string
		skew time.Duration
	}{
		{name: "device clock behind server", skew: -10 * time.Minute},
		{name: "device clock ahead of server", skew: 10 * time.Minute},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			cache := NewCache(openKV(t), 0)
			server := time.Now()
			device := server.Add(testCase.skew)
			cache.now = func() time.Time { return device }

			require.NoError(t, cache.SaveMessages("o1", model.ChatCourier, []model.Message{
				{ID: "1", Seq: 1, SenderID: "cour-1", Content: "picked up", Timestamp: server.Add(-time.Minute)},
			}))
			require.NoError(t, cache.MarkRead("o1", model.ChatCourier, "cust-1"))

			require.NoError(t, cache.SaveMessages("o1", model.ChatCourier, []model.Message{
				{ID: "1", Seq: 1, SenderID: "cour-1", Content: "picked up", Timestamp: server.Add(-time.Minute)},
				{ID: "2", Seq: 2, SenderID: "cour-1", Content: "two minutes away", Timestamp: server.Add(time.Second)},
			}))
			n, err := cache.UnreadCount("o1", model.ChatCourier, "cust-1")
			require.NoError(t, err)
			assert.Equal(t, 1, n)

			require.NoError(t, cache.MarkRead("o1", model.ChatCourier, "cust-1"))
			n, err = cache.UnreadCount("o1", model.ChatCourier, "cust-1")
			require.NoError(t, err)
			assert.Zero(t, n)
		})
	}
}

func TestCache_UnreadPlacesUnsequencedMessagesByPosition(t *testing.T) {
	cache := NewCache(openKV(t), 0)
	now := time.Now()
	cache.now = func() time.Time { return now }

	require.NoError(t, cache.SaveMessages("o1", model.ChatRestaurant, []model.Message{
		{ID: "a", SenderID: "r1", Content: "hello", Timestamp: now.Add(-2 * time.Minute)},
	}))
	require.NoError(t, cache.MarkRead("o1", model.ChatRestaurant, "cust-1"))

	require.NoError(t, cache.SaveMessages("o1", model.ChatRestaurant, []model.Message{
		{ID: "a", SenderID: "r1", Content: "hello", Timestamp: now.Add(-2 * time.Minute)},
		{ID: "b", SenderID: "r1", Content: "order is ready", Timestamp: now.Add(-time.Minute)},
	}))
	n, err := cache.UnreadCount("o1", model.ChatRestaurant, "cust-1")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func transcriptTails(text string) []string {
	var tails []string
	for _, line := range strings.Split(text, "\n") {
		tails = append(tails, line[strings.Index(line, "]"):])
	}
	return tails
}

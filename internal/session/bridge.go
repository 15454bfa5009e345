package session

import "sync"

// Bridge records which wallet the frontend currently reports as connected
// and fans connection changes out to subscribers. It satisfies both
// WalletBridge and WalletSubscriber, so a Monitor watching it reacts to
// changes without polling.
type Bridge struct {
	mu        sync.Mutex
	connected string
	nextID    int
	subs      map[int]func(publicKey string)
}

func NewBridge() *Bridge {
	return &Bridge{subs: make(map[int]func(string))}
}

// SetConnected records the connected wallet, an empty key meaning
// disconnected, and notifies subscribers when the value changes.
func (b *Bridge) SetConnected(publicKey string) {
	b.mu.Lock()
	if b.connected == publicKey {
		b.mu.Unlock()
		return
	}
	b.connected = publicKey
	fns := make([]func(string), 0, len(b.subs))
	for _, fn := range b.subs {
		fns = append(fns, fn)
	}
	b.mu.Unlock()

	for _, fn := range fns {
		fn(publicKey)
	}
}

func (b *Bridge) ConnectedKey() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.connected
}

func (b *Bridge) Subscribe(fn func(publicKey string)) (cancel func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	b.subs[id] = fn
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs, id)
	}
}

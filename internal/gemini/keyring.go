package gemini

import "sync"

// KeyRing hands out API keys round-robin; Rotate moves to the next one after
// a key is rate limited
type KeyRing struct {
	mu      sync.Mutex
	keys    []string
	current int
}

func NewKeyRing(keys []string) *KeyRing {
	return &KeyRing{keys: keys}
}

// Current returns the active key and its 1-based position for logging
func (k *KeyRing) Current() (string, int) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if len(k.keys) == 0 {
		return "", 0
	}
	return k.keys[k.current], k.current + 1
}

func (k *KeyRing) Rotate() {
	k.mu.Lock()
	defer k.mu.Unlock()
	if len(k.keys) > 0 {
		k.current = (k.current + 1) % len(k.keys)
	}
}

func (k *KeyRing) Len() int {
	return len(k.keys)
}

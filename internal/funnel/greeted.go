package funnel

import (
	"context"
	"sync"
	"time"
)

// GreetingWindow es la ventana durante la cual no se repite el saludo.
const GreetingWindow = 60 * time.Second

// GreetedSet guarda qué números ya recibieron el saludo, como mapa
// número → vencimiento. La expiración se revisa al consultar y un barrido
// periódico limpia lo vencido; no hay un timer por entrada.
type GreetedSet struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]time.Time
}

func NewGreetedSet(ttl time.Duration) *GreetedSet {
	return &GreetedSet{
		ttl:     ttl,
		entries: make(map[string]time.Time),
	}
}

// Contains informa si el número sigue dentro de la ventana de saludo.
// Una entrada vencida se elimina en el acto.
func (g *GreetedSet) Contains(number string, now time.Time) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	deadline, ok := g.entries[number]
	if !ok {
		return false
	}
	if now.After(deadline) {
		delete(g.entries, number)
		return false
	}
	return true
}

func (g *GreetedSet) Add(number string, now time.Time) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.entries[number] = now.Add(g.ttl)
}

// Sweep elimina todas las entradas vencidas y devuelve cuántas sacó.
func (g *GreetedSet) Sweep(now time.Time) int {
	g.mu.Lock()
	defer g.mu.Unlock()

	removed := 0
	for number, deadline := range g.entries {
		if now.After(deadline) {
			delete(g.entries, number)
			removed++
		}
	}
	return removed
}

// Run barre el set cada intervalo hasta que el contexto se cancele.
func (g *GreetedSet) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			g.Sweep(now)
		}
	}
}

package entities

import "fmt"

// Registry holds every live dynamic object of a session. Slices keep
// insertion order so iteration (and therefore tie-breaking) is stable.
type Registry struct {
	Items    []*Item
	NPCs     []*NPC
	Molotovs []*Molotov
	Bullets  []*Bullet
	Effects  []*Effect
	Flyers   []*Flyer

	nextID uint64
}

func NewRegistry() *Registry { return &Registry{} }

func (r *Registry) NewID(k Kind) string {
	r.nextID++
	return fmt.Sprintf("%s%06d", k.idPrefix(), r.nextID)
}

// NextID exposes the id counter for state digests.
func (r *Registry) NextID() uint64 { return r.nextID }

func (r *Registry) AddItem(it *Item) *Item {
	if it.ID == "" {
		it.ID = r.NewID(KindItem)
	}
	r.Items = append(r.Items, it)
	return it
}

func (r *Registry) AddNPC(n *NPC) *NPC {
	if n.ID == "" {
		n.ID = r.NewID(KindNPC)
	}
	r.NPCs = append(r.NPCs, n)
	return n
}

func (r *Registry) AddMolotov(m *Molotov) *Molotov {
	if m.ID == "" {
		m.ID = r.NewID(KindMolotov)
	}
	r.Molotovs = append(r.Molotovs, m)
	return m
}

func (r *Registry) AddBullet(b *Bullet) *Bullet {
	if b.ID == "" {
		b.ID = r.NewID(KindBullet)
	}
	r.Bullets = append(r.Bullets, b)
	return b
}

func (r *Registry) AddEffect(e *Effect) *Effect {
	if e.ID == "" {
		e.ID = r.NewID(KindEffect)
	}
	if e.Duration == 0 {
		e.Duration = e.TTL
	}
	r.Effects = append(r.Effects, e)
	return e
}

func (r *Registry) AddFlyer(f *Flyer) *Flyer {
	if f.ID == "" {
		f.ID = r.NewID(KindFlyer)
	}
	r.Flyers = append(r.Flyers, f)
	return f
}

func (r *Registry) RemoveItem(id string) bool {
	var ok bool
	r.Items, ok = removeByID(r.Items, id, func(it *Item) string { return it.ID })
	return ok
}

func (r *Registry) RemoveNPC(id string) bool {
	var ok bool
	r.NPCs, ok = removeByID(r.NPCs, id, func(n *NPC) string { return n.ID })
	return ok
}

func (r *Registry) NPC(id string) *NPC {
	for _, n := range r.NPCs {
		if n.ID == id {
			return n
		}
	}
	return nil
}

func (r *Registry) Item(id string) *Item {
	for _, it := range r.Items {
		if it.ID == id {
			return it
		}
	}
	return nil
}

func removeByID[T any](in []T, id string, key func(T) string) ([]T, bool) {
	for i, v := range in {
		if key(v) != id {
			continue
		}
		copy(in[i:], in[i+1:])
		var zero T
		in[len(in)-1] = zero
		return in[:len(in)-1], true
	}
	return in, false
}

// Filter keeps the elements for which keep reports true and returns the dropped ones.
func Filter[T any](in []T, keep func(T) bool) (kept []T, dropped []T) {
	kept = in[:0]
	for _, v := range in {
		if keep(v) {
			kept = append(kept, v)
		} else {
			dropped = append(dropped, v)
		}
	}
	for i := len(kept); i < len(in); i++ {
		var zero T
		in[i] = zero
	}
	return kept, dropped
}

package tetris

import "math/rand"

// Bag hands out piece types in shuffled groups of seven. It tops itself up
// whenever fewer than seven pieces are queued, so the head is always known.
type Bag struct {
	queue []PieceType
	rng   *rand.Rand
}

// NewBag creates a bag whose order is fully determined by seed.
func NewBag(seed int64) *Bag {
	return &Bag{rng: rand.New(rand.NewSource(seed))}
}

func (b *Bag) refill() {
	for len(b.queue) < len(AllTypes) {
		group := AllTypes
		b.rng.Shuffle(len(group), func(i, j int) {
			group[i], group[j] = group[j], group[i]
		})
		b.queue = append(b.queue, group[:]...)
	}
}

// Next removes and returns the head of the queue.
func (b *Bag) Next() PieceType {
	b.refill()
	t := b.queue[0]
	b.queue = b.queue[1:]
	return t
}

// Peek returns the head of the queue without removing it.
func (b *Bag) Peek() PieceType {
	b.refill()
	return b.queue[0]
}

// Len returns the number of queued pieces.
func (b *Bag) Len() int {
	return len(b.queue)
}

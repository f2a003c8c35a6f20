package event

import (
	"github.com/pkt-cash/iriswallet/er"
	"github.com/pkt-cash/iriswallet/lock"
)

// Poster runs closures on another goroutine, in order.
type Poster interface {
	Post(f func())
}

// Tagged is anything which can be routed by tag.
type Tagged[K comparable] interface {
	Tag() K
}

type busSub[K comparable, I Tagged[K]] struct {
	id  uint64
	all bool
	tag K
	f   func(I)
}

type busMut[K comparable, I Tagged[K]] struct {
	nextID uint64
	subs   []busSub[K, I]
}

// Bus is the process-wide carrier of intents. Emit must be called on the
// goroutine of the Poster, use Post from anywhere else.
type Bus[K comparable, I Tagged[K]] struct {
	m    lock.GenMutex[busMut[K, I]]
	post Poster
}

func NewBus[K comparable, I Tagged[K]](post Poster) *Bus[K, I] {
	return &Bus[K, I]{
		m:    lock.NewGenMutex(busMut[K, I]{}, "event.Bus"),
		post: post,
	}
}

func (b *Bus[K, I]) add(s busSub[K, I]) *Handler {
	b.m.In(func(bm *busMut[K, I]) er.R {
		bm.nextID++
		s.id = bm.nextID
		bm.subs = append(bm.subs, s)
		return nil
	})
	id := s.id
	return &Handler{cancel: func() er.R {
		return b.m.In(func(bm *busMut[K, I]) er.R {
			for i, s := range bm.subs {
				if s.id == id {
					bm.subs = append(bm.subs[:i:i], bm.subs[i+1:]...)
					return nil
				}
			}
			return er.New("Bus: no such subscription, was it cancelled already?")
		})
	}}
}

// Subscribe calls f for every intent with the given tag.
func (b *Bus[K, I]) Subscribe(tag K, f func(I)) *Handler {
	return b.add(busSub[K, I]{tag: tag, f: f})
}

// SubscribeAll calls f for every intent.
func (b *Bus[K, I]) SubscribeAll(f func(I)) *Handler {
	return b.add(busSub[K, I]{all: true, f: f})
}

// Emit delivers the intent synchronously in subscription order.
func (b *Bus[K, I]) Emit(i I) {
	tag := i.Tag()
	var hs []func(I)
	b.m.In(func(bm *busMut[K, I]) er.R {
		for _, s := range bm.subs {
			if s.all || s.tag == tag {
				hs = append(hs, s.f)
			}
		}
		return nil
	})
	for _, f := range hs {
		call("event.Bus", f, i)
	}
}

// Post marshals an Emit onto the UI goroutine.
func (b *Bus[K, I]) Post(i I) {
	b.post.Post(func() { b.Emit(i) })
}

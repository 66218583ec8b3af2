package timing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/coder/quartz"
	"github.com/rs/zerolog/log"

	"github.com/zbennett/bbo-extension/internal/store"
)

var ErrNoKnownHand = errors.New("no_known_hand")

// Record is the persisted value. The short names keep stored records small.
type Record struct {
	SavedAt int64    `json:"d"`
	Packed  []uint16 `json:"t"`
}

type Timing struct {
	Key     string
	SavedAt time.Time
	Calls   []int64
	Plays   []int64
}

type Recorder struct {
	kv    store.KV
	clock quartz.Clock
}

func NewRecorder(kv store.KV, clock quartz.Clock) *Recorder {
	if clock == nil {
		clock = quartz.NewReal()
	}
	return &Recorder{kv: kv, clock: clock}
}

func Key(hand, player string) string {
	return "tm" + hand + "-" + player
}

// KeyFor keys a deal by the first known hand in seat order and the player
// sitting there. Hands are dot notation, "" when unknown.
func KeyFor(hands, players [4]string) (string, error) {
	for i, h := range hands {
		if h != "" {
			return Key(h, players[i]), nil
		}
	}
	return "", ErrNoKnownHand
}

func (r *Recorder) Save(ctx context.Context, key string, calls, plays []int64) error {
	packed, err := Pack(calls, plays)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(Record{SavedAt: r.clock.Now().UnixMilli(), Packed: packed})
	if err != nil {
		return err
	}
	if err := r.kv.Set(ctx, key, raw); err != nil {
		return fmt.Errorf("save timing %s: %w", key, err)
	}
	log.Info().Str("key", key).Int("calls", len(calls)).Int("plays", len(plays)).Msg("deal timing saved")
	return nil
}

// Load tries the key for each seat and returns the first record found.
// Returns store.ErrNotFound when none exists.
func (r *Recorder) Load(ctx context.Context, hands, players [4]string) (Timing, error) {
	for i := range hands {
		if hands[i] == "" {
			continue
		}
		key := Key(hands[i], players[i])
		raw, err := r.kv.Get(ctx, key)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return Timing{}, err
		}
		var rec Record
		if err := json.Unmarshal(raw, &rec); err != nil {
			return Timing{}, fmt.Errorf("decode timing %s: %w", key, err)
		}
		calls, plays, err := Unpack(rec.Packed)
		if err != nil {
			return Timing{}, fmt.Errorf("decode timing %s: %w", key, err)
		}
		log.Debug().Str("key", key).Msg("deal timing loaded")
		return Timing{Key: key, SavedAt: time.UnixMilli(rec.SavedAt), Calls: calls, Plays: plays}, nil
	}
	return Timing{}, store.ErrNotFound
}

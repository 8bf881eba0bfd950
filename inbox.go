package nanomessenger

import (
	"sync"

	"github.com/nanomessenger/client-go/internal/metrics"
	"github.com/nanomessenger/client-go/protocol"
)

// Inbox receives messages for one key pair and rejects replays. Counters
// are tracked per sender in memory; nothing is persisted.
type Inbox struct {
	client *Client
	keys   KeyPair
	window uint64

	mu      sync.Mutex
	senders map[string]*replayWindow
}

// replayWindow remembers which counters near the highest one have been seen.
type replayWindow struct {
	highest uint64
	seen    map[uint64]struct{}
}

// NewInbox creates an inbox for keys using the client's replay window.
func (c *Client) NewInbox(keys KeyPair) *Inbox {
	return &Inbox{
		client:  c,
		keys:    keys,
		window:  uint64(c.replayWindow),
		senders: make(map[string]*replayWindow),
	}
}

// PublicKeys returns the inbox owner's public keys.
func (i *Inbox) PublicKeys() PublicKeys {
	return i.keys.PublicKeys()
}

// InboxID returns the inbox id a sender uses for counter.
func (i *Inbox) InboxID(counter uint64) string {
	return protocol.DeriveInboxID(i.keys.PublicKeyString(), counter)
}

// RecentInboxIDs returns the ids for counter and the n-1 counters below it.
func (i *Inbox) RecentInboxIDs(counter uint64, n int) []string {
	return protocol.RecentInboxIDs(i.keys.PublicKeyString(), counter, n)
}

// FirstContactAddress returns the well-known inbox for first messages
// from unknown senders.
func (i *Inbox) FirstContactAddress() string {
	return protocol.DeriveFirstContactInbox(i.keys.PublicKeyString())
}

// Receive opens env and records its counter. A counter is accepted when it
// is above the highest seen from that sender, or inside the window below it
// and not seen before. Anything else fails with a *ReplayError.
func (i *Inbox) Receive(env *protocol.QuantumSafeEnvelope) (*protocol.MessagePayload, error) {
	payload, err := i.client.Open(env, i.keys)
	if err != nil {
		return nil, err
	}
	if err := i.record(payload.FromPubkey, payload.Counter); err != nil {
		i.client.metrics.Rejected(metrics.ReasonReplay)
		i.client.logger.Warn().
			Str("inbox_id", env.InboxID).
			Uint64("counter", payload.Counter).
			Err(err).
			Msg("replay rejected")
		return nil, err
	}
	return payload, nil
}

// ReceiveJSON parses an envelope of either version and receives it.
func (i *Inbox) ReceiveJSON(data []byte) (*protocol.MessagePayload, error) {
	env, err := protocol.ParseEnvelope(data)
	if err != nil {
		i.client.metrics.Rejected(metrics.ReasonFormat)
		return nil, err
	}
	return i.Receive(env)
}

// HighestCounter returns the highest counter accepted from sender.
func (i *Inbox) HighestCounter(sender string) (uint64, bool) {
	i.mu.Lock()
	defer i.mu.Unlock()

	w, ok := i.senders[sender]
	if !ok {
		return 0, false
	}
	return w.highest, true
}

func (i *Inbox) record(sender string, counter uint64) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	w, ok := i.senders[sender]
	if !ok {
		i.senders[sender] = &replayWindow{
			highest: counter,
			seen:    map[uint64]struct{}{counter: {}},
		}
		return nil
	}

	if counter > w.highest {
		w.highest = counter
		w.seen[counter] = struct{}{}
		w.prune(i.window)
		return nil
	}

	if w.highest-counter >= i.window {
		return &ReplayError{Sender: Fingerprint(sender), Counter: counter, Highest: w.highest}
	}
	if _, dup := w.seen[counter]; dup {
		return &ReplayError{Sender: Fingerprint(sender), Counter: counter, Highest: w.highest}
	}
	w.seen[counter] = struct{}{}
	return nil
}

// prune drops counters that fell out of the window.
func (w *replayWindow) prune(window uint64) {
	for c := range w.seen {
		if w.highest-c >= window {
			delete(w.seen, c)
		}
	}
}

package nanomessenger

import (
	"sync"

	"github.com/nanomessenger/client-go/protocol"
)

// Conversation tracks the outgoing counter for one sender and recipient.
// Counter 0 is the first-contact message, so Send starts at 1.
// It is safe for concurrent use.
type Conversation struct {
	client *Client
	from   Signer
	to     PublicKeys

	mu   sync.Mutex
	next uint64
}

// NewConversation starts a conversation from from to to.
func (c *Client) NewConversation(from Signer, to PublicKeys) *Conversation {
	return &Conversation{client: c, from: from, to: to, next: 1}
}

// Send seals body under the next counter. The counter only advances when
// sealing succeeds.
func (cv *Conversation) Send(body []byte, opts ...protocol.PayloadOption) (*protocol.QuantumSafeEnvelope, error) {
	cv.mu.Lock()
	defer cv.mu.Unlock()

	env, err := cv.client.Seal(cv.from, cv.to, body, cv.next, opts...)
	if err != nil {
		return nil, err
	}
	cv.next++
	return env, nil
}

// NextCounter returns the counter the next Send will use.
func (cv *Conversation) NextCounter() uint64 {
	cv.mu.Lock()
	defer cv.mu.Unlock()
	return cv.next
}

// OutgoingInbox returns the inbox id the next Send will address.
func (cv *Conversation) OutgoingInbox() string {
	return protocol.DeriveInboxID(cv.to.PublicKeyString(), cv.NextCounter())
}

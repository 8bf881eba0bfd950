package protocol

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"

	"github.com/nanomessenger/client-go/internal/crypto"
)

// inboxIDBytes is how much of the digest forms an inbox id.
const inboxIDBytes = 16

// DeriveInboxID returns the inbox id for the counter-th message to a
// recipient: base64(SHA-256(recipient key string || counter BE)[:16]).
// Sender and recipient derive it independently.
func DeriveInboxID(recipientPubkey string, counter uint64) string {
	h := sha256.New()
	h.Write([]byte(recipientPubkey))
	var c [8]byte
	binary.BigEndian.PutUint64(c[:], counter)
	h.Write(c[:])
	return crypto.ToBase64(h.Sum(nil)[:inboxIDBytes])
}

// DeriveFirstContactInbox returns the well-known inbox for messages from
// senders the recipient has not talked to yet.
func DeriveFirstContactInbox(recipientPubkey string) string {
	sum := sha256.Sum256([]byte("first_contact:" + recipientPubkey))
	return hex.EncodeToString(sum[:])
}

// RecentInboxIDs returns the inbox ids for counter, counter-1 and so on, n
// ids at most, stopping at counter 0. Receivers poll these to pick up
// messages that arrived out of order.
func RecentInboxIDs(recipientPubkey string, counter uint64, n int) []string {
	if n <= 0 {
		return nil
	}
	if uint64(n) > counter+1 {
		n = int(counter + 1)
	}
	ids := make([]string, 0, n)
	for i := range uint64(n) {
		ids = append(ids, DeriveInboxID(recipientPubkey, counter-i))
	}
	return ids
}

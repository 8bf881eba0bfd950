// Package nanomessenger is the client side of the nano-messenger protocol:
// signed, end-to-end encrypted messages in three crypto modes.
//
// Classical mode uses X25519, Ed25519 and ChaCha20-Poly1305. Quantum mode
// uses ML-KEM-768 and ML-DSA-65. Hybrid mode runs both families and requires
// both to succeed, so it stays secure while either one holds.
//
// Basic usage:
//
//	client, err := nanomessenger.New(
//	    nanomessenger.WithCryptoConfig(mode.HighSecurityConfig()),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	alice, _ := client.GenerateKeyPair()
//	bob, _ := client.GenerateKeyPair()
//
//	env, err := client.Seal(alice, bob.PublicKeys(), []byte("hello"), 1)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	inbox := client.NewInbox(bob)
//	payload, err := inbox.Receive(env)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(string(payload.Body))
package nanomessenger

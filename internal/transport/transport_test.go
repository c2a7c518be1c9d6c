package transport

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"groupsig/internal/engine"
	"groupsig/internal/groupsig"
)

func seedOf(b byte) []byte {
	seed := make([]byte, groupsig.MinSeedBytes)
	for i := range seed {
		seed[i] = b
	}
	return seed
}

// setupIssuerUserNetwork builds an issuer node and a user node on
// loopback addresses starting at basePort, with the issuer's group
// already set up and its public key loaded into the user's engine.
func setupIssuerUserNetwork(t *testing.T, basePort int) (issuer, user *Node) {
	t.Helper()
	issuerAddr := fmt.Sprintf("127.0.0.1:%d", basePort)
	userAddr := fmt.Sprintf("127.0.0.1:%d", basePort+1)
	peers := map[string]string{"issuer": issuerAddr, "user": userAddr}

	issuerEngine := engine.New()
	if err := issuerEngine.Seed(seedOf(byte(basePort))); err != nil {
		t.Fatalf("seed issuer engine: %v", err)
	}
	if _, err := issuerEngine.SetupGroup(); err != nil {
		t.Fatalf("setup group: %v", err)
	}

	userEngine := engine.New()
	if err := userEngine.Seed(seedOf(byte(basePort + 1))); err != nil {
		t.Fatalf("seed user engine: %v", err)
	}
	pkBuf := make([]byte, groupsig.GroupPublicKeySize)
	if _, err := issuerEngine.ExportGroupPublicKey(pkBuf); err != nil {
		t.Fatalf("export group public key: %v", err)
	}
	if err := userEngine.LoadGroupPublicKey(pkBuf); err != nil {
		t.Fatalf("user load group public key: %v", err)
	}

	var wg sync.WaitGroup
	issuerNode := NewNode("issuer", issuerAddr, peers, issuerEngine, &wg)
	userNode := NewNode("user", userAddr, peers, userEngine, &wg)

	readyIssuer := make(chan struct{})
	readyUser := make(chan struct{})
	if err := issuerNode.StartServer(readyIssuer); err != nil {
		t.Fatalf("start issuer server: %v", err)
	}
	if err := userNode.StartServer(readyUser); err != nil {
		t.Fatalf("start user server: %v", err)
	}
	<-readyIssuer
	<-readyUser

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = issuerNode.Shutdown(ctx)
		_ = userNode.Shutdown(ctx)
	})

	return issuerNode, userNode
}

func TestRequestJoinEndToEnd(t *testing.T) {
	issuerNode, userNode := setupIssuerUserNetwork(t, 19100)

	usk, err := userNode.RequestJoin("issuer", []byte("join-challenge"))
	if err != nil {
		t.Fatalf("RequestJoin: %v", err)
	}
	if usk == nil {
		t.Fatal("RequestJoin returned a nil credential")
	}

	sig, err := userNode.Engine.Sign([]byte("hello"), []byte("bsn"))
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if err := issuerNode.Engine.Verify(sig, []byte("hello"), []byte("bsn")); err != nil {
		t.Fatalf("Verify: %v", err)
	}
}

func TestRequestJoinUnknownPeer(t *testing.T) {
	_, userNode := setupIssuerUserNetwork(t, 19200)
	if _, err := userNode.RequestJoin("nonexistent", []byte("c")); err == nil {
		t.Fatal("expected RequestJoin against an unknown peer to fail")
	}
}

func TestHealthCheckPing(t *testing.T) {
	issuerNode, _ := setupIssuerUserNetwork(t, 19300)
	issuerNode.HealthCheck()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		issuerNode.healthMutex.Lock()
		ok := issuerNode.health["user"]
		issuerNode.healthMutex.Unlock()
		if ok {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("issuer never observed user as healthy")
}

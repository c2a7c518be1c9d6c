package engine

import (
	"bytes"
	"testing"

	"groupsig/internal/groupsig"
)

func seedOf(b byte) []byte {
	seed := make([]byte, groupsig.MinSeedBytes)
	for i := range seed {
		seed[i] = b
	}
	return seed
}

func TestUnseededOperationsRejected(t *testing.T) {
	e := New()

	if _, err := e.SetupGroup(); err != ErrNotSeeded {
		t.Fatalf("SetupGroup: expected ErrNotSeeded, got %v", err)
	}
	if _, _, err := e.StartJoin([]byte("c")); err != ErrNotSeeded {
		t.Fatalf("StartJoin: expected ErrNotSeeded, got %v", err)
	}
	if _, err := e.ProcessJoin(&groupsig.JoinMessage{}, []byte("c")); err != ErrNotSeeded {
		t.Fatalf("ProcessJoin: expected ErrNotSeeded, got %v", err)
	}
	if _, err := e.Sign([]byte("m"), []byte("b")); err != ErrNotSeeded {
		t.Fatalf("Sign: expected ErrNotSeeded, got %v", err)
	}
	// Verify has no seeding precondition: it only needs a loaded group
	// public key, drawing its own masks from a fresh RNG if unseeded.
	if err := e.Verify(&groupsig.Signature{}, []byte("m"), []byte("b")); err != ErrNoGroupPublicKey {
		t.Fatalf("Verify: expected ErrNoGroupPublicKey, got %v", err)
	}
}

func TestSeedTooShortRejected(t *testing.T) {
	e := New()
	if err := e.Seed(make([]byte, groupsig.MinSeedBytes-1)); err == nil {
		t.Fatal("expected short seed to be rejected")
	}
}

func TestSeedTwiceReseeds(t *testing.T) {
	e := New()
	if err := e.Seed(seedOf(0x01)); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	if err := e.Seed(seedOf(0x02)); err != nil {
		t.Fatalf("Seed (reseed): %v", err)
	}
	if _, err := e.SetupGroup(); err != nil {
		t.Fatalf("SetupGroup after reseed: %v", err)
	}
}

func TestExportRequiresLoadedState(t *testing.T) {
	e := New()

	if _, err := e.ExportGroupPrivateKey(make([]byte, groupsig.GroupPrivateKeySize)); err != ErrNoGroupPrivateKey {
		t.Fatalf("ExportGroupPrivateKey: expected ErrNoGroupPrivateKey, got %v", err)
	}
	if _, err := e.ExportGroupPublicKey(make([]byte, groupsig.GroupPublicKeySize)); err != ErrNoGroupPublicKey {
		t.Fatalf("ExportGroupPublicKey: expected ErrNoGroupPublicKey, got %v", err)
	}
	if _, err := e.ExportUserCredentials(make([]byte, groupsig.UserPrivateKeySize)); err != ErrNoUserCredentials {
		t.Fatalf("ExportUserCredentials: expected ErrNoUserCredentials, got %v", err)
	}
}

func TestProcessJoinRequiresPrivateKey(t *testing.T) {
	e := New()
	if err := e.Seed(seedOf(0x03)); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	if _, err := e.ProcessJoin(&groupsig.JoinMessage{}, []byte("c")); err != ErrNoGroupPrivateKey {
		t.Fatalf("ProcessJoin: expected ErrNoGroupPrivateKey, got %v", err)
	}
}

func TestLoadUserCredentialsRequiresGroupKey(t *testing.T) {
	e := New()
	buf := make([]byte, groupsig.UserPrivateKeySize)
	if err := e.LoadUserCredentials(buf); err != ErrNoGroupPublicKey {
		t.Fatalf("LoadUserCredentials: expected ErrNoGroupPublicKey, got %v", err)
	}
}

func TestSignRequiresUserCredentials(t *testing.T) {
	e := New()
	if err := e.Seed(seedOf(0x04)); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	if _, err := e.SetupGroup(); err != nil {
		t.Fatalf("SetupGroup: %v", err)
	}
	if _, err := e.Sign([]byte("m"), []byte("b")); err != ErrNoUserCredentials {
		t.Fatalf("Sign: expected ErrNoUserCredentials, got %v", err)
	}
}

func TestVerifyRequiresGroupPublicKey(t *testing.T) {
	e := New()
	if err := e.Seed(seedOf(0x05)); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	if err := e.Verify(&groupsig.Signature{}, []byte("m"), []byte("b")); err != ErrNoGroupPublicKey {
		t.Fatalf("Verify: expected ErrNoGroupPublicKey, got %v", err)
	}
}

func TestSetupGroupClearsUserCredentials(t *testing.T) {
	issuer := New()
	if err := issuer.Seed(seedOf(0x06)); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	if _, err := issuer.SetupGroup(); err != nil {
		t.Fatalf("SetupGroup: %v", err)
	}

	usk := joinUser(t, issuer, []byte("challenge"))
	uskBuf := make([]byte, groupsig.UserPrivateKeySize)
	n, err := groupsig.EncodeUserPrivateKey(uskBuf, usk)
	if err != nil || n != groupsig.UserPrivateKeySize {
		t.Fatalf("EncodeUserPrivateKey: n=%d err=%v", n, err)
	}
	if err := issuer.LoadUserCredentials(uskBuf); err != nil {
		t.Fatalf("LoadUserCredentials: %v", err)
	}
	if _, err := issuer.ExportUserCredentials(make([]byte, groupsig.UserPrivateKeySize)); err != nil {
		t.Fatalf("ExportUserCredentials before re-setup: %v", err)
	}

	if _, err := issuer.SetupGroup(); err != nil {
		t.Fatalf("second SetupGroup: %v", err)
	}
	if _, err := issuer.ExportUserCredentials(make([]byte, groupsig.UserPrivateKeySize)); err != ErrNoUserCredentials {
		t.Fatalf("expected SetupGroup to clear user credentials, got err=%v", err)
	}
}

func TestLoadGroupPublicKeyClearsPrivateKeyAndCredentials(t *testing.T) {
	e := New()
	if err := e.Seed(seedOf(0x07)); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	if _, err := e.SetupGroup(); err != nil {
		t.Fatalf("SetupGroup: %v", err)
	}
	usk := joinUser(t, e, []byte("challenge"))
	uskBuf := make([]byte, groupsig.UserPrivateKeySize)
	if _, err := groupsig.EncodeUserPrivateKey(uskBuf, usk); err != nil {
		t.Fatalf("EncodeUserPrivateKey: %v", err)
	}
	if err := e.LoadUserCredentials(uskBuf); err != nil {
		t.Fatalf("LoadUserCredentials: %v", err)
	}
	pkBuf := make([]byte, groupsig.GroupPublicKeySize)
	if _, err := e.ExportGroupPublicKey(pkBuf); err != nil {
		t.Fatalf("ExportGroupPublicKey: %v", err)
	}

	if err := e.LoadGroupPublicKey(pkBuf); err != nil {
		t.Fatalf("LoadGroupPublicKey: %v", err)
	}
	if _, err := e.ExportGroupPrivateKey(make([]byte, groupsig.GroupPrivateKeySize)); err != ErrNoGroupPrivateKey {
		t.Fatalf("expected LoadGroupPublicKey to clear the private key, got %v", err)
	}
	if _, err := e.ExportUserCredentials(make([]byte, groupsig.UserPrivateKeySize)); err != ErrNoUserCredentials {
		t.Fatalf("expected LoadGroupPublicKey to clear user credentials, got %v", err)
	}
}

func joinUser(t *testing.T, issuer *Engine, challenge []byte) *groupsig.UserPrivateKey {
	t.Helper()
	user := New()
	if err := user.Seed(seedOf(0x42)); err != nil {
		t.Fatalf("Seed user: %v", err)
	}
	pkBuf := make([]byte, groupsig.GroupPublicKeySize)
	if _, err := issuer.ExportGroupPublicKey(pkBuf); err != nil {
		t.Fatalf("ExportGroupPublicKey: %v", err)
	}
	if err := user.LoadGroupPublicKey(pkBuf); err != nil {
		t.Fatalf("LoadGroupPublicKey: %v", err)
	}

	gsk, msg, err := user.StartJoin(challenge)
	if err != nil {
		t.Fatalf("StartJoin: %v", err)
	}
	resp, err := issuer.ProcessJoin(msg, challenge)
	if err != nil {
		t.Fatalf("ProcessJoin: %v", err)
	}
	usk, err := user.FinishJoin(gsk, resp)
	if err != nil {
		t.Fatalf("FinishJoin: %v", err)
	}
	return usk
}

func TestEndToEndAcrossTwoEngines(t *testing.T) {
	issuer := New()
	if err := issuer.Seed(seedOf(0x08)); err != nil {
		t.Fatalf("Seed issuer: %v", err)
	}
	if _, err := issuer.SetupGroup(); err != nil {
		t.Fatalf("SetupGroup: %v", err)
	}

	user := New()
	if err := user.Seed(seedOf(0x09)); err != nil {
		t.Fatalf("Seed user: %v", err)
	}
	pkBuf := make([]byte, groupsig.GroupPublicKeySize)
	if _, err := issuer.ExportGroupPublicKey(pkBuf); err != nil {
		t.Fatalf("ExportGroupPublicKey: %v", err)
	}
	if err := user.LoadGroupPublicKey(pkBuf); err != nil {
		t.Fatalf("LoadGroupPublicKey: %v", err)
	}

	gsk, msg, err := user.StartJoin([]byte("challenge"))
	if err != nil {
		t.Fatalf("StartJoin: %v", err)
	}
	resp, err := issuer.ProcessJoin(msg, []byte("challenge"))
	if err != nil {
		t.Fatalf("ProcessJoin: %v", err)
	}
	usk, err := user.FinishJoin(gsk, resp)
	if err != nil {
		t.Fatalf("FinishJoin: %v", err)
	}
	uskBuf := make([]byte, groupsig.UserPrivateKeySize)
	if _, err := groupsig.EncodeUserPrivateKey(uskBuf, usk); err != nil {
		t.Fatalf("EncodeUserPrivateKey: %v", err)
	}
	if err := user.LoadUserCredentials(uskBuf); err != nil {
		t.Fatalf("LoadUserCredentials: %v", err)
	}

	sig, err := user.Sign([]byte("hello"), []byte("bsn"))
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if err := issuer.Verify(sig, []byte("hello"), []byte("bsn")); err != nil {
		t.Fatalf("Verify: %v", err)
	}

	nym := GetSignatureTag(sig)
	if !bytes.Equal(mustEncodeG1(t, &nym), mustEncodeG1(t, &sig.NYM)) {
		t.Fatal("GetSignatureTag should return the signature's pseudonym unchanged")
	}
}

func mustEncodeG1(t *testing.T, p *groupsig.G1) []byte {
	t.Helper()
	buf := make([]byte, groupsig.G1Size)
	if _, err := groupsig.EncodeG1Point(buf, p); err != nil {
		t.Fatalf("EncodeG1Point: %v", err)
	}
	return buf
}

func TestGetStateSizePerVariant(t *testing.T) {
	e := New()
	if got := e.GetStateSize(); got != 0 {
		t.Fatalf("unseeded/unloaded: expected 0, got %d", got)
	}

	if err := e.Seed(seedOf(0x0a)); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	if _, err := e.SetupGroup(); err != nil {
		t.Fatalf("SetupGroup: %v", err)
	}
	if got := e.GetStateSize(); got != groupsig.GroupPrivateKeySize {
		t.Fatalf("full state: expected %d, got %d", groupsig.GroupPrivateKeySize, got)
	}

	pkBuf := make([]byte, groupsig.GroupPublicKeySize)
	if _, err := e.ExportGroupPublicKey(pkBuf); err != nil {
		t.Fatalf("ExportGroupPublicKey: %v", err)
	}
	pubOnly := New()
	if err := pubOnly.LoadGroupPublicKey(pkBuf); err != nil {
		t.Fatalf("LoadGroupPublicKey: %v", err)
	}
	if got := pubOnly.GetStateSize(); got != groupsig.GroupPublicKeySize {
		t.Fatalf("public-only state: expected %d, got %d", groupsig.GroupPublicKeySize, got)
	}
}

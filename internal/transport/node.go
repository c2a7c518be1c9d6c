package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"groupsig/internal/engine"
	"groupsig/internal/groupsig"
)

// HandlerFunc is the type for message handlers.
type HandlerFunc func(*Node, Message)

// joinState tracks a user node's end of an in-flight join, keyed by the
// issuer peer ID it was started against.
type joinState struct {
	gsk      *groupsig.Scalar
	doneCh   chan error
}

// Node is a participant in the join protocol: an issuer (holding a
// group private key) or a user (holding, eventually, credentials).
// Either role can be hosted by the same Node type — which one it plays
// is just which engine operations its own code calls.
type Node struct {
	ID        string
	Address   string
	Peers     map[string]string
	Engine    *engine.Engine
	server    *http.Server
	waitGroup *sync.WaitGroup
	logger    zerolog.Logger

	handlers map[string]HandlerFunc

	joinMutex  sync.Mutex
	pending    map[string]*joinState

	health      map[string]bool
	healthMutex sync.Mutex
}

// NewNode creates and initializes a new Node bound to eng.
func NewNode(id, address string, peers map[string]string, eng *engine.Engine, wg *sync.WaitGroup) *Node {
	n := &Node{
		ID:        id,
		Address:   address,
		Peers:     peers,
		Engine:    eng,
		waitGroup: wg,
		handlers:  make(map[string]HandlerFunc),
		pending:   make(map[string]*joinState),
		health:    make(map[string]bool),
		logger:    log.With().Str("node", id).Logger(),
	}
	n.RegisterHandler("join_request", handleJoinRequest)
	n.RegisterHandler("join_response", handleJoinResponse)
	n.RegisterHandler("ping", handlePing)
	n.RegisterHandler("pong", handlePong)
	return n
}

// RegisterHandler registers a handler for a message type.
func (n *Node) RegisterHandler(msgType string, handler HandlerFunc) {
	n.handlers[msgType] = handler
}

func (n *Node) messageHandler(w http.ResponseWriter, r *http.Request) {
	var msg Message
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		n.logger.Warn().Err(err).Msg("received a bad request")
		return
	}
	n.logger.Debug().Str("type", msg.Type).Msg("received message")
	if handler, ok := n.handlers[msg.Type]; ok {
		handler(n, msg)
	} else {
		n.logger.Warn().Str("type", msg.Type).Msg("no handler registered")
	}
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "message received")
}

// SendMessage sends a message to another node in the network with retry
// and timeout.
func (n *Node) SendMessage(targetID, messageType string, payload any) error {
	targetAddress, ok := n.Peers[targetID]
	if !ok {
		return fmt.Errorf("peer %q not found in directory", targetID)
	}
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	msg := Message{Type: messageType, Payload: payloadBytes, SenderID: n.ID}
	messageBytes, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message envelope: %w", err)
	}

	var lastErr error
	const maxRetries = 3
	for attempt := 0; attempt < maxRetries; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, "http://"+targetAddress+"/message", bytes.NewBuffer(messageBytes))
		if err != nil {
			cancel()
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		resp, err := http.DefaultClient.Do(req)
		cancel()
		if err == nil && resp.StatusCode == http.StatusOK {
			resp.Body.Close()
			n.logger.Debug().Str("type", messageType).Str("to", targetID).Msg("sent message")
			return nil
		}
		if resp != nil {
			resp.Body.Close()
		}
		lastErr = err
		n.logger.Warn().Int("attempt", attempt+1).Str("type", messageType).Str("to", targetID).Err(err).Msg("retrying send")
		time.Sleep(time.Duration(1<<attempt) * 100 * time.Millisecond)
	}
	return fmt.Errorf("send message after retries: %w", lastErr)
}

// HealthCheck pings all peers and updates health status.
func (n *Node) HealthCheck() {
	for peerID := range n.Peers {
		if peerID == n.ID {
			continue
		}
		go func(pid string) {
			err := n.SendMessage(pid, "ping", nil)
			n.healthMutex.Lock()
			n.health[pid] = err == nil
			n.healthMutex.Unlock()
		}(peerID)
	}
}

func handlePing(n *Node, msg Message) {
	_ = n.SendMessage(msg.SenderID, "pong", nil)
}

func handlePong(n *Node, msg Message) {
	n.healthMutex.Lock()
	defer n.healthMutex.Unlock()
	n.health[msg.SenderID] = true
}

// StartServer starts the node's HTTP server in a new goroutine and
// supports graceful shutdown. It signals on ready once the server is
// actively listening.
func (n *Node) StartServer(ready chan<- struct{}) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/message", n.messageHandler)

	n.server = &http.Server{Addr: n.Address, Handler: mux}

	listener, err := net.Listen("tcp", n.Address)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", n.Address, err)
	}

	n.waitGroup.Add(1)
	go func() {
		defer n.waitGroup.Done()
		n.logger.Info().Str("addr", n.Address).Msg("server starting")
		ready <- struct{}{}
		if err := n.server.Serve(listener); err != nil && err != http.ErrServerClosed {
			n.logger.Error().Err(err).Msg("server failed")
		}
		n.logger.Info().Msg("server stopped")
	}()

	go func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
		<-c
		n.logger.Info().Msg("shutting down server")
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = n.server.Shutdown(ctx)
	}()
	return nil
}

// Shutdown stops the node's HTTP server immediately, for callers (tests,
// a daemon's own signal handling) that manage the server lifecycle
// themselves rather than relying on StartServer's signal hook.
func (n *Node) Shutdown(ctx context.Context) error {
	if n.server == nil {
		return nil
	}
	return n.server.Shutdown(ctx)
}

// RequestJoin is the user-side entry point: run start-join locally, then
// send the resulting join message to issuerID and wait for its
// join_response. On success it runs finish-join and returns bound user
// credentials; the engine is left with those credentials loaded.
func (n *Node) RequestJoin(issuerID string, challenge []byte) (*groupsig.UserPrivateKey, error) {
	gsk, msg, err := n.Engine.StartJoin(challenge)
	if err != nil {
		return nil, fmt.Errorf("start join: %w", err)
	}

	encoded := make([]byte, groupsig.JoinMessageSize)
	if _, err := groupsig.EncodeJoinMessage(encoded, msg); err != nil {
		return nil, fmt.Errorf("encode join message: %w", err)
	}

	doneCh := make(chan error, 1)
	n.joinMutex.Lock()
	n.pending[issuerID] = &joinState{gsk: gsk, doneCh: doneCh}
	n.joinMutex.Unlock()

	payload := JoinRequestPayload{SenderID: n.ID, Challenge: challenge, JoinMessage: encoded}
	if err := n.SendMessage(issuerID, "join_request", payload); err != nil {
		n.joinMutex.Lock()
		delete(n.pending, issuerID)
		n.joinMutex.Unlock()
		return nil, fmt.Errorf("send join request: %w", err)
	}

	select {
	case err := <-doneCh:
		if err != nil {
			return nil, err
		}
	case <-time.After(5 * time.Second):
		return nil, fmt.Errorf("join with %q timed out", issuerID)
	}

	// handleJoinResponse already ran finish-join and loaded the result
	// into the engine; re-export it so the caller gets a value back too.
	buf := make([]byte, groupsig.UserPrivateKeySize)
	if _, err := n.Engine.ExportUserCredentials(buf); err != nil {
		return nil, err
	}
	return groupsig.DecodeUserPrivateKey(buf)
}

func handleJoinRequest(n *Node, msg Message) {
	var payload JoinRequestPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		n.logger.Warn().Err(err).Msg("malformed join_request payload")
		return
	}
	joinMsg, err := groupsig.DecodeJoinMessage(payload.JoinMessage)
	if err != nil {
		n.logger.Warn().Err(err).Str("from", payload.SenderID).Msg("invalid join message")
		return
	}
	resp, err := n.Engine.ProcessJoin(joinMsg, payload.Challenge)
	if err != nil {
		n.logger.Warn().Err(err).Str("from", payload.SenderID).Msg("process-join failed")
		return
	}
	encoded := make([]byte, groupsig.JoinResponseSize)
	if _, err := groupsig.EncodeJoinResponse(encoded, resp); err != nil {
		n.logger.Error().Err(err).Msg("encode join response")
		return
	}
	go func() {
		_ = n.SendMessage(payload.SenderID, "join_response", JoinResponsePayload{
			SenderID:     n.ID,
			JoinResponse: encoded,
		})
	}()
}

func handleJoinResponse(n *Node, msg Message) {
	var payload JoinResponsePayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		n.logger.Warn().Err(err).Msg("malformed join_response payload")
		return
	}

	n.joinMutex.Lock()
	state, ok := n.pending[payload.SenderID]
	if ok {
		delete(n.pending, payload.SenderID)
	}
	n.joinMutex.Unlock()
	if !ok {
		n.logger.Warn().Str("from", payload.SenderID).Msg("unexpected join_response")
		return
	}

	resp, err := groupsig.DecodeJoinResponse(payload.JoinResponse)
	if err != nil {
		state.doneCh <- fmt.Errorf("decode join response: %w", err)
		return
	}
	usk, err := n.Engine.FinishJoin(state.gsk, resp)
	if err != nil {
		state.doneCh <- fmt.Errorf("finish-join: %w", err)
		return
	}
	buf := make([]byte, groupsig.UserPrivateKeySize)
	n2, err := groupsig.EncodeUserPrivateKey(buf, usk)
	if err != nil {
		state.doneCh <- fmt.Errorf("encode user credentials: %w", err)
		return
	}
	if err := n.Engine.LoadUserCredentials(buf[:n2]); err != nil {
		state.doneCh <- fmt.Errorf("load user credentials: %w", err)
		return
	}
	state.doneCh <- nil
}

// main.go - groupsigd: a demonstration daemon for the pairing-based
// group signature engine with user-chosen pseudonyms.
//
// Run with -role=demo to exercise the full protocol end to end in one
// process: an issuer node and a user node, each wrapping their own
// engine, run setup, then join over loopback HTTP, then sign and verify.
//
// Usage:
//
//	go run ./cmd/groupsigd -role=demo
package main

import (
	"context"
	"crypto/rand"
	"flag"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"groupsig/internal/auditlog"
	"groupsig/internal/engine"
	"groupsig/internal/groupsig"
	"groupsig/internal/transport"
)

func main() {
	configPath := flag.String("config", "groupsigd.json", "path to the daemon config file")
	role := flag.String("role", "demo", "daemon role (only demo is implemented)")
	flag.Parse()

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		fmt.Printf("load config: %v\n", err)
		return
	}
	if err := cfg.Validate(); err != nil {
		fmt.Printf("invalid config: %v\n", err)
		return
	}

	logger, closeLog, err := newLogger(cfg.LogLevel, cfg.NodeID, cfg.LogFile)
	if err != nil {
		fmt.Printf("init logger: %v\n", err)
		return
	}
	defer closeLog()

	metrics := NewMetricsCollector()
	health := NewHealthChecker(engine.Version)
	limiter := NewPeerRateLimiter(cfg.RateLimitTokens, cfg.RateLimitRefill, time.Second)

	switch *role {
	case "demo":
		runDemo(logger, metrics, health, limiter, cfg)
	default:
		logger.Error().Str("role", *role).Msg("unsupported role for this build; only 'demo' is wired up")
	}
}

func seedEntropy(n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return nil, fmt.Errorf("read entropy: %w", err)
	}
	return buf, nil
}

// runDemo wires an issuer node and a user node together in-process and
// drives them through setup, join, sign and verify, logging each step
// and recording the resulting pseudonym in an audit log.
func runDemo(logger zerolog.Logger, metrics *MetricsCollector, health *HealthChecker, limiter *PeerRateLimiter, cfg *Config) {
	issuerEngine := engine.New()
	userEngine := engine.New()

	seed1, err := seedEntropy(128)
	if err != nil {
		logger.Error().Err(err).Msg("generate issuer seed")
		return
	}
	seed2, err := seedEntropy(128)
	if err != nil {
		logger.Error().Err(err).Msg("generate user seed")
		return
	}
	if err := issuerEngine.Seed(seed1); err != nil {
		logger.Error().Err(err).Msg("seed issuer engine")
		return
	}
	if err := userEngine.Seed(seed2); err != nil {
		logger.Error().Err(err).Msg("seed user engine")
		return
	}

	health.RegisterComponent("issuer-engine", func() error { return nil })
	health.RegisterComponent("user-engine", func() error { return nil })

	_, err = issuerEngine.SetupGroup()
	if err != nil {
		logger.Error().Err(err).Msg("setup group")
		return
	}
	metrics.IncrementCounter(MetricSetupCount, nil)
	logger.Info().Msg("issuer set up a fresh group")

	pkBuf := make([]byte, groupsig.GroupPublicKeySize)
	if _, err := issuerEngine.ExportGroupPublicKey(pkBuf); err != nil {
		logger.Error().Err(err).Msg("export group public key")
		return
	}
	if err := userEngine.LoadGroupPublicKey(pkBuf); err != nil {
		logger.Error().Err(err).Msg("user load group public key")
		return
	}

	issuerAddr := cfg.Address
	userAddr := nextPort(cfg.Address)
	peers := map[string]string{"issuer": issuerAddr, "user": userAddr}

	var wg sync.WaitGroup
	issuerNode := transport.NewNode("issuer", issuerAddr, peers, issuerEngine, &wg)
	userNode := transport.NewNode("user", userAddr, peers, userEngine, &wg)

	group, ctx := errgroup.WithContext(context.Background())
	readyIssuer := make(chan struct{})
	readyUser := make(chan struct{})
	group.Go(func() error { return issuerNode.StartServer(readyIssuer) })
	group.Go(func() error { return userNode.StartServer(readyUser) })
	<-readyIssuer
	<-readyUser

	if !limiter.Allow("user") {
		logger.Warn().Msg("join request throttled")
		return
	}

	if _, err := userNode.RequestJoin("issuer", []byte("demo-challenge-nonce")); err != nil {
		metrics.RecordJoinFailure()
		logger.Error().Err(err).Msg("join")
	} else {
		logger.Info().Msg("user completed join and holds bound credentials")

		sigStart := time.Now()
		sig, err := userEngine.Sign([]byte("hello, group"), []byte("bsn1"))
		if err != nil {
			logger.Error().Err(err).Msg("sign")
		} else {
			metrics.RecordSign(time.Since(sigStart))

			verifyStart := time.Now()
			verifyErr := issuerEngine.Verify(sig, []byte("hello, group"), []byte("bsn1"))
			metrics.RecordVerify(time.Since(verifyStart), verifyErr == nil)
			if verifyErr != nil {
				logger.Error().Err(verifyErr).Msg("verify")
			} else {
				logger.Info().Msg("signature verified")
				auditEntries := auditlog.New()
				nym := engine.GetSignatureTag(sig)
				auditEntries.Record([]byte("bsn1"), &nym)
				if err := auditEntries.SaveToFile(cfg.AuditLogPath); err != nil {
					logger.Warn().Err(err).Msg("save audit log")
				}
			}
		}
	}

	status := health.CheckHealth()
	logger.Info().Str("status", string(status.OverallStatus)).Msg("health check")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_ = issuerNode.Shutdown(shutdownCtx)
	_ = userNode.Shutdown(shutdownCtx)

	if err := group.Wait(); err != nil && ctx.Err() == nil {
		logger.Warn().Err(err).Msg("server group exited")
	}
}

func nextPort(addr string) string {
	// demo-only helper: the user node listens one port above the issuer.
	for i := len(addr) - 1; i >= 0; i-- {
		if addr[i] == ':' {
			port := addr[i+1:]
			var n int
			fmt.Sscanf(port, "%d", &n)
			return addr[:i+1] + fmt.Sprintf("%d", n+1)
		}
	}
	return addr
}

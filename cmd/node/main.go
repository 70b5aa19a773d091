// Command node starts a Kairochain validator node: the PoH entry producer,
// the parallel verifier, and the persistent entry store.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/kairolabs/kairochain/config"
	"github.com/kairolabs/kairochain/core"
	"github.com/kairolabs/kairochain/events"
	"github.com/kairolabs/kairochain/indexer"
	"github.com/kairolabs/kairochain/ledger"
	"github.com/kairolabs/kairochain/storage"
	"github.com/kairolabs/kairochain/wallet"
)

func main() {
	cfgPath := flag.String("config", "config.json", "path to config file")
	keyPath := flag.String("key", "validator.key", "path to keystore file")
	genKey := flag.Bool("genkey", false, "generate a new validator key and exit")
	flag.Parse()

	// Read keystore password from environment (not CLI flags — they leak via ps).
	password := os.Getenv("KAIRO_PASSWORD")
	if password == "" {
		log.Println("WARNING: KAIRO_PASSWORD not set — keystore will use an empty password")
	}

	// ---- generate key mode ----
	if *genKey {
		w, err := wallet.Generate()
		if err != nil {
			log.Fatal(err)
		}
		if err := wallet.Save(*keyPath, password, w); err != nil {
			log.Fatal(err)
		}
		fmt.Printf("Generated key. Public key (validator identity): %s\n", w.PubKey().Hex())
		fmt.Printf("Saved to: %s\n", *keyPath)
		return
	}

	// ---- load config ----
	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	genesis, err := cfg.Genesis()
	if err != nil {
		log.Fatalf("genesis hash: %v", err)
	}

	// ---- load validator key ----
	validator, err := wallet.Load(*keyPath, password)
	if err != nil {
		log.Fatalf("load key: %v", err)
	}

	// ---- open DB ----
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		log.Fatalf("mkdir data dir: %v", err)
	}
	db, err := storage.NewLevelDB(cfg.DataDir + "/ledger")
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	store, err := storage.NewLevelEntryStore(db)
	if err != nil {
		log.Fatalf("entry store: %v", err)
	}

	// ---- events + indexer ----
	emitter := events.NewEmitter()
	indexer.New(db, emitter)

	// ---- syncer (consumer) ----
	syncer, err := ledger.NewSyncer(store, emitter, genesis)
	if err != nil {
		log.Fatalf("syncer: %v", err)
	}
	seed := syncer.LastID()

	// ---- mempool + recorder (producer) ----
	mempool := core.NewMempool()
	txCh := make(chan []core.Transaction, 1)
	entryCh := make(chan []ledger.Entry, cfg.QueueDepth())
	recorder := ledger.NewRecorder(seed, startHeight(store), cfg.HashesPerTick, txCh, entryCh)

	quit := make(chan struct{})
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		recorder.Run(quit)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		syncer.Run(entryCh, quit)
	}()

	// Drain the mempool into the producer. Batches stay bounded so a burst
	// of submissions becomes several packed entries instead of one refusal.
	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(10 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-quit:
				return
			case <-ticker.C:
				batch := mempool.Drain(cfg.BatchLimit())
				if len(batch) == 0 {
					continue
				}
				select {
				case txCh <- batch:
				case <-quit:
					return
				}
			}
		}
	}()

	log.Printf("Node %s running (validator: %s, genesis: %s)", cfg.NodeID, validator.PubKey().Hex(), genesis)

	// ---- graceful shutdown ----
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Println("shutting down...")
	close(quit)
	wg.Wait()
}

func loadConfig(path string) (*config.Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		log.Printf("config %s not found, writing defaults", path)
		cfg := config.DefaultConfig()
		if err := config.Save(cfg, path); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	return config.Load(path)
}

// startHeight resumes the producer's tick height from the persisted ledger.
func startHeight(store *storage.LevelEntryStore) uint64 {
	count, err := store.TickCount()
	if err != nil {
		log.Printf("tick count unavailable, starting at 0: %v", err)
		return 0
	}
	return count
}

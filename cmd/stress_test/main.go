package main

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/openmkt/marketplace/internal/adapter/storage"
	"github.com/openmkt/marketplace/internal/core/service"
)

const (
	assetID      = "stress-asset"
	price        = int64(1000)
	buyerFunding = int64(2000)
	totalBuyers  = 50
	queueSize    = 100
)

// Races many funded buyers at a single listing: exactly one purchase may
// settle, and no value may be created or destroyed along the way.
func main() {
	ctx := context.Background()

	store := storage.NewMemoryAdapter()
	metrics := storage.NewMemoryMetrics()
	svc := service.NewMarketService(store, storage.NewMemoryCache(), metrics, zerolog.Nop(), service.Options{
		AdminAccount: "admin",
		QueueSize:    queueSize,
	})
	defer svc.Close()

	// Drain the trade queue in background
	go func() {
		for range svc.TradeEvents() {
		}
	}()

	if _, err := svc.Mint(ctx, service.MintParams{ID: assetID, Owner: "seller", Creator: "creator", RoyaltyRate: 10}); err != nil {
		log.Fatalf("mint failed: %v", err)
	}
	if err := svc.List(ctx, assetID, "seller", price); err != nil {
		log.Fatalf("list failed: %v", err)
	}

	buyers := make([]string, totalBuyers)
	for i := range buyers {
		buyers[i] = fmt.Sprintf("buyer-%d", i)
		if err := svc.Deposit(ctx, buyers[i], buyerFunding); err != nil {
			log.Fatalf("deposit failed: %v", err)
		}
	}

	var successCount atomic.Int32
	var failCount atomic.Int32
	var winner atomic.Value

	var wg sync.WaitGroup
	start := time.Now()

	for _, buyer := range buyers {
		wg.Add(1)
		go func(buyer string) {
			defer wg.Done()

			if _, err := svc.Purchase(ctx, assetID, buyer, ""); err == nil {
				successCount.Add(1)
				winner.Store(buyer)
			} else {
				failCount.Add(1)
			}
		}(buyer)
	}

	wg.Wait()
	elapsed := time.Since(start)

	success := successCount.Load()
	fail := failCount.Load()

	fmt.Println("========== STRESS TEST RESULTS ==========")
	fmt.Printf("Total Buyers:     %d\n", totalBuyers)
	fmt.Printf("Successful:       %d\n", success)
	fmt.Printf("Failed:           %d\n", fail)
	fmt.Printf("Duration:         %v\n", elapsed)
	fmt.Println("==========================================")

	if success == 1 && fail == totalBuyers-1 {
		fmt.Println("PASS: exactly one purchase settled")
	} else {
		fmt.Printf("FAIL: expected 1 success/%d failures, got %d/%d\n", totalBuyers-1, success, fail)
	}

	// Value conservation: every unit deposited is still on some account.
	total := int64(0)
	for _, account := range append(buyers, "seller", "creator", "admin") {
		balance, err := svc.Balance(ctx, account)
		if err != nil {
			log.Fatalf("balance failed: %v", err)
		}
		total += balance
	}
	if total == buyerFunding*totalBuyers {
		fmt.Println("PASS: value conserved across the settlement")
	} else {
		fmt.Printf("FAIL: expected total %d, got %d\n", buyerFunding*totalBuyers, total)
	}

	winnerName, _ := winner.Load().(string)
	owner, err := svc.GetOwner(ctx, assetID)
	if err != nil {
		log.Fatalf("owner lookup failed: %v", err)
	}
	if owner == winnerName && winnerName != "" {
		fmt.Printf("PASS: asset owned by winning buyer %s\n", owner)
	} else {
		fmt.Printf("FAIL: owner %s, winner %s\n", owner, winnerName)
	}

	totals, err := svc.MetricsTotals(ctx)
	if err != nil {
		log.Fatalf("metrics failed: %v", err)
	}
	fmt.Printf("Volume: %d  Royalties: %d  Fees: %d\n", totals.Volume, totals.Royalties, totals.Fees)
	if totals.Volume == price {
		fmt.Println("PASS: volume counted exactly once")
	} else {
		fmt.Printf("FAIL: expected volume %d, got %d\n", price, totals.Volume)
	}
}

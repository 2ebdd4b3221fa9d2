package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"

	"github.com/rl1809/pos-register/internal/adapter/handler"
)

const (
	defaultGRPCAddr = "localhost:50051"
	totalCashiers   = 50
	productCount    = 4
)

func main() {
	addr := os.Getenv("GRPC_ADDR")
	if addr == "" {
		addr = defaultGRPCAddr
	}

	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		log.Fatalf("failed to create client: %v", err)
	}
	defer conn.Close()

	client := handler.NewRegisterClient(conn)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	before, err := client.ListOrders(ctx)
	if err != nil {
		log.Fatalf("failed to list orders: %v", err)
	}
	existing := len(before.Orders)

	// Counters
	var committed atomic.Int32
	var emptyCart atomic.Int32
	var failed atomic.Int32

	// Every cashier adds one line and commits. The register has a single
	// cart, so a commit may sweep up lines added by other cashiers and leave
	// a later commit with an empty cart.
	var wg sync.WaitGroup
	start := time.Now()

	for i := 0; i < totalCashiers; i++ {
		wg.Add(1)
		go func(cashier int) {
			defer wg.Done()

			productID := int64(cashier%productCount) + 1
			if _, err := client.AddItem(ctx, &handler.AddItemRequest{ProductID: productID}); err != nil {
				log.Printf("cashier %d: add item failed: %v", cashier, err)
				failed.Add(1)
				return
			}

			_, err := client.CommitOrder(ctx, &handler.CommitOrderRequest{RequestID: uuid.New().String()})
			switch status.Code(err) {
			case codes.OK:
				committed.Add(1)
			case codes.FailedPrecondition:
				emptyCart.Add(1)
			default:
				log.Printf("cashier %d: commit failed: %v", cashier, err)
				failed.Add(1)
			}
		}(i)
	}

	wg.Wait()
	elapsed := time.Since(start)

	after, err := client.ListOrders(ctx)
	if err != nil {
		log.Fatalf("failed to list orders: %v", err)
	}
	newOrders := after.Orders[existing:]

	items := 0
	for _, o := range newOrders {
		items += len(o.Items)
	}

	fmt.Println("========== CHECKOUT SIMULATION ==========")
	fmt.Printf("Cashiers:         %d\n", totalCashiers)
	fmt.Printf("Committed:        %d\n", committed.Load())
	fmt.Printf("Empty cart:       %d\n", emptyCart.Load())
	fmt.Printf("Failed:           %d\n", failed.Load())
	fmt.Printf("Items sold:       %d\n", items)
	fmt.Printf("Duration:         %v\n", elapsed)
	fmt.Println("==========================================")

	ok := true

	// Assertions
	if len(newOrders) == int(committed.Load()) {
		fmt.Printf("PASS: ledger grew by %d orders\n", len(newOrders))
	} else {
		fmt.Printf("FAIL: expected %d new orders, ledger grew by %d\n", committed.Load(), len(newOrders))
		ok = false
	}

	idsOK := true
	for i, o := range after.Orders {
		if o.ID != int64(i+1) {
			fmt.Printf("FAIL: order at position %d has id %d\n", i, o.ID)
			idsOK = false
			break
		}
	}
	if idsOK {
		fmt.Printf("PASS: order ids are 1..%d with no gaps\n", len(after.Orders))
	}
	ok = ok && idsOK

	if failed.Load() == 0 && items == totalCashiers {
		fmt.Println("PASS: every added item landed in exactly one order")
	} else {
		fmt.Printf("FAIL: expected %d items in new orders, got %d\n", totalCashiers, items)
		ok = false
	}

	if !ok {
		os.Exit(1)
	}
}

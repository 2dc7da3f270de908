// Command fastforward moves a local development chain (Hardhat or Anvil) to
// a timestamp and mines a block there, so the rescue trigger can be exercised
// without waiting for the real deadline.
package main

import (
	"context"
	"flag"
	"os"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/lisanmuaddib/stake-rescue/pkg/logging"
)

func main() {
	if err := godotenv.Load(); err != nil {
		// .env is optional
		logrus.WithError(err).Debug("No .env file loaded")
	}
	log := logging.NewLogger(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))

	defaultRPC := os.Getenv("RPC_URL")
	if defaultRPC == "" {
		defaultRPC = "http://127.0.0.1:8545"
	}
	defaultTarget, _ := strconv.ParseUint(os.Getenv("DEADLINE"), 10, 64)

	rpcURL := flag.String("rpc", defaultRPC, "JSON-RPC endpoint of the development node")
	target := flag.Uint64("to", defaultTarget, "Unix timestamp of the next block (defaults to DEADLINE)")
	offset := flag.Int64("offset", 0, "seconds added to -to, e.g. -1 to land just before the deadline")
	timeout := flag.Duration("timeout", 30*time.Second, "overall RPC timeout")
	flag.Parse()

	if *target == 0 {
		log.Fatal("No target timestamp: pass -to or set DEADLINE")
	}
	next := int64(*target) + *offset

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	client, err := rpc.DialContext(ctx, *rpcURL)
	if err != nil {
		log.WithError(err).WithField("rpc_url", *rpcURL).Fatal("Failed to connect to node")
	}
	defer client.Close()

	if err := client.CallContext(ctx, nil, "evm_setNextBlockTimestamp", next); err != nil {
		log.WithError(err).WithField("timestamp", next).Fatal("evm_setNextBlockTimestamp failed")
	}
	if err := client.CallContext(ctx, nil, "evm_mine"); err != nil {
		log.WithError(err).Fatal("evm_mine failed")
	}

	header, err := ethclient.NewClient(client).HeaderByNumber(ctx, nil)
	if err != nil {
		log.WithError(err).Fatal("Failed to read the mined block")
	}

	log.WithFields(logrus.Fields{
		"block_number":    header.Number.Uint64(),
		"block_timestamp": header.Time,
		"block_time":      time.Unix(int64(header.Time), 0).UTC().Format(time.RFC3339),
	}).Info("Fast-forwarded chain")
}

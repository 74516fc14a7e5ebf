// txdump decodes a hex-encoded transaction, prints its structure and txid,
// and can archive it into a transaction store.
package main

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/jessevdk/go-flags"
	"go.uber.org/zap"

	"github.com/poolcore/libtxn-go/txn"
	"github.com/poolcore/libtxn-go/txstore"
)

type config struct {
	File      string `short:"f" long:"file" description:"read the hex transaction from a file instead of the argument"`
	StorePath string `long:"store" env:"TXDUMP_STORE" description:"archive the transaction into the bbolt store at this path"`
	Multi     bool   `long:"multi" description:"decode back-to-back transactions from the buffer"`

	Args struct {
		Hex string `positional-arg-name:"HEX" description:"hex-encoded transaction"`
	} `positional-args:"yes"`
}

func main() {
	cfg := config{}

	logger, err := zap.NewDevelopment()
	if err != nil {
		panic("can't initialize zap logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync()
	}()

	if _, err := flags.ParseArgs(&cfg, os.Args[1:]); err != nil {
		var ferr *flags.Error
		if errors.As(err, &ferr) && ferr.Type == flags.ErrHelp {
			return
		}
		logger.Fatal("failed to parse flags", zap.Error(err))
	}

	if err := run(cfg, logger); err != nil {
		logger.Fatal("txdump failed", zap.Error(err))
	}
}

func run(cfg config, logger *zap.Logger) error {
	raw, err := readInput(cfg)
	if err != nil {
		return err
	}

	var txns []*txn.Transaction
	if cfg.Multi {
		if txns, err = txn.ParseAll(raw); err != nil {
			return fmt.Errorf("decode transactions: %w", err)
		}
	} else {
		t, err := txn.Parse(raw)
		if err != nil {
			return fmt.Errorf("decode transaction: %w", err)
		}
		txns = []*txn.Transaction{t}
	}

	for _, t := range txns {
		dump(t)
	}

	if cfg.StorePath == "" {
		return nil
	}
	store, err := txstore.Open(cfg.StorePath)
	if err != nil {
		return err
	}
	defer func() {
		_ = store.Close()
	}()
	for _, t := range txns {
		if err := store.Put(t); err != nil {
			return err
		}
		logger.Info("archived transaction",
			zap.Stringer("txid", t.TxID()),
			zap.Int("size", len(t.Raw())))
	}
	return nil
}

func readInput(cfg config) ([]byte, error) {
	h := cfg.Args.Hex
	if cfg.File != "" {
		data, err := os.ReadFile(cfg.File)
		if err != nil {
			return nil, fmt.Errorf("read input file: %w", err)
		}
		h = string(data)
	}
	h = strings.TrimSpace(h)
	if h == "" {
		return nil, errors.New("no transaction supplied; pass HEX or --file")
	}
	raw, err := hex.DecodeString(h)
	if err != nil {
		return nil, fmt.Errorf("decode hex: %w", err)
	}
	return raw, nil
}

func dump(t *txn.Transaction) {
	fmt.Printf("txid:     %s\n", t.TxID())
	fmt.Printf("version:  %d\n", t.Version)
	fmt.Printf("locktime: %d\n", t.LockTime)
	fmt.Printf("size:     %d bytes\n", t.SerializeSize())
	fmt.Printf("coinbase: %v\n", t.IsCoinbase())
	fmt.Printf("inputs:   %d\n", len(t.Inputs))
	for i, in := range t.Inputs {
		fmt.Printf("  [%d] prev %x:%d seq %#x script %x\n",
			i, in.PreviousOutPoint.Hash, in.PreviousOutPoint.Index, in.Sequence, in.UnlockingScript)
	}
	fmt.Printf("outputs:  %d\n", len(t.Outputs))
	for i, out := range t.Outputs {
		fmt.Printf("  [%d] amount %d script %x\n", i, out.Amount, out.LockingScript)
	}
	fmt.Println()
}

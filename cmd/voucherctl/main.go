// voucherctl issues and inspects vouchers directly against the data files,
// for operators without the admin API at hand. The service should be stopped
// while issuing offline; both processes writing the vouchers store would race
// each other.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"game-vip-service/internal/config"
	"game-vip-service/internal/domain"
	"game-vip-service/internal/domain/model"
	"game-vip-service/internal/infra/logging"
	"game-vip-service/internal/infra/security"
	"game-vip-service/internal/infra/storage"
	"game-vip-service/internal/usecase"
)

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	issueVip := flag.String("issue", "", "vip id to issue a voucher for")
	issuedTo := flag.String("player", "", "player id the voucher is bound to")
	duration := flag.String("duration", "", `optional custom duration, e.g. "30d" or "1d 12h"`)
	inspect := flag.String("inspect", "", "voucher id to inspect")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, false)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	catalog, err := config.LoadCatalog(cfg.Catalog)
	if err != nil {
		log.Fatalf("catalog: %v", err)
	}

	logger := logging.New(config.LogConfig{Level: "warn", Format: "console"}, true)
	players := storage.NewPlayerStateStore(cfg.Storage.DataDir, logger)
	vouchers := storage.NewVoucherStore(cfg.Storage.DataDir, logger)
	history := storage.NewHistoryStore(cfg.Storage.DataDir, logger)
	signer := security.NewVoucherSigner(cfg.Security.HMACSecret)
	entitlementUC := usecase.NewEntitlementUseCase(catalog, players, history, logger)
	voucherUC := usecase.NewVoucherUseCase(catalog, vouchers, signer, entitlementUC, logger)

	switch {
	case *inspect != "":
		record, err := voucherUC.Get(*inspect)
		if err != nil {
			log.Fatalf("inspect: %v", err)
		}
		printJSON(record)

	case *issueVip != "":
		if *issuedTo == "" {
			log.Fatal("-player is required with -issue")
		}
		var customSeconds int64
		if *duration != "" {
			customSeconds = domain.ParseDuration(*duration)
			if customSeconds <= 0 {
				log.Fatalf("invalid duration %q", *duration)
			}
		}
		issued, err := voucherUC.Issue(*issueVip, *issuedTo, customSeconds)
		if err != nil {
			log.Fatalf("issue: %v", err)
		}
		printJSON(struct {
			Payload   model.VoucherPayload `json:"payload"`
			Signature string               `json:"signature"`
		}{issued.Payload, issued.Signature})

	default:
		flag.Usage()
		os.Exit(2)
	}
}

func printJSON(v any) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Fatalf("encode: %v", err)
	}
	fmt.Println(string(b))
}

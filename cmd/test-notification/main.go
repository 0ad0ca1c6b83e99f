package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/subosito/gotenv"

	"github.com/mwangaza-erp/approvalflow/internal/config"
	"github.com/mwangaza-erp/approvalflow/internal/infrastructure/gateway"
	"github.com/mwangaza-erp/approvalflow/pkg/utils"
)

// Standalone smoke test for the notification gateways. Sends one email
// and/or one SMS through the configured relays without touching the
// workflow engine, so delivery problems can be isolated from approval
// problems.

func main() {
	var (
		configPath = flag.String("config", "configs/config.yaml", "path to config file")
		email      = flag.String("email", "", "recipient address for a test email")
		phone      = flag.String("phone", "", "recipient number for a test SMS")
	)
	flag.Parse()

	if *email == "" && *phone == "" {
		fmt.Fprintln(os.Stderr, "usage: test-notification [-config path] -email addr | -phone number")
		os.Exit(2)
	}

	_ = gotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{Level: "debug", OutputPath: "stdout", Format: "console"})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if *email != "" {
		client := gateway.NewEmailClient(gateway.EmailConfig{
			BaseURL:     cfg.Email.BaseURL,
			APIKey:      cfg.Email.APIKey,
			FromAddress: cfg.Email.FromAddress,
			FromName:    cfg.Email.FromName,
			Timeout:     cfg.Email.Timeout,
		}, logger)

		fmt.Printf("Sending test email to %s via %s ...\n", *email, cfg.Email.BaseURL)
		err := client.SendEmail(ctx, *email,
			"Approval workflow test message",
			"This is a connectivity test from the approval workflow service. No action is required.")
		report("email", err)
	}

	if *phone != "" {
		client := gateway.NewSMSClient(gateway.SMSConfig{
			BaseURL:  cfg.SMS.BaseURL,
			APIKey:   cfg.SMS.APIKey,
			SenderID: cfg.SMS.SenderID,
			Timeout:  cfg.SMS.Timeout,
		}, logger)

		fmt.Printf("Sending test SMS to %s via %s ...\n", *phone, cfg.SMS.BaseURL)
		err := client.SendSMS(ctx, *phone, "Approval workflow connectivity test. No action is required.")
		report("sms", err)
	}
}

func report(channel string, err error) {
	if err != nil {
		fmt.Printf("FAIL %s: %v\n", channel, err)
		return
	}
	fmt.Printf("OK   %s\n", channel)
}

// Command ratecheck drives the conversion core directly from the command
// line, without the HTTP layer: print the current rate table, run a
// conversion, force a refresh, or dump the conversion history.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"time"

	"currency-converter-service/internal/cache"
	"currency-converter-service/internal/config"
	"currency-converter-service/internal/connectivity"
	"currency-converter-service/internal/converter"
	"currency-converter-service/internal/history"
	"currency-converter-service/internal/logger"
	"currency-converter-service/internal/rates"
)

func main() {
	amount := flag.Float64("amount", 0, "amount to convert")
	fromCode := flag.String("from", "USD", "source currency code")
	toCode := flag.String("to", "", "target currency code; runs a conversion when set")
	refresh := flag.Bool("refresh", false, "force a refresh from the remote source")
	showHistory := flag.Bool("history", false, "print the conversion history and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger := logger.New("warn")

	probe := connectivity.NewProbe(cfg, logger)
	rateCache := cache.New(cfg, logger)
	fetcher := rates.NewHTTPFetcher(cfg)
	provider := rates.NewProvider(cfg, probe, fetcher, rateCache, logger)
	ledger := history.New(cfg, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	switch {
	case *showHistory:
		printHistory(ledger)
	case *toCode != "":
		runConversion(ctx, provider, ledger, logger, *amount, *fromCode, *toCode)
	case *refresh:
		snapshot, err := provider.UpdateRates(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "refresh failed: %v\n", err)
			os.Exit(1)
		}
		printRates(snapshot.Base, snapshot.Rates)
	default:
		snapshot, err := provider.GetRates(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "rates unavailable: %v\n", err)
			os.Exit(1)
		}
		printRates(snapshot.Base, snapshot.Rates)
	}
}

func runConversion(ctx context.Context, provider *rates.Provider, ledger *history.Ledger, logger *logger.Logger, amount float64, fromCode, toCode string) {
	currencyConverter := converter.New(provider, ledger, logger)

	result, err := currencyConverter.Convert(ctx, amount, fromCode, toCode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "conversion failed: %v\n", err)
		os.Exit(1)
	}

	entry := result.Entry
	fmt.Printf("%.2f %s is equal to %.2f %s (rate %.6f)\n",
		entry.Amount, entry.FromCurrency, entry.ConvertedAmount, entry.ToCurrency, result.Rate)
	if !result.Recorded {
		fmt.Fprintln(os.Stderr, "warning: conversion was not recorded in the history")
	}
}

func printRates(base string, rateTable map[string]float64) {
	codes := make([]string, 0, len(rateTable))
	for code := range rateTable {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	fmt.Printf("1 %s buys:\n", base)
	for _, code := range codes {
		fmt.Printf("  %s  %12.6f\n", code, rateTable[code])
	}
}

func printHistory(ledger *history.Ledger) {
	entries := ledger.LoadAll()
	if len(entries) == 0 {
		fmt.Println("no conversions recorded")
		return
	}

	// Latest first, like the history view.
	for i := len(entries) - 1; i >= 0; i-- {
		entry := entries[i]
		fmt.Printf("%s: %.2f %s => %.2f %s\n",
			entry.Timestamp.Format("2006-01-02 15:04:05"),
			entry.Amount, entry.FromCurrency,
			entry.ConvertedAmount, entry.ToCurrency)
	}
}

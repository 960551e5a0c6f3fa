package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/apartment-accesscode/internal/batch"
	"github.com/apartment-accesscode/internal/classify"
	"github.com/apartment-accesscode/internal/config"
	"github.com/apartment-accesscode/internal/placekey"
	"github.com/apartment-accesscode/internal/store"
	"github.com/apartment-accesscode/internal/unit"
)

func main() {
	var configFile string

	rootCmd := &cobra.Command{
		Use:   "accesscode",
		Short: "Apartment AccessCode enrichment pipeline",
		Long:  `Extracts apartment-unit information from street addresses, classifies them with keyword rules, and reconciles the verdicts against the Placekey service`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if err := config.LoadConfig(configFile); err != nil {
				log.Fatalf("Failed to load config file: %v", err)
			}
		},
	}
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "path to a .env-style config file (default: nearest .env)")

	rootCmd.AddCommand(createSingleCmd())
	rootCmd.AddCommand(createBatchCmd())
	rootCmd.AddCommand(createReverseCmd())
	rootCmd.AddCommand(createStatsCmd())
	rootCmd.AddCommand(createHealthCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// createSingleCmd classifies one address on the command line
func createSingleCmd() *cobra.Command {
	var enrich bool

	cmd := &cobra.Command{
		Use:   "single [address]",
		Short: "Classify a single address",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			settings := config.LoadSettings()

			var enricher batch.Enricher
			if enrich {
				if err := settings.Validate(true); err != nil {
					log.Fatalf("Configuration error: %v", err)
				}
				client, err := placekey.NewClient(settings)
				if err != nil {
					log.Fatalf("Failed to create Placekey client: %v", err)
				}
				enricher = client
			}

			processor := batch.NewProcessor(settings, enricher)
			results, _ := processor.Run(cmd.Context(), []batch.Record{{Address: args[0]}})

			payload, err := json.MarshalIndent(results[0], "", "  ")
			if err != nil {
				log.Fatalf("Failed to encode result: %v", err)
			}
			fmt.Println(string(payload))
		},
	}

	cmd.Flags().BoolVar(&enrich, "enrich", false, "call the Placekey API for confirmed apartments")
	return cmd
}

// createBatchCmd runs the full pipeline over a CSV file
func createBatchCmd() *cobra.Command {
	var (
		outputFile string
		reportFile string
		workers    int
		enrich     bool
		save       bool
	)

	cmd := &cobra.Command{
		Use:   "batch [input.csv]",
		Short: "Process a CSV file of addresses",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			inputFile := args[0]
			settings := config.LoadSettings()
			if workers > 0 {
				settings.MaxWorkers = workers
			}
			if outputFile == "" {
				outputFile = inputFile + ".out.csv"
			}

			records, header, err := batch.ReadRecords(inputFile)
			if err != nil {
				log.Fatalf("Failed to read input: %v", err)
			}
			fmt.Printf("Loaded %d records from %s\n", len(records), inputFile)

			var enricher batch.Enricher
			if enrich {
				if err := settings.Validate(true); err != nil {
					log.Fatalf("Configuration error: %v", err)
				}
				client, err := placekey.NewClient(settings)
				if err != nil {
					log.Fatalf("Failed to create Placekey client: %v", err)
				}
				enricher = client
			}

			report := batch.NewReport(inputFile, outputFile, settings.MaxWorkers)
			processor := batch.NewProcessor(settings, enricher)
			results, stats := processor.Run(cmd.Context(), records)
			report.Finish(results, stats)
			report.Buildings = batch.AggregateBuildings(results)

			if err := batch.WriteResults(outputFile, header, results); err != nil {
				log.Fatalf("Failed to write output: %v", err)
			}
			fmt.Printf("Wrote %d results to %s\n", len(results), outputFile)

			if reportFile == "" {
				reportFile = outputFile + ".report.json"
			}
			if err := report.WriteJSON(reportFile); err != nil {
				log.Fatalf("Failed to write report: %v", err)
			}
			fmt.Printf("Run %s: %d apartments, %d conflicts, %d API errors\n",
				report.RunID, stats.ExistingMatches, stats.Conflicts, stats.APIErrors)

			if save {
				saveRun(cmd.Context(), settings, report, results)
			}
		},
	}

	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "output CSV path (default input + .out.csv)")
	cmd.Flags().StringVar(&reportFile, "report", "", "JSON report path (default output + .report.json)")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "worker count (default from MAX_WORKERS)")
	cmd.Flags().BoolVar(&enrich, "enrich", false, "call the Placekey API for confirmed apartments")
	cmd.Flags().BoolVar(&save, "save", false, "persist the run to the results database")
	return cmd
}

func saveRun(ctx context.Context, settings *config.Settings, report *batch.Report, results []batch.Result) {
	st, err := store.NewStore(settings.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to open results store: %v", err)
	}
	defer st.Close()

	if err := st.InitSchema(ctx); err != nil {
		log.Fatalf("Failed to initialize schema: %v", err)
	}
	if err := st.SaveRun(ctx, report, results); err != nil {
		log.Fatalf("Failed to save run: %v", err)
	}
	fmt.Printf("Saved run %s to results store\n", report.RunID)
}

// createReverseCmd maps placekeys back to approximate addresses
func createReverseCmd() *cobra.Command {
	var geocodeURL string

	cmd := &cobra.Command{
		Use:   "reverse [placekey...]",
		Short: "Map placekeys back to approximate addresses",
		Long:  `Placekeys are a one-way encoding; this recovers an approximate location from the where-part and reverse-geocodes it, falling back to clearly-labeled simulated data`,
		Args:  cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			mapper := placekey.NewReverseMapper(geocodeURL)
			results := mapper.ToAddressBatch(cmd.Context(), args)

			for i, result := range results {
				fmt.Printf("%s:\n", args[i])
				if !result.Success {
					fmt.Printf("  error: %s\n", result.Error)
					continue
				}
				fmt.Printf("  address: %s\n", result.Address)
				if result.Coordinates != nil {
					fmt.Printf("  coordinates: %.4f, %.4f\n",
						result.Coordinates.Latitude, result.Coordinates.Longitude)
				}
				if result.Simulated {
					fmt.Println("  simulated: true (low confidence, not a real lookup)")
				}
			}
		},
	}

	cmd.Flags().StringVar(&geocodeURL, "geocode-url", "", "reverse geocoding endpoint override")
	return cmd
}

// createStatsCmd summarizes stored runs, or classifies a file locally
// when no database is configured
func createStatsCmd() *cobra.Command {
	var inputFile string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show aggregate statistics",
		Run: func(cmd *cobra.Command, args []string) {
			if inputFile != "" {
				fileStats(inputFile)
				return
			}

			settings := config.LoadSettings()
			st, err := store.NewStore(settings.DatabaseURL)
			if err != nil {
				log.Fatalf("Failed to open results store: %v", err)
			}
			defer st.Close()

			stats, runs, err := st.Totals(cmd.Context())
			if err != nil {
				log.Fatalf("Failed to aggregate stats: %v", err)
			}

			fmt.Printf("Runs:              %d\n", runs)
			fmt.Printf("Records processed: %d\n", stats.TotalProcessed)
			fmt.Printf("Rule matches:      %d\n", stats.ExistingMatches)
			fmt.Printf("Placekey matches:  %d\n", stats.PlacekeyMatches)
			fmt.Printf("Conflicts:         %d\n", stats.Conflicts)
			fmt.Printf("API errors:        %d\n", stats.APIErrors)
			fmt.Printf("Record errors:     %d\n", stats.Errors)
		},
	}

	cmd.Flags().StringVarP(&inputFile, "file", "f", "", "compute extraction statistics for a CSV file instead")
	return cmd
}

// fileStats runs the unit extractor over a file and prints family counts
func fileStats(path string) {
	records, _, err := batch.ReadRecords(path)
	if err != nil {
		log.Fatalf("Failed to read input: %v", err)
	}

	addresses := make([]string, len(records))
	for i, rec := range records {
		addresses[i] = classify.ExtractStreetSegment(rec.Address)
	}

	stats := unit.CollectStatistics(addresses)
	fmt.Printf("Addresses:             %d\n", stats.TotalAddresses)
	fmt.Printf("With apartment info:   %d\n", stats.ApartmentAddresses)
	fmt.Printf("Without:               %d\n", stats.NonApartmentAddresses)
	fmt.Printf("Unique buildings:      %d\n", stats.UniqueBuildings)
	fmt.Printf("Multi-unit buildings:  %d\n", stats.BuildingsWithMultipleUnits)
	for family, count := range stats.FamilyCounts {
		fmt.Printf("  %-12s %d\n", family, count)
	}
}

// createHealthCmd checks Placekey API connectivity
func createHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check Placekey API connectivity",
		Run: func(cmd *cobra.Command, args []string) {
			settings := config.LoadSettings()
			if err := settings.Validate(true); err != nil {
				log.Fatalf("Configuration error: %v", err)
			}

			client, err := placekey.NewClient(settings)
			if err != nil {
				log.Fatalf("Failed to create Placekey client: %v", err)
			}

			if client.HealthCheck(cmd.Context()) {
				fmt.Println("Placekey API connection successful!")
				return
			}
			fmt.Println("Placekey API connection failed")
			os.Exit(1)
		},
	}
}
